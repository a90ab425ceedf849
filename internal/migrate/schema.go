// 包 migrate：目录表结构初始化
package migrate

import (
	"context"
	"database/sql"

	"county-map/internal/logger"
)

// Statements：建表语句，按依赖顺序排列
var Statements = []string{
	`CREATE TABLE IF NOT EXISTS _regions (
		name TEXT PRIMARY KEY,
		color TEXT NOT NULL DEFAULT '',
		seq INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS _region_outline_points (
		region TEXT NOT NULL REFERENCES _regions(name) ON DELETE CASCADE,
		idx INT NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (region, idx)
	)`,
	`CREATE TABLE IF NOT EXISTS _region_members (
		region TEXT NOT NULL,
		region_seq INT NOT NULL,
		idx INT NOT NULL,
		county TEXT NOT NULL,
		PRIMARY KEY (region_seq, idx)
	)`,
	`CREATE TABLE IF NOT EXISTS _counties (
		name TEXT PRIMARY KEY,
		seq INT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_counties_seq ON _counties(seq)`,
	`CREATE TABLE IF NOT EXISTS _county_points (
		county TEXT NOT NULL REFERENCES _counties(name) ON DELETE CASCADE,
		idx INT NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (county, idx)
	)`,
	`CREATE TABLE IF NOT EXISTS _cities (
		seq INT PRIMARY KEY,
		name TEXT NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		region TEXT NOT NULL DEFAULT '',
		region_color TEXT NOT NULL DEFAULT ''
	)`,
}

// 背景：首次运行自动创建目录所需表与索引
// 约束：使用 IF NOT EXISTS，可重复执行
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, s := range Statements {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
