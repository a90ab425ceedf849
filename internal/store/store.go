// 包 store: 目录在 PostgreSQL 中的持久化，整体写入、整体读回
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"county-map/internal/catalog"
	"county-map/internal/geo"
	"county-map/internal/logger"
)

// Store: 数据库访问入口，持有连接池
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// Open: 使用 DSN 打开数据库连接并配置连接池参数
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// 文档注释：整体替换目录
// 背景：目录是启动期一次性读取的参考数据，不做增量维护；单事务内清空后批量 COPY 写入。
// 约束：写入前先经 catalog.New 校验，非法数据不会落库。
func (s *Store) SaveCatalog(ctx context.Context, src catalog.Source) error {
	if _, err := catalog.New(src); err != nil {
		return fmt.Errorf("validate catalog: %w", err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, tbl := range []string{"_county_points", "_counties", "_region_outline_points", "_region_members", "_regions", "_cities"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+tbl); err != nil {
			return fmt.Errorf("clear %s: %w", tbl, err)
		}
	}

	err = copyRows(ctx, tx, "_counties", []string{"name", "seq"}, func(put func(...any) error) error {
		for i, sd := range src.Subdivisions {
			if err := put(sd.Name, i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	err = copyRows(ctx, tx, "_county_points", []string{"county", "idx", "lat", "lon"}, func(put func(...any) error) error {
		for _, sd := range src.Subdivisions {
			for i, p := range sd.Boundary {
				if err := put(sd.Name, i, p.Lat, p.Lon); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	err = copyRows(ctx, tx, "_regions", []string{"name", "color", "seq"}, func(put func(...any) error) error {
		for i, r := range src.Regions {
			if err := put(r.Name, r.Color, i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	err = copyRows(ctx, tx, "_region_outline_points", []string{"region", "idx", "lat", "lon"}, func(put func(...any) error) error {
		for _, r := range src.Regions {
			for i, p := range r.Outline {
				if err := put(r.Name, i, p.Lat, p.Lon); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	err = copyRows(ctx, tx, "_region_members", []string{"region", "region_seq", "idx", "county"}, func(put func(...any) error) error {
		for seq, m := range src.Members {
			for i, c := range m.Counties {
				if err := put(m.Region, seq, i, c); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	err = copyRows(ctx, tx, "_cities", []string{"seq", "name", "lat", "lon", "region", "region_color"}, func(put func(...any) error) error {
		for i, c := range src.Cities {
			if err := put(i, c.Name, c.Point.Lat, c.Point.Lon, c.Region, c.RegionColor); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	logger.L().Info("catalog_saved", "counties", len(src.Subdivisions), "regions", len(src.Regions), "cities", len(src.Cities))
	return nil
}

// copyRows：COPY FROM STDIN 批量写入
func copyRows(ctx context.Context, tx *sql.Tx, table string, cols []string, fill func(put func(...any) error) error) error {
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(table, cols...))
	if err != nil {
		return fmt.Errorf("copy %s: %w", table, err)
	}
	defer stmt.Close()
	put := func(args ...any) error {
		_, err := stmt.ExecContext(ctx, args...)
		return err
	}
	if err := fill(put); err != nil {
		return fmt.Errorf("copy %s: %w", table, err)
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("copy %s flush: %w", table, err)
	}
	return nil
}

// pointRow：多边形顶点行，owner 为县名或区域名
type pointRow struct {
	owner string
	lat   float64
	lon   float64
}

// groupRings：按 owner 聚合顶点；rows 需已按 (owner, idx) 排序
func groupRings(rows []pointRow) map[string]geo.Ring {
	out := make(map[string]geo.Ring)
	for _, r := range rows {
		out[r.owner] = append(out[r.owner], geo.Point{Lat: r.lat, Lon: r.lon})
	}
	return out
}

// LoadSource：读回目录原始数据，保持写入时的顺序
func (s *Store) LoadSource(ctx context.Context) (catalog.Source, error) {
	var src catalog.Source

	names, err := queryStrings(ctx, s.db, "SELECT name FROM _counties ORDER BY seq")
	if err != nil {
		return src, err
	}
	pts, err := queryPoints(ctx, s.db, "SELECT county, lat, lon FROM _county_points ORDER BY county, idx")
	if err != nil {
		return src, err
	}
	rings := groupRings(pts)
	for _, n := range names {
		src.Subdivisions = append(src.Subdivisions, catalog.Subdivision{Name: n, Boundary: rings[n]})
	}

	rows, err := s.db.QueryContext(ctx, "SELECT name, color FROM _regions ORDER BY seq")
	if err != nil {
		return src, err
	}
	for rows.Next() {
		var r catalog.Region
		if err := rows.Scan(&r.Name, &r.Color); err != nil {
			rows.Close()
			return src, err
		}
		src.Regions = append(src.Regions, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return src, err
	}
	opts, err := queryPoints(ctx, s.db, "SELECT region, lat, lon FROM _region_outline_points ORDER BY region, idx")
	if err != nil {
		return src, err
	}
	outlines := groupRings(opts)
	for i := range src.Regions {
		src.Regions[i].Outline = outlines[src.Regions[i].Name]
	}

	rows, err = s.db.QueryContext(ctx, "SELECT region, county FROM _region_members ORDER BY region_seq, idx")
	if err != nil {
		return src, err
	}
	for rows.Next() {
		var region, county string
		if err := rows.Scan(&region, &county); err != nil {
			rows.Close()
			return src, err
		}
		if n := len(src.Members); n == 0 || src.Members[n-1].Region != region {
			src.Members = append(src.Members, catalog.Membership{Region: region})
		}
		last := &src.Members[len(src.Members)-1]
		last.Counties = append(last.Counties, county)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return src, err
	}

	rows, err = s.db.QueryContext(ctx, "SELECT name, lat, lon, region, region_color FROM _cities ORDER BY seq")
	if err != nil {
		return src, err
	}
	defer rows.Close()
	for rows.Next() {
		var c catalog.City
		if err := rows.Scan(&c.Name, &c.Point.Lat, &c.Point.Lon, &c.Region, &c.RegionColor); err != nil {
			return src, err
		}
		src.Cities = append(src.Cities, c)
	}
	return src, rows.Err()
}

// LoadCatalog：读回并校验
func (s *Store) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	src, err := s.LoadSource(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return catalog.New(src)
}

func queryStrings(ctx context.Context, db *sql.DB, q string) ([]string, error) {
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func queryPoints(ctx context.Context, db *sql.DB, q string) ([]pointRow, error) {
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []pointRow
	for rows.Next() {
		var r pointRow
		if err := rows.Scan(&r.owner, &r.lat, &r.lon); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
