package utils

import (
	"context"
	"fmt"

	"county-map/internal/catalog"
	"county-map/internal/logger"
	"county-map/internal/store"
)

// 文档注释：按来源加载目录
// 背景：embedded 为内置参考数据；geojson 以外部县界文件替换县表，区域、成员与城市沿用内置数据；postgres 读取运维工具导入的整套目录。
// 约束：任何来源加载失败都返回错误，由主入口终止启动，不回退到其他来源。
func LoadCatalog(ctx context.Context, source, geojsonPath string) (*catalog.Catalog, error) {
	var (
		cat *catalog.Catalog
		err error
	)
	switch source {
	case "", "embedded":
		cat, err = catalog.Embedded()
	case "geojson":
		cat, err = loadGeoJSON(geojsonPath)
	case "postgres":
		db, e := OpenPostgresFromEnv()
		if e != nil {
			return nil, e
		}
		defer db.Close()
		cat, err = store.AttachDB(db).LoadCatalog(ctx)
	default:
		return nil, fmt.Errorf("unknown catalog source %q", source)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog source %s: %w", source, err)
	}
	logger.L().Info("catalog_load_ok", "source", source, "counties", cat.Len(), "fingerprint", cat.Fingerprint())
	return cat, nil
}

func loadGeoJSON(path string) (*catalog.Catalog, error) {
	if path == "" {
		return nil, fmt.Errorf("COUNTY_GEOJSON_PATH is empty")
	}
	subs, err := catalog.LoadGeoJSONFile(path)
	if err != nil {
		return nil, err
	}
	src, err := catalog.EmbeddedSource()
	if err != nil {
		return nil, err
	}
	src.Subdivisions = subs
	return catalog.New(src)
}
