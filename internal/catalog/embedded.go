package catalog

import (
	"embed"
	"fmt"
	"io/fs"

	"county-map/internal/geo"
)

// 内嵌参考数据：县界为近似矩形，区域轮廓、区域成员与城市取自原始前端数据表
//
//go:embed data/counties.geojson data/regions.json data/members.json data/cities.json
var dataFS embed.FS

type regionRecord struct {
	Name    string       `json:"name"`
	Color   string       `json:"color"`
	Outline [][2]float64 `json:"outline"` // [lat, lon]
}

type cityRecord struct {
	Name        string  `json:"name"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Region      string  `json:"region"`
	RegionColor string  `json:"regionColor"`
}

// 文档注释：从目录形式的数据集读取原始输入
// 背景：内嵌数据与外部数据目录结构一致：counties.geojson、regions.json、members.json、cities.json。
// 异常：任一文件缺失或解析失败即返回 error。
func LoadFS(fsys fs.FS) (Source, error) {
	var src Source
	f, err := fsys.Open("counties.geojson")
	if err != nil {
		return src, err
	}
	src.Subdivisions, err = ParseGeoJSON(f)
	f.Close()
	if err != nil {
		return src, fmt.Errorf("counties.geojson: %w", err)
	}
	var regions []regionRecord
	if err := readJSON(fsys, "regions.json", &regions); err != nil {
		return src, err
	}
	for _, r := range regions {
		ring := make(geo.Ring, 0, len(r.Outline))
		for _, p := range r.Outline {
			ring = append(ring, geo.Point{Lat: p[0], Lon: p[1]})
		}
		src.Regions = append(src.Regions, Region{Name: r.Name, Color: r.Color, Outline: ring})
	}
	if err := readJSON(fsys, "members.json", &src.Members); err != nil {
		return src, err
	}
	var cities []cityRecord
	if err := readJSON(fsys, "cities.json", &cities); err != nil {
		return src, err
	}
	for _, c := range cities {
		src.Cities = append(src.Cities, City{Name: c.Name, Point: geo.Point{Lat: c.Lat, Lon: c.Lon}, Region: c.Region, RegionColor: c.RegionColor})
	}
	return src, nil
}

func readJSON(fsys fs.FS, name string, v any) error {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// EmbeddedSource：内嵌数据的原始输入
func EmbeddedSource() (Source, error) {
	sub, err := fs.Sub(dataFS, "data")
	if err != nil {
		return Source{}, err
	}
	return LoadFS(sub)
}

// Embedded：内嵌数据构建的目录
func Embedded() (*Catalog, error) {
	src, err := EmbeddedSource()
	if err != nil {
		return nil, err
	}
	return New(src)
}
