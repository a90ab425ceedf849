// 包 overlay：区域上下文叠加层；与选择状态无关，每个区域按固定颜色与透明度绘制一次
package overlay

import (
	"county-map/internal/catalog"
	"county-map/internal/geo"
)

const (
	FillOpacity = 0.2
	Weight      = 1
)

// RegionLayer：区域叠加层的一项
type RegionLayer struct {
	Name        string   `json:"name"`
	Outline     geo.Ring `json:"outline"`
	Color       string   `json:"color"`
	FillColor   string   `json:"fillColor"`
	FillOpacity float64  `json:"fillOpacity"`
	Weight      int      `json:"weight"`
}

// Layers：按目录顺序生成；结果只取决于目录，不读取任何选择状态
func Layers(cat *catalog.Catalog) []RegionLayer {
	rs := cat.Regions()
	out := make([]RegionLayer, len(rs))
	for i, r := range rs {
		out[i] = RegionLayer{
			Name:        r.Name,
			Outline:     r.Outline,
			Color:       r.Color,
			FillColor:   r.Color,
			FillOpacity: FillOpacity,
			Weight:      Weight,
		}
	}
	return out
}
