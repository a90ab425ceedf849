// 包 geojson：把县图层、区域叠加层与城市标记序列化为 GeoJSON，供浏览器地图直接加载
package geojson

import (
	jsoniter "github.com/json-iterator/go"

	"county-map/internal/catalog"
	"county-map/internal/geo"
	"county-map/internal/overlay"
	"county-map/internal/selection"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Properties map[string]interface{}

type Geometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

type Feature struct {
	Type       string     `json:"type"`
	Properties Properties `json:"properties"`
	Geometry   Geometry   `json:"geometry"`
}

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// polygon：GeoJSON 要求外环闭合，坐标顺序 [lon, lat]
func polygon(r geo.Ring) Geometry {
	closed := r.Closed()
	ring := make([][2]float64, len(closed))
	for i, p := range closed {
		ring[i] = [2]float64{p.Lon, p.Lat}
	}
	return Geometry{Type: "Polygon", Coordinates: [][][2]float64{ring}}
}

// Counties：每个县一个要素，样式写入 properties
func Counties(layers []selection.Layer, selected string) *FeatureCollection {
	fc := &FeatureCollection{Type: "FeatureCollection", Features: make([]Feature, 0, len(layers))}
	for _, l := range layers {
		fc.Features = append(fc.Features, Feature{
			Type: "Feature",
			Properties: Properties{
				"name":        l.Name,
				"selected":    selected != "" && l.Name == selected,
				"color":       l.Style.Color,
				"fillColor":   l.Style.FillColor,
				"fillOpacity": l.Style.FillOpacity,
				"weight":      l.Style.Weight,
			},
			Geometry: polygon(l.Boundary),
		})
	}
	return fc
}

// Regions：区域叠加层
func Regions(layers []overlay.RegionLayer) *FeatureCollection {
	fc := &FeatureCollection{Type: "FeatureCollection", Features: make([]Feature, 0, len(layers))}
	for _, l := range layers {
		fc.Features = append(fc.Features, Feature{
			Type: "Feature",
			Properties: Properties{
				"name":        l.Name,
				"color":       l.Color,
				"fillColor":   l.FillColor,
				"fillOpacity": l.FillOpacity,
				"weight":      l.Weight,
			},
			Geometry: polygon(l.Outline),
		})
	}
	return fc
}

// Cities：城市标记点，同名城市保留为多个要素
func Cities(cities []catalog.City) *FeatureCollection {
	fc := &FeatureCollection{Type: "FeatureCollection", Features: make([]Feature, 0, len(cities))}
	for _, c := range cities {
		fc.Features = append(fc.Features, Feature{
			Type: "Feature",
			Properties: Properties{
				"name":        c.Name,
				"region":      c.Region,
				"regionColor": c.RegionColor,
			},
			Geometry: Geometry{Type: "Point", Coordinates: [2]float64{c.Point.Lon, c.Point.Lat}},
		})
	}
	return fc
}

// Marshal：统一序列化入口
func Marshal(fc *FeatureCollection) ([]byte, error) { return json.Marshal(fc) }
