package catalog

import (
	"fmt"
	"io"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"county-map/internal/geo"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Geometry   struct {
		Type        string              `json:"type"`
		Coordinates jsoniter.RawMessage `json:"coordinates"`
	} `json:"geometry"`
}

// 县名属性键，按顺序尝试；CNTY_NM 为德州交通局县界数据的字段名
var nameKeys = []string{"name", "NAME", "CNTY_NM"}

// 文档注释：解析 GeoJSON FeatureCollection 为县列表
// 背景：内嵌县界与外部县界文件共用同一格式；坐标顺序按 GeoJSON 约定为 [lon, lat]。
// 约束：仅支持 Polygon/MultiPolygon；只取外环，MultiPolygon 取顶点最多的一块；去掉与首点重复的闭合点。
// 异常：缺少县名、几何类型不支持或坐标无法解析时返回 error，不返回部分结果。
func ParseGeoJSON(r io.Reader) ([]Subdivision, error) {
	var fc featureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	if !strings.EqualFold(fc.Type, "FeatureCollection") {
		return nil, fmt.Errorf("geojson: unexpected type %q", fc.Type)
	}
	out := make([]Subdivision, 0, len(fc.Features))
	for i, f := range fc.Features {
		name := featureName(f.Properties)
		if name == "" {
			return nil, fmt.Errorf("feature #%d: %w", i, ErrEmptyName)
		}
		ring, err := outerRing(f.Geometry.Type, f.Geometry.Coordinates)
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", name, err)
		}
		out = append(out, Subdivision{Name: name, Boundary: ring})
	}
	return out, nil
}

// LoadGeoJSONFile：从文件读取县界
func LoadGeoJSONFile(path string) ([]Subdivision, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseGeoJSON(f)
}

func featureName(p map[string]any) string {
	for _, k := range nameKeys {
		if v, ok := p[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func outerRing(typ string, raw jsoniter.RawMessage) (geo.Ring, error) {
	switch strings.ToLower(typ) {
	case "polygon":
		var rings [][][]float64
		if err := json.Unmarshal(raw, &rings); err != nil {
			return nil, fmt.Errorf("polygon coordinates: %w", err)
		}
		if len(rings) == 0 {
			return nil, ErrTooFewPoints
		}
		return toRing(rings[0])
	case "multipolygon":
		var parts [][][][]float64
		if err := json.Unmarshal(raw, &parts); err != nil {
			return nil, fmt.Errorf("multipolygon coordinates: %w", err)
		}
		var best [][]float64
		for _, p := range parts {
			if len(p) > 0 && len(p[0]) > len(best) {
				best = p[0]
			}
		}
		return toRing(best)
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", typ)
	}
}

func toRing(pos [][]float64) (geo.Ring, error) {
	r := make(geo.Ring, 0, len(pos))
	for _, p := range pos {
		if len(p) < 2 {
			return nil, fmt.Errorf("position %v: need [lon, lat]", p)
		}
		r = append(r, geo.Point{Lat: p[1], Lon: p[0]})
	}
	if len(r) > 1 && r[0] == r[len(r)-1] {
		r = r[:len(r)-1]
	}
	return r, nil
}
