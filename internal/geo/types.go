// 包 geo：县界与区域轮廓共用的最小几何结构；保持轻量以便常驻内存与快速判定
package geo

// 点坐标（WGS84）
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Ring：有序顶点序列构成的闭合多边形
// 约束：首尾点不要求相同，由渲染端闭合；顶点数少于 3 时视为无效
type Ring []Point

// BBox：minLon, minLat, maxLon, maxLat
type BBox [4]float64

// Valid：至少三个顶点
func (r Ring) Valid() bool { return len(r) >= 3 }

// Closed：返回首尾相接的副本，供 GeoJSON 等要求闭合环的输出使用
func (r Ring) Closed() Ring {
	out := make(Ring, len(r), len(r)+1)
	copy(out, r)
	if len(r) > 0 && r[0] != r[len(r)-1] {
		out = append(out, r[0])
	}
	return out
}

// Bounds：计算包围盒
func (r Ring) Bounds() BBox {
	b := BBox{180, 90, -180, -90}
	for _, pt := range r {
		if pt.Lon < b[0] {
			b[0] = pt.Lon
		}
		if pt.Lat < b[1] {
			b[1] = pt.Lat
		}
		if pt.Lon > b[2] {
			b[2] = pt.Lon
		}
		if pt.Lat > b[3] {
			b[3] = pt.Lat
		}
	}
	return b
}

// Contains：包围盒包含判定（含边界）
func (b BBox) Contains(pt Point) bool {
	return pt.Lon >= b[0] && pt.Lon <= b[2] && pt.Lat >= b[1] && pt.Lat <= b[3]
}
