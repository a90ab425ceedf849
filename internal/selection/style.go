// 包 selection：当前选中县的状态机与逐县样式推导
package selection

import "county-map/internal/geo"

// Style：单个县的渲染样式，字段名与前端地图库的 path 选项一致
type Style struct {
	Color       string  `json:"color"`
	FillColor   string  `json:"fillColor"`
	FillOpacity float64 `json:"fillOpacity"`
	Weight      int     `json:"weight"`
}

const (
	HighlightColor = "red"
	BaseColor      = "blue"
)

var (
	// HighlightStyle：选中县
	HighlightStyle = Style{Color: HighlightColor, FillColor: HighlightColor, FillOpacity: 0.5, Weight: 3}
	// BaseStyle：其余县
	BaseStyle = Style{Color: BaseColor, FillColor: BaseColor, FillOpacity: 0.3, Weight: 2}
)

// Layer：交给地图表面绘制的一项（县名、边界、样式）
type Layer struct {
	Name     string   `json:"name"`
	Boundary geo.Ring `json:"boundary"`
	Style    Style    `json:"style"`
}

// RepaintFunc：状态变更后接收完整图层列表的回调
type RepaintFunc func(layers []Layer)

// Derive：样式推导表，(是否选中) → 样式
func Derive(selected bool) Style {
	if selected {
		return HighlightStyle
	}
	return BaseStyle
}
