package api

import (
	"county-map/internal/geo"
	"county-map/internal/selection"
)

// countyDetail：单个县的详情
type countyDetail struct {
	Name     string          `json:"name"`
	Boundary geo.Ring        `json:"boundary"`
	Regions  []string        `json:"regions"`
	Selected bool            `json:"selected"`
	Style    selection.Style `json:"style"`
}

// selectionState：选择状态；未选中时 selected 为 null
type selectionState struct {
	Selected *string `json:"selected"`
	Accepted *bool   `json:"accepted,omitempty"`
}

// selectRequest：按名称或坐标选择，二者都给时以名称为准
type selectRequest struct {
	Name string   `json:"name"`
	Lat  *float64 `json:"lat"`
	Lon  *float64 `json:"lon"`
}

type regionInfo struct {
	Name     string   `json:"name"`
	Color    string   `json:"color"`
	Counties []string `json:"counties"`
}
