// 包 surface：地图表面契约与事件中枢；协调器只通过这里与外部绘制端交互
package surface

import (
	"context"

	"county-map/internal/geo"
	"county-map/internal/selection"
)

// 文档注释：地图表面契约
// 背景：瓦片、缩放、地图生命周期都由表面自行负责；核心只下发（边界，样式）并接收县名选择事件。
// 约束：OnUserSelect 注册的回调不得在 ClearAll/DrawSubdivision 内同步触发，否则会与中枢事件循环互等。
type MapSurface interface {
	ID() string
	ClearAll() error
	DrawSubdivision(name string, boundary geo.Ring, style selection.Style) error
	OnUserSelect(fn func(name string))
}

// 以下为可选能力，表面按需实现

// PointSelector：表面可上报点击坐标
type PointSelector interface {
	OnUserSelectAt(fn func(pt geo.Point))
}

// Clearer：表面自带清除按钮
type Clearer interface {
	OnUserClear(fn func())
}

// FrameEnder：一次完整重绘结束的通知，selected 为空表示未选中
type FrameEnder interface {
	EndFrame(selected string) error
}

// Heartbeater：存活探测；返回错误的表面会被移除
type Heartbeater interface {
	Heartbeat(ctx context.Context) error
}
