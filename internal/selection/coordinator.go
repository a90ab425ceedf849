package selection

import (
	"county-map/internal/catalog"
	"county-map/internal/geo"
	"county-map/internal/logger"
)

// 文档注释：选择协调器
// 背景：持有“当前选中县”这一唯一可变状态；两态 Unselected / Selected(name)，仅经 Select/Clear 转移。
// 约束：非并发安全，须由单一控制流访问（见 surface.Hub）；公开操作从不返回错误，非法输入退化为空操作。
// 每次接受的命令之后都对全部县重新推导样式并整表推送给 repaint，不做增量修补。
type Coordinator struct {
	cat      *catalog.Catalog
	selected string
	has      bool
	repaint  RepaintFunc
}

// New：初始状态为未选中；repaint 可为 nil
func New(cat *catalog.Catalog, repaint RepaintFunc) *Coordinator {
	return &Coordinator{cat: cat, repaint: repaint}
}

// 文档注释：选中县
// 背景：选择器绑定固定选项列表，残留的旧界面状态可能送来目录中已不存在的名称。
// 返回：名称存在时切换并重绘，返回 true；不存在时状态不变、不重绘，返回 false。
func (c *Coordinator) Select(name string) bool {
	if !c.cat.Has(name) {
		logger.L().Debug("selection_ignored", "name", name)
		return false
	}
	prev := c.selected
	c.selected, c.has = name, true
	logger.L().Debug("selection_changed", "from", prev, "to", name)
	c.notify()
	return true
}

// SelectAt：按坐标选中所在县；未命中任何县时为空操作
func (c *Coordinator) SelectAt(pt geo.Point) (string, bool) {
	s, ok := c.cat.Locate(pt)
	if !ok {
		logger.L().Debug("selection_ignored", "lat", pt.Lat, "lon", pt.Lon)
		return "", false
	}
	return s.Name, c.Select(s.Name)
}

// Clear：无条件回到未选中，幂等
func (c *Coordinator) Clear() {
	c.selected, c.has = "", false
	logger.L().Debug("selection_cleared")
	c.notify()
}

// Current：当前选中县名；未选中时 ok 为 false
func (c *Coordinator) Current() (name string, ok bool) {
	return c.selected, c.has
}

// StyleFor：纯函数，不修改状态；目录外的名称按未选中处理
func (c *Coordinator) StyleFor(name string) Style {
	return Derive(c.has && c.selected == name)
}

// Layers：按目录顺序为每个县推导样式
func (c *Coordinator) Layers() []Layer {
	subs := c.cat.Subdivisions()
	out := make([]Layer, len(subs))
	for i, s := range subs {
		out[i] = Layer{Name: s.Name, Boundary: s.Boundary, Style: c.StyleFor(s.Name)}
	}
	return out
}

func (c *Coordinator) notify() {
	if c.repaint != nil {
		c.repaint(c.Layers())
	}
}
