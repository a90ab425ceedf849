package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"county-map/internal/geo"
	"county-map/internal/logger"
)

// 文档注释：已校验的只读目录
// 背景：进程启动时构建一次，按引用共享给协调器与渲染层；所有访问器返回副本或只读视图，不提供修改入口。
// 约束：构建失败时不返回任何部分结果。
type Catalog struct {
	subs        []Subdivision
	bounds      []geo.BBox
	index       map[string]int
	regions     []Region
	members     []Membership
	cities      []City
	fingerprint string
}

// 文档注释：校验并构建目录
// 背景：县界少于 3 个顶点、县名为空或重复、区域轮廓无效均视为启动期数据错误，直接返回。
// 约束：区域成员与城市只做拷贝不做校验，其一致性由 CheckMembership 以报告形式给出。
func New(src Source) (*Catalog, error) {
	if len(src.Subdivisions) == 0 {
		return nil, ErrEmpty
	}
	c := &Catalog{
		subs:   make([]Subdivision, 0, len(src.Subdivisions)),
		bounds: make([]geo.BBox, 0, len(src.Subdivisions)),
		index:  make(map[string]int, len(src.Subdivisions)),
	}
	for i, s := range src.Subdivisions {
		if s.Name == "" {
			return nil, fmt.Errorf("subdivision #%d: %w", i, ErrEmptyName)
		}
		if _, dup := c.index[s.Name]; dup {
			return nil, fmt.Errorf("subdivision %q: %w", s.Name, ErrDuplicateName)
		}
		if !s.Boundary.Valid() {
			return nil, fmt.Errorf("subdivision %q (%d points): %w", s.Name, len(s.Boundary), ErrTooFewPoints)
		}
		b := append(geo.Ring(nil), s.Boundary...)
		c.index[s.Name] = len(c.subs)
		c.subs = append(c.subs, Subdivision{Name: s.Name, Boundary: b})
		c.bounds = append(c.bounds, b.Bounds())
	}
	seen := make(map[string]bool, len(src.Regions))
	for i, r := range src.Regions {
		if r.Name == "" {
			return nil, fmt.Errorf("region #%d: %w", i, ErrEmptyName)
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("region %q: %w", r.Name, ErrDuplicateName)
		}
		if !r.Outline.Valid() {
			return nil, fmt.Errorf("region %q outline (%d points): %w", r.Name, len(r.Outline), ErrTooFewPoints)
		}
		seen[r.Name] = true
		c.regions = append(c.regions, Region{Name: r.Name, Color: r.Color, Outline: append(geo.Ring(nil), r.Outline...)})
	}
	for _, m := range src.Members {
		c.members = append(c.members, Membership{Region: m.Region, Counties: append([]string(nil), m.Counties...)})
	}
	c.cities = append([]City(nil), src.Cities...)
	c.fingerprint = fingerprint(c)
	logger.L().Debug("catalog_built",
		"subdivisions", len(c.subs),
		"regions", len(c.regions),
		"members", len(c.members),
		"cities", len(c.cities),
		"fingerprint", c.fingerprint,
	)
	return c, nil
}

func (c *Catalog) Len() int { return len(c.subs) }

// Names：按目录顺序返回县名，供选择器列表使用
func (c *Catalog) Names() []string {
	out := make([]string, len(c.subs))
	for i, s := range c.subs {
		out[i] = s.Name
	}
	return out
}

// Subdivisions：按目录顺序返回；Boundary 与目录共享底层数组，调用方不得修改
func (c *Catalog) Subdivisions() []Subdivision {
	return append([]Subdivision(nil), c.subs...)
}

// Lookup：精确名称查找
func (c *Catalog) Lookup(name string) (Subdivision, bool) {
	i, ok := c.index[name]
	if !ok {
		return Subdivision{}, false
	}
	return c.subs[i], true
}

func (c *Catalog) Has(name string) bool {
	_, ok := c.index[name]
	return ok
}

func (c *Catalog) Regions() []Region { return append([]Region(nil), c.regions...) }

func (c *Catalog) Region(name string) (Region, bool) {
	for _, r := range c.regions {
		if r.Name == name {
			return r, true
		}
	}
	return Region{}, false
}

func (c *Catalog) Members() []Membership { return append([]Membership(nil), c.members...) }

func (c *Catalog) Cities() []City { return append([]City(nil), c.cities...) }

// Fingerprint：目录内容摘要，内容不变则不变；用作外部缓存键的一部分
func (c *Catalog) Fingerprint() string { return c.fingerprint }

// 文档注释：按坐标定位县
// 背景：地图点击与 IP 定位共用；先包围盒过滤，再做射线法精确判定。
// 约束：近似县界可能重叠，命中多个时按目录顺序返回第一个。
func (c *Catalog) Locate(pt geo.Point) (Subdivision, bool) {
	for i, s := range c.subs {
		if !c.bounds[i].Contains(pt) {
			continue
		}
		if geo.PointInRing(pt, s.Boundary) {
			return s, true
		}
	}
	return Subdivision{}, false
}

// LocatedIn：Locate(pt) 是否恰好返回 name；只检查 name 及其之前的县，供缓存复核
func (c *Catalog) LocatedIn(name string, pt geo.Point) bool {
	idx, ok := c.index[name]
	if !ok || !c.bounds[idx].Contains(pt) || !geo.PointInRing(pt, c.subs[idx].Boundary) {
		return false
	}
	for i := 0; i < idx; i++ {
		if c.bounds[i].Contains(pt) && geo.PointInRing(pt, c.subs[i].Boundary) {
			return false
		}
	}
	return true
}

// Source：导出为原始输入结构，用于写库或导出
func (c *Catalog) Source() Source {
	return Source{
		Subdivisions: c.Subdivisions(),
		Regions:      c.Regions(),
		Members:      c.Members(),
		Cities:       c.Cities(),
	}
}

func fingerprint(c *Catalog) string {
	h := sha256.New()
	ring := func(r geo.Ring) {
		for _, p := range r {
			h.Write([]byte(strconv.FormatFloat(p.Lat, 'f', -1, 64)))
			h.Write([]byte{','})
			h.Write([]byte(strconv.FormatFloat(p.Lon, 'f', -1, 64)))
			h.Write([]byte{';'})
		}
	}
	for _, s := range c.subs {
		h.Write([]byte("s:" + s.Name + "\n"))
		ring(s.Boundary)
	}
	for _, r := range c.regions {
		h.Write([]byte("r:" + r.Name + ":" + r.Color + "\n"))
		ring(r.Outline)
	}
	for _, m := range c.members {
		h.Write([]byte("m:" + m.Region + "\n"))
		for _, n := range m.Counties {
			h.Write([]byte(n + "\n"))
		}
	}
	for _, ct := range c.cities {
		h.Write([]byte("c:" + ct.Name + ":" + ct.Region + ":" + ct.RegionColor + "\n"))
		ring(geo.Ring{ct.Point})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
