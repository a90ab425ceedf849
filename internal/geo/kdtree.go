package geo

import "math"

// Site：参与最近邻查询的点，Ref 为调用方自己的下标
type Site struct {
	Point
	Ref int
}

// 文档注释：KD-Tree 最近邻（二维经纬）
// 背景：县界未命中时给出最近的城市作为上下文；城市数量小，构建一次后只读。
// 约束：经度/纬度交替分割；仅支持最近一个点查询。
type KDTree struct {
	root *kdNode
}

type kdNode struct {
	s  Site
	ax int // 0:lon,1:lat
	l  *kdNode
	r  *kdNode
}

// BuildKDTree：按中位数递归建树，不修改入参
func BuildKDTree(sites []Site) *KDTree {
	cp := append([]Site(nil), sites...)
	return &KDTree{root: build(cp, 0)}
}

func build(ss []Site, depth int) *kdNode {
	if len(ss) == 0 {
		return nil
	}
	ax := depth % 2
	mid := len(ss) / 2
	selectNth(ss, mid, ax)
	n := &kdNode{s: ss[mid], ax: ax}
	n.l = build(ss[:mid], depth+1)
	n.r = build(ss[mid+1:], depth+1)
	return n
}

// 原地 nth 元素选择
func selectNth(a []Site, n int, ax int) {
	lo, hi := 0, len(a)-1
	for lo < hi {
		p := partition(a, lo, hi, (lo+hi)/2, ax)
		if p == n {
			return
		}
		if n < p {
			hi = p - 1
		} else {
			lo = p + 1
		}
	}
}

func partition(a []Site, lo, hi, pivot, ax int) int {
	pv := a[pivot]
	a[pivot], a[hi] = a[hi], a[pivot]
	i := lo
	for j := lo; j < hi; j++ {
		if axisVal(a[j].Point, ax) < axisVal(pv.Point, ax) {
			a[i], a[j] = a[j], a[i]
			i++
		}
	}
	a[i], a[hi] = a[hi], a[i]
	return i
}

func axisVal(p Point, ax int) float64 {
	if ax == 0 {
		return p.Lon
	}
	return p.Lat
}

// Nearest：返回最近点与距离（千米）；空树返回 false
func (t *KDTree) Nearest(pt Point) (Site, float64, bool) {
	if t == nil || t.root == nil {
		return Site{}, 0, false
	}
	var best Site
	bestD := math.MaxFloat64
	var dfs func(n *kdNode)
	dfs = func(n *kdNode) {
		if n == nil {
			return
		}
		if d := Haversine(pt, n.s.Point); d < bestD {
			bestD = d
			best = n.s
		}
		key, q := axisVal(pt, n.ax), axisVal(n.s.Point, n.ax)
		first, second := n.l, n.r
		if key > q {
			first, second = n.r, n.l
		}
		dfs(first)
		// 一度经纬约 111km；经度方向随纬度缩短，阈值放宽一倍，纬度 60° 以内不会漏
		if math.Abs(key-q) < bestD/111.0*2 {
			dfs(second)
		}
	}
	dfs(t.root)
	return best, bestD, true
}
