package surface

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"county-map/internal/catalog"
	"county-map/internal/geo"
	"county-map/internal/logger"
	"county-map/internal/metrics"
	"county-map/internal/selection"
)

// ErrClosed：中枢已停止
var ErrClosed = errors.New("surface: hub closed")

// 文档注释：事件中枢
// 背景：协调器要求单一控制流；中枢在 Run 的 goroutine 内独占协调器与表面集合，所有外部命令以闭包经通道送入顺序执行。
// 约束：状态变更后立即向全部表面整表重绘；表面出错只影响其自身（被移除），不会传回协调器。
// 心跳周期默认 10s，心跳失败的表面视为断开。
type Hub struct {
	coord     *selection.Coordinator
	surfaces  map[string]MapSurface
	order     []string
	cmds      chan func()
	quit      chan struct{}
	stopOnce  sync.Once
	hbEvery   time.Duration
	hbTimeout time.Duration
}

type Option func(*Hub)

// WithHeartbeat：心跳周期，<=0 关闭心跳
func WithHeartbeat(every time.Duration) Option {
	return func(h *Hub) { h.hbEvery = every }
}

func NewHub(cat *catalog.Catalog, opts ...Option) *Hub {
	h := &Hub{
		surfaces:  make(map[string]MapSurface),
		cmds:      make(chan func()),
		quit:      make(chan struct{}),
		hbEvery:   10 * time.Second,
		hbTimeout: 5 * time.Second,
	}
	for _, o := range opts {
		o(h)
	}
	h.coord = selection.New(cat, h.repaint)
	return h
}

// 文档注释：事件循环
// 背景：阻塞直到 ctx 取消或 Close；返回后所有命令立即得到 ErrClosed。
func (h *Hub) Run(ctx context.Context) {
	var tick <-chan time.Time
	if h.hbEvery > 0 {
		t := time.NewTicker(h.hbEvery)
		defer t.Stop()
		tick = t.C
	}
	defer h.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.quit:
			return
		case fn := <-h.cmds:
			fn()
		case <-tick:
			h.heartbeat(ctx)
		}
	}
}

// Close：停止事件循环，可重复调用
func (h *Hub) Close() {
	h.stopOnce.Do(func() { close(h.quit) })
}

// do：把 fn 送入事件循环并等待执行完毕
func (h *Hub) do(fn func()) error {
	done := make(chan struct{})
	select {
	case h.cmds <- func() { fn(); close(done) }:
	case <-h.quit:
		return ErrClosed
	}
	<-done
	return nil
}

// Result：一次命令之后的状态，与命令取自同一次事件循环
type Result struct {
	Accepted bool
	Current  string
	Selected bool
}

// Snapshot：同一时刻的选择状态与完整图层
type Snapshot struct {
	Current  string
	Selected bool
	Layers   []selection.Layer
}

// apply：在事件循环内执行 fn 并读取执行后的状态
// 约束：src 非空时只接受仍在册的表面发来的事件，已被移除的表面的事件直接丢弃
func (h *Hub) apply(src MapSurface, fn func() bool) (Result, bool) {
	var res Result
	held := true
	err := h.do(func() {
		if src != nil {
			if cur, ok := h.surfaces[src.ID()]; !ok || cur != src {
				held = false
				return
			}
		}
		res.Accepted = fn()
		res.Current, res.Selected = h.coord.Current()
	})
	if err != nil {
		return Result{}, false
	}
	if !held {
		logger.L().Debug("surface_event_ignored", "id", src.ID())
	}
	return res, held
}

func (h *Hub) selectFrom(src MapSurface, name string) Result {
	res, ok := h.apply(src, func() bool { return h.coord.Select(name) })
	if ok {
		countSelect(res.Accepted)
	}
	return res
}

func (h *Hub) selectAtFrom(src MapSurface, pt geo.Point) Result {
	res, ok := h.apply(src, func() bool {
		_, accepted := h.coord.SelectAt(pt)
		return accepted
	})
	if ok {
		countSelect(res.Accepted)
	}
	return res
}

func (h *Hub) clearFrom(src MapSurface) Result {
	res, ok := h.apply(src, func() bool {
		h.coord.Clear()
		return true
	})
	if ok {
		metrics.ClearsTotal.Inc()
	}
	return res
}

func countSelect(accepted bool) {
	if accepted {
		metrics.SelectionsTotal.Inc()
	} else {
		metrics.SelectionsIgnoredTotal.Inc()
	}
}

// Select：转发到协调器；未知县名为空操作，返回 false
func (h *Hub) Select(name string) bool { return h.selectFrom(nil, name).Accepted }

// SelectResult：同 Select，附带执行后的状态
func (h *Hub) SelectResult(name string) Result { return h.selectFrom(nil, name) }

// SelectAt：按坐标选择，返回命中的县名
func (h *Hub) SelectAt(pt geo.Point) (string, bool) {
	res := h.selectAtFrom(nil, pt)
	if !res.Accepted {
		return "", false
	}
	return res.Current, true
}

func (h *Hub) SelectAtResult(pt geo.Point) Result { return h.selectAtFrom(nil, pt) }

func (h *Hub) Clear() { h.clearFrom(nil) }

func (h *Hub) ClearResult() Result { return h.clearFrom(nil) }

func (h *Hub) Current() (string, bool) {
	var name string
	var ok bool
	_ = h.do(func() { name, ok = h.coord.Current() })
	return name, ok
}

// Layers：当前状态下的完整图层列表
func (h *Hub) Layers() []selection.Layer {
	return h.Snapshot().Layers
}

// Snapshot：一次事件循环内同时读取选择与图层，二者不会被并发命令拆开
func (h *Hub) Snapshot() Snapshot {
	var snap Snapshot
	_ = h.do(func() {
		snap.Current, snap.Selected = h.coord.Current()
		snap.Layers = h.coord.Layers()
	})
	return snap
}

// 文档注释：注册表面
// 背景：绑定用户事件回调后立即把当前状态完整绘制到新表面；同 ID 重复注册以后者为准。
// 约束：回调只在表面仍在册时生效，表面被移除后其事件不再改变选择。
func (h *Hub) Register(s MapSurface) error {
	s.OnUserSelect(func(name string) { h.selectFrom(s, name) })
	if ps, ok := s.(PointSelector); ok {
		ps.OnUserSelectAt(func(pt geo.Point) { h.selectAtFrom(s, pt) })
	}
	if cs, ok := s.(Clearer); ok {
		cs.OnUserClear(func() { h.clearFrom(s) })
	}
	return h.do(func() {
		if _, exists := h.surfaces[s.ID()]; !exists {
			h.order = append(h.order, s.ID())
		}
		h.surfaces[s.ID()] = s
		metrics.SurfacesConnected.Set(float64(len(h.surfaces)))
		logger.L().Info("surface_registered", "id", s.ID(), "total", len(h.surfaces))
		if err := h.paint(s, h.coord.Layers()); err != nil {
			h.drop(s.ID(), "paint", err)
		}
	})
}

// Unregister：移除表面；不存在时为空操作
func (h *Hub) Unregister(id string) {
	_ = h.do(func() {
		if _, ok := h.surfaces[id]; ok {
			h.remove(id)
			logger.L().Info("surface_unregistered", "id", id, "total", len(h.surfaces))
		}
	})
}

// Surfaces：当前已注册表面 ID，按注册顺序
func (h *Hub) Surfaces() []string {
	var out []string
	_ = h.do(func() { out = append(out, h.order...) })
	return out
}

// repaint：协调器回调，运行在事件循环内
func (h *Hub) repaint(layers []selection.Layer) {
	t0 := time.Now()
	metrics.RepaintsTotal.Inc()
	for _, id := range append([]string(nil), h.order...) {
		if err := h.paint(h.surfaces[id], layers); err != nil {
			h.drop(id, "paint", err)
		}
	}
	metrics.RepaintDurationMs.Observe(float64(time.Since(t0).Microseconds()) / 1000)
}

func (h *Hub) paint(s MapSurface, layers []selection.Layer) error {
	if err := s.ClearAll(); err != nil {
		return err
	}
	for _, l := range layers {
		if err := s.DrawSubdivision(l.Name, l.Boundary, l.Style); err != nil {
			return err
		}
	}
	if fe, ok := s.(FrameEnder); ok {
		name, _ := h.coord.Current()
		return fe.EndFrame(name)
	}
	return nil
}

func (h *Hub) heartbeat(ctx context.Context) {
	for _, id := range append([]string(nil), h.order...) {
		hb, ok := h.surfaces[id].(Heartbeater)
		if !ok {
			continue
		}
		cctx, cancel := context.WithTimeout(ctx, h.hbTimeout)
		err := hb.Heartbeat(cctx)
		cancel()
		if err != nil {
			metrics.SurfaceHeartbeatTotal.WithLabelValues("fail").Inc()
			h.drop(id, "heartbeat", err)
			continue
		}
		metrics.SurfaceHeartbeatTotal.WithLabelValues("ok").Inc()
	}
}

// drop：移除并关闭出错的表面；可关闭的表面（如 websocket）随之断开，读循环结束
func (h *Hub) drop(id, reason string, err error) {
	logger.L().Debug("surface_dropped", "id", id, "reason", reason, "err", err)
	metrics.SurfaceDroppedTotal.WithLabelValues(reason).Inc()
	s := h.surfaces[id]
	h.remove(id)
	if c, ok := s.(io.Closer); ok {
		if cerr := c.Close(); cerr != nil {
			logger.L().Debug("surface_close_error", "id", id, "err", cerr)
		}
	}
}

func (h *Hub) remove(id string) {
	delete(h.surfaces, id)
	for i, v := range h.order {
		if v == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	metrics.SurfacesConnected.Set(float64(len(h.surfaces)))
}
