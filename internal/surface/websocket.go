package surface

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"

	"county-map/internal/geo"
	"county-map/internal/logger"
	"county-map/internal/selection"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	writeWait      = 5 * time.Second
	maxMessageSize = 4096
)

type clearFrame struct {
	Type string `json:"type"`
}

type drawFrame struct {
	Type     string          `json:"type"`
	Name     string          `json:"name"`
	Boundary [][2]float64    `json:"boundary"` // [lat, lon]，与浏览器端地图库的 latLngs 一致
	Style    selection.Style `json:"style"`
}

type endFrame struct {
	Type     string  `json:"type"`
	Selected *string `json:"selected"`
}

// inFrame：浏览器上报的用户事件
type inFrame struct {
	Type string  `json:"type"` // select | select_at | clear
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// 文档注释：WebSocket 地图表面
// 背景：浏览器页面即地图表面；服务端推送 clear/draw/frame_end 帧，浏览器回送 select/select_at/clear 事件。
// 约束：写操作串行化（事件循环写、心跳写可能并发）；读循环由 ReadLoop 独占。
// pongWait 内既无消息也无 pong 时读循环超时退出，半开连接据此被回收。
type WSSurface struct {
	id       string
	conn     *websocket.Conn
	wmu      sync.Mutex
	pongWait time.Duration

	cbmu       sync.RWMutex
	onSelect   func(string)
	onSelectAt func(geo.Point)
	onClear    func()
}

// NewWSSurface：pongWait 应大于心跳周期，<=0 表示不设读超时
func NewWSSurface(conn *websocket.Conn, pongWait time.Duration) *WSSurface {
	return &WSSurface{id: uuid.NewString(), conn: conn, pongWait: pongWait}
}

// Close：断开连接，ReadLoop 随之返回
func (s *WSSurface) Close() error { return s.conn.Close() }

func (s *WSSurface) ID() string { return s.id }

func (s *WSSurface) OnUserSelect(fn func(string)) {
	s.cbmu.Lock()
	s.onSelect = fn
	s.cbmu.Unlock()
}

func (s *WSSurface) OnUserSelectAt(fn func(geo.Point)) {
	s.cbmu.Lock()
	s.onSelectAt = fn
	s.cbmu.Unlock()
}

func (s *WSSurface) OnUserClear(fn func()) {
	s.cbmu.Lock()
	s.onClear = fn
	s.cbmu.Unlock()
}

func (s *WSSurface) ClearAll() error {
	return s.writeJSON(clearFrame{Type: "clear"})
}

func (s *WSSurface) DrawSubdivision(name string, boundary geo.Ring, style selection.Style) error {
	pts := make([][2]float64, len(boundary))
	for i, p := range boundary {
		pts[i] = [2]float64{p.Lat, p.Lon}
	}
	return s.writeJSON(drawFrame{Type: "draw", Name: name, Boundary: pts, Style: style})
}

func (s *WSSurface) EndFrame(selected string) error {
	f := endFrame{Type: "frame_end"}
	if selected != "" {
		f.Selected = &selected
	}
	return s.writeJSON(f)
}

// Heartbeat：发送 ping 控制帧
func (s *WSSurface) Heartbeat(ctx context.Context) error {
	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	s.wmu.Lock()
	defer s.wmu.Unlock()
	return s.conn.WriteControl(websocket.PingMessage, nil, deadline)
}

func (s *WSSurface) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.wmu.Lock()
	defer s.wmu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, b)
}

// 文档注释：读循环
// 背景：把浏览器事件转发给已注册回调；无法解析的消息与未知类型直接丢弃，不断开连接。
// 返回：连接关闭或 ctx 取消时返回。
func (s *WSSurface) ReadLoop(ctx context.Context) error {
	s.conn.SetReadLimit(maxMessageSize)
	s.extendReadDeadline()
	s.conn.SetPongHandler(func(string) error {
		s.extendReadDeadline()
		return nil
	})
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		_ = s.conn.Close()
	}()
	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		s.extendReadDeadline()
		var f inFrame
		if err := json.Unmarshal(msg, &f); err != nil {
			logger.L().Debug("surface_frame_invalid", "id", s.id, "err", err)
			continue
		}
		s.dispatch(f)
	}
}

func (s *WSSurface) extendReadDeadline() {
	if s.pongWait > 0 {
		_ = s.conn.SetReadDeadline(time.Now().Add(s.pongWait))
	}
}

func (s *WSSurface) dispatch(f inFrame) {
	s.cbmu.RLock()
	onSelect, onSelectAt, onClear := s.onSelect, s.onSelectAt, s.onClear
	s.cbmu.RUnlock()
	switch f.Type {
	case "select":
		if onSelect != nil {
			onSelect(f.Name)
		}
	case "select_at":
		if onSelectAt != nil {
			onSelectAt(geo.Point{Lat: f.Lat, Lon: f.Lon})
		}
	case "clear":
		if onClear != nil {
			onClear()
		}
	default:
		logger.L().Debug("surface_frame_unknown", "id", s.id, "type", f.Type)
	}
}
