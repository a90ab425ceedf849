// 包 api：目录查询、选择控制、定位与地图表面接入的 HTTP 接口
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"county-map/internal/catalog"
	"county-map/internal/geo"
	"county-map/internal/geojson"
	"county-map/internal/locate"
	"county-map/internal/logger"
	"county-map/internal/middleware"
	"county-map/internal/overlay"
	"county-map/internal/selection"
	"county-map/internal/surface"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Deps：路由依赖；Locator 与 Redis 可为空
type Deps struct {
	Catalog *catalog.Catalog
	Hub     *surface.Hub
	Locator *locate.Locator
	Redis   *redis.Client
	// WSContext：websocket 读循环的父上下文，服务关闭时取消
	WSContext context.Context
	// PongWait：websocket 读超时，应大于中枢心跳周期；<=0 不设超时
	PongWait time.Duration
}

type server struct {
	Deps
	cache    geoCache
	upgrader websocket.Upgrader
}

// 构建并返回 API 路由：独立 Router 便于在主入口挂载到 API_BASE 前缀
func BuildRoutes(d Deps) *mux.Router {
	if d.WSContext == nil {
		d.WSContext = context.Background()
	}
	s := &server{
		Deps:     d,
		cache:    geoCache{rc: d.Redis, prefix: "countymap:geojson:" + d.Catalog.Fingerprint() + ":"},
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 4096, CheckOrigin: func(*http.Request) bool { return true }},
	}
	r := mux.NewRouter()
	r.HandleFunc("/counties", s.counties).Methods(http.MethodGet)
	r.HandleFunc("/counties.geojson", s.countiesGeoJSON).Methods(http.MethodGet)
	r.HandleFunc("/counties/{name}", s.county).Methods(http.MethodGet)
	r.HandleFunc("/regions", s.regions).Methods(http.MethodGet)
	r.HandleFunc("/regions.geojson", s.regionsGeoJSON).Methods(http.MethodGet)
	r.HandleFunc("/cities.geojson", s.citiesGeoJSON).Methods(http.MethodGet)
	r.HandleFunc("/selection", s.getSelection).Methods(http.MethodGet)
	r.HandleFunc("/selection", s.putSelection).Methods(http.MethodPut)
	r.HandleFunc("/selection", s.deleteSelection).Methods(http.MethodDelete)
	r.HandleFunc("/membership/report", s.membershipReport).Methods(http.MethodGet)
	r.HandleFunc("/locate", s.locate).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.ws).Methods(http.MethodGet)
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeGeoJSON(w http.ResponseWriter, b []byte) {
	w.Header().Set("content-type", "application/geo+json")
	_, _ = w.Write(b)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func stateOf(current string, selected bool, accepted *bool) selectionState {
	st := selectionState{Accepted: accepted}
	if selected {
		st.Selected = &current
	}
	return st
}

func resultState(res surface.Result) selectionState {
	accepted := res.Accepted
	return stateOf(res.Current, res.Selected, &accepted)
}

func (s *server) counties(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Catalog.Names())
}

func (s *server) county(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	sub, ok := s.Catalog.Lookup(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown county")
		return
	}
	cur, _ := s.Hub.Current()
	selected := cur == sub.Name
	regions := s.Catalog.RegionsOf(sub.Name)
	if regions == nil {
		regions = []string{}
	}
	writeJSON(w, http.StatusOK, countyDetail{
		Name:     sub.Name,
		Boundary: sub.Boundary,
		Regions:  regions,
		Selected: selected,
		Style:    selection.Derive(selected),
	})
}

// countiesGeoJSON：随选择状态变化，不缓存
func (s *server) countiesGeoJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.Hub.Snapshot()
	b, err := geojson.Marshal(geojson.Counties(snap.Layers, snap.Current))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeGeoJSON(w, b)
}

func (s *server) regions(w http.ResponseWriter, r *http.Request) {
	members := map[string][]string{}
	for _, m := range s.Catalog.Members() {
		members[m.Region] = append(members[m.Region], m.Counties...)
	}
	out := make([]regionInfo, 0, len(s.Catalog.Regions()))
	for _, rg := range s.Catalog.Regions() {
		cs := members[rg.Name]
		if cs == nil {
			cs = []string{}
		}
		out = append(out, regionInfo{Name: rg.Name, Color: rg.Color, Counties: cs})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) regionsGeoJSON(w http.ResponseWriter, r *http.Request) {
	b, err := s.cache.get(r.Context(), "regions", func() ([]byte, error) {
		return geojson.Marshal(geojson.Regions(overlay.Layers(s.Catalog)))
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeGeoJSON(w, b)
}

func (s *server) citiesGeoJSON(w http.ResponseWriter, r *http.Request) {
	b, err := s.cache.get(r.Context(), "cities", func() ([]byte, error) {
		return geojson.Marshal(geojson.Cities(s.Catalog.Cities()))
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeGeoJSON(w, b)
}

func (s *server) getSelection(w http.ResponseWriter, r *http.Request) {
	cur, ok := s.Hub.Current()
	writeJSON(w, http.StatusOK, stateOf(cur, ok, nil))
}

// 文档注释：选择
// 背景：未知县名或坐标未落在任何县内时选择保持不变，仍返回 200 与当前状态，accepted=false。
func (s *server) putSelection(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	var res surface.Result
	switch {
	case req.Name != "":
		res = s.Hub.SelectResult(req.Name)
	case req.Lat != nil && req.Lon != nil:
		res = s.Hub.SelectAtResult(geo.Point{Lat: *req.Lat, Lon: *req.Lon})
	default:
		writeError(w, http.StatusBadRequest, "name or lat/lon required")
		return
	}
	writeJSON(w, http.StatusOK, resultState(res))
}

func (s *server) deleteSelection(w http.ResponseWriter, r *http.Request) {
	res := s.Hub.ClearResult()
	writeJSON(w, http.StatusOK, stateOf(res.Current, res.Selected, nil))
}

func (s *server) membershipReport(w http.ResponseWriter, r *http.Request) {
	rep := s.Catalog.CheckMembership()
	writeJSON(w, http.StatusOK, map[string]any{"clean": rep.Clean(), "report": rep})
}

// 文档注释：访客定位
// 背景：显式 ip 参数优先走本地 IP 库；否则若边缘节点已注入坐标则直接使用，再否则按请求来源 IP 查库。
// 约束：select=true 且命中县时同步修改选择；未命中不改变选择。
func (s *server) locate(w http.ResponseWriter, r *http.Request) {
	var (
		res locate.Result
		err error
	)
	pt, edge := middleware.EdgeGeo(r.Context())
	switch {
	case r.URL.Query().Get("ip") == "" && edge && s.Locator != nil:
		res = s.Locator.At(pt)
	case s.Locator == nil:
		writeError(w, http.StatusServiceUnavailable, "locate disabled")
		return
	default:
		res, err = s.Locator.Locate(getClientIP(r))
	}
	if err != nil {
		code := http.StatusNotFound
		if errors.Is(err, locate.ErrBadIP) {
			code = http.StatusBadRequest
		}
		writeError(w, code, err.Error())
		return
	}
	if sel, _ := strconv.ParseBool(r.URL.Query().Get("select")); sel && res.County != "" {
		s.Hub.Select(res.County)
	}
	writeJSON(w, http.StatusOK, res)
}

// ws：升级为地图表面；连接存续期间由中枢推送重绘
func (s *server) ws(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.L().Debug("ws_upgrade_error", "err", err)
		return
	}
	sf := surface.NewWSSurface(conn, s.PongWait)
	if err := s.Hub.Register(sf); err != nil {
		_ = conn.Close()
		return
	}
	defer s.Hub.Unregister(sf.ID())
	err = sf.ReadLoop(s.WSContext)
	logger.L().Debug("ws_closed", "id", sf.ID(), "err", err)
}
