// 包 middleware：HTTP 入口的通用包装（限流、CORS、边缘地理头）
package middleware

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gorilla/handlers"

	"county-map/internal/geo"
	"county-map/internal/logger"
)

type ctxKey int

const edgeGeoKey ctxKey = iota

// Wrap：限流 → CORS → 边缘地理头注入 → next
func Wrap(next http.Handler) http.Handler {
	h := edgeGeo(next)
	h = cors(h)
	return RateLimit(h)
}

// cors：CORS_ORIGINS 逗号分隔，未配置时允许任意来源
func cors(next http.Handler) http.Handler {
	origins := []string{"*"}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins = strings.Split(v, ",")
	}
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(next)
}

// 文档注释：边缘节点地理头
// 背景：部署在 CDN 之后时，边缘节点会把访客经纬度写入请求头；没有本地 IP 库时可直接用于定位。
// 约束：头名可经 EDGE_GEO_LAT_HEADER/EDGE_GEO_LON_HEADER 覆盖；任一缺失或非法即视为无。
func edgeGeo(next http.Handler) http.Handler {
	latH := os.Getenv("EDGE_GEO_LAT_HEADER")
	if latH == "" {
		latH = "X-EO-Geo-Latitude"
	}
	lonH := os.Getenv("EDGE_GEO_LON_HEADER")
	if lonH == "" {
		lonH = "X-EO-Geo-Longitude"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lat, err1 := strconv.ParseFloat(r.Header.Get(latH), 64)
		lon, err2 := strconv.ParseFloat(r.Header.Get(lonH), 64)
		if err1 == nil && err2 == nil {
			pt := geo.Point{Lat: lat, Lon: lon}
			logger.L().Debug("edge_geo_inject", "lat", lat, "lon", lon)
			r = r.WithContext(context.WithValue(r.Context(), edgeGeoKey, pt))
		}
		next.ServeHTTP(w, r)
	})
}

// EdgeGeo：读取边缘节点注入的访客坐标
func EdgeGeo(ctx context.Context) (geo.Point, bool) {
	pt, ok := ctx.Value(edgeGeoKey).(geo.Point)
	return pt, ok
}
