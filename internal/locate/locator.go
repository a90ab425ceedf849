package locate

import (
	"fmt"
	"net"
	"time"

	"county-map/internal/catalog"
	"county-map/internal/geo"
	"county-map/internal/logger"
	"county-map/internal/metrics"
)

const geohashPrecision = 6

// Result：一次定位的结果
// County 为空表示坐标不在任何县内；NearestCity 始终尽量给出，便于前端提示
type Result struct {
	IP          string    `json:"ip"`
	Point       geo.Point `json:"point"`
	County      string    `json:"county,omitempty"`
	NearestCity string    `json:"nearest_city,omitempty"`
	Region      string    `json:"region,omitempty"`
	DistanceKm  float64   `json:"distance_km,omitempty"`
}

// 文档注释：定位编排（IP 解析 → 缓存 → 县判定 → 最近城市）
// 背景：县判定复用目录的点内判定；最近城市使用 KD-Tree，城市表在构造时建树。
// 约束：并发安全；目录只读。
type Locator struct {
	res    Resolver
	cat    *catalog.Catalog
	cities []catalog.City
	kd     *geo.KDTree
	cache  *lru
}

func New(res Resolver, cat *catalog.Catalog) *Locator {
	cities := cat.Cities()
	sites := make([]geo.Site, len(cities))
	for i, c := range cities {
		sites[i] = geo.Site{Point: c.Point, Ref: i}
	}
	return &Locator{res: res, cat: cat, cities: cities, kd: geo.BuildKDTree(sites), cache: newLRU(4096, time.Hour)}
}

// Locate：解析 IP 并定位到县
func (l *Locator) Locate(ipStr string) (Result, error) {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		metrics.LocateRequestsTotal.WithLabelValues("bad_ip").Inc()
		return Result{}, fmt.Errorf("%w: %q", ErrBadIP, ipStr)
	}
	pt, err := l.res.Resolve(ip)
	if err != nil {
		metrics.LocateRequestsTotal.WithLabelValues("unresolved").Inc()
		return Result{}, err
	}
	r := l.At(pt)
	r.IP = ip.String()
	if r.County == "" {
		metrics.LocateRequestsTotal.WithLabelValues("outside").Inc()
	} else {
		metrics.LocateRequestsTotal.WithLabelValues("hit").Inc()
	}
	logger.L().Debug("locate_done", "ip", r.IP, "county", r.County, "nearest_city", r.NearestCity)
	return r, nil
}

// At：坐标定位，不经过 IP 解析
func (l *Locator) At(pt geo.Point) Result {
	r := Result{Point: pt}
	r.County = l.county(pt)
	if s, d, ok := l.kd.Nearest(pt); ok {
		c := l.cities[s.Ref]
		r.NearestCity, r.Region, r.DistanceKm = c.Name, c.Region, d
	}
	return r
}

// county：geohash 格子可能横跨县界，缓存命中后仍以该县边界复核，不符时回退到目录判定
func (l *Locator) county(pt geo.Point) string {
	key := geo.Geohash(pt, geohashPrecision)
	if name, ok := l.cache.get(key); ok {
		if l.cat.LocatedIn(name, pt) {
			return name
		}
	}
	sub, ok := l.cat.Locate(pt)
	if !ok {
		return ""
	}
	l.cache.set(key, sub.Name)
	return sub.Name
}
