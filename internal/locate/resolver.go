// 包 locate：访客 IP → 坐标 → 县，供“定位到我所在的县”使用
package locate

import (
	"errors"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"

	"county-map/internal/geo"
)

var (
	// ErrNoLocation：库中无该 IP 的坐标
	ErrNoLocation = errors.New("locate: no location for ip")
	ErrBadIP      = errors.New("locate: invalid ip")
)

// Resolver：IP → 坐标
type Resolver interface {
	Resolve(ip net.IP) (geo.Point, error)
}

// 文档注释：MaxMind City 库解析器
// 背景：本地 mmdb 文件查询，无外部网络依赖；库文件由运维放置并定期更新。
// 约束：经纬度均为 0 视为无坐标（GeoLite2 对未知地址的约定）。
type MMDB struct {
	r *geoip2.Reader
}

func OpenMMDB(path string) (*MMDB, error) {
	r, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mmdb %s: %w", path, err)
	}
	return &MMDB{r: r}, nil
}

func (m *MMDB) Resolve(ip net.IP) (geo.Point, error) {
	rec, err := m.r.City(ip)
	if err != nil {
		return geo.Point{}, err
	}
	if rec.Location.Latitude == 0 && rec.Location.Longitude == 0 {
		return geo.Point{}, ErrNoLocation
	}
	return geo.Point{Lat: rec.Location.Latitude, Lon: rec.Location.Longitude}, nil
}

func (m *MMDB) Close() error { return m.r.Close() }
