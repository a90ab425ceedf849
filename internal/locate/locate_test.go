package locate

import (
	"errors"
	"net"
	"testing"
	"time"

	"county-map/internal/catalog"
	"county-map/internal/geo"
)

type fakeResolver map[string]geo.Point

func (f fakeResolver) Resolve(ip net.IP) (geo.Point, error) {
	if p, ok := f[ip.String()]; ok {
		return p, nil
	}
	return geo.Point{}, ErrNoLocation
}

func newLocator(t *testing.T) *Locator {
	t.Helper()
	cat, err := catalog.Embedded()
	if err != nil {
		t.Fatal(err)
	}
	return New(fakeResolver{
		"203.0.113.7":  {Lat: 32.78, Lon: -96.80}, // Dallas
		"198.51.100.1": {Lat: 40.71, Lon: -74.00}, // New York
	}, cat)
}

func TestLocate(t *testing.T) {
	l := newLocator(t)
	r, err := l.Locate("203.0.113.7")
	if err != nil {
		t.Fatal(err)
	}
	if r.County != "Dallas" || r.NearestCity != "Dallas" {
		t.Errorf("got %+v", r)
	}

	r, err = l.Locate("198.51.100.1")
	if err != nil {
		t.Fatal(err)
	}
	if r.County != "" {
		t.Errorf("county = %q outside Texas", r.County)
	}
	if r.NearestCity == "" || r.DistanceKm < 1000 {
		t.Errorf("nearest = %q at %.0f km", r.NearestCity, r.DistanceKm)
	}
}

func TestLocateErrors(t *testing.T) {
	l := newLocator(t)
	if _, err := l.Locate("not-an-ip"); !errors.Is(err, ErrBadIP) {
		t.Errorf("err = %v, want ErrBadIP", err)
	}
	if _, err := l.Locate("192.0.2.1"); !errors.Is(err, ErrNoLocation) {
		t.Errorf("err = %v, want ErrNoLocation", err)
	}
}

func TestAtUsesCache(t *testing.T) {
	l := newLocator(t)
	pt := geo.Point{Lat: 33.58, Lon: -101.85}
	first := l.At(pt)
	if first.County != "Lubbock" {
		t.Fatalf("county = %q", first.County)
	}
	if l.cache.len() != 1 {
		t.Errorf("cache len = %d", l.cache.len())
	}
	if again := l.At(pt); again.County != "Lubbock" {
		t.Errorf("cached county = %q", again.County)
	}
}

func TestLRUEviction(t *testing.T) {
	c := newLRU(2, time.Hour)
	c.set("a", "1")
	c.set("b", "2")
	c.get("a")
	c.set("c", "3")
	if _, ok := c.get("b"); ok {
		t.Error("least recently used key survived")
	}
	if v, ok := c.get("a"); !ok || v != "1" {
		t.Errorf("a = %q, %v", v, ok)
	}

	exp := newLRU(2, -time.Second)
	exp.set("x", "1")
	if _, ok := exp.get("x"); ok {
		t.Error("expired entry returned")
	}
}

func TestAtRechecksCachedCounty(t *testing.T) {
	west := geo.Ring{{Lat: 30, Lon: -98}, {Lat: 30, Lon: -97.5}, {Lat: 30.5, Lon: -97.5}, {Lat: 30.5, Lon: -98}}
	east := geo.Ring{{Lat: 30, Lon: -97.5}, {Lat: 30, Lon: -97}, {Lat: 30.5, Lon: -97}, {Lat: 30.5, Lon: -97.5}}
	cat, err := catalog.New(catalog.Source{Subdivisions: []catalog.Subdivision{
		{Name: "West", Boundary: west},
		{Name: "East", Boundary: east},
	}})
	if err != nil {
		t.Fatal(err)
	}
	l := New(fakeResolver{}, cat)
	pw := geo.Point{Lat: 30.2, Lon: -97.5001}
	pe := geo.Point{Lat: 30.2, Lon: -97.4999}
	if geo.Geohash(pw, geohashPrecision) != geo.Geohash(pe, geohashPrecision) {
		t.Fatal("points no longer share a cache cell")
	}
	if got := l.At(pw).County; got != "West" {
		t.Fatalf("At(west side) = %q", got)
	}
	if got := l.At(pe).County; got != "East" {
		t.Errorf("At(east side) = %q, want East", got)
	}
	if got := l.At(pw).County; got != "West" {
		t.Errorf("At(west side) after east = %q, want West", got)
	}
}
