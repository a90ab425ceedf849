package geo

import (
	"math"
	"testing"
)

func square(minLat, maxLat, minLon, maxLon float64) Ring {
	return Ring{{minLat, minLon}, {minLat, maxLon}, {maxLat, maxLon}, {maxLat, minLon}}
}

func TestPointInRing(t *testing.T) {
	r := square(32.55, 32.99, -97.04, -96.52)
	cases := []struct {
		name string
		pt   Point
		want bool
	}{
		{"center", Point{32.77, -96.79}, true},
		{"west", Point{32.77, -97.30}, false},
		{"north", Point{33.10, -96.79}, false},
		{"far", Point{0, 0}, false},
	}
	for _, c := range cases {
		if got := PointInRing(c.pt, r); got != c.want {
			t.Errorf("%s: PointInRing = %v, want %v", c.name, got, c.want)
		}
	}
	if PointInRing(Point{1, 1}, Ring{{0, 0}, {2, 2}}) {
		t.Error("degenerate ring should contain nothing")
	}
}

func TestPointInConcaveRing(t *testing.T) {
	// U 形：缺口处不应命中
	u := Ring{{0, 0}, {0, 3}, {3, 3}, {3, 2}, {1, 2}, {1, 1}, {3, 1}, {3, 0}}
	if !PointInRing(Point{Lat: 0.5, Lon: 1.5}, u) {
		t.Error("expected hit in lower arm")
	}
	if PointInRing(Point{Lat: 1.5, Lon: 1.5}, u) {
		t.Error("expected miss in notch")
	}
}

func TestRingClosedAndBounds(t *testing.T) {
	r := square(1, 2, 3, 4)
	c := r.Closed()
	if len(c) != len(r)+1 || c[0] != c[len(c)-1] {
		t.Fatalf("Closed() = %v", c)
	}
	if len(r) != 4 {
		t.Fatal("Closed() must not modify the receiver")
	}
	if again := c.Closed(); len(again) != len(c) {
		t.Errorf("closing a closed ring added a point: %d", len(again))
	}
	b := r.Bounds()
	if b != (BBox{3, 1, 4, 2}) {
		t.Errorf("Bounds() = %v", b)
	}
	if !b.Contains(Point{1.5, 3.5}) || b.Contains(Point{2.5, 3.5}) {
		t.Error("BBox.Contains mismatch")
	}
}

func TestGeohash(t *testing.T) {
	if got := Geohash(Point{Lat: 57.64911, Lon: 10.40744}, 11); got != "u4pruydqqvj" {
		t.Errorf("Geohash = %q", got)
	}
	a := Geohash(Point{Lat: 32.7767, Lon: -96.7970}, 6)
	b := Geohash(Point{Lat: 32.7768, Lon: -96.7971}, 6)
	if a != b {
		t.Errorf("nearby points hashed apart: %s %s", a, b)
	}
}

func TestHaversine(t *testing.T) {
	// 达拉斯 → 沃斯堡 约 50km
	d := Haversine(Point{32.7767, -96.7970}, Point{32.7555, -97.3308})
	if d < 45 || d > 55 {
		t.Errorf("Haversine = %.1f km", d)
	}
	if Haversine(Point{1, 1}, Point{1, 1}) != 0 {
		t.Error("zero distance expected")
	}
}

func TestKDTreeNearestMatchesBruteForce(t *testing.T) {
	var sites []Site
	for i := 0; i < 60; i++ {
		lat := 26 + float64(i%10)
		lon := -106 + float64(i/10)*1.7 + float64(i%3)*0.3
		sites = append(sites, Site{Point: Point{lat, lon}, Ref: i})
	}
	tree := BuildKDTree(sites)
	queries := []Point{{30.1, -97.7}, {35.2, -101.8}, {26.2, -98.2}, {31.7, -106.4}, {29.0, -95.0}}
	for _, q := range queries {
		got, d, ok := tree.Nearest(q)
		if !ok {
			t.Fatal("empty result")
		}
		bestD := math.MaxFloat64
		for _, s := range sites {
			if dd := Haversine(q, s.Point); dd < bestD {
				bestD = dd
			}
		}
		if math.Abs(d-bestD) > 1e-9 {
			t.Errorf("query %v: got %d at %.3f km, brute force %.3f km", q, got.Ref, d, bestD)
		}
	}
	if _, _, ok := BuildKDTree(nil).Nearest(Point{}); ok {
		t.Error("empty tree should report no result")
	}
}
