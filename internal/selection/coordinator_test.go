package selection

import (
	"testing"

	"county-map/internal/catalog"
	"county-map/internal/geo"
)

func twoCounties(t *testing.T) *catalog.Catalog {
	t.Helper()
	p1 := geo.Ring{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 1, Lon: 0}}
	p2 := geo.Ring{{Lat: 0, Lon: 2}, {Lat: 0, Lon: 3}, {Lat: 1, Lon: 3}, {Lat: 1, Lon: 2}}
	c, err := catalog.New(catalog.Source{Subdivisions: []catalog.Subdivision{{Name: "A", Boundary: p1}, {Name: "B", Boundary: p2}}})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func embedded(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Embedded()
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestInitialStateUnselected(t *testing.T) {
	c := New(twoCounties(t), nil)
	if name, ok := c.Current(); ok || name != "" {
		t.Errorf("Current() = %q, %v", name, ok)
	}
}

func TestSelectOverwrite(t *testing.T) {
	c := New(embedded(t), nil)
	c.Select("Lubbock")
	c.Select("Dallas")
	if name, ok := c.Current(); !ok || name != "Dallas" {
		t.Errorf("Current() = %q, %v; want Dallas", name, ok)
	}
}

func TestInvalidSelectIsNoop(t *testing.T) {
	c := New(embedded(t), nil)
	c.Select("Dallas")
	if c.Select("Nonexistent County") {
		t.Error("Select of unknown name reported success")
	}
	if name, ok := c.Current(); !ok || name != "Dallas" {
		t.Errorf("Current() = %q, %v; want Dallas", name, ok)
	}
	c.Clear()
	c.Select("dallas")
	if _, ok := c.Current(); ok {
		t.Error("unknown name selected from Unselected")
	}
}

func TestClearIdempotent(t *testing.T) {
	c := New(embedded(t), nil)
	c.Select("Dallas")
	c.Clear()
	c.Clear()
	if _, ok := c.Current(); ok {
		t.Error("selection survived clear")
	}
}

func TestStyleTotality(t *testing.T) {
	cat := embedded(t)
	c := New(cat, nil)
	states := append([]string{""}, cat.Names()...)
	for _, sel := range states {
		if sel == "" {
			c.Clear()
		} else {
			c.Select(sel)
		}
		for _, name := range cat.Names() {
			st := c.StyleFor(name)
			want := BaseStyle
			if name == sel {
				want = HighlightStyle
			}
			if st != want {
				t.Fatalf("selected=%q StyleFor(%q) = %+v, want %+v", sel, name, st, want)
			}
			if st.FillOpacity != 0.3 && st.FillOpacity != 0.5 {
				t.Fatalf("fill opacity %v", st.FillOpacity)
			}
			if st.Weight != 2 && st.Weight != 3 {
				t.Fatalf("weight %v", st.Weight)
			}
		}
	}
}

func TestStyleTable(t *testing.T) {
	if HighlightStyle != (Style{Color: "red", FillColor: "red", FillOpacity: 0.5, Weight: 3}) {
		t.Errorf("HighlightStyle = %+v", HighlightStyle)
	}
	if BaseStyle != (Style{Color: "blue", FillColor: "blue", FillOpacity: 0.3, Weight: 2}) {
		t.Errorf("BaseStyle = %+v", BaseStyle)
	}
}

func TestExactlyOneHighlighted(t *testing.T) {
	cat := embedded(t)
	var last []Layer
	c := New(cat, func(ls []Layer) { last = ls })
	c.Select("Travis")
	if len(last) != cat.Len() {
		t.Fatalf("repaint carried %d layers, want %d", len(last), cat.Len())
	}
	n := 0
	for _, l := range last {
		if l.Style == HighlightStyle {
			n++
			if l.Name != "Travis" {
				t.Errorf("%s highlighted", l.Name)
			}
		} else if l.Style != BaseStyle {
			t.Errorf("%s has style %+v", l.Name, l.Style)
		}
	}
	if n != 1 {
		t.Errorf("%d highlighted layers", n)
	}
}

func TestRepaintOnTransitionsOnly(t *testing.T) {
	calls := 0
	c := New(twoCounties(t), func([]Layer) { calls++ })
	c.Select("A")
	c.Select("Z")
	c.Clear()
	if calls != 2 {
		t.Errorf("repaint calls = %d, want 2", calls)
	}
}

func TestStyleForDoesNotMutate(t *testing.T) {
	c := New(twoCounties(t), nil)
	c.Select("A")
	_ = c.StyleFor("B")
	_ = c.StyleFor("nope")
	_ = c.Layers()
	if name, _ := c.Current(); name != "A" {
		t.Errorf("Current() = %q", name)
	}
}

func TestEndToEndScenario(t *testing.T) {
	c := New(twoCounties(t), nil)
	expect := func(step, a, b string) {
		t.Helper()
		want := map[string]Style{"base": BaseStyle, "highlight": HighlightStyle}
		if got := c.StyleFor("A"); got != want[a] {
			t.Errorf("%s: StyleFor(A) = %+v, want %s", step, got, a)
		}
		if got := c.StyleFor("B"); got != want[b] {
			t.Errorf("%s: StyleFor(B) = %+v, want %s", step, got, b)
		}
	}
	expect("initial", "base", "base")
	c.Select("A")
	expect("select A", "highlight", "base")
	c.Select("Z")
	expect("select Z", "highlight", "base")
	c.Clear()
	expect("clear", "base", "base")
}

func TestSelectAt(t *testing.T) {
	c := New(twoCounties(t), nil)
	if name, ok := c.SelectAt(geo.Point{Lat: 0.5, Lon: 2.5}); !ok || name != "B" {
		t.Errorf("SelectAt = %q, %v", name, ok)
	}
	if _, ok := c.SelectAt(geo.Point{Lat: 0.5, Lon: 1.5}); ok {
		t.Error("SelectAt between counties should miss")
	}
	if name, _ := c.Current(); name != "B" {
		t.Errorf("miss changed selection to %q", name)
	}
}
