package surface

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWebSocketSurfaceRoundTrip(t *testing.T) {
	h := startHub(t, WithHeartbeat(0))
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s := NewWSSurface(conn, 0)
		if err := h.Register(s); err != nil {
			return
		}
		defer h.Unregister(s.ID())
		_ = s.ReadLoop(r.Context())
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	readFrame := func() (clear, draws int, end map[string]any) {
		for {
			_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
			var m map[string]any
			if err := c.ReadJSON(&m); err != nil {
				t.Fatal(err)
			}
			switch m["type"] {
			case "clear":
				clear++
			case "draw":
				draws++
			case "frame_end":
				return clear, draws, m
			}
		}
	}

	clears, draws, end := readFrame()
	if clears != 1 || draws != 2 || end["selected"] != nil {
		t.Fatalf("initial frame: clears=%d draws=%d end=%v", clears, draws, end)
	}

	if err := c.WriteJSON(map[string]any{"type": "select", "name": "B"}); err != nil {
		t.Fatal(err)
	}
	_, _, end = readFrame()
	if end["selected"] != "B" {
		t.Errorf("selected = %v, want B", end["selected"])
	}

	if err := c.WriteJSON(map[string]any{"type": "select_at", "lat": 0.5, "lon": 0.5}); err != nil {
		t.Fatal(err)
	}
	_, _, end = readFrame()
	if end["selected"] != "A" {
		t.Errorf("selected = %v, want A", end["selected"])
	}

	if err := c.WriteJSON(map[string]any{"type": "clear"}); err != nil {
		t.Fatal(err)
	}
	_, _, end = readFrame()
	if end["selected"] != nil {
		t.Errorf("selected = %v after clear", end["selected"])
	}
	if name, ok := h.Current(); ok {
		t.Errorf("hub still selected %q", name)
	}
}

func TestWebSocketHeartbeat(t *testing.T) {
	up := websocket.Upgrader{}
	got := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s := NewWSSurface(conn, 0)
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		got <- s.Heartbeat(ctx)
		conn.Close()
	}))
	defer srv.Close()
	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if err := <-got; err != nil {
		t.Errorf("Heartbeat() = %v", err)
	}
}

func TestWebSocketReadTimeoutWithoutPong(t *testing.T) {
	up := websocket.Upgrader{}
	got := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s := NewWSSurface(conn, 100*time.Millisecond)
		_ = s.Heartbeat(context.Background())
		got <- s.ReadLoop(context.Background())
	}))
	defer srv.Close()
	// 客户端从不读取，因而不会回 pong
	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	select {
	case err := <-got:
		if err == nil {
			t.Error("ReadLoop returned nil")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("ReadLoop still running on a silent peer")
	}
}

func TestWebSocketCloseEndsReadLoop(t *testing.T) {
	up := websocket.Upgrader{}
	got := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s := NewWSSurface(conn, 0)
		go func() {
			time.Sleep(20 * time.Millisecond)
			_ = s.Close()
		}()
		got <- s.ReadLoop(context.Background())
	}))
	defer srv.Close()
	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	select {
	case <-got:
	case <-time.After(3 * time.Second):
		t.Fatal("ReadLoop survived Close")
	}
}
