package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/guineaday/internal/gesture"
	"github.com/ayusman/guineaday/internal/input"
)

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads messages until match returns true or the deadline passes.
func readUntil(t *testing.T, conn *websocket.Conn, match func(outbound) bool) outbound {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg outbound
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON() error = %v", err)
		}
		if match(msg) {
			return msg
		}
	}
}

func TestHub_SnapshotsAndPointer(t *testing.T) {
	fc := newFakeController(t)
	fc.eng.Resize(800, 600)
	ts := httptest.NewServer(New(Config{Controller: fc}))
	defer ts.Close()

	conn := dial(t, ts)

	first := readUntil(t, conn, func(m outbound) bool { return m.Type == MsgSnapshot })
	if first.Snapshot == nil || len(first.Snapshot.Bodies) == 0 {
		t.Fatalf("initial snapshot missing bodies: %+v", first)
	}

	ev := input.Mouse(input.EventMove, 5, 7)
	if err := conn.WriteJSON(inbound{Type: MsgPointer, Event: &ev}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	// Tick until the pointer shows up in a pushed snapshot.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fc.eng.Run(ctx)

	msg := readUntil(t, conn, func(m outbound) bool {
		return m.Snapshot != nil && m.Snapshot.Pointer.Valid
	})
	if msg.Snapshot.Pointer.X != 5 || msg.Snapshot.Pointer.Y != 7 {
		t.Errorf("unexpected pointer %+v", msg.Snapshot.Pointer)
	}
}

func TestHub_Landmarks(t *testing.T) {
	fc := newFakeController(t)
	if err := fc.remote.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	ts := httptest.NewServer(New(Config{Controller: fc}))
	defer ts.Close()

	conn := dial(t, ts)
	readUntil(t, conn, func(m outbound) bool { return m.Type == MsgSnapshot })

	palm := gesture.OpenPalmFrame()
	if err := conn.WriteJSON(inbound{Type: MsgLandmarks, Points: palm.Points}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	f, err := fc.remote.Next(ctx)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if len(f.Points) != gesture.NumLandmarks {
		t.Errorf("expected %d points, got %d", gesture.NumLandmarks, len(f.Points))
	}
}

func TestHub_Errors(t *testing.T) {
	fc := newFakeController(t)
	ts := httptest.NewServer(New(Config{Controller: fc}))
	defer ts.Close()

	conn := dial(t, ts)

	tests := []struct {
		name string
		msg  string
		want string
	}{
		{name: "garbage", msg: "not json", want: "invalid message"},
		{name: "unknown type", msg: `{"type":"dance"}`, want: "unknown message type"},
		{name: "pointer without event", msg: `{"type":"pointer"}`, want: "pointer message without event"},
		{name: "half a surface", msg: `{"type":"surface","surface":{"width":100}}`, want: "width and height go together"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.msg)); err != nil {
				t.Fatalf("WriteMessage() error = %v", err)
			}
			msg := readUntil(t, conn, func(m outbound) bool { return m.Type == MsgError })
			if msg.Error != tt.want {
				t.Errorf("error = %q, want %q", msg.Error, tt.want)
			}
		})
	}
}

func TestHub_SurfaceAndRestart(t *testing.T) {
	fc := newFakeController(t)
	srv := New(Config{Controller: fc})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	conn := dial(t, ts)
	readUntil(t, conn, func(m outbound) bool { return m.Type == MsgSnapshot })

	before := fc.eng.Session()
	conn.WriteJSON(map[string]any{"type": MsgSurface, "surface": map[string]any{"width": 640, "height": 480}})
	conn.WriteJSON(map[string]any{"type": MsgRestart})

	deadline := time.Now().Add(2 * time.Second)
	for fc.eng.Session() == before || fc.eng.Snapshot().Width != 640 {
		if time.Now().After(deadline) {
			t.Fatal("surface and restart were not applied")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if srv.Hub().Clients() != 1 {
		t.Errorf("Clients() = %d, want 1", srv.Hub().Clients())
	}
}
