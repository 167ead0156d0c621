package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

func TestSessionManagerUnregisterUnknown(t *testing.T) {
	t.Parallel()

	sm := NewSessionManager()
	sm.Unregister("missing", nil)
	sm.CloseSession("missing")
	if sm.Count("missing") != 0 {
		t.Fatal("unexpected connections")
	}
}

func TestSessionManagerCloseSession(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sm := NewSessionManager()
	srv := newTestServer(t, &fakeTurner{}, sm, Config{})
	tab1 := dial(t, ctx, srv, "shared")
	tab2 := dial(t, ctx, srv, "shared")
	other := dial(t, ctx, srv, "other")

	// A round trip guarantees the server side has registered each socket.
	for _, ws := range []*websocket.Conn{tab1, tab2, other} {
		roundTrip(t, ctx, ws, inbound{Type: "ping"})
	}
	if sm.Count("shared") != 2 || sm.Count("other") != 1 {
		t.Fatalf("counts = %d, %d", sm.Count("shared"), sm.Count("other"))
	}

	// Nobody is reading yet, so a close that waited for the handshake
	// would block here.
	start := time.Now()
	sm.CloseSession("shared")
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("CloseSession blocked for %v", elapsed)
	}
	if sm.Count("shared") != 0 {
		t.Fatal("closed session still tracked")
	}

	for _, ws := range []*websocket.Conn{tab1, tab2} {
		var out outbound
		err := wsjson.Read(ctx, ws, &out)
		if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
			t.Fatalf("read after close = %v", err)
		}
	}

	if out := roundTrip(t, ctx, other, inbound{Type: "ping"}); out.Type != "pong" {
		t.Fatalf("other session affected: %+v", out)
	}
}
