package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"
)

func TestServerAcceptsCommand(t *testing.T) {
	srv := New(0) // port 0 = caller manages the listener
	cmds := srv.Commands()

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	err = conn.Write(ctx, websocket.MessageText, []byte(`{"type": "navigate", "url": "https://example.com"}`))
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case cmd := <-cmds:
		if cmd.Type != CmdNavigate {
			t.Errorf("got type %q, want navigate", cmd.Type)
		}
		if cmd.URL != "https://example.com" {
			t.Errorf("got url %q", cmd.URL)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for command")
	}
}

func TestServerRejectsBadCommand(t *testing.T) {
	srv := New(0)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	err = conn.Write(ctx, websocket.MessageText, []byte(`{"type": "explode"}`))
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	// The server answers bad commands with an error message.
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got ErrorMsg
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != "error" || got.Error == "" {
		t.Errorf("got %+v, want error message", got)
	}

	// Nothing lands on the command channel.
	select {
	case cmd := <-srv.Commands():
		t.Errorf("unexpected command %+v", cmd)
	default:
	}
}

func TestServerSendsState(t *testing.T) {
	srv := New(0)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	// Give server a moment to register the connection
	time.Sleep(50 * time.Millisecond)

	st := State{
		Active: 0,
		Tabs: []StateTab{
			{ID: "t1", URL: "https://example.com", Title: "Example", Active: true},
		},
	}
	if err := srv.SendState(st); err != nil {
		t.Fatalf("send: %v", err)
	}

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got State
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != "state" {
		t.Errorf("type = %q, want state", got.Type)
	}
	if len(got.Tabs) != 1 || got.Tabs[0].URL != "https://example.com" {
		t.Errorf("got %+v", got)
	}
}

func TestSendWithoutConnection(t *testing.T) {
	srv := New(0)
	if err := srv.SendState(State{}); err != nil {
		t.Errorf("expected nil error with no connection, got %v", err)
	}
	if srv.Connected() {
		t.Error("expected not connected")
	}
}
