package channel

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"WinCapture/bitmap"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	h, _, _ := newTestHandler(false)
	srv := httptest.NewServer(NewServer(h, nil))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"))
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestServerRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	titles, err := c.RunningWindows(ctx)
	if err != nil {
		t.Fatalf("RunningWindows: %v", err)
	}
	if want := []string{"Notepad", "Calculator", "Empty"}; !reflect.DeepEqual(titles, want) {
		t.Fatalf("titles = %v, want %v", titles, want)
	}

	data, err := c.CaptureWindow(ctx, "Calculator")
	if err != nil {
		t.Fatalf("CaptureWindow: %v", err)
	}
	info, _, err := bitmap.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if info.Width != 2 || info.Height != 2 {
		t.Fatalf("captured %dx%d", info.Width, info.Height)
	}

	data, err = c.CaptureWindow(ctx, "Empty")
	if err != nil || len(data) != 0 {
		t.Fatalf("CaptureWindow(Empty) = %d bytes, %v; want empty, nil", len(data), err)
	}
}

func TestServerErrorReplies(t *testing.T) {
	c := newTestClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := c.CaptureWindow(ctx, "no-such-window-xyz")
	var me *MethodError
	if !errors.As(err, &me) || me.Code != CodeWindowNotFound {
		t.Fatalf("expected %s, got %v", CodeWindowNotFound, err)
	}

	_, err = c.Invoke(ctx, MethodCaptureWindow, map[string]any{"windowName": 7})
	if !errors.As(err, &me) || me.Code != CodeInvalidArguments {
		t.Fatalf("expected %s, got %v", CodeInvalidArguments, err)
	}

	_, err = c.Invoke(ctx, MethodCaptureWindow, nil)
	if !errors.As(err, &me) || me.Message != "No arguments provided" {
		t.Fatalf("expected missing arguments error, got %v", err)
	}

	if _, err := c.Invoke(ctx, "rotateScreen", nil); !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}

	// 接続は引き続き使える
	if _, err := c.CaptureScreen(ctx); err != nil {
		t.Fatalf("CaptureScreen after errors: %v", err)
	}
}

func TestInvokeHonoursCancelWithoutDeadline(t *testing.T) {
	// 要求を読むだけで応答しないサーバー
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	dialCtx, dialCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer dialCancel()
	c, err := Dial(dialCtx, "ws"+strings.TrimPrefix(srv.URL, "http"))
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	done := make(chan error, 1)
	go func() {
		_, err := c.Invoke(ctx, MethodCaptureScreen, nil)
		done <- err
	}()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Invoke did not return after cancel")
	}
}
