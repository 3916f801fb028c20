package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client はチャネルサーバーへの WebSocket 接続です。呼び出しはひとつずつ行います。
type Client struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	nextID uint64
}

// Dial は url（ws://host:port/path）に接続します。
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("channel dial: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Close は接続を閉じます。
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}

// Invoke は method を args で呼び出し、成功時の結果を JSON のまま返します。
// エラー応答は *MethodError、未実装なら ErrNotImplemented を返します。
func (c *Client) Invoke(ctx context.Context, method string, args map[string]any) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID
	deadline, _ := ctx.Deadline() // 期限なしならゼロ値でタイムアウトなし
	_ = c.conn.SetWriteDeadline(deadline)
	_ = c.conn.SetReadDeadline(deadline)
	// 期限のない ctx でもキャンセルされたら読み書きを打ち切る。打ち切った接続は再利用できない
	stop := context.AfterFunc(ctx, func() {
		now := time.Now()
		_ = c.conn.SetWriteDeadline(now)
		_ = c.conn.SetReadDeadline(now)
	})
	defer stop()

	req := Request{ID: id, Method: method}
	if args != nil {
		req.Arguments = args
	}
	if err := c.conn.WriteJSON(req); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("channel send: %w", err)
	}

	for {
		var reply struct {
			ID     uint64          `json:"id"`
			Status string          `json:"status"`
			Result json.RawMessage `json:"result"`
			Error  *struct {
				Code    string          `json:"code"`
				Message string          `json:"message"`
				Details json.RawMessage `json:"details"`
			} `json:"error"`
		}
		if err := c.conn.ReadJSON(&reply); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("channel receive: %w", err)
		}
		if reply.ID != id {
			continue // 古い呼び出しへの応答
		}
		switch reply.Status {
		case StatusSuccess:
			return reply.Result, nil
		case StatusNotImplemented:
			return nil, ErrNotImplemented
		case StatusError:
			if reply.Error == nil {
				return nil, &MethodError{Code: "unknown", Message: "error reply without body"}
			}
			return nil, &MethodError{Code: reply.Error.Code, Message: reply.Error.Message, Details: reply.Error.Details}
		default:
			return nil, fmt.Errorf("channel: unknown reply status %q", reply.Status)
		}
	}
}

// CaptureScreen はデスクトップ全体の BMP を取得します。
func (c *Client) CaptureScreen(ctx context.Context) ([]byte, error) {
	return c.invokeBytes(ctx, MethodCaptureScreen, nil)
}

// CaptureWindow は name に完全一致するウィンドウの BMP を取得します。
func (c *Client) CaptureWindow(ctx context.Context, name string) ([]byte, error) {
	return c.invokeBytes(ctx, MethodCaptureWindow, map[string]any{argWindowName: name})
}

// RunningWindows は表示中のウィンドウタイトル一覧を取得します。
func (c *Client) RunningWindows(ctx context.Context) ([]string, error) {
	raw, err := c.Invoke(ctx, MethodGetRunningWindows, nil)
	if err != nil {
		return nil, err
	}
	var titles []string
	if err := json.Unmarshal(raw, &titles); err != nil {
		return nil, fmt.Errorf("channel: decode window list: %w", err)
	}
	return titles, nil
}

// FocusWindow は name に完全一致するウィンドウを前面にします。
func (c *Client) FocusWindow(ctx context.Context, name string) error {
	_, err := c.Invoke(ctx, MethodFocusWindow, map[string]any{argWindowName: name})
	return err
}

func (c *Client) invokeBytes(ctx context.Context, method string, args map[string]any) ([]byte, error) {
	raw, err := c.Invoke(ctx, method, args)
	if err != nil {
		return nil, err
	}
	var data []byte
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("channel: decode %s result: %w", method, err)
	}
	return data, nil
}
