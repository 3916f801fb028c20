package channel

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Server は Handler を WebSocket 上の JSON メッセージとして公開します。
type Server struct {
	handler  *Handler
	upgrader websocket.Upgrader
	log      *slog.Logger
	ready    sync.Once
}

// NewServer は Server を作ります。logger が nil なら slog.Default() を使います。
func NewServer(h *Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		handler: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 64 * 1024,
		},
		log: logger,
	}
}

// ServeHTTP は接続を WebSocket にアップグレードし、切断まで Request を処理します。
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket へのアップグレードに失敗しました", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer conn.Close()

	s.ready.Do(func() {
		s.log.Info("チャネルの準備ができました", "remote", r.RemoteAddr)
	})

	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("チャネルの読み込みを終了します", "remote", r.RemoteAddr, "err", err)
			}
			return
		}
		reply := s.dispatch(req)
		if err := conn.WriteJSON(reply); err != nil {
			s.log.Warn("応答の送信に失敗しました", "remote", r.RemoteAddr, "id", req.ID, "err", err)
			return
		}
	}
}

func (s *Server) dispatch(req Request) Reply {
	res := &replyResult{reply: Reply{ID: req.ID}}
	s.handler.HandleMethodCall(MethodCall{Method: req.Method, Arguments: req.Arguments}, res)
	if !res.done {
		res.NotImplemented()
	}
	s.log.Debug("操作を処理しました", "id", req.ID, "method", req.Method, "status", res.reply.Status)
	return res.reply
}
