package channel

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Reply.Status の値
const (
	StatusSuccess        = "success"
	StatusError          = "error"
	StatusNotImplemented = "not_implemented"
)

// Request はクライアントからの呼び出しです。
type Request struct {
	ID        uint64 `json:"id"`
	Method    string `json:"method"`
	Arguments any    `json:"arguments,omitempty"`
}

// Reply は Request への応答です。[]byte の結果は base64 文字列になります。
type Reply struct {
	ID     uint64      `json:"id"`
	Status string      `json:"status"`
	Result any         `json:"result,omitempty"`
	Error  *ErrorReply `json:"error,omitempty"`
}

// ErrorReply は Error 応答の中身です。
type ErrorReply struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrNotImplemented はサーバーが操作を実装していないことを表します。
var ErrNotImplemented = errors.New("channel: not implemented")

// MethodError はサーバーが返したエラー応答です。
type MethodError struct {
	Code    string
	Message string
	Details json.RawMessage
}

func (e *MethodError) Error() string {
	return fmt.Sprintf("channel: %s: %s", e.Code, e.Message)
}

// replyResult は Result を Reply に書き込みます。
type replyResult struct {
	reply Reply
	done  bool
}

func (r *replyResult) Success(v any) {
	if r.done {
		return
	}
	r.done = true
	r.reply.Status = StatusSuccess
	r.reply.Result = v
}

func (r *replyResult) Error(code, message string, details any) {
	if r.done {
		return
	}
	r.done = true
	r.reply.Status = StatusError
	r.reply.Error = &ErrorReply{Code: code, Message: message, Details: details}
}

func (r *replyResult) NotImplemented() {
	if r.done {
		return
	}
	r.done = true
	r.reply.Status = StatusNotImplemented
}
