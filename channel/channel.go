// Package channel は名前付き操作（captureScreen / captureWindow / getRunningWindows）を
// キャプチャ処理に振り分けるメッセージチャネルです。
package channel

import (
	"errors"
	"log/slog"
	"sync"

	"WinCapture/capture"
	"WinCapture/window"
)

// 操作名
const (
	MethodCaptureScreen     = "captureScreen"
	MethodCaptureWindow     = "captureWindow"
	MethodGetRunningWindows = "getRunningWindows"
	MethodFocusWindow       = "focusWindow"
)

// エラーコード
const (
	CodeInvalidArguments = "invalid_arguments"
	CodeWindowNotFound   = "window_not_found"
	CodeCaptureFailed    = "capture_failed"
	CodeNotSupported     = "not_supported"
)

const argWindowName = "windowName"

// MethodCall は名前で指定された操作と、その引数（キーと値の組）です。
type MethodCall struct {
	Method    string
	Arguments any
}

// Result は操作の結果を一度だけ受け取ります。
type Result interface {
	Success(v any)
	Error(code, message string, details any)
	NotImplemented()
}

// Options は Handler の振る舞いを切り替えます。
type Options struct {
	// StrictCaptureErrors が true ならキャプチャ失敗を capture_failed エラーとして返します。
	// false なら空のバイト列を成功として返します。
	StrictCaptureErrors bool
	Logger              *slog.Logger
}

// Handler は MethodCall をウィンドウ一覧とキャプチャ処理に振り分けます。
// 描画面を共有するため、呼び出しはひとつずつ処理します。
type Handler struct {
	mu       sync.Mutex
	dir      *window.Directory
	capturer *capture.Capturer
	strict   bool
	log      *slog.Logger
}

// NewHandler は Handler を作ります。
func NewHandler(dir *window.Directory, capturer *capture.Capturer, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		dir:      dir,
		capturer: capturer,
		strict:   opts.StrictCaptureErrors,
		log:      logger,
	}
}

// HandleMethodCall は call を処理し、結果を result に渡します。未知の操作は NotImplemented です。
func (h *Handler) HandleMethodCall(call MethodCall, result Result) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch call.Method {
	case MethodCaptureScreen:
		h.captureTarget(capture.Desktop(), result)
	case MethodCaptureWindow:
		name, ok := windowNameArg(call.Arguments, result)
		if !ok {
			return
		}
		hwnd, err := h.dir.Lookup(name)
		if err != nil {
			windowError(err, "Window capture is not supported on this platform", result)
			return
		}
		h.captureTarget(capture.Window(hwnd), result)
	case MethodGetRunningWindows:
		result.Success(h.dir.ListVisibleWindows())
	case MethodFocusWindow:
		name, ok := windowNameArg(call.Arguments, result)
		if !ok {
			return
		}
		if err := h.dir.Activate(name); err != nil {
			windowError(err, "Window focus is not supported on this platform", result)
			return
		}
		result.Success(true)
	default:
		h.log.Debug("未対応の操作です", "method", call.Method)
		result.NotImplemented()
	}
}

func (h *Handler) captureTarget(t capture.Target, result Result) {
	data, err := h.capturer.CaptureBitmap(t)
	if err != nil {
		h.log.Warn("キャプチャに失敗しました", "target", t.String(), "err", err)
		if h.strict {
			result.Error(CodeCaptureFailed, err.Error(), nil)
			return
		}
		data = []byte{}
	}
	result.Success(data)
}

// windowError はウィンドウ検索の失敗をエラー応答にします。
// 前面化の失敗も見つからない場合と同じ window_not_found です。
func windowError(err error, unsupported string, result Result) {
	if errors.Is(err, window.ErrUnsupported) {
		result.Error(CodeNotSupported, unsupported, nil)
		return
	}
	result.Error(CodeWindowNotFound, "Window not found", nil)
}

// windowNameArg は引数マップから windowName を取り出します。取り出せなければ result にエラーを返します。
func windowNameArg(args any, result Result) (string, bool) {
	m, ok := args.(map[string]any)
	if !ok || m == nil {
		result.Error(CodeInvalidArguments, "No arguments provided", nil)
		return "", false
	}
	v, ok := m[argWindowName]
	if !ok {
		result.Error(CodeInvalidArguments, "windowName is required", nil)
		return "", false
	}
	name, ok := v.(string)
	if !ok {
		result.Error(CodeInvalidArguments, "windowName must be a string", nil)
		return "", false
	}
	return name, true
}
