// Package config はサブコマンドごとのフラグと既定値をまとめます。
package config

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"
)

// Config は CLI 全体の設定です。
type Config struct {
	Log     LogConfig
	Serve   ServeConfig
	Call    CallConfig
	Windows WindowsConfig
	Capture CaptureConfig
	Session SessionConfig
}

// LogConfig はログの詳細度と形式です。
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// ServeConfig はチャネルサーバーの設定です。
type ServeConfig struct {
	Listen string
	Path   string
	// Strict はキャプチャ失敗を空のバイト列ではなく capture_failed として返します。
	Strict bool
}

// CallConfig はチャネルクライアントの設定です。
type CallConfig struct {
	URL     string
	Window  string
	Out     string // 拡張子が .jpg/.jpeg なら BMP を JPG に変換して保存
	Timeout time.Duration
}

// WindowsConfig はウィンドウ一覧の表示設定です。
type WindowsConfig struct {
	Handles bool
}

// CaptureConfig は1回のキャプチャの設定です。
type CaptureConfig struct {
	Window  string // 空ならデスクトップ全体
	Out     string
	Format  string // bmp, jpg
	Quality int
}

// SessionConfig はページ送りしながら連続キャプチャするセッションの設定です。
type SessionConfig struct {
	Window          string
	OutDir          string
	Key             string
	MaxCount        int
	Delay           time.Duration
	FocusWait       time.Duration
	StopOnThreeSame bool
	PDFTitle        string
	Format          string // jpg, bmp（bmp では PDF を作りません）
	Quality         int
}

// Default は既定の設定を返します。
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "json"},
		Serve: ServeConfig{
			Listen: "127.0.0.1:8765",
			Path:   "/channel",
		},
		Call: CallConfig{
			URL:     "ws://127.0.0.1:8765/channel",
			Timeout: 10 * time.Second,
		},
		Capture: CaptureConfig{
			Format:  "bmp",
			Quality: 85,
		},
		Session: SessionConfig{
			Key:             "Right",
			MaxCount:        500,
			Delay:           500 * time.Millisecond,
			FocusWait:       300 * time.Millisecond,
			StopOnThreeSame: true,
			PDFTitle:        "capture-" + time.Now().Format("2006-01-02_15-04-05"),
			Format:          "jpg",
			Quality:         85,
		},
	}
}

// BindLog はログ関連のフラグを fs に登録します。
func (c *Config) BindLog(fs *flag.FlagSet) {
	fs.StringVar(&c.Log.Level, "log-level", c.Log.Level, "ログレベル (debug, info, warn, error)")
	fs.StringVar(&c.Log.Format, "log-format", c.Log.Format, "ログ形式 (json, text)")
}

// BindServe は serve サブコマンドのフラグを登録します。
func (c *Config) BindServe(fs *flag.FlagSet) {
	fs.StringVar(&c.Serve.Listen, "listen", c.Serve.Listen, "待ち受けアドレス")
	fs.StringVar(&c.Serve.Path, "path", c.Serve.Path, "WebSocket のパス")
	fs.BoolVar(&c.Serve.Strict, "strict", c.Serve.Strict, "キャプチャ失敗を capture_failed エラーとして返す")
}

// BindCall は call サブコマンドのフラグを登録します。
func (c *Config) BindCall(fs *flag.FlagSet) {
	fs.StringVar(&c.Call.URL, "url", c.Call.URL, "チャネルサーバーの URL")
	fs.StringVar(&c.Call.Window, "window", c.Call.Window, "windowName 引数")
	fs.StringVar(&c.Call.Out, "out", c.Call.Out, "バイト列の結果を書き出すファイル（.jpg なら JPG に変換）")
	fs.DurationVar(&c.Call.Timeout, "timeout", c.Call.Timeout, "呼び出しのタイムアウト")
}

// BindWindows は windows サブコマンドのフラグを登録します。
func (c *Config) BindWindows(fs *flag.FlagSet) {
	fs.BoolVar(&c.Windows.Handles, "handles", c.Windows.Handles, "タイトルの前にウィンドウハンドルを表示する")
}

// BindCapture は capture サブコマンドのフラグを登録します。
func (c *Config) BindCapture(fs *flag.FlagSet) {
	fs.StringVar(&c.Capture.Window, "window", c.Capture.Window, "キャプチャするウィンドウのタイトル（空ならデスクトップ）")
	fs.StringVar(&c.Capture.Out, "out", c.Capture.Out, "出力ファイル")
	fs.StringVar(&c.Capture.Format, "format", c.Capture.Format, "出力形式 (bmp, jpg)")
	fs.IntVar(&c.Capture.Quality, "quality", c.Capture.Quality, "JPG 品質 (1-100)")
}

// BindSession は session サブコマンドのフラグを登録します。
func (c *Config) BindSession(fs *flag.FlagSet) {
	fs.StringVar(&c.Session.Window, "window", c.Session.Window, "キャプチャするウィンドウのタイトル")
	fs.StringVar(&c.Session.OutDir, "out", c.Session.OutDir, "保存先フォルダ")
	fs.StringVar(&c.Session.Key, "key", c.Session.Key, "キャプチャごとに送るキー操作（空なら送らない）")
	fs.IntVar(&c.Session.MaxCount, "max", c.Session.MaxCount, "最大枚数 (0=無制限)")
	fs.DurationVar(&c.Session.Delay, "delay", c.Session.Delay, "キー送信後の待機時間")
	fs.DurationVar(&c.Session.FocusWait, "focus-wait", c.Session.FocusWait, "ウィンドウを前面にした後の待機時間")
	fs.BoolVar(&c.Session.StopOnThreeSame, "stop-on-same", c.Session.StopOnThreeSame, "3枚連続同一で終了")
	fs.StringVar(&c.Session.PDFTitle, "pdf", c.Session.PDFTitle, "PDF のタイトル（空なら PDF を作らない）")
	fs.StringVar(&c.Session.Format, "format", c.Session.Format, "保存形式 (jpg, bmp)")
	fs.IntVar(&c.Session.Quality, "quality", c.Session.Quality, "JPG 品質 (1-100)")
}

// NormalizeLogLevel はログレベル名を小文字に揃えて検証します。
func NormalizeLogLevel(level string) (string, error) {
	l := strings.ToLower(strings.TrimSpace(level))
	switch l {
	case "":
		return "info", nil
	case "warning":
		return "warn", nil
	case "debug", "info", "warn", "error":
		return l, nil
	}
	return "", fmt.Errorf("unsupported log level %q", level)
}

// Validate は範囲外の値を検出します。
func (c Config) Validate() error {
	var errs []error
	if _, err := NormalizeLogLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "json", "text", "console":
	default:
		errs = append(errs, fmt.Errorf("unsupported log format %q", c.Log.Format))
	}
	if !strings.HasPrefix(c.Serve.Path, "/") {
		errs = append(errs, fmt.Errorf("serve path %q must start with /", c.Serve.Path))
	}
	switch strings.ToLower(c.Capture.Format) {
	case "bmp", "jpg", "jpeg":
	default:
		errs = append(errs, fmt.Errorf("unsupported capture format %q", c.Capture.Format))
	}
	if c.Capture.Quality < 1 || c.Capture.Quality > 100 {
		errs = append(errs, fmt.Errorf("capture quality %d out of range 1-100", c.Capture.Quality))
	}
	switch strings.ToLower(c.Session.Format) {
	case "bmp", "jpg", "jpeg":
	default:
		errs = append(errs, fmt.Errorf("unsupported session format %q", c.Session.Format))
	}
	if c.Session.Quality < 1 || c.Session.Quality > 100 {
		errs = append(errs, fmt.Errorf("session quality %d out of range 1-100", c.Session.Quality))
	}
	if c.Session.MaxCount < 0 {
		errs = append(errs, fmt.Errorf("session max count %d must not be negative", c.Session.MaxCount))
	}
	if c.Session.Delay < 0 || c.Session.FocusWait < 0 {
		errs = append(errs, errors.New("session delays must not be negative"))
	}
	if c.Call.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("call timeout %s must be positive", c.Call.Timeout))
	}
	return errors.Join(errs...)
}
