// Package capture は画面上の矩形領域の画素をそのまま取り出し、BMP バイト列にします。
package capture

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"WinCapture/bitmap"
	"WinCapture/window"
)

var (
	// ErrEmptyRegion は対象の幅または高さが 0 以下だったことを表します。
	ErrEmptyRegion = errors.New("capture: キャプチャ範囲の面積が 0 です")
	// ErrUnsupported はこのプラットフォームで対象をキャプチャできないことを表します。
	ErrUnsupported = errors.New("capture: このプラットフォームでは未対応です")
)

// Rect はスクリーン座標のキャプチャ範囲（左上座標と幅・高さ）を表します。
type Rect struct {
	X, Y, Width, Height int
}

// Empty は幅または高さが 0 以下なら true を返します。
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Target はデスクトップ全体か特定のウィンドウを指します。
type Target struct {
	handle  window.Handle
	desktop bool
}

// Desktop はデスクトップ全体を指す Target を返します。
func Desktop() Target { return Target{desktop: true} }

// Window はウィンドウ h を指す Target を返します。
func Window(h window.Handle) Target { return Target{handle: h} }

func (t Target) IsDesktop() bool       { return t.desktop }
func (t Target) Handle() window.Handle { return t.handle }

func (t Target) String() string {
	if t.desktop {
		return "desktop"
	}
	return fmt.Sprintf("window(%#x)", uintptr(t.handle))
}

// Surface はプラットフォームの描画面です。Grab は呼び出し内で確保した資源をすべて解放してから戻ります。
type Surface interface {
	Bounds(t Target) (Rect, error)
	// Grab は r の画素をトップダウンの BGRA（行は 4 バイト境界）で返します。
	Grab(r Rect) ([]byte, error)
}

// Frame はキャプチャ結果です。Pix はトップダウン BGRA、1行 bitmap.RowSize(Width) バイトです。
type Frame struct {
	Width  int
	Height int
	Pix    []byte
}

// Image は BGRA の Frame を image.RGBA に変換します。
func (f Frame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	stride := bitmap.RowSize(f.Width)
	for y := 0; y < f.Height; y++ {
		src := f.Pix[y*stride : y*stride+f.Width*4]
		dst := img.Pix[y*img.Stride : y*img.Stride+f.Width*4]
		for i := 0; i < len(src); i += 4 {
			dst[i+0] = src[i+2] // R
			dst[i+1] = src[i+1] // G
			dst[i+2] = src[i+0] // B
			dst[i+3] = 255      // A
		}
	}
	return img
}

// Capturer は Surface からフレームを取り出します。GDI の共有資源を使うため呼び出しは直列化されます。
type Capturer struct {
	mu      sync.Mutex
	surface Surface
	log     *slog.Logger
}

// NewCapturer は Capturer を作ります。logger が nil なら slog.Default() を使います。
func NewCapturer(surface Surface, logger *slog.Logger) *Capturer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Capturer{surface: surface, log: logger}
}

// CaptureRegion は対象の現在の画素をフレームとして返します。
// 面積が 0 なら ErrEmptyRegion、OS 呼び出しの失敗はラップしたエラーを返します。
func (c *Capturer) CaptureRegion(t Target) (Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, err := c.surface.Bounds(t)
	if err != nil {
		return Frame{}, fmt.Errorf("capture: %s の範囲を取得できません: %w", t, err)
	}
	if r.Empty() {
		return Frame{}, ErrEmptyRegion
	}
	pix, err := c.surface.Grab(r)
	if err != nil {
		return Frame{}, fmt.Errorf("capture: %s: %w", t, err)
	}
	if want := bitmap.ImageSize(r.Width, r.Height); len(pix) != want {
		return Frame{}, fmt.Errorf("capture: 画素データが %d バイト、期待値は %d バイトです", len(pix), want)
	}
	c.log.Debug("キャプチャしました", "target", t.String(), "x", r.X, "y", r.Y, "width", r.Width, "height", r.Height)
	return Frame{Width: r.Width, Height: r.Height, Pix: pix}, nil
}

// CaptureBitmap は対象をキャプチャして BMP コンテナのバイト列を返します。
func (c *Capturer) CaptureBitmap(t Target) ([]byte, error) {
	f, err := c.CaptureRegion(t)
	if err != nil {
		return nil, err
	}
	return bitmap.Encode(f.Width, f.Height, f.Pix)
}
