//go:build !windows

package capture

import (
	"image"

	"github.com/kbinani/screenshot"
)

type displaySurface struct{}

// SystemSurface は kbinani/screenshot でデスクトップを読む Surface を返します。
// ウィンドウ単位のキャプチャには対応しません。
func SystemSurface() Surface {
	return displaySurface{}
}

func (displaySurface) Bounds(t Target) (Rect, error) {
	if !t.IsDesktop() {
		return Rect{}, ErrUnsupported
	}
	return desktopBounds(), nil
}

func (displaySurface) Grab(r Rect) ([]byte, error) {
	if r.Empty() {
		return nil, ErrEmptyRegion
	}
	img, err := screenshot.CaptureRect(image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height))
	if err != nil {
		return nil, err
	}
	return bgraFromRGBA(img), nil
}
