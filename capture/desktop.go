package capture

import (
	"github.com/kbinani/screenshot"
)

// desktopBounds はアクティブな全ディスプレイを包む仮想スクリーンの範囲を返します。
// ディスプレイがなければ空の Rect を返します。
func desktopBounds() Rect {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return Rect{}
	}
	b := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		b = b.Union(screenshot.GetDisplayBounds(i))
	}
	return Rect{X: b.Min.X, Y: b.Min.Y, Width: b.Dx(), Height: b.Dy()}
}
