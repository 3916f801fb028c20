//go:build windows

package capture

import (
	"errors"
	"unsafe"

	"github.com/lxn/win"

	"WinCapture/bitmap"
)

type gdiSurface struct{}

// SystemSurface は GDI（GetDC / BitBlt / GetDIBits）でスクリーンを読む Surface を返します。
func SystemSurface() Surface {
	return gdiSurface{}
}

func (gdiSurface) Bounds(t Target) (Rect, error) {
	if t.IsDesktop() {
		return desktopBounds(), nil
	}
	var rc win.RECT
	if !win.GetWindowRect(win.HWND(t.Handle()), &rc) {
		return Rect{}, errors.New("GetWindowRect に失敗しました")
	}
	return Rect{
		X:      int(rc.Left),
		Y:      int(rc.Top),
		Width:  int(rc.Right - rc.Left),
		Height: int(rc.Bottom - rc.Top),
	}, nil
}

func (gdiSurface) Grab(r Rect) ([]byte, error) {
	if r.Empty() {
		return nil, ErrEmptyRegion
	}

	hdcScreen := win.GetDC(0)
	if hdcScreen == 0 {
		return nil, errors.New("GetDC に失敗しました")
	}
	defer win.ReleaseDC(0, hdcScreen)

	hdcMem := win.CreateCompatibleDC(hdcScreen)
	if hdcMem == 0 {
		return nil, errors.New("CreateCompatibleDC に失敗しました")
	}
	defer win.DeleteDC(hdcMem)

	hBitmap := win.CreateCompatibleBitmap(hdcScreen, int32(r.Width), int32(r.Height))
	if hBitmap == 0 {
		return nil, errors.New("CreateCompatibleBitmap に失敗しました")
	}
	defer win.DeleteObject(win.HGDIOBJ(hBitmap))

	old := win.SelectObject(hdcMem, win.HGDIOBJ(hBitmap))
	if old == 0 {
		return nil, errors.New("SelectObject に失敗しました")
	}
	defer win.SelectObject(hdcMem, old)

	if !win.BitBlt(hdcMem, 0, 0, int32(r.Width), int32(r.Height),
		hdcScreen, int32(r.X), int32(r.Y), win.SRCCOPY) {
		return nil, errors.New("BitBlt に失敗しました")
	}

	bmi := win.BITMAPINFO{
		BmiHeader: win.BITMAPINFOHEADER{
			BiSize:        uint32(unsafe.Sizeof(win.BITMAPINFOHEADER{})),
			BiWidth:       int32(r.Width),
			BiHeight:      int32(-r.Height), // 負の高さでトップダウン
			BiPlanes:      1,
			BiBitCount:    bitmap.BitCount,
			BiCompression: win.BI_RGB,
		},
	}
	pix := make([]byte, bitmap.ImageSize(r.Width, r.Height))
	n := win.GetDIBits(hdcMem, hBitmap, 0, uint32(r.Height), &pix[0], &bmi, win.DIB_RGB_COLORS)
	if n == 0 {
		return nil, errors.New("GetDIBits に失敗しました")
	}
	return pix, nil
}
