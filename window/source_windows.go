//go:build windows

package window

import (
	"errors"
	"syscall"
	"unsafe"

	"github.com/lxn/win"
)

// タイトル取得用バッファの長さ（UTF-16 単位）。これより長いタイトルは切り詰められます。
const titleBufLen = 1024

var (
	user32             = syscall.NewLazyDLL("user32.dll")
	procEnumWindows    = user32.NewProc("EnumWindows")
	procGetWindowTextW = user32.NewProc("GetWindowTextW")
)

var errEnumWindows = errors.New("EnumWindows に失敗しました")

// syscall.NewCallback は作れる数に上限があるため、コールバックはひとつだけ作って使い回します。
// lParam は enums に登録した番号です。
var enumCallback = syscall.NewCallback(func(hwnd win.HWND, lParam uintptr) uintptr {
	if !enums.step(lParam, Handle(hwnd)) {
		return 0 // 列挙中止
	}
	return 1 // 続行
})

type systemSource struct{}

// SystemSource は user32 のウィンドウテーブルを読む Source を返します。
func SystemSource() Source {
	return systemSource{}
}

func (systemSource) Enum(visit func(Handle) bool) error {
	st := &enumState{visit: visit}
	id := enums.add(st)
	defer enums.remove(id)
	r, _, e1 := procEnumWindows.Call(enumCallback, id)
	// コールバックが 0 を返して止めた場合も EnumWindows は FALSE を返す
	if r == 0 && !st.stopped {
		if e1 != nil && e1 != syscall.Errno(0) {
			return e1
		}
		return errEnumWindows
	}
	return nil
}

func (systemSource) Visible(h Handle) bool {
	return win.IsWindowVisible(win.HWND(h))
}

func (systemSource) Title(h Handle) string {
	buf := make([]uint16, titleBufLen)
	r0, _, _ := syscall.Syscall(procGetWindowTextW.Addr(), 3,
		uintptr(h),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(len(buf)))
	n := int(r0)
	if n <= 0 {
		return ""
	}
	return syscall.UTF16ToString(buf[:n])
}

func (systemSource) Activate(h Handle) bool {
	return win.SetForegroundWindow(win.HWND(h))
}
