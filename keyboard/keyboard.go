// Package keyboard はセッション中のページ送りなどのキー操作を送信します。
package keyboard

import (
	"errors"
	"strings"
)

var (
	ErrEmpty       = errors.New("keyboard: キー操作が空です")
	ErrUnsupported = errors.New("keyboard: このプラットフォームではキー送信に未対応です")
)

// Stroke は「Ctrl+Shift+Right」のようなキー操作を修飾キーとメインキーに分けたものです。
type Stroke struct {
	Modifiers []string // CTRL, ALT, SHIFT, WIN
	Key       string   // sendinput のキー名（例: ARROWRIGHT, ENTER, A）
}

// keyAliases は表記ゆれを sendinput.Key が受け付ける名前に揃えます。
var keyAliases = map[string]string{
	"RIGHT":  "ARROWRIGHT",
	"LEFT":   "ARROWLEFT",
	"UP":     "ARROWUP",
	"DOWN":   "ARROWDOWN",
	"RETURN": "ENTER",
	"ESC":    "ESCCAPE", // sendinput 側の綴りに合わせる
	"ESCAPE": "ESCCAPE",
}

// Parse はキー操作文字列を Stroke にします。未知の修飾キーは無視します。
func Parse(op string) (Stroke, error) {
	op = strings.TrimSpace(op)
	if op == "" {
		return Stroke{}, ErrEmpty
	}
	parts := strings.Split(op, "+")
	var s Stroke
	for i, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if i == len(parts)-1 {
			if alias, ok := keyAliases[p]; ok {
				p = alias
			}
			s.Key = p
			break
		}
		switch p {
		case "CTRL", "CONTROL":
			s.Modifiers = append(s.Modifiers, "CTRL")
		case "ALT":
			s.Modifiers = append(s.Modifiers, "ALT")
		case "SHIFT":
			s.Modifiers = append(s.Modifiers, "SHIFT")
		case "WIN":
			s.Modifiers = append(s.Modifiers, "WIN")
		}
	}
	if s.Key == "" {
		return Stroke{}, ErrEmpty
	}
	return s, nil
}
