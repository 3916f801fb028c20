//go:build windows

package keyboard

import (
	"fmt"

	"github.com/dacapoday/sendinput"
)

var modifierCodes = map[string]sendinput.KeyCode{
	"CTRL":  sendinput.KEY_LCONTROL,
	"ALT":   sendinput.KEY_LMENU,
	"SHIFT": sendinput.KEY_LSHIFT,
	"WIN":   sendinput.KEY_LWIN,
}

// Send はキー操作文字列（例: "Enter", "Right", "Ctrl+C"）を1回送信します。
func Send(op string) error {
	s, err := Parse(op)
	if err != nil {
		return err
	}
	name := s.Key
	main := sendinput.Key(name)
	if main == 0 && len(name) == 1 && (name[0] >= '0' && name[0] <= '9' || name[0] >= 'A' && name[0] <= 'Z') {
		main = sendinput.KeyCode(name[0])
	}
	if main == 0 {
		return fmt.Errorf("keyboard: 不明なキー %q", s.Key)
	}

	mods := make([]sendinput.KeyCode, 0, len(s.Modifiers))
	for _, m := range s.Modifiers {
		mods = append(mods, modifierCodes[m])
	}
	// 修飾キーを押す
	for _, m := range mods {
		_ = sendinput.SendKeyboardInput(m, true)
	}
	defer releaseModifiers(mods)

	// メインキーを押して離す
	if err := sendinput.SendKeyboardInput(main, true); err != nil {
		return err
	}
	return sendinput.SendKeyboardInput(main, false)
}

// releaseModifiers は修飾キーを逆順に離します。
func releaseModifiers(modifiers []sendinput.KeyCode) {
	for i := len(modifiers) - 1; i >= 0; i-- {
		_ = sendinput.SendKeyboardInput(modifiers[i], false)
	}
}
