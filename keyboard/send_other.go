//go:build !windows

package keyboard

// Send はこのプラットフォームでは常に ErrUnsupported を返します。
func Send(op string) error {
	if _, err := Parse(op); err != nil {
		return err
	}
	return ErrUnsupported
}
