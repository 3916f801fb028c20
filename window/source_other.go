//go:build !windows

package window

type systemSource struct{}

// SystemSource はこのプラットフォームでは列挙できない Source を返します。
// 一覧は空になり、タイトル検索は ErrUnsupported になります。
func SystemSource() Source {
	return systemSource{}
}

func (systemSource) Enum(func(Handle) bool) error { return ErrUnsupported }

func (systemSource) Visible(Handle) bool { return false }

func (systemSource) Title(Handle) string { return "" }

func (systemSource) Activate(Handle) bool { return false }
