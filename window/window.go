// Package window は表示中のトップレベルウィンドウを列挙し、タイトルからハンドルを引きます。
package window

import (
	"errors"
	"log/slog"
)

var (
	// ErrNotFound はタイトルに一致する表示中のウィンドウがないことを表します。
	ErrNotFound = errors.New("window: ウィンドウが見つかりません")
	// ErrUnsupported はこのプラットフォームにウィンドウテーブルがないことを表します。
	ErrUnsupported = errors.New("window: このプラットフォームではウィンドウ単位の操作に未対応です")
	errActivate    = errors.New("window: 前面化に失敗しました")
)

// Handle はプラットフォームのウィンドウハンドルです。ウィンドウが閉じるまでのみ有効です。
type Handle uintptr

// Record は列挙で見つかったウィンドウ1件です。呼び出しごとに作り直されます。
type Record struct {
	Title  string
	Handle Handle
}

// Source は OS のウィンドウテーブルへのアクセスです。テストではフェイクに差し替えます。
type Source interface {
	// Enum はトップレベルウィンドウを OS の列挙順に visit へ渡します。visit が false を返すと列挙を止めます。
	Enum(visit func(Handle) bool) error
	Visible(h Handle) bool
	Title(h Handle) string
	Activate(h Handle) bool
}

// Directory は Source を読み取り専用で照会します。
type Directory struct {
	src Source
	log *slog.Logger
}

// NewDirectory は Directory を作ります。logger が nil なら slog.Default() を使います。
func NewDirectory(src Source, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{src: src, log: logger}
}

// scan は表示中かつタイトルが空でないウィンドウだけを fn に渡します。
// 列挙の失敗は呼び出し元が ErrUnsupported 以外「ウィンドウなし」として扱います。
func (d *Directory) scan(fn func(Record) bool) error {
	err := d.src.Enum(func(h Handle) bool {
		if !d.src.Visible(h) {
			return true
		}
		title := d.src.Title(h)
		if title == "" {
			return true
		}
		return fn(Record{Title: title, Handle: h})
	})
	if err != nil && !errors.Is(err, ErrUnsupported) {
		d.log.Debug("ウィンドウの列挙に失敗しました", "err", err)
	}
	return err
}

// Records は表示中のウィンドウをタイトルとハンドルの組で返します。
func (d *Directory) Records() []Record {
	var records []Record
	d.scan(func(r Record) bool {
		records = append(records, r)
		return true
	})
	return records
}

// ListVisibleWindows は表示中のトップレベルウィンドウのタイトル一覧を列挙順で返します。
// 同じタイトルのウィンドウが複数あればそのまま重複します。
func (d *Directory) ListVisibleWindows() []string {
	titles := []string{}
	d.scan(func(r Record) bool {
		titles = append(titles, r.Title)
		return true
	})
	return titles
}

// Lookup はタイトルに完全一致する最初のウィンドウを返します。
// 大文字小文字を区別し、前後の空白も除去しません。
// 見つからなければ ErrNotFound、ウィンドウテーブルがなければ ErrUnsupported を返します。
func (d *Directory) Lookup(title string) (Handle, error) {
	var found Handle
	ok := false
	err := d.scan(func(r Record) bool {
		if r.Title == title {
			found, ok = r.Handle, true
			return false // 列挙中止
		}
		return true
	})
	switch {
	case ok:
		return found, nil
	case errors.Is(err, ErrUnsupported):
		return 0, ErrUnsupported
	default:
		return 0, ErrNotFound
	}
}

// FindWindowByTitle は Lookup の結果を見つかったかどうかだけで返します。
func (d *Directory) FindWindowByTitle(title string) (Handle, bool) {
	h, err := d.Lookup(title)
	return h, err == nil
}

// Activate は指定タイトルに完全一致する最初のウィンドウを前面にします。
func (d *Directory) Activate(title string) error {
	h, err := d.Lookup(title)
	if err != nil {
		return err
	}
	if !d.src.Activate(h) {
		return errActivate
	}
	return nil
}

// Focus は Activate が成功したかどうかを返します。
func (d *Directory) Focus(title string) bool {
	return d.Activate(title) == nil
}
