package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"WinCapture/bitmap"
	"WinCapture/capture"
	"WinCapture/config"
	"WinCapture/output"
	"WinCapture/window"
)

type fakeSource struct{ focused int }

func (f *fakeSource) Enum(visit func(window.Handle) bool) error {
	visit(7)
	return nil
}

func (f *fakeSource) Visible(window.Handle) bool { return true }

func (f *fakeSource) Title(window.Handle) string { return "Reader" }

func (f *fakeSource) Activate(window.Handle) bool {
	f.focused++
	return true
}

// pagedSurface は grab ごとにページが進み、lastPage で止まる画面です。
type pagedSurface struct {
	grabs    int
	lastPage int
}

func (s *pagedSurface) Bounds(capture.Target) (capture.Rect, error) {
	return capture.Rect{Width: 8, Height: 4}, nil
}

func (s *pagedSurface) Grab(r capture.Rect) ([]byte, error) {
	s.grabs++
	page := s.grabs
	if s.lastPage > 0 && page > s.lastPage {
		page = s.lastPage
	}
	pix := make([]byte, bitmap.ImageSize(r.Width, r.Height))
	for i := range pix {
		pix[i] = byte(page * 40)
	}
	return pix, nil
}

func newRunner(surf *pagedSurface, src *fakeSource, keys *[]string) *Runner {
	return &Runner{
		Directory: window.NewDirectory(src, nil),
		Capturer:  capture.NewCapturer(surf, nil),
		SendKey: func(op string) error {
			*keys = append(*keys, op)
			return nil
		},
		Sleep: func(ctx context.Context, d time.Duration) error { return ctx.Err() },
	}
}

func sessionConfig(dir string) config.SessionConfig {
	cfg := config.Default().Session
	cfg.Window = "Reader"
	cfg.OutDir = dir
	cfg.PDFTitle = "book: vol/1"
	return cfg
}

func TestRunStopsOnThreeIdenticalFrames(t *testing.T) {
	dir := t.TempDir()
	src := &fakeSource{}
	var keys []string
	r := newRunner(&pagedSurface{lastPage: 3}, src, &keys)

	rep, err := r.Run(context.Background(), sessionConfig(dir))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !rep.StoppedByThreeSame || rep.Count != 5 {
		t.Fatalf("report = %+v, want stop by three same after 5 frames", rep)
	}
	if len(keys) != 4 || keys[0] != "Right" {
		t.Fatalf("keys sent = %v", keys)
	}
	if src.focused != 1 {
		t.Fatalf("expected window to be focused once, got %d", src.focused)
	}
	if len(rep.Removed) != 2 {
		t.Fatalf("removed = %v", rep.Removed)
	}
	jpgs, err := output.ListJPGs(dir)
	if err != nil || len(jpgs) != 3 {
		t.Fatalf("remaining JPGs = %v, %v", jpgs, err)
	}
	if filepath.Base(rep.PDFPath) != "book vol1.pdf" {
		t.Fatalf("pdf path = %q", rep.PDFPath)
	}
	if _, err := os.Stat(rep.PDFPath); err != nil {
		t.Fatalf("pdf not written: %v", err)
	}
	if rep.Width != 8 || rep.Height != 4 {
		t.Fatalf("frame size %dx%d", rep.Width, rep.Height)
	}
}

func TestRunStopsAtMaxCount(t *testing.T) {
	dir := t.TempDir()
	var keys []string
	r := newRunner(&pagedSurface{}, &fakeSource{}, &keys)
	cfg := sessionConfig(dir)
	cfg.MaxCount = 2
	cfg.PDFTitle = ""

	rep, err := r.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Count != 2 || rep.StoppedByThreeSame || rep.PDFPath != "" {
		t.Fatalf("report = %+v", rep)
	}
	if len(keys) != 1 {
		t.Fatalf("keys sent = %v", keys)
	}
}

func TestRunMissingWindow(t *testing.T) {
	var keys []string
	r := newRunner(&pagedSurface{}, &fakeSource{}, &keys)
	cfg := sessionConfig(t.TempDir())
	cfg.Window = "Writer"
	if _, err := r.Run(context.Background(), cfg); !errors.Is(err, ErrWindowNotFound) {
		t.Fatalf("expected ErrWindowNotFound, got %v", err)
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	var keys []string
	r := newRunner(&pagedSurface{}, &fakeSource{}, &keys)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := sessionConfig(t.TempDir())
	cfg.MaxCount = 0
	cfg.StopOnThreeSame = false
	if _, err := r.Run(ctx, cfg); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunSavesBitmapFrames(t *testing.T) {
	dir := t.TempDir()
	var keys []string
	r := newRunner(&pagedSurface{lastPage: 3}, &fakeSource{}, &keys)
	cfg := sessionConfig(dir)
	cfg.Format = "bmp"

	rep, err := r.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Count != 5 || len(rep.Removed) != 2 || rep.PDFPath != "" {
		t.Fatalf("report = %+v", rep)
	}
	bmps, err := filepath.Glob(filepath.Join(dir, "*.bmp"))
	if err != nil || len(bmps) != 3 {
		t.Fatalf("remaining BMPs = %v, %v", bmps, err)
	}
	if jpgs, _ := output.ListJPGs(dir); len(jpgs) != 0 {
		t.Fatalf("unexpected JPGs %v", jpgs)
	}
	data, err := os.ReadFile(filepath.Join(dir, output.FrameName(3, "bmp")))
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	info, pix, err := bitmap.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if info.Width != 8 || info.Height != 4 || !info.TopDown || pix[0] != 3*40 {
		t.Fatalf("frame 3 = %+v, first byte %d", info, pix[0])
	}
}

func TestRunWithoutWindowTable(t *testing.T) {
	var keys []string
	r := newRunner(&pagedSurface{}, &fakeSource{}, &keys)
	r.Directory = window.NewDirectory(unsupportedSource{&fakeSource{}}, nil)
	if _, err := r.Run(context.Background(), sessionConfig(t.TempDir())); !errors.Is(err, window.ErrUnsupported) {
		t.Fatalf("expected window.ErrUnsupported, got %v", err)
	}
}

type unsupportedSource struct{ *fakeSource }

func (unsupportedSource) Enum(func(window.Handle) bool) error { return window.ErrUnsupported }
