// Package session はウィンドウをキャプチャしてはキー操作でページを送る連続キャプチャを行います。
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"WinCapture/bitmap"
	"WinCapture/capture"
	"WinCapture/compare"
	"WinCapture/config"
	"WinCapture/output"
	"WinCapture/window"
)

// ErrWindowNotFound は対象ウィンドウが見つからないことを表します。
var ErrWindowNotFound = errors.New("session: ウィンドウが見つかりません")

// Runner はセッションに必要な部品です。
type Runner struct {
	Directory *window.Directory
	Capturer  *capture.Capturer
	// SendKey はキー操作を送ります。nil ならキーを送りません。
	SendKey func(op string) error
	Logger  *slog.Logger
	// Sleep はテストで差し替えるための待機関数です。nil なら ctx 付きの time.After を使います。
	Sleep func(ctx context.Context, d time.Duration) error
}

// Report はセッションの結果です。
type Report struct {
	Count              int
	StoppedByThreeSame bool
	Removed            []string
	PDFPath            string
	Width, Height      int
}

// Run は cfg に従ってキャプチャを繰り返し、最後に PDF を作ります。
func (r *Runner) Run(ctx context.Context, cfg config.SessionConfig) (Report, error) {
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	var rep Report

	if cfg.OutDir == "" {
		return rep, errors.New("session: 保存先フォルダを指定してください")
	}
	if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
		return rep, fmt.Errorf("session: フォルダ作成に失敗しました: %w", err)
	}

	// 対象ウィンドウを前面にする
	if cfg.Window != "" && r.Directory.Focus(cfg.Window) {
		if err := sleep(ctx, cfg.FocusWait); err != nil {
			return rep, err
		}
	}

	ext := "jpg"
	if strings.EqualFold(cfg.Format, "bmp") {
		ext = "bmp"
	}

	var prevHash, prevPrevHash []byte
	for {
		target := capture.Desktop()
		if cfg.Window != "" {
			h, err := r.Directory.Lookup(cfg.Window)
			if errors.Is(err, window.ErrUnsupported) {
				return rep, err
			}
			if err != nil {
				return rep, fmt.Errorf("%w: %q", ErrWindowNotFound, cfg.Window)
			}
			target = capture.Window(h)
		}
		frame, err := r.Capturer.CaptureRegion(target)
		if err != nil {
			return rep, fmt.Errorf("session: キャプチャに失敗しました: %w", err)
		}
		if rep.Width == 0 {
			rep.Width, rep.Height = frame.Width, frame.Height
		}

		rep.Count++
		path, err := saveFrame(cfg.OutDir, rep.Count, ext, frame, cfg.Quality)
		if err != nil {
			return rep, fmt.Errorf("session: 保存に失敗しました: %w", err)
		}
		log.Debug("フレームを保存しました", "index", rep.Count, "path", path)

		hash := compare.Hash(frame)
		if cfg.MaxCount > 0 && rep.Count >= cfg.MaxCount {
			break
		}
		if cfg.StopOnThreeSame && compare.ThreeSame(prevPrevHash, prevHash, hash) {
			rep.StoppedByThreeSame = true
			break
		}
		prevPrevHash, prevHash = prevHash, hash

		if cfg.Key != "" && r.SendKey != nil {
			if err := r.SendKey(cfg.Key); err != nil {
				log.Warn("キー送信に失敗しました", "key", cfg.Key, "err", err)
			}
		}
		if err := sleep(ctx, cfg.Delay); err != nil {
			return rep, err
		}
	}

	// 3枚連続同一で終了した場合、同一の3枚のうち最後の2枚を削除してから PDF にする
	if rep.StoppedByThreeSame && rep.Count >= 3 {
		for _, n := range []int{rep.Count, rep.Count - 1} {
			p := filepath.Join(cfg.OutDir, output.FrameName(n, ext))
			if err := os.Remove(p); err != nil {
				log.Warn("重複画像の削除に失敗しました", "path", p, "err", err)
				continue
			}
			rep.Removed = append(rep.Removed, p)
		}
	}

	if cfg.PDFTitle == "" {
		return rep, nil
	}
	if ext != "jpg" {
		log.Info("BMP 保存のため PDF は作りません", "count", rep.Count)
		return rep, nil
	}
	name := output.SanitizeFileName(cfg.PDFTitle)
	if name == "" {
		name = "captures.pdf"
	} else if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	rep.PDFPath = filepath.Join(cfg.OutDir, name)
	if err := output.JPGsToPDF(cfg.OutDir, rep.PDFPath, cfg.PDFTitle, rep.Width, rep.Height); err != nil {
		return rep, fmt.Errorf("session: PDF 生成に失敗しました: %w", err)
	}
	log.Info("セッションが完了しました", "count", rep.Count, "removed", len(rep.Removed), "pdf", rep.PDFPath)
	return rep, nil
}

// saveFrame は ext に応じて JPG か BMP で連番保存します。
func saveFrame(dir string, index int, ext string, frame capture.Frame, quality int) (string, error) {
	if ext == "bmp" {
		data, err := bitmap.Encode(frame.Width, frame.Height, frame.Pix)
		if err != nil {
			return "", err
		}
		return output.SaveBMP(dir, index, data)
	}
	return output.SaveJPG(dir, index, frame.Image(), quality)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
