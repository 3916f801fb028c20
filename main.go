package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"WinCapture/capture"
	"WinCapture/channel"
	"WinCapture/config"
	"WinCapture/keyboard"
	"WinCapture/logging"
	"WinCapture/output"
	"WinCapture/session"
	"WinCapture/window"
)

type command struct {
	name        string
	description string
	bind        func(cfg *config.Config, fs *flag.FlagSet)
	run         func(ctx context.Context, app *app, args []string) error
}

// app はサブコマンドが共有する設定と部品です。
type app struct {
	cfg    config.Config
	log    *slog.Logger
	stdout io.Writer
}

var commands = []command{
	{"serve", "チャネルサーバーを起動します", (*config.Config).BindServe, runServe},
	{"call", "チャネルサーバーの操作を1回呼び出します: call [flags] <method>", (*config.Config).BindCall, runCall},
	{"windows", "表示中のウィンドウタイトルを一覧します", (*config.Config).BindWindows, runWindows},
	{"capture", "デスクトップまたはウィンドウを1回キャプチャします", (*config.Config).BindCapture, runCapture},
	{"session", "キー操作でページを送りながら連続キャプチャします", (*config.Config).BindSession, runSession},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "エラー: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "help" {
		usage(stderr)
		return nil
	}
	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		usage(stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}

	cfg := config.Default()
	fs := flag.NewFlagSet(cmd.name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg.BindLog(fs)
	if cmd.bind != nil {
		cmd.bind(&cfg, fs)
	}
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: stderr})
	if err != nil {
		return err
	}
	return cmd.run(ctx, &app{cfg: cfg, log: logger, stdout: stdout}, fs.Args())
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "使い方: wincapture <command> [flags]")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", c.name, c.description)
	}
}

func (a *app) directory() *window.Directory {
	return window.NewDirectory(window.SystemSource(), a.log)
}

func (a *app) capturer() *capture.Capturer {
	return capture.NewCapturer(capture.SystemSurface(), a.log)
}

func runServe(ctx context.Context, a *app, _ []string) error {
	h := channel.NewHandler(a.directory(), a.capturer(), channel.Options{
		StrictCaptureErrors: a.cfg.Serve.Strict,
		Logger:              a.log,
	})
	mux := http.NewServeMux()
	mux.Handle(a.cfg.Serve.Path, channel.NewServer(h, a.log))
	srv := &http.Server{Addr: a.cfg.Serve.Listen, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	a.log.Info("チャネルサーバーを起動しました", "listen", a.cfg.Serve.Listen, "path", a.cfg.Serve.Path, "strict", a.cfg.Serve.Strict)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func runCall(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("call: 操作名をひとつ指定してください")
	}
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Call.Timeout)
	defer cancel()

	c, err := channel.Dial(ctx, a.cfg.Call.URL)
	if err != nil {
		return err
	}
	defer c.Close()

	var callArgs map[string]any
	if a.cfg.Call.Window != "" {
		callArgs = map[string]any{"windowName": a.cfg.Call.Window}
	}
	raw, err := c.Invoke(ctx, args[0], callArgs)
	if err != nil {
		return err
	}

	var data []byte
	if a.cfg.Call.Out != "" && json.Unmarshal(raw, &data) == nil {
		if err := saveCallResult(a.cfg.Call.Out, data, a.cfg.Capture.Quality); err != nil {
			return err
		}
		a.log.Info("結果を保存しました", "path", a.cfg.Call.Out, "bytes", len(data))
		return nil
	}
	_, err = fmt.Fprintln(a.stdout, string(raw))
	return err
}

// saveCallResult はバイト列の結果を path に保存します。拡張子が .jpg/.jpeg なら BMP を変換します。
func saveCallResult(path string, data []byte, quality int) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		if len(data) == 0 {
			return errors.New("call: 結果が空のため JPG に変換できません")
		}
		img, err := output.DecodeBMP(data)
		if err != nil {
			return fmt.Errorf("call: BMP の解析に失敗しました: %w", err)
		}
		return output.WriteJPG(path, img, quality)
	default:
		return output.WriteBMP(path, data)
	}
}

func runWindows(_ context.Context, a *app, _ []string) error {
	return printWindows(a.stdout, a.directory(), a.cfg.Windows.Handles)
}

// printWindows はタイトルを1行ずつ書きます。handles なら先頭にハンドルを付けます。
func printWindows(w io.Writer, dir *window.Directory, handles bool) error {
	if !handles {
		for _, title := range dir.ListVisibleWindows() {
			if _, err := fmt.Fprintln(w, title); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range dir.Records() {
		if _, err := fmt.Fprintf(w, "%#x\t%s\n", uintptr(r.Handle), r.Title); err != nil {
			return err
		}
	}
	return nil
}

func runCapture(_ context.Context, a *app, _ []string) error {
	cc := a.cfg.Capture
	if cc.Out == "" {
		return errors.New("capture: -out を指定してください")
	}
	target := capture.Desktop()
	if cc.Window != "" {
		h, err := a.directory().Lookup(cc.Window)
		if err != nil {
			return fmt.Errorf("capture: %q: %w", cc.Window, err)
		}
		target = capture.Window(h)
	}

	c := a.capturer()
	switch strings.ToLower(cc.Format) {
	case "jpg", "jpeg":
		frame, err := c.CaptureRegion(target)
		if err != nil {
			return err
		}
		if err := output.WriteJPG(cc.Out, frame.Image(), cc.Quality); err != nil {
			return err
		}
	default:
		data, err := c.CaptureBitmap(target)
		if err != nil {
			return err
		}
		if err := output.WriteBMP(cc.Out, data); err != nil {
			return err
		}
	}
	a.log.Info("キャプチャを保存しました", "target", target.String(), "path", cc.Out)
	return nil
}

func runSession(ctx context.Context, a *app, _ []string) error {
	r := &session.Runner{
		Directory: a.directory(),
		Capturer:  a.capturer(),
		SendKey:   keyboard.Send,
		Logger:    a.log,
	}
	rep, err := r.Run(ctx, a.cfg.Session)
	if err != nil {
		return err
	}
	if rep.StoppedByThreeSame && rep.Count >= 3 {
		fmt.Fprintf(a.stdout, "完了: %d 枚保存（同一3枚のうち2枚を削除）", rep.Count)
	} else {
		fmt.Fprintf(a.stdout, "完了: %d 枚のキャプチャを保存", rep.Count)
	}
	if rep.PDFPath != "" {
		fmt.Fprintf(a.stdout, "、%s に PDF を出力しました", rep.PDFPath)
	}
	fmt.Fprintln(a.stdout, "。")
	return nil
}
