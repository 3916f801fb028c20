package output

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// 96 DPI を基準にピクセルを mm に変換します。
const (
	pixelsPerInch = 96
	mmPerInch     = 25.4
)

// ErrNoFrames は PDF にするフレームがひとつもないことを表します。
var ErrNoFrames = errors.New("output: PDF にするフレームがありません")

func pixelsToMm(pixels int) float64 {
	return float64(pixels) * mmPerInch / pixelsPerInch
}

// ListJPGs は dir 内の JPG をファイル名順に返します。
func ListJPGs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var jpgs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg":
			jpgs = append(jpgs, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(jpgs)
	return jpgs, nil
}

// FramesToPDF は JPG フレームを1ページずつ並べた PDF を outPath に保存します。
// widthPx, heightPx はフレームのサイズ（ピクセル）で、ページサイズになります。
// 0 バイトや読めないファイルは飛ばします。title は PDF のメタデータタイトルです。
func FramesToPDF(paths []string, outPath, title string, widthPx, heightPx int) error {
	wMm, hMm := pixelsToMm(widthPx), pixelsToMm(heightPx)
	if wMm <= 0 || hMm <= 0 {
		wMm, hMm = 210, 297 // フォールバック: A4
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: wMm, Ht: hMm},
	})
	if title != "" {
		pdf.SetTitle(title, true) // UTF-8
	}
	pages := 0
	for _, path := range paths {
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			continue
		}
		pdf.AddPage()
		w, h := pdf.GetPageSize()
		pdf.ImageOptions(path, 0, 0, w, h, false, gofpdf.ImageOptions{ImageType: "JPEG"}, 0, "")
		pages++
	}
	if pages == 0 {
		return ErrNoFrames
	}
	return pdf.OutputFileAndClose(outPath)
}

// JPGsToPDF は dir 内の JPG をファイル名順で1つの PDF に結合し、outPath に保存します。
func JPGsToPDF(dir, outPath, title string, widthPx, heightPx int) error {
	jpgs, err := ListJPGs(dir)
	if err != nil {
		return err
	}
	return FramesToPDF(jpgs, outPath, title, widthPx, heightPx)
}
