package output

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
)

const DefaultJpegQuality = 85

// FrameName は連番 index のフレームのファイル名を返します（例: capture_00001.jpg）。
func FrameName(index int, ext string) string {
	return fmt.Sprintf("capture_%05d.%s", index, strings.TrimPrefix(ext, "."))
}

// SaveJPG は画像を指定フォルダに連番の JPG として保存し、ファイルパスを返します。
func SaveJPG(dir string, index int, img image.Image, quality int) (string, error) {
	path := filepath.Join(dir, FrameName(index, "jpg"))
	if err := WriteJPG(path, img, quality); err != nil {
		return "", err
	}
	return path, nil
}

// WriteJPG は画像を path に JPG で書き込みます。失敗したら書きかけのファイルを消します。
func WriteJPG(path string, img image.Image, quality int) error {
	if quality <= 0 {
		quality = DefaultJpegQuality
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// SanitizeFileName はタイトルを Windows のファイル名として使えるように無効文字を除去します。
func SanitizeFileName(title string) string {
	const invalid = `\/:*?"<>|`
	s := strings.TrimSpace(title)
	var b strings.Builder
	for _, r := range s {
		if !strings.ContainsRune(invalid, r) && r >= 0x20 {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
