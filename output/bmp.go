package output

import (
	"image"
	"os"
	"path/filepath"

	"WinCapture/bitmap"
	"WinCapture/capture"
)

// SaveBMP はエンコード済みの BMP バイト列を連番のファイルとして保存し、ファイルパスを返します。
func SaveBMP(dir string, index int, data []byte) (string, error) {
	path := filepath.Join(dir, FrameName(index, "bmp"))
	if err := WriteBMP(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// WriteBMP は BMP バイト列をそのまま path に書き込みます。
func WriteBMP(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

// DecodeBMP はチャネルが返す 32bit BMP を RGBA 画像にします。ボトムアップ形式なら行を反転します。
func DecodeBMP(data []byte) (*image.RGBA, error) {
	info, pix, err := bitmap.Decode(data)
	if err != nil {
		return nil, err
	}
	if !info.TopDown {
		stride := bitmap.RowSize(info.Width)
		flipped := make([]byte, len(pix))
		for y := 0; y < info.Height; y++ {
			copy(flipped[y*stride:(y+1)*stride], pix[(info.Height-1-y)*stride:])
		}
		pix = flipped
	}
	return capture.Frame{Width: info.Width, Height: info.Height, Pix: pix}.Image(), nil
}
