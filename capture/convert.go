package capture

import (
	"image"

	"WinCapture/bitmap"
)

// bgraFromRGBA は RGBA 画像を BMP と同じ行揃えのトップダウン BGRA 画素にします。
func bgraFromRGBA(img *image.RGBA) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w <= 0 || h <= 0 {
		return nil
	}
	stride := bitmap.RowSize(w)
	pix := make([]byte, bitmap.ImageSize(w, h))
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+w*4]
		dst := pix[y*stride:]
		for i := 0; i < len(src); i += 4 {
			dst[i+0] = src[i+2] // B
			dst[i+1] = src[i+1] // G
			dst[i+2] = src[i+0] // R
			dst[i+3] = src[i+3] // A
		}
	}
	return pix
}
