// Package bitmap は 32bit トップダウン BGRA 画素を非圧縮 BMP コンテナに包みます。
package bitmap

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	FileHeaderSize = 14
	InfoHeaderSize = 40
	// PixelOffset はファイル先頭から画素データまでのオフセットです。
	PixelOffset = FileHeaderSize + InfoHeaderSize

	BitCount = 32
	biRGB    = 0
	magic    = 0x4D42 // "BM"
)

var (
	ErrInvalidSize = errors.New("bitmap: 幅と高さは正の値が必要です")
	ErrShortBuffer = errors.New("bitmap: 画素データの長さが足りません")
	ErrFormat      = errors.New("bitmap: 対応していない形式です")
)

// RowSize は1行あたりのバイト数（4バイト境界に切り上げ）を返します。
func RowSize(width int) int {
	return ((width*BitCount + 31) / 32) * 4
}

// ImageSize は画素データ全体のバイト数を返します。
func ImageSize(width, height int) int {
	return RowSize(width) * height
}

// Encode は画素データをファイルヘッダ・情報ヘッダ付きの BMP バイト列にします。
// pix はトップダウン・行パディング済みの BGRA で、ImageSize(width, height) バイト以上必要です。
func Encode(width, height int, pix []byte) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidSize
	}
	size := ImageSize(width, height)
	if len(pix) < size {
		return nil, fmt.Errorf("%w: %d < %d", ErrShortBuffer, len(pix), size)
	}

	out := make([]byte, PixelOffset+size)
	le := binary.LittleEndian

	// BITMAPFILEHEADER
	le.PutUint16(out[0:], magic)
	le.PutUint32(out[2:], uint32(len(out)))
	// bfReserved1, bfReserved2 は 0
	le.PutUint32(out[10:], PixelOffset)

	// BITMAPINFOHEADER（biSizeImage 以降は 0 のまま）
	info := out[FileHeaderSize:]
	le.PutUint32(info[0:], InfoHeaderSize)
	le.PutUint32(info[4:], uint32(int32(width)))
	le.PutUint32(info[8:], uint32(-int32(height))) // 負の高さ = トップダウン
	le.PutUint16(info[12:], 1)
	le.PutUint16(info[14:], BitCount)
	le.PutUint32(info[16:], biRGB)

	copy(out[PixelOffset:], pix[:size])
	return out, nil
}

// Info は BMP ヘッダから読み取った情報です。
type Info struct {
	Width    int
	Height   int
	TopDown  bool
	BitCount int
	FileSize int
}

// Decode は Encode が生成する形式（32bit BI_RGB）の BMP を解析し、画素データを返します。
// 返す画素はボトムアップ形式でもファイル内の並びのままです。
func Decode(b []byte) (Info, []byte, error) {
	if len(b) < PixelOffset {
		return Info{}, nil, fmt.Errorf("%w: ヘッダが不完全です", ErrFormat)
	}
	le := binary.LittleEndian
	if le.Uint16(b[0:]) != magic {
		return Info{}, nil, fmt.Errorf("%w: シグネチャが BM ではありません", ErrFormat)
	}
	offset := int(le.Uint32(b[10:]))
	info := b[FileHeaderSize:]
	if le.Uint32(info[0:]) < InfoHeaderSize {
		return Info{}, nil, fmt.Errorf("%w: 情報ヘッダが小さすぎます", ErrFormat)
	}
	w := int(int32(le.Uint32(info[4:])))
	h := int(int32(le.Uint32(info[8:])))
	bits := int(le.Uint16(info[14:]))
	if bits != BitCount || le.Uint32(info[16:]) != biRGB {
		return Info{}, nil, fmt.Errorf("%w: %dbit 圧縮形式 %d", ErrFormat, bits, le.Uint32(info[16:]))
	}

	hdr := Info{Width: w, Height: h, BitCount: bits, FileSize: int(le.Uint32(b[2:]))}
	if h < 0 {
		hdr.Height = -h
		hdr.TopDown = true
	}
	if hdr.Width <= 0 || hdr.Height <= 0 {
		return Info{}, nil, ErrInvalidSize
	}
	if offset < PixelOffset || offset > len(b) {
		return Info{}, nil, fmt.Errorf("%w: 画素データの位置 %d が不正です", ErrFormat, offset)
	}
	// 幅と高さは信用しない。行サイズが int32 に収まり、残りのバイト数を超えないこと
	if hdr.Width > (math.MaxInt32-31)/32 {
		return Info{}, nil, fmt.Errorf("%w: 幅 %d が大きすぎます", ErrFormat, hdr.Width)
	}
	avail := len(b) - offset
	if int64(RowSize(hdr.Width))*int64(hdr.Height) > int64(avail) {
		return Info{}, nil, fmt.Errorf("%w: %d < %dx%d", ErrShortBuffer, avail, hdr.Width, hdr.Height)
	}
	size := ImageSize(hdr.Width, hdr.Height)
	return hdr, b[offset : offset+size], nil
}
