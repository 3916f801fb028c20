package compare

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"

	"WinCapture/capture"
)

// Hash はフレームのサイズと画素の SHA256 ハッシュを返します。
func Hash(f capture.Frame) []byte {
	h := sha256.New()
	var dims [8]byte
	binary.LittleEndian.PutUint32(dims[0:], uint32(f.Width))
	binary.LittleEndian.PutUint32(dims[4:], uint32(f.Height))
	h.Write(dims[:])
	h.Write(f.Pix)
	return h.Sum(nil)
}

// ThreeSame は a, b, c の3つのハッシュがすべて一致するか返します。
func ThreeSame(a, b, c []byte) bool {
	if a == nil || b == nil || c == nil {
		return false
	}
	return bytes.Equal(a, b) && bytes.Equal(b, c)
}
