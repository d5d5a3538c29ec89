package meshing

import (
	"encoding/binary"
	"sync"

	"sectionrender/internal/section"
)

// VertexStride is the size of one packed vertex in bytes.
//
//	V1: X(5) Y(5) Z(5) F(3) reserved(14)
//	V2: B(16) reserved(16)
//
// Coordinates are local to the section and span 0..16 inclusive; F is the
// facing and B the block type.
const VertexStride = 8

func packVertex(buf []byte, lx, ly, lz int, facing section.Facing, block uint16) []byte {
	v1 := uint32(lx) | uint32(ly)<<5 | uint32(lz)<<10 | uint32(facing)<<15
	v2 := uint32(block)
	buf = binary.LittleEndian.AppendUint32(buf, v1)
	return binary.LittleEndian.AppendUint32(buf, v2)
}

// UnpackVertex decodes a vertex written by the mesher.
func UnpackVertex(b []byte) (lx, ly, lz int, facing section.Facing, block uint16) {
	v1 := binary.LittleEndian.Uint32(b)
	v2 := binary.LittleEndian.Uint32(b[4:])
	return int(v1 & 31), int(v1 >> 5 & 31), int(v1 >> 10 & 31), section.Facing(v1 >> 15 & 7), uint16(v2)
}

// bufferPool recycles vertex staging buffers between builds.
var bufferPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 16*1024)
		return &b
	},
}

func getBuffer() *[]byte {
	b := bufferPool.Get().(*[]byte)
	*b = (*b)[:0]
	return b
}

func putBuffer(b *[]byte) {
	// Oversized buffers are left to the GC.
	if cap(*b) > 1<<20 {
		return
	}
	bufferPool.Put(b)
}
