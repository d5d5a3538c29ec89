package world

import (
	"io"
	"sort"

	"github.com/Tnze/go-mc/nbt"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/klauspost/compress/gzip"
)

const (
	ErrTypeWorldEncode = "world-encode"
	ErrTypeWorldDecode = "world-decode"
)

type nbtWorld struct {
	Bottom  int32       `nbt:"bottom"`
	Top     int32       `nbt:"top"`
	Columns []nbtColumn `nbt:"columns"`
}

type nbtColumn struct {
	X        int32        `nbt:"x"`
	Z        int32        `nbt:"z"`
	Sections []nbtSection `nbt:"sections"`
}

// nbtSection stores one byte per block in SectionIndex order. Block types
// fit in a byte.
type nbtSection struct {
	Y      int32  `nbt:"y"`
	Blocks []byte `nbt:"blocks"`
}

// SaveNBT writes every stored column as a gzip-compressed NBT compound.
// Empty sections are omitted.
func (cs *ChunkStore) SaveNBT(w io.Writer) error {
	doc := nbtWorld{
		Bottom: int32(cs.bottom),
		Top:    int32(cs.top),
	}

	cs.mu.RLock()
	for pos, chunk := range cs.chunks {
		col := nbtColumn{X: int32(pos.X), Z: int32(pos.Z)}
		for i, sec := range chunk.sections {
			if sec.IsEmpty() {
				continue
			}
			blocks := make([]byte, SectionVolume)
			for j, b := range sec.blocks {
				blocks[j] = byte(b)
			}
			col.Sections = append(col.Sections, nbtSection{
				Y:      int32(chunk.bottom + i),
				Blocks: blocks,
			})
		}
		doc.Columns = append(doc.Columns, col)
	}
	cs.mu.RUnlock()

	sort.Slice(doc.Columns, func(i, j int) bool {
		a, b := doc.Columns[i], doc.Columns[j]
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Z < b.Z
	})

	data, err := nbt.Marshal(doc)
	if err != nil {
		return errors.New("encoding world failed").
			WithType(ErrTypeWorldEncode).
			Wrap(err)
	}

	zw := gzip.NewWriter(w)
	if _, err := zw.Write(data); err != nil {
		return errors.New("writing world failed").
			WithType(ErrTypeWorldEncode).
			Wrap(err)
	}
	if err := zw.Close(); err != nil {
		return errors.New("flushing world failed").
			WithType(ErrTypeWorldEncode).
			Wrap(err)
	}
	return nil
}

// LoadNBT reads a world written by SaveNBT into a new store.
func LoadNBT(r io.Reader) (*ChunkStore, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, errors.New("opening world failed").
			WithType(ErrTypeWorldDecode).
			Wrap(err)
	}
	defer zr.Close()

	var doc nbtWorld
	if _, err := nbt.NewDecoder(zr).Decode(&doc); err != nil {
		return nil, errors.New("decoding world failed").
			WithType(ErrTypeWorldDecode).
			Wrap(err)
	}
	if doc.Top <= doc.Bottom {
		return nil, errors.New("invalid world height").
			WithType(ErrTypeWorldDecode).
			WithTag("bottom", doc.Bottom).
			WithTag("top", doc.Top)
	}

	cs := NewChunkStore(int(doc.Bottom), int(doc.Top))
	for _, col := range doc.Columns {
		chunk := NewChunk(int(col.X), int(col.Z), cs.bottom, cs.top)
		for _, s := range col.Sections {
			if len(s.Blocks) != SectionVolume {
				return nil, errors.New("invalid section size").
					WithType(ErrTypeWorldDecode).
					WithTag("x", col.X).
					WithTag("y", s.Y).
					WithTag("z", col.Z).
					WithTag("size", len(s.Blocks))
			}
			sec := chunk.sectionForWrite(int(s.Y))
			if sec == nil {
				return nil, errors.New("section outside world height").
					WithType(ErrTypeWorldDecode).
					WithTag("y", s.Y)
			}
			for i, b := range s.Blocks {
				sec.Set(i&15, (i>>8)&15, (i>>4)&15, BlockType(b))
			}
		}
		cs.AddChunk(chunk)
	}
	return cs, nil
}
