package world

import (
	"sync"

	"sectionrender/internal/profiling"
)

// ChunkStore manages the storage and retrieval of chunk columns.
// It implements Provider.
type ChunkStore struct {
	bottom, top int

	chunks   map[ColumnPos]*Chunk
	mu       sync.RWMutex
	modCount uint64 // Increases on any chunk add/remove
}

// NewChunkStore creates a store whose columns span sections [bottom, top).
func NewChunkStore(bottom, top int) *ChunkStore {
	return &ChunkStore{
		bottom: bottom,
		top:    top,
		chunks: make(map[ColumnPos]*Chunk),
	}
}

func (cs *ChunkStore) BottomSectionCoord() int { return cs.bottom }
func (cs *ChunkStore) TopSectionCoord() int    { return cs.top }

// GetChunk returns the column at the given position.
// If it doesn't exist and create is true, an empty column is added.
func (cs *ChunkStore) GetChunk(pos ColumnPos, create bool) *Chunk {
	cs.mu.RLock()
	chunk, exists := cs.chunks[pos]
	cs.mu.RUnlock()
	if exists || !create {
		return chunk
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	// Another goroutine might have created it while we were waiting for the lock
	if existing, ok := cs.chunks[pos]; ok {
		return existing
	}
	chunk = NewChunk(pos.X, pos.Z, cs.bottom, cs.top)
	cs.chunks[pos] = chunk
	cs.modCount++
	return chunk
}

// AddChunk adds a pre-generated column. Existing columns are kept.
func (cs *ChunkStore) AddChunk(chunk *Chunk) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	pos := ColumnPos{X: chunk.X, Z: chunk.Z}
	if _, ok := cs.chunks[pos]; ok {
		return false
	}
	cs.chunks[pos] = chunk
	cs.modCount++
	return true
}

// HasChunk checks if a column exists without creating it.
func (cs *ChunkStore) HasChunk(pos ColumnPos) bool {
	cs.mu.RLock()
	_, exists := cs.chunks[pos]
	cs.mu.RUnlock()
	return exists
}

// Columns returns the positions of all stored columns.
func (cs *ChunkStore) Columns() []ColumnPos {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make([]ColumnPos, 0, len(cs.chunks))
	for pos := range cs.chunks {
		out = append(out, pos)
	}
	return out
}

// Get returns the block at the specified world coordinates.
func (cs *ChunkStore) Get(pos BlockPos) BlockType {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	chunk := cs.chunks[ColumnPos{X: BlockToSection(pos.X), Z: BlockToSection(pos.Z)}]
	if chunk == nil {
		return BlockTypeAir
	}
	return chunk.GetBlock(pos)
}

// Set sets the block at the specified world coordinates and returns the
// sections whose geometry is affected, including neighbours sharing the
// touched border.
func (cs *ChunkStore) Set(pos BlockPos, val BlockType) []SectionPos {
	chunk := cs.GetChunk(ColumnPos{X: BlockToSection(pos.X), Z: BlockToSection(pos.Z)}, true)

	cs.mu.Lock()
	changed := chunk.SetBlock(pos, val)
	cs.mu.Unlock()
	if !changed {
		return nil
	}

	sec := pos.Section()
	dirty := []SectionPos{sec}

	lx, ly, lz := pos.Local()
	if lx == 0 {
		dirty = append(dirty, sec.Offset(West))
	} else if lx == SectionSize-1 {
		dirty = append(dirty, sec.Offset(East))
	}
	if ly == 0 && sec.Y > cs.bottom {
		dirty = append(dirty, sec.Offset(Down))
	} else if ly == SectionSize-1 && sec.Y < cs.top-1 {
		dirty = append(dirty, sec.Offset(Up))
	}
	if lz == 0 {
		dirty = append(dirty, sec.Offset(North))
	} else if lz == SectionSize-1 {
		dirty = append(dirty, sec.Offset(South))
	}
	return dirty
}

func (cs *ChunkStore) IsSectionEmpty(pos SectionPos) bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	chunk := cs.chunks[pos.Column()]
	if chunk == nil {
		return true
	}
	return chunk.Section(pos.Y).IsEmpty()
}

func (cs *ChunkStore) CloneSection(pos SectionPos) *ClonedSection {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	chunk := cs.chunks[pos.Column()]
	if chunk == nil {
		return nil
	}
	sec := chunk.Section(pos.Y)
	if sec == nil {
		return nil
	}
	return sec.clone()
}

func (cs *ChunkStore) IsOpaqueFullCube(pos BlockPos) bool {
	return cs.Get(pos).IsOpaque()
}

// GetModCount returns the current modification count of the column map.
func (cs *ChunkStore) GetModCount() uint64 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.modCount
}

// EvictOutside removes columns farther than radius (Chebyshev distance) from
// the centre column and returns their positions.
func (cs *ChunkStore) EvictOutside(cx, cz, radius int) []ColumnPos {
	defer profiling.Track("world.EvictOutside")()

	var removed []ColumnPos
	cs.mu.Lock()
	for pos := range cs.chunks {
		if abs(pos.X-cx) > radius || abs(pos.Z-cz) > radius {
			delete(cs.chunks, pos)
			cs.modCount++
			removed = append(removed, pos)
		}
	}
	cs.mu.Unlock()
	return removed
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
