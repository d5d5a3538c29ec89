package world

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlatGeneratorPopulate(t *testing.T) {
	c := NewChunk(0, 0, 0, 4)
	g := NewFlatGenerator(5)
	require.Equal(t, 5, g.HeightAt(100, -50))

	g.PopulateChunk(c)

	require.Equal(t, BlockTypeBedrock, c.GetBlock(BlockPos{X: 0, Y: 0, Z: 0}))
	for y := 1; y < 5; y++ {
		require.Equal(t, BlockTypeDirt, c.GetBlock(BlockPos{X: 3, Y: y, Z: 7}))
	}
	require.Equal(t, BlockTypeGrass, c.GetBlock(BlockPos{X: 15, Y: 5, Z: 15}))
	require.Equal(t, BlockTypeAir, c.GetBlock(BlockPos{X: 0, Y: 6, Z: 0}))
	require.True(t, c.Section(1).IsEmpty())
}

func TestFlatGeneratorNegativeColumn(t *testing.T) {
	c := NewChunk(-1, -2, 0, 2)
	NewFlatGenerator(3).PopulateChunk(c)

	require.Equal(t, BlockTypeGrass, c.GetBlock(BlockPos{X: -1, Y: 3, Z: -17}))
	require.Equal(t, SectionSize*SectionSize*4, c.Section(0).OpaqueCount())
}

func hashChunkBlocks(c *Chunk) [32]byte {
	h := sha256.New()
	for y := c.bottom * SectionSize; y < (c.bottom+len(c.sections))*SectionSize; y++ {
		for lx := 0; lx < SectionSize; lx++ {
			for lz := 0; lz < SectionSize; lz++ {
				b := c.GetBlock(BlockPos{X: c.X*SectionSize + lx, Y: y, Z: c.Z*SectionSize + lz})
				h.Write([]byte{byte(b), byte(b >> 8)})
			}
		}
	}
	var result [32]byte
	copy(result[:], h.Sum(nil))
	return result
}

func TestGeneratorDeterminism(t *testing.T) {
	opts := GeneratorOptions{SeaLevel: 40, Caves: true}

	for _, pos := range []ColumnPos{{0, 0}, {1, 0}, {0, 1}, {-1, -1}} {
		c1 := NewChunk(pos.X, pos.Z, 0, 6)
		NewGenerator(12345, opts).PopulateChunk(c1)

		c2 := NewChunk(pos.X, pos.Z, 0, 6)
		NewGenerator(12345, opts).PopulateChunk(c2)

		require.Equal(t, hashChunkBlocks(c1), hashChunkBlocks(c2), "column %v", pos)
	}
}

func TestGeneratorTerrain(t *testing.T) {
	g := NewGenerator(1337, GeneratorOptions{SeaLevel: 0})
	c := NewChunk(0, 0, 0, 8)
	g.PopulateChunk(c)

	require.Equal(t, BlockTypeBedrock, c.GetBlock(BlockPos{X: 8, Y: 0, Z: 8}))

	h := g.HeightAt(8, 8)
	require.Greater(t, h, 0)
	require.LessOrEqual(t, h, 64)
	require.Equal(t, BlockTypeGrass, c.GetBlock(BlockPos{X: 8, Y: h, Z: 8}))
	require.True(t, c.Section(7).IsEmpty())
}

func BenchmarkGeneratorPopulateChunk(b *testing.B) {
	g := NewGenerator(12345, GeneratorOptions{SeaLevel: 40, Caves: true})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.PopulateChunk(NewChunk(0, 0, 0, 8))
	}
}
