package world

import (
	"math"
)

// TerrainGenerator fills freshly created columns.
// Implementations must be safe for concurrent use.
type TerrainGenerator interface {
	HeightAt(worldX, worldZ int) int
	PopulateChunk(c *Chunk)
}

// Generator handles terrain generation logic.
type Generator struct {
	surface    noiseField
	cave       noiseField
	chestSeed  uint64
	baseHeight int
	amp        float64

	seaLevel   int
	caves      bool
	caveCutoff float64
}

// GeneratorOptions controls the optional terrain features.
type GeneratorOptions struct {
	SeaLevel int
	Caves    bool
}

// NewGenerator creates a new generator with default settings.
func NewGenerator(seed int64, opts GeneratorOptions) *Generator {
	return &Generator{
		surface:    newNoiseField(seed, 1.0/64, 4),
		cave:       newNoiseField(seed^0x5DEECE66D, 1.0/24, 2),
		chestSeed:  mix64(uint64(seed) + 997),
		baseHeight: 32,
		amp:        32,
		seaLevel:   opts.SeaLevel,
		caves:      opts.Caves,
		caveCutoff: 0.72,
	}
}

// HeightAt computes world surface height (block Y) at world X,Z.
func (g *Generator) HeightAt(worldX, worldZ int) int {
	n := g.surface.at(float64(worldX), float64(worldZ))
	height := float64(g.baseHeight) + n*g.amp
	if height < 0 {
		height = 0
	}
	return int(math.Floor(height))
}

func (g *Generator) isCave(worldX, worldY, worldZ, height int) bool {
	if !g.caves || worldY <= 0 || worldY >= height-3 {
		return false
	}
	return g.cave.at(float64(worldX), float64(worldY), float64(worldZ)) > g.caveCutoff
}

// PopulateChunk fills a column using the noise heightmap. Block Y 0 is
// bedrock; columns below the sea level are flooded with water.
func (g *Generator) PopulateChunk(c *Chunk) {
	bottomY := c.bottom * SectionSize
	topY := (c.bottom+len(c.sections))*SectionSize - 1

	for lx := range SectionSize {
		for lz := range SectionSize {
			worldX := c.X*SectionSize + lx
			worldZ := c.Z*SectionSize + lz
			height := min(g.HeightAt(worldX, worldZ), topY)

			for y := max(bottomY, 0); y <= height; y++ {
				pos := BlockPos{X: worldX, Y: y, Z: worldZ}
				switch {
				case y == 0:
					c.SetBlock(pos, BlockTypeBedrock)
				case g.isCave(worldX, y, worldZ, height):
				case y == height:
					c.SetBlock(pos, BlockTypeGrass)
				case y >= height-3:
					c.SetBlock(pos, BlockTypeDirt)
				default:
					c.SetBlock(pos, BlockTypeStone)
				}
			}

			for y := height + 1; y <= min(g.seaLevel, topY); y++ {
				c.SetBlock(BlockPos{X: worldX, Y: y, Z: worldZ}, BlockTypeWater)
			}

			if height > g.seaLevel && height < topY && cellHash(g.chestSeed, int64(worldX), int64(worldZ))%997 == 0 {
				c.SetBlock(BlockPos{X: worldX, Y: height + 1, Z: worldZ}, BlockTypeChest)
			}
		}
	}
}

// FlatGenerator produces a flat world of constant height.
type FlatGenerator struct {
	height int
}

func NewFlatGenerator(height int) *FlatGenerator {
	return &FlatGenerator{height: height}
}

func (g *FlatGenerator) HeightAt(worldX, worldZ int) int {
	return g.height
}

func (g *FlatGenerator) PopulateChunk(c *Chunk) {
	for lx := range SectionSize {
		for lz := range SectionSize {
			worldX := c.X*SectionSize + lx
			worldZ := c.Z*SectionSize + lz
			for y := 0; y <= g.height; y++ {
				b := BlockTypeDirt
				switch {
				case y == 0:
					b = BlockTypeBedrock
				case y == g.height:
					b = BlockTypeGrass
				}
				c.SetBlock(BlockPos{X: worldX, Y: y, Z: worldZ}, b)
			}
		}
	}
}
