package world

type BlockType uint16

const (
	BlockTypeAir BlockType = iota
	BlockTypeStone
	BlockTypeDirt
	BlockTypeGrass
	BlockTypeBedrock
	BlockTypeGlass
	BlockTypeWater
	BlockTypeLava
	BlockTypeChest

	blockTypeCount
)

// RenderLayer is the render pass a block's geometry belongs to.
type RenderLayer int

const (
	LayerSolid RenderLayer = iota
	LayerCutout
	LayerTranslucent
)

// BlockProperties describes how a block participates in occlusion and meshing.
type BlockProperties struct {
	Name string
	// Opaque blocks are full cubes that block sight lines through a section.
	Opaque bool
	Layer  RenderLayer
	Fluid  bool
	// HasBlockEntity marks blocks drawn by the entity renderer instead of the mesher.
	HasBlockEntity bool
	// AnimatedSprite names the animated texture used by the block, if any.
	AnimatedSprite string
}

var blockProperties = [blockTypeCount]BlockProperties{
	BlockTypeAir:     {Name: "air"},
	BlockTypeStone:   {Name: "stone", Opaque: true},
	BlockTypeDirt:    {Name: "dirt", Opaque: true},
	BlockTypeGrass:   {Name: "grass", Opaque: true},
	BlockTypeBedrock: {Name: "bedrock", Opaque: true},
	BlockTypeGlass:   {Name: "glass", Layer: LayerCutout},
	BlockTypeWater:   {Name: "water", Layer: LayerTranslucent, Fluid: true, AnimatedSprite: "water_still"},
	BlockTypeLava:    {Name: "lava", Layer: LayerSolid, Fluid: true, AnimatedSprite: "lava_still"},
	BlockTypeChest:   {Name: "chest", HasBlockEntity: true},
}

// Properties returns the static properties of the block type.
// Unknown types behave like air.
func (b BlockType) Properties() BlockProperties {
	if int(b) >= len(blockProperties) {
		return blockProperties[BlockTypeAir]
	}
	return blockProperties[b]
}

func (b BlockType) IsAir() bool {
	return b == BlockTypeAir
}

func (b BlockType) IsOpaque() bool {
	return b.Properties().Opaque
}

func (b BlockType) String() string {
	return b.Properties().Name
}
