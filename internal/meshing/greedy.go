package meshing

import (
	"context"

	"sectionrender/internal/section"
	"sectionrender/internal/world"
)

// facingAxis describes a facing as the axis its normal runs along (0=x,
// 1=y, 2=z) and the sign of the normal.
type facingAxis struct {
	axis int
	sign int
}

var facingAxes = [...]facingAxis{
	section.FacingUp:    {axis: 1, sign: 1},
	section.FacingDown:  {axis: 1, sign: -1},
	section.FacingEast:  {axis: 0, sign: 1},
	section.FacingWest:  {axis: 0, sign: -1},
	section.FacingSouth: {axis: 2, sign: 1},
	section.FacingNorth: {axis: 2, sign: -1},
}

// mesher emits greedy-merged quads for the centre section of a slice.
// Each pass gets its own vertex buffer; within a buffer the quads of one
// facing are contiguous.
type mesher struct {
	slice   *world.Slice
	buffers [section.PassCount]*[]byte
	parts   [section.PassCount][section.FacingCount]section.VertexRange
	sprites map[string]struct{}
}

func isMeshed(b world.BlockType) bool {
	return !b.IsAir() && !b.Properties().HasBlockEntity
}

// faceVisible reports whether the face of b towards nb is drawn. Faces
// between two blocks of the same type are culled.
func faceVisible(b, nb world.BlockType) bool {
	return !nb.IsOpaque() && nb != b
}

func (m *mesher) meshFacing(ctx context.Context, f section.Facing) error {
	fa := facingAxes[f]
	d := fa.axis
	u := (d + 1) % 3
	v := (d + 2) % 3

	for p := range m.buffers {
		m.parts[p][f].Start = len(*m.buffers[p]) / VertexStride
	}

	var mask [world.SectionSize * world.SectionSize]world.BlockType
	var pos [3]int

	for layer := 0; layer < world.SectionSize; layer++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Mask of visible faces in this layer, keyed by block type.
		pos[d] = layer
		for j := 0; j < world.SectionSize; j++ {
			for i := 0; i < world.SectionSize; i++ {
				pos[u], pos[v] = i, j
				idx := j*world.SectionSize + i
				mask[idx] = world.BlockTypeAir

				b := m.slice.BlockAt(pos[0], pos[1], pos[2])
				if !isMeshed(b) {
					continue
				}
				npos := pos
				npos[d] += fa.sign
				if faceVisible(b, m.slice.BlockAt(npos[0], npos[1], npos[2])) {
					mask[idx] = b
				}
			}
		}

		// Greedy merge over mask (width along u, height along v)
		plane := layer
		if fa.sign > 0 {
			plane++
		}
		for j := 0; j < world.SectionSize; j++ {
			for i := 0; i < world.SectionSize; {
				b := mask[j*world.SectionSize+i]
				if b == world.BlockTypeAir {
					i++
					continue
				}

				w := 1
				for i+w < world.SectionSize && mask[j*world.SectionSize+i+w] == b {
					w++
				}
				h := 1
			outer:
				for j+h < world.SectionSize {
					for k := 0; k < w; k++ {
						if mask[(j+h)*world.SectionSize+i+k] != b {
							break outer
						}
					}
					h++
				}

				m.emitQuad(f, b, d, u, v, plane, i, j, w, h)

				for jj := j; jj < j+h; jj++ {
					for ii := i; ii < i+w; ii++ {
						mask[jj*world.SectionSize+ii] = world.BlockTypeAir
					}
				}
				i += w
			}
		}
	}

	for p := range m.buffers {
		r := &m.parts[p][f]
		r.Count = len(*m.buffers[p])/VertexStride - r.Start
	}
	return nil
}

func (m *mesher) emitQuad(f section.Facing, b world.BlockType, d, u, v, plane, i, j, w, h int) {
	props := b.Properties()
	buf := m.buffers[section.Pass(props.Layer)]

	corners := [4][2]int{{i, j}, {i + w, j}, {i + w, j + h}, {i, j + h}}
	if facingAxes[f].sign < 0 {
		// Reverse the winding so the front face points along the normal.
		corners[1], corners[3] = corners[3], corners[1]
	}

	var pos [3]int
	pos[d] = plane
	for _, c := range corners {
		pos[u], pos[v] = c[0], c[1]
		*buf = packVertex(*buf, pos[0], pos[1], pos[2], f, uint16(b))
	}

	if props.AnimatedSprite != "" {
		m.sprites[props.AnimatedSprite] = struct{}{}
	}
}
