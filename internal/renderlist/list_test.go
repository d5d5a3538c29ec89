package renderlist

import (
	"testing"

	"github.com/stretchr/testify/require"

	"sectionrender/internal/section"
	"sectionrender/internal/world"
)

func newSection(x int, region int64, passes ...section.Pass) *section.Section {
	s := section.New(world.SectionPos{X: x})
	s.SetRegion(region, x)
	data := &section.RenderData{Flags: section.FlagHasBlockGeometry}
	for _, p := range passes {
		data.Passes[p] = true
	}
	s.SetData(data)
	return s
}

func collect(t *testing.T, l *List, pass section.Pass) []int {
	var xs []int
	l.ForPass(pass, func(region int64, e Entry) {
		require.Equal(t, e.Section.RegionID(), region)
		xs = append(xs, e.Section.Pos().X)
	})
	return xs
}

func TestListGroupsByRegion(t *testing.T) {
	l := New()
	l.Add(newSection(0, 10, section.PassSolid, section.PassTranslucent), section.FaceAll)
	l.Add(newSection(1, 20, section.PassSolid), section.FaceUp)
	l.Add(newSection(2, 10, section.PassSolid, section.PassTranslucent), section.FaceAll)
	l.Add(newSection(3, 20, section.PassTranslucent), section.FaceAll)

	require.Equal(t, 4, l.Count())
	require.Len(t, l.Batches(), 2)
	require.Equal(t, int64(10), l.Batches()[0].Region)
	require.Equal(t, section.FaceUp, l.Batches()[1].Entries[0].Faces)

	require.Equal(t, []int{0, 2, 1}, collect(t, l, section.PassSolid))
	require.Empty(t, collect(t, l, section.PassCutout))
	require.Equal(t, []int{3, 2, 0}, collect(t, l, section.PassTranslucent))
}

func TestListClearReusesBatches(t *testing.T) {
	l := New()
	l.Add(newSection(0, 1, section.PassSolid), section.FaceAll)
	l.Add(newSection(1, 2, section.PassSolid), section.FaceAll)
	l.Clear()

	require.Zero(t, l.Count())
	require.Empty(t, l.Batches())

	l.Add(newSection(5, 2, section.PassSolid), section.FaceAll)
	require.Len(t, l.Batches(), 1)
	require.Equal(t, int64(2), l.Batches()[0].Region)
	require.Equal(t, []int{5}, collect(t, l, section.PassSolid))
}
