package world

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCellHash(t *testing.T) {
	require.Equal(t, cellHash(42, 10, 20, 30), cellHash(42, 10, 20, 30))

	require.NotEqual(t, cellHash(42, 1, 0, 0), cellHash(42, 2, 0, 0))
	require.NotEqual(t, cellHash(42, 0, 1, 0), cellHash(42, 0, 2, 0))
	require.NotEqual(t, cellHash(42, 0, 0, 1), cellHash(42, 0, 0, 2))
	require.NotEqual(t, cellHash(100, 1, 1, 1), cellHash(200, 1, 1, 1))
	require.NotEqual(t, cellHash(42, 1, 2, 3), cellHash(42, 3, 2, 1))
	require.NotEqual(t, cellHash(42, 4, 7), cellHash(42, 7, 4))
}

func TestNoiseFieldRange(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 12345))
	flat := newNoiseField(42, 1.0/16, 4)
	solid := newNoiseField(42, 1.0/8, 3)

	for range 1000 {
		x := rng.Float64()*2000 - 1000
		y := rng.Float64()*2000 - 1000
		z := rng.Float64()*2000 - 1000

		v := flat.at(x, z)
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, 1.0)

		v = solid.at(x, y, z)
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, 1.0)
	}
}

func TestNoiseFieldMatchesLatticeAtIntegers(t *testing.T) {
	n := newNoiseField(7, 1, 1)
	require.InDelta(t, cellValue(n.seed, []int64{3, -5}), n.at(3, -5), 1e-12)
	require.InDelta(t, cellValue(n.seed, []int64{3, -5, 9}), n.at(3, -5, 9), 1e-12)
}

func TestNoiseFieldContinuity(t *testing.T) {
	n := newNoiseField(42, 1, 1)
	require.Less(t, math.Abs(n.at(1, 1, 1)-n.at(1.01, 1, 1)), 0.1)
	require.Less(t, math.Abs(n.at(-3.5, 2)-n.at(-3.5, 2.01)), 0.1)
}

func TestNoiseFieldSeeds(t *testing.T) {
	a := newNoiseField(1, 1.0/4, 2)
	b := newNoiseField(2, 1.0/4, 2)

	differ := false
	for x := range 16 {
		if a.at(float64(x)+0.5, 0.5) != b.at(float64(x)+0.5, 0.5) {
			differ = true
		}
	}
	require.True(t, differ)
}

func TestNoiseFieldZeroOctaves(t *testing.T) {
	require.Zero(t, newNoiseField(42, 1, 0).at(1, 2))
	require.Zero(t, newNoiseField(42, 1, 0).at(1, 2, 3))
}
