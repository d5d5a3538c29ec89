package world

import (
	"math"
)

// noiseField is seeded fractal value noise over 2 or 3 dimensions. Samples
// lie in [0,1].
type noiseField struct {
	seed        uint64
	frequency   float64
	octaves     int
	persistence float64
	lacunarity  float64
}

func newNoiseField(seed int64, frequency float64, octaves int) noiseField {
	return noiseField{
		seed:        mix64(uint64(seed)),
		frequency:   frequency,
		octaves:     octaves,
		persistence: 0.5,
		lacunarity:  2,
	}
}

// axisSalt decorrelates the lattice axes so that (a,b) and (b,a) hash apart.
var axisSalt = [3]uint64{0xD6E8FEB86659FD93, 0xA0761D6478BD642F, 0xE7037ED1A0B428DB}

func mix64(v uint64) uint64 {
	v ^= v >> 33
	v *= 0xFF51AFD7ED558CCD
	v ^= v >> 33
	v *= 0xC4CEB9FE1A85EC53
	v ^= v >> 33
	return v
}

// cellHash hashes integer lattice coordinates under a seed.
func cellHash(seed uint64, cell ...int64) uint64 {
	h := seed
	for i, c := range cell {
		h = mix64(h ^ uint64(c)*axisSalt[i])
	}
	return h
}

func cellValue(seed uint64, cell []int64) float64 {
	return float64(cellHash(seed, cell...)>>11) / (1 << 53)
}

// smoothstep5 is the quintic 6t^5-15t^4+10t^3.
func smoothstep5(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

// lattice interpolates the cell values at the corners surrounding p.
func lattice(seed uint64, p []float64) float64 {
	var (
		base   [3]int64
		weight [3]float64
		cell   [3]int64
	)
	for i, v := range p {
		f := math.Floor(v)
		base[i] = int64(f)
		weight[i] = smoothstep5(v - f)
	}

	dims := len(p)
	sum := 0.0
	for corner := range 1 << dims {
		w := 1.0
		for i := range dims {
			if corner&(1<<i) != 0 {
				cell[i] = base[i] + 1
				w *= weight[i]
			} else {
				cell[i] = base[i]
				w *= 1 - weight[i]
			}
		}
		sum += w * cellValue(seed, cell[:dims])
	}
	return sum
}

// at samples the field at a world position given in blocks.
func (n noiseField) at(p ...float64) float64 {
	var scaled [3]float64
	amp, freq := 1.0, n.frequency
	sum, norm := 0.0, 0.0
	for o := range n.octaves {
		for i, v := range p {
			scaled[i] = v * freq
		}
		sum += amp * lattice(n.seed+uint64(o)*axisSalt[0], scaled[:len(p)])
		norm += amp
		amp *= n.persistence
		freq *= n.lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}
