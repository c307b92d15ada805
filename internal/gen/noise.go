package gen

import (
	"github.com/aquilax/go-perlin"
)

// noise - шум Перлина с фиксированным сидом; значения в диапазоне [0, 1]
type noise struct {
	p *perlin.Perlin
}

func newNoise(seed int64) *noise {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав
	return &noise{p: perlin.NewPerlin(alpha, beta, n, seed)}
}

func (n *noise) at(x, z float64) float64 {
	v := (n.p.Noise2D(x, z) + 1.0) / 2.0
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
