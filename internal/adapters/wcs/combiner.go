package wcs

import (
	"fmt"
	"math"

	"github.com/jobrunner/skyline/internal/domain"
)

// Combiner blends tangent-plane transforms into a single output transform:
// a north-up frame at the mean reference position, using the finest input
// scale, with a pixel grid just large enough to bound every input's
// footprint.
type Combiner struct{}

// NewCombiner creates a transform combiner.
func NewCombiner() *Combiner {
	return &Combiner{}
}

// Combine implements domain.TransformCombiner.
func (c *Combiner) Combine(transforms []domain.Transform) (domain.Transform, error) {
	if len(transforms) == 0 {
		return nil, fmt.Errorf("combine: %w: no input transforms", domain.ErrInvalidInput)
	}
	inputs := make([]*Transform, len(transforms))
	for i, t := range transforms {
		wt, ok := t.(*Transform)
		if !ok {
			return nil, fmt.Errorf("combine: %w: foreign transform type %T", domain.ErrInvalidInput, t)
		}
		inputs[i] = wt
	}
	if len(inputs) == 1 {
		return inputs[0], nil
	}

	// Mean reference position via the unit-vector sum, finest plate scale.
	var sum [3]float64
	scale := math.Inf(1)
	for _, in := range inputs {
		v := in.Center().UnitVector()
		sum[0] += v[0]
		sum[1] += v[1]
		sum[2] += v[2]
		if s := in.Scale(); s < scale {
			scale = s
		}
	}
	center := domain.FromUnitVector(sum)

	// North-up CD: RA grows to the left, Dec grows upward.
	out, err := New(center, [2]float64{0, 0}, [2][2]float64{{-scale, 0}, {0, scale}}, [2]int{1, 1})
	if err != nil {
		return nil, err
	}

	// Bound every input corner in the output frame.
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, in := range inputs {
		for _, corner := range in.Corners() {
			x, y, err := out.SkyToPixel(corner)
			if err != nil {
				return nil, err
			}
			minX = math.Min(minX, x)
			minY = math.Min(minY, y)
			maxX = math.Max(maxX, x)
			maxY = math.Max(maxY, y)
		}
	}
	naxis := [2]int{
		int(math.Ceil(maxX - minX)),
		int(math.Ceil(maxY - minY)),
	}
	crpix := [2]float64{0.5 - minX, 0.5 - minY}

	return New(center, crpix, [2][2]float64{{-scale, 0}, {0, scale}}, naxis)
}
