package value

import "errors"

// ErrZeroWeight is returned when the neighbors matching the kind carry no weight.
var ErrZeroWeight = errors.New("blend: total weight of neighbors is zero")

// Weighted pairs a neighbor's stored value with its blend weight
type Weighted struct {
	Value  Value
	Weight float64
}

// Source yields uniform floats in [0, 1); *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Blend computes sum(value_i * weight_i) / sum(weight_i) per component over
// the neighbors whose value matches the kind of original, then adds an
// independent uniform perturbation in [-scatter, scatter] to every component.
//
// An empty neighbor list returns original unchanged. Neighbors with a
// different kind (or no value) are skipped; when all are skipped the result
// is original as well.
func Blend(original Value, neighbors []Weighted, scatter float64, rng Source) (Value, error) {
	if original == nil {
		return nil, errors.New("blend: original value is nil")
	}
	if len(neighbors) == 0 {
		return original, nil
	}

	var sum [4]float64
	var sumWeight float64
	matched := 0
	for _, n := range neighbors {
		switch v := n.Value.(type) {
		case Float:
			if original.Kind() != KindFloat {
				continue
			}
			sum[0] += float64(v) * n.Weight
		case Vec2:
			if original.Kind() != KindVec2 {
				continue
			}
			for i := range v {
				sum[i] += v[i] * n.Weight
			}
		case Vec3:
			if original.Kind() != KindVec3 {
				continue
			}
			for i := range v {
				sum[i] += v[i] * n.Weight
			}
		case Vec4:
			if original.Kind() != KindVec4 {
				continue
			}
			for i := range v {
				sum[i] += v[i] * n.Weight
			}
		default:
			continue
		}
		sumWeight += n.Weight
		matched++
	}

	// nothing left after skipping: same as an empty set
	if matched == 0 {
		return original, nil
	}
	if sumWeight == 0 {
		return nil, ErrZeroWeight
	}

	for i := 0; i < original.Kind().Components(); i++ {
		sum[i] /= sumWeight
		if scatter != 0 && rng != nil {
			sum[i] += (rng.Float64()*2 - 1) * scatter
		}
	}

	switch original.(type) {
	case Float:
		return Float(sum[0]), nil
	case Vec2:
		return Vec2{sum[0], sum[1]}, nil
	case Vec3:
		return Vec3{sum[0], sum[1], sum[2]}, nil
	case Vec4:
		return Vec4{sum[0], sum[1], sum[2], sum[3]}, nil
	}
	return nil, errors.New("blend: unsupported kind " + original.Kind().String())
}
