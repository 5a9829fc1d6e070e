// Package value holds the typed parameter values a variation can store and
// the weighted blending between them.
package value

import (
	"fmt"
	"math"
)

// Kind is the declared type of a parameter slot
type Kind int

const (
	KindUnknown Kind = iota
	KindFloat
	KindVec2
	KindVec3
	KindVec4
)

var kindNames = map[Kind]string{
	KindFloat: "float",
	KindVec2:  "vec2",
	KindVec3:  "vec3",
	KindVec4:  "vec4",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Components returns the number of float components for the kind (0 if unknown)
func (k Kind) Components() int {
	switch k {
	case KindFloat:
		return 1
	case KindVec2:
		return 2
	case KindVec3:
		return 3
	case KindVec4:
		return 4
	}
	return 0
}

// ParseKind is the inverse of Kind.String
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown value kind %q", s)
}

// Value is a closed set: Float, Vec2, Vec3 and Vec4 are the only implementations.
type Value interface {
	Kind() Kind
	Components() []float64
	isValue()
}

type (
	Float float64
	Vec2  [2]float64
	Vec3  [3]float64
	Vec4  [4]float64
)

func (Float) Kind() Kind { return KindFloat }
func (Vec2) Kind() Kind  { return KindVec2 }
func (Vec3) Kind() Kind  { return KindVec3 }
func (Vec4) Kind() Kind  { return KindVec4 }

func (f Float) Components() []float64 { return []float64{float64(f)} }
func (v Vec2) Components() []float64  { return v[:] }
func (v Vec3) Components() []float64  { return v[:] }
func (v Vec4) Components() []float64  { return v[:] }

func (Float) isValue() {}
func (Vec2) isValue()  {}
func (Vec3) isValue()  {}
func (Vec4) isValue()  {}

// FromComponents builds a value of the given kind. The number of components
// must match the kind exactly.
func FromComponents(kind Kind, c []float64) (Value, error) {
	if n := kind.Components(); n == 0 || n != len(c) {
		return nil, fmt.Errorf("kind %s needs %d components, got %d", kind, kind.Components(), len(c))
	}
	switch kind {
	case KindFloat:
		return Float(c[0]), nil
	case KindVec2:
		return Vec2{c[0], c[1]}, nil
	case KindVec3:
		return Vec3{c[0], c[1], c[2]}, nil
	case KindVec4:
		return Vec4{c[0], c[1], c[2], c[3]}, nil
	}
	return nil, fmt.Errorf("unsupported kind %s", kind)
}

// Zero returns the zero value for a kind, nil if the kind is unknown
func Zero(kind Kind) Value {
	switch kind {
	case KindFloat:
		return Float(0)
	case KindVec2:
		return Vec2{}
	case KindVec3:
		return Vec3{}
	case KindVec4:
		return Vec4{}
	}
	return nil
}

// Equal reports whether a and b have the same kind and components.
func Equal(a, b Value) bool {
	return a == b
}

// Near is Equal with a per-component tolerance.
func Near(a, b Value, eps float64) bool {
	if a == nil || b == nil || a.Kind() != b.Kind() {
		return false
	}
	ca, cb := a.Components(), b.Components()
	for i := range ca {
		if math.Abs(ca[i]-cb[i]) > eps {
			return false
		}
	}
	return true
}

// Format renders a value compactly for logs and the TUI
func Format(v Value) string {
	switch v := v.(type) {
	case Float:
		return fmt.Sprintf("%.3f", float64(v))
	case Vec2:
		return fmt.Sprintf("(%.2f, %.2f)", v[0], v[1])
	case Vec3:
		return fmt.Sprintf("(%.2f, %.2f, %.2f)", v[0], v[1], v[2])
	case Vec4:
		return fmt.Sprintf("(%.2f, %.2f, %.2f, %.2f)", v[0], v[1], v[2], v[3])
	}
	return "-"
}
