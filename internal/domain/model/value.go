// Package model contains domain models passed between layers.
package model

import "math"

// Value is an optional real number. The zero value is undefined.
type Value struct {
	Float float64
	Valid bool
}

// Some returns a defined Value. Non-finite input yields an undefined Value.
func Some(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{Float: f, Valid: true}
}

// None returns an undefined Value.
func None() Value { return Value{} }

// Or returns the float when defined, otherwise fallback.
func (v Value) Or(fallback float64) float64 {
	if !v.Valid {
		return fallback
	}
	return v.Float
}

// Ptr returns a pointer to the float, or nil when undefined.
func (v Value) Ptr() *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float
	return &f
}

// Values wraps a plain float slice; NaN entries become undefined.
func Values(fs ...float64) []Value {
	out := make([]Value, len(fs))
	for i, f := range fs {
		out[i] = Some(f)
	}
	return out
}

// Defined returns the defined floats of vs in order.
func Defined(vs []Value) []float64 {
	out := make([]float64, 0, len(vs))
	for _, v := range vs {
		if v.Valid {
			out = append(out, v.Float)
		}
	}
	return out
}

// Rating is an optional integer category rating on the 1-99 scale.
type Rating struct {
	Int   int
	Valid bool
}

// Ptr returns a pointer to the rating, or nil when undefined.
func (r Rating) Ptr() *int {
	if !r.Valid {
		return nil
	}
	i := r.Int
	return &i
}
