package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Row is one tabular record as delivered by a stats source: field name to
// loosely typed value. Absent keys, nil, and non-numeric text are all
// treated as missing by the typed accessors.
type Row map[string]any

// Float returns the numeric value stored under key.
func (r Row) Float(key string) Value {
	raw, ok := r[key]
	if !ok || raw == nil {
		return None()
	}
	switch v := raw.(type) {
	case float64:
		return Some(v)
	case float32:
		return Some(float64(v))
	case int:
		return Some(float64(v))
	case int64:
		return Some(float64(v))
	case int32:
		return Some(float64(v))
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return None()
		}
		return Some(f)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return None()
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return None()
		}
		return Some(f)
	case bool:
		if v {
			return Some(1)
		}
		return Some(0)
	default:
		return None()
	}
}

// FirstFloat returns the first defined numeric value among keys.
func (r Row) FirstFloat(keys ...string) Value {
	for _, k := range keys {
		if v := r.Float(k); v.Valid {
			return v
		}
	}
	return None()
}

// String returns the text stored under key. Numbers are formatted without
// a trailing fraction when integral.
func (r Row) String(key string) (string, bool) {
	raw, ok := r[key]
	if !ok || raw == nil {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return strconv.FormatInt(int64(v), 10), true
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	default:
		return "", false
	}
}

// Int returns the integral value stored under key, truncating fractions.
func (r Row) Int(key string) (int64, bool) {
	v := r.Float(key)
	if !v.Valid {
		return 0, false
	}
	return int64(v.Float), true
}

// Column extracts key from every row, aligned to row order.
func Column(rows []Row, key string) []Value {
	out := make([]Value, len(rows))
	for i, r := range rows {
		out[i] = r.Float(key)
	}
	return out
}
