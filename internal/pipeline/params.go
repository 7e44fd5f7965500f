package pipeline

import (
	"fmt"
	"strconv"
	"time"
)

// Params is a flat keyword configuration mapping.
type Params map[string]any

// Merge returns a new mapping with the keys of p overridden by other.
func (p Params) Merge(other Params) Params {
	out := make(Params, len(p)+len(other))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Pick copies the listed keys present in p into dst.
func (p Params) Pick(dst Params, keys ...string) {
	for _, k := range keys {
		if v, ok := p[k]; ok {
			dst[k] = v
		}
	}
}

// Has reports whether key is set to a non-nil value.
func (p Params) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// Float returns key as float64, or def when unset.
func (p Params) Float(key string, def float64) (float64, error) {
	if !p.Has(key) {
		return def, nil
	}
	switch v := p[key].(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("parameter %q: %w", key, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("parameter %q: expected a number, got %T", key, v)
	}
}

// Int returns key as int, or def when unset.
func (p Params) Int(key string, def int) (int, error) {
	if !p.Has(key) {
		return def, nil
	}
	switch v := p[key].(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case int32:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("parameter %q: expected an integer, got %v", key, v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("parameter %q: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("parameter %q: expected an integer, got %T", key, v)
	}
}

// Bool returns key as bool, or def when unset.
func (p Params) Bool(key string, def bool) (bool, error) {
	if !p.Has(key) {
		return def, nil
	}
	switch v := p[key].(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("parameter %q: %w", key, err)
		}
		return b, nil
	default:
		return false, fmt.Errorf("parameter %q: expected a boolean, got %T", key, v)
	}
}

// String returns key as string, or def when unset.
func (p Params) String(key string, def string) (string, error) {
	if !p.Has(key) {
		return def, nil
	}
	switch v := p[key].(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("parameter %q: expected a string, got %T", key, v)
	}
}

// Duration returns key as a duration, or def when unset. Plain numbers are seconds.
func (p Params) Duration(key string, def time.Duration) (time.Duration, error) {
	if !p.Has(key) {
		return def, nil
	}
	switch v := p[key].(type) {
	case time.Duration:
		return v, nil
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("parameter %q: %w", key, err)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("parameter %q: expected a duration, got %T", key, v)
	}
}
