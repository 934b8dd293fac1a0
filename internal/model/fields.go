package model

import (
	"fmt"
	"math"
	"sort"

	"fortio.org/safecast"

	"meterc/internal/diag"
)

// raw — декодированный словарь одного объекта (после схемы).
type raw map[string]any

func (r raw) has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

func (r raw) str(key string) (string, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", errorf(diag.ObjInvalid, "'%s' must be a string", key)
	}
	return s, nil
}

func (r raw) boolean(key string, def bool) (bool, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return def, errorf(diag.ObjInvalid, "'%s' must be a boolean", key)
	}
	return b, nil
}

func (r raw) integer(key string, def int) (int, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return def, nil
	}
	n, err := toInt(v)
	if err != nil {
		return def, errorf(diag.ObjInvalid, "'%s': %v", key, err)
	}
	return n, nil
}

func (r raw) strings(key string) ([]string, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		if ss, ok := v.([]string); ok {
			return append([]string(nil), ss...), nil
		}
		return nil, errorf(diag.ObjInvalid, "'%s' must be a list of strings", key)
	}
	out := make([]string, 0, len(list))
	for _, e := range list {
		s, ok := e.(string)
		if !ok {
			return nil, errorf(diag.ObjInvalid, "'%s' must be a list of strings", key)
		}
		out = append(out, s)
	}
	return out, nil
}

func (r raw) mapping(key string) (raw, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errorf(diag.ObjInvalid, "'%s' must be a mapping", key)
	}
	return raw(m), nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return safecast.Conv[int](n)
	case int32:
		return int(n), nil
	case uint64:
		return safecast.Conv[int](n)
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("expected an integer, got %v", n)
		}
		return safecast.Convert[int](n)
	}
	return 0, fmt.Errorf("expected an integer, got %T", v)
}

// sortedSet возвращает отсортированные уникальные значения.
func sortedSet(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
