package commands

import (
	"fmt"

	"instastudio/internal/editing"
)

// Param decoding for the translator's loosely typed payloads. JSON numbers
// arrive as float64; everything else is validated here so primitive code
// only sees typed values.

func floatParam(params map[string]any, key string, fallback float64) (float64, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return fallback, nil
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%w: %s must be a number, got %T", editing.ErrInvalidParameter, key, raw)
	}
}

func requiredFloatParam(params map[string]any, key string) (float64, error) {
	if _, ok := params[key]; !ok {
		return 0, fmt.Errorf("%w: missing %s", editing.ErrInvalidParameter, key)
	}
	return floatParam(params, key, 0)
}

func stringParam(params map[string]any, key, fallback string) (string, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return fallback, nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", editing.ErrInvalidParameter, key, raw)
	}
	return value, nil
}

func requiredStringParam(params map[string]any, key string) (string, error) {
	value, err := stringParam(params, key, "")
	if err != nil {
		return "", err
	}
	if value == "" {
		return "", fmt.Errorf("%w: missing %s", editing.ErrInvalidParameter, key)
	}
	return value, nil
}

func boolParam(params map[string]any, key string, fallback bool) (bool, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return fallback, nil
	}
	value, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s must be a boolean, got %T", editing.ErrInvalidParameter, key, raw)
	}
	return value, nil
}

func intParam(params map[string]any, key string, fallback int) (int, error) {
	value, err := floatParam(params, key, float64(fallback))
	if err != nil {
		return 0, err
	}
	return int(value), nil
}

// positionParam accepts either a named overlay position ("center", "top",
// "bottom") or an [x, y] pair of normalized coordinates in [0, 1].
func positionParam(params map[string]any, key, fallback string) (string, *float64, *float64, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return fallback, nil, nil, nil
	}
	switch v := raw.(type) {
	case string:
		return v, nil, nil, nil
	case []any:
		if len(v) != 2 {
			return "", nil, nil, fmt.Errorf("%w: %s coordinates must be [x, y]", editing.ErrInvalidParameter, key)
		}
		coordX, okX := v[0].(float64)
		coordY, okY := v[1].(float64)
		if !okX || !okY {
			return "", nil, nil, fmt.Errorf("%w: %s coordinates must be numbers", editing.ErrInvalidParameter, key)
		}
		if coordX < 0 || coordX > 1 || coordY < 0 || coordY > 1 {
			return "", nil, nil, fmt.Errorf("%w: %s coordinates must be within [0, 1]", editing.ErrInvalidParameter, key)
		}
		return "", &coordX, &coordY, nil
	default:
		return "", nil, nil, fmt.Errorf("%w: %s must be a position name or [x, y], got %T", editing.ErrInvalidParameter, key, raw)
	}
}

// segmentsParam accepts both [[start, end], ...] pairs and
// [{"start": s, "end": e}, ...] objects.
func segmentsParam(params map[string]any, key string) ([]editing.Segment, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return nil, fmt.Errorf("%w: missing %s", editing.ErrInvalidParameter, key)
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a list, got %T", editing.ErrInvalidParameter, key, raw)
	}
	segments := make([]editing.Segment, 0, len(list))
	for i, entry := range list {
		switch v := entry.(type) {
		case []any:
			if len(v) != 2 {
				return nil, fmt.Errorf("%w: segment %d must be [start, end]", editing.ErrInvalidParameter, i)
			}
			start, okS := v[0].(float64)
			end, okE := v[1].(float64)
			if !okS || !okE {
				return nil, fmt.Errorf("%w: segment %d bounds must be numbers", editing.ErrInvalidParameter, i)
			}
			segments = append(segments, editing.Segment{Start: start, End: end})
		case map[string]any:
			start, err := requiredFloatParam(v, "start")
			if err != nil {
				return nil, fmt.Errorf("segment %d: %w", i, err)
			}
			end, err := requiredFloatParam(v, "end")
			if err != nil {
				return nil, fmt.Errorf("segment %d: %w", i, err)
			}
			segments = append(segments, editing.Segment{Start: start, End: end})
		default:
			return nil, fmt.Errorf("%w: segment %d has unsupported shape %T", editing.ErrInvalidParameter, i, entry)
		}
	}
	return segments, nil
}
