package service

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/spec-kit/customer-data-service/pkg/util/errorutil"
)

// Extract extracts a required parameter from args with type safety.
func Extract[T any](args map[string]any, name string) (T, error) {
	var zero T
	value, exists := args[name]
	if !exists {
		return zero, apperrors.NewInvalidParameter("%s parameter is required", name)
	}
	if v, ok := value.(T); ok {
		return v, nil
	}
	return zero, apperrors.NewInvalidParameter("%s parameter must be of type %T, got %T", name, zero, value)
}

// ExtractOptional extracts an optional parameter, returning defaultValue when
// it is absent or null.
func ExtractOptional[T any](args map[string]any, name string, defaultValue T) (T, error) {
	value, exists := args[name]
	if !exists || value == nil {
		return defaultValue, nil
	}
	if v, ok := value.(T); ok {
		return v, nil
	}
	var zero T
	return zero, apperrors.NewInvalidParameter("%s parameter must be of type %T, got %T", name, zero, value)
}

// ExtractInt extracts a required integer. JSON numbers arrive as float64 and
// must be integral; numeric strings are accepted as well.
func ExtractInt(args map[string]any, name string) (int64, error) {
	value, exists := args[name]
	if !exists || value == nil {
		return 0, apperrors.NewInvalidParameter("%s parameter is required", name)
	}
	return toInt(name, value)
}

// ExtractOptionalInt is ExtractInt with a default for absent or null values.
func ExtractOptionalInt(args map[string]any, name string, defaultValue int64) (int64, error) {
	value, exists := args[name]
	if !exists || value == nil {
		return defaultValue, nil
	}
	return toInt(name, value)
}

func toInt(name string, value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) && math.Abs(v) < 1<<53 {
			return int64(v), nil
		}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, apperrors.NewInvalidParameter("%s parameter must be an integer, got %T", name, value)
}

// rejectUnknown fails when args carries a name outside allowed.
func rejectUnknown(operation string, args map[string]any, allowed []string) error {
	for name := range args {
		known := false
		for _, a := range allowed {
			if a == name {
				known = true
				break
			}
		}
		if !known {
			return apperrors.NewInvalidParameter("%s got an unexpected parameter %q", operation, name)
		}
	}
	return nil
}

// fieldValue renders a scalar update value as the string stored in the row.
func fieldValue(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	case json.Number:
		return v.String(), true
	default:
		return "", false
	}
}
