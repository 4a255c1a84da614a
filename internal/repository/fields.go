package repository

import "time"

// timeLayout is RFC3339 with fixed-width milliseconds so stored timestamps
// order correctly under lexicographic comparison.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func decodeTime(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func decodeTimePtr(v any) *time.Time {
	t := decodeTime(v)
	if t.IsZero() {
		return nil
	}
	return &t
}

func stringField(fields map[string]any, key string) string {
	if s, ok := fields[key].(string); ok {
		return s
	}
	return ""
}

func floatField(fields map[string]any, key string) float64 {
	switch v := fields[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

// boolField defaults to fallback when the key is absent or not a bool.
// Valet documents written before the status feature existed carry no
// isActive key and must read as active.
func boolField(fields map[string]any, key string, fallback bool) bool {
	if b, ok := fields[key].(bool); ok {
		return b
	}
	return fallback
}
