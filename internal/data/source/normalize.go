package source

import (
	"strconv"
	"strings"
	"time"
)

type columnClass int

const (
	classOther columnClass = iota
	classInteger
	classDecimal
	classTemporal
	classBool
)

func classify(dbType string) columnClass {
	t := strings.ToUpper(strings.TrimSpace(dbType))
	switch {
	case t == "":
		return classOther
	case strings.Contains(t, "NUMERIC"), strings.Contains(t, "DECIMAL"),
		strings.Contains(t, "REAL"), strings.Contains(t, "FLOAT"),
		strings.Contains(t, "DOUBLE"), strings.Contains(t, "MONEY"):
		return classDecimal
	case strings.Contains(t, "INT"), t == "SERIAL", t == "BIGSERIAL":
		return classInteger
	case strings.Contains(t, "TIMESTAMP"), strings.Contains(t, "DATE"), strings.HasPrefix(t, "TIME"):
		return classTemporal
	case strings.HasPrefix(t, "BOOL"):
		return classBool
	default:
		return classOther
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// normalizeValue converts a driver value into the pipeline's value set.
// Values that do not fit their declared class are passed through so the
// mapper can reject them with row context.
func normalizeValue(v any, dbType string) any {
	if v == nil {
		return nil
	}
	class := classify(dbType)
	switch x := v.(type) {
	case []byte:
		return normalizeString(string(x), class)
	case string:
		return normalizeString(x, class)
	case int64:
		if class == classDecimal {
			return float64(x)
		}
		if class == classBool {
			return x != 0
		}
		return x
	case int32:
		return normalizeValue(int64(x), dbType)
	case int:
		return normalizeValue(int64(x), dbType)
	case float32:
		return float64(x)
	case float64:
		return x
	case bool:
		return x
	case time.Time:
		return x.UTC()
	default:
		return v
	}
}

func normalizeString(s string, class columnClass) any {
	switch class {
	case classDecimal:
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	case classInteger:
		if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return n
		}
	case classTemporal:
		if t, ok := parseTime(s); ok {
			return t
		}
	case classBool:
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b
		}
	}
	return s
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
