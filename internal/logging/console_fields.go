package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

type infoField struct {
	label string
	value string
}

// infoHighlightKeys render first, in this order, when present.
var infoHighlightKeys = []string{
	FieldEventType,
	FieldVideoID,
	FieldErrorKind,
	"error",
	FieldErrorHint,
	FieldImpact,
	"method",
	"char_count",
	"word_count",
	"from_cache",
	"duration",
}

// selectFields returns formatted attributes for the console body. Subject
// fields already shown in the header are skipped, and debug-only keys
// appear only on debug records.
func selectFields(attrs []kv, debug bool) []infoField {
	if len(attrs) == 0 {
		return nil
	}
	used := make([]bool, len(attrs))
	result := make([]infoField, 0, len(attrs))
	add := func(idx int) {
		used[idx] = true
		attr := attrs[idx]
		if skipKey(attr.key) || (!debug && isDebugOnlyKey(attr.key)) {
			return
		}
		result = append(result, infoField{label: displayLabel(attr.key), value: formatValueForKey(attr.key, attr.value)})
	}
	for _, key := range infoHighlightKeys {
		for idx := range attrs {
			if !used[idx] && attrs[idx].key == key {
				add(idx)
				break
			}
		}
	}
	for idx := range attrs {
		if !used[idx] {
			add(idx)
		}
	}
	return result
}

func skipKey(key string) bool {
	switch key {
	case "", FieldComponent, FieldItemIndex, FieldProvider:
		return true
	default:
		return false
	}
}

func isDebugOnlyKey(key string) bool {
	switch key {
	case FieldCorrelationID, "languages", "args", "scratch_dir", "attempt", "status_code":
		return true
	}
	return strings.HasSuffix(key, "_path") || strings.HasSuffix(key, "_url")
}

func displayLabel(key string) string {
	switch key {
	case FieldEventType:
		return "Event"
	case FieldErrorHint:
		return "Hint"
	case FieldErrorKind:
		return "Failure"
	case FieldVideoID:
		return "Video"
	case "char_count":
		return "Characters"
	case "word_count":
		return "Words"
	case "from_cache":
		return "Cache Hit"
	default:
		return titleizeKey(key)
	}
}

func titleizeKey(key string) string {
	parts := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
	for i, part := range parts {
		lower := strings.ToLower(part)
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}

func formatValueForKey(key string, v slog.Value) string {
	v = v.Resolve()
	switch {
	case v.Kind() == slog.KindDuration:
		return formatDurationHuman(v.Duration())
	case v.Kind() == slog.KindBool:
		if v.Bool() {
			return "yes"
		}
		return "no"
	case key == "error":
		value := formatValue(v)
		const maxLen = 200
		if len(value) > maxLen {
			value = value[:maxLen] + "…"
		}
		return value
	default:
		return formatValue(v)
	}
}

func attrString(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return formatValue(v)
	}
}

func formatValue(v slog.Value) string {
	v = v.Resolve()
	var s string
	switch v.Kind() {
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return formatTimestamp(v.Time())
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		s = v.String()
	}
	if needsQuotes(s) {
		return strconv.Quote(s)
	}
	return s
}

func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r < ' ' || r == '"' {
			return true
		}
	}
	return false
}
