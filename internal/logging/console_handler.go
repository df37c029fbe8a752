package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// prettyHandler renders one header line per record followed by indented
// "- Label: value" lines, ordered by infoHighlightKeys.
type prettyHandler struct {
	mu        *sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	attrs     []slog.Attr
	groups    []string
	addSource bool
}

func newPrettyHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &prettyHandler{mu: &sync.Mutex{}, writer: w, level: lvl, addSource: addSource}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &next
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}

// consoleLine is a record after attribute flattening.
type consoleLine struct {
	ts        time.Time
	level     slog.Level
	component string
	itemIndex string
	provider  string
	message   string
	source    string
	attrs     []kv
}

func (h *prettyHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}
	line := h.collect(record)

	var buf bytes.Buffer
	buf.Grow(192 + len(line.attrs)*32)
	line.render(&buf)

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *prettyHandler) collect(record slog.Record) consoleLine {
	line := consoleLine{
		ts:      record.Time,
		level:   record.Level,
		message: strings.TrimSpace(record.Message),
	}
	if line.ts.IsZero() {
		line.ts = time.Now()
	}
	if line.message == "" {
		line.message = "(no message)"
	}

	kvs := make([]kv, 0, record.NumAttrs()+len(h.attrs))
	for _, attr := range h.attrs {
		flattenAttr(&kvs, h.groups, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(&kvs, h.groups, attr)
		return true
	})
	line.attrs = lastValueWins(kvs)

	for _, attr := range line.attrs {
		switch attr.key {
		case FieldComponent:
			line.component = attrString(attr.value)
		case FieldItemIndex:
			line.itemIndex = attrString(attr.value)
		case FieldProvider:
			line.provider = attrString(attr.value)
		}
	}

	if h.addSource {
		if src := record.Source(); src != nil {
			line.source = filepath.Base(src.File) + ":" + strconv.Itoa(src.Line)
		}
	}
	return line
}

func (l consoleLine) render(buf *bytes.Buffer) {
	buf.WriteString(formatTimestamp(l.ts))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(l.level))
	if l.component != "" {
		buf.WriteString(" [" + l.component + "]")
	}
	if subject := l.subject(); subject != "" {
		buf.WriteString(" " + subject)
	}
	buf.WriteString(" – ")
	buf.WriteString(l.message)
	if l.source != "" {
		buf.WriteString(" [" + l.source + "]")
	}
	buf.WriteByte('\n')

	for _, field := range selectFields(l.attrs, l.level < slog.LevelInfo) {
		buf.WriteString("    - " + field.label + ": " + field.value + "\n")
	}
}

// subject renders "Item #3 (yt-dlp)" style prefixes.
func (l consoleLine) subject() string {
	item := strings.TrimSpace(l.itemIndex)
	provider := strings.TrimSpace(l.provider)
	switch {
	case item != "" && provider != "":
		return "Item #" + item + " (" + provider + ")"
	case item != "":
		return "Item #" + item
	default:
		return provider
	}
}

type kv struct {
	key   string
	value slog.Value
}

// lastValueWins drops repeated keys, keeping the first position and the
// last value.
func lastValueWins(attrs []kv) []kv {
	if len(attrs) < 2 {
		return attrs
	}
	index := make(map[string]int, len(attrs))
	out := make([]kv, 0, len(attrs))
	for _, attr := range attrs {
		if attr.key == "" {
			continue
		}
		if pos, seen := index[attr.key]; seen {
			out[pos].value = attr.value
			continue
		}
		index[attr.key] = len(out)
		out = append(out, attr)
	}
	return out
}

// flattenAttr expands groups into dotted keys.
func flattenAttr(dst *[]kv, prefix []string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		next := prefix
		if attr.Key != "" {
			next = append(append([]string(nil), prefix...), attr.Key)
		}
		for _, member := range value.Group() {
			flattenAttr(dst, next, member)
		}
		return
	}
	key := attr.Key
	if len(prefix) > 0 {
		key = strings.Join(prefix, ".") + "." + key
	}
	*dst = append(*dst, kv{key: key, value: value})
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
