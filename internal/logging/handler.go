package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// CompactHandler is a slog.Handler writing single-line records:
// "2006-01-02 15:04:05 LEVEL Message {"key":"value"}".
type CompactHandler struct {
	level  slog.Level
	mu     *sync.Mutex
	output io.Writer
	attrs  []slog.Attr
	groups []string
}

// NewCompactHandler returns a handler writing to output at the given minimum
// level.
func NewCompactHandler(output io.Writer, level slog.Level) *CompactHandler {
	return &CompactHandler{
		level:  level,
		mu:     &sync.Mutex{},
		output: output,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *CompactHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle formats and writes one record.
func (h *CompactHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 256)

	buf = append(buf, r.Time.Format("2006-01-02 15:04:05")...)
	buf = append(buf, ' ')
	buf = append(buf, fmt.Sprintf("%5s", levelString(r.Level))...)
	buf = append(buf, ' ')
	buf = append(buf, r.Message...)

	attrs := h.collectAttrs(r)
	if len(attrs) > 0 {
		buf = append(buf, ' ')
		encoded, err := json.Marshal(attrs)
		if err != nil {
			buf = append(buf, "[attr-encode-error]"...)
		} else {
			buf = append(buf, encoded...)
		}
	}
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.output.Write(buf)
	return err
}

// WithAttrs returns a handler that includes attrs on every record.
func (h *CompactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)

	clone := *h
	clone.attrs = merged
	return &clone
}

// WithGroup returns a handler that prefixes attribute keys with name.
func (h *CompactHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	groups := make([]string, 0, len(h.groups)+1)
	groups = append(groups, h.groups...)
	groups = append(groups, name)

	clone := *h
	clone.groups = groups
	return &clone
}

func (h *CompactHandler) collectAttrs(r slog.Record) map[string]any {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		h.addAttr(attrs, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.addAttr(attrs, a)
		return true
	})
	return attrs
}

func (h *CompactHandler) addAttr(attrs map[string]any, a slog.Attr) {
	key := a.Key
	for i := len(h.groups) - 1; i >= 0; i-- {
		key = h.groups[i] + "." + key
	}
	attrs[key] = fmt.Sprintf("%v", a.Value.Any())
}

func levelString(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}
