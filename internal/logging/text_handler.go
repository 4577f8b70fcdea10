package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// TextTimeLayout is the timestamp layout of text records.
const TextTimeLayout = "2006-01-02 15:04:05,000"

// textSeparator sits between the timestamp, level and message of a text record.
const textSeparator = " - "

// TextHandler writes one line per record:
//
//	2026-10-16 09:41:07,512 - INFO - Summary written run_id=3f0c... path=summary/a.md
//
// The message and attributes are separated by a tab. Newlines and tabs inside
// the message are escaped so every record stays on one line.
type TextHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	prefix string // preformatted WithAttrs output
	groups []string
}

// NewTextHandler creates a TextHandler writing to w.
func NewTextHandler(w io.Writer, opts *slog.HandlerOptions) *TextHandler {
	h := &TextHandler{mu: &sync.Mutex{}, w: w, level: slog.LevelInfo}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	return h
}

// Enabled reports whether level is at or above the handler's minimum.
func (h *TextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and writes a single record.
func (h *TextHandler) Handle(_ context.Context, record slog.Record) error {
	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var buf bytes.Buffer
	buf.Grow(128)
	buf.WriteString(ts.Format(TextTimeLayout))
	buf.WriteString(textSeparator)
	buf.WriteString(record.Level.String())
	buf.WriteString(textSeparator)
	buf.WriteString(escapeMessage(record.Message))

	attrs := h.prefix
	if record.NumAttrs() > 0 {
		var sb strings.Builder
		sb.WriteString(attrs)
		record.Attrs(func(a slog.Attr) bool {
			appendAttr(&sb, h.groups, a)
			return true
		})
		attrs = sb.String()
	}
	if attrs != "" {
		buf.WriteByte('\t')
		buf.WriteString(strings.TrimPrefix(attrs, " "))
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

// WithAttrs returns a handler that prepends attrs to every record.
func (h *TextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var sb strings.Builder
	sb.WriteString(h.prefix)
	for _, a := range attrs {
		appendAttr(&sb, h.groups, a)
	}
	clone := *h
	clone.prefix = sb.String()
	return &clone
}

// WithGroup returns a handler that qualifies later attribute keys with name.
func (h *TextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

func appendAttr(sb *strings.Builder, groups []string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		sub := groups
		if a.Key != "" {
			sub = append(append([]string(nil), groups...), a.Key)
		}
		for _, ga := range a.Value.Group() {
			appendAttr(sb, sub, ga)
		}
		return
	}

	sb.WriteByte(' ')
	for _, g := range groups {
		sb.WriteString(g)
		sb.WriteByte('.')
	}
	sb.WriteString(a.Key)
	sb.WriteByte('=')
	sb.WriteString(formatValue(a.Value))
}

func formatValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindTime:
		s = v.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		s = v.Duration().String()
	default:
		s = v.String()
	}
	if needsQuoting(s) {
		return strconv.Quote(s)
	}
	return s
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' || r == 0x7f {
			return true
		}
	}
	return false
}

var messageEscaper = strings.NewReplacer("\\", "\\\\", "\n", "\\n", "\r", "\\r", "\t", "\\t")

var messageUnescaper = strings.NewReplacer("\\\\", "\\", "\\n", "\n", "\\r", "\r", "\\t", "\t")

func escapeMessage(msg string) string {
	if !strings.ContainsAny(msg, "\\\n\r\t") {
		return msg
	}
	return messageEscaper.Replace(msg)
}

func unescapeMessage(msg string) string {
	if !strings.Contains(msg, "\\") {
		return msg
	}
	return messageUnescaper.Replace(msg)
}
