package clog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/fatih/color"
)

var (
	// ConnectColumns are printed first, in order, for connect access logs.
	ConnectColumns = []string{"method", "stream_type", "procedure", "code"}
	// HTTPColumns are printed first, in order, for chi access logs.
	HTTPColumns = []string{"proto", "method", "path", "status"}
)

type TextHandlerConfig struct {
	Color   bool
	Level   *slog.Level
	Columns []string
}

type TextHandlerOption func(*TextHandlerConfig)

func WithColor(c bool) TextHandlerOption {
	return func(cfg *TextHandlerConfig) {
		cfg.Color = c
	}
}

func WithLevel(level slog.Level) TextHandlerOption {
	return func(cfg *TextHandlerConfig) {
		cfg.Level = &level
	}
}

func WithColumns(columns ...string) TextHandlerOption {
	return func(cfg *TextHandlerConfig) {
		cfg.Columns = columns
	}
}

// TextHandler renders records as one colored headline followed by the
// remaining attributes, one per line, sorted by key. Intended for local
// development; production uses slog.JSONHandler.
type TextHandler struct {
	cfg   TextHandlerConfig
	attrs []slog.Attr
	mu    *sync.Mutex
	w     io.Writer
}

func NewTextHandler(w io.Writer, opts ...TextHandlerOption) *TextHandler {
	cfg := TextHandlerConfig{
		Color:   true,
		Columns: ConnectColumns,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &TextHandler{cfg: cfg, mu: &sync.Mutex{}, w: w}
}

func (h *TextHandler) Enabled(_ context.Context, l slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.cfg.Level != nil {
		minLevel = h.cfg.Level.Level()
	}
	return l >= minLevel
}

func (h *TextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &nh
}

// WithGroup is a no-op; groups are flattened in text output.
func (h *TextHandler) WithGroup(string) slog.Handler {
	return h
}

func (h *TextHandler) Handle(_ context.Context, record slog.Record) error {
	buf := &bytes.Buffer{}
	paint := func(c *color.Color, format string, args ...any) {
		if h.cfg.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		_, _ = c.Fprintf(buf, format, args...)
	}

	paint(color.New(color.Reset), "%s ", record.Time.Format(time.RFC3339))
	paint(levelColor(record.Level), "%s ", record.Level)

	kv := map[string]slog.Value{}
	for _, attr := range h.attrs {
		kv[attr.Key] = attr.Value
	}
	record.Attrs(func(attr slog.Attr) bool {
		kv[attr.Key] = attr.Value
		return true
	})
	for _, key := range h.cfg.Columns {
		if v, ok := kv[key]; ok {
			paint(color.New(color.Reset), "%s ", v)
			delete(kv, key)
		}
	}
	paint(color.New(color.FgGreen), "%q", record.Message)
	if e, ok := kv[ErrorAttributeKey]; ok {
		delete(kv, ErrorAttributeKey)
		paint(color.New(color.FgRed), " %q", e.String())
	}
	buf.WriteString("\n")

	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "    %s=%s\n", k, kv[k])
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func levelColor(l slog.Level) *color.Color {
	switch {
	case l >= slog.LevelError:
		return color.New(color.FgRed)
	case l >= slog.LevelWarn:
		return color.New(color.FgYellow)
	case l >= slog.LevelInfo:
		return color.New(color.FgBlue)
	default:
		return color.New(color.FgCyan)
	}
}
