package dlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
)

type color int

const (
	timeFormat = "[2006-01-02 15:04:05.000]"

	reset = "\033[0m"

	cyan         color = 36
	lightGray    color = 37
	lightRed     color = 91
	lightYellow  color = 93
	lightMagenta color = 95
	white        color = 97
	green        color = 32
)

func colorize(c color, v string) string {
	return fmt.Sprintf("\033[%dm%s%s", int(c), v, reset)
}

// PrettyHandler renders records as a colored one-liner followed by the
// attrs as indented JSON, the shape the rest of the handlers keep in
// machine form.
type PrettyHandler struct {
	inner slog.Handler
	buf   *bytes.Buffer
	mu    *sync.Mutex
	out   io.Writer
}

func NewPrettyHandler(out io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	buf := &bytes.Buffer{}
	return &PrettyHandler{
		inner: slog.NewJSONHandler(buf, &slog.HandlerOptions{
			Level:     opts.Level,
			AddSource: opts.AddSource,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				switch a.Key {
				case slog.TimeKey, slog.LevelKey, slog.MessageKey:
					return slog.Attr{}
				}
				return a
			},
		}),
		buf: buf,
		mu:  &sync.Mutex{},
		out: out,
	}
}

func (h *PrettyHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &PrettyHandler{inner: h.inner.WithAttrs(attrs), buf: h.buf, mu: h.mu, out: h.out}
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	return &PrettyHandler{inner: h.inner.WithGroup(name), buf: h.buf, mu: h.mu, out: h.out}
}

func (h *PrettyHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs, err := h.computeAttrs(ctx, r)
	if err != nil {
		return err
	}

	level := r.Level.String() + ":"
	switch {
	case r.Level <= slog.LevelDebug:
		level = colorize(lightGray, level)
	case r.Level <= slog.LevelInfo:
		level = colorize(cyan, level)
	case r.Level < slog.LevelError:
		level = colorize(lightYellow, level)
	case r.Level <= slog.LevelError:
		level = colorize(lightRed, level)
	default:
		level = colorize(lightMagenta, level)
	}

	var file string
	if source, ok := attrs["source"].(map[string]any); ok {
		if name, ok := source["file"].(string); ok {
			line, _ := source["line"].(float64)
			file = name + ":" + strconv.Itoa(int(line))
		}
		delete(attrs, "source")
	}

	out := strings.Builder{}
	out.WriteString(colorize(lightGray, r.Time.Format(timeFormat)))
	out.WriteString(" ")
	out.WriteString(level)
	out.WriteString(" ")
	if file != "" {
		out.WriteString(file)
		out.WriteString(" ")
	}
	out.WriteString(colorize(white, r.Message))
	if len(attrs) > 0 {
		encoded, err := json.MarshalIndent(attrs, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling attrs: %w", err)
		}
		out.WriteString(" ")
		out.WriteString(colorize(green, string(encoded)))
	}
	out.WriteString("\n")

	_, err = io.WriteString(h.out, out.String())
	return err
}

func (h *PrettyHandler) computeAttrs(ctx context.Context, r slog.Record) (map[string]any, error) {
	h.mu.Lock()
	defer func() {
		h.buf.Reset()
		h.mu.Unlock()
	}()
	if err := h.inner.Handle(ctx, r); err != nil {
		return nil, fmt.Errorf("inner handler: %w", err)
	}
	var attrs map[string]any
	if err := json.Unmarshal(h.buf.Bytes(), &attrs); err != nil {
		return nil, fmt.Errorf("unmarshaling inner handler output: %w", err)
	}
	return attrs, nil
}
