package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// logHandler prints one line per record: "LEVEL: message key=value ...".
// Device traces are noisy, so timestamps are left out.
type logHandler struct {
	out   io.Writer
	level slog.Leveler
	attrs []slog.Attr
	group string
	mu    *sync.Mutex
}

func newLogHandler(out io.Writer, trace bool) *logHandler {
	level := slog.LevelInfo
	if trace {
		level = slog.LevelDebug
	}
	return &logHandler{out: out, level: level, mu: &sync.Mutex{}}
}

func newLogger(out io.Writer, trace bool) *slog.Logger {
	return slog.New(newLogHandler(out, trace))
}

func (h *logHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *logHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = append([]slog.Attr{}, h.attrs...)
	for _, a := range attrs {
		nh.attrs = append(nh.attrs, slog.Attr{Key: h.key(a.Key), Value: a.Value})
	}
	return &nh
}

func (h *logHandler) WithGroup(name string) slog.Handler {
	nh := *h
	if h.group != "" {
		name = h.group + "." + name
	}
	nh.group = name
	return &nh
}

func (h *logHandler) key(k string) string {
	if h.group == "" {
		return k
	}
	return h.group + "." + k
}

func (h *logHandler) Handle(_ context.Context, r slog.Record) error {
	strs := []string{r.Level.String() + ":", r.Message}
	for _, a := range h.attrs {
		strs = append(strs, a.Key+"="+a.Value.String())
	}
	r.Attrs(func(a slog.Attr) bool {
		strs = append(strs, h.key(a.Key)+"="+a.Value.String())
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, strings.Join(strs, " ")+"\n")
	return err
}
