package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

const termTimeFormat = "01-02|15:04:05.000"

// TerminalHandler formats records as aligned, human-readable lines in the
// geth terminal style:
//
//	INFO [10-18|12:00:00.000] machine halted    module=intcode steps=42
type TerminalHandler struct {
	mu       *sync.Mutex
	wr       io.Writer
	lvl      slog.Level
	useColor bool
	attrs    []slog.Attr
	buf      []byte
}

// NewTerminalHandler returns a handler which formats log records at all levels
// optimized for human readability on a terminal.
func NewTerminalHandler(wr io.Writer, useColor bool) *TerminalHandler {
	return NewTerminalHandlerWithLevel(wr, levelMaxVerbosity, useColor)
}

// NewTerminalHandlerWithLevel returns the same handler as NewTerminalHandler
// but only outputs records which are at or above lvl.
func NewTerminalHandlerWithLevel(wr io.Writer, lvl slog.Level, useColor bool) *TerminalHandler {
	return &TerminalHandler{
		mu:       new(sync.Mutex),
		wr:       wr,
		lvl:      lvl,
		useColor: useColor,
	}
}

func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	buf := h.buf[:0]
	level := LevelAlignedString(r.Level)
	if h.useColor {
		if color := levelColor(r.Level); color != "" {
			level = color + level + "\x1b[0m"
		}
	}
	buf = append(buf, level...)
	buf = append(buf, " ["...)
	buf = r.Time.AppendFormat(buf, termTimeFormat)
	buf = append(buf, "] "...)
	buf = append(buf, r.Message...)
	if pad := 40 - len(r.Message); pad > 0 && (r.NumAttrs() > 0 || len(h.attrs) > 0) {
		buf = append(buf, bytes.Repeat([]byte{' '}, pad)...)
	}
	for _, a := range h.attrs {
		buf = appendAttr(buf, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		buf = appendAttr(buf, a)
		return true
	})
	buf = append(buf, '\n')
	h.buf = buf
	_, err := h.wr.Write(buf)
	return err
}

func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.lvl
}

func (h *TerminalHandler) WithGroup(name string) slog.Handler {
	panic("not implemented")
}

func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TerminalHandler{
		mu:       h.mu,
		wr:       h.wr,
		lvl:      h.lvl,
		useColor: h.useColor,
		attrs:    append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func appendAttr(buf []byte, a slog.Attr) []byte {
	buf = append(buf, ' ')
	buf = append(buf, a.Key...)
	buf = append(buf, '=')
	switch v := a.Value.Resolve(); v.Kind() {
	case slog.KindString:
		s := v.String()
		if s == "" || bytes.ContainsAny([]byte(s), " =\"") {
			return fmt.Appendf(buf, "%q", s)
		}
		return append(buf, s...)
	case slog.KindTime:
		return v.Time().AppendFormat(buf, time.RFC3339)
	default:
		return fmt.Append(buf, v.Any())
	}
}

func levelColor(l slog.Level) string {
	switch l {
	case LevelCrit:
		return "\x1b[35m"
	case slog.LevelError:
		return "\x1b[31m"
	case slog.LevelWarn:
		return "\x1b[33m"
	case slog.LevelInfo:
		return "\x1b[32m"
	case slog.LevelDebug:
		return "\x1b[36m"
	case LevelTrace:
		return "\x1b[34m"
	}
	return ""
}

type discardHandler struct{}

// DiscardHandler returns a no-op handler
func DiscardHandler() slog.Handler {
	return &discardHandler{}
}

func (h *discardHandler) Handle(_ context.Context, r slog.Record) error {
	return nil
}

func (h *discardHandler) Enabled(_ context.Context, level slog.Level) bool {
	return false
}

func (h *discardHandler) WithGroup(name string) slog.Handler {
	panic("not implemented")
}

func (h *discardHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &discardHandler{}
}

// recordingHandler keeps every record as a JSON line regardless of level.
type recordingHandler struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	inner slog.Handler
}

func newRecordingHandler() *recordingHandler {
	h := &recordingHandler{}
	h.inner = slog.NewJSONHandler(&h.buf, &slog.HandlerOptions{
		Level: levelMaxVerbosity,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				return slog.String(slog.LevelKey, LevelString(a.Value.Any().(slog.Level)))
			}
			return a
		},
	})
	return h
}

func (h *recordingHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.inner.Handle(ctx, r)
}

func (h *recordingHandler) Bytes() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]byte(nil), h.buf.Bytes()...)
}
