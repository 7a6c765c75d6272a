package slogobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/leofalp/chatbridge/providers/observability"
)

// Observer implements observability.Provider on top of a slog.Logger.
type Observer struct {
	logger *slog.Logger
}

var _ observability.Provider = (*Observer)(nil)

// New returns an Observer writing to logger, or to slog.Default when
// logger is nil.
func New(logger *slog.Logger) *Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Observer{logger: logger}
}

// Logger returns the underlying logger.
func (o *Observer) Logger() *slog.Logger {
	return o.logger
}

// StartSpan opens a span that logs nothing until it ends. Events are
// logged at TRACE as they happen.
func (o *Observer) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	return ctx, &span{
		ctx:    context.WithoutCancel(ctx),
		name:   name,
		start:  time.Now(),
		logger: o.logger,
		attrs:  attrs,
	}
}

func (o *Observer) Trace(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, LevelTrace, msg, attrs...)
}

func (o *Observer) Debug(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, slog.LevelDebug, msg, attrs...)
}

func (o *Observer) Info(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (o *Observer) Warn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
}

func (o *Observer) Error(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

// span collects attributes and writes a single "span ended" record. Spans
// with an error status end at WARN so a failed provider request is visible
// at the default level; the rest end at DEBUG.
type span struct {
	ctx    context.Context
	name   string
	start  time.Time
	logger *slog.Logger

	mu     sync.Mutex
	attrs  []observability.Attribute
	status observability.StatusCode
	events int
	ended  bool
}

func (s *span) End() {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true

	level := slog.LevelDebug
	if s.status == observability.StatusError {
		level = slog.LevelWarn
	}
	attrs := append([]slog.Attr{
		slog.String("span", s.name),
		slog.String(observability.AttrStatus, s.status.String()),
		slog.Duration(observability.AttrDuration, time.Since(s.start)),
	}, s.attrs...)
	if s.events > 0 {
		attrs = append(attrs, slog.Int("events", s.events))
	}
	s.mu.Unlock()

	s.logger.LogAttrs(s.ctx, level, "Span ended", attrs...)
}

// SetAttributes adds attrs, replacing earlier values with the same key.
func (s *span) SetAttributes(attrs ...observability.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, attr := range attrs {
		s.set(attr)
	}
}

func (s *span) SetStatus(code observability.StatusCode, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = code
	if description != "" {
		s.set(observability.String(observability.AttrStatusDescription, description))
	}
}

// RecordError attaches err to the span record. It is not logged on its own;
// the caller logs the failure with its own context.
func (s *span) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(observability.Error(err))
}

func (s *span) AddEvent(name string, attrs ...observability.Attribute) {
	s.mu.Lock()
	s.events++
	s.mu.Unlock()

	s.logger.LogAttrs(s.ctx, LevelTrace, name, append([]slog.Attr{slog.String("span", s.name)}, attrs...)...)
}

func (s *span) set(attr observability.Attribute) {
	for i := range s.attrs {
		if s.attrs[i].Key == attr.Key {
			s.attrs[i] = attr
			return
		}
	}
	s.attrs = append(s.attrs, attr)
}
