// Package audit records one entry per connector operation served over HTTP.
//
// Sinks are best effort: Record logs a sink failure and carries on, so an
// unavailable audit store never fails the operation being audited.
package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/sheetlink/internal/core"
	"github.com/JonMunkholm/sheetlink/internal/logging"
)

// Entry is one audited operation.
type Entry struct {
	ID              uuid.UUID     `json:"id"`
	Operation       string        `json:"operation"`
	ConnectionID    string        `json:"connectionId,omitempty"`
	EntityType      string        `json:"entityType,omitempty"`
	State           core.State    `json:"state"`
	UserExplanation string        `json:"userExplanation,omitempty"`
	TechExplanation string        `json:"techExplanation,omitempty"`
	Code            string        `json:"code,omitempty"`
	ClientIP        string        `json:"clientIp,omitempty"`
	UserAgent       string        `json:"userAgent,omitempty"`
	Duration        time.Duration `json:"duration"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// NewEntry starts an entry for operation at started.
func NewEntry(operation string, started time.Time) Entry {
	return Entry{
		ID:        uuid.New(),
		Operation: operation,
		State:     core.StateOK,
		CreatedAt: started,
	}
}

// Finish copies r into e and sets the duration from CreatedAt to now.
func (e *Entry) Finish(r core.Result, now time.Time) {
	e.State = r.State
	e.UserExplanation = r.UserExplanation
	e.TechExplanation = r.TechExplanation
	e.Code = r.Code
	e.Duration = now.Sub(e.CreatedAt)
}

// Sink stores audit entries.
type Sink interface {
	Record(ctx context.Context, e Entry) error
}

// Lister is a Sink that can return what it stored, newest first.
type Lister interface {
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// Record writes e to s. A failure is logged and swallowed. Client details
// missing from e are taken from ctx.
func Record(ctx context.Context, s Sink, e Entry) {
	if s == nil {
		return
	}
	if e.ClientIP == "" {
		e.ClientIP = ClientIPFromContext(ctx)
	}
	if e.UserAgent == "" {
		e.UserAgent = UserAgentFromContext(ctx)
	}
	if err := s.Record(ctx, e); err != nil {
		logging.FromContext(ctx).Warn("audit record failed",
			"operation", e.Operation, "audit_id", e.ID, "error", err)
	}
}

// SlogSink writes entries to a structured logger.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink returns a sink logging to logger, or to slog.Default when nil.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	return &SlogSink{logger: logger}
}

// Record logs e at Info, or at Warn for an Error state.
func (s *SlogSink) Record(ctx context.Context, e Entry) error {
	logger := s.logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}

	level := slog.LevelInfo
	if e.State == core.StateError {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, "audit",
		"audit_id", e.ID,
		"operation", e.Operation,
		"connection_id", e.ConnectionID,
		"entity_type", e.EntityType,
		"state", e.State,
		"code", e.Code,
		"client_ip", e.ClientIP,
		"user_explanation", e.UserExplanation,
		"duration_ms", e.Duration.Milliseconds(),
	)
	return nil
}

// MultiSink fans an entry out to every sink. All sinks are tried; their
// errors are joined.
type MultiSink []Sink

// Record writes e to every sink.
func (m MultiSink) Record(ctx context.Context, e Entry) error {
	var errs []error
	for _, s := range m {
		if err := s.Record(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recent returns the entries of the first sink that is a Lister.
func (m MultiSink) Recent(ctx context.Context, limit int) ([]Entry, error) {
	for _, s := range m {
		if l, ok := s.(Lister); ok {
			return l.Recent(ctx, limit)
		}
	}
	return []Entry{}, nil
}

// MemorySink keeps the last Capacity entries in memory.
type MemorySink struct {
	mu       sync.Mutex
	capacity int
	entries  []Entry
}

// NewMemorySink returns a sink holding at most capacity entries.
func NewMemorySink(capacity int) *MemorySink {
	if capacity <= 0 {
		capacity = 1000
	}
	return &MemorySink{capacity: capacity}
}

// Record appends e, dropping the oldest entry when full.
func (m *MemorySink) Record(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries) == m.capacity {
		m.entries = append(m.entries[:0], m.entries[1:]...)
	}
	m.entries = append(m.entries, e)
	return nil
}

// Recent returns up to limit entries, newest first. A limit of zero or less
// returns all of them.
func (m *MemorySink) Recent(_ context.Context, limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Entry, 0, n)
	for i := len(m.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}
