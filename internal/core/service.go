package core

import (
	"context"
	"fmt"

	"hotelcore/pkg/domain"
)

// Service is the hotel state manager. It exposes every guarded state
// transition over a transactional MemoryStore.
type Service struct {
	store   *MemoryStore
	clock   Clock
	logger  Logger
	audit   AuditRecorder
	metrics MetricsRecorder
	tracer  Tracer
}

// NewService constructs a service backed by the supplied store.
func NewService(store *MemoryStore, opts ...ServiceOption) *Service {
	o := defaultServiceOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Service{
		store:   store,
		clock:   o.clock,
		logger:  o.logger,
		audit:   o.audit,
		metrics: o.metrics,
		tracer:  o.tracer,
	}
}

// NewInMemoryService creates a service over a fresh, unpersisted store.
func NewInMemoryService(engine *RulesEngine, opts ...ServiceOption) *Service {
	if engine == nil {
		engine = NewDefaultRulesEngine()
	}
	return NewService(NewMemoryStore(engine), opts...)
}

// OpenService loads the document held by sink and returns a service that
// persists to it after every mutation.
func OpenService(ctx context.Context, sink domain.DocumentStore, opts ...ServiceOption) (*Service, error) {
	store, err := OpenMemoryStore(ctx, sink, NewDefaultRulesEngine())
	if err != nil {
		return nil, err
	}
	return NewService(store, opts...), nil
}

// Store returns the underlying storage implementation.
func (s *Service) Store() *MemoryStore {
	return s.store
}

// mutate runs fn as one transaction and reports it to the tracer, metrics,
// audit and log sinks.
func (s *Service) mutate(ctx context.Context, op, key string, fn func(tx *Transaction) error) error {
	ctx = ContextWithKey(ctx, key)
	ctx, span := s.tracer.Start(ctx, op)
	started := s.clock.Now()

	var (
		txID    string
		changes int
	)
	res, err := s.store.RunInTransaction(ctx, func(tx *Transaction) error {
		txID = tx.ID()
		if err := fn(tx); err != nil {
			return err
		}
		changes = len(tx.changes)
		return nil
	})
	completed := s.clock.Now()

	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, completed.Sub(started))

	for _, v := range res.Violations {
		if v.Severity == SeverityWarn {
			s.logger.Warn("rule warning", "operation", op, "rule", v.Rule, "entity", string(v.Entity), "id", v.EntityID, "message", v.Message)
		}
	}

	entry := AuditEntry{
		ID:          txID,
		Operation:   op,
		Key:         key,
		Status:      AuditStatusSuccess,
		Changes:     changes,
		StartedAt:   started,
		CompletedAt: completed,
	}
	switch {
	case err == nil:
		s.logger.Debug("operation committed", "operation", op, "key", key, "tx", txID, "changes", changes)
	case domain.IsDomainError(err):
		entry.Status = AuditStatusRejected
		entry.Error = err.Error()
		entry.Changes = 0
		s.logger.Info("operation rejected", "operation", op, "key", key, "tx", txID, "error", err)
	default:
		entry.Status = AuditStatusError
		entry.Error = err.Error()
		entry.Changes = 0
		s.logger.Error("operation failed", "operation", op, "key", key, "tx", txID, "error", err)
	}
	s.audit.Record(ctx, entry)
	return err
}

// outcome converts a transaction error into the boolean result of a guarded
// transition. Domain failures become false; anything else is returned.
func outcome(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if domain.IsDomainError(err) {
		return false, nil
	}
	return false, err
}

func precondition(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, domain.ErrPrecondition)...)
}

// normalizeKey validates raw and returns its stored form.
func normalizeKey(raw string) (string, error) {
	if !domain.ValidKey(raw) {
		return "", fmt.Errorf("%q: %w", raw, domain.ErrInvalidKey)
	}
	return domain.NormalizeKey(raw), nil
}
