package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
)

type compensation struct {
	stage string
	undo  func(ctx context.Context) error
}

// saga runs the stages of one orchestrated operation. Each completed stage
// may register an undo step; on failure the undo steps run in reverse order.
type saga struct {
	stage  string
	undo   []compensation
	logger *slog.Logger
}

// newSaga starts a saga logging to logger, which carries the operation's
// attributes.
func newSaga(logger *slog.Logger) *saga {
	return &saga{logger: logger}
}

// Done records that stage completed. undo may be nil.
func (s *saga) Done(stage string, undo func(ctx context.Context) error) {
	s.stage = stage
	if undo != nil {
		s.undo = append(s.undo, compensation{stage: stage, undo: undo})
	}
	s.logger.Debug("Saga stage completed", slog.String("stage", stage))
}

// OnFail registers an undo step under the current stage.
func (s *saga) OnFail(undo func(ctx context.Context) error) {
	s.undo = append(s.undo, compensation{stage: s.stage, undo: undo})
}

// Stage is the last completed stage.
func (s *saga) Stage() string { return s.stage }

// Fail rolls back every completed stage and returns err annotated with the
// stage the operation failed after. A failed compensation is logged and
// joined to the returned error.
func (s *saga) Fail(ctx context.Context, err error) error {
	// compensations must run even if the caller's context is done
	undoCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	s.logger.Warn("Operation failed, compensating",
		slog.String("failed_after", s.stageOrNone()),
		slog.String("error", err.Error()))

	var undoErrs []error
	for i := len(s.undo) - 1; i >= 0; i-- {
		c := s.undo[i]
		if uerr := c.undo(undoCtx); uerr != nil {
			s.logger.Error("Compensation failed; reconcile and resync the affected resources",
				slog.String("stage", c.stage),
				slog.String("error", uerr.Error()))
			undoErrs = append(undoErrs, uerr)
		}
	}
	s.undo = nil

	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		appErr.With("failed_after", s.stageOrNone())
	}
	if len(undoErrs) > 0 {
		return errors.Join(append([]error{err}, undoErrs...)...)
	}
	return err
}

func (s *saga) stageOrNone() string {
	if s.stage == "" {
		return "none"
	}
	return s.stage
}
