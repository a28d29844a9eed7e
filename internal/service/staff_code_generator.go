package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-staff-api/pkg/config"
	appErrors "github.com/noah-isme/sma-staff-api/pkg/errors"
)

type staffCodeStore interface {
	CountWithPrefix(ctx context.Context, prefix string) (int, error)
	Exists(ctx context.Context, code string) (bool, error)
	NextValue(ctx context.Context, scope string, year int, codePrefix string) (int, error)
}

// StaffCodeGeneratorOption customises the generator.
type StaffCodeGeneratorOption func(*StaffCodeGenerator)

// WithCodeClock overrides the clock used to pick the code year.
func WithCodeClock(now func() time.Time) StaffCodeGeneratorOption {
	return func(g *StaffCodeGenerator) {
		if now != nil {
			g.now = now
		}
	}
}

// StaffCodeGenerator issues codes formatted {prefix}-STAFF-{YYYY}-{seq:04d}.
// Uniqueness is ultimately enforced by the staff_code unique constraint; the
// existence re-check here only narrows the race window.
type StaffCodeGenerator struct {
	store      staffCodeStore
	prefix     string
	mode       string
	attempts   int
	retryDelay time.Duration
	now        func() time.Time
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewStaffCodeGenerator constructs a StaffCodeGenerator.
func NewStaffCodeGenerator(store staffCodeStore, cfg config.StaffConfig, metrics *MetricsService, logger *zap.Logger, opts ...StaffCodeGeneratorOption) *StaffCodeGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	prefix := cfg.CodePrefix
	if prefix == "" {
		prefix = "SCH"
	}
	mode := cfg.SequenceMode
	if mode != config.SequenceModeCount {
		mode = config.SequenceModeCounter
	}
	attempts := cfg.CodeAttempts
	if attempts <= 0 {
		attempts = 5
	}
	g := &StaffCodeGenerator{
		store:      store,
		prefix:     prefix,
		mode:       mode,
		attempts:   attempts,
		retryDelay: cfg.CodeRetryDelay,
		now:        time.Now,
		metrics:    metrics,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a staff code that did not exist at the time of the check.
func (g *StaffCodeGenerator) Generate(ctx context.Context) (string, error) {
	year := g.now().Year()
	codePrefix := fmt.Sprintf("%s-STAFF-%d-", g.prefix, year)

	for attempt := 1; attempt <= g.attempts; attempt++ {
		seq, err := g.nextSequence(ctx, year, codePrefix)
		if err != nil {
			g.logger.Error("staff code sequence failed", zap.String("prefix", codePrefix), zap.Int("attempt", attempt), zap.Error(err))
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate staff code")
		}
		code := fmt.Sprintf("%s%04d", codePrefix, seq)

		exists, err := g.store.Exists(ctx, code)
		if err != nil {
			g.logger.Error("staff code existence check failed", zap.String("code", code), zap.Error(err))
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate staff code")
		}
		if !exists {
			g.metrics.RecordCodeGenerated(g.mode)
			return code, nil
		}

		g.metrics.RecordCodeRetry(CodeRetryStageExists)
		g.logger.Debug("staff code taken, retrying", zap.String("code", code), zap.Int("attempt", attempt))
		if attempt < g.attempts {
			if err := sleepContext(ctx, time.Duration(attempt)*g.retryDelay); err != nil {
				return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "staff code generation cancelled")
			}
		}
	}

	g.logger.Warn("staff code generation exhausted", zap.String("prefix", codePrefix), zap.Int("attempts", g.attempts))
	return "", appErrors.Clone(appErrors.ErrGenerationExhausted, fmt.Sprintf("could not generate a unique staff code after %d attempts", g.attempts))
}

func (g *StaffCodeGenerator) nextSequence(ctx context.Context, year int, codePrefix string) (int, error) {
	if g.mode == config.SequenceModeCount {
		count, err := g.store.CountWithPrefix(ctx, codePrefix)
		if err != nil {
			return 0, err
		}
		return count + 1, nil
	}
	return g.store.NextValue(ctx, g.prefix, year, codePrefix)
}
