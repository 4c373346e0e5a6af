package snapshot

import (
	"context"
	"errors"
	"time"

	"github.com/iwvelando/anticrisis-view/internal/metrics"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Source is the backend read port. Implementations perform one request per
// call, or share one request among the readers of a single Assemble call
// through Shared; the assembler never caches or retries.
type Source interface {
	Period(ctx context.Context, orgID, periodID int64) (Period, error)
	Section(ctx context.Context, orgID, periodID int64, kind SectionKind) (Section, error)
	Crisis(ctx context.Context, orgID, periodID int64) (Crisis, error)
}

// FailurePolicy decides how the assembler reacts to the first failed fetch.
type FailurePolicy int

const (
	// FailFast cancels outstanding fetches on the first failure and returns it.
	FailFast FailurePolicy = iota
	// SettleAll lets every fetch finish and returns all failures combined.
	SettleAll
)

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Assembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Recorder) Option {
	return func(a *Assembler) { a.metrics = m }
}

// WithFailurePolicy sets the failure policy.
func WithFailurePolicy(p FailurePolicy) Option {
	return func(a *Assembler) { a.policy = p }
}

// WithFinModel also fetches the optional financial-model section.
func WithFinModel(enabled bool) Option {
	return func(a *Assembler) { a.finModel = enabled }
}

// Assembler builds snapshots from independently fetched parts.
type Assembler struct {
	source   Source
	logger   *zap.Logger
	metrics  *metrics.Recorder
	policy   FailurePolicy
	finModel bool
}

// NewAssembler returns an assembler reading from source.
func NewAssembler(source Source, opts ...Option) *Assembler {
	a := &Assembler{source: source, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble fetches the period, the four sections and the crisis
// classification concurrently and returns a fresh Snapshot once all of them
// have settled. Any failure yields a *FetchError and no snapshot.
func (a *Assembler) Assemble(ctx context.Context, orgID, periodID int64) (*Snapshot, error) {
	if orgID <= 0 {
		return nil, &ValidationError{Field: "organization id", Value: orgID}
	}
	if periodID <= 0 {
		return nil, &ValidationError{Field: "period id", Value: periodID}
	}

	ctx = withScope(ctx)
	start := time.Now()
	logger := a.logger.With(
		zap.String("op", "snapshot.Assemble"),
		zap.Int64("org", orgID),
		zap.Int64("period", periodID),
	)

	var (
		parts    Parts
		crisis   Crisis
		finModel Section
		sections = make([]Section, len(ExportOrder))
	)

	fetches := []func(context.Context) error{
		func(ctx context.Context) error {
			p, err := a.source.Period(ctx, orgID, periodID)
			if err != nil {
				return err
			}
			if p.ID != periodID || (p.OrganizationID != 0 && p.OrganizationID != orgID) {
				return &FetchError{
					Section: PeriodFetch,
					Message: "backend returned a different period than requested",
				}
			}
			if p.OrganizationID == 0 {
				p.OrganizationID = orgID
			}
			parts.Period = p
			return nil
		},
		func(ctx context.Context) error {
			c, err := a.source.Crisis(ctx, orgID, periodID)
			if err != nil {
				return err
			}
			crisis = c
			return nil
		},
	}
	names := []string{PeriodFetch, CrisisFetch}

	for i, kind := range ExportOrder {
		i, kind := i, kind
		fetches = append(fetches, func(ctx context.Context) error {
			s, err := a.source.Section(ctx, orgID, periodID, kind)
			if err != nil {
				return err
			}
			sections[i] = s
			return nil
		})
		names = append(names, kind.String())
	}
	if a.finModel {
		fetches = append(fetches, func(ctx context.Context) error {
			s, err := a.source.Section(ctx, orgID, periodID, FinModel)
			if err != nil {
				return err
			}
			finModel = s
			return nil
		})
		names = append(names, FinModel.String())
	}

	err := a.run(ctx, names, fetches)
	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, context.Canceled) {
			outcome = metrics.OutcomeCanceled
		}
		a.metrics.ObserveAssemble(time.Since(start), outcome)
		logger.Warn("snapshot assembly failed", zap.Error(err))
		return nil, err
	}

	parts.Balance = sections[0]
	parts.IncomeExpense = sections[1]
	parts.CashFlow = sections[2]
	parts.Coefficients = sections[3]
	parts.Crisis = &crisis
	if a.finModel {
		parts.FinModel = &finModel
	}

	snap, err := New(parts)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	a.metrics.ObserveAssemble(elapsed, metrics.OutcomeSuccess)
	logger.Debug("snapshot assembled",
		zap.String("crisis", snap.Crisis.Code),
		zap.Duration("duration", elapsed),
	)
	return snap, nil
}

func (a *Assembler) run(ctx context.Context, names []string, fetches []func(context.Context) error) error {
	if a.policy == SettleAll {
		var g errgroup.Group
		errs := make([]error, len(fetches))
		for i, fetch := range fetches {
			i, fetch := i, fetch
			g.Go(func() error {
				errs[i] = a.observe(names[i], fetch(ctx))
				return nil
			})
		}
		_ = g.Wait()
		return multierr.Combine(errs...)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, fetch := range fetches {
		i, fetch := i, fetch
		g.Go(func() error {
			return a.observe(names[i], fetch(gctx))
		})
	}
	return g.Wait()
}

// observe records the fetch outcome and attributes a failure to its fetch.
// A FetchError that already names its origin keeps it.
func (a *Assembler) observe(name string, err error) error {
	if err == nil {
		a.metrics.ObserveFetch(name, metrics.OutcomeSuccess)
		return nil
	}
	outcome := metrics.OutcomeError
	if errors.Is(err, context.Canceled) {
		outcome = metrics.OutcomeCanceled
	}
	a.metrics.ObserveFetch(name, outcome)
	var fe *FetchError
	if errors.As(err, &fe) && fe.Section != "" {
		return fe
	}
	return AsFetchError(name, err)
}
