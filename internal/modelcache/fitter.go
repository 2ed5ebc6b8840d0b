package modelcache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/iwvelando/heatpump-forecast/pkg/constants"
	"github.com/iwvelando/heatpump-forecast/pkg/evolution"
	"github.com/iwvelando/heatpump-forecast/pkg/history"
	"github.com/iwvelando/heatpump-forecast/pkg/pricehistory"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Origin tells where a model came from.
type Origin string

const (
	OriginCache Origin = "cache"
	OriginFit   Origin = "fit"
	OriginStale Origin = "stale"
)

// Fit is a model together with its provenance.
type Fit struct {
	Energy   evolution.EnergyType `json:"energy"`
	Model    evolution.Model      `json:"model"`
	FittedAt time.Time            `json:"fittedAt"`
	Origin   Origin               `json:"origin"`
}

// Fitter serves models from a store and refits them from a price source
// once they are older than the freshness window.
type Fitter struct {
	logger    *zap.Logger
	source    pricehistory.Source
	store     Store
	freshness time.Duration
	now       func() time.Time
	// parallelism bounds FitAll; 0 means one goroutine per energy type.
	parallelism int
}

// NewFitter returns a fitter. A nil store disables caching.
func NewFitter(logger *zap.Logger, source pricehistory.Source, store Store, freshness time.Duration) *Fitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = NopStore{}
	}
	if freshness <= 0 {
		freshness = constants.DefaultModelFreshness
	}
	return &Fitter{
		logger:    logger,
		source:    source,
		store:     store,
		freshness: freshness,
		now:       time.Now,
	}
}

// SetParallelism bounds the number of concurrent fits in FitAll.
func (f *Fitter) SetParallelism(n int) {
	f.parallelism = n
}

// Model returns a fresh model for energy. When refitting fails and a stale
// entry exists, the stale model is returned and the failure is logged.
func (f *Fitter) Model(ctx context.Context, energy evolution.EnergyType) (Fit, error) {
	cached, found, err := f.store.Get(ctx, energy)
	if err != nil {
		f.logger.Warn("model cache read failed, refitting",
			zap.String("op", "modelcache.Model"),
			zap.String("energy", string(energy)),
			zap.Error(err),
		)
		found = false
	}

	now := f.now()
	if found && now.Sub(cached.FittedAt) < f.freshness {
		return Fit{Energy: energy, Model: cached.Model, FittedAt: cached.FittedAt, Origin: OriginCache}, nil
	}

	model, fitErr := f.fit(ctx, energy)
	if fitErr != nil {
		if found {
			f.logger.Warn(fmt.Sprintf("refit of %s failed, using model fitted %s", energy, cached.FittedAt.Format(time.RFC3339)),
				zap.String("op", "modelcache.Model"),
				zap.String("energy", string(energy)),
				zap.Bool("alert", true),
				zap.Error(fitErr),
			)
			return Fit{Energy: energy, Model: cached.Model, FittedAt: cached.FittedAt, Origin: OriginStale}, nil
		}
		return Fit{}, fitErr
	}

	entry := Entry{Model: model, FittedAt: now}
	if err := f.store.Set(ctx, energy, entry); err != nil {
		f.logger.Warn("model cache write failed",
			zap.String("op", "modelcache.Model"),
			zap.String("energy", string(energy)),
			zap.Error(err),
		)
	}

	f.logger.Debug(fmt.Sprintf("fitted %s: recent %.2f%%, equilibrium %.2f%%", energy, model.RecentRate, model.EquilibriumRate),
		zap.String("op", "modelcache.Model"),
	)
	return Fit{Energy: energy, Model: model, FittedAt: now, Origin: OriginFit}, nil
}

func (f *Fitter) fit(ctx context.Context, energy evolution.EnergyType) (evolution.Model, error) {
	if f.source == nil {
		return evolution.Model{}, fmt.Errorf("no price history source for %s", energy)
	}
	series, err := f.source.Fetch(ctx, energy)
	if err != nil {
		return evolution.Model{}, fmt.Errorf("failed to fetch %s price history: %w", energy, err)
	}
	model, err := history.Analyze(series, energy)
	if err != nil {
		return evolution.Model{}, fmt.Errorf("%s: %w", energy, err)
	}
	return model, nil
}

// FitAll resolves several energy types concurrently. Each type is resolved
// independently; successes are returned even when others fail, and the
// failures are joined into the returned error.
func (f *Fitter) FitAll(ctx context.Context, energies []evolution.EnergyType) (map[evolution.EnergyType]Fit, error) {
	fits := make([]Fit, len(energies))
	errs := make([]error, len(energies))

	var g errgroup.Group
	if f.parallelism > 0 {
		g.SetLimit(f.parallelism)
	}
	for i, energy := range energies {
		i, energy := i, energy
		g.Go(func() error {
			fits[i], errs[i] = f.Model(ctx, energy)
			return nil
		})
	}
	_ = g.Wait()

	results := make(map[evolution.EnergyType]Fit, len(energies))
	var failures []error
	for i, energy := range energies {
		if errs[i] != nil {
			failures = append(failures, errs[i])
			continue
		}
		results[energy] = fits[i]
	}
	sort.Slice(failures, func(i, j int) bool { return failures[i].Error() < failures[j].Error() })
	return results, errors.Join(failures...)
}
