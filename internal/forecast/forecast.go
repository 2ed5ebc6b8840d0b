// Package forecast defines the data structures related to a given forecast and
// includes functions for computing the forecasts.
package forecast

import (
	"context"
	"fmt"
	"sort"

	"github.com/iwvelando/heatpump-forecast/internal/config"
	"github.com/iwvelando/heatpump-forecast/internal/modelcache"
	"github.com/iwvelando/heatpump-forecast/pkg/aid"
	"github.com/iwvelando/heatpump-forecast/pkg/evolution"
	"github.com/iwvelando/heatpump-forecast/pkg/loans"
	"github.com/iwvelando/heatpump-forecast/pkg/profitability"
	"github.com/iwvelando/heatpump-forecast/pkg/projection"
	"go.uber.org/zap"
)

// Model origins beyond those reported by the model cache.
const (
	OriginOverride modelcache.Origin = "override"
	OriginDefault  modelcache.Origin = "default"
)

// ModelProvider resolves fitted models for several energy types.
type ModelProvider interface {
	FitAll(ctx context.Context, energies []evolution.EnergyType) (map[evolution.EnergyType]modelcache.Fit, error)
}

// Forecast holds all information related to a specific forecast.
type Forecast struct {
	Name         string                                     `json:"name"`
	Facts        projection.ProjectFacts                    `json:"facts"`
	CurrentKind  string                                     `json:"currentHeating"`
	Models       projection.Models                          `json:"models"`
	ModelOrigins map[evolution.EnergyType]modelcache.Origin `json:"modelOrigins"`
	CEE          *aid.Result                                `json:"cee,omitempty"`
	Financing    *loans.Summary                             `json:"financing,omitempty"`
	Investment   float64                                    `json:"investment"`
	Projection   projection.Projection                      `json:"projection"`
	Result       profitability.Result                       `json:"result"`
	Warnings     []string                                   `json:"warnings,omitempty"`
}

// Run computes the forecast of the configured project. A nil provider
// means no price history is available and default models are used.
func Run(ctx context.Context, logger *zap.Logger, conf config.Configuration, provider ModelProvider) (Forecast, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	result := Forecast{Name: conf.Project.Name}
	result.Warnings = append(result.Warnings, conf.ValidateConfiguration()...)

	facts, err := conf.Project.ToProjectFacts()
	if err != nil {
		return result, err
	}
	result.CurrentKind = string(facts.Current.Kind())

	models, origins, err := ResolveModels(ctx, logger, conf.Evolution, provider, conf.EnergyTypes())
	if err != nil {
		return result, err
	}
	result.ModelOrigins = origins
	result.Models = projection.SelectModels(models, facts.Current)

	if household, ok := conf.Project.ToHousehold(); ok {
		cee, err := aid.Evaluate(household)
		if err != nil {
			return result, fmt.Errorf("cannot compute aid eligibility: %w", err)
		}
		result.CEE = &cee
		if conf.Project.Investment.Aid == nil && cee.Eligible {
			facts.AidAmount = cee.Amount
		}
		logger.Debug(fmt.Sprintf("CEE category %s, amount %.0f", cee.Category, cee.Amount),
			zap.String("op", "forecast.Run"),
		)
	}

	if facts.Financing != nil {
		summary, err := loans.Summarize(logger, *facts.Financing)
		if err != nil {
			return result, fmt.Errorf("financing: %w", err)
		}
		result.Financing = &summary
	}
	result.Investment = profitability.NetInvestment(facts.InvestmentCost, facts.AidAmount, facts.Financing)
	result.Facts = facts

	projector := projection.NewProjector(logger, conf.Evolution.StartYear)
	result.Projection, err = projector.Project(facts, result.Models)
	if err != nil {
		return result, err
	}
	result.Warnings = append(result.Warnings, result.Projection.Warnings...)

	result.Result = profitability.Calculate(result.Projection.Series, result.Investment, projector.StartYear)

	logger.Info("forecast computed",
		zap.String("op", "forecast.Run"),
		zap.String("project", result.Name),
		zap.Int("years", len(result.Projection.Series)),
		zap.Bool("recovered", result.Result.Recovered()),
	)
	return result, nil
}

// ResolveModels returns a model for every requested energy type: explicit
// overrides first, then the provider, then the built-in defaults.
func ResolveModels(ctx context.Context, logger *zap.Logger, conf config.EvolutionConfig, provider ModelProvider, energies []evolution.EnergyType) (map[evolution.EnergyType]evolution.Model, map[evolution.EnergyType]modelcache.Origin, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	overrides, err := conf.ModelOverrides()
	if err != nil {
		return nil, nil, err
	}

	models := make(map[evolution.EnergyType]evolution.Model, len(energies))
	origins := make(map[evolution.EnergyType]modelcache.Origin, len(energies))

	var pending []evolution.EnergyType
	for _, energy := range energies {
		if model, ok := overrides[energy]; ok {
			models[energy] = model
			origins[energy] = OriginOverride
			continue
		}
		pending = append(pending, energy)
	}

	if len(pending) > 0 && provider != nil {
		fits, err := provider.FitAll(ctx, pending)
		if err != nil {
			return nil, nil, err
		}
		for energy, fit := range fits {
			models[energy] = fit.Model
			origins[energy] = fit.Origin
		}
	}

	defaults := evolution.DefaultModels()
	for _, energy := range pending {
		if _, ok := models[energy]; ok {
			continue
		}
		models[energy] = defaults[energy]
		origins[energy] = OriginDefault
	}

	names := make([]string, 0, len(origins))
	for energy, origin := range origins {
		names = append(names, fmt.Sprintf("%s=%s", energy, origin))
	}
	sort.Strings(names)
	logger.Debug(fmt.Sprintf("resolved models %v", names),
		zap.String("op", "forecast.ResolveModels"),
	)
	return models, origins, nil
}
