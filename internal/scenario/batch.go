package scenario

import (
	"context"

	"github.com/iwvelando/capacity-forecast/internal/forecast"
	"github.com/iwvelando/capacity-forecast/pkg/datetime"
	"golang.org/x/sync/errgroup"
)

// NamedForecast pairs a projected forecast with the scenario it came from.
type NamedForecast struct {
	Name     string            `json:"name"`
	Forecast forecast.Forecast `json:"forecast"`
}

// ProjectAll projects every scenario concurrently and returns the results in
// input order. Each projection owns its accumulators, so the only shared
// state is the result slice, written at distinct indices.
func ProjectAll(ctx context.Context, p Projector, inputs []ScenarioInputs, start datetime.Month, limit int) ([]NamedForecast, error) {
	start = start.OrCurrent()
	results := make([]NamedForecast, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = NamedForecast{
				Name:     in.Name,
				Forecast: p.Project(in.Metrics, in.Params, start),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
