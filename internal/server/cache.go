package server

import (
	"encoding/json"
	"fmt"

	"github.com/iwvelando/capacity-forecast/internal/forecast"
	"github.com/iwvelando/capacity-forecast/pkg/datetime"
	"github.com/maypok86/otter"
	"go.uber.org/zap"
)

// cachedProjector memoizes projections by their canonical inputs. Projection
// is deterministic, so a hit is indistinguishable from a fresh run.
type cachedProjector struct {
	engine *forecast.Engine
	logger *zap.Logger
	get    func(key string) (forecast.Forecast, bool)
	set    func(key string, value forecast.Forecast)
	close  func()
}

type cacheKey struct {
	Metrics forecast.OperationalMetrics `json:"metrics"`
	Params  forecast.SimulationParams   `json:"params"`
	Start   string                      `json:"start"`
}

func newCachedProjector(logger *zap.Logger, engine *forecast.Engine, capacity int) (*cachedProjector, error) {
	cache, err := otter.MustBuilder[string, forecast.Forecast](capacity).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build forecast cache: %w", err)
	}

	return &cachedProjector{
		engine: engine,
		logger: logger,
		get:    cache.Get,
		set: func(key string, value forecast.Forecast) {
			cache.Set(key, value)
		},
		close: cache.Close,
	}, nil
}

// Project satisfies scenario.Projector.
func (c *cachedProjector) Project(metrics forecast.OperationalMetrics, params forecast.SimulationParams, start datetime.Month) forecast.Forecast {
	start = start.OrCurrent()
	key, err := json.Marshal(cacheKey{Metrics: metrics, Params: params, Start: start.String()})
	if err != nil {
		c.logger.Warn("failed to derive cache key",
			zap.String("op", "server.cachedProjector.Project"),
			zap.Error(err),
		)
		return c.engine.Project(metrics, params, start)
	}

	if cached, ok := c.get(string(key)); ok {
		return cloneForecast(cached)
	}

	result := c.engine.Project(metrics, params, start)
	c.set(string(key), cloneForecast(result))
	return result
}

// Lookup reports whether a projection for the inputs is already cached.
func (c *cachedProjector) Lookup(metrics forecast.OperationalMetrics, params forecast.SimulationParams, start datetime.Month) bool {
	start = start.OrCurrent()
	key, err := json.Marshal(cacheKey{Metrics: metrics, Params: params, Start: start.String()})
	if err != nil {
		return false
	}
	_, ok := c.get(string(key))
	return ok
}

// Close releases the cache's background resources.
func (c *cachedProjector) Close() {
	if c.close != nil {
		c.close()
	}
}

// cloneForecast copies the slices a caller could mutate.
func cloneForecast(f forecast.Forecast) forecast.Forecast {
	out := f
	out.Points = append([]forecast.CapacityPoint(nil), f.Points...)
	if f.SaturationDate != nil {
		date := *f.SaturationDate
		out.SaturationDate = &date
	}
	return out
}
