package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/iwvelando/capacity-forecast/internal/chart"
	"github.com/iwvelando/capacity-forecast/internal/config"
	"github.com/iwvelando/capacity-forecast/internal/forecast"
	"github.com/iwvelando/capacity-forecast/internal/model"
	"github.com/iwvelando/capacity-forecast/internal/scenario"
	"github.com/iwvelando/capacity-forecast/pkg/constants"
	"github.com/iwvelando/capacity-forecast/pkg/datetime"
	"github.com/iwvelando/capacity-forecast/pkg/output"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Handler serves the forecast API.
type Handler struct {
	mux         *http.ServeMux
	logger      *zap.Logger
	maxBodySize int64
	version     string
	projector   *cachedProjector
	charts      *chart.Builder
}

// NewHandler constructs the HTTP handler that serves the forecast API.
// Projections are memoized in a cache holding up to cacheCapacity entries.
func NewHandler(logger *zap.Logger, maxBodySize int64, cacheCapacity int, version string) (*Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}
	if cacheCapacity <= 0 {
		cacheCapacity = constants.DefaultCacheCapacity
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	engine := forecast.NewEngine(logger, model.Default())
	projector, err := newCachedProjector(logger, engine, cacheCapacity)
	if err != nil {
		return nil, err
	}

	h := &Handler{
		mux:         http.NewServeMux(),
		logger:      logger,
		maxBodySize: maxBodySize,
		version:     trimmedVersion,
		projector:   projector,
		charts:      chart.NewBuilder(chart.WithModel(engine.Model())),
	}

	// Forecast API endpoint (file upload)
	h.mux.HandleFunc("/api/forecast", h.handleForecast)

	// Forecast API endpoint for editor-driven updates
	h.mux.HandleFunc("/api/editor/forecast", h.handleForecastEditor)

	// Concurrent projection of many named scenarios
	h.mux.HandleFunc("/api/forecast/batch", h.handleBatch)

	// Standalone SVG rendering of a configuration
	h.mux.HandleFunc("/api/chart", h.handleChart)

	// Config serialization endpoint for editor downloads
	h.mux.HandleFunc("/api/editor/export", h.handleConfigExport)

	h.mux.HandleFunc("/api/version", h.handleVersion)

	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Close releases the projection cache.
func (h *Handler) Close() {
	h.projector.Close()
}

type forecastResponse struct {
	ViewMode   string                 `json:"viewMode"`
	Scenarios  []string               `json:"scenarios"`
	Forecasts  []forecast.Forecast    `json:"forecasts"`
	Delta      *scenario.Delta        `json:"delta,omitempty"`
	Chart      chart.Geometry         `json:"chart"`
	CSV        string                 `json:"csv"`
	Warnings   []string               `json:"warnings,omitempty"`
	Duration   string                 `json:"duration"`
	Cached     bool                   `json:"cached"`
	Config     map[string]interface{} `json:"config,omitempty"`
	ConfigYAML string                 `json:"configYaml,omitempty"`
}

type batchRequest struct {
	StartDate string            `json:"startDate"`
	Scenarios []config.Scenario `json:"scenarios"`
}

type batchResponse struct {
	Results  []scenario.NamedForecast `json:"results"`
	Duration string                   `json:"duration"`
}

func (h *Handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := r.ParseMultipartForm(h.maxBodySize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxBodySize))
			return
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "missing configuration file")
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", "server.handleForecast"),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err))
		return
	}

	configBytes := buf.Bytes()
	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("error reading config data, %v", err))
		return
	}

	h.runForecast(w, configBytes, configMap, start, "server.handleForecast")
}

func (h *Handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *Handler) handleForecastEditor(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleForecastEditor"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	configBytes, configMap, ok := h.decodeEditorConfig(w, r, op)
	if !ok {
		return
	}

	h.runForecast(w, configBytes, configMap, start, op)
}

func (h *Handler) handleChart(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleChart"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	configBytes, _, ok := h.decodeEditorConfig(w, r, op)
	if !ok {
		return
	}

	cfg, start, err := loadRunnable(configBytes)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	in := cfg.Inputs()
	outcome, err := scenario.Run(h.projector, in, start)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	report := output.NewReport(outcome, in.A.Name, in.B.Name)
	geometry := h.charts.Build(in.ViewMode, seriesOf(report)...)

	var svg bytes.Buffer
	if err := chart.RenderSVG(&svg, geometry); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err), op)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(svg.Bytes()); err != nil {
		h.logger.Error("failed to write chart response",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleBatch"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondDecodeError(w, err, op)
		return
	}
	if len(req.Scenarios) == 0 {
		h.respondErrorWithOp(w, http.StatusBadRequest, "at least one scenario is required", op)
		return
	}

	from := datetime.CurrentMonth()
	if req.StartDate != "" {
		parsed, err := datetime.ParseMonth(req.StartDate)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid start date: %v", err), op)
			return
		}
		from = parsed
	}

	inputs := make([]scenario.ScenarioInputs, 0, len(req.Scenarios))
	for i, s := range req.Scenarios {
		inputs = append(inputs, s.ToInputs(fmt.Sprintf("scenario %d", i+1)))
	}

	results, err := scenario.ProjectAll(r.Context(), h.projector, inputs, from, runtime.GOMAXPROCS(0))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, fmt.Sprintf("batch projection aborted: %v", err), op)
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("batch computed",
		zap.String("op", op),
		zap.Int("scenarios", len(results)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, batchResponse{Results: results, Duration: elapsed.String()})
}

func (h *Handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleConfigExport"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondDecodeError(w, err, op)
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	yamlBytes, err := marshalOrderedConfigYAML(payload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

// decodeEditorConfig reads a JSON configuration, optionally wrapped in a
// "config" object, and re-encodes it as YAML for the config loader.
func (h *Handler) decodeEditorConfig(w http.ResponseWriter, r *http.Request, op string) ([]byte, map[string]interface{}, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondDecodeError(w, err, op)
		return nil, nil, false
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	configPayload := payload
	if rawConfig, ok := payload["config"]; ok {
		cfgMap, ok := rawConfig.(map[string]interface{})
		if !ok {
			h.respondErrorWithOp(w, http.StatusBadRequest, "invalid config payload: expected object", op)
			return nil, nil, false
		}
		configPayload = cfgMap
	}

	configBytes, err := yaml.Marshal(configPayload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return nil, nil, false
	}

	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse configuration: %v", err), op)
		return nil, nil, false
	}

	return configBytes, configMap, true
}

var topLevelOrder = []string{"viewMode", "startDate", "scenarios", "logging", "output"}

func marshalOrderedConfigYAML(payload map[string]interface{}) ([]byte, error) {
	items := make([]orderedItem, 0, len(payload))
	seen := make(map[string]struct{})

	for _, key := range topLevelOrder {
		if value, ok := payload[key]; ok {
			items = append(items, orderedItem{key: key, value: value})
			seen[key] = struct{}{}
		}
	}

	remainingKeys := make([]string, 0, len(payload))
	for key := range payload {
		if _, already := seen[key]; already {
			continue
		}
		remainingKeys = append(remainingKeys, key)
	}
	sort.Strings(remainingKeys)
	for _, key := range remainingKeys {
		items = append(items, orderedItem{key: key, value: payload[key]})
	}

	ordered := orderedConfig{items: items}
	return yaml.Marshal(ordered)
}

type orderedConfig struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
}

func (o orderedConfig) MarshalYAML() (interface{}, error) {
	mapNode := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for _, item := range o.items {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: item.key,
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(item.value); err != nil {
			return nil, err
		}
		mapNode.Content = append(mapNode.Content, keyNode, valueNode)
	}

	return mapNode, nil
}

// loadRunnable parses a configuration and resolves its start month.
func loadRunnable(configBytes []byte) (*config.Configuration, datetime.Month, error) {
	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		return nil, datetime.Month{}, err
	}

	start, err := cfg.Start()
	if err != nil {
		return nil, datetime.Month{}, fmt.Errorf("invalid start date: %w", err)
	}
	return cfg, start, nil
}

func (h *Handler) runForecast(w http.ResponseWriter, configBytes []byte, configMap map[string]interface{}, start time.Time, op string) {
	cfg, from, err := loadRunnable(configBytes)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	warnings := cfg.ValidateConfiguration()
	in := cfg.Inputs()

	cached := h.projector.Lookup(in.A.Metrics, in.A.Params, from)
	if in.ViewMode == scenario.Compare {
		cached = cached && h.projector.Lookup(in.B.Metrics, in.B.Params, from)
	}

	outcome, err := scenario.Run(h.projector, in, from)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to compute forecast: %v", err), op)
		return
	}

	report := output.NewReport(outcome, in.A.Name, in.B.Name)
	csvData, err := csvOf(report)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode CSV: %v", err), op)
		return
	}

	elapsed := time.Since(start)

	if configMap == nil {
		configMap = make(map[string]interface{})
	}

	response := forecastResponse{
		ViewMode:   string(in.ViewMode),
		Scenarios:  make([]string, 0, len(report.Results)),
		Forecasts:  make([]forecast.Forecast, 0, len(report.Results)),
		Delta:      report.Delta,
		Chart:      h.charts.Build(in.ViewMode, seriesOf(report)...),
		CSV:        csvData,
		Warnings:   warnings,
		Duration:   elapsed.String(),
		Cached:     cached,
		Config:     configMap,
		ConfigYAML: string(configBytes),
	}
	for _, result := range report.Results {
		response.Scenarios = append(response.Scenarios, result.Name)
		response.Forecasts = append(response.Forecasts, result.Forecast)
	}

	h.logger.Info("forecast computed",
		zap.String("op", op),
		zap.String("viewMode", response.ViewMode),
		zap.Int("scenarios", len(response.Scenarios)),
		zap.Bool("cached", cached),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func seriesOf(report output.Report) []chart.Series {
	series := make([]chart.Series, 0, len(report.Results))
	for _, result := range report.Results {
		series = append(series, chart.SeriesOf(result.Name, result.Forecast))
	}
	return series
}

func csvOf(report output.Report) (string, error) {
	var sb strings.Builder
	if err := output.CsvFormat(&sb, report); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func decodeYAMLToMap(data []byte) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return make(map[string]interface{}), nil
	}

	var result map[string]interface{}
	if err := yaml.Unmarshal(trimmed, &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = make(map[string]interface{})
	}
	return result, nil
}

func (h *Handler) respondDecodeError(w http.ResponseWriter, err error, op string) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
		return
	}
	h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
}

func (h *Handler) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondErrorWithOp(w, status, msg, "server.handleForecast")
}

func (h *Handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("forecast request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
