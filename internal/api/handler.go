package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eugenenazirov/maxweight/internal/food"
	"github.com/eugenenazirov/maxweight/internal/solver"
	"github.com/eugenenazirov/maxweight/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler wires the catalog store and solvers into HTTP handlers.
type Handler struct {
	storage storage.Storage
	logger  *zap.Logger

	defaultStrategy solver.Strategy
	solverOpts      []solver.Option
	solveTimeout    time.Duration

	clock func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithLogger sets the logger used for internal errors.
func WithLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithDefaultStrategy sets the strategy used when a solve request names none.
func WithDefaultStrategy(strategy solver.Strategy) HandlerOption {
	return func(h *Handler) {
		h.defaultStrategy = strategy
	}
}

// WithSolverOptions forwards options to every solver the handler builds.
func WithSolverOptions(opts ...solver.Option) HandlerOption {
	return func(h *Handler) {
		h.solverOpts = append(h.solverOpts, opts...)
	}
}

// WithSolveTimeout bounds the time a single solve may run. Zero disables it.
func WithSolveTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		h.solveTimeout = d
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		storage:         store,
		logger:          zap.NewNop(),
		defaultStrategy: solver.StrategyGreedy,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}

	catalog, updatedAt, err := h.storage.GetCatalog()
	if err != nil {
		h.writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newCatalogResponse(filter.apply(catalog), updatedAt, ""))
}

func (h *Handler) handlePutCatalog(w http.ResponseWriter, r *http.Request) {
	var req catalogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", fmt.Sprintf("unable to parse JSON payload: %v", err))
		return
	}

	if req.Items == nil {
		writeError(w, http.StatusBadRequest, "Invalid catalog", "items must be provided")
		return
	}

	if err := h.storage.SetCatalog(req.Items); err != nil {
		if errors.Is(err, storage.ErrCatalogTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Invalid catalog", err.Error())
			return
		}
		h.writeInternalError(w, err)
		return
	}

	catalog, updatedAt, err := h.storage.GetCatalog()
	if err != nil {
		h.writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newCatalogResponse(catalog, updatedAt, "Catalog updated successfully"))
}

func (h *Handler) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if req.CalorieBudget == nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "calorieBudget is required")
		return
	}

	strategy := h.defaultStrategy
	if req.Strategy != "" {
		parsed, err := solver.ParseStrategy(req.Strategy)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid strategy", err.Error())
			return
		}
		strategy = parsed
	}

	s, err := solver.New(strategy, h.solverOpts...)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid strategy", err.Error())
		return
	}

	catalog, _, err := h.storage.GetCatalog()
	if err != nil {
		h.writeInternalError(w, err)
		return
	}
	candidates := req.Filter.apply(catalog)

	ctx := r.Context()
	if h.solveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.solveTimeout)
		defer cancel()
	}

	result, err := solver.Run(ctx, s, strategy, candidates, *req.CalorieBudget)
	if err != nil {
		switch {
		case errors.Is(err, solver.ErrTooManyItems):
			suggestion := fmt.Sprintf("Narrow the filter (for example set filter.limit) or use the %q strategy", solver.StrategyGreedy)
			writeError(w, http.StatusUnprocessableEntity, "Catalog too large", err.Error(), suggestion)
		case errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusServiceUnavailable, "Solve timed out", err.Error())
		default:
			h.writeInternalError(w, err)
		}
		return
	}

	items := result.Items
	if items == nil {
		items = food.Catalog{}
	}

	resp := solveResponse{
		SolutionID:        uuid.NewString(),
		Strategy:          string(result.Strategy),
		CalorieBudget:     *req.CalorieBudget,
		Items:             items,
		TotalCalories:     result.TotalCalories,
		TotalWeight:       result.TotalWeight,
		CalculationTimeMs: result.Elapsed.Milliseconds(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeInternalError(w http.ResponseWriter, err error) {
	h.logger.Error("request failed", zap.Error(err))
	writeInternalError(w, err)
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// catalogFilter holds optional Filter bounds; nil means unbounded.
type catalogFilter struct {
	MinWeight *float64 `json:"minWeight,omitempty"`
	MaxWeight *float64 `json:"maxWeight,omitempty"`
	Limit     *int     `json:"limit,omitempty"`
}

func (f catalogFilter) apply(catalog food.Catalog) food.Catalog {
	minWeight, maxWeight, limit := math.Inf(-1), math.Inf(1), len(catalog)
	if f.MinWeight != nil {
		minWeight = *f.MinWeight
	}
	if f.MaxWeight != nil {
		maxWeight = *f.MaxWeight
	}
	if f.Limit != nil {
		limit = *f.Limit
	}
	return catalog.Filter(minWeight, maxWeight, limit)
}

func filterFromQuery(query url.Values) (catalogFilter, error) {
	var f catalogFilter
	for _, bound := range []struct {
		key    string
		target **float64
	}{
		{"minWeight", &f.MinWeight},
		{"maxWeight", &f.MaxWeight},
	} {
		raw := query.Get(bound.key)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(value) {
			return catalogFilter{}, fmt.Errorf("%s must be a number, got %q", bound.key, raw)
		}
		*bound.target = &value
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return catalogFilter{}, fmt.Errorf("limit must be an integer, got %q", raw)
		}
		f.Limit = &limit
	}
	return f, nil
}

type catalogRequest struct {
	Items food.Catalog `json:"items"`
}

type catalogResponse struct {
	Items         food.Catalog `json:"items"`
	Count         int          `json:"count"`
	TotalCalories float64      `json:"totalCalories"`
	TotalWeight   float64      `json:"totalWeight"`
	UpdatedAt     time.Time    `json:"updatedAt"`
	Message       string       `json:"message,omitempty"`
}

func newCatalogResponse(catalog food.Catalog, updatedAt time.Time, message string) catalogResponse {
	if catalog == nil {
		catalog = food.Catalog{}
	}
	calories, weight := catalog.Totals()
	return catalogResponse{
		Items:         catalog,
		Count:         len(catalog),
		TotalCalories: calories,
		TotalWeight:   weight,
		UpdatedAt:     updatedAt,
		Message:       message,
	}
}

type solveRequest struct {
	Strategy      string        `json:"strategy"`
	CalorieBudget *float64      `json:"calorieBudget"`
	Filter        catalogFilter `json:"filter"`
}

type solveResponse struct {
	SolutionID        string       `json:"solutionId"`
	Strategy          string       `json:"strategy"`
	CalorieBudget     float64      `json:"calorieBudget"`
	Items             food.Catalog `json:"items"`
	TotalCalories     float64      `json:"totalCalories"`
	TotalWeight       float64      `json:"totalWeight"`
	CalculationTimeMs int64        `json:"calculationTimeMs"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
