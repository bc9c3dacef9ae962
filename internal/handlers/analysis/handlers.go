// Package analysis exposes the planning engine and the profile store as JSON endpoints.
package analysis

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	apphttp "finplan/internal/http"
	"finplan/internal/logging"
	"finplan/internal/models"
	"finplan/internal/services/finmath"
	"finplan/internal/services/intelligence"
	"finplan/internal/services/montecarlo"
	"finplan/internal/services/scenarios"
	"finplan/internal/services/storage"
	"finplan/internal/version"
)

// Options tunes the handler
type Options struct {
	DefaultIterations int // simulate requests without iterations
	MaxIterations     int
}

// Handler serves the planner API
type Handler struct {
	planner  *intelligence.Orchestrator
	profiles *storage.ProfileStore
	log      *logrus.Entry
	opts     Options
}

// New creates the handler. profiles may be nil, in which case the profile
// endpoints answer 503.
func New(planner *intelligence.Orchestrator, profiles *storage.ProfileStore, log *logrus.Logger, opts Options) *Handler {
	if opts.DefaultIterations <= 0 {
		opts.DefaultIterations = montecarlo.DefaultIterations
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 100_000
	}
	return &Handler{
		planner:  planner,
		profiles: profiles,
		log:      logging.Component(logging.OrDiscard(log), logging.ComponentHTTP),
		opts:     opts,
	}
}

// RegisterRoutes registers the API routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.handleHealth)
		r.Get("/version", h.handleVersion)

		r.Post("/analyze", h.handleAnalyze)
		r.Post("/simulate", h.handleSimulate)
		r.Post("/debts/avalanche", h.handleAvalanche)
		r.Post("/loans/payoff", h.handlePayoff)
		r.Post("/retirement/projection", h.handleRetirement)

		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", h.handleListProfiles)
			r.Put("/{id}", h.handleSaveProfile)
			r.Get("/{id}", h.handleGetProfile)
			r.Delete("/{id}", h.handleDeleteProfile)
			r.Post("/{id}/analyze", h.handleAnalyzeProfile)
			r.Get("/{id}/report", h.handleGetReport)
		})
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	apphttp.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	apphttp.JSON(w, http.StatusOK, version.Get())
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var input models.AnalysisInput
	if !h.decode(w, r, &input) {
		return
	}
	report, err := h.planner.Analyze(r.Context(), input.Goals, input.State, input.Preferences, input.AdvisorData)
	if err != nil {
		h.fail(w, err)
		return
	}
	apphttp.JSON(w, http.StatusOK, report)
}

// SimulateRequest runs one scenario through the Monte Carlo simulator
type SimulateRequest struct {
	ScenarioID  string                 `json:"scenario_id"`
	Goals       []models.Goal          `json:"goals"`
	State       models.FinancialState  `json:"state"`
	Preferences models.UserPreferences `json:"preferences"`
	Iterations  int                    `json:"iterations"`
	Seed        int64                  `json:"seed"`
}

// SimulateResponse echoes the scenario with its result
type SimulateResponse struct {
	Scenario models.Scenario         `json:"scenario"`
	Seed     int64                   `json:"seed"`
	Result   models.SimulationResult `json:"result"`
}

func (h *Handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.ScenarioID == "" {
		req.ScenarioID = scenarios.Balanced
	}
	tmpl, ok := scenarios.Lookup(req.ScenarioID)
	if !ok {
		apphttp.Error(w, http.StatusBadRequest, apphttp.ErrorBody{Error: "unknown scenario " + req.ScenarioID, Reason: "unknown_scenario"})
		return
	}
	if req.Iterations <= 0 {
		req.Iterations = h.opts.DefaultIterations
	}
	if req.Iterations > h.opts.MaxIterations {
		apphttp.ErrorMessage(w, http.StatusBadRequest, "iterations must be at most %d", h.opts.MaxIterations)
		return
	}
	if req.Seed == 0 {
		req.Seed = time.Now().UnixNano()
	}

	scenario := tmpl.Scenario(req.Preferences.RiskTolerance)
	result, err := h.planner.Simulator().Simulate(r.Context(), scenario, req.Goals, req.State.Normalized(),
		req.Iterations, rand.New(rand.NewSource(req.Seed)))
	if err != nil {
		h.fail(w, err)
		return
	}
	apphttp.JSON(w, http.StatusOK, SimulateResponse{Scenario: scenario, Seed: req.Seed, Result: result})
}

func (h *Handler) handleAvalanche(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Debts []models.Debt `json:"debts"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	ordered := finmath.DebtAvalanche(req.Debts)
	if ordered == nil {
		ordered = []finmath.PrioritizedDebt{}
	}
	apphttp.JSON(w, http.StatusOK, map[string]any{"debts": ordered})
}

// PayoffRequest describes a loan and optionally an accelerated payment to compare
type PayoffRequest struct {
	Balance            decimal.Decimal  `json:"balance"`
	Rate               decimal.Decimal  `json:"rate"`
	Payment            decimal.Decimal  `json:"payment"`
	AcceleratedPayment *decimal.Decimal `json:"accelerated_payment,omitempty"`
}

// PayoffResponse holds the payoff summary and, when requested, the comparison
type PayoffResponse struct {
	Payoff     finmath.PayoffSummary     `json:"payoff"`
	Comparison *finmath.PayoffComparison `json:"comparison,omitempty"`
}

func (h *Handler) handlePayoff(w http.ResponseWriter, r *http.Request) {
	var req PayoffRequest
	if !h.decode(w, r, &req) {
		return
	}
	summary, err := finmath.LoanPayoff(req.Balance, req.Rate, req.Payment)
	if err != nil {
		h.fail(w, err)
		return
	}
	resp := PayoffResponse{Payoff: summary}
	if req.AcceleratedPayment != nil {
		cmp, err := finmath.ComparePayoffStrategies(req.Balance, req.Rate, req.Payment, *req.AcceleratedPayment)
		if err != nil {
			h.fail(w, err)
			return
		}
		resp.Comparison = &cmp
	}
	apphttp.JSON(w, http.StatusOK, resp)
}

// RetirementRequest are the inputs of a retirement projection
type RetirementRequest struct {
	CurrentAge          int             `json:"current_age"`
	RetirementAge       int             `json:"retirement_age"`
	Savings             decimal.Decimal `json:"savings"`
	MonthlyContribution decimal.Decimal `json:"monthly_contribution"`
	ExpectedReturn      decimal.Decimal `json:"expected_return"`
}

func (h *Handler) handleRetirement(w http.ResponseWriter, r *http.Request) {
	var req RetirementRequest
	if !h.decode(w, r, &req) {
		return
	}
	outlook, err := finmath.RetirementProjection(req.CurrentAge, req.RetirementAge, req.Savings, req.MonthlyContribution, req.ExpectedReturn)
	if err != nil {
		h.fail(w, err)
		return
	}
	apphttp.JSON(w, http.StatusOK, outlook)
}

func (h *Handler) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	if !h.hasStore(w) {
		return
	}
	ids, err := h.profiles.ListProfiles()
	if err != nil {
		h.fail(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	apphttp.JSON(w, http.StatusOK, map[string]any{"profiles": ids})
}

func (h *Handler) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	if !h.hasStore(w) {
		return
	}
	id := chi.URLParam(r, "id")
	var input models.AnalysisInput
	if !h.decode(w, r, &input) {
		return
	}
	if err := h.profiles.SaveProfile(id, input); err != nil {
		h.fail(w, err)
		return
	}
	h.log.WithField(logging.FieldProfile, id).Info("profile saved")
	apphttp.JSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	if !h.hasStore(w) {
		return
	}
	input, err := h.profiles.LoadProfile(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	apphttp.JSON(w, http.StatusOK, input)
}

func (h *Handler) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	if !h.hasStore(w) {
		return
	}
	if err := h.profiles.DeleteProfile(chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAnalyzeProfile(w http.ResponseWriter, r *http.Request) {
	if !h.hasStore(w) {
		return
	}
	id := chi.URLParam(r, "id")
	input, err := h.profiles.LoadProfile(id)
	if err != nil {
		h.fail(w, err)
		return
	}
	report, err := h.planner.Analyze(r.Context(), input.Goals, input.State, input.Preferences, input.AdvisorData)
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := h.profiles.SaveReport(id, report); err != nil {
		h.log.WithFields(logrus.Fields{
			logging.FieldProfile: id,
			logging.FieldError:   err,
		}).Warn("could not store report")
	}
	apphttp.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if !h.hasStore(w) {
		return
	}
	report, err := h.profiles.LoadReport(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	apphttp.JSON(w, http.StatusOK, report)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := apphttp.DecodeJSON(w, r, v); err != nil {
		apphttp.Error(w, http.StatusBadRequest, apphttp.ErrorBody{Error: err.Error(), Reason: "malformed_json"})
		return false
	}
	return true
}

func (h *Handler) hasStore(w http.ResponseWriter) bool {
	if h.profiles == nil {
		apphttp.ErrorMessage(w, http.StatusServiceUnavailable, "profile store is not configured")
		return false
	}
	return true
}

// fail maps an error to its status code and writes it
func (h *Handler) fail(w http.ResponseWriter, err error) {
	var input *finmath.InputError
	switch {
	case errors.As(err, &input):
		apphttp.Error(w, http.StatusUnprocessableEntity, apphttp.ErrorBody{
			Error:   err.Error(),
			Reason:  string(input.Reason),
			Field:   input.Field,
			Minimum: input.Minimum,
		})
	case errors.Is(err, storage.ErrInvalidProfileID):
		apphttp.Error(w, http.StatusBadRequest, apphttp.ErrorBody{Error: err.Error(), Reason: "invalid_profile_id"})
	case errors.Is(err, storage.ErrProfileNotFound), errors.Is(err, storage.ErrReportNotFound):
		apphttp.Error(w, http.StatusNotFound, apphttp.ErrorBody{Error: err.Error(), Reason: "not_found"})
	case errors.Is(err, storage.ErrLocked):
		apphttp.Error(w, http.StatusLocked, apphttp.ErrorBody{Error: err.Error(), Reason: "locked"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		apphttp.Error(w, http.StatusServiceUnavailable, apphttp.ErrorBody{Error: err.Error(), Reason: "cancelled"})
	default:
		h.internal(w, err)
	}
}

func (h *Handler) internal(w http.ResponseWriter, err error) {
	h.log.WithField(logging.FieldError, err).Error("request failed")
	apphttp.ErrorMessage(w, http.StatusInternalServerError, "internal error")
}
