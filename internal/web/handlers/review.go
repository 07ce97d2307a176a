package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/photo-culler/internal/export"
	"github.com/kozaktomas/photo-culler/internal/expression"
	"github.com/kozaktomas/photo-culler/internal/media"
	"github.com/kozaktomas/photo-culler/internal/pipeline"
	"github.com/kozaktomas/photo-culler/internal/selection"
)

// ReviewHandler serves the groups of one culling run and lets a client
// adjust their selections.
type ReviewHandler struct {
	selector *selection.Manager
	logger   *slog.Logger
	now      func() time.Time

	mu     sync.RWMutex
	result *pipeline.Result
}

// NewReviewHandler creates a handler over a finished run.
func NewReviewHandler(result *pipeline.Result, selector *selection.Manager, logger *slog.Logger) *ReviewHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewHandler{
		selector: selector,
		logger:   logger,
		now:      time.Now,
		result:   result,
	}
}

// SelectionRequest is the body of POST /selection.
type SelectionRequest struct {
	Strategy string `json:"strategy"`
}

// SelectionResponse reports a reapplied strategy.
type SelectionResponse struct {
	Strategy  string        `json:"strategy"`
	Fallbacks int           `json:"fallbacks"`
	Report    export.Report `json:"report"`
}

// StrategyErrorResponse describes a strategy that failed to compile.
type StrategyErrorResponse struct {
	Error    string `json:"error"`
	Position *int   `json:"position,omitempty"`
}

// ListGroups returns the full report of the run.
func (h *ReviewHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	report := h.result.Report(h.now())
	h.mu.RUnlock()

	respondJSON(w, http.StatusOK, report)
}

// GetGroup returns a single group.
func (h *ReviewHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	g, ok := h.groupFromRequest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, export.NewGroupReport(g))
}

// TogglePhoto flips the selection state of one photo in a group.
func (h *ReviewHandler) TogglePhoto(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	g, ok := h.groupFromRequest(w, r)
	if !ok {
		return
	}

	photoIndex, err := strconv.Atoi(chi.URLParam(r, "photo"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid photo index")
		return
	}
	var photo *media.Photo
	for _, p := range g.Photos() {
		if p.Index == photoIndex {
			photo = p
			break
		}
	}
	if photo == nil {
		respondError(w, http.StatusNotFound, "photo not found")
		return
	}

	g.ToggleSelection(photo)
	h.logger.Debug("selection toggled", "group", g.Index, "photo", photo.Name(), "selected", g.IsSelected(photo))
	respondJSON(w, http.StatusOK, export.NewGroupReport(g))
}

// ApplyStrategy reapplies a selection strategy to every group. A strategy
// that does not compile leaves the current selection untouched.
func (h *ReviewHandler) ApplyStrategy(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Strategy == "" {
		respondError(w, http.StatusBadRequest, "strategy is required")
		return
	}

	node, err := h.selector.Compile(req.Strategy)
	if err != nil {
		h.logger.Info("rejected strategy", "strategy", sanitizeForLog(req.Strategy), "error", err)
		resp := StrategyErrorResponse{Error: err.Error()}
		var syntaxErr *expression.SyntaxError
		if errors.As(err, &syntaxErr) {
			resp.Position = &syntaxErr.Pos
		}
		respondJSON(w, http.StatusBadRequest, resp)
		return
	}

	h.mu.Lock()
	fallbacks := h.selector.ApplyNode(node, h.result.Groups)
	h.result.Strategy = req.Strategy
	h.result.StrategyErr = nil
	report := h.result.Report(h.now())
	h.mu.Unlock()

	respondJSON(w, http.StatusOK, SelectionResponse{
		Strategy:  req.Strategy,
		Fallbacks: fallbacks,
		Report:    report,
	})
}

// ListAliases returns the named strategies.
func (h *ReviewHandler) ListAliases(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.selector.Aliases())
}

// groupFromRequest resolves the {index} URL parameter. The caller must hold mu.
func (h *ReviewHandler) groupFromRequest(w http.ResponseWriter, r *http.Request) (*media.Group, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid group index")
		return nil, false
	}
	if index < 0 || index >= len(h.result.Groups) {
		respondError(w, http.StatusNotFound, "group not found")
		return nil, false
	}
	return h.result.Groups[index], true
}
