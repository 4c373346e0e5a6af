package server

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/iwvelando/anticrisis-view/internal/metrics"
	"github.com/iwvelando/anticrisis-view/internal/snapshot"
	"github.com/iwvelando/anticrisis-view/pkg/chart"
	"github.com/iwvelando/anticrisis-view/pkg/constants"
	"github.com/iwvelando/anticrisis-view/pkg/export"
	"github.com/iwvelando/anticrisis-view/pkg/format"
	"github.com/iwvelando/anticrisis-view/pkg/labels"
	"github.com/iwvelando/anticrisis-view/pkg/validation"
	"go.uber.org/zap"
)

// Dependencies are the collaborators the handler serves from.
type Dependencies struct {
	Builder   snapshot.Builder
	Selection *snapshot.Selection
	Resolver  *labels.Resolver
	Overrides labels.Overrides
	Metrics   *metrics.Recorder
	CSV       export.CSVOptions
}

type handler struct {
	logger  *zap.Logger
	deps    Dependencies
	version string
}

// NewHandler constructs the HTTP handler that serves snapshots, exports and
// operational endpoints.
func NewHandler(logger *zap.Logger, deps Dependencies, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Resolver == nil {
		deps.Resolver = labels.Default()
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, deps: deps, version: trimmedVersion}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", h.handleHealth)
	router.Handle("/metrics", deps.Metrics.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Get("/version", h.handleVersion)
		if deps.Selection != nil {
			r.Get("/selection", h.handleCurrentSelection)
			r.Delete("/selection", h.handleClearSelection)
			r.Put("/selection/orgs/{org}/periods/{period}", h.handleSelect)
		}
		r.Route("/orgs/{org}/periods/{period}", func(r chi.Router) {
			r.Get("/snapshot", h.handleSnapshot)
			r.Get("/export.json", h.handleExportJSON)
			r.Get("/export.csv", h.handleExportCSV)
		})
	})

	return router
}

type snapshotResponse struct {
	Snapshot   *snapshot.Snapshot           `json:"snapshot"`
	Titles     map[string]string            `json:"titles"`
	Labels     map[string]map[string]string `json:"labels"`
	Confidence string                       `json:"confidence"`
	Chart      chart.Feed                   `json:"chart"`
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (h *handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSnapshot"
	s, ok := h.assemble(w, r, op)
	if !ok {
		return
	}
	h.writeSnapshot(w, r, s, op)
}

func (h *handler) writeSnapshot(w http.ResponseWriter, r *http.Request, s *snapshot.Snapshot, op string) {
	resolver, err := h.resolver(r)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, snapshotResponse{
		Snapshot:   s,
		Titles:     sectionTitles(s, resolver),
		Labels:     resolvedLabels(s, resolver),
		Confidence: format.Percent(s.Crisis.Confidence),
		Chart:      chart.Build(s, resolver),
	})
}

// handleSelect makes the pair the current selection. A request overtaken by a
// newer selection answers 409 and leaves the newer result in place.
func (h *handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSelect"
	orgID, periodID, ok := h.pathIDs(w, r, op)
	if !ok {
		return
	}

	s, err := h.deps.Selection.Select(r.Context(), orgID, periodID)
	switch {
	case errors.Is(err, snapshot.ErrStaleSelection):
		h.deps.Metrics.ObserveSelection(metrics.OutcomeStale)
		h.respondErrorWithOp(w, http.StatusConflict, err.Error(), op)
		return
	case err != nil:
		h.deps.Metrics.ObserveSelection(metrics.OutcomeError)
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}
	h.deps.Metrics.ObserveSelection(metrics.OutcomeSuccess)
	h.writeSnapshot(w, r, s, op)
}

func (h *handler) handleCurrentSelection(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCurrentSelection"
	s := h.deps.Selection.Current()
	if s == nil {
		h.respondErrorWithOp(w, http.StatusNotFound, "no period selected", op)
		return
	}
	h.writeSnapshot(w, r, s, op)
}

func (h *handler) handleClearSelection(w http.ResponseWriter, _ *http.Request) {
	h.deps.Selection.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExportJSON"
	s, ok := h.assemble(w, r, op)
	if !ok {
		return
	}
	data, err := export.JSON(s)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	h.deps.Metrics.ObserveExport(constants.OutputFormatJSON)
	h.writeDownload(w, export.JSONFilename(s), constants.ContentTypeJSON, data)
}

func (h *handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExportCSV"
	resolver, err := h.resolver(r)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	opts := h.deps.CSV
	if v := r.URL.Query().Get("finModel"); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, "invalid finModel "+strconv.Quote(v)+": expected true or false", op)
			return
		}
		opts.IncludeFinModel = include
	}
	s, ok := h.assemble(w, r, op)
	if !ok {
		return
	}
	h.deps.Metrics.ObserveExport(constants.OutputFormatCSV)
	h.writeDownload(w, export.CSVFilename(s), constants.ContentTypeCSV, export.CSV(s, resolver, opts))
}

// assemble parses the path ids and builds the snapshot, writing the error
// response itself when that fails.
func (h *handler) assemble(w http.ResponseWriter, r *http.Request, op string) (*snapshot.Snapshot, bool) {
	orgID, periodID, ok := h.pathIDs(w, r, op)
	if !ok {
		return nil, false
	}

	s, err := h.deps.Builder.Assemble(r.Context(), orgID, periodID)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return nil, false
	}
	return s, true
}

func (h *handler) pathIDs(w http.ResponseWriter, r *http.Request, op string) (int64, int64, bool) {
	orgID, err := parseID(chi.URLParam(r, "org"), "organization id")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return 0, 0, false
	}
	periodID, err := parseID(chi.URLParam(r, "period"), "period id")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return 0, 0, false
	}
	return orgID, periodID, true
}

func (h *handler) resolver(r *http.Request) (*labels.Resolver, error) {
	locale := r.URL.Query().Get("locale")
	if locale == "" {
		return h.deps.Resolver, nil
	}
	return labels.New(locale, h.deps.Overrides)
}

func parseID(raw, field string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New("invalid " + field + " " + strconv.Quote(raw))
	}
	if err := validation.ValidateID(field, id); err != nil {
		return 0, err
	}
	return id, nil
}

// statusFor maps assembly errors to HTTP statuses.
func statusFor(err error) int {
	var ve *snapshot.ValidationError
	var fe *snapshot.FetchError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, snapshot.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &fe):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func sectionTitles(s *snapshot.Snapshot, r *labels.Resolver) map[string]string {
	titles := make(map[string]string, len(snapshot.ExportOrder)+1)
	for _, kind := range snapshot.ExportOrder {
		titles[kind.String()] = r.SectionTitle(kind)
	}
	if s.FinModel != nil {
		titles[snapshot.FinModel.String()] = r.SectionTitle(snapshot.FinModel)
	}
	return titles
}

// resolvedLabels returns the label of every key present in the snapshot.
func resolvedLabels(s *snapshot.Snapshot, r *labels.Resolver) map[string]map[string]string {
	out := make(map[string]map[string]string)
	kinds := append([]snapshot.SectionKind(nil), snapshot.ExportOrder...)
	if s.FinModel != nil {
		kinds = append(kinds, snapshot.FinModel)
	}
	for _, kind := range kinds {
		m := make(map[string]string)
		for _, key := range s.Section(kind).Keys() {
			m[key] = r.Resolve(kind, key)
		}
		out[kind.String()] = m
	}
	return out
}

func (h *handler) writeDownload(w http.ResponseWriter, name, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", contentDisposition(name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write download",
			zap.String("op", "server.writeDownload"),
			zap.String("file", name),
			zap.Error(err),
		)
	}
}

// contentDisposition names an attachment with an ASCII filename and, when the
// name is not plain ASCII, the UTF-8 original as an RFC 5987 filename*.
func contentDisposition(name string) string {
	fallback := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, name)
	value := `attachment; filename="` + fallback + `"`
	if fallback == name {
		return value
	}
	extended := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	if i := strings.Index(extended, "filename*="); i >= 0 {
		value += "; " + extended[i:]
	}
	return value
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", constants.ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.String("op", "server.writeJSON"), zap.Error(err))
	}
}
