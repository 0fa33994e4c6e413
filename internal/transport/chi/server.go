package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/genedex/internal/domain"
	"github.com/kailas-cloud/genedex/internal/domain/interval"
	"github.com/kailas-cloud/genedex/internal/domain/query"
	"github.com/kailas-cloud/genedex/internal/domain/result"
	logpkg "github.com/kailas-cloud/genedex/internal/logger"
	geneuc "github.com/kailas-cloud/genedex/internal/usecase/gene"
	healthuc "github.com/kailas-cloud/genedex/internal/usecase/health"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest         = "bad_request"
	CodeUnauthorized       = "unauthorized"
	CodeNotFound           = "not_found"
	CodeCursorExpired      = "cursor_expired"
	CodeBackendUnavailable = "backend_unavailable"
	CodeInternalError      = "internal_error"
)

// ErrorResponse is the JSON body of every non-2xx answer.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// geneService is the consumer interface over usecase/gene.Service.
type geneService interface {
	GetByID(ctx context.Context, id string, opts geneuc.LookupOptions) (result.Lookup, error)
	GetByIDs(ctx context.Context, ids []string, opts geneuc.LookupOptions) ([]result.Lookup, error)
	Search(ctx context.Context, term string, opts geneuc.SearchOptions) (*result.Page, error)
	SearchInterval(ctx context.Context, iv interval.Query, opts geneuc.SearchOptions) (*result.Page, error)
	BuildQuery(term string, opts geneuc.SearchOptions) (query.Body, error)
	Metadata(ctx context.Context, index string) (result.Metadata, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the gene API.
type Server struct {
	genes         geneService
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(genes geneService, health *healthuc.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{genes: genes, health: health, logger: logger}
	s.errorHandlers = []errorHandler{
		invalidInputHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrCursorExpired, http.StatusGone, CodeCursorExpired),
		sentinelHandler(domain.ErrBackendUnavailable, http.StatusServiceUnavailable, CodeBackendUnavailable),
	}
	return s
}

// Mount registers the API routes on r.
func (s *Server) Mount(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/gene/{id}", s.GetGene)
		r.Post("/gene", s.GetGenes)
		r.Get("/query", s.Query)
		r.Get("/interval", s.Interval)
		r.Get("/metadata", s.Metadata)
	})
}

// GetGene handles GET /v1/gene/{id}.
func (s *Server) GetGene(w http.ResponseWriter, r *http.Request) {
	opts, err := lookupOptionsFromQuery(r.URL.Query())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	l, err := s.genes.GetByID(r.Context(), id, opts)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	switch {
	case l.Err != nil:
		writeJSON(w, http.StatusBadRequest, l.Err)
	case !l.Found():
		writeError(w, http.StatusNotFound, CodeNotFound, "gene "+id+" not found")
	default:
		writeJSON(w, http.StatusOK, l)
	}
}

// GetGenes handles POST /v1/gene with a JSON body or form fields.
func (s *Server) GetGenes(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBatchRequest(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	opts, err := req.lookupOptions()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	lookups, err := s.genes.GetByIDs(r.Context(), req.IDs, opts)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, flattenLookups(lookups))
}

// Query handles GET /v1/query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	opts, err := searchOptionsFromQuery(params)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	term := params.Get("q")

	if boolParam(params.Get("rawquery")) {
		body, err := s.genes.BuildQuery(term, opts)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, body)
		return
	}

	page, err := s.genes.Search(r.Context(), term, opts)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writePage(w, page)
}

// Interval handles GET /v1/interval.
func (s *Server) Interval(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	iv, err := interval.FromStrings(params.Get("taxid"), params.Get("chr"), params.Get("start"), params.Get("end"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	opts, err := searchOptionsFromQuery(params)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	page, err := s.genes.SearchInterval(r.Context(), iv, opts)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writePage(w, page)
}

// Metadata handles GET /v1/metadata.
func (s *Server) Metadata(w http.ResponseWriter, r *http.Request) {
	m, err := s.genes.Metadata(r.Context(), r.URL.Query().Get("index"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writePage(w http.ResponseWriter, page *result.Page) {
	if page.Failed() {
		writeJSON(w, http.StatusBadRequest, page)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// flattenLookups renders a batch as one list: a "notfound" marker per
// missing id and every matching document tagged with the id that found it.
func flattenLookups(lookups []result.Lookup) []map[string]any {
	out := make([]map[string]any, 0, len(lookups))
	for _, l := range lookups {
		switch {
		case l.Err != nil:
			out = append(out, map[string]any{"query": l.Query, "error": true, "message": l.Err.Message})
		case !l.Found():
			out = append(out, map[string]any{"query": l.Query, "notfound": true})
		default:
			for _, doc := range l.Docs {
				item := make(map[string]any, len(doc)+1)
				for k, v := range doc {
					item[k] = v
				}
				item["query"] = l.Query
				out = append(out, item)
			}
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrCursorExpired,
		domain.ErrCursorClosed,
		domain.ErrBackendUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// invalidInputHandler reports caller errors with their parameter and reason.
func invalidInputHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, domain.ErrInvalidInput) {
		return false
	}
	var iie *domain.InvalidInputError
	if errors.As(err, &iie) {
		writeError(w, http.StatusBadRequest, CodeBadRequest, iie.Param+": "+iie.Reason)
		return true
	}
	writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logpkg.FromContextOr(r.Context(), s.logger)
	logger.Warn("domain error", zap.String("path", r.URL.Path), zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
