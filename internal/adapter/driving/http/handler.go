// Package httphandler implements the JSON API driving adapter.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wian47/portfolio/internal/application"
	"github.com/wian47/portfolio/internal/domain/model"
	"github.com/wian47/portfolio/internal/domain/port/driven"
)

// maxBodyBytes bounds chat and contact request bodies.
const maxBodyBytes = 64 << 10

// errNotJSON rejects request bodies not declared as application/json. Such
// bodies can be sent cross-site without a CORS preflight.
var errNotJSON = errors.New("content type must be application/json")

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	catalog   *application.CatalogService
	assistant *application.AssistantService
	contact   *application.ContactService
	account   string
	logger    *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	catalog *application.CatalogService,
	assistant *application.AssistantService,
	contact *application.ContactService,
	account string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		catalog:   catalog,
		assistant: assistant,
		contact:   contact,
		account:   account,
		logger:    logger,
	}
}

// RegisterAPIRoutes registers every /api/v1 route on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/projects", h.ListProjects)
	mux.HandleFunc("GET /api/v1/projects/{id}/image", h.ProjectImage)
	mux.HandleFunc("GET /api/v1/stats", h.GetStats)
	mux.HandleFunc("GET /api/v1/languages", h.ListLanguages)
	mux.HandleFunc("POST /api/v1/chat", h.Chat)
	mux.HandleFunc("POST /api/v1/contact", h.Contact)
	mux.HandleFunc("GET /api/v1/health", h.Health)
}

// NewServeMux creates an http.Handler serving only the API, wrapped with
// logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	RegisterAPIRoutes(mux, h)
	return ApplyMiddleware(mux, logger)
}

// ListProjects returns the normalized catalog, optionally filtered by the q
// and category query parameters. refresh=true bypasses the cache.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	refresh, err := parseBoolParam(q.Get("refresh"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid refresh parameter")
		return
	}

	category := strings.ToLower(strings.TrimSpace(q.Get("category")))
	if category != "" && category != "all" && !model.Category(category).Valid() {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}

	catalog, err := h.catalog.LoadCatalog(r.Context(), h.account, refresh)
	if err != nil {
		h.unavailable(w, "failed to load catalog", err)
		return
	}

	writeJSON(w, http.StatusOK, ProjectsResponse{
		Account:   catalog.Account,
		Projects:  application.FilterProjects(catalog.Projects, q.Get("q"), category),
		Total:     len(catalog.Projects),
		Stats:     catalog.Stats.Display(),
		Languages: catalog.Languages,
	})
}

// GetStats returns the counters, or placeholder dashes with 503 when the
// repository list cannot be loaded.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.catalog.GetStats(r.Context(), h.account)
	if err != nil {
		h.unavailable(w, "failed to load stats", err)
		return
	}

	writeJSON(w, http.StatusOK, stats.Display())
}

// ListLanguages returns repository counts per primary language.
func (h *Handler) ListLanguages(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.catalog.LoadCatalog(r.Context(), h.account, false)
	if err != nil {
		h.unavailable(w, "failed to load languages", err)
		return
	}

	writeJSON(w, http.StatusOK, LanguagesResponse{Languages: catalog.Languages})
}

// ProjectImage answers which image a card should show once the candidate at
// the "failed" index could not be loaded. Without the parameter it returns the
// first candidate.
func (h *Handler) ProjectImage(w http.ResponseWriter, r *http.Request) {
	failed := -1
	if v := r.URL.Query().Get("failed"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid failed index")
			return
		}
		failed = n
	}

	project, ok, err := h.catalog.FindProject(r.Context(), h.account, r.PathValue("id"))
	if err != nil {
		h.unavailable(w, "failed to load project", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}

	image, more := application.NextImageCandidate(project.ImageCandidates, failed)
	index := failed + 1
	if !more {
		index = len(project.ImageCandidates) - 1
	}

	writeJSON(w, http.StatusOK, ImageResponse{
		Image:     image,
		Index:     index,
		Exhausted: !more,
	})
}

// Chat answers one assistant turn.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !h.readBody(w, r, &req) {
		return
	}

	history := make([]model.ChatMessage, 0, len(req.History))
	for _, m := range req.History {
		if m.Role == model.ChatRoleUser || m.Role == model.ChatRoleModel {
			history = append(history, m)
		}
	}

	reply, err := h.assistant.Reply(r.Context(), history, req.Message)
	if err != nil {
		if errors.Is(err, application.ErrEmptyMessage) {
			writeError(w, http.StatusBadRequest, "message must not be empty")
			return
		}
		h.logger.Error("chat failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}

// Contact validates and relays a contact form submission. The request must
// carry the page's CSRF cookie and echo it in the X-CSRF-Token header.
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	if !isJSON(r) {
		writeError(w, http.StatusUnsupportedMediaType, errNotJSON.Error())
		return
	}
	if !validCSRFHeader(r) {
		writeError(w, http.StatusForbidden, "invalid CSRF token")
		return
	}

	var req ContactRequest
	if !h.readBody(w, r, &req) {
		return
	}

	err := h.contact.Send(r.Context(), model.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})

	var ve *application.ValidationError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, ContactResponse{Status: "sent"})
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: ve.Error(), Field: ve.Field})
	case errors.Is(err, driven.ErrRelayUnavailable):
		writeError(w, http.StatusServiceUnavailable, "contact form is not configured")
	default:
		writeError(w, http.StatusBadGateway, "failed to send message, please try again later")
	}
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Time:      time.Now().UTC().Format(time.RFC3339),
		Assistant: h.assistant.Available(),
		Contact:   h.contact.Available(),
	})
}

// unavailable logs the specific failure and writes the uniform degraded body.
func (h *Handler) unavailable(w http.ResponseWriter, msg string, err error) {
	if errors.Is(err, model.ErrInvalidAccount) {
		h.logger.Error(msg, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := toUnavailableResponse(err)
	attrs := []any{"account", h.account, "failure", resp.Failure, "error", err}
	var fe *model.FetchError
	if errors.As(err, &fe) && fe.Kind == model.FailureHTTP {
		attrs = append(attrs, "status", fe.StatusCode)
	}
	h.logger.Warn(msg, attrs...)

	writeJSON(w, http.StatusServiceUnavailable, resp)
}

// readBody decodes a JSON request body into v, writing 415 or 400 and
// returning false when it cannot.
func (h *Handler) readBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := decodeBody(w, r, v); err != nil {
		if errors.Is(err, errNotJSON) {
			writeError(w, http.StatusUnsupportedMediaType, err.Error())
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	if !isJSON(r) {
		return errNotJSON
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func parseBoolParam(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}
