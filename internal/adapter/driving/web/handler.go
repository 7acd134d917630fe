// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/sync/errgroup"

	"github.com/wian47/portfolio/internal/adapter/driving/web/templates"
	vm "github.com/wian47/portfolio/internal/adapter/driving/web/viewmodel"
	"github.com/wian47/portfolio/internal/application"
	"github.com/wian47/portfolio/internal/domain/model"
	"github.com/wian47/portfolio/internal/domain/port/driven"
)

const maxFormBytes = 64 << 10

// Handler is the web GUI driving adapter that serves HTML via templ components.
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

// Home renders the portfolio page. The catalog and the profile README load
// concurrently; a README failure only hides the about section, a catalog
// failure renders the degraded projects state.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	refresh, _ := strconv.ParseBool(q.Get("refresh"))

	category := strings.ToLower(strings.TrimSpace(q.Get("category")))
	if category != "all" && !model.Category(category).Valid() {
		category = ""
	}

	in := pageInput{
		account:   h.account,
		query:     strings.TrimSpace(q.Get("q")),
		category:  category,
		csrfToken: csrfToken(w, r),
		contact:   h.contact.Available(),
		assistant: h.assistant.Available(),
	}

	var (
		catalog    model.Catalog
		catalogErr error
		readme     string
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		catalog, catalogErr = h.catalog.LoadCatalog(ctx, h.account, refresh)
		return nil
	})
	g.Go(func() error {
		md, err := h.catalog.GetProfileReadme(ctx, h.account)
		if err != nil {
			h.logger.Warn("failed to load profile readme", "account", h.account, "error", err)
			return nil
		}
		readme = md
		return nil
	})
	_ = g.Wait()

	if catalogErr != nil {
		kind, _ := model.FailureKindOf(catalogErr)
		h.logger.Warn("catalog unavailable", "account", h.account, "failure", kind, "error", catalogErr)
	}

	in.catalog, in.catalogErr, in.readme = catalog, catalogErr, readme
	page := toPageViewModel(in)

	h.render(w, r, http.StatusOK, templates.Layout(page.Title, templates.Home(page)))
}

// Contact handles the no-JS and fetch submissions of the contact form and
// answers with a notice fragment.
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.notice(w, r, http.StatusBadRequest, vm.NoticeViewModel{Kind: "error", Message: "The form could not be read."})
		return
	}

	if !validateCSRF(r) {
		h.notice(w, r, http.StatusForbidden, vm.NoticeViewModel{Kind: "error", Message: "Your session expired. Reload the page and try again."})
		return
	}

	err := h.contact.Send(r.Context(), model.ContactMessage{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Message: r.PostFormValue("message"),
	})

	var ve *application.ValidationError
	switch {
	case err == nil:
		h.notice(w, r, http.StatusOK, vm.NoticeViewModel{Kind: "success", Message: "Message sent successfully!"})
	case errors.As(err, &ve):
		h.notice(w, r, http.StatusUnprocessableEntity, vm.NoticeViewModel{Kind: "error", Message: capitalize(ve.Field) + " " + ve.Message + ".", Field: ve.Field})
	case errors.Is(err, driven.ErrRelayUnavailable):
		h.notice(w, r, http.StatusServiceUnavailable, vm.NoticeViewModel{Kind: "error", Message: "The contact form is not available right now."})
	default:
		h.notice(w, r, http.StatusBadGateway, vm.NoticeViewModel{Kind: "error", Message: "Failed to send message. Please try again later."})
	}
}

func (h *Handler) notice(w http.ResponseWriter, r *http.Request, status int, n vm.NoticeViewModel) {
	h.render(w, r, status, templates.Notice(n))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render page", "path", r.URL.Path, "error", err)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
