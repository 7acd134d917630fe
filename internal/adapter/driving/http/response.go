package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/wian47/portfolio/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// UnavailableMessage is the only failure text visitors ever see.
const UnavailableMessage = "Projects are unavailable right now. Please try again later."

// ProjectsResponse is the JSON body of the projects listing.
type ProjectsResponse struct {
	Account   string                       `json:"account"`
	Projects  []model.ProjectDisplayRecord `json:"projects"`
	Total     int                          `json:"total"`
	Stats     model.StatsDisplay           `json:"stats"`
	Languages []model.LanguageCount        `json:"languages"`
}

// UnavailableResponse is the degraded body returned for any catalog failure.
// Failure carries the taxonomy kind for clients; the cause is only logged.
type UnavailableResponse struct {
	Error   string             `json:"error"`
	Failure string             `json:"failure"`
	Stats   model.StatsDisplay `json:"stats"`
}

// LanguagesResponse is the JSON body of the language summary.
type LanguagesResponse struct {
	Languages []model.LanguageCount `json:"languages"`
}

// ImageResponse names the next image a card should try. Exhausted is set once
// the chain has nothing after the global fallback.
type ImageResponse struct {
	Image     string `json:"image"`
	Index     int    `json:"index"`
	Exhausted bool   `json:"exhausted"`
}

// ChatRequest is the JSON body of an assistant turn.
type ChatRequest struct {
	Message string              `json:"message"`
	History []model.ChatMessage `json:"history"`
}

// ChatResponse is the assistant's answer.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ContactRequest is the JSON body of a contact form submission.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ContactResponse confirms delivery.
type ContactResponse struct {
	Status string `json:"status"`
}

// HealthResponse is the JSON representation of the health check.
type HealthResponse struct {
	Status    string `json:"status"`
	Time      string `json:"time"`
	Assistant bool   `json:"assistant"`
	Contact   bool   `json:"contact"`
}

func toUnavailableResponse(err error) UnavailableResponse {
	kind, ok := model.FailureKindOf(err)
	failure := string(kind)
	if !ok {
		failure = "unknown"
	}
	return UnavailableResponse{
		Error:   UnavailableMessage,
		Failure: failure,
		Stats:   model.UnavailableStats(),
	}
}
