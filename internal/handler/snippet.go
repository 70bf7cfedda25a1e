// Package handler contains the HTTP layer: request decoding, payload
// validation and the error-to-status translation. All business rules
// live in the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rajnsunny/SnipStash/internal/auth"
	"github.com/rajnsunny/SnipStash/internal/model"
	"github.com/rajnsunny/SnipStash/internal/service"
)

// SnippetHandler serves the /api/snippets endpoints.
type SnippetHandler struct {
	snippets *service.SnippetService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewSnippetHandler creates a SnippetHandler.
func NewSnippetHandler(snippets *service.SnippetService, logger *slog.Logger) *SnippetHandler {
	return &SnippetHandler{
		snippets: snippets,
		validate: validator.New(),
		logger:   logger,
	}
}

// snippetRequest is the JSON body of create and update. The validate
// tags catch shape problems early; the service layer owns the semantic
// rules (language enumeration, tag policy).
type snippetRequest struct {
	Title       string   `json:"title" validate:"required,max=100"`
	Code        string   `json:"code" validate:"required"`
	Language    string   `json:"programmingLanguage" validate:"required"`
	Description string   `json:"description" validate:"max=500"`
	Tags        []string `json:"tags"`
}

func (r snippetRequest) toInput() service.SnippetInput {
	return service.SnippetInput{
		Title:       r.Title,
		Code:        r.Code,
		Language:    model.Language(r.Language),
		Description: r.Description,
		Tags:        r.Tags,
	}
}

// decodeAndValidate decodes the request body into dst and runs the
// validate tags. A false return means the error response was already
// written.
func (h *SnippetHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Warn("invalid JSON body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "request body must be valid JSON",
		})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: validationMessage(err),
		})
		return false
	}
	return true
}

// validationMessage turns the first validator violation into a readable
// message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", fieldName(fe))
		case "max":
			return fmt.Sprintf("%s must be %s characters or less", fieldName(fe), fe.Param())
		case "min":
			return fmt.Sprintf("%s must be at least %s characters", fieldName(fe), fe.Param())
		case "email":
			return fmt.Sprintf("%s must be a valid email address", fieldName(fe))
		}
		return fmt.Sprintf("%s is invalid", fieldName(fe))
	}
	return "invalid request"
}

// fieldName maps a struct field to its JSON name for error messages.
func fieldName(fe validator.FieldError) string {
	switch fe.Field() {
	case "Language":
		return "programmingLanguage"
	default:
		return strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
	}
}

// HandleList returns the caller's full collection, newest first.
//
// GET /api/snippets
func (h *SnippetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	snippets, err := h.snippets.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippets)
}

// HandleSearch filters the caller's collection.
//
// GET /api/snippets/search?query=&programmingLanguage=&tag=
//
// Each parameter is optional; present ones combine with AND. With none
// present the full collection comes back, same as HandleList.
func (h *SnippetHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	q := r.URL.Query()
	criteria := model.Criteria{
		Text:     q.Get("query"),
		Language: model.Language(q.Get("programmingLanguage")),
		Tag:      q.Get("tag"),
	}

	snippets, err := h.snippets.Search(r.Context(), userID, criteria)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippets)
}

// HandleGet returns a single snippet by ID.
//
// GET /api/snippets/{id}
func (h *SnippetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	snippet, err := h.snippets.GetByID(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippet)
}

// HandleCreate saves a new snippet.
//
// POST /api/snippets
func (h *SnippetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req snippetRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	snippet, err := h.snippets.Create(r.Context(), userID, req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snippet)
}

// HandleUpdate replaces a snippet's fields.
//
// PUT /api/snippets/{id}
func (h *SnippetHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req snippetRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	snippet, err := h.snippets.Update(r.Context(), userID, r.PathValue("id"), req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snippet)
}

// HandleDelete removes a snippet.
//
// DELETE /api/snippets/{id}
func (h *SnippetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.snippets.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
