package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	codeInvalidRequest  = "INVALID_REQUEST"
	codeParseFailed     = "PARSE_FAILED"
	codeNoViableMatch   = "NO_VIABLE_MATCH"
	codeQueryExhausted  = "QUERY_EXHAUSTED"
	codeCatalogFatal    = "CATALOG_FATAL"
	codeTimeout         = "TIMEOUT"
	codeCanceled        = "CANCELED"
	codeNotFound        = "NOT_FOUND"
	codeJournalDisabled = "JOURNAL_DISABLED"
	codeInternal        = "INTERNAL"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	// Resolution carries the diagnostic fields of a failed resolve.
	Resolution any `json:"resolution,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func isJSONContentType(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, codeInvalidRequest, "Content-Type must be application/json")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required_without":
			parts = append(parts, fmt.Sprintf("%s is required when %s is empty", fe.Field(), jsonName(fe.Param())))
		case "excluded_with":
			parts = append(parts, fmt.Sprintf("%s cannot be combined with %s", fe.Field(), jsonName(fe.Param())))
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// jsonName maps a Go field name in a validator param to its json name.
func jsonName(field string) string {
	return strings.ToLower(field)
}
