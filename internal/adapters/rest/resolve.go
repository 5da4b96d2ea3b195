package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

// trackRequest is either free text or pre-split fields, never both.
type trackRequest struct {
	Request     string             `json:"request" validate:"required_without=Title,excluded_with=Title,max=500"`
	Title       string             `json:"title" validate:"max=200"`
	Artist      string             `json:"artist" validate:"max=200"`
	Preferences domain.Preferences `json:"preferences"`
}

func (t trackRequest) structured() domain.MusicRequest {
	return domain.NewStructuredRequest(t.Title, t.Artist, t.Preferences)
}

type queriesResponse struct {
	Request domain.MusicRequest `json:"request"`
	Queries []string            `json:"queries"`
}

// Resolve handles POST /resolve
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	h.mu.Lock()
	var (
		res domain.Resolution
		err error
	)
	if req.Request != "" {
		res, err = h.resolver.ResolveText(ctx, req.Request)
	} else {
		res, err = h.resolver.Resolve(ctx, req.structured())
	}
	h.mu.Unlock()

	if err != nil {
		status, code := statusFor(err, res)
		msg := res.Message
		if strings.TrimSpace(msg) == "" {
			msg = err.Error()
		}
		writeJSON(w, status, errorResponse{Error: msg, Code: code, Resolution: res})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Queries handles POST /queries. It never calls the catalog.
func (h *Handler) Queries(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	if req.Request == "" {
		mr := req.structured()
		writeJSON(w, http.StatusOK, queriesResponse{Request: mr, Queries: nonNil(h.resolver.Queries(mr))})
		return
	}

	mr, queries, err := h.resolver.Plan(r.Context(), req.Request)
	if err != nil {
		status, code := http.StatusUnprocessableEntity, codeParseFailed
		if errors.Is(err, domain.ErrEmptyRequest) {
			status, code = http.StatusBadRequest, codeInvalidRequest
		}
		writeError(w, status, code, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, queriesResponse{Request: mr, Queries: nonNil(queries)})
}

func statusFor(err error, res domain.Resolution) (int, string) {
	switch {
	case errors.Is(err, domain.ErrEmptyRequest):
		return http.StatusBadRequest, codeInvalidRequest
	case res.Details.Failure == domain.FailureParse:
		return http.StatusUnprocessableEntity, codeParseFailed
	case errors.Is(err, domain.ErrNoViableMatch):
		return http.StatusUnprocessableEntity, codeNoViableMatch
	case errors.Is(err, domain.ErrQueryExhausted):
		return http.StatusUnprocessableEntity, codeQueryExhausted
	case errors.Is(err, domain.ErrCatalogFatal):
		return http.StatusBadGateway, codeCatalogFatal
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, codeTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, codeCanceled
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

func nonNil(qs []string) []string {
	if qs == nil {
		return []string{}
	}
	return qs
}
