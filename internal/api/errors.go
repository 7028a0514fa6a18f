package api

import (
	"errors"
	"net/http"

	"github.com/alexanderramin/dealnotes/internal/intelligence"
	"github.com/alexanderramin/dealnotes/internal/llm"
	"github.com/alexanderramin/dealnotes/internal/repository"
	"github.com/alexanderramin/dealnotes/internal/service"
)

type errorBody struct {
	Error      string          `json:"error"`
	Problems   []string        `json:"problems,omitempty"`
	Attempts   int             `json:"attempts,omitempty"`
	Duplicates []duplicateView `json:"duplicates,omitempty"`
}

// statusFor maps a use-case error onto an HTTP status. Inference causes win
// over the extraction wrapper so a timed-out extraction reads as 504.
func statusFor(err error) int {
	var dup *service.DuplicateClientError
	var verr *intelligence.ValidationError
	switch {
	case errors.As(err, &dup):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrClientInactive), errors.Is(err, service.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, llm.ErrInferenceTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, llm.ErrInference):
		return http.StatusBadGateway
	case errors.Is(err, intelligence.ErrExtractionFailed), errors.Is(err, intelligence.ErrFollowupFailed):
		return http.StatusUnprocessableEntity
	case errors.As(err, &verr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorBodyFor(err error, status int) errorBody {
	body := errorBody{Error: err.Error()}
	if status == http.StatusInternalServerError {
		body.Error = "internal error"
	}

	var dup *service.DuplicateClientError
	var imp *service.ImportError
	var extract *intelligence.ExtractionFailedError
	var followup *intelligence.FollowupFailedError
	var verr *intelligence.ValidationError
	switch {
	case errors.As(err, &dup):
		for _, c := range dup.Candidates {
			body.Duplicates = append(body.Duplicates, newDuplicateView(c))
		}
	case errors.As(err, &imp):
		body.Error = "import validation failed"
		body.Problems = imp.Problems
	case errors.As(err, &extract):
		body.Attempts = extract.Attempts
		body.Problems = extract.LastProblems
	case errors.As(err, &followup):
		body.Attempts = followup.Attempts
		body.Problems = followup.LastProblems
	case errors.As(err, &verr):
		body.Problems = verr.Problems()
	}
	return body
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request_failed", "path", r.URL.Path, "status", status, "error", err)
	}
	respondJSON(w, status, errorBodyFor(err, status))
}
