package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/mind-engage/bizassess/internal/apperr"
)

const maxBodyBytes = 1 << 20

type errorPayload struct {
	Code      apperr.Code         `json:"code"`
	Message   string              `json:"message"`
	Details   []apperr.FieldError `json:"details,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
	RequestID string              `json:"requestId,omitempty"`
}

// Responder writes JSON bodies and the error envelope.
type Responder struct {
	log          *zap.Logger
	hideInternal bool
}

func NewResponder(log *zap.Logger, hideInternal bool) *Responder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Responder{log: log, hideInternal: hideInternal}
}

func (rs *Responder) JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		rs.log.Debug("write response", zap.Error(err))
	}
}

// Error maps err onto a status code and writes the envelope. Errors outside
// the apperr taxonomy are logged and reported as INTERNAL_SERVER_ERROR.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetReqID(r.Context())
	p := errorPayload{Timestamp: time.Now().UTC(), RequestID: reqID}
	status := http.StatusInternalServerError

	if e, ok := apperr.As(err); ok {
		p.Code, p.Message, p.Details = e.Code, e.Message, e.Details
		status = statusFor(e.Code)
	} else {
		rs.log.Error("request failed",
			zap.String("request_id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		p.Code = apperr.CodeInternal
		p.Message = err.Error()
		if rs.hideInternal {
			p.Message = "Internal server error"
		}
	}
	rs.JSON(w, status, map[string]errorPayload{"error": p})
}

func statusFor(c apperr.Code) int {
	switch c {
	case apperr.CodeInvalid:
		return http.StatusBadRequest
	case apperr.CodeUnauthorized:
		return http.StatusUnauthorized
	case apperr.CodeForbidden:
		return http.StatusForbidden
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeConflict:
		return http.StatusConflict
	case apperr.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body of at most maxBodyBytes into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			return apperr.Invalid("Request body too large")
		case errors.Is(err, io.EOF):
			return apperr.Invalid("Request body required")
		default:
			return apperr.Invalid("Invalid JSON body")
		}
	}
	return nil
}
