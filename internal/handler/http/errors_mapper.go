package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-assembly-sync/internal/logger"
	"github.com/MKhiriev/go-assembly-sync/internal/service"
	"github.com/MKhiriev/go-assembly-sync/internal/store"
	"github.com/MKhiriev/go-assembly-sync/internal/utils"
	"github.com/MKhiriev/go-assembly-sync/models"
)

var errorStatusMap = map[error]int{
	ErrInvalidModelID:             http.StatusBadRequest,
	ErrInvalidJSON:                http.StatusBadRequest,
	ErrNoModelRequests:            http.StatusBadRequest,
	ErrEmptyAuthorizationHeader:   http.StatusUnauthorized,
	ErrInvalidAuthorizationHeader: http.StatusUnauthorized,

	models.ErrEmptyCollection:        http.StatusBadRequest,
	models.ErrDuplicateID:            http.StatusBadRequest,
	models.ErrCyclicFields:           http.StatusBadRequest,
	models.ErrInvalidFieldDescriptor: http.StatusBadRequest,
	models.ErrMalformedKey:           http.StatusBadRequest,

	service.ErrInvalidModelKey:         http.StatusBadRequest,
	service.ErrResolveTooDeep:          http.StatusBadRequest,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,
	service.ErrUnknownUser:             http.StatusNotFound,
	service.ErrAuthDisabled:            http.StatusNotFound,
	service.ErrTokenCreationFailed:     http.StatusInternalServerError,

	store.ErrNotFound:             http.StatusNotFound,
	store.ErrInvalidModelData:     http.StatusBadRequest,
	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrExecutingQuery:       http.StatusInternalServerError,
	store.ErrBeginningTransaction: http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
	store.ErrScanningRows:         http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// errorMessage is the error shape of every response and of stream messages:
// {"error": {"type": "...", "msg": "..."}}.
type errorMessage struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Type string `json:"type"`
	Msg  string `json:"msg"`
}

func newErrorMessage(err error) errorMessage {
	status := statusFromError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	return errorMessage{Error: errorDetail{Type: errorType(status), Msg: msg}}
}

func errorType(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid"
	case http.StatusUnauthorized:
		return "auth"
	case http.StatusNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, where string) {
	status := statusFromError(err)
	log := logger.FromRequest(r)
	if status >= http.StatusInternalServerError {
		log.Err(err).Str("func", where).Msg("request failed")
	} else {
		log.Debug().Err(err).Str("func", where).Msg("request rejected")
	}

	if _, writeErr := utils.WriteJSON(w, newErrorMessage(err), status); writeErr != nil {
		log.Err(writeErr).Str("func", where).Msg("failed to write error response")
	}
}
