package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-access-gate/internal/service"
	"github.com/MKhiriev/go-access-gate/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:     http.StatusBadRequest,
	service.ErrPasswordTooWeak:         http.StatusBadRequest,
	service.ErrInvalidCredentials:      http.StatusUnauthorized,
	service.ErrAccountLocked:           http.StatusForbidden,
	service.ErrAccountDisabled:         http.StatusForbidden,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,
	service.ErrResetTokenInvalid:       http.StatusBadRequest,

	store.ErrUsernameTaken:       http.StatusConflict,
	store.ErrEmailTaken:          http.StatusConflict,
	store.ErrUserNotFound:        http.StatusNotFound,
	store.ErrRoleNotFound:        http.StatusNotFound,
	store.ErrRoleSlugTaken:       http.StatusConflict,
	store.ErrRoleInUse:           http.StatusConflict,
	store.ErrRoleIsDefault:       http.StatusConflict,
	store.ErrNoDefaultRole:       http.StatusInternalServerError,
	store.ErrPermissionNotFound:  http.StatusNotFound,
	store.ErrPermissionSlugTaken: http.StatusConflict,
	store.ErrPermissionInUse:     http.StatusConflict,
	store.ErrResetTokenInvalid:   http.StatusBadRequest,

	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrBeginningTransaction: http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
	store.ErrExecutingStatement:   http.StatusInternalServerError,
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

// clientMessage turns a service or store error into the message shown to the
// client. Anything that maps to a 5xx collapses to a generic message so
// internals never leak; known rejections keep their sentinel text, which is
// already written for clients.
func clientMessage(err error) string {
	if statusFromError(err) >= http.StatusInternalServerError {
		return "internal server error"
	}
	for target := range errorStatusMap {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return "internal server error"
}
