package apperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrLoginRequired   = errors.New("login required")
	ErrAdminRequired   = errors.New("admin session required")
	ErrSoldOut         = errors.New("class is sold out")
	ErrAlreadyReserved = errors.New("class already reserved by this user")
	ErrNotConfirmed    = errors.New("action not confirmed")
	ErrSuperseded      = errors.New("load superseded by a newer request")
)

// NetworkError means the request never got a response from the backend.
type NetworkError struct {
	Op  string // e.g. "GET /api/clases"
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError is a non-2xx response from the backend.
type HTTPError struct {
	Op      string
	Status  int
	Message string // backend "message" field, if any
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Op, e.Status)
}

// ValidationError is malformed local input, such as a missing class id.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func Validation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Status maps an error onto the HTTP status the local API answers with.
func Status(err error) int {
	var (
		verr *ValidationError
		herr *HTTPError
		nerr *NetworkError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, ErrLoginRequired), errors.Is(err, ErrAdminRequired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrSoldOut), errors.Is(err, ErrAlreadyReserved), errors.Is(err, ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, ErrNotConfirmed):
		return http.StatusPreconditionFailed
	case errors.As(err, &herr):
		if herr.Status >= 500 {
			return http.StatusBadGateway
		}
		return herr.Status
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &nerr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage is the text shown to the user for a failed action.
func UserMessage(err error) string {
	var (
		verr *ValidationError
		herr *HTTPError
		nerr *NetworkError
	)
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, ErrLoginRequired):
		return "Debes iniciar sesión"
	case errors.Is(err, ErrAdminRequired):
		return "Se requiere una sesión de administrador"
	case errors.Is(err, ErrSoldOut):
		return "Sin cupo"
	case errors.Is(err, ErrAlreadyReserved):
		return "Ya tienes una reserva pendiente para esta clase"
	case errors.Is(err, ErrNotConfirmed):
		return "Acción no confirmada"
	case errors.Is(err, ErrSuperseded):
		return "La carga fue reemplazada por una más reciente"
	case errors.As(err, &herr):
		if herr.Message != "" {
			return herr.Message
		}
		return fmt.Sprintf("Error %d del servidor", herr.Status)
	case errors.Is(err, context.DeadlineExceeded):
		return "El servidor tardó demasiado en responder"
	case errors.As(err, &nerr):
		return "No se pudo conectar con el servidor"
	default:
		return "Error inesperado"
	}
}
