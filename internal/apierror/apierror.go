// Package apierror defines the domain error taxonomy and the canonical HTTP
// error envelope. Services return these typed errors; handlers translate them
// to status codes in one place so internal details (SQL errors, stack traces)
// never leak to clients.
package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationFields wraps multiple field-level validation errors.
type ValidationFields struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidationFields(fields map[string]string) *ValidationFields {
	return &ValidationFields{Detail: "Error de validacion", Fields: fields}
}

// Kind classifies a domain error for HTTP mapping and retry policy.
type Kind int

const (
	// KindValidacion: malformed input, caller-fixable, never retried.
	KindValidacion Kind = iota
	// KindNoEncontrado: referenced entity does not exist.
	KindNoEncontrado
	// KindStockInsuficiente: a conditional decrement precondition failed.
	KindStockInsuficiente
	// KindEstadoInvalido: operation against an invoice in the wrong state.
	KindEstadoInvalido
	// KindNoAutorizado: actor lacks the required role on the taller.
	KindNoAutorizado
	// KindInterno: unexpected persistence/infrastructure failure.
	KindInterno
)

// Error is the typed domain error returned by services.
type Error struct {
	Kind   Kind
	Detail string
	cause  error
}

func (e *Error) Error() string { return e.Detail }
func (e *Error) Unwrap() error { return e.cause }

// Status maps the error kind to its HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidacion:
		return http.StatusUnprocessableEntity
	case KindNoEncontrado:
		return http.StatusNotFound
	case KindStockInsuficiente, KindEstadoInvalido:
		return http.StatusConflict
	case KindNoAutorizado:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func Validacion(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidacion, Detail: fmt.Sprintf(format, args...)}
}

func NoEncontrado(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNoEncontrado, Detail: fmt.Sprintf(format, args...)}
}

func EstadoInvalido(format string, args ...interface{}) *Error {
	return &Error{Kind: KindEstadoInvalido, Detail: fmt.Sprintf(format, args...)}
}

func NoAutorizado(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNoAutorizado, Detail: fmt.Sprintf(format, args...)}
}

// Interno wraps an unexpected infrastructure error. The cause is preserved
// for logging but the client only ever sees the generic detail.
func Interno(cause error) *Error {
	return &Error{Kind: KindInterno, Detail: "Error interno del servidor", cause: cause}
}

// StockInsuficienteError carries the product and shortfall for diagnostics.
type StockInsuficienteError struct {
	ProductoID uuid.UUID
	Faltante   int
}

func (e *StockInsuficienteError) Error() string {
	if e.Faltante > 0 {
		return fmt.Sprintf("Stock insuficiente para producto %s (faltan %d unidades)", e.ProductoID, e.Faltante)
	}
	return fmt.Sprintf("Stock insuficiente para producto %s", e.ProductoID)
}

// StockInsuficiente builds the typed shortfall error.
func StockInsuficiente(productoID uuid.UUID, faltante int) *Error {
	inner := &StockInsuficienteError{ProductoID: productoID, Faltante: faltante}
	return &Error{Kind: KindStockInsuficiente, Detail: inner.Error(), cause: inner}
}

// IsKind reports whether err is a domain *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == kind
}

// AsError extracts the typed domain error, wrapping unknown errors as Interno
// so the handler layer always has something safe to return.
func AsError(err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return Interno(err)
}
