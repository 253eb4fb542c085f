package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound                     = errors.New("recurso no encontrado")
	ErrInvalidInput                 = errors.New("entrada inválida")
	ErrDuplicate                    = errors.New("recurso duplicado")
	ErrInvalidQuantity              = errors.New("cantidad inválida")
	ErrConversionFactorMismatch     = errors.New("factor de conversión distinto al del producto")
	ErrInsufficientStock            = errors.New("stock insuficiente")
	ErrFractioningNotAllowed        = errors.New("el producto no permite fraccionamiento")
	ErrPresentationNotSellableAsBox = errors.New("la presentación no se puede vender completa")
	ErrConcurrency                  = errors.New("el stock fue modificado por otra operación")
	ErrOutcomeUnknown               = errors.New("resultado de la operación desconocido")
	ErrInternal                     = errors.New("error interno")
)

// Kind clasifica los errores para el mapeo a respuestas.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindState       Kind = "state"
	KindConcurrency Kind = "concurrency"
	KindNotFound    Kind = "not_found"
	KindUnknown     Kind = "outcome_unknown"
	KindInternal    Kind = "internal"
)

// Códigos expuestos a los clientes en {error: {code, message}}.
const (
	CodeValidation                   = "VALIDATION"
	CodeInvalidQuantity              = "INVALID_QUANTITY"
	CodeConversionFactorMismatch     = "CONVERSION_FACTOR_MISMATCH"
	CodeInsufficientStock            = "INSUFFICIENT_STOCK"
	CodeFractioningNotAllowed        = "FRACTIONING_NOT_ALLOWED"
	CodePresentationNotSellableAsBox = "PRESENTATION_NOT_SELLABLE_AS_BOX"
	CodeConcurrency                  = "CONCURRENCY_ERROR"
	CodeOutcomeUnknown               = "OUTCOME_UNKNOWN"
	CodeNotFound                     = "NOT_FOUND"
	CodeInternal                     = "INTERNAL"
)

// Error es un error de dominio con código y mensaje para el usuario.
// Unwrap devuelve el sentinel correspondiente, así errors.Is(err, ErrInsufficientStock) funciona.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// sentinelInfo asocia cada sentinel con su clase y código.
var sentinelInfo = map[error]struct {
	kind Kind
	code string
}{
	ErrNotFound:                     {KindNotFound, CodeNotFound},
	ErrInvalidInput:                 {KindValidation, CodeValidation},
	ErrDuplicate:                    {KindConcurrency, CodeConcurrency},
	ErrInvalidQuantity:              {KindValidation, CodeInvalidQuantity},
	ErrConversionFactorMismatch:     {KindValidation, CodeConversionFactorMismatch},
	ErrInsufficientStock:            {KindState, CodeInsufficientStock},
	ErrFractioningNotAllowed:        {KindState, CodeFractioningNotAllowed},
	ErrPresentationNotSellableAsBox: {KindState, CodePresentationNotSellableAsBox},
	ErrConcurrency:                  {KindConcurrency, CodeConcurrency},
	ErrOutcomeUnknown:               {KindUnknown, CodeOutcomeUnknown},
	ErrInternal:                     {KindInternal, CodeInternal},
}

// NewError construye un *Error a partir de un sentinel con un mensaje específico.
func NewError(sentinel error, format string, args ...any) *Error {
	info, ok := sentinelInfo[sentinel]
	if !ok {
		info.kind, info.code = KindInternal, CodeInternal
	}
	return &Error{Kind: info.kind, Code: info.code, Message: fmt.Sprintf(format, args...), Err: sentinel}
}

// InsufficientUnits indica cuántas unidades hay disponibles (ej. "solo hay 3 unidades disponibles").
func InsufficientUnits(available, requested int) *Error {
	return NewError(ErrInsufficientStock, "solo hay %d unidades disponibles (solicitadas: %d)", available, requested)
}

// InsufficientBoxes indica cuántas cajas completas hay disponibles.
func InsufficientBoxes(available, requested int) *Error {
	return NewError(ErrInsufficientStock, "solo hay %d cajas completas disponibles (solicitadas: %d)", available, requested)
}

// InvalidQuantity rechaza cantidades no positivas, fraccionarias o no finitas.
func InvalidQuantity(format string, args ...any) *Error {
	return NewError(ErrInvalidQuantity, format, args...)
}

// Describe devuelve clase, código y mensaje de cualquier error.
// Errores desconocidos se reportan como INTERNAL.
func Describe(err error) (Kind, string, string) {
	if err == nil {
		return "", "", ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, de.Code, de.Error()
	}
	for sentinel, info := range sentinelInfo {
		if errors.Is(err, sentinel) {
			return info.kind, info.code, sentinel.Error()
		}
	}
	return KindInternal, CodeInternal, ErrInternal.Error()
}
