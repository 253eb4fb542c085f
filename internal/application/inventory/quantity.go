package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/medequipos-api/internal/application/dto"
	"github.com/jhoicas/medequipos-api/internal/domain"
)

// maxQuantity tope de cualquier cantidad recibida (evita desbordes al multiplicar por el factor).
var maxQuantity = decimal.NewFromInt(1_000_000)

// ParseQuantity valida una cantidad estrictamente positiva y entera.
// Rechaza vacíos, texto no numérico, NaN/Infinity, fracciones y ceros.
func ParseQuantity(field string, q dto.Quantity) (int, error) {
	n, err := parseInteger(field, q)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, domain.InvalidQuantity("%s debe ser mayor a cero", field)
	}
	return n, nil
}

// ParseSignedQuantity valida un entero distinto de cero (ajustes).
func ParseSignedQuantity(field string, q dto.Quantity) (int, error) {
	n, err := parseInteger(field, q)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, domain.InvalidQuantity("%s no puede ser cero", field)
	}
	return n, nil
}

func parseInteger(field string, q dto.Quantity) (int, error) {
	raw := q.Raw()
	if raw == "" {
		return 0, domain.InvalidQuantity("%s es requerido", field)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, domain.InvalidQuantity("%s no es un número válido: %q", field, raw)
	}
	if !d.IsInteger() {
		return 0, domain.InvalidQuantity("%s debe ser un número entero: %s", field, raw)
	}
	if d.Abs().GreaterThan(maxQuantity) {
		return 0, domain.InvalidQuantity("%s excede el máximo permitido (%s)", field, maxQuantity)
	}
	return int(d.IntPart()), nil
}
