package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Quantity conserva el texto crudo de una cantidad recibida como número o como string
// ("3", 3, "3.0") para validarla estrictamente en el caso de uso.
type Quantity struct {
	raw string
}

// QuantityOf construye una cantidad desde un entero.
func QuantityOf(n int) Quantity { return Quantity{raw: strconv.Itoa(n)} }

// QuantityFrom construye una cantidad desde texto (ej. una celda CSV).
func QuantityFrom(s string) Quantity { return Quantity{raw: strings.TrimSpace(s)} }

// Raw devuelve el texto recibido ("" si no vino).
func (q Quantity) Raw() string { return q.raw }

// UnmarshalJSON acepta números y strings; null deja la cantidad vacía.
func (q *Quantity) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		q.raw = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		q.raw = strings.TrimSpace(s)
		return nil
	}
	q.raw = string(b)
	return nil
}

// MarshalJSON escribe la cantidad como número si lo es, si no como string.
func (q Quantity) MarshalJSON() ([]byte, error) {
	if q.raw == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseFloat(q.raw, 64); err == nil && !strings.ContainsAny(q.raw, "nNiI") {
		return []byte(q.raw), nil
	}
	return json.Marshal(q.raw)
}
