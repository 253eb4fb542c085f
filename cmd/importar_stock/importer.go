package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/medequipos-api/internal/application/dto"
	"github.com/jhoicas/medequipos-api/internal/application/inventory"
	"github.com/jhoicas/medequipos-api/internal/domain"
)

// intaker es lo único que el importador necesita del servicio de inventario.
type intaker interface {
	ProcessFractionedIntake(ctx context.Context, in dto.IntakeRequest) (*dto.MovementResult, error)
}

// Codificaciones soportadas del archivo.
const (
	encodingAuto   = "auto"
	encodingUTF8   = "utf-8"
	encodingLatin1 = "latin1"
)

type importOptions struct {
	LocationID string
	Encoding   string
	Separator  rune
	User       string
	DryRun     bool
}

type rowError struct {
	Line int
	Code string
	Msg  string
}

type importSummary struct {
	Rows         int
	Imported     int
	CreatedItems int
	Units        int
	Errors       []rowError
}

// columnas esperadas; los encabezados se comparan sin mayúsculas ni espacios.
var columnAliases = map[string]string{
	"nombre":                  "nombre",
	"producto":                "nombre",
	"marca":                   "marca",
	"modelo":                  "modelo",
	"referencia_modelo":       "modelo",
	"cajas":                   "cajas",
	"cantidad_cajas":          "cajas",
	"unidades_por_caja":       "factor",
	"factor":                  "factor",
	"permite_fraccionamiento": "fraccionable",
	"fraccionable":            "fraccionable",
	"cantidad_minima":         "minimo",
	"minimo":                  "minimo",
	"precio_base":             "precio",
	"precio":                  "precio",
	"moneda":                  "moneda",
	"referencia":              "referencia",
	"documento":               "referencia",
}

// decodeInput devuelve el contenido en UTF-8. En modo auto, un archivo que no es UTF-8
// válido se trata como ISO-8859-1 (exportaciones de hojas de cálculo antiguas).
func decodeInput(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case encodingLatin1, "iso-8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case encodingUTF8, "utf8":
		return stripBOM(r), nil
	case encodingAuto, "":
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
		if utf8.Valid(raw) {
			return bytes.NewReader(raw), nil
		}
		return transform.NewReader(bytes.NewReader(raw), charmap.ISO8859_1.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("codificación no soportada: %s", encoding)
	}
}

func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && bytes.Equal(b, []byte("\xef\xbb\xbf")) {
		_, _ = br.Discard(3)
	}
	return br
}

// importCSV procesa cada fila como un ingreso fraccionado. Una fila inválida no detiene el resto.
func importCSV(ctx context.Context, svc intaker, r io.Reader, opts importOptions) (*importSummary, error) {
	in, err := decodeInput(r, opts.Encoding)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(in)
	reader.Comma = opts.Separator
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("leer encabezado: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		if name, ok := columnAliases[strings.ToLower(strings.TrimSpace(h))]; ok {
			cols[name] = i
		}
	}
	for _, required := range []string{"nombre", "cajas", "factor"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("falta la columna %q", required)
		}
	}

	summary := &importSummary{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			line := 0
			if errors.As(err, &pe) {
				line = pe.Line
			}
			summary.Rows++
			summary.Errors = append(summary.Errors, rowError{Line: line, Code: domain.CodeValidation, Msg: err.Error()})
			continue
		}
		line, _ := reader.FieldPos(0)
		if isBlank(record) {
			continue
		}
		summary.Rows++

		req, err := buildRequest(record, cols, opts)
		if err == nil && opts.DryRun {
			err = validateQuantities(req)
		} else if err == nil {
			var res *dto.MovementResult
			res, err = svc.ProcessFractionedIntake(ctx, req)
			if err == nil {
				summary.Units += res.Unidades
				if res.ItemCreado {
					summary.CreatedItems++
				}
			}
		}
		if err != nil {
			_, code, msg := domain.Describe(err)
			summary.Errors = append(summary.Errors, rowError{Line: line, Code: code, Msg: msg})
			continue
		}
		summary.Imported++
	}
	return summary, nil
}

func buildRequest(record []string, cols map[string]int, opts importOptions) (dto.IntakeRequest, error) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	product := &dto.NewProductRequest{
		Nombre:    get("nombre"),
		Marca:     get("marca"),
		Modelo:    get("modelo"),
		CarpetaID: opts.LocationID,
		Moneda:    get("moneda"),
	}
	if v := get("minimo"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return dto.IntakeRequest{}, domain.NewError(domain.ErrInvalidInput, "cantidad_minima inválida: %q", v)
		}
		product.CantidadMinima = n
	}
	if v := get("precio"); v != "" {
		// 12.500,50 o 12500.50
		normalized := v
		if strings.Contains(v, ",") {
			normalized = strings.ReplaceAll(strings.ReplaceAll(v, ".", ""), ",", ".")
		}
		price, err := decimal.NewFromString(normalized)
		if err != nil || price.IsNegative() {
			return dto.IntakeRequest{}, domain.NewError(domain.ErrInvalidInput, "precio_base inválido: %q", v)
		}
		product.PrecioBase = price
	}

	req := dto.IntakeRequest{
		NuevoProducto:     product,
		CantidadCajas:     dto.QuantityFrom(get("cajas")),
		UnidadesPorCaja:   dto.QuantityFrom(get("factor")),
		Usuario:           opts.User,
		ReferenciaExterna: get("referencia"),
	}
	if v := get("fraccionable"); v != "" {
		b, err := parseFlag(v)
		if err != nil {
			return dto.IntakeRequest{}, err
		}
		req.PermiteFraccionamiento = &b
	}
	return req, nil
}

func validateQuantities(req dto.IntakeRequest) error {
	if _, err := inventory.ParseQuantity("cantidad_cajas", req.CantidadCajas); err != nil {
		return err
	}
	_, err := inventory.ParseQuantity("unidades_por_caja", req.UnidadesPorCaja)
	return err
}

func parseFlag(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "si", "sí", "s", "x", "1", "true", "verdadero":
		return true, nil
	case "no", "n", "0", "false", "falso":
		return false, nil
	}
	return false, domain.NewError(domain.ErrInvalidInput, "permite_fraccionamiento inválido: %q", v)
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
