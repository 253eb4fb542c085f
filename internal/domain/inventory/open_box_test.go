package inventory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/medequipos-api/internal/domain"
	"github.com/jhoicas/medequipos-api/internal/domain/entity"
	"github.com/jhoicas/medequipos-api/internal/domain/inventory"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newItem(boxes, loose, factor int, fractioning bool) entity.StockItem {
	return entity.StockItem{
		ID:                "item-1",
		Name:              "Ampolla Dexametasona",
		ConversionFactor:  factor,
		BoxesStock:        boxes,
		LooseUnits:        loose,
		AllowsFractioning: fractioning,
		Version:           1,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Transiciones de la caja abierta
// ──────────────────────────────────────────────────────────────────────────────

// Vender 3 de una caja de 10 abre una caja; vender 7 más la cierra.
func TestConsumeUnits_AbreYCierraCaja(t *testing.T) {
	item := newItem(5, 0, 10, true)

	after, c, err := inventory.ConsumeUnits(item, 3, false, testNow)
	require.NoError(t, err)
	assert.Equal(t, 4, after.BoxesStock)
	require.NotNil(t, after.OpenBox)
	assert.Equal(t, 7, after.OpenBox.RemainingUnits)
	assert.Equal(t, 10, after.OpenBox.OriginalFactor)
	assert.Equal(t, 1, c.BoxesOpened)

	after2, c2, err := inventory.ConsumeUnits(after, 7, false, testNow)
	require.NoError(t, err)
	assert.Equal(t, 4, after2.BoxesStock)
	assert.Nil(t, after2.OpenBox, "la caja vacía se descarta")
	assert.Equal(t, 7, c2.FromOpenBox)
	assert.Equal(t, 0, c2.BoxesOpened)

	// el original no se modifica
	assert.Equal(t, 5, item.BoxesStock)
	assert.Nil(t, item.OpenBox)
}

// Si el remanente no alcanza, se abre otra caja y se fusiona con lo que quedaba.
func TestConsumeUnits_FusionaRemanenteConNuevaCaja(t *testing.T) {
	item := newItem(3, 0, 10, true)
	item.OpenBox = &entity.OpenBox{OriginalFactor: 10, RemainingUnits: 2}

	after, c, err := inventory.ConsumeUnits(item, 5, false, testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, after.BoxesStock)
	require.NotNil(t, after.OpenBox)
	assert.Equal(t, 7, after.OpenBox.RemainingUnits, "2 + 10 - 5")
	assert.Equal(t, 2, c.FromOpenBox)
	assert.Equal(t, 1, c.BoxesOpened)
}

// Primero se consume la caja abierta y después las unidades sueltas.
func TestConsumeUnits_OrdenCajaAbiertaLuegoSueltas(t *testing.T) {
	item := newItem(1, 3, 10, true)
	item.OpenBox = &entity.OpenBox{OriginalFactor: 10, RemainingUnits: 4}

	after, c, err := inventory.ConsumeUnits(item, 6, false, testNow)
	require.NoError(t, err)
	assert.Equal(t, 4, c.FromOpenBox)
	assert.Equal(t, 2, c.FromLoose)
	assert.Nil(t, after.OpenBox)
	assert.Equal(t, 1, after.LooseUnits)
	assert.Equal(t, 1, after.BoxesStock)
}

// Sin fraccionamiento y sin sueltas falla aunque haya cajas.
func TestConsumeUnits_SinFraccionamiento(t *testing.T) {
	item := newItem(4, 0, 10, false)

	after, _, err := inventory.ConsumeUnits(item, 3, false, testNow)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrFractioningNotAllowed))
	assert.Equal(t, item, after, "no se abre ninguna caja")
}

// Sin fraccionamiento ni un múltiplo exacto del factor se toma de cajas cerradas.
func TestConsumeUnits_MultiploExactoSinFraccionamiento(t *testing.T) {
	item := newItem(4, 0, 10, false)

	after, c, err := inventory.ConsumeUnits(item, 20, false, testNow)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrFractioningNotAllowed))
	assert.Equal(t, item, after)
	assert.Equal(t, inventory.UnitConsumption{}, c)
}

// Con sueltas suficientes no hace falta abrir caja aunque el producto no se fraccione.
func TestConsumeUnits_SinFraccionamientoUsaSueltas(t *testing.T) {
	item := newItem(4, 6, 10, false)

	after, c, err := inventory.ConsumeUnits(item, 6, false, testNow)
	require.NoError(t, err)
	assert.Equal(t, 4, after.BoxesStock)
	assert.Equal(t, 0, after.LooseUnits)
	assert.Equal(t, 6, c.FromLoose)

	_, _, err = inventory.ConsumeUnits(after, 10, false, testNow)
	assert.True(t, errors.Is(err, domain.ErrFractioningNotAllowed))
}

// forceOpen (ajustes por merma) abre caja aunque el producto no se fraccione.
func TestConsumeUnits_ForceOpen(t *testing.T) {
	item := newItem(2, 0, 10, false)

	after, _, err := inventory.ConsumeUnits(item, 1, true, testNow)
	require.NoError(t, err)
	require.NotNil(t, after.OpenBox)
	assert.Equal(t, 9, after.OpenBox.RemainingUnits)
}

func TestConsumeUnits_StockInsuficiente(t *testing.T) {
	item := newItem(0, 3, 10, true)

	_, _, err := inventory.ConsumeUnits(item, 4, false, testNow)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Contains(t, err.Error(), "solo hay 3 unidades disponibles")
}

func TestConsumeUnits_CantidadInvalida(t *testing.T) {
	item := newItem(1, 0, 10, true)
	for _, q := range []int{0, -2} {
		_, _, err := inventory.ConsumeUnits(item, q, false, testNow)
		assert.True(t, errors.Is(err, domain.ErrInvalidQuantity), "qty=%d", q)
	}
}

// Factor 1: producto solo por unidades, nunca pide fraccionamiento.
func TestConsumeUnits_FactorUno(t *testing.T) {
	item := newItem(5, 0, 1, false)

	after, _, err := inventory.ConsumeUnits(item, 3, false, testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, after.BoxesStock)
	assert.Nil(t, after.OpenBox)
}
