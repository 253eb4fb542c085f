package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/medequipos-api/internal/application/dto"
	"github.com/jhoicas/medequipos-api/internal/domain"
	"github.com/jhoicas/medequipos-api/internal/domain/entity"
)

func TestRegisterAdjustment_Merma(t *testing.T) {
	f := newFixture(t)
	id := f.intakeNew(t, "Guantes", 2, 10, 0, false).Movimiento.StockItemID

	res, err := f.svc.RegisterAdjustment(context.Background(), id, dto.AdjustmentRequest{
		Cantidad: dto.QuantityOf(-3),
		Motivo:   "caja dañada",
		Usuario:  "auditor",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeAjuste, res.Movimiento.Tipo)
	assert.Equal(t, -3, res.Movimiento.Cantidad)
	assert.Equal(t, 20, res.Movimiento.StockAnterior)
	assert.Equal(t, 17, res.Movimiento.StockNuevo)
	assert.Equal(t, 1, res.CajasAbiertas)
	assert.Equal(t, 7, res.Stock.OpenBoxRemaining)
	assert.Equal(t, "caja dañada", res.Movimiento.Motivo)
}

func TestRegisterAdjustment_Sobrante(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.intakeNew(t, "Guantes", 1, 10, 0, true).Movimiento.StockItemID
	_, err := f.svc.SellUnits(ctx, id, dto.SellUnitsRequest{CantidadUnidades: dto.QuantityOf(4)})
	require.NoError(t, err)

	res, err := f.svc.RegisterAdjustment(ctx, id, dto.AdjustmentRequest{Cantidad: dto.QuantityOf(5), Motivo: "conteo físico"})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Movimiento.Cantidad)
	assert.Equal(t, 1, res.Stock.BoxesStock)
	assert.Equal(t, 1, res.Stock.OpenBoxRemaining)
	assert.Equal(t, 11, res.Stock.TotalUnits)
}

func TestRegisterAdjustment_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.intakeNew(t, "Guantes", 1, 10, 0, true).Movimiento.StockItemID

	_, err := f.svc.RegisterAdjustment(ctx, id, dto.AdjustmentRequest{Cantidad: dto.QuantityOf(0), Motivo: "x"})
	assert.True(t, isCode(err, domain.ErrInvalidQuantity))

	_, err = f.svc.RegisterAdjustment(ctx, id, dto.AdjustmentRequest{Cantidad: dto.QuantityOf(2), Motivo: "  "})
	assert.True(t, isCode(err, domain.ErrInvalidInput))

	_, err = f.svc.RegisterAdjustment(ctx, id, dto.AdjustmentRequest{Cantidad: dto.QuantityOf(-11), Motivo: "pérdida"})
	assert.True(t, isCode(err, domain.ErrInsufficientStock))

	assert.Equal(t, 1, f.movementCount(t, id))
}
