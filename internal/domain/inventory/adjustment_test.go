package inventory_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/medequipos-api/internal/domain"
	"github.com/jhoicas/medequipos-api/internal/domain/entity"
	"github.com/jhoicas/medequipos-api/internal/domain/inventory"
)

func TestReceiveBoxes(t *testing.T) {
	item := newItem(2, 0, 10, true)
	after, err := inventory.ReceiveBoxes(item, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, after.BoxesStock)

	_, err = inventory.ReceiveBoxes(item, 0)
	assert.True(t, errors.Is(err, domain.ErrInvalidQuantity))
}

// Un ajuste positivo que completa una caja la convierte en caja cerrada.
func TestApplyAdjustment_PositivoCompletaCaja(t *testing.T) {
	item := newItem(1, 0, 10, true)
	item.OpenBox = &entity.OpenBox{OriginalFactor: 10, RemainingUnits: 7}

	after, _, err := inventory.ApplyAdjustment(item, 5, testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, after.BoxesStock)
	require.NotNil(t, after.OpenBox)
	assert.Equal(t, 2, after.OpenBox.RemainingUnits)
	assert.Equal(t, 0, after.LooseUnits)
	assert.Equal(t, 22, inventory.TotalUnits(&after))
}

func TestApplyAdjustment_PositivoQuedaSuelto(t *testing.T) {
	item := newItem(1, 0, 10, false)

	after, _, err := inventory.ApplyAdjustment(item, 3, testNow)
	require.NoError(t, err)
	assert.Equal(t, 3, after.LooseUnits)
	assert.Nil(t, after.OpenBox)
}

// Un ajuste negativo (merma) abre caja aunque el producto no se fraccione.
func TestApplyAdjustment_NegativoAbreCaja(t *testing.T) {
	item := newItem(2, 0, 10, false)

	after, c, err := inventory.ApplyAdjustment(item, -4, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, c.BoxesOpened)
	assert.Equal(t, 1, after.BoxesStock)
	assert.Equal(t, 6, after.OpenBoxRemaining())
}

func TestApplyAdjustment_Invalidos(t *testing.T) {
	item := newItem(0, 2, 10, true)
	_, _, err := inventory.ApplyAdjustment(item, 0, testNow)
	assert.True(t, errors.Is(err, domain.ErrInvalidQuantity))
	_, _, err = inventory.ApplyAdjustment(item, -3, testNow)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
}
