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

func TestSplit(t *testing.T) {
	cases := []struct {
		units, factor, boxes, rem int
	}{
		{0, 10, 0, 0},
		{25, 10, 2, 5},
		{30, 10, 3, 0},
		{7, 1, 7, 0},
		{3, 12, 0, 3},
	}
	for _, tc := range cases {
		boxes, rem, err := inventory.Split(tc.units, tc.factor)
		require.NoError(t, err)
		assert.Equal(t, tc.boxes, boxes, "%d/%d", tc.units, tc.factor)
		assert.Equal(t, tc.rem, rem, "%d mod %d", tc.units, tc.factor)
		assert.Equal(t, tc.units, inventory.ToUnits(boxes, tc.factor)+rem)
	}
}

func TestSplit_Invalido(t *testing.T) {
	_, _, err := inventory.Split(10, 0)
	assert.True(t, errors.Is(err, domain.ErrInvalidQuantity))
	_, _, err = inventory.Split(-1, 10)
	assert.True(t, errors.Is(err, domain.ErrInvalidQuantity))
}

func TestTotalUnitsYSnapshot(t *testing.T) {
	item := entity.StockItem{ConversionFactor: 10, BoxesStock: 3, LooseUnits: 2,
		OpenBox: &entity.OpenBox{OriginalFactor: 10, RemainingUnits: 5}, Version: 4}

	assert.Equal(t, 37, inventory.TotalUnits(&item))
	snap := inventory.Snapshot(&item)
	assert.Equal(t, 37, snap.TotalUnits)
	assert.True(t, snap.HasOpenBox)
	assert.Equal(t, 5, snap.OpenBoxRemaining)
	assert.Equal(t, int64(4), snap.Version)
}

func TestCheckInvariant(t *testing.T) {
	ok := entity.StockItem{ConversionFactor: 10, BoxesStock: 1, LooseUnits: 4,
		OpenBox: &entity.OpenBox{RemainingUnits: 5}}
	assert.NoError(t, inventory.CheckInvariant(&ok))

	full := ok
	full.OpenBox = &entity.OpenBox{RemainingUnits: 6}
	assert.True(t, errors.Is(inventory.CheckInvariant(&full), domain.ErrInternal))

	empty := entity.StockItem{ConversionFactor: 10, OpenBox: &entity.OpenBox{}}
	assert.Error(t, inventory.CheckInvariant(&empty))
}
