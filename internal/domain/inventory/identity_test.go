package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/medequipos-api/internal/domain/inventory"
)

func TestIdentityKey(t *testing.T) {
	a := inventory.IdentityKey("Catéter  Intravenoso", "BD", "Insyte 20G")
	b := inventory.IdentityKey("cateter intravenoso", "bd", " insyte   20g ")
	assert.Equal(t, a, b)
	assert.Equal(t, "cateter intravenoso|bd|insyte 20g", a)

	assert.NotEqual(t, a, inventory.IdentityKey("cateter intravenoso", "bd", "insyte 22g"))
}
