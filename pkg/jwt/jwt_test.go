package jwt

import (
	"testing"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-unit-tests"

func TestGenerateAndParse(t *testing.T) {
	tok, err := Generate(testSecret, "u-1", "mlopez", RoleBodeguero, "medequipos-test", 60)
	require.NoError(t, err)

	claims, err := Parse(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "mlopez", claims.DisplayName())
	assert.Equal(t, RoleBodeguero, claims.Role)
	assert.Equal(t, "medequipos-test", claims.Issuer)
}

func TestParse_Errores(t *testing.T) {
	expired, err := Generate(testSecret, "u-1", "", RoleAdmin, "x", -1)
	require.NoError(t, err)
	_, err = Parse(testSecret, expired)
	assert.Error(t, err, "token expirado")

	valid, err := Generate(testSecret, "u-1", "", RoleAdmin, "x", 60)
	require.NoError(t, err)
	_, err = Parse("otro-secret", valid)
	assert.Error(t, err, "secret incorrecto")

	_, err = Parse("", valid)
	assert.Error(t, err)

	_, err = Generate("", "u-1", "", RoleAdmin, "x", 60)
	assert.Error(t, err)
}

func TestParse_RechazaAlgoritmoNone(t *testing.T) {
	tok := gojwt.NewWithClaims(gojwt.SigningMethodNone, Claims{UserID: "u-1", Role: RoleAdmin})
	s, err := tok.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = Parse(testSecret, s)
	assert.Error(t, err)
}

func TestDisplayName_SinUsername(t *testing.T) {
	c := &Claims{UserID: "u-9"}
	assert.Equal(t, "u-9", c.DisplayName())
}
