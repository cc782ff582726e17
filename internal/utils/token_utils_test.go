package utils_test

import (
	"testing"
	"time"

	"github.com/SscSPs/vault_ledger/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorToken_RoundTrip(t *testing.T) {
	token, err := utils.GenerateActorToken("ops@vault", "secret", time.Hour)
	require.NoError(t, err)

	actor, err := utils.ParseActorToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "ops@vault", actor)

	_, err = utils.ParseActorToken(token, "other-secret")
	assert.ErrorIs(t, err, jwt.ErrSignatureInvalid)
}

func TestActorToken_Expired(t *testing.T) {
	token, err := utils.GenerateActorToken("ops", "secret", -time.Minute)
	require.NoError(t, err)
	_, err = utils.ParseActorToken(token, "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestGenerateActorToken_RequiresInputs(t *testing.T) {
	_, err := utils.GenerateActorToken("", "secret", time.Hour)
	assert.Error(t, err)
	_, err = utils.GenerateActorToken("ops", "", time.Hour)
	assert.Error(t, err)
}
