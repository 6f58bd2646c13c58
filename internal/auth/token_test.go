package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sales-service/internal/domain"
)

func TestGenerateAndParseToken(t *testing.T) {
	tm := NewTokenManager("secret", 30)
	identity := domain.Identity{ID: "id-1", UserID: "kim01", UserType: domain.UserTypeTeamLeader, OrganizationLevel: 5}

	token, err := tm.GenerateToken(identity)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), token.ExpiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token.Value)
	require.NoError(t, err)
	assert.Equal(t, identity, claims.Identity())
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	token, err := NewTokenManager("one", 30).GenerateToken(domain.Identity{ID: "id-1"})
	require.NoError(t, err)

	_, err = NewTokenManager("two", 30).ParseToken(token.Value)
	assert.Error(t, err)
	_, err = NewTokenManager("one", 30).ParseToken("garbage")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("pw", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "pw"))
	assert.Error(t, ComparePassword(hash, "nope"))
}
