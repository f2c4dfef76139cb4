package jwttoken

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "censusdesk/pkg/domain"
	dErrors "censusdesk/pkg/domain-errors"
	"censusdesk/pkg/requestcontext"
	"censusdesk/pkg/testutil"
)

var actorID = testutil.TestIDs.ExecutiveA

var jwtService = NewJWTService(
	"test-signing-key",
	"test-issuer",
	"test-audience",
	time.Hour,
)

func Test_IssueAndValidate(t *testing.T) {
	token, err := jwtService.IssueToken(context.Background(), actorID, "exec.a@example.com")
	require.NoError(t, err)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, actorID.String(), claims.Subject)
	assert.Equal(t, "exec.a@example.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func Test_IssueRequiresActor(t *testing.T) {
	_, err := jwtService.IssueToken(context.Background(), id.ActorID{}, "")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.ErrorContains(t, err, "invalid token")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	ctx := requestcontext.WithTime(context.Background(), time.Now().Add(-2*time.Hour))
	token, err := jwtService.IssueToken(ctx, actorID, "")
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.ErrorContains(t, err, "token expired")
}

func Test_ValidateToken_RejectsForeignIssuers(t *testing.T) {
	cases := map[string]*JWTService{
		"issuer":   NewJWTService("test-signing-key", "someone-else", "test-audience", time.Hour),
		"audience": NewJWTService("test-signing-key", "test-issuer", "other-audience", time.Hour),
		"key":      NewJWTService("another-key", "test-issuer", "test-audience", time.Hour),
	}
	for name, other := range cases {
		t.Run(name, func(t *testing.T) {
			token, err := other.IssueToken(context.Background(), actorID, "")
			require.NoError(t, err)
			_, err = jwtService.ValidateToken(token)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		})
	}
}

func Test_ValidateToken_RejectsAlgorithmConfusion(t *testing.T) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actorID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			Issuer:    "test-issuer",
			Audience:  []string{"test-audience"},
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.Error(t, err)
}

func Test_AdapterMapsClaims(t *testing.T) {
	token, err := jwtService.IssueToken(context.Background(), actorID, "exec.a@example.com")
	require.NoError(t, err)

	claims, err := jwtService.Validator().ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, actorID.String(), claims.ActorID)
	assert.Equal(t, "exec.a@example.com", claims.Email)
}
