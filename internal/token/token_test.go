package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"caretalk/internal/domain"
	"caretalk/internal/token"
)

func TestIssueAndParse(t *testing.T) {
	req := require.New(t)
	issuer := token.NewIssuer([]byte("test-secret"), time.Hour)

	signed, err := issuer.Issue("user-42")
	req.NoError(err)
	req.NotEmpty(signed)

	claims, err := issuer.Parse(signed)
	req.NoError(err)
	req.Equal("user-42", claims.UserID)
	req.Equal("caretalk", claims.Issuer)
}

func TestParseExpired(t *testing.T) {
	issuer := token.NewIssuer([]byte("test-secret"), -time.Minute)

	signed, err := issuer.Issue("user-42")
	require.NoError(t, err)

	_, err = issuer.Parse(signed)
	require.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestParseWrongSecret(t *testing.T) {
	signed, err := token.NewIssuer([]byte("secret-a"), time.Hour).Issue("user-42")
	require.NoError(t, err)

	_, err = token.NewIssuer([]byte("secret-b"), time.Hour).Parse(signed)
	require.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestParseGarbage(t *testing.T) {
	issuer := token.NewIssuer([]byte("test-secret"), time.Hour)

	for _, bad := range []string{"", "not-a-token", "a.b.c"} {
		_, err := issuer.Parse(bad)
		require.ErrorIs(t, err, domain.ErrInvalidToken, "input %q", bad)
	}
}
