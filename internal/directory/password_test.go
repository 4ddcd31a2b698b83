package directory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComparePasswordRoundTrip(t *testing.T) {
	req := require.New(t)

	hash, err := hashPassword("s3cretpass")
	req.NoError(err)

	match, err := comparePassword("s3cretpass", hash)
	req.NoError(err)
	req.True(match)

	match, err = comparePassword("other", hash)
	req.NoError(err)
	req.False(match)
}

func TestComparePasswordMalformedHash(t *testing.T) {
	cases := map[string]string{
		"empty":           "",
		"wrong shape":     "$argon2id$bogus",
		"bad version":     "$argon2id$vX$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		"bad params":      "$argon2id$v=19$nonsense$c2FsdA$aGFzaA",
		"zero iterations": "$argon2id$v=19$m=65536,t=0,p=2$c2FsdA$aGFzaA",
		"bad salt":        "$argon2id$v=19$m=65536,t=3,p=2$!!$aGFzaA",
	}
	for name, encoded := range cases {
		t.Run(name, func(t *testing.T) {
			match, err := comparePassword("whatever", encoded)
			require.Error(t, err)
			require.False(t, match)
		})
	}
}
