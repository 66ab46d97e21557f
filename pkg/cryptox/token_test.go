package cryptox_test

import (
	"testing"

	"github.com/edupredict/edupredict/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tok, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)
	require.Len(t, tok, 43) // 32 bytes base64url without padding

	other, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)
	require.NotEqual(t, tok, other)
}

func TestGenerateTokenRejectsBadSize(t *testing.T) {
	_, err := cryptox.GenerateToken(0)
	require.Error(t, err)
	_, err = cryptox.GenerateToken(-4)
	require.Error(t, err)
}

func TestFingerprintIsDeterministic(t *testing.T) {
	fp1 := cryptox.FingerprintToken("opaque-token")
	fp2 := cryptox.FingerprintToken("opaque-token")
	require.Equal(t, fp1, fp2)
	require.Len(t, fp1, 43)

	require.NotEqual(t, fp1, cryptox.FingerprintToken("other-token"))
}
