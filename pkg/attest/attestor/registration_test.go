package attestor

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestRegisterIsDeterministicPerKeyAndAccount(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	p1, err := Register(key, "5F...account")
	require.NoError(t, err)
	p2, err := Register(key, "5F...account")
	require.NoError(t, err)
	require.Equal(t, p1, p2)

	p3, err := Register(key, "different-account")
	require.NoError(t, err)
	require.NotEqual(t, p1.R, p3.R)
	require.NotEmpty(t, p1.String())
}
