package siwe

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/layer-3/siwe-auth/internal/eth"
	spruce "github.com/spruceid/siwe-go"
	"github.com/stretchr/testify/require"
)

// Messages rendered here must be readable by the reference Go implementation,
// and signatures produced for them must verify there too.
func TestInteropWithSiweGo(t *testing.T) {
	signer, err := eth.GenerateKeySigner()
	require.NoError(t, err)

	msg := fullMessage(t)
	msg.Address = signer.Address()
	msg.ExpirationTime = nil
	msg.NotBefore = nil
	msg.RequestID = ""
	msg.Resources = nil

	raw, err := msg.Build()
	require.NoError(t, err)

	ref, err := spruce.ParseMessage(raw)
	require.NoError(t, err)
	require.Equal(t, msg.Domain, ref.GetDomain())
	require.Equal(t, msg.Address, ref.GetAddress())
	require.Equal(t, msg.Nonce, ref.GetNonce())
	require.Equal(t, int(msg.ChainID), ref.GetChainID())

	signature, err := signer.SignMessage(raw)
	require.NoError(t, err)

	pubKey, err := ref.VerifyEIP191(signature)
	require.NoError(t, err)
	require.Equal(t, signer.Address(), crypto.PubkeyToAddress(*pubKey))
}
