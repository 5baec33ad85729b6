package eth

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/layer-3/siwe-auth/core"
	"github.com/stretchr/testify/require"
)

// Hardhat's first development account.
const (
	devKey     = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	devAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestSignAndRecover(t *testing.T) {
	signer, err := KeySignerFromHex(devKey)
	require.NoError(t, err)
	require.Equal(t, devAddress, signer.Address().Hex())

	const message = "example.com wants you to sign in with your Ethereum account:"
	signature, err := signer.SignMessage(message)
	require.NoError(t, err)

	raw, err := hexutil.Decode(signature)
	require.NoError(t, err)
	require.Len(t, raw, 65)
	require.Contains(t, []byte{27, 28}, raw[64])

	recovered, err := RecoverAddress(message, signature)
	require.NoError(t, err)
	require.Equal(t, signer.Address(), recovered)

	t.Run("recovery id without offset", func(t *testing.T) {
		raw[64] -= 27
		recovered, err := RecoverAddress(message, hexutil.Encode(raw))
		require.NoError(t, err)
		require.Equal(t, signer.Address(), recovered)
	})
}

func TestVerifySignature(t *testing.T) {
	signer, err := GenerateKeySigner()
	require.NoError(t, err)
	other, err := GenerateKeySigner()
	require.NoError(t, err)

	const message = "hello"
	signature, err := signer.SignMessage(message)
	require.NoError(t, err)

	t.Run("matching address", func(t *testing.T) {
		recovered, err := VerifySignature(message, signature, signer.Address())
		require.NoError(t, err)
		require.Equal(t, signer.Address(), recovered)
	})

	t.Run("claimed address differs", func(t *testing.T) {
		_, err := VerifySignature(message, signature, other.Address())
		require.ErrorIs(t, err, core.ErrAddressMismatch)
	})

	t.Run("different message", func(t *testing.T) {
		_, err := VerifySignature(message+"!", signature, signer.Address())
		require.ErrorIs(t, err, core.ErrAddressMismatch)
	})
}

func TestDecodeSignatureErrors(t *testing.T) {
	zeroRS := "0x" + strings.Repeat("00", 64) + "1b"

	tests := []struct {
		name      string
		signature string
	}{
		{name: "empty", signature: ""},
		{name: "not hex", signature: "0xzz"},
		{name: "missing prefix", signature: strings.Repeat("ab", 65)},
		{name: "too short", signature: "0x" + strings.Repeat("ab", 64)},
		{name: "too long", signature: "0x" + strings.Repeat("ab", 66)},
		{name: "zero r and s", signature: zeroRS},
		{name: "bad recovery id", signature: "0x" + strings.Repeat("11", 64) + "05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSignature(tt.signature)
			require.ErrorIs(t, err, core.ErrSignatureInvalid)

			_, err = RecoverAddress("message", tt.signature)
			require.ErrorIs(t, err, core.ErrSignatureInvalid)
		})
	}
}

func TestNormalizeAddress(t *testing.T) {
	got, err := NormalizeAddress(strings.ToLower(devAddress))
	require.NoError(t, err)
	require.Equal(t, devAddress, got)

	got, err = NormalizeAddress(strings.ToUpper(devAddress[2:]))
	require.NoError(t, err)
	require.Equal(t, devAddress, got)

	_, err = NormalizeAddress("0x1234")
	require.Error(t, err)
}
