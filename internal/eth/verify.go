// Package eth recovers and checks EIP-191 personal_sign signatures.
package eth

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/layer-3/siwe-auth/core"
)

// DecodeSignature decodes a 0x-prefixed 65 byte [R || S || V] signature and
// normalises V to the 0/1 recovery id.
func DecodeSignature(signatureHex string) ([]byte, error) {
	sig, err := hexutil.Decode(signatureHex)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signature: %w", core.ErrSignatureInvalid)
	}
	if len(sig) != crypto.SignatureLength {
		return nil, fmt.Errorf("signature must be %d bytes: %w", crypto.SignatureLength, core.ErrSignatureInvalid)
	}

	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(sig[crypto.RecoveryIDOffset], r, s, true) {
		return nil, fmt.Errorf("signature values out of range: %w", core.ErrSignatureInvalid)
	}

	return sig, nil
}

// RecoverAddress returns the account that signed message with personal_sign
func RecoverAddress(message string, signatureHex string) (common.Address, error) {
	sig, err := DecodeSignature(signatureHex)
	if err != nil {
		return common.Address{}, err
	}

	pubKey, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover public key: %w", core.ErrSignatureInvalid)
	}

	return crypto.PubkeyToAddress(*pubKey), nil
}

// VerifySignature recovers the signer of message and requires it to equal
// claimed. The recovered address is returned on success.
func VerifySignature(message string, signatureHex string, claimed common.Address) (common.Address, error) {
	recovered, err := RecoverAddress(message, signatureHex)
	if err != nil {
		return common.Address{}, err
	}

	if recovered != claimed {
		return common.Address{}, fmt.Errorf("recovered %s, claimed %s: %w", recovered.Hex(), claimed.Hex(), core.ErrAddressMismatch)
	}

	return recovered, nil
}

// NormalizeAddress parses a hex address in any letter case and returns its
// EIP-55 form.
func NormalizeAddress(address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", fmt.Errorf("invalid ethereum address %q", address)
	}
	return common.HexToAddress(address).Hex(), nil
}
