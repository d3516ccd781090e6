package blockchain

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
)

// EtherDecimals is the number of decimals of the native coin.
const EtherDecimals = 18

var weiPerEther = decimal.New(1, EtherDecimals)

// ParsePrivateKeyECDSA parses a hex-encoded ECDSA private key, with or
// without a 0x prefix, and returns the corresponding Ethereum address together
// with the private key object.
func ParsePrivateKeyECDSA(privateKey string) (common.Address, *ecdsa.PrivateKey, error) {
	privateKeyECDSA, err := crypto.HexToECDSA(strings.TrimPrefix(privateKey, "0x"))
	if err != nil {
		return common.Address{}, nil, err
	}

	publicKeyECDSA, ok := privateKeyECDSA.Public().(*ecdsa.PublicKey)
	if !ok {
		return common.Address{}, nil, errors.New("failed to get public key")
	}

	return crypto.PubkeyToAddress(*publicKeyECDSA), privateKeyECDSA, nil
}

// SignPersonalMessage produces an EIP-191 personal-sign signature over
// message, as produced by eth_sign or an ethers wallet signMessage:
// keccak256("\x19Ethereum Signed Message:\n" || len(message) || message).
// The recovery id is shifted to 27/28.
func SignPersonalMessage(message []byte, key *ecdsa.PrivateKey) ([]byte, error) {
	if key == nil {
		return nil, errors.New("private key is required for signing")
	}
	sig, err := crypto.Sign(accounts.TextHash(message), key)
	if err != nil {
		return nil, err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}

// RecoverPersonalSigner returns the address that produced sig over message
// with SignPersonalMessage.
func RecoverPersonalSigner(message, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(sig))
	}
	s := make([]byte, len(sig))
	copy(s, sig)
	if s[crypto.RecoveryIDOffset] >= 27 {
		s[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(accounts.TextHash(message), s)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// EncodeSignature returns the 0x-prefixed hex form of sig.
func EncodeSignature(sig []byte) string {
	return hexutil.Encode(sig)
}

// EtherToWei converts an ether amount into wei, truncating anything past
// 18 decimals.
func EtherToWei(amount decimal.Decimal) *big.Int {
	return amount.Mul(weiPerEther).Truncate(0).BigInt()
}

// WeiToEther converts a wei amount into ether with 18 digits of precision.
// A nil value converts to zero.
func WeiToEther(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, 0).DivRound(weiPerEther, EtherDecimals)
}

// ParseUint256 parses a base-10 token or subnet id.
func ParseUint256(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 || v.BitLen() > 256 {
		return nil, fmt.Errorf("invalid uint256 %q", s)
	}
	return v, nil
}

// HexToBytes32 decodes a 0x-prefixed 32-byte hex value such as a role id.
func HexToBytes32(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hexutil.Decode(s)
	if err != nil {
		return out, err
	}
	if len(b) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

// BigIntsToStrings formats ids in base 10.
func BigIntsToStrings(ids []*big.Int) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
