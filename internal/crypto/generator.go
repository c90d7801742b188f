// Package crypto provides the key generators a search draws candidate
// keypairs from.
package crypto

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/screa/vanity-sampler/pkg/types"
)

// Supported key schemes
const (
	SchemeEthereum = "eth"
	SchemeBitcoin  = "btc"
)

// ErrUnknownScheme is returned by NewGenerator for unsupported schemes
var ErrUnknownScheme = errors.New("unknown key scheme")

// Schemes lists the scheme names accepted by NewGenerator
func Schemes() []string {
	return []string{SchemeEthereum, SchemeBitcoin}
}

// NewGenerator returns the generator for the named scheme
func NewGenerator(scheme string) (types.KeyGenerator, error) {
	switch strings.ToLower(scheme) {
	case SchemeEthereum:
		return EthereumGenerator{}, nil
	case SchemeBitcoin:
		return NewBitcoinGenerator(&chaincfg.MainNetParams), nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownScheme, scheme, strings.Join(Schemes(), ", "))
	}
}

// EthereumGenerator creates secp256k1 keys and EIP-55 checksummed addresses.
// The private key is rendered as 64 lowercase hex characters.
type EthereumGenerator struct{}

// Generate draws a fresh key from crypto/rand
func (EthereumGenerator) Generate() (types.Keypair, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return types.Keypair{}, fmt.Errorf("generate secp256k1 key: %w", err)
	}

	addr20, err := AddressFromUncompressed(priv.PubKey().SerializeUncompressed())
	if err != nil {
		return types.Keypair{}, err
	}
	address, err := ChecksumAddress(addr20)
	if err != nil {
		return types.Keypair{}, err
	}

	return types.Keypair{
		PrivateKey: hex.EncodeToString(priv.Serialize()),
		Address:    address,
	}, nil
}

// BitcoinGenerator creates compressed P2PKH addresses with WIF private keys
type BitcoinGenerator struct {
	params *chaincfg.Params
}

// NewBitcoinGenerator creates a generator for the given network
func NewBitcoinGenerator(params *chaincfg.Params) *BitcoinGenerator {
	return &BitcoinGenerator{params: params}
}

// Generate draws a fresh key from crypto/rand
func (g *BitcoinGenerator) Generate() (types.Keypair, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return types.Keypair{}, fmt.Errorf("generate btcec key: %w", err)
	}

	pubKeyHash := btcutil.Hash160(priv.PubKey().SerializeCompressed())
	addr, err := btcutil.NewAddressPubKeyHash(pubKeyHash, g.params)
	if err != nil {
		return types.Keypair{}, fmt.Errorf("derive p2pkh address: %w", err)
	}
	wif, err := btcutil.NewWIF(priv, g.params, true)
	if err != nil {
		return types.Keypair{}, fmt.Errorf("encode wif: %w", err)
	}

	return types.Keypair{
		PrivateKey: wif.String(),
		Address:    addr.EncodeAddress(),
	}, nil
}
