package crypto

import (
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/sha3"
)

// ErrAddressLength is returned when an address is not 20 bytes long
var ErrAddressLength = errors.New("address must be 20 bytes")

// Keccak256 calculates the legacy keccak256 hash of the input bytes
func Keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(data)
	return h.Sum(nil)
}

// AddressFromUncompressed derives the 20-byte Ethereum address from a 65-byte
// uncompressed public key (0x04 || X || Y).
func AddressFromUncompressed(pub []byte) ([]byte, error) {
	if len(pub) != 65 || pub[0] != 0x04 {
		return nil, errors.New("public key must be 65 bytes uncompressed")
	}
	return Keccak256(pub[1:])[12:], nil
}

// ChecksumAddress converts a 20-byte address to its EIP-55 checksummed string.
func ChecksumAddress(addr20 []byte) (string, error) {
	if len(addr20) != 20 {
		return "", ErrAddressLength
	}
	hexLower := hex.EncodeToString(addr20)
	hash := Keccak256([]byte(hexLower))

	var out strings.Builder
	out.Grow(2 + 40)
	out.WriteString("0x")
	for i := 0; i < len(hexLower); i++ {
		c := hexLower[i]
		if c >= '0' && c <= '9' {
			out.WriteByte(c)
			continue
		}
		// nibble i of the hash decides the case of hex char i
		n := (hash[i/2] >> uint(4*(1-i%2))) & 0xF
		if n >= 8 {
			out.WriteByte(c - 'a' + 'A')
		} else {
			out.WriteByte(c)
		}
	}
	return out.String(), nil
}
