package protocol

import (
	"github.com/vstakhov/go-base32"
)

// Base32Encode encodes data in zbase32, the alphabet used for nonces
func Base32Encode(data []byte) string {
	return base32.Encode(data)
}

// Base32Decode reverses Base32Encode
func Base32Decode(s string) ([]byte, error) {
	return base32.DecodeString(s)
}
