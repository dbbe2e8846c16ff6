package protocol

import (
	"crypto/sha1"
	"encoding/base64"
	"time"

	"golang.org/x/crypto/blake2b"
)

const (
	signBlockSize = 64
	innerPad      = 0x36
	outerPad      = 0x5c

	// NonceDigestSize is the digest size behind a nonce
	NonceDigestSize = 16
)

// Sign computes the authentication hash for a request. It is HMAC-SHA1 over
// "authTime:nonce:privateKey" keyed with the private key, except that keys longer
// than the block size are truncated instead of hashed.
func Sign(privateKey, authTime, nonce string) string {
	var key [signBlockSize]byte
	copy(key[:], privateKey)

	var ipad, opad [signBlockSize]byte
	for i := range key {
		ipad[i] = key[i] ^ innerPad
		opad[i] = key[i] ^ outerPad
	}

	inner := sha1.New()
	inner.Write(ipad[:])
	inner.Write([]byte(authTime + ":" + nonce + ":" + privateKey))

	outer := sha1.New()
	outer.Write(opad[:])
	outer.Write(inner.Sum(nil))

	return base64.StdEncoding.EncodeToString(outer.Sum(nil))
}

// Timestamp formats now the way the service expects it,
// e.g. 2008-05-01T12:30:45.000+0000. Milliseconds are always 000.
func Timestamp(now time.Time) string {
	utc := now.UTC()
	return utc.Format("2006-01-02T15:04:05") + ".000" + utc.Format("-0700")
}

// Nonce derives a per-request token from now
func Nonce(now time.Time) string {
	h, err := blake2b.New(NonceDigestSize, nil)
	if err != nil {
		panic(err)
	}
	h.Write([]byte(now.UTC().Format(time.RFC3339Nano)))
	return Base32Encode(h.Sum(nil))
}
