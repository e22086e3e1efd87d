package certificate

import (
	"crypto/sha256"
	"encoding/base64"

	"github.com/aptpod/quicnet-go/errors"
)

// Fingerprintは、証明書(DER)のSHA-256ハッシュです。
type Fingerprint [sha256.Size]byte

// FingerprintOfは、DERエンコードされた証明書のFingerprintを返却します。
func FingerprintOf(der []byte) Fingerprint {
	return sha256.Sum256(der)
}

// Stringは、Base64エンコードしたフィンガープリントを返却します。
func (f Fingerprint) String() string {
	return base64.StdEncoding.EncodeToString(f[:])
}

// ParseFingerprintは、Base64エンコードされたフィンガープリントをデコードします。
func ParseFingerprint(s string) (Fingerprint, error) {
	var f Fingerprint
	bs, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return f, errors.Errorf("invalid fingerprint %q: %w", s, err)
	}
	if len(bs) != len(f) {
		return f, errors.Errorf("invalid fingerprint length %d: %w", len(bs), errors.ErrMalformedMessage)
	}
	copy(f[:], bs)
	return f, nil
}
