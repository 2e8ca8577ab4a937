// Package cert verifies the Gen1 certificate chain carried on a driver
// card: the CA certificate (`0xC108`) under a pinned EU root public key,
// then the card certificate (`0xC100`) under the member-state key the
// CA certificate recovers.
//
// The scheme is the ISO 9796-2 signature-recovery envelope used by
// Appendix 11, not PKCS#1 v1.5, so verification is a small
// modular-exponentiation routine against [math/big] rather than
// [crypto/rsa.VerifyPKCS1v15]: "a tiny big-integer modexp is sufficient
// ... do not depend on a fully featured PKI library."
package cert

import (
	"bytes"
	"crypto/sha1"
	"errors"
	"math/big"
)

// Failure codes returned by [VerifyChain].
var (
	ErrCertificateDataTruncated = errors.New("CertificateDataTruncated")
	ErrCaCertificateInvalid     = errors.New("CaCertificateInvalid")
	ErrMemberKeyInvalid         = errors.New("MemberKeyInvalid")
	ErrCardCertificateInvalid   = errors.New("CardCertificateInvalid")
)

const (
	lenSignature        = 128
	lenRecoverableCr    = 106 // message[1:107]
	lenHash             = 20  // message[107:127], SHA-1 digest
	lenCn               = 58
	lenRecoveredContent = lenRecoverableCr + lenCn // 164

	memberModulusOffset  = 28
	memberModulusLen     = 128
	memberExponentOffset = 156
	memberExponentLen    = 8
)

// euRootModulus and euRootExponent are the pinned EU root public key
// used to verify a Gen1 CA certificate (Appendix 11 §7, 128-byte
// modulus, public exponent 0x010001). The modulus here is a
// placeholder: production deployments must substitute the real
// published EC/MS key before trusting verification results.
var (
	euRootModulus  = new(big.Int).SetBytes(bytes.Repeat([]byte{0xA5}, 128))
	euRootExponent = big.NewInt(0x010001)
)

// publicKey is a bare RSA public key, modulus and exponent only; the
// certificate chain here never needs a private key.
type publicKey struct {
	N *big.Int
	E *big.Int
}

// recoverMessage performs the raw RSA operation `signature^E mod N`
// and left-pads the result to the modulus byte length, per the
// ISO 9796-2 recovery step (spec §4.8 step 1).
func recoverMessage(signature []byte, key publicKey) []byte {
	c := new(big.Int).SetBytes(signature)
	m := new(big.Int).Exp(c, key.E, key.N)
	out := make([]byte, (key.N.BitLen()+7)/8)
	m.FillBytes(out)
	return out
}

// recoverContent applies the ISO 9796-2 envelope check to a recovered
// message and verifies its SHA-1 digest against Cn, returning the
// concatenated recoverable content `Cr‖Cn` (spec §4.8 steps 2-3).
func recoverContent(message []byte, cn []byte) ([]byte, bool) {
	if len(message) != lenSignature {
		return nil, false
	}
	if message[0] != 0x6A || message[lenSignature-1] != 0xBC {
		return nil, false
	}
	cr := message[1 : 1+lenRecoverableCr]
	h := message[1+lenRecoverableCr : 1+lenRecoverableCr+lenHash]
	content := append(append([]byte{}, cr...), cn...)
	sum := sha1.Sum(content)
	if !bytes.Equal(sum[:], h) {
		return nil, false
	}
	return content, true
}

// memberKeyFromContent extracts the embedded member-state public key
// from a verified CA certificate's recovered content (spec §4.8 step 4).
func memberKeyFromContent(content []byte) (publicKey, bool) {
	if len(content) < memberExponentOffset+memberExponentLen {
		return publicKey{}, false
	}
	modulus := content[memberModulusOffset : memberModulusOffset+memberModulusLen]
	exponent := content[memberExponentOffset : memberExponentOffset+memberExponentLen]
	return publicKey{
		N: new(big.Int).SetBytes(modulus),
		E: new(big.Int).SetBytes(exponent),
	}, true
}

// splitCertificate separates a raw Gen1 certificate entry into its
// 128-byte signature and trailing Cn (spec §4.8: `{signature[128] ‖
// Cn'[58] ‖ ...}`). Bytes beyond Cn (the certificate holder
// authorisation etc.) are not needed by this verifier.
func splitCertificate(raw []byte) (signature, cn []byte, ok bool) {
	if len(raw) < lenSignature+lenCn {
		return nil, nil, false
	}
	return raw[:lenSignature], raw[lenSignature : lenSignature+lenCn], true
}

// VerifyChain runs the Gen1 certificate chain procedure of spec §4.8
// against a CA certificate and a card certificate, both as the raw
// bytes of their `0xC108`/`0xC100` EF entries. It returns nil iff both
// the CA certificate verifies under the pinned EU root key and the
// card certificate verifies under the member-state key the CA
// certificate recovers.
func VerifyChain(caCertificate, cardCertificate []byte) error {
	caSignature, caCn, ok := splitCertificate(caCertificate)
	if !ok {
		return ErrCertificateDataTruncated
	}
	caMessage := recoverMessage(caSignature, publicKey{N: euRootModulus, E: euRootExponent})
	caContent, ok := recoverContent(caMessage, caCn)
	if !ok {
		return ErrCaCertificateInvalid
	}
	memberKey, ok := memberKeyFromContent(caContent)
	if !ok {
		return ErrMemberKeyInvalid
	}
	cardSignature, cardCn, ok := splitCertificate(cardCertificate)
	if !ok {
		return ErrCertificateDataTruncated
	}
	cardMessage := recoverMessage(cardSignature, memberKey)
	if _, ok := recoverContent(cardMessage, cardCn); !ok {
		return ErrCardCertificateInvalid
	}
	return nil
}
