package cert

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"math/big"
	"testing"
)

// buildCertificate signs a forged ISO 9796-2 message under the given
// private key and appends a 58-byte Cn, producing a raw certificate
// entry byte-compatible with an EF `0xC108`/`0xC100` entry.
func buildCertificate(t *testing.T, priv *rsa.PrivateKey, cn []byte) []byte {
	t.Helper()
	cr := make([]byte, lenRecoverableCr)
	for i := range cr {
		cr[i] = byte(i)
	}
	content := append(append([]byte{}, cr...), cn...)
	h := sha1.Sum(content)
	message := make([]byte, lenSignature)
	message[0] = 0x6A
	copy(message[1:], cr)
	copy(message[1+lenRecoverableCr:], h[:])
	message[lenSignature-1] = 0xBC
	m := new(big.Int).SetBytes(message)
	sig := new(big.Int).Exp(m, priv.D, priv.N)
	sigBytes := make([]byte, lenSignature)
	sig.FillBytes(sigBytes)
	return append(sigBytes, cn...)
}

// TestVerifyChainAcceptsWellFormedChain exercises the full chain with a
// forged CA certificate whose recovered content embeds the member key
// at the documented offsets, so the card certificate can validate
// under it.
func TestVerifyChainAcceptsWellFormedChain(t *testing.T) {
	rootKey, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatalf("generate root key: %v", err)
	}
	memberKey, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatalf("generate member key: %v", err)
	}

	origModulus, origExponent := euRootModulus, euRootExponent
	euRootModulus, euRootExponent = rootKey.N, big.NewInt(int64(rootKey.E))
	t.Cleanup(func() { euRootModulus, euRootExponent = origModulus, origExponent })

	// The member key lives at offsets [28:156]/[156:164] of the full
	// recovered content (Cr‖Cn, 164 bytes); the modulus range [28:156]
	// spans the Cr/Cn boundary at 106, so build the content whole and split it
	// back into Cr and Cn afterwards.
	content := make([]byte, lenRecoveredContent)
	modulusBytes := make([]byte, memberModulusLen)
	memberKey.N.FillBytes(modulusBytes)
	copy(content[memberModulusOffset:], modulusBytes)
	exponentBytes := make([]byte, memberExponentLen)
	new(big.Int).SetInt64(int64(memberKey.E)).FillBytes(exponentBytes)
	copy(content[memberExponentOffset:], exponentBytes)

	cr := content[:lenRecoverableCr]
	cn := content[lenRecoverableCr:]
	h := sha1.Sum(content)
	message := make([]byte, lenSignature)
	message[0] = 0x6A
	copy(message[1:], cr)
	copy(message[1+lenRecoverableCr:], h[:])
	message[lenSignature-1] = 0xBC
	m := new(big.Int).SetBytes(message)
	sig := new(big.Int).Exp(m, rootKey.D, rootKey.N)
	sigBytes := make([]byte, lenSignature)
	sig.FillBytes(sigBytes)
	caCert := append(sigBytes, cn...)

	cardCert := buildCertificate(t, memberKey, make([]byte, lenCn))

	if err := VerifyChain(caCert, cardCert); err != nil {
		t.Fatalf("VerifyChain() = %v, want nil", err)
	}
}

func TestRecoverContentRoundTrips(t *testing.T) {
	cr := make([]byte, lenRecoverableCr)
	cn := make([]byte, lenCn)
	for i := range cr {
		cr[i] = byte(i)
	}
	for i := range cn {
		cn[i] = byte(200 + i)
	}
	content := append(append([]byte{}, cr...), cn...)
	h := sha1.Sum(content)

	message := make([]byte, lenSignature)
	message[0] = 0x6A
	copy(message[1:], cr)
	copy(message[1+lenRecoverableCr:], h[:])
	message[lenSignature-1] = 0xBC

	got, ok := recoverContent(message, cn)
	if !ok {
		t.Fatal("expected recoverContent to succeed")
	}
	if len(got) != lenRecoveredContent {
		t.Fatalf("recovered content length = %d, want %d", len(got), lenRecoveredContent)
	}

	message[0] = 0x00
	if _, ok := recoverContent(message, cn); ok {
		t.Fatal("expected envelope check to fail on corrupted header byte")
	}
}

func TestMemberKeyFromContent(t *testing.T) {
	content := make([]byte, lenRecoveredContent)
	modulus := make([]byte, memberModulusLen)
	for i := range modulus {
		modulus[i] = byte(i + 1)
	}
	exponent := []byte{0, 0, 0, 0, 0, 1, 0, 1}
	copy(content[memberModulusOffset:], modulus)
	copy(content[memberExponentOffset:], exponent)

	key, ok := memberKeyFromContent(content)
	if !ok {
		t.Fatal("expected memberKeyFromContent to succeed")
	}
	if key.N.Cmp(new(big.Int).SetBytes(modulus)) != 0 {
		t.Fatal("recovered modulus mismatch")
	}
	if key.E.Cmp(new(big.Int).SetBytes(exponent)) != 0 {
		t.Fatal("recovered exponent mismatch")
	}
}

func TestVerifyChainRejectsTruncatedCertificates(t *testing.T) {
	err := VerifyChain([]byte{0x01, 0x02}, []byte{0x01, 0x02})
	if err != ErrCertificateDataTruncated {
		t.Fatalf("err = %v, want ErrCertificateDataTruncated", err)
	}
}

func TestVerifyChainRejectsCorruptedSignature(t *testing.T) {
	rootKey, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatalf("generate root key: %v", err)
	}
	origModulus, origExponent := euRootModulus, euRootExponent
	euRootModulus, euRootExponent = rootKey.N, big.NewInt(int64(rootKey.E))
	t.Cleanup(func() { euRootModulus, euRootExponent = origModulus, origExponent })

	caCert := buildCertificate(t, rootKey, make([]byte, lenCn))
	caCert[0] ^= 0xFF // flip a bit of the signature
	cardCert := buildCertificate(t, rootKey, make([]byte, lenCn))

	if err := VerifyChain(caCert, cardCert); err == nil {
		t.Fatal("expected a corrupted CA signature to fail verification")
	}
}
