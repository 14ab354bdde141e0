package keyring

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/nacl/secretbox"
)

// Keyring is the signing/encryption capability injected into the pool. The
// pool treats every output as an opaque byte blob it stores and forwards; it
// never validates cryptographic correctness itself, so the concrete scheme
// can be swapped (e.g. for a post-quantum one) without touching the ledger.
type Keyring interface {
	GenerateKeypair() (publicKey, privateKey []byte, err error)
	Sign(privateKey, message []byte) ([]byte, error)
	Verify(publicKey, message, signature []byte) bool
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

const nonceSize = 24

// Ed25519Keyring signs with ed25519 and seals blobs with nacl secretbox
// (24-byte nonce prefixed to the box). The secretbox key is generated at
// construction and lives only in memory.
type Ed25519Keyring struct {
	sealKey [32]byte
}

// NewEd25519Keyring creates a keyring with a fresh random sealing key.
func NewEd25519Keyring() (*Ed25519Keyring, error) {
	var k Ed25519Keyring
	if _, err := io.ReadFull(rand.Reader, k.sealKey[:]); err != nil {
		return nil, fmt.Errorf("generate sealing key: %w", err)
	}
	return &k, nil
}

func (k *Ed25519Keyring) GenerateKeypair() ([]byte, []byte, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generate ed25519 keypair: %w", err)
	}
	return pub, priv, nil
}

func (k *Ed25519Keyring) Sign(privateKey, message []byte) ([]byte, error) {
	if len(privateKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("expected %d-byte private key, got %d", ed25519.PrivateKeySize, len(privateKey))
	}
	return ed25519.Sign(ed25519.PrivateKey(privateKey), message), nil
}

func (k *Ed25519Keyring) Verify(publicKey, message, signature []byte) bool {
	if len(publicKey) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), message, signature)
}

// Encrypt seals plaintext and returns nonce||box.
func (k *Ed25519Keyring) Encrypt(plaintext []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, &k.sealKey), nil
}

// Decrypt opens a blob produced by Encrypt.
func (k *Ed25519Keyring) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short: %d bytes", len(ciphertext))
	}
	var nonce [nonceSize]byte
	copy(nonce[:], ciphertext[:nonceSize])

	plaintext, ok := secretbox.Open(nil, ciphertext[nonceSize:], &nonce, &k.sealKey)
	if !ok {
		return nil, fmt.Errorf("failed to open sealed blob")
	}
	return plaintext, nil
}

// EncodeKey renders key material as base58 for logs and API responses.
func EncodeKey(key []byte) string {
	return base58.Encode(key)
}

// DecodeKey parses base58-rendered key material.
func DecodeKey(s string) ([]byte, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base58 key: %w", err)
	}
	return raw, nil
}
