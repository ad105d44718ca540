package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"

	"golang.org/x/crypto/argon2"

	"github.com/ajkula/GoBatchPrint/domain/port/outbound"
)

// keySalt separates journal keys from any other use of the machine id
var keySalt = []byte("gobatchprint-journal-key-v1")

type AesCryptoService struct{}

func NewAESCryptoService() outbound.CryptoService {
	return &AesCryptoService{}
}

func (c *AesCryptoService) Encrypt(data []byte, key [32]byte) (encrypted []byte, nonce []byte, err error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonceBytes := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonceBytes); err != nil {
		return nil, nil, err
	}

	ciphertext := gcm.Seal(nil, nonceBytes, data, nil)
	return ciphertext, nonceBytes, nil
}

func (c *AesCryptoService) Decrypt(encrypted []byte, nonce []byte, key [32]byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	return gcm.Open(nil, nonce, encrypted, nil)
}

// DeriveKey stretches a host secret into an AES-256 key with Argon2id
func (c *AesCryptoService) DeriveKey(secret string) [32]byte {
	var key [32]byte
	copy(key[:], argon2.IDKey([]byte(secret), keySalt, 1, 64*1024, 4, 32))
	return key
}

func newGCM(key [32]byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
