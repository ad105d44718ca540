package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAESCrypto_EncryptDecrypt(t *testing.T) {
	svc := NewAESCryptoService()
	key := svc.DeriveKey("machine-a")
	plaintext := []byte(`{"reports":[]}`)

	encrypted, nonce, err := svc.Encrypt(plaintext, key)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, encrypted)
	assert.Len(t, nonce, 12)

	decrypted, err := svc.Decrypt(encrypted, nonce, key)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestAESCrypto_FreshNoncePerCall(t *testing.T) {
	svc := NewAESCryptoService()
	key := svc.DeriveKey("machine-a")

	first, nonce1, err := svc.Encrypt([]byte("same"), key)
	require.NoError(t, err)
	second, nonce2, err := svc.Encrypt([]byte("same"), key)
	require.NoError(t, err)

	assert.NotEqual(t, nonce1, nonce2)
	assert.NotEqual(t, first, second)
}

func TestAESCrypto_WrongKeyOrTamperedData(t *testing.T) {
	svc := NewAESCryptoService()
	key := svc.DeriveKey("machine-a")

	encrypted, nonce, err := svc.Encrypt([]byte("history"), key)
	require.NoError(t, err)

	_, err = svc.Decrypt(encrypted, nonce, svc.DeriveKey("machine-b"))
	assert.Error(t, err)

	tampered := append([]byte(nil), encrypted...)
	tampered[0] ^= 0xff
	_, err = svc.Decrypt(tampered, nonce, key)
	assert.Error(t, err)
}

func TestAESCrypto_DeriveKeyIsDeterministic(t *testing.T) {
	svc := NewAESCryptoService()

	assert.Equal(t, svc.DeriveKey("host"), svc.DeriveKey("host"))
	assert.NotEqual(t, svc.DeriveKey("host"), svc.DeriveKey("other-host"))
}
