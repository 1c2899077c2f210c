package identity

import (
	"encoding/base64"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withCIMasterKey(t *testing.T) {
	t.Helper()
	os.Setenv("CI", "true")
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	os.Setenv("INTENT_MASTER_KEY", base64.StdEncoding.EncodeToString(key))
	resetEncryptionKeyCacheForTests()
	t.Cleanup(func() {
		os.Unsetenv("CI")
		os.Unsetenv("INTENT_MASTER_KEY")
		resetEncryptionKeyCacheForTests()
	})
}

func TestGenerateEd25519Keypair(t *testing.T) {
	priv, pub, err := GenerateEd25519Keypair()
	require.NoError(t, err)
	assert.Len(t, priv, 64)
	assert.Len(t, pub, 32)
}

func TestDeriveDID(t *testing.T) {
	_, pub, err := GenerateEd25519Keypair()
	require.NoError(t, err)

	did := DeriveDID(pub)
	assert.True(t, strings.HasPrefix(did, "did:key:z"))

	// Deterministic: same public key always yields the same DID.
	assert.Equal(t, did, DeriveDID(pub))
}

func TestGetEncryptionKeyFromEnv(t *testing.T) {
	withCIMasterKey(t)

	key, err := GetEncryptionKey()
	require.NoError(t, err)
	assert.Len(t, key, 32)
}

func TestGetEncryptionKeyMissingOutsideCI(t *testing.T) {
	os.Unsetenv("CI")
	os.Unsetenv("INTENT_MASTER_KEY")
	resetEncryptionKeyCacheForTests()
	t.Cleanup(resetEncryptionKeyCacheForTests)

	_, err := GetEncryptionKey()
	assert.ErrorIs(t, err, ErrNoEncryptionKey)
}

func TestGetEncryptionKeyInvalidMasterKey(t *testing.T) {
	os.Setenv("CI", "true")
	os.Setenv("INTENT_MASTER_KEY", "not-valid-base64!!")
	resetEncryptionKeyCacheForTests()
	t.Cleanup(func() {
		os.Unsetenv("CI")
		os.Unsetenv("INTENT_MASTER_KEY")
		resetEncryptionKeyCacheForTests()
	})

	_, err := GetEncryptionKey()
	assert.ErrorIs(t, err, ErrInvalidMasterKey)
}

func TestEncryptDecryptKeyDataRoundTrip(t *testing.T) {
	withCIMasterKey(t)

	type payload struct {
		Foo string
		Bar int
	}
	in := payload{Foo: "hello", Bar: 42}

	encrypted, err := EncryptKeyData(in)
	require.NoError(t, err)
	assert.NotEmpty(t, encrypted)

	var out payload
	require.NoError(t, DecryptKeyData(encrypted, &out))
	assert.Equal(t, in, out)
}

func TestDecryptKeyDataTamperedFails(t *testing.T) {
	withCIMasterKey(t)

	encrypted, err := EncryptKeyData(map[string]string{"a": "b"})
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encrypted)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xFF
	tampered := base64.StdEncoding.EncodeToString(raw)

	var out map[string]string
	err = DecryptKeyData(tampered, &out)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestDecryptKeyDataTooShortFails(t *testing.T) {
	withCIMasterKey(t)

	var out map[string]string
	err := DecryptKeyData(base64.StdEncoding.EncodeToString([]byte("short")), &out)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}
