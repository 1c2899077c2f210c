package identity

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKeyStore(t *testing.T) *KeyStore {
	t.Helper()
	withCIMasterKey(t)
	return NewKeyStore(filepath.Join(t.TempDir(), "keys.json"))
}

func TestKeyStoreAddGetDelete(t *testing.T) {
	store := newTestKeyStore(t)

	priv, pub, err := GenerateEd25519Keypair()
	require.NoError(t, err)
	did := DeriveDID(pub)

	data := identityData{
		DID:           did,
		PrivateKeyB64: string(priv),
		PublicKeyB64:  string(pub),
	}
	require.NoError(t, store.Add(did, data))

	got, err := store.Get(did)
	require.NoError(t, err)
	assert.Equal(t, did, got.DID)

	entries, err := store.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, did, entries[0].DID)

	require.NoError(t, store.Delete(did))
	_, err = store.Get(did)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKeyStoreGetMissing(t *testing.T) {
	store := newTestKeyStore(t)
	_, err := store.Get("did:key:zNotThere")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKeyStoreListSortedNewestFirst(t *testing.T) {
	store := newTestKeyStore(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	oldest := identityData{DID: "did:key:zC", CreatedAt: base}
	middle := identityData{DID: "did:key:zA", CreatedAt: base.Add(time.Hour)}
	newest := identityData{DID: "did:key:zB", CreatedAt: base.Add(2 * time.Hour)}
	for _, data := range []identityData{oldest, middle, newest} {
		require.NoError(t, store.Add(data.DID, data))
	}

	entries, err := store.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "did:key:zB", entries[0].DID)
	assert.Equal(t, "did:key:zA", entries[1].DID)
	assert.Equal(t, "did:key:zC", entries[2].DID)
}

func TestKeyStoreClear(t *testing.T) {
	store := newTestKeyStore(t)
	require.NoError(t, store.Add("did:key:zX", identityData{DID: "did:key:zX"}))
	require.NoError(t, store.Clear())

	entries, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestKeyStoreDeleteMissingIsNoop(t *testing.T) {
	store := newTestKeyStore(t)
	assert.NoError(t, store.Delete("did:key:zMissing"))
}
