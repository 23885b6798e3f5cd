package boltdb

import (
	"encoding/json"
	"path/filepath"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/alanbriolat/download-prompt"
	"github.com/alanbriolat/download-prompt/generic"
	"github.com/alanbriolat/download-prompt/internal/session"
)

func TestDatabase_Preferences(t *testing.T) {
	assert := assert_.New(t)
	path := filepath.Join(t.TempDir(), "prefs.db")

	db, err := New(path)
	require.NoError(t, err)
	prefs, err := db.ReadPreferences()
	require.NoError(t, err)
	assert.Equal(session.Preferences{}, prefs)

	prefs.PromptStatus = generic.Some(download_prompt.PromptStatusDontShow)
	prefs.HandoffCommand = generic.Some("aria2c")
	require.NoError(t, db.WritePreferences(&prefs))
	require.NoError(t, db.Close())

	// Preferences survive reopening
	db, err = New(path)
	require.NoError(t, err)
	defer db.Close()
	loaded, err := db.ReadPreferences()
	require.NoError(t, err)
	assert.Equal(prefs, loaded)
	assert.True(loaded.DefaultDirectory.IsNone())
	assert.True(loaded.HandoffEnabled.IsNone())

	config := loaded.Apply(download_prompt.DefaultConfig)
	assert.Equal(download_prompt.PromptStatusDontShow, config.PromptStatus)
	assert.Equal(download_prompt.DefaultConfig.DefaultDirectory, config.DefaultDirectory)
}

func TestNew_RejectsNewerVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")
	raw, err := bbolt.Open(path, 0600, nil)
	require.NoError(t, err)
	require.NoError(t, raw.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(Buckets.Metadata)
		if err != nil {
			return err
		}
		return bucket.Put(MetadataKeys.Version, generic.Unwrap(json.Marshal(currentVersion+1)))
	}))
	require.NoError(t, raw.Close())

	_, err = New(path)
	assert_.ErrorContains(t, err, "newer than supported")
}
