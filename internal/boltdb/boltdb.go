package boltdb

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/alanbriolat/download-prompt/internal/session"
)

var Buckets = struct {
	Metadata    []byte
	Preferences []byte
}{
	Metadata:    []byte("__metadata__"),
	Preferences: []byte("preferences"),
}

var MetadataKeys = struct {
	Version []byte
}{
	Version: []byte("version"),
}

var PreferenceKeys = struct {
	Current []byte
}{
	Current: []byte("current"),
}

const currentVersion = 1

type Database interface {
	Close() error

	session.Database
}

type database struct {
	*bbolt.DB
}

func New(path string) (_ Database, err error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) (err error) {
		// Ensure buckets exist
		var metadata *bbolt.Bucket
		if metadata, err = tx.CreateBucketIfNotExists(Buckets.Metadata); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(Buckets.Preferences); err != nil {
			return err
		}

		// Get the current version of the database
		var version int
		if versionBytes := metadata.Get(MetadataKeys.Version); versionBytes == nil {
			version = 0
		} else if err = json.Unmarshal(versionBytes, &version); err != nil {
			return err
		}
		if version > currentVersion {
			return fmt.Errorf("database version %d is newer than supported version %d", version, currentVersion)
		}

		// Set the current version of the database
		if versionBytes, err := json.Marshal(currentVersion); err != nil {
			return err
		} else if err = metadata.Put(MetadataKeys.Version, versionBytes); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &database{db}, nil
}

func (d database) ReadPreferences() (prefs session.Preferences, err error) {
	err = d.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(Buckets.Preferences).Get(PreferenceKeys.Current)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &prefs)
	})
	if err != nil {
		return session.Preferences{}, err
	} else {
		return prefs, nil
	}
}

func (d database) WritePreferences(prefs *session.Preferences) error {
	if data, err := json.Marshal(prefs); err != nil {
		return err
	} else {
		err := d.Update(func(tx *bbolt.Tx) error {
			bucket := tx.Bucket(Buckets.Preferences)
			if err := bucket.Put(PreferenceKeys.Current, data); err != nil {
				return err
			}
			return nil
		})
		return err
	}
}
