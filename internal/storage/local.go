// Package storage keeps small opaque blobs on local disk.
package storage

import (
	"time"

	"github.com/boltdb/bolt"
)

var bucketName = []byte("local")

func NewLocal(path string) (*Local, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Local{DB: db}, nil
}

// Local is a key/value blob store in a single bolt bucket.
type Local struct {
	DB *bolt.DB
}

// Close the Local database and release the file lock
func (storage *Local) Close() error {
	return storage.DB.Close()
}

// Get returns a copy of the blob under key, or ok=false when absent.
func (storage *Local) Get(key string) (value []byte, ok bool, err error) {
	err = storage.DB.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v == nil {
			return nil
		}
		value = append([]byte(nil), v...)
		ok = true
		return nil
	})
	return value, ok, err
}

func (storage *Local) Set(key string, value []byte) error {
	return storage.DB.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), value)
	})
}

func (storage *Local) Remove(key string) error {
	return storage.DB.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key))
	})
}
