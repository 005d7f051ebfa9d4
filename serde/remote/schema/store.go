package schema

import (
	"encoding/binary"

	"go.etcd.io/bbolt"
	"golang.org/x/xerrors"
)

var (
	bucketByID   = []byte("schemas-by-id")
	bucketByName = []byte("schemas-by-name")
)

// Store is the local store of schema assignments, mapping record namespaces
// to stable numeric identifiers. It plays the role of the schema cache that a
// registry-backed serializer keeps next to the pipeline, so that payload
// frames stay valid across restarts.
//
// The store uses bbolt as the engine.
type Store struct {
	db *bbolt.DB
}

// NewStore opens the store at the given path, creating the file if it does
// not exist.
func NewStore(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0666, &bbolt.Options{})
	if err != nil {
		return nil, xerrors.Errorf("failed to open db: %v", err)
	}

	return &Store{db: db}, nil
}

// Register assigns an identifier to the namespace, or returns the existing
// one. Identifiers are allocated from the bucket sequence and never reused.
func (s *Store) Register(namespace string) (uint32, error) {
	var id uint32

	err := s.db.Update(func(txn *bbolt.Tx) error {
		byName, err := txn.CreateBucketIfNotExists(bucketByName)
		if err != nil {
			return xerrors.Errorf("failed to create bucket: %v", err)
		}

		existing := byName.Get([]byte(namespace))
		if existing != nil {
			id = binary.BigEndian.Uint32(existing)
			return nil
		}

		byID, err := txn.CreateBucketIfNotExists(bucketByID)
		if err != nil {
			return xerrors.Errorf("failed to create bucket: %v", err)
		}

		seq, err := byID.NextSequence()
		if err != nil {
			return xerrors.Errorf("failed to allocate id: %v", err)
		}

		id = uint32(seq)

		buffer := make([]byte, 4)
		binary.BigEndian.PutUint32(buffer, id)

		err = byName.Put([]byte(namespace), buffer)
		if err != nil {
			return xerrors.Errorf("failed to write name index: %v", err)
		}

		err = byID.Put(buffer, []byte(namespace))
		if err != nil {
			return xerrors.Errorf("failed to write id index: %v", err)
		}

		return nil
	})
	if err != nil {
		return 0, xerrors.Errorf("failed to register schema: %v", err)
	}

	return id, nil
}

// Lookup returns the namespace assigned to the identifier.
func (s *Store) Lookup(id uint32) (string, error) {
	buffer := make([]byte, 4)
	binary.BigEndian.PutUint32(buffer, id)

	var namespace string

	err := s.db.View(func(txn *bbolt.Tx) error {
		bucket := txn.Bucket(bucketByID)
		if bucket == nil {
			return xerrors.Errorf("schema id %d not found", id)
		}

		value := bucket.Get(buffer)
		if value == nil {
			return xerrors.Errorf("schema id %d not found", id)
		}

		namespace = string(value)

		return nil
	})
	if err != nil {
		return "", err
	}

	return namespace, nil
}

// Close closes the store. Any call will result in an error after this
// function is called.
func (s *Store) Close() error {
	return s.db.Close()
}
