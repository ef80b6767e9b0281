package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

const (
	BucketRuns = "runs"
)

var (
	ErrNotFound  = errors.New("run not found")
	ErrAmbiguous = errors.New("run id prefix is ambiguous")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store keeps finished runs in a bbolt file, newest last in key order.
type Store struct {
	db       *bbolt.DB
	filePath string
}

// DefaultPath is $HOME/.solrbench/history.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve home directory")
	}
	return filepath.Join(home, ".solrbench", "history.db"), nil
}

func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "create history directory")
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open history %s", path)
	}

	// Initialize Buckets
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BucketRuns))
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create history bucket")
	}

	return &Store{
		db:       db,
		filePath: path,
	}, nil
}

func (s *Store) Path() string {
	return s.filePath
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// itemKey sorts runs by start time.
func itemKey(item HistoryItem) []byte {
	return []byte(fmt.Sprintf("%020d-%s", item.Timestamp.UnixNano(), item.ID))
}

func (s *Store) Save(item HistoryItem) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketRuns))

		data, err := json.Marshal(item)
		if err != nil {
			return errors.Wrap(err, "marshal history item")
		}

		return b.Put(itemKey(item), data)
	})
}

// List returns up to limit runs, newest first. limit <= 0 returns all.
func (s *Store) List(limit int) ([]HistoryItem, error) {
	var items []HistoryItem

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(BucketRuns)).Cursor()

		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(items) >= limit {
				break
			}

			var item HistoryItem
			if err := json.Unmarshal(v, &item); err != nil {
				return errors.Wrapf(err, "decode history item %s", k)
			}
			items = append(items, item)
		}
		return nil
	})

	return items, err
}

// Get loads the run whose ID is id or starts with id. A prefix matching
// more than one run is rejected.
func (s *Store) Get(id string) (*HistoryItem, error) {
	if id == "" {
		return nil, errors.Wrap(ErrNotFound, "empty id")
	}

	var found []byte
	matches := 0

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(BucketRuns)).Cursor()

		for k, v := c.First(); k != nil; k, v = c.Next() {
			key := string(k)
			runID := key[strings.IndexByte(key, '-')+1:]
			if !strings.HasPrefix(runID, id) {
				continue
			}

			matches++
			if runID == id {
				found, matches = append([]byte(nil), v...), 1
				return nil
			}
			found = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "load run %s", id)
	}

	switch {
	case matches == 0:
		return nil, errors.Wrap(ErrNotFound, id)
	case matches > 1:
		return nil, errors.Wrapf(ErrAmbiguous, "%s matches %d runs", id, matches)
	}

	item := &HistoryItem{}
	if err := json.Unmarshal(found, item); err != nil {
		return nil, errors.Wrapf(err, "decode run %s", id)
	}
	return item, nil
}
