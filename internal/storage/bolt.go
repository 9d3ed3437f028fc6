package storage

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/ugorji/go/codec"
	"go.etcd.io/bbolt"

	"cadlayout/internal/model"
)

var (
	runsBucket          = []byte("runs")
	generationsBucket   = []byte("generations")
	distributionsBucket = []byte("distributions")
)

// BoltStore keeps run history in a single bbolt file. Records are encoded with
// the ugorji JSON handle.
type BoltStore struct {
	path string

	mu sync.RWMutex
	db *bbolt.DB
	mh codec.JsonHandle
}

func NewBoltStore(path string) *BoltStore {
	return &BoltStore{path: path}
}

func (s *BoltStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("bbolt path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := bbolt.Open(s.path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return errors.Wrapf(err, "open bbolt store %s", s.path)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{runsBucket, generationsBucket, distributionsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return errors.Wrapf(err, "create bucket %s", name)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *BoltStore) SaveRun(_ context.Context, run model.RunRecord) error {
	if run.ID == "" {
		return errors.New("empty run id")
	}
	return s.put(runsBucket, run.ID, run)
}

func (s *BoltStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	var run model.RunRecord
	found, err := s.get(runsBucket, id, &run)
	if err != nil || !found {
		return model.RunRecord{}, false, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.RunRecord{}, false, errors.Wrapf(err, "decode run %s", id)
	}
	return run, true, nil
}

func (s *BoltStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	var runs []model.RunRecord
	err = db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(runsBucket)
		runs = make([]model.RunRecord, 0, b.Stats().KeyN)
		return b.ForEach(func(k, v []byte) error {
			var run model.RunRecord
			if err := s.decode(v, &run); err != nil {
				return errors.Wrapf(err, "decode run %s", k)
			}
			if err := checkVersion(run.VersionedRecord); err != nil {
				return errors.Wrapf(err, "decode run %s", k)
			}
			runs = append(runs, run)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortRuns(runs)
	return runs, nil
}

func (s *BoltStore) SaveGenerations(_ context.Context, runID string, diagnostics []model.GenerationDiagnostics) error {
	return s.put(generationsBucket, runID, diagnostics)
}

func (s *BoltStore) GetGenerations(_ context.Context, runID string) ([]model.GenerationDiagnostics, bool, error) {
	var diagnostics []model.GenerationDiagnostics
	found, err := s.get(generationsBucket, runID, &diagnostics)
	if err != nil || !found {
		return nil, false, err
	}
	return diagnostics, true, nil
}

func (s *BoltStore) SaveDistribution(_ context.Context, runID string, distribution model.Distribution) error {
	return s.put(distributionsBucket, runID, distribution)
}

func (s *BoltStore) GetDistribution(_ context.Context, runID string) (model.Distribution, bool, error) {
	var distribution model.Distribution
	found, err := s.get(distributionsBucket, runID, &distribution)
	if err != nil || !found {
		return model.Distribution{}, false, err
	}
	if err := checkVersion(distribution.VersionedRecord); err != nil {
		return model.Distribution{}, false, errors.Wrapf(err, "decode distribution %s", runID)
	}
	return distribution, true, nil
}

func (s *BoltStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *BoltStore) put(bucket []byte, key string, value any) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	var output []byte
	if err := codec.NewEncoderBytes(&output, &s.mh).Encode(value); err != nil {
		return errors.Wrapf(err, "encode %s/%s", bucket, key)
	}
	return db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), output)
	})
}

func (s *BoltStore) get(bucket []byte, key string, out any) (bool, error) {
	db, err := s.getDB()
	if err != nil {
		return false, err
	}

	var data []byte
	err = db.View(func(tx *bbolt.Tx) error {
		// Values are only valid inside the transaction.
		data = bytes.Clone(tx.Bucket(bucket).Get([]byte(key)))
		return nil
	})
	if err != nil || data == nil {
		return false, err
	}
	if err := s.decode(data, out); err != nil {
		return false, errors.Wrapf(err, "decode %s/%s", bucket, key)
	}
	return true, nil
}

func (s *BoltStore) decode(data []byte, out any) error {
	return codec.NewDecoderBytes(data, &s.mh).Decode(out)
}

func (s *BoltStore) getDB() (*bbolt.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}
