// Package storage provides persistent storage for the ensemble toolkit.
// It uses BoltDB as the underlying engine to store fitted model snapshots
// and evaluation-run records, so pipeline results survive restarts and can
// be compared across runs.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	modelsBucket      = "models"      // JSON snapshots of fitted models
	evaluationsBucket = "evaluations" // time-ordered evaluation records
)

// EvalRecord is one evaluation run of a policy or ensemble.
type EvalRecord struct {
	Name          string    `json:"name"`
	Mean          float64   `json:"mean"`
	Std           float64   `json:"std"`
	Episodes      int       `json:"episodes"`
	Deterministic bool      `json:"deterministic"`
	Ts            time.Time `json:"ts"`
}

// Store persists models and evaluation records in a single BoltDB file.
type Store struct {
	db *bbolt.DB
}

// New opens (or creates) the database under dataPath and ensures the
// buckets exist.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, "ensemble-data.db")

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(modelsBucket)); err != nil {
			return fmt.Errorf("create models bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(evaluationsBucket)); err != nil {
			return fmt.Errorf("create evaluations bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database. Call it when the store is no longer needed.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveModel stores a JSON snapshot of a fitted model under its name,
// replacing any previous snapshot. The model must be JSON-serializable;
// every learner in internal/model and internal/policy is.
func (s *Store) SaveModel(name string, model any) error {
	if name == "" {
		return fmt.Errorf("model name must not be empty")
	}
	data, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("marshal model %s: %w", name, err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(modelsBucket)).Put([]byte(name), data)
	})
}

// LoadModel restores a model snapshot into the provided value.
func (s *Store) LoadModel(name string, into any) error {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(modelsBucket)).Get([]byte(name))
		if v == nil {
			return fmt.Errorf("model %s not found", name)
		}
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("unmarshal model %s: %w", name, err)
	}
	return nil
}

// ListModels returns the names of all stored models in key order.
func (s *Store) ListModels() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(modelsBucket)).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

// RecordEvaluation appends an evaluation record. Records are keyed
// "name_timestamp" so range queries by name and time are cheap.
func (s *Store) RecordEvaluation(rec EvalRecord) error {
	if rec.Ts.IsZero() {
		rec.Ts = time.Now()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal evaluation: %w", err)
	}
	key := fmt.Sprintf("%s_%d", rec.Name, rec.Ts.UnixNano())
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(evaluationsBucket)).Put([]byte(key), data)
	})
}

// EvaluationsFor returns the records for one model name within [start, end],
// oldest first.
func (s *Store) EvaluationsFor(name string, start, end time.Time) ([]EvalRecord, error) {
	var records []EvalRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(evaluationsBucket)).Cursor()
		prefix := []byte(name + "_")
		startKey := []byte(fmt.Sprintf("%s_%d", name, start.UnixNano()))
		endKey := []byte(fmt.Sprintf("%s_%d", name, end.UnixNano()))

		for k, v := c.Seek(startKey); k != nil && bytes.Compare(k, endKey) <= 0; k, v = c.Next() {
			if !bytes.HasPrefix(k, prefix) {
				break
			}
			var rec EvalRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("unmarshal evaluation %s: %w", k, err)
			}
			records = append(records, rec)
		}
		return nil
	})
	return records, err
}
