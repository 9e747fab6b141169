// Package persistence stores finished checkout attempts on disk so that an
// operator can audit what happened to a purchase after the fact, in
// particular attempts that ended ambiguous.
package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	boltdb "github.com/andrew-solarstorm/bolt-db"
	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/nft-checkout/internal/domain"
)

const (
	AttemptsBucket = "attempts"

	DefaultDBPath = "./data/checkout.db"
)

type Journal struct {
	db     *boltdb.BoltDatabase
	dbPath string
}

func NewJournal(dbPath string) (*Journal, error) {
	if dbPath == "" {
		dbPath = DefaultDBPath
	}
	os.MkdirAll(filepath.Dir(dbPath), 0755)

	db := boltdb.NewBoltDatabase(dbPath)
	if db == nil {
		return nil, fmt.Errorf("failed to open database at %s", dbPath)
	}

	log.Info().Str("path", dbPath).Msg("[attemptJournal] opened database")

	return &Journal{
		db:     db,
		dbPath: dbPath,
	}, nil
}

func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Record persists a finished attempt. Attempts are written once, after the
// terminal outcome is known; in-flight state is never journaled.
func (j *Journal) Record(attempt *domain.AttemptRecord) error {
	data, err := sonic.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("failed to marshal attempt: %w", err)
	}
	return j.db.Set(AttemptsBucket, []byte(attempt.ID), data)
}

func (j *Journal) Get(id string) (*domain.AttemptRecord, error) {
	data, err := j.db.List(AttemptsBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	value, ok := data[id]
	if !ok {
		return nil, nil
	}
	var attempt domain.AttemptRecord
	if err := sonic.Unmarshal(value, &attempt); err != nil {
		return nil, fmt.Errorf("failed to unmarshal attempt %s: %w", id, err)
	}
	return &attempt, nil
}

// List returns all journaled attempts, most recent first.
func (j *Journal) List() ([]*domain.AttemptRecord, error) {
	data, err := j.db.List(AttemptsBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	attempts := make([]*domain.AttemptRecord, 0, len(data))
	failed := 0
	for id, value := range data {
		var attempt domain.AttemptRecord
		if err := sonic.Unmarshal(value, &attempt); err != nil {
			log.Error().Str("id", id).Err(err).Msg("[attemptJournal] failed to unmarshal attempt, skipping")
			failed++
			continue
		}
		attempts = append(attempts, &attempt)
	}
	sort.Slice(attempts, func(a, b int) bool {
		return attempts[a].StartedAt.After(attempts[b].StartedAt)
	})

	if failed > 0 {
		log.Error().
			Int("total_in_db", len(data)).
			Int("loaded", len(attempts)).
			Int("unmarshal_failed", failed).
			Msg("[attemptJournal] attempt loading completed with errors")
	}

	return attempts, nil
}
