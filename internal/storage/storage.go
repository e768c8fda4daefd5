// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package storage

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gitlab.com/accumulatenetwork/tokenledger/internal/config"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/database/keyvalue"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/database/keyvalue/badger"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/database/keyvalue/bolt"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/database/keyvalue/leveldb"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/database/keyvalue/memory"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/errors"
)

// Store is an open key-value store.
type Store struct {
	keyvalue.Beginner
	closer io.Closer
	typ    config.StorageType
	logger *slog.Logger
}

// Open opens the store described by the configuration. Relative paths are
// resolved against dir.
func Open(cfg config.Storage, dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{typ: cfg.Type, logger: logger.With("module", "storage")}

	path := cfg.Path
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}

	if cfg.Type != config.MemoryStorage {
		err := os.MkdirAll(filepath.Dir(path), 0755)
		if err != nil {
			return nil, errors.UnknownError.WithFormat("create storage directory: %w", err)
		}
	}

	switch cfg.Type {
	case config.MemoryStorage:
		s.Beginner = memory.New()

	case config.BadgerStorage:
		db, err := badger.New(path)
		if err != nil {
			return nil, errors.UnknownError.WithFormat("open badger: %w", err)
		}
		s.Beginner, s.closer = db, db

	case config.BoltStorage:
		db, err := bolt.Open(path)
		if err != nil {
			return nil, errors.UnknownError.WithFormat("open bolt: %w", err)
		}
		s.Beginner, s.closer = db, db

	case config.LevelDBStorage:
		db, err := leveldb.OpenFile(path)
		if err != nil {
			return nil, errors.UnknownError.WithFormat("open leveldb: %w", err)
		}
		s.Beginner, s.closer = db, db

	default:
		return nil, errors.BadRequest.WithFormat("unsupported storage type %q", cfg.Type)
	}

	s.logger.Debug("Opened storage", "type", cfg.Type, "path", path)
	return s, nil
}

// Type returns the storage type.
func (s *Store) Type() config.StorageType { return s.typ }

// Close closes the store. Errors are logged.
func (s *Store) Close() {
	if s.closer == nil {
		return
	}
	err := s.closer.Close()
	if err != nil {
		s.logger.Error("Error while closing storage", "type", s.typ, "error", err)
	}
}
