package cache

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/blake3"
	"go.etcd.io/bbolt"

	"meterc/internal/diag"
	"meterc/internal/source"
)

// Current schema version - increment when Entry format changes
const entrySchemaVersion uint16 = 1

const bucketName = "validation"

// Key identifies a (schema id, document content) pair.
type Key [32]byte

func (k Key) String() string { return hex.EncodeToString(k[:]) }

// KeyFor derives the cache key from the schema id and the content hash.
func KeyFor(schemaID string, content source.Hash) Key {
	h := blake3.New()
	_, _ = h.Write([]byte(schemaID))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(content[:])
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

// Entry is the cached outcome of validating one document.
type Entry struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	SchemaID string
	Stored   time.Time
	Diags    []CachedDiagnostic
}

// CachedDiagnostic is a diagnostic without its path; the path is re-attached
// on read because identical content may live in several files.
type CachedDiagnostic struct {
	Severity uint8
	Code     uint16
	Line     uint32
	Col      uint32
	Header   string
	Message  string
	Notes    []string
}

// Store keeps validation results in a bbolt database.
type Store struct {
	db  *bbolt.DB
	log zerolog.Logger
}

// DefaultPath returns the standard location of the cache database.
func DefaultPath(app string) (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, app, "validation.db"), nil
}

// Open opens (or creates) the cache database at path.
func Open(path string, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		// обычно файл держит другой процесс
		return nil, fmt.Errorf("failed to open cache (file may be locked by another process): %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}
	log.Debug().Str("db_path", path).Msg("validation cache opened")
	return &Store{db: db, log: log}, nil
}

// Get returns the cached diagnostics for key, with path attached.
func (s *Store) Get(key Key, path string) ([]diag.Diagnostic, bool, error) {
	if s == nil {
		return nil, false, nil
	}
	var entry Entry
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return errors.New("bucket not found")
		}
		val := b.Get(key[:])
		if val == nil {
			return nil
		}
		if err := msgpack.Unmarshal(val, &entry); err != nil {
			return fmt.Errorf("decode entry %s: %w", key, err)
		}
		found = entry.Schema == entrySchemaVersion
		return nil
	})
	if err != nil || !found {
		return nil, false, err
	}
	out := make([]diag.Diagnostic, len(entry.Diags))
	for i, d := range entry.Diags {
		out[i] = diag.Diagnostic{
			Severity: diag.Severity(d.Severity),
			Code:     diag.Code(d.Code),
			Path:     path,
			Pos:      source.LineCol{Line: d.Line, Col: d.Col},
			Header:   d.Header,
			Message:  d.Message,
			Notes:    d.Notes,
		}
	}
	return out, true, nil
}

// Put stores the diagnostics produced for key.
func (s *Store) Put(key Key, schemaID string, diags []diag.Diagnostic) error {
	if s == nil {
		return nil
	}
	entry := Entry{Schema: entrySchemaVersion, SchemaID: schemaID, Stored: time.Now().UTC()}
	for _, d := range diags {
		entry.Diags = append(entry.Diags, CachedDiagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Line:     d.Pos.Line,
			Col:      d.Pos.Col,
			Header:   d.Header,
			Message:  d.Message,
			Notes:    d.Notes,
		})
	}
	val, err := msgpack.Marshal(&entry)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return errors.New("bucket not found")
		}
		return b.Put(key[:], val)
	})
	if err != nil {
		return fmt.Errorf("failed to store entry: %w", err)
	}
	return nil
}

// Len returns the number of cached entries.
func (s *Store) Len() (int, error) {
	if s == nil {
		return 0, nil
	}
	n := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return errors.New("bucket not found")
		}
		n = b.Stats().KeyN
		return nil
	})
	return n, err
}

// DropAll clears every cached entry.
func (s *Store) DropAll() error {
	if s == nil {
		return nil
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	s.log.Debug().Msg("closing validation cache")
	return s.db.Close()
}
