// Package lfserver exposes a small HTTP API for compiling and running
// lexicons remotely: log in, submit a lexicon section for compilation,
// fetch the compiled automaton's metadata, and run it over posted input.
package lfserver

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dekarrin/rezi"
	"github.com/google/uuid"
	sqlitelib "modernc.org/sqlite"

	"github.com/dekarrin/lexforge/internal/automaton"
)

// ErrNotFound is returned by a Store when the requested record doesn't
// exist.
var ErrNotFound = errors.New("lfserver: not found")

// CompiledLexicon is a stored, already-built automaton plus the metadata
// a client needs to refer back to it.
type CompiledLexicon struct {
	ID        uuid.UUID
	Name      string
	Section   string
	Automaton *automaton.Automaton
	Created   time.Time
}

// Store persists CompiledLexicons across requests.
type Store interface {
	Create(ctx context.Context, name, section string, a *automaton.Automaton) (CompiledLexicon, error)
	GetByID(ctx context.Context, id uuid.UUID) (CompiledLexicon, error)
	GetAll(ctx context.Context) ([]CompiledLexicon, error)
}

// memStore is an in-memory Store, the default when no persistent backing
// is configured - lost on restart, same tradeoff the teacher's inmem DAO
// makes for its users repository.
type memStore struct {
	mu   sync.Mutex
	data map[uuid.UUID]CompiledLexicon
}

// NewMemStore returns a Store backed by nothing but process memory.
func NewMemStore() Store {
	return &memStore{data: map[uuid.UUID]CompiledLexicon{}}
}

func (m *memStore) Create(ctx context.Context, name, section string, a *automaton.Automaton) (CompiledLexicon, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return CompiledLexicon{}, fmt.Errorf("lfserver: generate id: %w", err)
	}
	cl := CompiledLexicon{ID: id, Name: name, Section: section, Automaton: a, Created: time.Now()}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[id] = cl
	return cl, nil
}

func (m *memStore) GetByID(ctx context.Context, id uuid.UUID) (CompiledLexicon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cl, ok := m.data[id]
	if !ok {
		return CompiledLexicon{}, ErrNotFound
	}
	return cl, nil
}

func (m *memStore) GetAll(ctx context.Context) ([]CompiledLexicon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]CompiledLexicon, 0, len(m.data))
	for _, cl := range m.data {
		all = append(all, cl)
	}
	return all, nil
}

// sqliteStore is a Store backed by a sqlite file, storing the automaton's
// rezi-encoded binary form so a compile doesn't need to be re-run after a
// server restart.
type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if necessary creates) a sqlite database at
// file and returns a Store backed by it.
func NewSQLiteStore(file string) (Store, error) {
	db, err := sql.Open("sqlite", file)
	if err != nil {
		return nil, wrapDBError(err)
	}

	s := &sqliteStore{db: db}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *sqliteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS compiled_lexicons (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		section TEXT NOT NULL,
		automaton_data TEXT NOT NULL,
		created INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (s *sqliteStore) Create(ctx context.Context, name, section string, a *automaton.Automaton) (CompiledLexicon, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return CompiledLexicon{}, fmt.Errorf("lfserver: generate id: %w", err)
	}

	data, err := a.MarshalBinary()
	if err != nil {
		return CompiledLexicon{}, fmt.Errorf("lfserver: marshal automaton: %w", err)
	}
	encData := base64.StdEncoding.EncodeToString(rezi.EncBinary(data))

	now := time.Now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO compiled_lexicons (id, name, section, automaton_data, created) VALUES (?, ?, ?, ?, ?)`,
		id.String(), name, section, encData, now.Unix(),
	)
	if err != nil {
		return CompiledLexicon{}, wrapDBError(err)
	}

	return CompiledLexicon{ID: id, Name: name, Section: section, Automaton: a, Created: now}, nil
}

func (s *sqliteStore) GetByID(ctx context.Context, id uuid.UUID) (CompiledLexicon, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT name, section, automaton_data, created FROM compiled_lexicons WHERE id = ?`, id.String())
	return scanCompiledLexicon(id, row)
}

func (s *sqliteStore) GetAll(ctx context.Context) ([]CompiledLexicon, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, section, automaton_data, created FROM compiled_lexicons;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []CompiledLexicon
	for rows.Next() {
		var idStr, name, section, encData string
		var createdUnix int64
		if err := rows.Scan(&idStr, &name, &section, &encData, &createdUnix); err != nil {
			return nil, wrapDBError(err)
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("lfserver: stored id %q is not a valid uuid: %w", idStr, err)
		}
		a, err := decodeAutomaton(encData)
		if err != nil {
			return nil, err
		}
		all = append(all, CompiledLexicon{ID: id, Name: name, Section: section, Automaton: a, Created: time.Unix(createdUnix, 0)})
	}
	return all, nil
}

func scanCompiledLexicon(id uuid.UUID, row *sql.Row) (CompiledLexicon, error) {
	var name, section, encData string
	var createdUnix int64
	if err := row.Scan(&name, &section, &encData, &createdUnix); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CompiledLexicon{}, ErrNotFound
		}
		return CompiledLexicon{}, wrapDBError(err)
	}
	a, err := decodeAutomaton(encData)
	if err != nil {
		return CompiledLexicon{}, err
	}
	return CompiledLexicon{ID: id, Name: name, Section: section, Automaton: a, Created: time.Unix(createdUnix, 0)}, nil
}

func decodeAutomaton(encData string) (*automaton.Automaton, error) {
	raw, err := base64.StdEncoding.DecodeString(encData)
	if err != nil {
		return nil, fmt.Errorf("lfserver: decode stored automaton: %w", err)
	}
	var data []byte
	n, err := rezi.DecBinary(raw, &data)
	if err != nil {
		return nil, fmt.Errorf("lfserver: rezi decode stored automaton: %w", err)
	}
	if n != len(raw) {
		return nil, fmt.Errorf("lfserver: rezi decode consumed %d/%d bytes", n, len(raw))
	}

	a := &automaton.Automaton{}
	if err := a.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("lfserver: unmarshal stored automaton: %w", err)
	}
	return a, nil
}

func wrapDBError(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr *sqlitelib.Error
	if errors.As(err, &sqliteErr) {
		return fmt.Errorf("lfserver: sqlite: %s", sqlitelib.ErrorCodeString[sqliteErr.Code()])
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
