package params

import (
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound reports a cache miss for the requested bit size.
var ErrNotFound = errors.New("params: no cached group")

// Store caches generated groups in a SQLite database keyed by prime size.
// Only public values are stored; private exponents never touch disk.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if necessary) the group cache at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("params: opening cache: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS dh_groups (
			bits      INTEGER PRIMARY KEY,
			prime     TEXT NOT NULL,
			generator TEXT NOT NULL,
			created   TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("params: creating dh_groups table: %w", err)
	}

	return &Store{db: db}, nil
}

// Load returns the cached group for the given prime size.
func (s *Store) Load(bits int) (Group, error) {
	var primeHex, genHex string
	err := s.db.QueryRow(
		"SELECT prime, generator FROM dh_groups WHERE bits = ?", bits,
	).Scan(&primeHex, &genHex)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Group{}, ErrNotFound
		}
		return Group{}, fmt.Errorf("params: loading group: %w", err)
	}

	p, ok := new(big.Int).SetString(primeHex, 16)
	if !ok {
		return Group{}, fmt.Errorf("params: corrupt prime for %d bits", bits)
	}
	g, ok := new(big.Int).SetString(genHex, 16)
	if !ok {
		return Group{}, fmt.Errorf("params: corrupt generator for %d bits", bits)
	}

	group := Group{P: p, G: g}
	if err := group.Validate(); err != nil {
		return Group{}, fmt.Errorf("cached group for %d bits: %w", bits, err)
	}
	return group, nil
}

// Save stores a group under its prime's bit length, replacing any previous
// entry of the same size.
func (s *Store) Save(group Group) error {
	if err := group.Validate(); err != nil {
		return err
	}
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO dh_groups (bits, prime, generator, created) VALUES (?, ?, ?, ?)",
		group.P.BitLen(), group.P.Text(16), group.G.Text(16), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("params: saving group: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
