package geocode

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const placesSchema = `
CREATE TABLE IF NOT EXISTS places (
	id   INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	lat  REAL NOT NULL,
	lon  REAL NOT NULL
);
`

// PlacesStore is the local nearest-match fallback table. Ordering is by
// squared coordinate difference, not true distance; for a dense local
// dataset the approximation is acceptable.
type PlacesStore struct {
	pool *sqlitex.Pool
}

// OpenPlaces opens (and if needed creates) the places database.
func OpenPlaces(path string) (*PlacesStore, error) {
	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		PoolSize: 2,
		PrepareConn: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, placesSchema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("geocode: opening places db %q: %w", path, err)
	}
	return &PlacesStore{pool: pool}, nil
}

// Close closes the underlying connection pool.
func (s *PlacesStore) Close() error {
	return s.pool.Close()
}

// Add inserts a named place. Used for seeding and tests.
func (s *PlacesStore) Add(ctx context.Context, name string, lat, lon float64) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("geocode: add place: %w", err)
	}
	defer s.pool.Put(conn)

	return sqlitex.Execute(conn,
		"INSERT INTO places (name, lat, lon) VALUES (?, ?, ?)",
		&sqlitex.ExecOptions{Args: []any{name, lat, lon}})
}

// Nearest returns the place whose coordinates are closest to (lat, lon) by
// squared coordinate difference. The second return is false when the table
// is empty.
func (s *PlacesStore) Nearest(ctx context.Context, lat, lon float64) (Place, bool, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return Place{}, false, fmt.Errorf("geocode: nearest place: %w", err)
	}
	defer s.pool.Put(conn)

	var place Place
	found := false
	err = sqlitex.Execute(conn,
		`SELECT name, lat, lon,
			((lat - ?1) * (lat - ?1) + (lon - ?2) * (lon - ?2)) AS distance
		FROM places
		ORDER BY distance ASC
		LIMIT 1`,
		&sqlitex.ExecOptions{
			Args: []any{lat, lon},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				place.Name = stmt.ColumnText(0)
				place.Coordinates = &Coordinates{
					Lat: stmt.ColumnFloat(1),
					Lon: stmt.ColumnFloat(2),
				}
				return nil
			},
		})
	if err != nil {
		return Place{}, false, fmt.Errorf("geocode: nearest place: %w", err)
	}
	return place, found, nil
}
