package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/genify/internal/models"
	"github.com/desertthunder/genify/internal/shared"
)

const lookupColumns = "id, sequence, playlist_id, playlist_name, track_count, contributor_count, recommendations, created_at"

// LookupRepository stores [models.Lookup] rows.
type LookupRepository struct {
	db *sql.DB
}

// NewLookupRepository creates a new LookupRepository with the given database connection
func NewLookupRepository(db *sql.DB) *LookupRepository {
	return &LookupRepository{db: db}
}

// Create inserts a lookup with a generated ID and sequence.
func (r *LookupRepository) Create(lookup *models.Lookup) error {
	if err := lookup.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "lookups")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	if lookup.CreatedAt().IsZero() {
		lookup.SetCreatedAt(time.Now().UTC())
	}

	query := `
		INSERT INTO lookups (id, sequence, playlist_id, playlist_name, track_count, contributor_count, recommendations, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		lookup.PlaylistID,
		lookup.PlaylistName,
		lookup.TrackCount,
		lookup.ContributorCount,
		strings.Join(lookup.Recommendations, ","),
		lookup.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert lookup: %w", err)
	}

	lookup.SetID(id)
	lookup.SetSequence(sequence)
	return nil
}

// Get retrieves a lookup by UUID.
func (r *LookupRepository) Get(id string) (*models.Lookup, error) {
	row := r.db.QueryRow("SELECT "+lookupColumns+" FROM lookups WHERE id = ?", id)
	return scanLookup(row, id)
}

// GetBySequence retrieves a lookup by its sequence number.
func (r *LookupRepository) GetBySequence(sequence int) (*models.Lookup, error) {
	row := r.db.QueryRow("SELECT "+lookupColumns+" FROM lookups WHERE sequence = ?", sequence)
	return scanLookup(row, fmt.Sprintf("#%d", sequence))
}

// List returns the most recent lookups first. A limit of zero or less returns every row.
//
// When playlistID is non-empty only lookups of that playlist are returned.
func (r *LookupRepository) List(playlistID string, limit int) ([]*models.Lookup, error) {
	query := "SELECT " + lookupColumns + " FROM lookups"
	args := []any{}

	if playlistID != "" {
		query += " WHERE playlist_id = ?"
		args = append(args, playlistID)
	}

	query += " ORDER BY sequence DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lookups: %w", err)
	}
	defer rows.Close()

	var lookups []*models.Lookup
	for rows.Next() {
		lookup, err := scanLookup(rows, "")
		if err != nil {
			return nil, err
		}
		lookups = append(lookups, lookup)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return lookups, nil
}

// Count returns the number of stored lookups.
func (r *LookupRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM lookups").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count lookups: %w", err)
	}
	return n, nil
}

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

func scanLookup(s scanner, key string) (*models.Lookup, error) {
	var (
		id               string
		sequence         int
		playlistID       string
		playlistName     string
		trackCount       int
		contributorCount int
		recommendations  string
		createdAt        time.Time
	)

	err := s.Scan(&id, &sequence, &playlistID, &playlistName, &trackCount, &contributorCount, &recommendations, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: lookup %s", shared.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan lookup: %w", err)
	}

	var recs []string
	if recommendations != "" {
		recs = strings.Split(recommendations, ",")
	}

	lookup := models.NewLookup(playlistID, playlistName, trackCount, contributorCount, recs)
	lookup.SetID(id)
	lookup.SetSequence(sequence)
	lookup.SetCreatedAt(createdAt)
	return lookup, nil
}
