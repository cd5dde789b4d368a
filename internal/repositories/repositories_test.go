package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/desertthunder/genify/internal/models"
	"github.com/desertthunder/genify/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func TestLookupRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo := NewLookupRepository(setupTestDB(t))
		lookup := models.NewLookup("37i9dQZF1DXcBWIGoYBM5M", "Road Trip", 42, 3, []string{"rec1", "rec2"})

		if err := repo.Create(lookup); err != nil {
			t.Fatalf("failed to create lookup: %v", err)
		}

		if lookup.ID() == "" {
			t.Error("expected ID to be generated")
		}
		if lookup.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", lookup.Sequence())
		}
	})

	t.Run("Create rejects invalid lookup", func(t *testing.T) {
		repo := NewLookupRepository(setupTestDB(t))
		lookup := models.NewLookup("", "No ID", 1, 1, nil)

		if err := repo.Create(lookup); err == nil {
			t.Error("expected validation error for missing playlist id")
		}

		n, err := repo.Count()
		if err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if n != 0 {
			t.Errorf("expected no rows, got %d", n)
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewLookupRepository(setupTestDB(t))
		created := models.NewLookup("pl1", "Mixtape", 10, 2, []string{"a", "b", "c"})
		if err := repo.Create(created); err != nil {
			t.Fatalf("failed to create lookup: %v", err)
		}

		got, err := repo.Get(created.ID())
		if err != nil {
			t.Fatalf("failed to get lookup: %v", err)
		}

		if got.PlaylistID != "pl1" || got.PlaylistName != "Mixtape" {
			t.Errorf("unexpected playlist fields: %+v", got)
		}
		if got.TrackCount != 10 || got.ContributorCount != 2 {
			t.Errorf("unexpected counts: %d tracks, %d contributors", got.TrackCount, got.ContributorCount)
		}
		if len(got.Recommendations) != 3 || got.Recommendations[2] != "c" {
			t.Errorf("unexpected recommendations: %v", got.Recommendations)
		}
		if got.CreatedAt().Sub(created.CreatedAt()).Abs() > time.Second {
			t.Errorf("created_at drifted: %v vs %v", got.CreatedAt(), created.CreatedAt())
		}

		bySeq, err := repo.GetBySequence(created.Sequence())
		if err != nil {
			t.Fatalf("failed to get by sequence: %v", err)
		}
		if bySeq.ID() != created.ID() {
			t.Errorf("expected %s, got %s", created.ID(), bySeq.ID())
		}
	})

	t.Run("Get without recommendations", func(t *testing.T) {
		repo := NewLookupRepository(setupTestDB(t))
		created := models.NewLookup("pl1", "Quiet", 1, 1, nil)
		if err := repo.Create(created); err != nil {
			t.Fatalf("failed to create lookup: %v", err)
		}

		got, err := repo.Get(created.ID())
		if err != nil {
			t.Fatalf("failed to get lookup: %v", err)
		}
		if len(got.Recommendations) != 0 {
			t.Errorf("expected no recommendations, got %v", got.Recommendations)
		}
	})

	t.Run("Get missing", func(t *testing.T) {
		repo := NewLookupRepository(setupTestDB(t))

		if _, err := repo.Get("nope"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if _, err := repo.GetBySequence(99); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewLookupRepository(setupTestDB(t))
		for i := range 5 {
			playlist := "pl-even"
			if i%2 == 1 {
				playlist = "pl-odd"
			}
			if err := repo.Create(models.NewLookup(playlist, fmt.Sprintf("List %d", i), i, 1, nil)); err != nil {
				t.Fatalf("failed to create lookup %d: %v", i, err)
			}
		}

		tests := []struct {
			name      string
			playlist  string
			limit     int
			wantCount int
			wantFirst int
		}{
			{name: "all newest first", wantCount: 5, wantFirst: 5},
			{name: "limited", limit: 2, wantCount: 2, wantFirst: 5},
			{name: "by playlist", playlist: "pl-odd", wantCount: 2, wantFirst: 4},
			{name: "unknown playlist", playlist: "missing", wantCount: 0},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				lookups, err := repo.List(tt.playlist, tt.limit)
				if err != nil {
					t.Fatalf("failed to list lookups: %v", err)
				}
				if len(lookups) != tt.wantCount {
					t.Fatalf("expected %d lookups, got %d", tt.wantCount, len(lookups))
				}
				if tt.wantCount > 0 && lookups[0].Sequence() != tt.wantFirst {
					t.Errorf("expected first sequence %d, got %d", tt.wantFirst, lookups[0].Sequence())
				}
			})
		}

		n, err := repo.Count()
		if err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if n != 5 {
			t.Errorf("expected 5 lookups, got %d", n)
		}
	})
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)

	for want := 1; want <= 3; want++ {
		seq, err := NextSequence(db, "lookups")
		if err != nil {
			t.Fatalf("failed to get sequence: %v", err)
		}
		if seq != want {
			t.Errorf("expected sequence %d, got %d", want, seq)
		}
	}

	t.Run("unknown table", func(t *testing.T) {
		if _, err := NextSequence(db, "nonexistent"); err == nil {
			t.Error("expected error for missing sequence table")
		}
	})

	t.Run("closed database", func(t *testing.T) {
		closed, err := shared.NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		closed.Close()

		if _, err := NextSequence(closed, "lookups"); err == nil {
			t.Error("expected error on closed database")
		}
	})
}
