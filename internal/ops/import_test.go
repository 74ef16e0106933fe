package ops

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hpungsan/ivtab/internal/db"
	"github.com/hpungsan/ivtab/internal/errors"
)

func TestImport_HappyPath(t *testing.T) {
	cfg := testConfig(t)
	database := setupDB(t, cfg.BaseDir)
	path := writeImport(t, cfg, "shifts.csv", "1,5,10\n2,8,3\nbad\n")

	out, err := Import(context.Background(), database, cfg, ImportInput{Path: path, Name: "Night Shifts"})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if len(out.ID) != 26 {
		t.Errorf("ID = %q, want 26-char ULID", out.ID)
	}
	if out.Name == nil || *out.Name != "Night Shifts" {
		t.Errorf("Name = %v, want %q", out.Name, "Night Shifts")
	}
	if !out.Weighted {
		t.Error("Weighted = false, want true")
	}
	if out.Stats.Count != 2 || out.Stats.MinStart != 1 || out.Stats.MaxEnd != 8 || out.Stats.TotalWeight != 13 {
		t.Errorf("Stats = %+v, want {2 1 8 13}", out.Stats)
	}
	if out.SkippedRows != 1 || len(out.Warnings) != 1 {
		t.Errorf("SkippedRows = %d, Warnings = %v, want 1", out.SkippedRows, out.Warnings)
	}
	if !filepath.IsAbs(out.SourcePath) {
		t.Errorf("SourcePath = %q, want absolute", out.SourcePath)
	}

	stored, err := db.GetIntervals(context.Background(), database, out.ID)
	if err != nil {
		t.Fatalf("GetIntervals failed: %v", err)
	}
	if len(stored) != 2 {
		t.Errorf("stored %d intervals, want 2", len(stored))
	}
}

func TestImport_Unnamed(t *testing.T) {
	cfg := testConfig(t)
	database := setupDB(t, cfg.BaseDir)
	path := writeImport(t, cfg, "shifts.csv", "1,5\n")

	for i := 0; i < 2; i++ {
		out, err := Import(context.Background(), database, cfg, ImportInput{Path: path})
		if err != nil {
			t.Fatalf("Import #%d failed: %v", i, err)
		}
		if out.Name != nil {
			t.Errorf("Name = %q, want nil", *out.Name)
		}
	}
}

func TestImport_NameCollision(t *testing.T) {
	cfg := testConfig(t)
	database := setupDB(t, cfg.BaseDir)
	path := writeImport(t, cfg, "shifts.csv", "1,5\n")
	ctx := context.Background()

	first, err := Import(ctx, database, cfg, ImportInput{Path: path, Name: "shifts"})
	if err != nil {
		t.Fatalf("first Import failed: %v", err)
	}

	_, err = Import(ctx, database, cfg, ImportInput{Path: path, Name: "  SHIFTS "})
	if !errors.Is(err, errors.ErrNameAlreadyExists) {
		t.Fatalf("second Import error = %v, want NAME_ALREADY_EXISTS", err)
	}

	second, err := Import(ctx, database, cfg, ImportInput{Path: path, Name: "Shifts", Mode: ImportModeReplace})
	if err != nil {
		t.Fatalf("replace Import failed: %v", err)
	}

	got, err := Fetch(ctx, database, FetchInput{Name: "shifts"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got.ID != second.ID {
		t.Errorf("active ID = %q, want %q", got.ID, second.ID)
	}

	if _, err := Fetch(ctx, database, FetchInput{ID: first.ID}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Fetch(replaced) error = %v, want NOT_FOUND", err)
	}
}

func TestImport_InvalidInput(t *testing.T) {
	cfg := testConfig(t)
	database := setupDB(t, cfg.BaseDir)
	path := writeImport(t, cfg, "shifts.csv", "1,5\n")

	tests := []struct {
		name  string
		input ImportInput
	}{
		{"bad mode", ImportInput{Path: path, Mode: "rename"}},
		{"replace without name", ImportInput{Path: path, Mode: ImportModeReplace}},
		{"no path", ImportInput{Name: "x"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Import(context.Background(), database, cfg, tc.input)
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("Import error = %v, want INVALID_REQUEST", err)
			}
		})
	}
}

func TestImport_ReaderErrorStoresNothing(t *testing.T) {
	cfg := testConfig(t)
	database := setupDB(t, cfg.BaseDir)
	path := writeImport(t, cfg, "mixed.csv", "1,5\n2,8,3\n")
	ctx := context.Background()

	_, err := Import(ctx, database, cfg, ImportInput{Path: path, Name: "mixed"})
	if !errors.Is(err, errors.ErrInconsistentArity) {
		t.Fatalf("Import error = %v, want INCONSISTENT_ARITY", err)
	}

	list, err := List(ctx, database, ListInput{IncludeDeleted: true})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if list.Pagination.Total != 0 {
		t.Errorf("Total = %d, want 0", list.Pagination.Total)
	}
}
