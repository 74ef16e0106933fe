package ops

import (
	"database/sql"
	"testing"

	"github.com/hpungsan/ivtab/internal/db"
	"github.com/hpungsan/ivtab/internal/errors"
)

func setupDB(t *testing.T, baseDir string) *sql.DB {
	t.Helper()
	database, err := db.Init(baseDir)
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func boolPtr(b bool) *bool { return &b }

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		setName  string
		wantCode errors.ErrorCode
		wantByID bool
		wantName string
	}{
		{name: "id only", id: "01ABC", wantByID: true},
		{name: "name only", setName: "  Night   Shifts ", wantName: "night shifts"},
		{name: "both", id: "01ABC", setName: "shifts", wantCode: errors.ErrAmbiguousAddressing},
		{name: "neither", wantCode: errors.ErrInvalidRequest},
		{name: "whitespace only", id: "  ", setName: "\t", wantCode: errors.ErrInvalidRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			addr, err := ValidateAddress(tc.id, tc.setName)
			if tc.wantCode != "" {
				if !errors.Is(err, tc.wantCode) {
					t.Fatalf("ValidateAddress error = %v, want %s", err, tc.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateAddress failed: %v", err)
			}
			if addr.ByID != tc.wantByID {
				t.Errorf("ByID = %v, want %v", addr.ByID, tc.wantByID)
			}
			if addr.Name != tc.wantName {
				t.Errorf("Name = %q, want %q", addr.Name, tc.wantName)
			}
		})
	}
}
