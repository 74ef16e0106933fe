package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/ivtab/internal/config"
	"github.com/hpungsan/ivtab/internal/db"
	"github.com/hpungsan/ivtab/internal/errors"
)

// testConfig returns a config rooted in a fresh temp base dir with imports/ and exports/.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.BaseDir = t.TempDir()
	for _, sub := range []string{db.ImportsDir, db.ExportsDir} {
		if err := os.MkdirAll(filepath.Join(cfg.BaseDir, sub), 0700); err != nil {
			t.Fatalf("failed to create %s: %v", sub, err)
		}
	}
	return cfg
}

// writeImport writes content to <base>/imports/<name> and returns its path.
func writeImport(t *testing.T, cfg *config.Config, name, content string) string {
	t.Helper()
	path := filepath.Join(cfg.BaseDir, db.ImportsDir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func TestValidatePath_Rejected(t *testing.T) {
	cfg := testConfig(t)
	imports := filepath.Join(cfg.BaseDir, db.ImportsDir)

	tests := []struct {
		name string
		path string
		mode PathCheckMode
	}{
		{"empty", "", PathCheckRead},
		{"parent traversal", "../shifts.csv", PathCheckWrite},
		{"mid-path traversal", imports + "/../../etc/shifts.csv", PathCheckRead},
		{"no extension", filepath.Join(imports, "shifts"), PathCheckWrite},
		{"json extension", filepath.Join(imports, "shifts.json"), PathCheckWrite},
		{"outside allowed dirs", "/tmp/shifts.csv", PathCheckWrite},
		{"write into imports", filepath.Join(imports, "out.csv"), PathCheckWrite},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePath(tc.path, tc.mode, cfg)
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("ValidatePath(%q) = %v, want INVALID_REQUEST", tc.path, err)
			}
		})
	}
}

func TestValidatePath_BaseDirs(t *testing.T) {
	cfg := testConfig(t)

	path := writeImport(t, cfg, "shifts.CSV", "1,2\n")
	if err := ValidatePath(path, PathCheckRead, cfg); err != nil {
		t.Errorf("read from imports: %v", err)
	}

	out := filepath.Join(cfg.BaseDir, db.ExportsDir, "out.txt")
	if err := ValidatePath(out, PathCheckWrite, cfg); err != nil {
		t.Errorf("write to exports: %v", err)
	}
}

func TestValidatePath_AllowedPaths(t *testing.T) {
	cfg := testConfig(t)
	allowed := t.TempDir()
	cfg.AllowedPaths = []string{allowed, "relative/ignored"}

	path := filepath.Join(allowed, "shifts.csv")
	if err := os.WriteFile(path, []byte("1,2\n"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ValidatePath(path, PathCheckRead, cfg); err != nil {
		t.Errorf("allowed path read: %v", err)
	}

	nested := filepath.Join(allowed, "sub", "shifts.csv")
	if err := ValidatePath(nested, PathCheckWrite, cfg); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("nested path = %v, want INVALID_REQUEST", err)
	}
}

func TestValidatePath_AllowUnsafePaths(t *testing.T) {
	cfg := testConfig(t)
	cfg.AllowUnsafePaths = true
	dir := t.TempDir()

	if err := ValidatePath(filepath.Join(dir, "out.csv"), PathCheckWrite, cfg); err != nil {
		t.Errorf("unsafe write: %v", err)
	}

	err := ValidatePath(filepath.Join(dir, "missing.csv"), PathCheckRead, cfg)
	if !errors.Is(err, errors.ErrFileNotFound) {
		t.Errorf("missing file = %v, want FILE_NOT_FOUND", err)
	}
}

func TestValidatePath_FileNotFound(t *testing.T) {
	cfg := testConfig(t)

	err := ValidatePath(filepath.Join(cfg.BaseDir, db.ImportsDir, "missing.csv"), PathCheckRead, cfg)
	if !errors.Is(err, errors.ErrFileNotFound) {
		t.Errorf("ValidatePath = %v, want FILE_NOT_FOUND", err)
	}
}

func TestValidatePath_Symlinks(t *testing.T) {
	for _, unsafe := range []bool{false, true} {
		cfg := testConfig(t)
		cfg.AllowUnsafePaths = unsafe

		target := filepath.Join(t.TempDir(), "secret.csv")
		if err := os.WriteFile(target, []byte("1,2\n"), 0600); err != nil {
			t.Fatalf("write: %v", err)
		}
		link := filepath.Join(cfg.BaseDir, db.ImportsDir, "link.csv")
		if err := os.Symlink(target, link); err != nil {
			t.Skipf("cannot create symlink: %v", err)
		}

		for _, mode := range []PathCheckMode{PathCheckRead, PathCheckWrite} {
			err := ValidatePath(link, mode, cfg)
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("unsafe=%v mode=%d: ValidatePath = %v, want INVALID_REQUEST", unsafe, mode, err)
			}
		}
	}
}

func TestContainsTraversal(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/data/shifts.csv", false},
		{"../shifts.csv", true},
		{"/data/../etc/passwd", true},
		{"./shifts.csv", false},
		{"shifts..v2.csv", false},
	}

	for _, tc := range tests {
		if got := containsTraversal(tc.path); got != tc.want {
			t.Errorf("containsTraversal(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestSanitizeForFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"night shifts", "night shifts"},
		{"a/b\\c", "a-b-c"},
		{"../../../etc/passwd", "etc-passwd"},
		{"foo\x00\x01bar", "foobar"},
		{"../../..", "unnamed"},
		{"a---b", "a-b"},
		{"schicht-über", "schicht-über"},
	}

	for _, tc := range tests {
		if got := SanitizeForFilename(tc.input); got != tc.want {
			t.Errorf("SanitizeForFilename(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestDefaultExportsDir(t *testing.T) {
	cfg := testConfig(t)

	dir, err := DefaultExportsDir(cfg)
	if err != nil {
		t.Fatalf("DefaultExportsDir: %v", err)
	}
	if want := filepath.Join(cfg.BaseDir, db.ExportsDir); dir != want {
		t.Errorf("DefaultExportsDir = %q, want %q", dir, want)
	}
}
