package ops

import (
	"bufio"
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/hpungsan/ivtab/internal/config"
	"github.com/hpungsan/ivtab/internal/db"
	"github.com/hpungsan/ivtab/internal/errors"
	"github.com/hpungsan/ivtab/internal/interval"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	ID   string
	Name string
	Path string // optional, default: <base>/exports/<name or id>-<timestamp>.csv
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	ID         string `json:"id"`
	Path       string `json:"path"`
	Count      int    `json:"count"`
	Weighted   bool   `json:"is_weighted"`
	ExportedAt int64  `json:"exported_at"`
}

// Export writes a stored set back out as an interval table.
// The file is written to a temp path and renamed into place.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	addr, err := ValidateAddress(input.ID, input.Name)
	if err != nil {
		return nil, err
	}

	s, err := resolve(ctx, database, addr, false)
	if err != nil {
		return nil, err
	}
	intervals, err := db.GetIntervals(ctx, database, s.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	exportPath := input.Path
	if exportPath == "" {
		exportPath, err = defaultExportPath(cfg, s, now)
		if err != nil {
			return nil, err
		}
	}

	// Default paths are validated too; set names end up in them.
	if err := ValidatePath(exportPath, PathCheckWrite, cfg); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := createExportNoFollow(tempPath)
	if err != nil {
		return nil, err
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if err := writeTable(ctx, file, s, intervals, now); err != nil {
		return nil, err
	}

	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}

	// Close before rename (required on Windows).
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlinked destination.
	if info, err := os.Lstat(exportPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInvalidRequest("export path is a symlink")
	}

	// On Windows os.Rename fails when the destination exists; the existing file is kept.
	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return nil, errors.NewInvalidRequest("export destination already exists; overwriting is not supported on Windows (choose a new path or delete the existing file)")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return &ExportOutput{
		ID:         s.ID,
		Path:       exportPath,
		Count:      len(intervals),
		Weighted:   s.Weighted,
		ExportedAt: now.Unix(),
	}, nil
}

// writeTable writes a comment header followed by one CSV row per interval.
func writeTable(ctx context.Context, f *os.File, s *interval.Set, intervals []interval.Interval, now time.Time) error {
	bw := bufio.NewWriter(f)

	fmt.Fprintf(bw, "# ivtab export id=%s exported_at=%s\n", s.ID, now.UTC().Format(time.RFC3339))
	if s.NameRaw != nil {
		fmt.Fprintf(bw, "# name: %s\n", strings.Join(strings.Fields(*s.NameRaw), " "))
	}

	w := csv.NewWriter(bw)
	record := make([]string, 0, interval.WeightedColumns)
	for i, iv := range intervals {
		if i%1000 == 0 {
			if err := cancelled(ctx, "export"); err != nil {
				return err
			}
		}

		record = record[:0]
		for _, v := range iv.Values() {
			record = append(record, strconv.FormatInt(v, 10))
		}
		if err := w.Write(record); err != nil {
			return errors.NewInternal(err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errors.NewInternal(err)
	}
	if err := bw.Flush(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// defaultExportPath generates <base>/exports/<name or id>-<timestamp>.csv.
func defaultExportPath(cfg *config.Config, s *interval.Set, now time.Time) (string, error) {
	dir, err := DefaultExportsDir(cfg)
	if err != nil {
		return "", err
	}

	stem := s.ID
	if s.NameNorm != nil {
		// Sanitized so a crafted name cannot escape the exports directory.
		stem = SanitizeForFilename(*s.NameNorm)
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%s.csv", stem, now.Format("2006-01-02T150405"))), nil
}
