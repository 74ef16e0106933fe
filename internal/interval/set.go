package interval

// Set is an imported interval table stored in the catalog.
type Set struct {
	// ID is a ULID that uniquely identifies this set
	ID string

	// NameRaw is the name as provided by the user (nullable)
	NameRaw *string

	// NameNorm is the normalized name (nullable)
	NameNorm *string

	// SourcePath is the absolute path the table was read from
	SourcePath string

	// Weighted reports whether every interval carries a weight
	Weighted bool

	// Stats summarizes Intervals
	Stats Stats

	// SkippedRows counts rows dropped for having the wrong column count
	SkippedRows int

	// Intervals holds the rows in input order; empty when only metadata was loaded
	Intervals []Interval

	// CreatedAt is the Unix timestamp when the set was imported
	CreatedAt int64

	// DeletedAt is the Unix timestamp for soft delete (nullable)
	DeletedAt *int64
}

// SetSummary is the list view of a Set.
type SetSummary struct {
	ID          string  `json:"id"`
	Name        *string `json:"name,omitempty"`
	SourcePath  string  `json:"source_path"`
	Weighted    bool    `json:"is_weighted"`
	Count       int     `json:"count"`
	SkippedRows int     `json:"skipped_rows"`
	CreatedAt   int64   `json:"created_at"`
	DeletedAt   *int64  `json:"deleted_at,omitempty"`
}
