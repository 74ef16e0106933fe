package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/ivtab/internal/db"
	"github.com/hpungsan/ivtab/internal/errors"
	"github.com/hpungsan/ivtab/internal/interval"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// Address represents a validated set address.
type Address struct {
	ByID bool
	ID   string
	Name string // normalized
}

// ValidateAddress validates addressing parameters and returns a normalized Address.
// Exactly one of id or name must be given.
func ValidateAddress(id, name string) (*Address, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)

	if id != "" && name != "" {
		return nil, errors.NewAmbiguousAddressing()
	}
	if id == "" && name == "" {
		return nil, errors.NewInvalidRequest("must specify either id or name")
	}

	if id != "" {
		return &Address{ByID: true, ID: id}, nil
	}

	nameNorm := interval.Normalize(name)
	if nameNorm == "" {
		return nil, errors.NewInvalidRequest("name must not be empty")
	}
	return &Address{Name: nameNorm}, nil
}

// resolve loads set metadata for a validated address.
func resolve(ctx context.Context, database *sql.DB, addr *Address, includeDeleted bool) (*interval.Set, error) {
	if addr.ByID {
		return db.GetByID(ctx, database, addr.ID, includeDeleted)
	}
	return db.GetByName(ctx, database, addr.Name, includeDeleted)
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// newID returns a new ULID. Monotonic entropy is not goroutine safe.
func newID(now time.Time) (string, error) {
	entropyMu.Lock()
	defer entropyMu.Unlock()

	id, err := ulid.New(ulid.Timestamp(now), entropy)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return id.String(), nil
}

// cancelled maps a done context to CANCELLED.
func cancelled(ctx context.Context, op string) error {
	if ctx.Err() != nil {
		return errors.NewCancelled(op)
	}
	return nil
}
