package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/ivtab/internal/db"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID   string
	Name string
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// Delete soft-deletes a set by ID or name.
func Delete(ctx context.Context, database *sql.DB, input DeleteInput) (*DeleteOutput, error) {
	addr, err := ValidateAddress(input.ID, input.Name)
	if err != nil {
		return nil, err
	}

	s, err := resolve(ctx, database, addr, false)
	if err != nil {
		return nil, err
	}

	if err := db.SoftDelete(ctx, database, s.ID); err != nil {
		return nil, err
	}

	return &DeleteOutput{Deleted: true, ID: s.ID}, nil
}
