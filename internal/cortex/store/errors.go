package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/cortex-memory/cortex/internal/cortex/cortexerr"
)

// wrapDBError wraps a database error with operation context, converting
// sql.ErrNoRows to cortexerr.ErrUnknownID. Mirrors
// internal/storage/sqlite's wrapDBError/wrapDBErrorf pattern exactly.
func wrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, cortexerr.ErrUnknownID)
	}
	return fmt.Errorf("%s: %w: %w", op, cortexerr.ErrStorageIO, err)
}
