package aggregates

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quizprogress-backend/internal/platform/dbctx"
)

// VersionGuard applies row updates as a compare-and-set on the version column.
type VersionGuard struct {
	db *gorm.DB
}

func NewVersionGuard(db *gorm.DB) VersionGuard {
	return VersionGuard{db: db}
}

// Apply writes updates and bumps version by one when the row's version still
// equals expected. It reports false when the row is gone or has moved on.
func (g VersionGuard) Apply(dbc dbctx.Context, table string, id uuid.UUID, expected int64, updates map[string]any) (bool, error) {
	if dbc.Tx == nil && g.db == nil {
		return false, ValidationError("no database handle for guarded update")
	}
	table = strings.TrimSpace(table)
	switch {
	case table == "", id == uuid.Nil:
		return false, ValidationError("guarded update needs a table and an id")
	case expected < 0:
		return false, ValidationError("expected version must be >= 0")
	}

	cols := map[string]any{"version": gorm.Expr("version + 1")}
	for k, v := range updates {
		if k != "version" {
			cols[k] = v
		}
	}
	res := dbc.DB(g.db).Table(table).
		Where("id = ? AND version = ?", id, expected).
		Updates(cols)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// StaleVersion is the conflict returned when Apply reports false for a row that exists.
func StaleVersion(table string, id uuid.UUID) error {
	return ConflictError(table + " " + id.String() + " changed since it was read")
}
