// Package rawjson provides a JSON column type that stores client-supplied values verbatim.
package rawjson

import (
	"context"
	"database/sql/driver"
	"strconv"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// JSON behaves like datatypes.JSON but is declared TEXT on sqlite. A JSON
// column there has NUMERIC affinity, which turns a bare 70 into an integer
// that datatypes.JSON cannot scan back.
type JSON datatypes.JSON

func (j JSON) Value() (driver.Value, error) { return datatypes.JSON(j).Value() }

// Scan also accepts the numeric values a legacy NUMERIC column hands back.
func (j *JSON) Scan(value any) error {
	switch v := value.(type) {
	case int64:
		*j = JSON(strconv.FormatInt(v, 10))
		return nil
	case float64:
		*j = JSON(strconv.FormatFloat(v, 'g', -1, 64))
		return nil
	}
	return (*datatypes.JSON)(j).Scan(value)
}

func (j JSON) MarshalJSON() ([]byte, error) { return datatypes.JSON(j).MarshalJSON() }

func (j *JSON) UnmarshalJSON(b []byte) error { return (*datatypes.JSON)(j).UnmarshalJSON(b) }

func (j JSON) String() string { return string(j) }

func (JSON) GormDataType() string { return datatypes.JSON{}.GormDataType() }

func (JSON) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "sqlite" {
		return "TEXT"
	}
	return datatypes.JSON{}.GormDBDataType(db, field)
}

func (j JSON) GormValue(ctx context.Context, db *gorm.DB) clause.Expr {
	return datatypes.JSON(j).GormValue(ctx, db)
}
