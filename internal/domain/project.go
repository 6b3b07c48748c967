package domain

import (
	"database/sql"
	"time"
)

// PropertyProject maps to the property_projects table.
// Name uniqueness is checked case-insensitively by the service; there is no
// database constraint.
type PropertyProject struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Address     string         `db:"address"`
	Description sql.NullString `db:"description"`
	CoverImage  sql.NullString `db:"cover_image"`
	CreatedAt   time.Time      `db:"created_at"`
}
