package domain

import (
	"database/sql"
	"encoding/json"
	"time"
)

// PropertyUnit maps to the property_units table.
type PropertyUnit struct {
	ID                string `db:"id"`
	PropertyProjectID string `db:"property_project_id"`
	UnitName          string `db:"unit_name"`
	UnitType          string `db:"unit_type"` // UnitTypes
	Purpose           string `db:"purpose"`   // Purposes

	Price float64 `db:"price"` // NUMERIC(12,2), CHECK price >= 0

	ListedForRent bool `db:"listed_for_rent"`
	ListedForSale bool `db:"listed_for_sale"`
	Available     bool `db:"available"`

	// Amenities is a JSON object or nil.
	Amenities json.RawMessage `db:"amenities"`

	Paid      bool         `db:"paid"`
	PaidAt    sql.NullTime `db:"paid_at"`
	CreatedAt time.Time    `db:"created_at"`

	// Joined, read only.
	PropertyProjectName string `db:"property_project_name"`
}

// PropertyUnitImage maps to the property_unit_images table.
type PropertyUnitImage struct {
	ID             string    `db:"id"`
	PropertyUnitID string    `db:"property_unit_id"`
	Image          string    `db:"image"` // UNIQUE (property_unit_id, image)
	CreatedAt      time.Time `db:"created_at"`
}

// Unit types.
const (
	UnitTypeApartment = "apartment"
	UnitTypeDuplex    = "duplex"
	UnitTypeTownhouse = "townhouse"
	UnitTypeVilla     = "villa"
	UnitTypeOffice    = "office"
	UnitTypeShop      = "shop"
)

// UnitTypes lists the accepted unit_type values.
var UnitTypes = []string{
	UnitTypeApartment, UnitTypeDuplex, UnitTypeTownhouse,
	UnitTypeVilla, UnitTypeOffice, UnitTypeShop,
}

// Unit purposes.
const (
	PurposeResidential = "residential"
	PurposeCommercial  = "commercial"
	PurposeOffice      = "office"
)

// Purposes lists the accepted purpose values.
var Purposes = []string{PurposeResidential, PurposeCommercial, PurposeOffice}
