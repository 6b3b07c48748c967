package repository

import (
	"errors"

	"github.com/andalize/proptic/internal/domain"

	"github.com/lib/pq"
)

const msgRelatedMissing = "Invalid pk - object does not exist."

// constraintFields maps constraint names to the field and message reported
// to clients.
var constraintFields = map[string][2]string{
	"users_email_key":                            {"email", domain.MsgEmailTaken},
	"users_national_id_key":                      {"national_id", domain.MsgNationalIDTaken},
	"users_passport_number_key":                  {"passport_number", domain.MsgPassportTaken},
	"roles_name_key":                             {"name", "role with this name already exists."},
	"property_unit_images_unit_image_key":        {"image", domain.MsgImageDuplicate},
	"property_units_price_check":                 {"price", domain.MsgPriceNegative},
	"property_units_amenities_check":             {"amenities", domain.MsgAmenitiesObject},
	"rent_transactions_amount_check":             {"amount", domain.MsgAmountNegative},
	"users_property_project_id_fkey":             {"property_project", msgRelatedMissing},
	"property_units_property_project_id_fkey":    {"property_project", msgRelatedMissing},
	"property_unit_images_property_unit_id_fkey": {"property_unit", msgRelatedMissing},
	"tenancies_tenant_id_fkey":                   {"tenant_id", msgRelatedMissing},
	"tenancies_property_unit_id_fkey":            {"property_unit_id", msgRelatedMissing},
	"rent_transactions_tenancy_id_fkey":          {"tenancy", msgRelatedMissing},
	"bookings_property_unit_id_fkey":             {"property_unit_id", msgRelatedMissing},
	"bookings_guest_id_fkey":                     {"guest_id", msgRelatedMissing},
	"user_roles_role_id_fkey":                    {"role_ids", msgRelatedMissing},
}

// mapPQError turns unique, foreign key and check violations and numeric
// overflow into a ValidationError. Other errors are returned unchanged.
func mapPQError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23505", "23503", "23514":
	case "22003":
		field := pqErr.Column
		if field == "" {
			field = domain.NonFieldErrors
		}
		return domain.FieldError(field, domain.MsgMoneyTooLarge)
	default:
		return err
	}
	if f, ok := constraintFields[pqErr.Constraint]; ok {
		return domain.FieldError(f[0], f[1])
	}
	return domain.FieldError(domain.NonFieldErrors, pqErr.Message)
}
