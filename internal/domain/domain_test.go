package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@example.com", NormalizeEmail("  Jane@Example.COM "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestValidateEmailFormat(t *testing.T) {
	assert.Empty(t, ValidateEmailFormat("jane@example.com"))
	assert.Empty(t, ValidateEmailFormat(""))
	assert.Equal(t, MsgEmailInvalid, ValidateEmailFormat("not-an-email"))
	assert.Equal(t, MsgEmailInvalid, ValidateEmailFormat("Jane <jane@example.com>"))
}

func TestValidateNationalID_Bounds(t *testing.T) {
	for n := 1; n <= 25; n++ {
		id := strings.Repeat("1", n)
		msg := ValidateNationalID(id)
		if n >= 12 && n <= 18 {
			assert.Empty(t, msg, "length %d should be accepted", n)
		} else {
			assert.Equal(t, MsgNationalIDLength, msg, "length %d should be rejected", n)
		}
	}
	assert.Empty(t, ValidateNationalID(""))

	// lengths are counted in characters, not bytes
	assert.Empty(t, ValidateNationalID(strings.Repeat("Ж", 12)))
	assert.Equal(t, MsgNationalIDLength, ValidateNationalID(strings.Repeat("Ж", 6)))
}

func TestValidatePassportNumber_ExactlyNine(t *testing.T) {
	for n := 1; n <= 15; n++ {
		msg := ValidatePassportNumber(strings.Repeat("P", n))
		if n == 9 {
			assert.Empty(t, msg)
		} else {
			assert.Equal(t, MsgPassportLength, msg, "length %d", n)
		}
	}
	assert.Empty(t, ValidatePassportNumber(""))

	assert.Empty(t, ValidatePassportNumber(strings.Repeat("É", 9)))
	assert.Equal(t, MsgPassportLength, ValidatePassportNumber("ÉÉÉÉA"))
}

func TestRequireIdentityDocument(t *testing.T) {
	assert.Equal(t, MsgIdentityRequired, RequireIdentityDocument("", ""))
	assert.Empty(t, RequireIdentityDocument("123456789012", ""))
	assert.Empty(t, RequireIdentityDocument("", "AB1234567"))
}

func TestValidateMoney(t *testing.T) {
	assert.Empty(t, ValidateMoney(0))
	assert.Empty(t, ValidateMoney(9999999999.99))
	assert.Equal(t, MsgMoneyTooLarge, ValidateMoney(1e10))
	assert.Equal(t, MsgMoneyTooLarge, ValidateMoney(-1e11))
}

func TestValidatePassword(t *testing.T) {
	assert.Equal(t, MsgPasswordTooShort, ValidatePassword("short"))
	assert.Empty(t, ValidatePassword("longenough"))
	assert.Empty(t, ValidatePassword(strings.Repeat("ü", 8)))
	assert.Equal(t, MsgPasswordTooShort, ValidatePassword("üüüü"))
}

func TestAssignDefaultRole(t *testing.T) {
	catalog := []Role{
		{ID: "r-admin", Name: RoleAdmin},
		{ID: "r-tenant", Name: RoleTenant},
		{ID: "r-staff", Name: RoleStaff},
	}

	t.Run("no roles yields exactly tenant", func(t *testing.T) {
		roles, err := AssignDefaultRole(nil, catalog)
		require.NoError(t, err)
		require.Len(t, roles, 1)
		assert.Equal(t, RoleTenant, roles[0].Name)
		assert.Equal(t, "r-tenant", roles[0].ID)
	})

	t.Run("explicit roles are kept", func(t *testing.T) {
		roles, err := AssignDefaultRole([]Role{catalog[0]}, catalog)
		require.NoError(t, err)
		assert.Equal(t, []Role{catalog[0]}, roles)
	})

	t.Run("missing tenant role", func(t *testing.T) {
		_, err := AssignDefaultRole(nil, catalog[:1])
		assert.ErrorIs(t, err, ErrDefaultRoleMissing)
	})
}

func TestValidateAmenities(t *testing.T) {
	assert.Empty(t, ValidateAmenities(nil))
	assert.Empty(t, ValidateAmenities(json.RawMessage(`null`)))
	assert.Empty(t, ValidateAmenities(json.RawMessage(`{"pool": true, "parking": 2}`)))
	assert.Equal(t, MsgAmenitiesObject, ValidateAmenities(json.RawMessage(`["pool","gym"]`)))
	assert.Equal(t, MsgAmenitiesObject, ValidateAmenities(json.RawMessage(`"pool"`)))
	assert.Equal(t, MsgAmenitiesObject, ValidateAmenities(json.RawMessage(`42`)))
}

func TestValidateChoice(t *testing.T) {
	assert.Empty(t, ValidateChoice(UnitTypeVilla, UnitTypes))
	assert.Equal(t, `"castle" is not a valid choice.`, ValidateChoice("castle", UnitTypes))
}

func TestPaidDays(t *testing.T) {
	days, err := PaidDays(NewDate(2024, time.January, 1), NewDate(2024, time.January, 31))
	require.NoError(t, err)
	assert.Equal(t, 31, days)

	days, err = PaidDays(NewDate(2024, time.March, 5), NewDate(2024, time.March, 5))
	require.NoError(t, err)
	assert.Equal(t, 1, days)

	_, err = PaidDays(NewDate(2024, time.March, 5), NewDate(2024, time.March, 4))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("period_end"))

	_, err = PaidDays(Date{}, NewDate(2024, time.March, 4))
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("period_start"))
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "Jane Doe", FullName("Jane", "Doe"))
	assert.Equal(t, "Jane", FullName("Jane", ""))
	assert.Equal(t, "", FullName("", ""))
}

func TestDate_JSON(t *testing.T) {
	var payload struct {
		Start Date `json:"start"`
		End   Date `json:"end"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"start":"2024-02-29","end":null}`), &payload))
	assert.True(t, payload.Start.Valid)
	assert.Equal(t, "2024-02-29", payload.Start.String())
	assert.False(t, payload.End.Valid)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2024-02-29","end":null}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"start":"29/02/2024"}`), &payload))
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 5, 6, 13, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-05-06", d.String())

	require.NoError(t, d.Scan([]byte("2023-12-31T00:00:00Z")))
	assert.Equal(t, "2023-12-31", d.String())

	require.NoError(t, d.Scan(nil))
	assert.False(t, d.Valid)

	v, err := NewDate(2024, time.June, 1).Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", v)
}

func TestValidationError(t *testing.T) {
	v := NewValidationError()
	assert.NoError(t, v.OrNil())

	v.Add("email", MsgEmailTaken)
	v.Add(NonFieldErrors, MsgIdentityRequired)
	err := v.OrNil()
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "email: "+MsgEmailTaken)
}

func TestUser_Roles(t *testing.T) {
	u := &User{FirstName: " Ann", LastName: "Lee ", Roles: []Role{{Name: RoleStaff}, {Name: RoleTenant}}}
	assert.Equal(t, "Ann Lee", u.FullName())
	assert.Equal(t, []string{RoleStaff, RoleTenant}, u.RoleNames())
	assert.True(t, u.HasRole(RoleTenant))
	assert.False(t, u.HasRole(RoleAdmin))
}
