package entity

import (
	"encoding/json"
	"fmt"
)

// SourceGooglePlaces tags leads discovered through the Google Places backend.
const SourceGooglePlaces = "google_places"

// DefaultCountry is used when a place's country cannot be resolved.
const DefaultCountry = "USA"

// Coordinate is a WGS84 position in degrees.
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// ResolvedLocation is the geocoded target of a discovery run.
type ResolvedLocation struct {
	Coordinate
	FormattedAddress string `json:"formatted_address"`
}

// Validity is a tri-state flag: unknown until checked, then valid or invalid.
type Validity int8

const (
	ValidityUnknown Validity = iota
	ValidityValid
	ValidityInvalid
)

// ValidityOf converts a completed check into a Validity.
func ValidityOf(ok bool) Validity {
	if ok {
		return ValidityValid
	}
	return ValidityInvalid
}

// Known reports whether the check has run.
func (v Validity) Known() bool {
	return v != ValidityUnknown
}

// MarshalJSON renders unknown as null.
func (v Validity) MarshalJSON() ([]byte, error) {
	switch v {
	case ValidityValid:
		return []byte("true"), nil
	case ValidityInvalid:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts null, true or false.
func (v *Validity) UnmarshalJSON(data []byte) error {
	var b *bool
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("url_valid: %w", err)
	}
	switch {
	case b == nil:
		*v = ValidityUnknown
	case *b:
		*v = ValidityValid
	default:
		*v = ValidityInvalid
	}
	return nil
}

// Lead is a candidate business produced by discovery and optionally completed by enrichment.
// Nil pointers mean "not known"; enrichment only ever fills nil fields.
type Lead struct {
	Company       string  `json:"company"`
	SourcePlaceID *string `json:"source_place_id"`

	URL                *string  `json:"url"`
	URLValid           Validity `json:"url_valid"`
	CompanyDescription *string  `json:"company_description"`

	ContactFirstName *string `json:"contact_first_name"`
	ContactLastName  *string `json:"contact_last_name"`
	ContactTitle     *string `json:"contact_title"`
	ContactEmail     *string `json:"contact_email"`
	ContactPhone     *string `json:"contact_phone"`

	Address      *string `json:"address"`
	AddressLine2 *string `json:"address_line2"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	Zipcode      *string `json:"zipcode"`
	Country      string  `json:"country"`

	DistanceMiles   *float64 `json:"distance_miles"`
	DistanceDisplay *string  `json:"distance_display"`

	FacebookLink  *string `json:"facebook_link"`
	InstagramLink *string `json:"instagram_link"`

	Source         string   `json:"source"`
	Rating         *float64 `json:"rating"`
	ReviewCount    *int     `json:"review_count"`
	IsChain        bool     `json:"is_chain"`
	ChainFlagged   bool     `json:"chain_flagged"`
	CuisineFlagged bool     `json:"cuisine_flagged"`
	FlagReason     *string  `json:"flag_reason"`
}

// StringPtr returns nil for empty strings.
func StringPtr(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// Deref returns the pointed-to string or "".
func Deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
