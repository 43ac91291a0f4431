package geo

import (
	"strings"

	"github.com/octobees/catering-leads/internal/entity"
)

// Address component type tags as reported by the Places API.
const (
	componentStreetNumber = "street_number"
	componentRoute        = "route"
	componentSubpremise   = "subpremise"
	componentLocality     = "locality"
	componentAdminLevel1  = "administrative_area_level_1"
	componentPostalCode   = "postal_code"
	componentCountry      = "country"
)

// AddressComponent is one structured piece of a place's address.
type AddressComponent struct {
	LongText  string
	ShortText string
	Types     []string
}

// Address holds normalised address fields. Empty strings mean unknown, except
// Country which always carries a value.
type Address struct {
	Street       string
	AddressLine2 string
	City         string
	State        string
	Zipcode      string
	Country      string
}

// NormalizeAddress prefers structured components and falls back to splitting the
// formatted address on commas when the components give no city.
func NormalizeAddress(components []AddressComponent, formatted string) Address {
	addr := fromComponents(components)

	if addr.City == "" && formatted != "" {
		parts := strings.Split(formatted, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) >= 3 {
			addr.Street = parts[0]
			addr.City = parts[1]
			stateZip := strings.Fields(parts[2])
			addr.State = ""
			addr.Zipcode = ""
			if len(stateZip) > 0 {
				addr.State = stateZip[0]
			}
			if len(stateZip) > 1 {
				addr.Zipcode = stateZip[1]
			}
		}
	}

	if addr.Country == "" {
		addr.Country = entity.DefaultCountry
	}
	return addr
}

func fromComponents(components []AddressComponent) Address {
	var (
		addr         Address
		streetNumber string
		route        string
	)

	// A component carrying several tags is assigned by the first tag in this order.
	for _, c := range components {
		switch {
		case hasType(c, componentStreetNumber):
			streetNumber = c.LongText
		case hasType(c, componentRoute):
			route = c.LongText
		case hasType(c, componentSubpremise):
			addr.AddressLine2 = c.LongText
		case hasType(c, componentLocality):
			addr.City = c.LongText
		case hasType(c, componentAdminLevel1):
			addr.State = c.ShortText
		case hasType(c, componentPostalCode):
			addr.Zipcode = c.LongText
		case hasType(c, componentCountry):
			addr.Country = c.ShortText
		}
	}

	addr.Street = strings.TrimSpace(strings.Join(nonEmpty(streetNumber, route), " "))
	return addr
}

func hasType(c AddressComponent, tag string) bool {
	for _, t := range c.Types {
		if t == tag {
			return true
		}
	}
	return false
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
