package enums

import "fmt"

// ShippingZone classifies a destination country against the shipping table.
type ShippingZone string

const (
	ShippingZoneFree          ShippingZone = "free"
	ShippingZoneDomestic      ShippingZone = "domestic"
	ShippingZoneRegional      ShippingZone = "regional"
	ShippingZoneInternational ShippingZone = "international"
)

var validShippingZones = []ShippingZone{
	ShippingZoneFree,
	ShippingZoneDomestic,
	ShippingZoneRegional,
	ShippingZoneInternational,
}

// String implements fmt.Stringer.
func (z ShippingZone) String() string {
	return string(z)
}

// IsValid reports whether the value is a known ShippingZone.
func (z ShippingZone) IsValid() bool {
	for _, candidate := range validShippingZones {
		if candidate == z {
			return true
		}
	}
	return false
}

// ParseShippingZone converts raw input into a ShippingZone.
func ParseShippingZone(value string) (ShippingZone, error) {
	for _, candidate := range validShippingZones {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipping zone %q", value)
}
