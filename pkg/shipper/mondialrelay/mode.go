package mondialrelay

import (
	"strings"
)

// HomeModeCode is a delivery mode of the home-delivery family.
type HomeModeCode string

// Home-delivery mode codes.
const (
	ModeHome         HomeModeCode = "HOM" // standard home delivery
	ModeHomeSpain    HomeModeCode = "HOC" // home delivery, Spain
	ModeHomeStandard HomeModeCode = "LD1"
	ModeHomeBulky    HomeModeCode = "LDS"
	ModeMerchant     HomeModeCode = "LCC"
	ModeDrive        HomeModeCode = "DRI"
)

// PointModeCode is a delivery mode of the pickup-point family.
type PointModeCode string

// Pickup-point mode codes.
const (
	ModePointRelay PointModeCode = "24R"
	ModePointXL    PointModeCode = "24L"
	ModePointXXL   PointModeCode = "24X"
	ModeLocker     PointModeCode = "24C"
)

// DeliveryMode is how the carrier delivers the parcel. Only the pickup-point
// family carries a location; build values with HomeDelivery or PointDelivery.
type DeliveryMode struct {
	code     string
	location string
	home     bool
}

// HomeDelivery returns a home-family delivery mode. Its location is always empty.
func HomeDelivery(code HomeModeCode) DeliveryMode {
	return DeliveryMode{code: string(code), home: true}
}

// PointDelivery returns a pickup-point-family delivery mode at location.
func PointDelivery(code PointModeCode, location string) DeliveryMode {
	return DeliveryMode{code: string(code), location: location}
}

// Mode returns the wire mode code.
func (m DeliveryMode) Mode() string { return m.code }

// Location returns the pickup point reference, empty for home delivery.
func (m DeliveryMode) Location() string { return m.location }

// IsHome reports whether the mode belongs to the home-delivery family.
func (m DeliveryMode) IsHome() bool { return m.home }

// CollectionModeCode is how the carrier collects the parcel from the sender.
type CollectionModeCode string

// Collection mode codes.
const (
	CollectionCustomer CollectionModeCode = "CCC"
	CollectionDrive    CollectionModeCode = "CDR"
	CollectionDriveS   CollectionModeCode = "CDS"
	CollectionRelay    CollectionModeCode = "REL"
)

// CollectionMode is a collection mode code. The location is always empty.
type CollectionMode struct {
	code CollectionModeCode
}

// Collection returns the collection mode for code.
func Collection(code CollectionModeCode) CollectionMode {
	return CollectionMode{code: code}
}

// Mode returns the wire mode code.
func (m CollectionMode) Mode() string { return string(m.code) }

// Location is always empty in this integration.
func (m CollectionMode) Location() string { return "" }

// DefaultCountry is used when an address carries no country code.
const DefaultCountry = "FR"

// ModeInput is what the resolver needs to pick a delivery mode.
type ModeInput struct {
	Home          bool
	Locker        bool
	PickupPointID string
	CountryCode   string
}

// ResolveDeliveryMode picks the delivery mode for a shipment.
// Home delivery ignores the locker flag and the pickup point.
func ResolveDeliveryMode(in ModeInput) DeliveryMode {
	if in.Home {
		return HomeDelivery(ModeHome)
	}

	location := FormatPickupPointID(in.PickupPointID, in.CountryCode)
	if in.Locker {
		return PointDelivery(ModeLocker, location)
	}
	return PointDelivery(ModePointRelay, location)
}

// ResolveCollectionMode returns the collection mode used for every shipment.
func ResolveCollectionMode() CollectionMode {
	return Collection(CollectionRelay)
}

// FormatPickupPointID returns the compound "<COUNTRY>-<id>" form the carrier expects.
// An id that already contains a separator is returned unchanged.
func FormatPickupPointID(raw, countryCode string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.Contains(raw, "-") {
		return raw
	}
	return NormalizeCountry(countryCode) + "-" + raw
}

// NormalizeCountry upper-cases a country code, defaulting to FR.
func NormalizeCountry(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCountry
	}
	return code
}
