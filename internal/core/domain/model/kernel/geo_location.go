package kernel

import (
	"errors"
	"fmt"
	"math"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	// MinLatitude is the minimum valid latitude in degrees.
	MinLatitude float64 = -90
	// MaxLatitude is the maximum valid latitude in degrees.
	MaxLatitude float64 = 90
	// MinLongitude is the minimum valid longitude in degrees.
	MinLongitude float64 = -180
	// MaxLongitude is the maximum valid longitude in degrees.
	MaxLongitude float64 = 180

	// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
	EarthRadiusMeters float64 = 6371000
)

// ErrGeoLocationIsNotConstructed is returned when attempting to use an improperly
// initialized GeoLocation. GeoLocations must be created via NewGeoLocation to
// ensure coordinate validity.
var ErrGeoLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"geo location must be created via NewGeoLocation constructor")

// GeoLocation represents a geographic point with validated WGS84 coordinates.
// GeoLocation is an immutable value object; the zero value is invalid and will
// fail validation - use the constructor to create instances.
//
// Example:
//
//	loc, err := kernel.NewGeoLocation(40.0, -75.0)
//	if err != nil {
//	    // Handle validation error
//	}
//	fmt.Printf("Pickup: %s", loc) // Output: GeoLocation(40.000000,-75.000000)
type GeoLocation struct { //nolint:recvcheck //using for validation
	latitude  float64
	longitude float64
	guard     guard.ConstructorGuard
}

// NewGeoLocation creates a GeoLocation with the specified coordinates.
// Latitude must be within [MinLatitude..MaxLatitude] and longitude within
// [MinLongitude..MaxLongitude]; NaN is rejected for both.
//
// Returns:
//   - GeoLocation: A valid location instance
//   - error: Validation error if either coordinate is out of bounds
func NewGeoLocation(latitude float64, longitude float64) (GeoLocation, error) {
	loc := GeoLocation{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(loc.setLatitude(latitude), loc.setLongitude(longitude)); err != nil {
		return GeoLocation{}, err
	}

	return loc, nil
}

// Validate checks if the GeoLocation was properly constructed.
// The zero value of GeoLocation is invalid and will fail this validation.
func (l GeoLocation) Validate() error {
	return l.guard.Validate(ErrGeoLocationIsNotConstructed)
}

// Latitude returns the latitude in degrees.
func (l GeoLocation) Latitude() float64 {
	return l.latitude
}

// Longitude returns the longitude in degrees.
func (l GeoLocation) Longitude() float64 {
	return l.longitude
}

// String returns a human-readable representation in the format
// "GeoLocation(lat,lon)". Implements the fmt.Stringer interface.
func (l GeoLocation) String() string {
	return fmt.Sprintf("GeoLocation(%f,%f)", l.latitude, l.longitude)
}

// IsEqual compares two locations for coordinate equality.
// Both locations must be properly constructed for the comparison to succeed.
func (l GeoLocation) IsEqual(other GeoLocation) (bool, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return l.latitude == other.latitude && l.longitude == other.longitude, nil
}

// DistanceTo calculates the great-circle distance in meters between two
// locations using the haversine formula with EarthRadiusMeters.
//
// The distance is symmetric: a.DistanceTo(b) == b.DistanceTo(a), and zero for
// equal coordinates. Both locations must be properly constructed for the
// calculation to succeed.
//
// Example:
//
//	pickup, _ := kernel.NewGeoLocation(40.0, -75.0)
//	courier, _ := kernel.NewGeoLocation(40.001, -75.001)
//
//	meters, err := pickup.DistanceTo(courier)
//	// meters ≈ 140, err = nil
func (l GeoLocation) DistanceTo(other GeoLocation) (float64, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	lat1 := l.latitude * math.Pi / 180
	lat2 := other.latitude * math.Pi / 180
	dLat := (other.latitude - l.latitude) * math.Pi / 180
	dLon := (other.longitude - l.longitude) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c, nil
}

// setLatitude sets the latitude with validation.
// Note: We intentionally use a pointer receiver here while other methods use value receivers.
// Although mixing receiver types is generally not recommended, in this case we use pointer
// receivers for these private setters to enable self-encapsulated validation of business
// requirements during object construction.
func (l *GeoLocation) setLatitude(latitude float64) error {
	if math.IsNaN(latitude) || latitude < MinLatitude || latitude > MaxLatitude {
		return errs.NewValueIsOutOfRangeError("latitude", latitude, MinLatitude, MaxLatitude)
	}

	l.latitude = latitude
	return nil
}

// setLongitude sets the longitude with validation.
func (l *GeoLocation) setLongitude(longitude float64) error {
	if math.IsNaN(longitude) || longitude < MinLongitude || longitude > MaxLongitude {
		return errs.NewValueIsOutOfRangeError("longitude", longitude, MinLongitude, MaxLongitude)
	}

	l.longitude = longitude
	return nil
}
