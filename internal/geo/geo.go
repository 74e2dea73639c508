// Package geo holds the pure geographic core: great-circle distance,
// community resolution and proximity filtering. No I/O, no shared state,
// safe to call from concurrent goroutines.
package geo

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/sammiykay/community-alert/pkg/e"
)

const earthRadiusKm = 6371.0

// Point is an immutable latitude/longitude pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Zone is a circular boundary around a center point. The service layer maps
// active communities onto zones before resolving.
type Zone struct {
	ID       uuid.UUID `json:"id"`
	Center   Point     `json:"center"`
	RadiusKM float64   `json:"radius_km"`
}

// Located is a record with a position, used by Nearby. DistanceKM is filled
// in by Nearby for the returned items.
type Located struct {
	ID         uuid.UUID `json:"id"`
	Point      Point     `json:"point"`
	CreatedAt  time.Time `json:"created_at"`
	DistanceKM float64   `json:"distance_km"`
}

// DistanceKm returns the haversine great-circle distance between two points
// in kilometers. Symmetric; zero iff the points are equal.
func DistanceKm(a, b Point) (float64, error) {
	if !a.Valid() || !b.Valid() {
		return 0, e.ErrInvalidCoordinates
	}

	dLat := deg2rad(b.Lat - a.Lat)
	dLng := deg2rad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(a.Lat))*math.Cos(deg2rad(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c, nil
}

// Resolve assigns p to the covering zone with the smallest distance to its
// center. Remaining ties go to the lowest zone ID so overlapping boundaries
// resolve deterministically. Returns nil when no zone covers the point.
func Resolve(p Point, zones []Zone) (*Zone, error) {
	if !p.Valid() {
		return nil, e.ErrInvalidCoordinates
	}

	var (
		best     *Zone
		bestDist float64
	)
	for i := range zones {
		z := zones[i]
		dist, err := DistanceKm(p, z.Center)
		if err != nil {
			return nil, err
		}
		if dist > z.RadiusKM {
			continue
		}
		if best == nil || dist < bestDist ||
			(dist == bestDist && z.ID.String() < best.ID.String()) {
			best = &z
			bestDist = dist
		}
	}

	return best, nil
}

// Nearby returns the items within radiusKm of center, ordered ascending by
// distance, ties broken by most-recent CreatedAt. An empty result is not an
// error.
func Nearby(center Point, radiusKm float64, items []Located) ([]Located, error) {
	if !center.Valid() {
		return nil, e.ErrInvalidCoordinates
	}
	if radiusKm <= 0 {
		return nil, e.ErrInvalidRadius
	}

	result := make([]Located, 0, len(items))
	for _, it := range items {
		dist, err := DistanceKm(center, it.Point)
		if err != nil {
			return nil, err
		}
		if dist <= radiusKm {
			it.DistanceKM = dist
			result = append(result, it)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].DistanceKM != result[j].DistanceKM {
			return result[i].DistanceKM < result[j].DistanceKM
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func deg2rad(deg float64) float64 {
	return deg * math.Pi / 180.0
}
