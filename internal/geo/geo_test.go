package geo_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sammiykay/community-alert/internal/geo"
	"github.com/sammiykay/community-alert/pkg/e"
)

func TestDistanceKm_Symmetric(t *testing.T) {
	t.Parallel()

	a := geo.Point{Lat: 55.75, Lng: 37.61}
	b := geo.Point{Lat: 59.93, Lng: 30.33}

	ab, err := geo.DistanceKm(a, b)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ba, err := geo.DistanceKm(b, a)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ab != ba {
		t.Fatalf("distance not symmetric: ab=%v ba=%v", ab, ba)
	}
}

func TestDistanceKm_ZeroForSamePoint(t *testing.T) {
	t.Parallel()

	p := geo.Point{Lat: -33.86, Lng: 151.2}
	d, err := geo.DistanceKm(p, p)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if d != 0 {
		t.Fatalf("expected 0, got %v", d)
	}
}

func TestDistanceKm_KnownValue(t *testing.T) {
	t.Parallel()

	// One degree of latitude along a meridian is about 111.19 km on the
	// 6371 km sphere.
	d, err := geo.DistanceKm(geo.Point{Lat: 0, Lng: 0}, geo.Point{Lat: 1, Lng: 0})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if d < 111.0 || d > 111.4 {
		t.Fatalf("unexpected distance for 1 degree latitude: %v", d)
	}
}

func TestDistanceKm_MonotonicAlongGreatCircle(t *testing.T) {
	t.Parallel()

	origin := geo.Point{Lat: 0, Lng: 0}
	prev := -1.0
	for _, lat := range []float64{0.1, 0.5, 1, 5, 20, 45, 89} {
		d, err := geo.DistanceKm(origin, geo.Point{Lat: lat, Lng: 0})
		if err != nil {
			t.Fatalf("unexpected err at lat=%v: %v", lat, err)
		}
		if d <= prev {
			t.Fatalf("distance not monotonic: lat=%v d=%v prev=%v", lat, d, prev)
		}
		prev = d
	}
}

func TestDistanceKm_InvalidLatitude(t *testing.T) {
	t.Parallel()

	_, err := geo.DistanceKm(geo.Point{Lat: 95, Lng: 0}, geo.Point{Lat: 0, Lng: 0})
	if !errors.Is(err, e.ErrInvalidCoordinates) {
		t.Fatalf("expected ErrInvalidCoordinates, got %v", err)
	}

	_, err = geo.DistanceKm(geo.Point{Lat: 0, Lng: 0}, geo.Point{Lat: 0, Lng: -181})
	if !errors.Is(err, e.ErrInvalidCoordinates) {
		t.Fatalf("expected ErrInvalidCoordinates, got %v", err)
	}
}

func TestResolve_NoCoveringZone(t *testing.T) {
	t.Parallel()

	zones := []geo.Zone{
		{ID: uuid.New(), Center: geo.Point{Lat: 50, Lng: 50}, RadiusKM: 5},
	}

	got, err := geo.Resolve(geo.Point{Lat: 0, Lng: 0}, zones)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestResolve_SingleCoveringZone(t *testing.T) {
	t.Parallel()

	want := uuid.New()
	zones := []geo.Zone{
		{ID: uuid.New(), Center: geo.Point{Lat: 50, Lng: 50}, RadiusKM: 5},
		{ID: want, Center: geo.Point{Lat: 0.01, Lng: 0}, RadiusKM: 5},
	}

	got, err := geo.Resolve(geo.Point{Lat: 0, Lng: 0}, zones)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got == nil || got.ID != want {
		t.Fatalf("expected zone %s, got %+v", want, got)
	}
}

func TestResolve_OverlapPicksNearestCenter(t *testing.T) {
	t.Parallel()

	// Both zones cover (0,0); A's center is right on the point, B's is
	// ~5.5 km away.
	a := geo.Zone{ID: uuid.New(), Center: geo.Point{Lat: 0, Lng: 0}, RadiusKM: 5}
	b := geo.Zone{ID: uuid.New(), Center: geo.Point{Lat: 0.05, Lng: 0}, RadiusKM: 5}

	got, err := geo.Resolve(geo.Point{Lat: 0, Lng: 0}, []geo.Zone{b, a})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got == nil || got.ID != a.ID {
		t.Fatalf("expected zone A %s, got %+v", a.ID, got)
	}
}

func TestResolve_EqualDistanceBreaksTieByID(t *testing.T) {
	t.Parallel()

	low := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	high := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	center := geo.Point{Lat: 10, Lng: 10}
	zones := []geo.Zone{
		{ID: high, Center: center, RadiusKM: 3},
		{ID: low, Center: center, RadiusKM: 3},
	}

	got, err := geo.Resolve(center, zones)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got == nil || got.ID != low {
		t.Fatalf("expected lowest id %s, got %+v", low, got)
	}
}

func TestResolve_InvalidPoint(t *testing.T) {
	t.Parallel()

	_, err := geo.Resolve(geo.Point{Lat: -91, Lng: 0}, nil)
	if !errors.Is(err, e.ErrInvalidCoordinates) {
		t.Fatalf("expected ErrInvalidCoordinates, got %v", err)
	}
}

// pointAtKm returns a point approximately km kilometers north of the origin.
func pointAtKm(km float64) geo.Point {
	return geo.Point{Lat: km / 111.194926, Lng: 0}
}

func TestNearby_FiltersAndOrdersByDistance(t *testing.T) {
	t.Parallel()

	center := geo.Point{Lat: 0, Lng: 0}
	now := time.Now().UTC()

	at2 := geo.Located{ID: uuid.New(), Point: pointAtKm(2), CreatedAt: now}
	at6 := geo.Located{ID: uuid.New(), Point: pointAtKm(6), CreatedAt: now}
	at4 := geo.Located{ID: uuid.New(), Point: pointAtKm(4), CreatedAt: now}
	at5 := geo.Located{ID: uuid.New(), Point: pointAtKm(4.999), CreatedAt: now}

	got, err := geo.Nearby(center, 5, []geo.Located{at2, at6, at4, at5})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	wantOrder := []uuid.UUID{at2.ID, at4.ID, at5.ID}
	if len(got) != len(wantOrder) {
		t.Fatalf("expected %d items, got %d: %+v", len(wantOrder), len(got), got)
	}
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Fatalf("position %d: expected %s got %s", i, want, got[i].ID)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].DistanceKM < got[i-1].DistanceKM {
			t.Fatalf("result not ordered by distance: %+v", got)
		}
	}
}

func TestNearby_TieBrokenByMostRecent(t *testing.T) {
	t.Parallel()

	center := geo.Point{Lat: 0, Lng: 0}
	loc := pointAtKm(1)
	older := geo.Located{ID: uuid.New(), Point: loc, CreatedAt: time.Now().Add(-time.Hour)}
	newer := geo.Located{ID: uuid.New(), Point: loc, CreatedAt: time.Now()}

	got, err := geo.Nearby(center, 5, []geo.Located{older, newer})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 2 || got[0].ID != newer.ID {
		t.Fatalf("expected newest first, got %+v", got)
	}
}

func TestNearby_EmptyResultIsNotError(t *testing.T) {
	t.Parallel()

	got, err := geo.Nearby(geo.Point{Lat: 0, Lng: 0}, 1, []geo.Located{
		{ID: uuid.New(), Point: pointAtKm(100), CreatedAt: time.Now()},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
}

func TestNearby_NonPositiveRadius(t *testing.T) {
	t.Parallel()

	_, err := geo.Nearby(geo.Point{Lat: 0, Lng: 0}, 0, nil)
	if !errors.Is(err, e.ErrInvalidRadius) {
		t.Fatalf("expected ErrInvalidRadius, got %v", err)
	}

	_, err = geo.Nearby(geo.Point{Lat: 0, Lng: 0}, -3, nil)
	if !errors.Is(err, e.ErrInvalidRadius) {
		t.Fatalf("expected ErrInvalidRadius, got %v", err)
	}
}
