package usecase_test

import (
	"errors"
	"math"
	"testing"

	"github.com/Sunshower1260/VisionAid/internal/entity"
	"github.com/Sunshower1260/VisionAid/internal/geo"
	"github.com/Sunshower1260/VisionAid/internal/usecase"
)

func volunteerAt(id int64, lat, lon float64) entity.Volunteer {
	return entity.Volunteer{
		ID:       id,
		Email:    "v@example.com",
		Role:     entity.RoleMember,
		Active:   true,
		Location: &geo.Coordinate{Latitude: lat, Longitude: lon},
	}
}

func TestSelectNearest_Empty(t *testing.T) {
	_, err := usecase.SelectNearest(geo.Coordinate{Latitude: 10, Longitude: 106}, nil)
	if !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, err = usecase.SelectNearest(geo.Coordinate{}, []entity.Volunteer{})
	if !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty slice, got %v", err)
	}
}

func TestSelectNearest_PicksCloser(t *testing.T) {
	requester := geo.Coordinate{Latitude: 10.0, Longitude: 106.0}
	// A ~1 км, B ~5 км. B идет первым, чтобы порядок не влиял на результат.
	b := volunteerAt(2, 10.045, 106.0)
	a := volunteerAt(1, 10.009, 106.0)

	m, err := usecase.SelectNearest(requester, []entity.Volunteer{b, a})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.VolunteerID != 1 {
		t.Errorf("expected volunteer 1, got %d", m.VolunteerID)
	}
	want := geo.DistanceKm(requester, *a.Location)
	if math.Abs(m.DistanceKm-want) > 1e-9 {
		t.Errorf("distance = %v, want %v", m.DistanceKm, want)
	}
	if m.Location != *a.Location {
		t.Errorf("location = %v, want %v", m.Location, *a.Location)
	}
}

func TestSelectNearest_TieKeepsFirst(t *testing.T) {
	requester := geo.Coordinate{Latitude: 0, Longitude: 0}
	// Симметричные точки дают одинаковое расстояние.
	first := volunteerAt(7, 0, 1)
	second := volunteerAt(3, 0, -1)

	m, err := usecase.SelectNearest(requester, []entity.Volunteer{first, second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.VolunteerID != 7 {
		t.Errorf("tie should keep first candidate (7), got %d", m.VolunteerID)
	}

	m, _ = usecase.SelectNearest(requester, []entity.Volunteer{second, first})
	if m.VolunteerID != 3 {
		t.Errorf("tie should keep first candidate (3), got %d", m.VolunteerID)
	}
}

func TestSelectNearest_SkipsIneligible(t *testing.T) {
	requester := geo.Coordinate{Latitude: 10.0, Longitude: 106.0}

	inactive := volunteerAt(1, 10.0, 106.0)
	inactive.Active = false
	plainUser := volunteerAt(2, 10.0001, 106.0)
	plainUser.Role = entity.RoleUser
	noLocation := entity.Volunteer{ID: 3, Role: entity.RoleVIP, Active: true}
	far := volunteerAt(4, 11.0, 106.0)
	far.Role = entity.RoleVIP

	m, err := usecase.SelectNearest(requester, []entity.Volunteer{inactive, plainUser, noLocation, far})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.VolunteerID != 4 {
		t.Errorf("expected only eligible volunteer 4, got %d", m.VolunteerID)
	}

	_, err = usecase.SelectNearest(requester, []entity.Volunteer{inactive, plainUser, noLocation})
	if !errors.Is(err, usecase.ErrNotFound) {
		t.Errorf("expected ErrNotFound when nobody is eligible, got %v", err)
	}
}
