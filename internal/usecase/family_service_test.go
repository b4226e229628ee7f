package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Sunshower1260/VisionAid/internal/entity"
	"github.com/Sunshower1260/VisionAid/internal/geo"
	"github.com/Sunshower1260/VisionAid/internal/usecase"
)

type mockFamilyRepo struct {
	known     map[int64]bool
	locations map[int64]entity.SharedLocation
	members   map[int64][]entity.FamilyMember
	saves     int
	err       error
}

func newMockFamilyRepo(known ...int64) *mockFamilyRepo {
	m := &mockFamilyRepo{
		known:     map[int64]bool{},
		locations: map[int64]entity.SharedLocation{},
		members:   map[int64][]entity.FamilyMember{},
	}
	for _, id := range known {
		m.known[id] = true
	}
	return m
}

func (m *mockFamilyRepo) SaveSharedLocation(ctx context.Context, userID int64, c geo.Coordinate) error {
	if m.err != nil {
		return m.err
	}
	if !m.known[userID] {
		return entity.ErrNoRecord
	}
	m.saves++
	m.locations[userID] = entity.SharedLocation{UserID: userID, Latitude: c.Latitude, Longitude: c.Longitude, Timestamp: time.Now()}
	return nil
}

func (m *mockFamilyRepo) LastSharedLocation(ctx context.Context, userID int64) (*entity.SharedLocation, error) {
	if m.err != nil {
		return nil, m.err
	}
	loc, ok := m.locations[userID]
	if !ok {
		return nil, entity.ErrNoRecord
	}
	return &loc, nil
}

func (m *mockFamilyRepo) ListFamily(ctx context.Context, userID int64) ([]entity.FamilyMember, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.members[userID], nil
}

func TestFamilyService_SendThenLast(t *testing.T) {
	repo := newMockFamilyRepo(1)
	svc := usecase.NewFamilyService(repo, time.Second)
	ctx := context.Background()

	if _, err := svc.LastLocation(ctx, 1); !errors.Is(err, usecase.ErrNoSharedLocation) {
		t.Fatalf("expected ErrNoSharedLocation, got %v", err)
	}

	if err := svc.SendLocation(ctx, 1, geo.Coordinate{Latitude: 10, Longitude: 106}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.SendLocation(ctx, 1, geo.Coordinate{Latitude: 0, Longitude: 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loc, err := svc.LastLocation(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Latitude != 0 || loc.Longitude != 0 {
		t.Errorf("location = %+v, want last write (0,0)", loc)
	}
}

func TestFamilyService_SendRejectsWithoutWrite(t *testing.T) {
	repo := newMockFamilyRepo(1)
	svc := usecase.NewFamilyService(repo, time.Second)
	ctx := context.Background()

	var ve *usecase.ValidationError
	if err := svc.SendLocation(ctx, 1, geo.Coordinate{Latitude: 90.5, Longitude: 0}); !errors.As(err, &ve) {
		t.Errorf("expected ValidationError, got %v", err)
	}
	if err := svc.SendLocation(ctx, 0, geo.Coordinate{Latitude: 1, Longitude: 1}); !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for id 0, got %v", err)
	}
	if repo.saves != 0 {
		t.Errorf("store must not be touched, saves = %d", repo.saves)
	}

	if err := svc.SendLocation(ctx, 2, geo.Coordinate{Latitude: 1, Longitude: 1}); !errors.Is(err, usecase.ErrUnknownVolunteer) {
		t.Errorf("expected ErrUnknownVolunteer, got %v", err)
	}
}

func TestFamilyService_StoreUnavailable(t *testing.T) {
	repo := newMockFamilyRepo(1)
	repo.err = errors.New("connection reset")
	svc := usecase.NewFamilyService(repo, time.Second)
	ctx := context.Background()

	if err := svc.SendLocation(ctx, 1, geo.Coordinate{Latitude: 1, Longitude: 1}); !errors.Is(err, usecase.ErrStoreUnavailable) {
		t.Errorf("send: expected ErrStoreUnavailable, got %v", err)
	}
	if _, err := svc.LastLocation(ctx, 1); !errors.Is(err, usecase.ErrStoreUnavailable) {
		t.Errorf("last: expected ErrStoreUnavailable, got %v", err)
	}
	if _, err := svc.ListFamily(ctx, 1); !errors.Is(err, usecase.ErrStoreUnavailable) {
		t.Errorf("list: expected ErrStoreUnavailable, got %v", err)
	}
}

func TestFamilyService_ListEmptyIsNotNil(t *testing.T) {
	svc := usecase.NewFamilyService(newMockFamilyRepo(), time.Second)
	members, err := svc.ListFamily(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if members == nil {
		t.Error("expected empty slice, got nil")
	}
}
