package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/Sunshower1260/VisionAid/internal/entity"
	"github.com/Sunshower1260/VisionAid/internal/geo"
)

// FamilyService хранит последнее местоположение, которым пользователь делится с родственниками.
type FamilyService struct {
	Repo         FamilyRepository
	StoreTimeout time.Duration
}

func NewFamilyService(r FamilyRepository, storeTimeout time.Duration) *FamilyService {
	if storeTimeout <= 0 {
		storeTimeout = defaultStoreTimeout
	}
	return &FamilyService{Repo: r, StoreTimeout: storeTimeout}
}

// SendLocation перезаписывает последнюю точку пользователя.
func (s *FamilyService) SendLocation(ctx context.Context, userID int64, c geo.Coordinate) error {
	if userID <= 0 {
		return validationErrorf("invalid userId %d", userID)
	}
	if err := c.Validate(); err != nil {
		return &ValidationError{Msg: err.Error()}
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.StoreTimeout)
	defer cancel()

	if err := s.Repo.SaveSharedLocation(storeCtx, userID, c); err != nil {
		if errors.Is(err, entity.ErrNoRecord) {
			return ErrUnknownVolunteer
		}
		return storeError("save shared location", err)
	}
	return nil
}

// LastLocation возвращает последнюю отправленную точку или ErrNoSharedLocation.
func (s *FamilyService) LastLocation(ctx context.Context, userID int64) (*entity.SharedLocation, error) {
	if userID <= 0 {
		return nil, validationErrorf("invalid userId %d", userID)
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.StoreTimeout)
	defer cancel()

	loc, err := s.Repo.LastSharedLocation(storeCtx, userID)
	if err != nil {
		if errors.Is(err, entity.ErrNoRecord) {
			return nil, ErrNoSharedLocation
		}
		return nil, storeError("last shared location", err)
	}
	return loc, nil
}

// ListFamily возвращает родственников пользователя; пустой список, если их нет.
func (s *FamilyService) ListFamily(ctx context.Context, userID int64) ([]entity.FamilyMember, error) {
	if userID <= 0 {
		return nil, validationErrorf("invalid userId %d", userID)
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.StoreTimeout)
	defer cancel()

	members, err := s.Repo.ListFamily(storeCtx, userID)
	if err != nil {
		return nil, storeError("list family", err)
	}
	if members == nil {
		members = []entity.FamilyMember{}
	}
	return members, nil
}
