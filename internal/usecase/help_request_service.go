package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/Sunshower1260/VisionAid/internal/entity"
)

// HelpRequestService управляет вызовами о помощи, назначенными волонтерам.
type HelpRequestService struct {
	Repo         HelpRequestRepository
	StoreTimeout time.Duration
	TTL          time.Duration
}

// NewHelpRequestService создает сервис вызовов. Вызовы старше ttl считаются просроченными.
func NewHelpRequestService(r HelpRequestRepository, storeTimeout, ttl time.Duration) *HelpRequestService {
	if storeTimeout <= 0 {
		storeTimeout = defaultStoreTimeout
	}
	return &HelpRequestService{Repo: r, StoreTimeout: storeTimeout, TTL: ttl}
}

// ListPending возвращает ожидающие вызовы волонтера, новые первыми.
func (s *HelpRequestService) ListPending(ctx context.Context, volunteerID int64) ([]*entity.HelpRequest, error) {
	if volunteerID <= 0 {
		return nil, validationErrorf("invalid volunteer id %d", volunteerID)
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.StoreTimeout)
	defer cancel()

	requests, err := s.Repo.ListPending(storeCtx, volunteerID)
	if err != nil {
		return nil, storeError("list help requests", err)
	}
	if requests == nil {
		requests = []*entity.HelpRequest{}
	}
	return requests, nil
}

// Accept переводит вызов из pending в accepted.
func (s *HelpRequestService) Accept(ctx context.Context, requestID int64) error {
	if requestID <= 0 {
		return validationErrorf("invalid requestId %d", requestID)
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.StoreTimeout)
	defer cancel()

	if err := s.Repo.AcceptHelpRequest(storeCtx, requestID); err != nil {
		if errors.Is(err, entity.ErrNoRecord) {
			return ErrHelpRequestNotFound
		}
		return storeError("accept help request", err)
	}
	return nil
}

// ExpireStale помечает просроченными ожидающие вызовы старше TTL.
// Возраст считается по часам БД, теми же, что проставили created_at.
func (s *HelpRequestService) ExpireStale(ctx context.Context) (int64, error) {
	if s.TTL <= 0 {
		return 0, nil
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.StoreTimeout)
	defer cancel()

	n, err := s.Repo.ExpireHelpRequests(storeCtx, s.TTL)
	if err != nil {
		return 0, storeError("expire help requests", err)
	}
	return n, nil
}
