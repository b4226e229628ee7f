package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Sunshower1260/VisionAid/internal/entity"
	"github.com/Sunshower1260/VisionAid/internal/geo"
)

const (
	// NotificationQueue имя очереди уведомлений волонтерам.
	NotificationQueue = "volunteer_notifications"

	defaultStoreTimeout = 3 * time.Second
	asyncTimeout        = 10 * time.Second
)

// VolunteerService подбирает ближайшего волонтера и принимает координаты от волонтеров.
type VolunteerService struct {
	Volunteers   VolunteerRepository
	Requests     HelpRequestRepository
	Queue        QueueRepository
	Events       EventPublisher
	Metrics      Recorder
	Logger       *slog.Logger
	QueueName    string
	StoreTimeout time.Duration

	wg sync.WaitGroup
}

// NewVolunteerService создает сервис с таймаутом обращения к хранилищу storeTimeout.
func NewVolunteerService(v VolunteerRepository, r HelpRequestRepository, q QueueRepository, e EventPublisher, storeTimeout time.Duration) *VolunteerService {
	if storeTimeout <= 0 {
		storeTimeout = defaultStoreTimeout
	}
	return &VolunteerService{
		Volunteers:   v,
		Requests:     r,
		Queue:        q,
		Events:       e,
		Metrics:      noopRecorder{},
		Logger:       slog.Default(),
		QueueName:    NotificationQueue,
		StoreTimeout: storeTimeout,
	}
}

// FindNearest читает актуальный список подходящих волонтеров и выбирает ближайшего.
// Список не кешируется: каждый вызов видит состояние хранилища на момент запроса.
func (s *VolunteerService) FindNearest(ctx context.Context, requester geo.Coordinate) (entity.Match, error) {
	if err := requester.Validate(); err != nil {
		return entity.Match{}, &ValidationError{Msg: err.Error()}
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.StoreTimeout)
	defer cancel()

	candidates, err := s.Volunteers.ListEligible(storeCtx)
	if err != nil {
		return entity.Match{}, storeError("list eligible volunteers", err)
	}

	match, err := SelectNearest(requester, candidates)
	if err != nil {
		s.Metrics.ObserveNoMatch()
		return entity.Match{}, err
	}
	s.Metrics.ObserveMatch(match.DistanceKm)
	return match, nil
}

// RequestVolunteer подбирает волонтера и в фоне регистрирует вызов и уведомление.
// Ошибки фоновой части только логируются и не влияют на результат.
func (s *VolunteerService) RequestVolunteer(ctx context.Context, requester geo.Coordinate) (entity.Match, error) {
	match, err := s.FindNearest(ctx, requester)
	if err != nil {
		return entity.Match{}, err
	}

	// Новый контекст, чтобы фоновая запись не прервалась вместе с HTTP-запросом.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		asyncCtx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
		defer cancel()
		s.dispatchHelpRequest(asyncCtx, requester, match)
	}()

	return match, nil
}

func (s *VolunteerService) dispatchHelpRequest(ctx context.Context, requester geo.Coordinate, match entity.Match) {
	if s.Requests == nil {
		return
	}

	req := &entity.HelpRequest{
		VolunteerID: match.VolunteerID,
		Latitude:    requester.Latitude,
		Longitude:   requester.Longitude,
		DistanceKm:  match.DistanceKm,
		Status:      entity.HelpRequestPending,
	}
	if err := s.Requests.CreateHelpRequest(ctx, req); err != nil {
		s.Logger.Error("failed to create help request", "volunteer_id", match.VolunteerID, "err", err)
		return
	}

	if s.Queue == nil {
		return
	}
	payload := entity.NotificationEvent{
		Event:         "volunteer_requested",
		HelpRequestID: req.ID,
		VolunteerID:   match.VolunteerID,
		Email:         match.Email,
		Latitude:      requester.Latitude,
		Longitude:     requester.Longitude,
		DistanceKm:    match.DistanceKm,
		RequestedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Queue.Enqueue(ctx, s.QueueName, payload); err != nil {
		s.Logger.Warn("failed to enqueue volunteer notification", "help_request_id", req.ID, "err", err)
	}
}

// UpdateLocation перезаписывает координаты волонтера (last-write-wins).
// При невалидных координатах хранилище не затрагивается.
func (s *VolunteerService) UpdateLocation(ctx context.Context, volunteerID int64, c geo.Coordinate) error {
	if volunteerID <= 0 {
		s.Metrics.ObserveLocationUpdate("invalid")
		return validationErrorf("invalid userId %d", volunteerID)
	}
	if err := c.Validate(); err != nil {
		s.Metrics.ObserveLocationUpdate("invalid")
		return &ValidationError{Msg: err.Error()}
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.StoreTimeout)
	defer cancel()

	if err := s.Volunteers.UpdateLocation(storeCtx, volunteerID, c); err != nil {
		if errors.Is(err, entity.ErrNoRecord) {
			s.Metrics.ObserveLocationUpdate("unknown")
			return ErrUnknownVolunteer
		}
		s.Metrics.ObserveLocationUpdate("error")
		return storeError("update location", err)
	}
	s.Metrics.ObserveLocationUpdate("ok")

	if s.Events != nil {
		event := entity.LocationEvent{
			Event:       "volunteer.location_updated",
			VolunteerID: volunteerID,
			Latitude:    c.Latitude,
			Longitude:   c.Longitude,
			UpdatedAt:   time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.Events.PublishLocation(ctx, event); err != nil {
			s.Logger.Warn("publish location event failed", "volunteer_id", volunteerID, "err", err)
		}
	}
	return nil
}

// UpdateRole назначает роль пользователю. Роли member и vip делают его активным волонтером.
func (s *VolunteerService) UpdateRole(ctx context.Context, userID int64, role string) error {
	if userID <= 0 {
		return validationErrorf("invalid userId %d", userID)
	}
	r, ok := entity.ParseRole(role)
	if !ok {
		return validationErrorf("unknown role %q", role)
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.StoreTimeout)
	defer cancel()

	if err := s.Volunteers.UpdateRole(storeCtx, userID, r, r.IsVolunteer()); err != nil {
		if errors.Is(err, entity.ErrNoRecord) {
			return ErrUnknownVolunteer
		}
		return storeError("update role", err)
	}
	return nil
}

// Wait дожидается завершения фоновых задач. Вызывается при остановке сервера.
func (s *VolunteerService) Wait() {
	s.wg.Wait()
}
