package usecase

import (
	"context"
	"time"

	"github.com/Sunshower1260/VisionAid/internal/entity"
	"github.com/Sunshower1260/VisionAid/internal/geo"
)

type VolunteerRepository interface {
	ListEligible(ctx context.Context) ([]entity.Volunteer, error)                      // role member/vip, active, with coordinates
	UpdateLocation(ctx context.Context, volunteerID int64, c geo.Coordinate) error     // entity.ErrNoRecord if id is unknown
	UpdateRole(ctx context.Context, userID int64, role entity.Role, active bool) error // entity.ErrNoRecord if id is unknown
}

type HelpRequestRepository interface {
	CreateHelpRequest(ctx context.Context, r *entity.HelpRequest) error
	ListPending(ctx context.Context, volunteerID int64) ([]*entity.HelpRequest, error)
	AcceptHelpRequest(ctx context.Context, id int64) error                          // entity.ErrNoRecord if missing or not pending
	ExpireHelpRequests(ctx context.Context, olderThan time.Duration) (int64, error) // age measured by the store clock
}

type FamilyRepository interface {
	SaveSharedLocation(ctx context.Context, userID int64, c geo.Coordinate) error         // entity.ErrNoRecord if user is unknown
	LastSharedLocation(ctx context.Context, userID int64) (*entity.SharedLocation, error) // entity.ErrNoRecord if nothing shared
	ListFamily(ctx context.Context, userID int64) ([]entity.FamilyMember, error)
}

type QueueRepository interface {
	Enqueue(ctx context.Context, queue string, payload interface{}) error
	Dequeue(ctx context.Context, queue string) (string, error) // Returns payload JSON
}

type EventPublisher interface {
	PublishLocation(ctx context.Context, event entity.LocationEvent) error
}

// Recorder принимает доменные метрики. Реализуется пакетом observability.
type Recorder interface {
	ObserveMatch(distanceKm float64)
	ObserveNoMatch()
	ObserveLocationUpdate(result string)
}

type noopRecorder struct{}

func (noopRecorder) ObserveMatch(float64)         {}
func (noopRecorder) ObserveNoMatch()              {}
func (noopRecorder) ObserveLocationUpdate(string) {}
