package entity

import (
	"errors"
	"time"

	"github.com/Sunshower1260/VisionAid/internal/geo"
)

// Role роль пользователя. Волонтерами считаются member и vip.
type Role string

const (
	RoleUser   Role = "user"
	RoleMember Role = "member"
	RoleVIP    Role = "vip"
)

// ParseRole проверяет строковое значение роли.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleUser, RoleMember, RoleVIP:
		return r, true
	}
	return "", false
}

// IsVolunteer сообщает, может ли пользователь с этой ролью принимать вызовы.
func (r Role) IsVolunteer() bool {
	return r == RoleMember || r == RoleVIP
}

// Volunteer запись пользователя из таблицы users, нужная для подбора волонтера.
// Location == nil означает, что координаты ещё ни разу не присылались.
type Volunteer struct {
	ID       int64           `json:"id"`
	Email    string          `json:"email"`
	Role     Role            `json:"role"`
	Active   bool            `json:"active"`
	Location *geo.Coordinate `json:"location,omitempty"`
}

// Eligible сообщает, можно ли назначить волонтера на вызов прямо сейчас.
func (v Volunteer) Eligible() bool {
	return v.Role.IsVolunteer() && v.Active && v.Location != nil
}

// Match результат подбора ближайшего волонтера. Не сохраняется.
type Match struct {
	VolunteerID int64          `json:"id"`
	Email       string         `json:"email"`
	Location    geo.Coordinate `json:"location"`
	DistanceKm  float64        `json:"distance_km"`
}

// HelpRequestStatus статус вызова о помощи.
type HelpRequestStatus string

const (
	HelpRequestPending  HelpRequestStatus = "pending"
	HelpRequestAccepted HelpRequestStatus = "accepted"
	HelpRequestExpired  HelpRequestStatus = "expired"
)

// HelpRequest вызов о помощи, назначенный ближайшему волонтеру.
type HelpRequest struct {
	ID          int64             `json:"id"`
	VolunteerID int64             `json:"volunteer_id"`
	Latitude    float64           `json:"latitude"`
	Longitude   float64           `json:"longitude"`
	DistanceKm  float64           `json:"distance_km"`
	Status      HelpRequestStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
}

// LocationEvent публикуется в Redis после обновления координат волонтера.
type LocationEvent struct {
	Event       string  `json:"event"`
	VolunteerID int64   `json:"volunteer_id"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	UpdatedAt   string  `json:"updated_at"`
}

// NotificationEvent структура для отправки в очередь Redis и последующей обработки воркером.
type NotificationEvent struct {
	Event         string  `json:"event"`
	HelpRequestID int64   `json:"help_request_id"`
	VolunteerID   int64   `json:"volunteer_id"`
	Email         string  `json:"email"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	DistanceKm    float64 `json:"distance_km"`
	RequestedAt   string  `json:"requested_at"`
}

// ErrNoRecord возвращается репозиториями, когда запись с указанным ID отсутствует
// или не подходит под условие обновления.
var ErrNoRecord = errors.New("record not found")

// SharedLocation последняя точка, которую пользователь отправил родственникам.
type SharedLocation struct {
	UserID    int64     `json:"userId"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// FamilyMember родственник, привязанный к пользователю.
type FamilyMember struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Relation string `json:"relation"`
}
