package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sunshower1260/VisionAid/internal/entity"
	"github.com/Sunshower1260/VisionAid/internal/geo"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepo реализация репозиториев на основе PostgreSQL.
type PostgresRepo struct {
	Pool *pgxpool.Pool
}

// New создает новое подключение к PostgreSQL.
func New(ctx context.Context, dsn string) (*PostgresRepo, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping failed: %w", err)
	}

	return &PostgresRepo{Pool: pool}, nil
}

// Close закрывает пул соединений.
func (r *PostgresRepo) Close() {
	r.Pool.Close()
}

// Ping проверяет соединение с БД.
func (r *PostgresRepo) Ping(ctx context.Context) error {
	return r.Pool.Ping(ctx)
}

// Volunteer Repository

// ListEligible возвращает волонтеров, которых можно назначить на вызов.
// Фильтрация выполняется в БД, порядок по id задает детерминированный выбор при равных расстояниях.
func (r *PostgresRepo) ListEligible(ctx context.Context) ([]entity.Volunteer, error) {
	sql := `SELECT id, email, role, active, latitude, longitude
			FROM users
			WHERE role IN ('member', 'vip')
			  AND active
			  AND latitude IS NOT NULL
			  AND longitude IS NOT NULL
			ORDER BY id`
	rows, err := r.Pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var volunteers []entity.Volunteer
	for rows.Next() {
		var (
			v        entity.Volunteer
			role     string
			lat, lon *float64
		)
		if err := rows.Scan(&v.ID, &v.Email, &role, &v.Active, &lat, &lon); err != nil {
			return nil, err
		}
		v.Role = entity.Role(role)
		if lat != nil && lon != nil {
			v.Location = &geo.Coordinate{Latitude: *lat, Longitude: *lon}
		}
		volunteers = append(volunteers, v)
	}
	return volunteers, rows.Err()
}

// UpdateLocation перезаписывает координаты одной строкой UPDATE (last-write-wins).
func (r *PostgresRepo) UpdateLocation(ctx context.Context, volunteerID int64, c geo.Coordinate) error {
	sql := `UPDATE users SET latitude = $1, longitude = $2, location_updated_at = NOW() WHERE id = $3`
	ct, err := r.Pool.Exec(ctx, sql, c.Latitude, c.Longitude, volunteerID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return entity.ErrNoRecord
	}
	return nil
}

// UpdateRole устанавливает роль и флаг активности пользователя.
func (r *PostgresRepo) UpdateRole(ctx context.Context, userID int64, role entity.Role, active bool) error {
	sql := `UPDATE users SET role = $1, active = $2 WHERE id = $3`
	ct, err := r.Pool.Exec(ctx, sql, string(role), active, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return entity.ErrNoRecord
	}
	return nil
}

// HelpRequest Repository

// CreateHelpRequest сохраняет новый вызов о помощи.
func (r *PostgresRepo) CreateHelpRequest(ctx context.Context, hr *entity.HelpRequest) error {
	sql := `INSERT INTO help_requests (volunteer_id, latitude, longitude, distance_km, status, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING id, created_at`
	return r.Pool.QueryRow(ctx, sql, hr.VolunteerID, hr.Latitude, hr.Longitude, hr.DistanceKm, string(hr.Status)).
		Scan(&hr.ID, &hr.CreatedAt)
}

// ListPending возвращает ожидающие вызовы волонтера, новые первыми.
func (r *PostgresRepo) ListPending(ctx context.Context, volunteerID int64) ([]*entity.HelpRequest, error) {
	sql := `SELECT id, volunteer_id, latitude, longitude, distance_km, status, created_at
			FROM help_requests
			WHERE volunteer_id = $1 AND status = 'pending'
			ORDER BY created_at DESC`
	rows, err := r.Pool.Query(ctx, sql, volunteerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.HelpRequest, error) {
		var (
			hr     entity.HelpRequest
			status string
		)
		if err := row.Scan(&hr.ID, &hr.VolunteerID, &hr.Latitude, &hr.Longitude, &hr.DistanceKm, &status, &hr.CreatedAt); err != nil {
			return nil, err
		}
		hr.Status = entity.HelpRequestStatus(status)
		return &hr, nil
	})
}

// AcceptHelpRequest переводит вызов в accepted, только если он ещё pending.
func (r *PostgresRepo) AcceptHelpRequest(ctx context.Context, id int64) error {
	sql := `UPDATE help_requests SET status = 'accepted', accepted_at = NOW() WHERE id = $1 AND status = 'pending'`
	ct, err := r.Pool.Exec(ctx, sql, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return entity.ErrNoRecord
	}
	return nil
}

// ExpireHelpRequests помечает просроченными ожидающие вызовы старше olderThan.
// Граница считается от NOW() БД, чтобы расхождение часов приложения и БД не сдвигало истечение.
func (r *PostgresRepo) ExpireHelpRequests(ctx context.Context, olderThan time.Duration) (int64, error) {
	sql := `UPDATE help_requests SET status = 'expired'
			WHERE status = 'pending'
			  AND created_at < NOW() - $1::double precision * INTERVAL '1 second'`
	ct, err := r.Pool.Exec(ctx, sql, olderThan.Seconds())
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

// Family Repository

// SaveSharedLocation сохраняет последнюю точку пользователя (upsert по user_id).
func (r *PostgresRepo) SaveSharedLocation(ctx context.Context, userID int64, c geo.Coordinate) error {
	sql := `INSERT INTO shared_locations (user_id, latitude, longitude, shared_at)
			SELECT id, $2, $3, NOW() FROM users WHERE id = $1
			ON CONFLICT (user_id) DO UPDATE
			SET latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude, shared_at = EXCLUDED.shared_at`
	ct, err := r.Pool.Exec(ctx, sql, userID, c.Latitude, c.Longitude)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return entity.ErrNoRecord
	}
	return nil
}

// LastSharedLocation возвращает последнюю точку пользователя.
func (r *PostgresRepo) LastSharedLocation(ctx context.Context, userID int64) (*entity.SharedLocation, error) {
	sql := `SELECT user_id, latitude, longitude, shared_at FROM shared_locations WHERE user_id = $1`
	var loc entity.SharedLocation
	err := r.Pool.QueryRow(ctx, sql, userID).Scan(&loc.UserID, &loc.Latitude, &loc.Longitude, &loc.Timestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entity.ErrNoRecord
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// ListFamily возвращает родственников пользователя.
func (r *PostgresRepo) ListFamily(ctx context.Context, userID int64) ([]entity.FamilyMember, error) {
	sql := `SELECT u.id, u.email, f.relation
			FROM family_members f
			JOIN users u ON u.id = f.member_id
			WHERE f.user_id = $1
			ORDER BY u.id`
	rows, err := r.Pool.Query(ctx, sql, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.FamilyMember, error) {
		var m entity.FamilyMember
		err := row.Scan(&m.ID, &m.Email, &m.Relation)
		return m, err
	})
}
