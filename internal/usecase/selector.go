package usecase

import (
	"github.com/Sunshower1260/VisionAid/internal/entity"
	"github.com/Sunshower1260/VisionAid/internal/geo"
)

// SelectNearest возвращает ближайшего к requester подходящего волонтера.
//
// Линейный проход O(n) по кандидатам: меньшее расстояние заменяет текущий минимум,
// при равенстве остается кандидат, встретившийся раньше. Кандидаты, не прошедшие
// Eligible, пропускаются. Если кандидатов больше нескольких сотен, проход стоит
// заменить пространственным индексом (k-d tree или сетка geohash).
func SelectNearest(requester geo.Coordinate, candidates []entity.Volunteer) (entity.Match, error) {
	best := -1
	var bestDist float64

	for i := range candidates {
		v := &candidates[i]
		if !v.Eligible() {
			continue
		}
		dist := geo.DistanceKm(requester, *v.Location)
		if best < 0 || dist < bestDist {
			best = i
			bestDist = dist
		}
	}

	if best < 0 {
		return entity.Match{}, ErrNotFound
	}

	v := candidates[best]
	return entity.Match{
		VolunteerID: v.ID,
		Email:       v.Email,
		Location:    *v.Location,
		DistanceKm:  bestDist,
	}, nil
}
