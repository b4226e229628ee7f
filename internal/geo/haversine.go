// Package geo содержит работу с координатами: валидацию и расстояние по большому кругу.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm средний радиус Земли в километрах.
const EarthRadiusKm = 6371.0

// Coordinate точка на поверхности Земли в градусах.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate проверяет, что широта и долгота лежат в допустимых диапазонах.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", c.Latitude)
	}
	if math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", c.Longitude)
	}
	return nil
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// DistanceKm вычисляет расстояние между двумя точками в километрах по формуле Хаверсина (Haversine).
func DistanceKm(p, q Coordinate) float64 {
	if p == q {
		return 0
	}

	phi1 := toRadians(p.Latitude)
	phi2 := toRadians(q.Latitude)
	deltaPhi := toRadians(q.Latitude - p.Latitude)
	deltaLambda := toRadians(q.Longitude - p.Longitude)

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	// Для антиподов ошибка округления может вывести a за 1.
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}
