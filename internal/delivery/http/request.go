package http

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// flexibleID идентификатор, который клиент может прислать числом или строкой.
// Отсутствующее значение, null, 0 и "" считаются непереданными.
type flexibleID struct {
	Value   int64
	Present bool
	Invalid bool
}

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	*f = flexibleID{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
	} else {
		raw = string(data)
	}

	if raw == "" || raw == "0" {
		return nil
	}
	f.Present = true

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		f.Invalid = true
		return nil
	}
	f.Value = id
	return nil
}

// locationInput тело update-location и family/send-location.
type locationInput struct {
	UserID    flexibleID `json:"userId"`
	Latitude  *float64   `json:"latitude"`
	Longitude *float64   `json:"longitude"`
}

type requestVolunteerInput struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type acceptInput struct {
	RequestID flexibleID `json:"requestId"`
}

type updateRoleInput struct {
	UserID flexibleID `json:"userId"`
	Role   string     `json:"role"`
}

type nearestVolunteer struct {
	ID         int64   `json:"id"`
	Email      string  `json:"email"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	DistanceKm float64 `json:"distance_km"`
}
