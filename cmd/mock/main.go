// Команда mock принимает уведомления воркера вместо реального сервиса доставки.
package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/Sunshower1260/VisionAid/internal/entity"
	"github.com/Sunshower1260/VisionAid/internal/logging"
)

// Delivery уведомление, хранимое в памяти мок-сервера.
type Delivery struct {
	Notification entity.NotificationEvent `json:"notification"`
	ReceivedAt   string                   `json:"received_at"`
}

type sink struct {
	mu         sync.Mutex
	deliveries []Delivery
	logger     *slog.Logger
}

func (s *sink) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		defer r.Body.Close()
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}

		var n entity.NotificationEvent
		if err := json.Unmarshal(body, &n); err != nil {
			s.logger.Warn("invalid notification", "err", err)
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		s.logger.Info("notification received",
			"help_request_id", n.HelpRequestID,
			"volunteer_id", n.VolunteerID,
			"email", n.Email,
			"distance_km", n.DistanceKm,
		)

		s.mu.Lock()
		s.deliveries = append(s.deliveries, Delivery{
			Notification: n,
			ReceivedAt:   time.Now().UTC().Format(time.RFC3339),
		})
		s.mu.Unlock()

		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "OK")

	case http.MethodGet:
		s.mu.Lock()
		defer s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s.deliveries); err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "9090"
	}
	logger := logging.New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	s := &sink{deliveries: []Delivery{}, logger: logger}
	logger.Info("mock notification sink listening", "port", port)
	if err := http.ListenAndServe(":"+port, s); err != nil {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
