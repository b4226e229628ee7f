package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Sunshower1260/VisionAid/internal/entity"
	"github.com/Sunshower1260/VisionAid/internal/usecase"
)

const requeueTimeout = 3 * time.Second

// Worker разбирает очередь уведомлений и доставляет их волонтерам через вебхук.
type Worker struct {
	Queue      usecase.QueueRepository
	QueueName  string
	WebhookURL string
	MaxRetries int
	Client     *http.Client
	Logger     *slog.Logger
	// Backoff задержка перед повторной попыткой номер attempt (с нуля).
	Backoff func(attempt int) time.Duration

	wg sync.WaitGroup
}

// New создает новый экземпляр воркера.
func New(q usecase.QueueRepository, webhookURL string, maxRetries int) *Worker {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Worker{
		Queue:      q,
		QueueName:  usecase.NotificationQueue,
		WebhookURL: webhookURL,
		MaxRetries: maxRetries,
		Client:     &http.Client{Timeout: 5 * time.Second},
		Logger:     slog.Default(),
		Backoff:    linearBackoff,
	}
}

// Линейная задержка: 1s, 3s, 5s...
func linearBackoff(attempt int) time.Duration {
	return time.Duration(2*attempt+1) * time.Second
}

// Start читает очередь до отмены ctx. Каждая задача обрабатывается в своей горутине.
func (w *Worker) Start(ctx context.Context) {
	w.Logger.Info("notification worker started", "queue", w.QueueName)
	for {
		select {
		case <-ctx.Done():
			w.wg.Wait()
			w.Logger.Info("notification worker stopped")
			return
		default:
		}

		// Dequeue блокируется до появления задачи или отмены контекста.
		payload, err := w.Queue.Dequeue(ctx, w.QueueName)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			w.Logger.Error("dequeue failed", "queue", w.QueueName, "err", err)
			sleep(ctx, time.Second)
			continue
		}

		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.handle(ctx, payload)
		}()
	}
}

// handle обрабатывает задачу. Если обработку прервала остановка воркера,
// задача возвращается в очередь, иначе неудачная задача отбрасывается.
func (w *Worker) handle(ctx context.Context, payload string) {
	err := w.Process(ctx, payload)
	if err == nil {
		return
	}
	if ctx.Err() == nil {
		w.Logger.Error("notification dropped", "err", err)
		return
	}

	requeueCtx, cancel := context.WithTimeout(context.Background(), requeueTimeout)
	defer cancel()
	if err := w.Queue.Enqueue(requeueCtx, w.QueueName, json.RawMessage(payload)); err != nil {
		w.Logger.Error("notification lost on shutdown", "err", err, "payload", payload)
		return
	}
	w.Logger.Info("notification requeued on shutdown")
}

// Process доставляет одно уведомление, повторяя попытки до MaxRetries.
func (w *Worker) Process(ctx context.Context, payload string) error {
	var event entity.NotificationEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return fmt.Errorf("decode notification: %w", err)
	}
	log := w.Logger.With("help_request_id", event.HelpRequestID, "volunteer_id", event.VolunteerID)

	var lastErr error
	for i := 0; i < w.MaxRetries; i++ {
		if lastErr = w.send(ctx, payload); lastErr == nil {
			log.Info("volunteer notified", "attempt", i+1)
			return nil
		}
		log.Warn("webhook delivery failed", "attempt", i+1, "max", w.MaxRetries, "err", lastErr)
		if i+1 < w.MaxRetries && !sleep(ctx, w.Backoff(i)) {
			return ctx.Err()
		}
	}
	return fmt.Errorf("gave up after %d attempts: %w", w.MaxRetries, lastErr)
}

func (w *Worker) send(ctx context.Context, payload string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.WebhookURL, bytes.NewBufferString(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned status: %d", resp.StatusCode)
	}
	return nil
}

// sleep ждет d или отмены ctx. Возвращает false, если контекст отменен.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
