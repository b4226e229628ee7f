package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound нет ни одного подходящего волонтера. Это не сбой системы.
	ErrNotFound = errors.New("no active volunteers available")
	// ErrHelpRequestNotFound вызов не существует или уже не в статусе pending.
	ErrHelpRequestNotFound = errors.New("help request not found or already handled")
	// ErrNoSharedLocation пользователь ещё не отправлял свое местоположение.
	ErrNoSharedLocation = errors.New("no shared location for this user")
	// ErrStoreUnavailable хранилище недоступно или запрос к нему завершился ошибкой.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError ошибка входных данных, показываемая клиенту.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// ErrUnknownVolunteer отдельный вид ValidationError для неизвестного ID.
var ErrUnknownVolunteer = &ValidationError{Msg: "user not found"}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
