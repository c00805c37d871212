package domain

import (
	"errors"
	"fmt"
)

// Повторный запуск при уже идущем прогоне отклоняется, не ставится в очередь
var ErrRunInProgress = errors.New("run already in progress")

var ErrRunNotFound = errors.New("run not found")

// ConfigurationError - критерии профиля невыразимы в грамматике запросов
// источника. Пара профиль×источник пропускается, прогон продолжается.
type ConfigurationError struct {
	Source string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("source %s: unsupported profile configuration: %s", e.Source, e.Reason)
}

// FetchError - сеть, таймаут или не-2xx статус при запросе страницы источника.
// Обрывает пагинацию источника, уже собранные страницы сохраняются.
type FetchError struct {
	Source     string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("source %s: fetch %s failed with status %d", e.Source, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("source %s: fetch %s failed: %v", e.Source, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError - ожидаемая структура страницы отсутствует.
// Обрабатывается так же, как FetchError.
type ParseError struct {
	Source string
	URL    string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("source %s: parse %s failed: %s", e.Source, e.URL, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StorageError - хранилище объявлений недоступно. Фатально для текущего
// прогона (результат помечается error), но не для процесса: следующий
// запуск по расписанию состоится.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("listing store: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NotifierError - сбой доставки уведомления. Только логируется:
// обнаружение объявлений уже состоялось, статус прогона не меняется.
type NotifierError struct {
	Notifier string
	Err      error
}

func (e *NotifierError) Error() string {
	return fmt.Sprintf("notifier %s: %v", e.Notifier, e.Err)
}

func (e *NotifierError) Unwrap() error { return e.Err }
