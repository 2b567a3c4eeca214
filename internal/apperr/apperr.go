// Package apperr содержит классификацию ошибок сервиса.
// Обработчики превращают Kind в HTTP-статус, не разбирая текст ошибки.
package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"
)

// Kind — категория ошибки
type Kind string

const (
	// KindUnauthenticated — запрос без валидных учётных данных
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	// KindForbidden — у пользователя нет прав на ресурс
	KindForbidden Kind = "FORBIDDEN"
	// KindNotFound — сущность не найдена
	KindNotFound Kind = "NOT_FOUND"
	// KindInvalidState — операция недопустима в текущем статусе сущности
	KindInvalidState Kind = "INVALID_STATE"
	// KindStorage — ошибка хранилища, не логическая
	KindStorage Kind = "STORAGE"
)

// Error — ошибка с категорией и сообщением для клиента
type Error struct {
	Kind    Kind
	Message string
	Err     error // внутренняя причина, клиенту не отдаётся
}

// Error реализует интерфейс error
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap отдаёт внутреннюю причину для errors.Is/As
func (e *Error) Unwrap() error {
	return e.Err
}

// Unauthenticated создаёт ошибку отсутствия авторизации
func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

// Forbidden создаёт ошибку доступа
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NotFound создаёт ошибку отсутствия сущности
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// InvalidState создаёт ошибку недопустимого состояния
func InvalidState(message string) *Error {
	return &Error{Kind: KindInvalidState, Message: message}
}

// Storage оборачивает ошибку хранилища. Клиент увидит общий текст,
// детали остаются для логов.
func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Message: "Ошибка базы данных", Err: err}
}

// KindOf возвращает категорию ошибки или KindStorage для посторонних ошибок
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindStorage
}

// IsKind проверяет категорию с учётом обёрток
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus сопоставляет категорию с HTTP-статусом
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindUnauthenticated:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	case KindInvalidState:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// ClientMessage возвращает текст, который можно показать клиенту
func ClientMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "Внутренняя ошибка сервера"
}
