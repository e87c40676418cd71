// Трассировка ошибок хранилища постов: каждый уровень, через который прошла ошибка, добавляет в стек файл и строку вызова.
// Итоговый стек и контекст (ключ поста, бэкенд) выводятся в лог один раз, в обработчике запроса.
package stack_error

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/labstack/echo/v4"
)

type TrackerError struct {
	Context  map[string]any
	ErrStack []slog.Attr
	cause    error
}

// TrackErrorStack добавляет место вызова в стек ошибки. Если err уже TrackerError, стек дополняется, иначе создается новый.
func TrackErrorStack(err error) *TrackerError {
	if err == nil {
		return nil
	}
	var te *TrackerError
	if errors.As(err, &te) {
		te.ErrStack = append(te.ErrStack, getCallerFile(err, 2))
		return te
	}

	newTe := newTrackError(err)
	newTe.ErrStack = append(newTe.ErrStack, getCallerFile(err, 2))
	return newTe
}

// Wrap - TrackErrorStack с сообщением операции, исходная ошибка доступна через errors.Is.
func Wrap(op string, err error) *TrackerError {
	if err == nil {
		return nil
	}
	var te *TrackerError
	if errors.As(err, &te) {
		te.ErrStack = append(te.ErrStack, getCallerFile(err, 2))
		return te
	}

	newTe := newTrackError(fmt.Errorf("%s: %w", op, err))
	newTe.ErrStack = append(newTe.ErrStack, getCallerFile(newTe.cause, 2))
	return newTe
}

func newTrackError(err error) *TrackerError {
	return &TrackerError{
		Context:  make(map[string]any),
		ErrStack: make([]slog.Attr, 0),
		cause:    err,
	}
}

// AddContext не перезаписывает значение, добавленное на более глубоком уровне.
func (te *TrackerError) AddContext(k string, v any) *TrackerError {
	if _, ok := te.Context[k]; !ok {
		te.Context[k] = v
	}
	return te
}

func (te *TrackerError) AddErr(err error) *TrackerError {
	te.ErrStack = append(te.ErrStack, getCallerFile(err, 2))
	return te
}

// GetError пишет ошибку в лог вместе со стеком, контекстом и данными запроса.
func GetError(c echo.Context, err error) {
	if err == nil {
		return
	}
	var trackerError *TrackerError
	var attrs []any

	if errors.As(err, &trackerError) {
		attrs = trackerError.getAttrs()
		attrs = append(attrs, slog.String("err", trackerError.Error()))
	} else {
		attrs = []any{slog.String("raw_error", err.Error())}
	}

	if c != nil {
		attrs = append(attrs,
			slog.String("method", c.Request().Method),
			slog.String("url", c.Request().URL.String()))
	}

	slog.With(attrs...).Error("stack error")
}

func (te *TrackerError) Error() string {
	if te.cause != nil {
		return te.cause.Error()
	}
	return "TrackerError"
}

func (te *TrackerError) Unwrap() error {
	return te.cause
}

// Stack - строки стека в порядке добавления.
func (te *TrackerError) Stack() []string {
	res := make([]string, 0, len(te.ErrStack))
	for _, attr := range te.ErrStack {
		res = append(res, attr.Value.String())
	}
	return res
}

func (te *TrackerError) getAttrs() []any {
	keys := make([]string, 0, len(te.Context))
	for k := range te.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	res := make([]any, 0, len(te.Context)+1)
	for _, k := range keys {
		res = append(res, slog.Any(k, te.Context[k]))
	}
	if len(te.ErrStack) > 0 {
		res = append(res, slog.Any("trace", te.Stack()))
	}
	return res
}

func getCallerFile(err error, skip int) slog.Attr {
	_, path, no, ok := runtime.Caller(skip)
	if !ok {
		return slog.String("trace", "unknown")
	}
	_, file := filepath.Split(path)
	return slog.String("trace", fmt.Sprintf("%s:%d %s", file, no, err.Error()))
}
