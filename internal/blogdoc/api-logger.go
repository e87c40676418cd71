// Ответы ошибками API сервиса постов.
// Все ошибки отдаются в формате apierrors.DefinedError. Неизвестные ошибки логируются с методом, URL и местом вызова, клиенту уходит ErrGeneric.
package blogdoc

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"runtime"

	"github.com/aisa-it/blogdoc/internal/blogdoc/apierrors"
	"github.com/labstack/echo/v4"
)

// Ошибки каталога для статусов, которые echo возвращает сам (лимит тела, недоступное хранилище).
var statusErrors = map[int]apierrors.DefinedError{
	http.StatusRequestEntityTooLarge: apierrors.ErrEntityToLarge,
	http.StatusServiceUnavailable:    apierrors.ErrStorageUnavailable,
}

// EError отвечает ошибкой из каталога, если err ее содержит, иначе логирует err и отвечает ErrGeneric.
func EError(c echo.Context, err error) error {
	var defined apierrors.DefinedError
	if errors.As(err, &defined) {
		return EErrorDefined(c, defined)
	}

	msg := "API error"
	if err == nil {
		msg = "Unknown API error"
	}
	slog.Error(msg, append(requestAttrs(c), "err", err)...)
	return EErrorDefined(c, apierrors.ErrGeneric)
}

// EErrorStatus отвечает ошибкой для HTTP статуса без логирования.
func EErrorStatus(c echo.Context, status int) error {
	if defined, ok := statusErrors[status]; ok {
		return EErrorDefined(c, defined)
	}

	er := apierrors.ErrGeneric
	er.StatusCode = status
	if text := http.StatusText(status); text != "" {
		er.Err = text
	}
	return EErrorDefined(c, er)
}

// EErrorDefined возвращает JSON с ошибкой. Неизвестный статус заменяется на 400.
func EErrorDefined(c echo.Context, err apierrors.DefinedError) error {
	status := err.Status()
	if http.StatusText(status) == "" {
		status = http.StatusBadRequest
	}
	return c.JSON(status, err)
}

func requestAttrs(c echo.Context) []any {
	return []any{
		"method", c.Request().Method,
		"url", c.Request().URL,
		callerAttr(3),
	}
}

func callerAttr(skip int) slog.Attr {
	_, path, no, ok := runtime.Caller(skip)
	if !ok {
		return slog.Attr{}
	}
	return slog.String("caller", fmt.Sprintf("%s:%d", filepath.Base(path), no))
}
