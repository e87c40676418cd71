// Пакет содержит определения ошибок API сервиса постов: разбор документов редактора и компактного формата, импорт HTML, хранение постов и экспорт.  Каждая ошибка имеет код, статус HTTP и описание на английском и русском языках.  Также включает в себя helper-функцию для форматирования сообщений об ошибках.
//
// Основные возможности:
//   - Определение ошибок кодека (4***), постов (41**), экспорта (42**) и общих ошибок сервиса (5***).
//   - Предоставление кодов ошибок, соответствующих кодам HTTP статусов.
//   - Функция для форматирования сообщений об ошибках с использованием аргументов.
package apierrors

import (
	"fmt"
	"net/http"
	"strings"
)

type DefinedError struct {
	Code       int    `json:"code"`
	StatusCode int    `json:"-"`
	Err        string `json:"error"`
	RuErr      string `json:"ru_error,omitempty"`
}

func (e DefinedError) Error() string {
	return e.Err
}

// Status возвращает HTTP статус ошибки, по умолчанию 400.
func (e DefinedError) Status() int {
	if e.StatusCode == 0 {
		return http.StatusBadRequest
	}
	return e.StatusCode
}

var (
	// 4*** - codec errors
	ErrInvalidDocument     = DefinedError{Code: 4001, StatusCode: http.StatusBadRequest, Err: "invalid editor document", RuErr: "Некорректный документ редактора"}
	ErrInvalidCompact      = DefinedError{Code: 4002, StatusCode: http.StatusBadRequest, Err: "invalid compact document JSON", RuErr: "Некорректный JSON компактного документа"}
	ErrHTMLRequired        = DefinedError{Code: 4003, StatusCode: http.StatusBadRequest, Err: "html is required", RuErr: "Поле html не может быть пустым"}
	ErrHTMLImportFailed    = DefinedError{Code: 4004, StatusCode: http.StatusUnprocessableEntity, Err: "html import failed", RuErr: "Не удалось импортировать HTML"}
	ErrEstimateBodyInvalid = DefinedError{Code: 4005, StatusCode: http.StatusBadRequest, Err: "original and compressed are required", RuErr: "Необходимо указать исходный и сжатый документ"}
	ErrMinifyFailed        = DefinedError{Code: 4006, StatusCode: http.StatusBadRequest, Err: "original document cannot be minified", RuErr: "Не удалось минифицировать исходный документ"}

	// 41** - post errors
	ErrPostNotFound  = DefinedError{Code: 4101, StatusCode: http.StatusNotFound, Err: "post not found", RuErr: "Пост не найден"}
	ErrPostTooLarge  = DefinedError{Code: 4102, StatusCode: http.StatusRequestEntityTooLarge, Err: "compact post size %s exceeds the limit", RuErr: "Размер сжатого поста %s превышает допустимый"}
	ErrInvalidPostID = DefinedError{Code: 4103, StatusCode: http.StatusBadRequest, Err: "invalid post ID", RuErr: "Указан неверный ID поста"}

	// 42** - export errors
	ErrExportFailed      = DefinedError{Code: 4201, StatusCode: http.StatusInternalServerError, Err: "export to %s failed", RuErr: "Не удалось выполнить экспорт в %s"}
	ErrUnsupportedFormat = DefinedError{Code: 4202, StatusCode: http.StatusBadRequest, Err: "unsupported output format %s", RuErr: "Формат %s не поддерживается"}

	// 5*** - service errors
	ErrGeneric            = DefinedError{Code: 5000, StatusCode: http.StatusBadRequest, Err: "Something went wrong. Please try again later or contact the support team.", RuErr: "Что-то пошло не так. Повторите попытку позже или обратитесь в службу поддержки"}
	ErrStorageUnavailable = DefinedError{Code: 5001, StatusCode: http.StatusServiceUnavailable, Err: "post storage unavailable", RuErr: "Хранилище постов недоступно"}
	ErrRequestValidation  = DefinedError{Code: 5002, StatusCode: http.StatusBadRequest, Err: "request validation failed: %s", RuErr: "Некорректный запрос: %s"}
	ErrEntityToLarge      = DefinedError{Code: 5003, StatusCode: http.StatusRequestEntityTooLarge, Err: "size exceeds the allowed limit", RuErr: "Размер запроса превышает допустимый"}
)

func (e DefinedError) WithFormattedMessage(args ...interface{}) DefinedError {
	if len(args) > 0 {
		e.Err = fmt.Sprintf(e.Err, args...)
		e.RuErr = fmt.Sprintf(e.RuErr, args...)
	} else {
		e.Err = strings.Replace(e.Err, "%s", "", -1)
		e.RuErr = strings.Replace(e.RuErr, "%s", "", -1)
	}
	return e
}
