// Пакет compact реализует обратимое сжатие канонического дерева документа в компактное
// представление для хранения в key-value хранилище с ограничением на размер значения.
//
// Основные возможности:
//   - Словарь коротких кодов типов нод и марок.
//   - Сжатие дерева в {v, b} с однобуквенными ключами и обратное восстановление.
//   - Определение формата и анимации изображения по URL.
//   - Построение оглавления по уже сжатому документу.
//   - Оценка выигрыша по размеру.
//
// Все функции чистые и безопасны для конкурентного вызова. Обход дерева выполняется
// явным стеком, глубина вложенности пользовательского контента не ограничивает вызовы.
package compact

import (
	"encoding/json"

	"github.com/aisa-it/blogdoc/internal/blogdoc/editor/edtypes"
)

// FormatVersion - версия компактного формата, поле v корня.
const FormatVersion = 1

// Ключи компактного представления.
const (
	keyVersion = "v"
	keyBlocks  = "b"
	keyType    = "t"
	keyContent = "c"
	keyItems   = "i"
	keyAttrs   = "a"
	keySrc     = "s"
	keyFormat  = "f"
	keyAnim    = "anim"
	keyWidth   = "w"
	keyHeight  = "h"
	keyAlign   = "align"
	keyTitle   = "title"
	keyLang    = "lang"
	keyCode    = "code"
	keyRows    = "rows"
	keyCells   = "cells"
	keyID      = "id"
	keyMarks   = "m"
	keyText    = "text"

	// ключи внутри марки-ссылки
	keyHref   = "h"
	keyTarget = "target"
)

// defaultLanguage - язык блока кода, если редактор его не указал.
const defaultLanguage = "plaintext"

// Root - корень компактного дерева. Элементы B - map[string]any с компактными ключами.
type Root struct {
	V int   `json:"v" yaml:"v"`
	B []any `json:"b" yaml:"b"`
}

// Marshal сжимает документ и сериализует его в JSON для хранилища.
// Результат детерминирован: ключи объектов сортируются encoding/json.
func Marshal(doc *edtypes.Document) ([]byte, error) {
	return json.Marshal(Compress(doc))
}

// Unmarshal разбирает компактный JSON и восстанавливает документ.
// Ошибка возвращается только для синтаксически некорректного JSON.
func Unmarshal(data []byte) (*edtypes.Document, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return Decompress(raw), nil
}

// DecompressString восстанавливает документ из компактной строки.
// Некорректный JSON даёт пустой документ.
func DecompressString(s string) *edtypes.Document {
	doc, err := Unmarshal([]byte(s))
	if err != nil {
		return &edtypes.Document{}
	}
	return doc
}
