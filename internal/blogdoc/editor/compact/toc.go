package compact

import (
	"encoding/json"
	"strconv"
)

// TOCEntry - пункт оглавления. Index - позиция заголовка в массиве b сжатого документа.
type TOCEntry struct {
	Level int    `json:"level" yaml:"level"`
	Text  string `json:"text" yaml:"text"`
	ID    string `json:"id,omitempty" yaml:"id,omitempty"`
	Index int    `json:"index" yaml:"index"`
}

// ExtractTOC строит оглавление по сжатому документу без его восстановления.
// Учитываются только заголовки верхнего уровня, порядок совпадает с порядком в документе.
// Некорректный JSON даёт пустое оглавление. Поля заголовка с неверным типом заменяются пустыми значениями.
func ExtractTOC(compactJSON string) []TOCEntry {
	var root struct {
		B []any `json:"b"`
	}
	if err := json.Unmarshal([]byte(compactJSON), &root); err != nil {
		return make([]TOCEntry, 0)
	}
	return tocEntries(root.B)
}

// TOC строит оглавление по документу в памяти. Результат совпадает с ExtractTOC(Marshal(doc)).
func TOC(root *Root) []TOCEntry {
	if root == nil {
		return make([]TOCEntry, 0)
	}
	return tocEntries(root.B)
}

func tocEntries(blocks []any) []TOCEntry {
	toc := make([]TOCEntry, 0)
	for i, raw := range blocks {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		match := headingCodeReg.FindStringSubmatch(getString(m, keyType))
		if match == nil {
			continue
		}
		level, _ := strconv.Atoi(match[1])

		entry := TOCEntry{Level: level, ID: getString(m, keyID), Index: i}
		switch c := m[keyContent].(type) {
		case string:
			entry.Text = c
		case []any:
			entry.Text = plainText(DecodeInline(c))
		}
		toc = append(toc, entry)
	}
	return toc
}
