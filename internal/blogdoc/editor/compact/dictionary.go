package compact

import "github.com/aisa-it/blogdoc/internal/blogdoc/editor/edtypes"

// Коды callout обрабатываются компрессором напрямую, в словарь они не входят.
const (
	codeCalloutInfo    = "info"
	codeCalloutSuccess = "success"
	codeHeading        = "h"
)

var toCompact = map[string]string{
	edtypes.TypeHeading:        codeHeading,
	edtypes.TypeParagraph:      "p",
	edtypes.TypeBulletList:     "ul",
	edtypes.TypeOrderedList:    "ol",
	edtypes.TypeListItem:       "li",
	edtypes.TypeImage:          "img",
	edtypes.TypeCodeBlock:      "code",
	edtypes.TypeTable:          "tbl",
	edtypes.TypeTableRow:       "tr",
	edtypes.TypeTableCell:      "td",
	edtypes.TypeTableHeader:    "th",
	edtypes.TypeBlockquote:     "q",
	edtypes.TypeHorizontalRule: "hr",
	edtypes.TypeHardBreak:      "br",
	edtypes.MarkBold:           "b",
	edtypes.MarkItalic:         "i",
	edtypes.MarkLink:           "a",
}

var toCanonical = func() map[string]string {
	m := make(map[string]string, len(toCompact))
	for canonical, code := range toCompact {
		m[code] = canonical
	}
	return m
}()

// ToCompactCode возвращает короткий код для канонического типа.
// Типы вне словаря возвращаются без изменений.
func ToCompactCode(canonicalType string) string {
	if code, ok := toCompact[canonicalType]; ok {
		return code
	}
	return canonicalType
}

// ToCanonicalType возвращает канонический тип для короткого кода.
// Коды вне словаря возвращаются без изменений.
func ToCanonicalType(code string) string {
	if canonical, ok := toCanonical[code]; ok {
		return canonical
	}
	return code
}

// LookupCanonical ищет канонический тип для кода без подстановки кода вместо отсутствующего значения.
func LookupCanonical(code string) (string, bool) {
	canonical, ok := toCanonical[code]
	return canonical, ok
}
