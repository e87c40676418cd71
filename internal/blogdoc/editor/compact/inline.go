package compact

import (
	"maps"

	"github.com/aisa-it/blogdoc/internal/blogdoc/editor/edtypes"
)

// EncodeInline сжимает последовательность инлайн-нод (текст с марками, переносы строк).
// Прочие ноды внутри абзаца кодируются так же, как блоки.
func EncodeInline(nodes []edtypes.Node) []any {
	var c compressor
	out := c.schedule(nodes)
	c.run()
	if out == nil {
		return []any{}
	}
	return out
}

// DecodeInline восстанавливает инлайн-ноды из компактного представления.
func DecodeInline(items []any) []edtypes.Node {
	var d decompressor
	out := d.schedule(items)
	d.run()
	return out
}

// encodeText: {text} без марок, {text, m} с марками.
func encodeText(t *edtypes.Text) map[string]any {
	m := map[string]any{keyText: t.Text}
	if len(t.Marks) > 0 {
		marks := make([]any, 0, len(t.Marks))
		for _, mark := range t.Marks {
			if mark == nil {
				continue
			}
			marks = append(marks, encodeMark(mark))
		}
		if len(marks) > 0 {
			m[keyMarks] = marks
		}
	}
	return m
}

// encodeMark: марка без атрибутов - строка с кодом, ссылка - {t:"a", h, target?}.
func encodeMark(mark edtypes.Mark) any {
	switch v := mark.(type) {
	case edtypes.Link:
		m := map[string]any{
			keyType: ToCompactCode(edtypes.MarkLink),
			keyHref: v.Href,
		}
		if v.Target != "" {
			m[keyTarget] = v.Target
		}
		return m
	case edtypes.OtherMark:
		if len(v.Attrs) > 0 {
			return map[string]any{
				keyType:  ToCompactCode(v.Name),
				keyAttrs: maps.Clone(v.Attrs),
			}
		}
		return ToCompactCode(v.Name)
	default:
		return ToCompactCode(mark.MarkType())
	}
}

func decodeText(m map[string]any) *edtypes.Text {
	t := &edtypes.Text{Text: getString(m, keyText)}

	rawMarks, _ := m[keyMarks].([]any)
	for _, raw := range rawMarks {
		if mark := decodeMark(raw); mark != nil {
			t.Marks = append(t.Marks, mark)
		}
	}
	return t
}

// decodeMark восстанавливает марку. Код вне словаря даёт OtherMark с пустым именем:
// исходное имя не сохраняется, это известное ограничение формата v1.
func decodeMark(raw any) edtypes.Mark {
	switch v := raw.(type) {
	case string:
		return markByCode(v, nil)
	case map[string]any:
		code := getString(v, keyType)
		if code == ToCompactCode(edtypes.MarkLink) {
			return edtypes.Link{
				Href:   getString(v, keyHref),
				Target: getString(v, keyTarget),
			}
		}
		attrs, _ := v[keyAttrs].(map[string]any)
		return markByCode(code, attrs)
	default:
		return nil
	}
}

func markByCode(code string, attrs map[string]any) edtypes.Mark {
	name, _ := LookupCanonical(code)
	switch name {
	case edtypes.MarkBold:
		return edtypes.Bold{}
	case edtypes.MarkItalic:
		return edtypes.Italic{}
	case edtypes.MarkLink:
		return edtypes.Link{}
	}
	m := edtypes.OtherMark{Name: name}
	if len(attrs) > 0 {
		m.Attrs = attrs
	}
	return m
}
