package tiptap

import (
	"github.com/aisa-it/blogdoc/internal/blogdoc/editor/edtypes"
)

// parseMarks преобразует форматирование (marks) текстовой ноды.
func parseMarks(marks []TipTapMark) []edtypes.Mark {
	if len(marks) == 0 {
		return nil
	}

	res := make([]edtypes.Mark, 0, len(marks))
	for _, mark := range marks {
		switch mark.Type {
		case edtypes.MarkBold:
			res = append(res, edtypes.Bold{})
		case edtypes.MarkItalic:
			res = append(res, edtypes.Italic{})
		case edtypes.MarkLink:
			res = append(res, edtypes.Link{
				Href:   attrString(mark.Attrs, "href"),
				Target: attrString(mark.Attrs, "target"),
			})
		default:
			m := edtypes.OtherMark{Name: mark.Type}
			if len(mark.Attrs) > 0 {
				m.Attrs = mark.Attrs
			}
			res = append(res, m)
		}
	}
	return res
}

// serializeMarks преобразует марки edtypes в марки TipTap.
func serializeMarks(marks []edtypes.Mark) []TipTapMark {
	if len(marks) == 0 {
		return nil
	}

	res := make([]TipTapMark, 0, len(marks))
	for _, mark := range marks {
		switch m := mark.(type) {
		case edtypes.Link:
			attrs := map[string]interface{}{"href": m.Href}
			if m.Target != "" {
				attrs["target"] = m.Target
			}
			res = append(res, TipTapMark{Type: edtypes.MarkLink, Attrs: attrs})
		case edtypes.OtherMark:
			res = append(res, TipTapMark{Type: m.Name, Attrs: m.Attrs})
		default:
			res = append(res, TipTapMark{Type: m.MarkType()})
		}
	}
	return res
}
