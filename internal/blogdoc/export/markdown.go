package export

import (
	"io"
	"strconv"
	"strings"

	"github.com/aisa-it/blogdoc/internal/blogdoc/editor/edtypes"
	md "github.com/nao1215/markdown"
)

type mdWriter struct {
	md *md.Markdown
}

// Markdown записывает документ в w в формате GitHub Flavored Markdown.
// Вложенные списки выводятся одним уровнем, callout success - как TIP, прочие - как NOTE.
func Markdown(w io.Writer, doc *edtypes.Document) error {
	mw := mdWriter{md: md.NewMarkdown(w)}
	if doc != nil {
		mw.writeBlocks(doc.Content)
	}
	return mw.md.Build()
}

// MarkdownString - Markdown в строку.
func MarkdownString(doc *edtypes.Document) (string, error) {
	var sb strings.Builder
	if err := Markdown(&sb, doc); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (w *mdWriter) writeBlocks(nodes []edtypes.Node) {
	for i, n := range nodes {
		if i > 0 {
			w.md.PlainText("")
		}
		w.writeBlock(n)
	}
}

func (w *mdWriter) writeBlock(n edtypes.Node) {
	switch el := n.(type) {
	case *edtypes.Heading:
		w.writeHeading(el)
	case *edtypes.Paragraph:
		w.md.PlainText(inlineMarkdown(el.Content))
	case *edtypes.BulletList:
		w.md.BulletList(listItems(el.Items)...)
	case *edtypes.OrderedList:
		w.md.OrderedList(listItems(el.Items)...)
	case *edtypes.ListItem:
		w.md.BulletList(listItems([]edtypes.Node{el})...)
	case *edtypes.Image:
		w.md.PlainText(imageMarkdown(el))
	case *edtypes.CodeBlock:
		w.md.CodeBlocks(md.SyntaxHighlight(el.Language), el.Text)
	case *edtypes.Table:
		w.writeTable(el)
	case *edtypes.Blockquote:
		w.md.Blockquote(blocksText(el.Content))
	case *edtypes.HorizontalRule:
		w.md.HorizontalRule()
	case *edtypes.Callout:
		text := blocksText(el.Content)
		if el.Title != "" {
			text = md.Bold(el.Title) + "  \n> " + strings.ReplaceAll(text, "\n", "\n> ")
		} else {
			text = strings.ReplaceAll(text, "\n", "\n> ")
		}
		if el.Variant == edtypes.CalloutSuccess {
			w.md.Tip(text)
		} else {
			w.md.Note(text)
		}
	case *edtypes.Text, *edtypes.HardBreak:
		w.md.PlainText(inlineMarkdown([]edtypes.Node{n}))
	case *edtypes.Generic:
		w.writeBlocks(el.Content)
	}
}

func (w *mdWriter) writeHeading(h *edtypes.Heading) {
	text := inlineMarkdown(h.Content)
	switch h.Level {
	case 1:
		w.md.H1(text)
	case 2:
		w.md.H2(text)
	case 3:
		w.md.H3(text)
	case 4:
		w.md.H4(text)
	case 5:
		w.md.H5(text)
	default:
		w.md.H6(text)
	}
}

func (w *mdWriter) writeTable(t *edtypes.Table) {
	var rows [][]string
	width := 0
	for _, r := range t.Rows {
		row, ok := r.(*edtypes.TableRow)
		if !ok {
			continue
		}
		cells := make([]string, 0, len(row.Cells))
		for _, c := range row.Cells {
			cells = append(cells, strings.ReplaceAll(blocksText(edtypes.Children(c)), "\n", " "))
		}
		width = max(width, len(cells))
		rows = append(rows, cells)
	}
	if len(rows) == 0 || width == 0 {
		return
	}

	// Markdown требует одинаковое число колонок во всех строках
	for i := range rows {
		for len(rows[i]) < width {
			rows[i] = append(rows[i], "")
		}
	}

	w.md.Table(md.TableSet{Header: rows[0], Rows: rows[1:]})
}

// listItems выводит каждый пункт одной строкой. Пункты вложенных списков добавляются следом.
func listItems(items []edtypes.Node) []string {
	var res []string
	for _, item := range items {
		var (
			parts  []string
			nested []string
		)
		for _, child := range edtypes.Children(item) {
			switch c := child.(type) {
			case *edtypes.BulletList:
				nested = append(nested, listItems(c.Items)...)
			case *edtypes.OrderedList:
				nested = append(nested, listItems(c.Items)...)
			default:
				parts = append(parts, strings.ReplaceAll(blocksText([]edtypes.Node{child}), "\n", " "))
			}
		}
		res = append(res, strings.Join(parts, " "))
		res = append(res, nested...)
	}
	return res
}

// blocksText - текст блоков для вставки в цитату, ячейку или пункт списка.
func blocksText(nodes []edtypes.Node) string {
	lines := make([]string, 0, len(nodes))
	for _, n := range nodes {
		switch el := n.(type) {
		case *edtypes.Paragraph:
			lines = append(lines, inlineMarkdown(el.Content))
		case *edtypes.Heading:
			lines = append(lines, md.Bold(inlineMarkdown(el.Content)))
		case *edtypes.Image:
			lines = append(lines, imageMarkdown(el))
		case *edtypes.CodeBlock:
			lines = append(lines, md.Code(el.Text))
		case *edtypes.Text, *edtypes.HardBreak:
			lines = append(lines, inlineMarkdown([]edtypes.Node{n}))
		case *edtypes.BulletList:
			for _, item := range listItems(el.Items) {
				lines = append(lines, "- "+item)
			}
		case *edtypes.OrderedList:
			for i, item := range listItems(el.Items) {
				lines = append(lines, strconv.Itoa(i+1)+". "+item)
			}
		default:
			if text := blocksText(edtypes.Children(n)); text != "" {
				lines = append(lines, text)
			}
		}
	}
	return strings.Join(lines, "\n")
}

func inlineMarkdown(nodes []edtypes.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		switch el := n.(type) {
		case *edtypes.Text:
			sb.WriteString(textMarkdown(el))
		case *edtypes.HardBreak:
			sb.WriteString("  \n")
		case *edtypes.Image:
			sb.WriteString(imageMarkdown(el))
		default:
			sb.WriteString(inlineMarkdown(edtypes.Children(n)))
		}
	}
	return sb.String()
}

// textMarkdown оборачивает текст в разметку марок, пробелы по краям остаются снаружи разметки.
func textMarkdown(t *edtypes.Text) string {
	trimmed := strings.TrimSpace(t.Text)
	if trimmed == "" || len(t.Marks) == 0 {
		return t.Text
	}
	lead := t.Text[:strings.Index(t.Text, trimmed)]
	trail := t.Text[len(lead)+len(trimmed):]

	text := trimmed
	var href string
	for _, m := range t.Marks {
		switch mark := m.(type) {
		case edtypes.Bold:
			text = md.Bold(text)
		case edtypes.Italic:
			text = md.Italic(text)
		case edtypes.Link:
			href = mark.Href
		case edtypes.OtherMark:
			switch mark.Name {
			case "code":
				text = md.Code(text)
			case "strike":
				text = md.Strikethrough(text)
			}
		}
	}
	if href != "" {
		text = md.Link(text, href)
	}
	return lead + text + trail
}

func imageMarkdown(img *edtypes.Image) string {
	return md.Image(img.Alt, img.Src)
}
