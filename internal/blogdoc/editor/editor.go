// Пакет импортирует HTML постов старого редактора в каноническое дерево документа.
// HTML очищается политикой redactor-policy, затем элементы верхнего уровня разбираются в блоки edtypes.
//
// Основные возможности:
//   - Парсинг HTML-документов из io.Reader.
//   - Заголовки h1..h6 с якорями, параграфы, списки, таблицы, изображения, блоки кода, цитаты, callout.
//   - Инлайн-форматирование: жирный, курсив, ссылки, переносы строк; прочие теги сохраняются как марки.
//   - Неизвестные блоки с data-type сохраняются как Generic-ноды.
package editor

import (
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/aisa-it/blogdoc/internal/blogdoc/editor/edtypes"
	policy "github.com/aisa-it/blogdoc/internal/blogdoc/redactor-policy"
	"golang.org/x/net/html"
)

var headingTagReg = regexp.MustCompile(`^h([1-9])$`)

// ParseDocument очищает HTML и строит из него документ.
func ParseDocument(r io.Reader) (*edtypes.Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	rootNode, err := html.Parse(strings.NewReader(policy.Sanitize(string(raw))))
	if err != nil {
		return nil, err
	}

	var document edtypes.Document
	if body := getBody(rootNode); body != nil {
		document.Content = parseBlocks(body)
	}
	return &document, nil
}

// parseBlocks разбирает дочерние элементы root как последовательность блоков.
// Текст и инлайн-элементы вне блоков собираются в параграф.
func parseBlocks(root *html.Node) []edtypes.Node {
	var (
		blocks []edtypes.Node
		loose  []edtypes.Node
	)

	flush := func() {
		if hasVisibleContent(loose) {
			blocks = append(blocks, &edtypes.Paragraph{Content: loose})
		}
		loose = nil
	}

	for el := root.FirstChild; el != nil; el = el.NextSibling {
		block := parseBlock(el)
		if block == nil {
			loose = append(loose, parseInline(el, nil)...)
			continue
		}
		flush()
		blocks = append(blocks, block...)
	}
	flush()

	return blocks
}

// parseBlock возвращает nil, если el - не блочный элемент.
func parseBlock(el *html.Node) []edtypes.Node {
	if el.Type != html.ElementNode {
		return nil
	}

	if match := headingTagReg.FindStringSubmatch(el.Data); match != nil {
		level, _ := strconv.Atoi(match[1])
		return []edtypes.Node{&edtypes.Heading{
			Level:   level,
			ID:      getAttrValue("id", el.Attr),
			Content: trimInline(parseChildrenInline(el, nil)),
		}}
	}

	switch el.Data {
	case "p":
		return []edtypes.Node{&edtypes.Paragraph{Content: trimInline(parseChildrenInline(el, nil))}}
	case "ul":
		return []edtypes.Node{&edtypes.BulletList{Items: parseListItems(el)}}
	case "ol":
		return []edtypes.Node{&edtypes.OrderedList{Items: parseListItems(el)}}
	case "pre":
		return []edtypes.Node{parseCode(el)}
	case "table":
		return []edtypes.Node{parseTable(el)}
	case "blockquote":
		return []edtypes.Node{&edtypes.Blockquote{Content: parseBlocks(el)}}
	case "hr":
		return []edtypes.Node{&edtypes.HorizontalRule{}}
	case "img":
		if img := getImage(el); img != nil {
			return []edtypes.Node{img}
		}
		return []edtypes.Node{}
	case "figure":
		return parseBlocks(el)
	case "div", "section", "article":
		if variant := getAttrValue("data-callout", el.Attr); variant != "" || attrExists("data-info-block", el.Attr) {
			if variant == "" {
				variant = edtypes.CalloutInfo
			}
			return []edtypes.Node{&edtypes.Callout{
				Variant: variant,
				Title:   getAttrValue("data-title", el.Attr),
				Content: parseBlocks(el),
			}}
		}
		if nodeType := getAttrValue("data-type", el.Attr); nodeType != "" {
			return []edtypes.Node{parseGeneric(el, nodeType)}
		}
		return parseBlocks(el)
	}
	return nil
}

func parseListItems(root *html.Node) []edtypes.Node {
	var items []edtypes.Node
	for li := root.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		items = append(items, &edtypes.ListItem{Content: parseBlocks(li)})
	}
	return items
}

func parseCode(root *html.Node) *edtypes.CodeBlock {
	code := &edtypes.CodeBlock{Language: getAttrValue("data-language", root.Attr)}

	var text strings.Builder
	iterNodes(root, func(child *html.Node) bool {
		if child.Type == html.ElementNode && child.Data == "code" && code.Language == "" {
			for class := range strings.FieldsSeq(getAttrValue("class", child.Attr)) {
				if lang, ok := strings.CutPrefix(class, "language-"); ok {
					code.Language = lang
					break
				}
			}
		}
		if child.Type == html.TextNode {
			text.WriteString(child.Data)
		}
		return false
	})
	code.Text = strings.TrimSuffix(text.String(), "\n")
	return code
}

func parseTable(root *html.Node) *edtypes.Table {
	table := new(edtypes.Table)

	iterNodes(root, func(tr *html.Node) bool {
		if tr.Type != html.ElementNode || tr.Data != "tr" {
			return false
		}

		row := new(edtypes.TableRow)
		for td := tr.FirstChild; td != nil; td = td.NextSibling {
			if td.Type != html.ElementNode || (td.Data != "td" && td.Data != "th") {
				continue
			}
			row.Cells = append(row.Cells, &edtypes.TableCell{
				Header:  td.Data == "th",
				Content: parseBlocks(td),
			})
		}
		table.Rows = append(table.Rows, row)
		return true
	})

	return table
}

// parseGeneric сохраняет блок неизвестного типа: data-* атрибуты становятся attrs.
func parseGeneric(el *html.Node, nodeType string) *edtypes.Generic {
	g := &edtypes.Generic{Type: nodeType, Content: parseBlocks(el)}
	for _, attr := range el.Attr {
		key, ok := strings.CutPrefix(attr.Key, "data-")
		if !ok || key == "type" {
			continue
		}
		if g.Attrs == nil {
			g.Attrs = make(map[string]any)
		}
		g.Attrs[key] = attr.Val
	}
	return g
}

func parseChildrenInline(root *html.Node, marks []edtypes.Mark) []edtypes.Node {
	var res []edtypes.Node
	for el := root.FirstChild; el != nil; el = el.NextSibling {
		res = append(res, parseInline(el, marks)...)
	}
	return res
}

// parseInline разбирает инлайн-содержимое, накапливая марки от внешних тегов.
func parseInline(el *html.Node, marks []edtypes.Mark) []edtypes.Node {
	switch el.Type {
	case html.TextNode:
		text := collapseSpaces(el.Data)
		if text == "" {
			return nil
		}
		return []edtypes.Node{&edtypes.Text{Text: text, Marks: cloneMarks(marks)}}
	case html.ElementNode:
	default:
		return nil
	}

	switch el.Data {
	case "br":
		return []edtypes.Node{&edtypes.HardBreak{}}
	case "img":
		if img := getImage(el); img != nil {
			return []edtypes.Node{img}
		}
		return nil
	case "strong", "b":
		marks = appendMark(marks, edtypes.Bold{})
	case "em", "i":
		marks = appendMark(marks, edtypes.Italic{})
	case "a":
		marks = appendMark(marks, edtypes.Link{
			Href:   getAttrValue("href", el.Attr),
			Target: getAttrValue("target", el.Attr),
		})
	case "u":
		marks = appendMark(marks, edtypes.OtherMark{Name: "underline"})
	case "s", "del", "strike":
		marks = appendMark(marks, edtypes.OtherMark{Name: "strike"})
	case "code":
		marks = appendMark(marks, edtypes.OtherMark{Name: "code"})
	case "mark":
		marks = appendMark(marks, edtypes.OtherMark{Name: "highlight"})
	case "sub":
		marks = appendMark(marks, edtypes.OtherMark{Name: "subscript"})
	case "sup":
		marks = appendMark(marks, edtypes.OtherMark{Name: "superscript"})
	case "span", "small", "abbr", "cite", "q":
	default:
		slog.Debug("Unsupported inline tag", "tag", el.Data)
	}

	return parseChildrenInline(el, marks)
}

func appendMark(marks []edtypes.Mark, m edtypes.Mark) []edtypes.Mark {
	for _, existing := range marks {
		if existing.MarkType() == m.MarkType() {
			return marks
		}
	}
	return append(cloneMarks(marks), m)
}

func cloneMarks(marks []edtypes.Mark) []edtypes.Mark {
	if len(marks) == 0 {
		return nil
	}
	return append(make([]edtypes.Mark, 0, len(marks)+1), marks...)
}

func collapseSpaces(s string) string {
	if strings.TrimSpace(s) == "" {
		if s == "" || strings.ContainsAny(s, "\n\t\r") {
			return ""
		}
		return " "
	}
	var sb strings.Builder
	space := false
	for _, r := range s {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			space = true
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.WriteRune(r)
	}
	if space {
		sb.WriteByte(' ')
	}
	return sb.String()
}

// trimInline убирает пробелы на границах абзаца.
func trimInline(nodes []edtypes.Node) []edtypes.Node {
	if len(nodes) == 0 {
		return nil
	}
	if t, ok := nodes[0].(*edtypes.Text); ok {
		t.Text = strings.TrimLeft(t.Text, " ")
		if t.Text == "" {
			nodes = nodes[1:]
		}
	}
	if len(nodes) == 0 {
		return nil
	}
	if t, ok := nodes[len(nodes)-1].(*edtypes.Text); ok {
		t.Text = strings.TrimRight(t.Text, " ")
		if t.Text == "" {
			nodes = nodes[:len(nodes)-1]
		}
	}
	if len(nodes) == 0 {
		return nil
	}
	return nodes
}

func hasVisibleContent(nodes []edtypes.Node) bool {
	for _, n := range nodes {
		if t, ok := n.(*edtypes.Text); ok && strings.TrimSpace(t.Text) == "" {
			continue
		}
		return true
	}
	return false
}

func findElementByTagName(rootNode *html.Node, tagName string) *html.Node {
	var el *html.Node
	iterNodes(rootNode, func(child *html.Node) bool {
		if el != nil {
			return true
		}
		if child.Type == html.ElementNode && child.Data == tagName {
			el = child
			return true
		}
		return false
	})
	return el
}

func getBody(rootNode *html.Node) *html.Node {
	return findElementByTagName(rootNode, "body")
}

func iterNodes(node *html.Node, f func(child *html.Node) bool) {
	if f(node) {
		return
	}
	for p := node.FirstChild; p != nil; p = p.NextSibling {
		iterNodes(p, f)
	}
}

func getAttrValue(key string, attrs []html.Attribute) string {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func attrExists(key string, attrs []html.Attribute) bool {
	for _, attr := range attrs {
		if attr.Key == key {
			return true
		}
	}
	return false
}

func getImage(el *html.Node) *edtypes.Image {
	src := getAttrValue("src", el.Attr)
	if src == "" {
		return nil
	}

	img := &edtypes.Image{
		Src:   src,
		Alt:   getAttrValue("alt", el.Attr),
		Title: getAttrValue("title", el.Attr),
		Align: getAttrValue("data-align", el.Attr),
	}
	if w := getAttrValue("width", el.Attr); w != "" {
		img.Width = sizeValue(w)
	}
	if h := getAttrValue("height", el.Attr); h != "" {
		img.Height = sizeValue(h)
	}

	for _, style := range parseStyles(strings.Split(getAttrValue("style", el.Attr), ";")) {
		switch style.Key {
		case "width":
			img.Width = sizeValue(style.Val)
		case "height":
			img.Height = sizeValue(style.Val)
		case "float":
			if img.Align == "" {
				img.Align = style.Val
			}
		}
	}

	return img
}

// sizeValue: "640" и "640px" дают число, прочие значения ("50%", "auto") остаются строкой.
func sizeValue(raw string) any {
	if i, err := strconv.Atoi(strings.TrimSuffix(raw, "px")); err == nil {
		return i
	}
	return raw
}

func parseStyles(rawStyles []string) []html.Attribute {
	res := make([]html.Attribute, 0, len(rawStyles))
	for _, styleRaw := range rawStyles {
		arr := strings.SplitN(styleRaw, ":", 2)
		if len(arr) < 2 {
			continue
		}
		res = append(res, html.Attribute{
			Key: strings.TrimSpace(arr[0]),
			Val: strings.TrimSpace(arr[1]),
		})
	}
	return res
}
