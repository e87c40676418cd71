package compact

import (
	"maps"
	"strconv"
	"strings"

	"github.com/aisa-it/blogdoc/internal/blogdoc/editor/edtypes"
)

const (
	minHeadingLevel = 1
	maxHeadingLevel = 9
)

// compressFrame - отложенная работа: сжать node и записать результат в dst[idx].
type compressFrame struct {
	node edtypes.Node
	dst  []any
	idx  int
}

type compressor struct {
	stack []compressFrame
}

// Compress сжимает документ. Функция тотальная: нераспознанные ноды кодируются как Generic.
func Compress(doc *edtypes.Document) *Root {
	root := &Root{V: FormatVersion, B: make([]any, 0)}
	if doc == nil {
		return root
	}

	var c compressor
	root.B = c.schedule(doc.Content)
	if root.B == nil {
		root.B = make([]any, 0)
	}
	c.run()
	return root
}

// CompressNode сжимает одну ноду вместе с её потомками.
func CompressNode(n edtypes.Node) map[string]any {
	if edtypes.IsNil(n) {
		return nil
	}
	var c compressor
	out := c.schedule([]edtypes.Node{n})
	c.run()
	m, _ := out[0].(map[string]any)
	return m
}

// schedule резервирует слоты под сжатые ноды и ставит их в очередь.
// nil-ноды, в том числе nil-указатели, пропускаются, для пустого списка возвращается nil.
func (c *compressor) schedule(nodes []edtypes.Node) []any {
	count := 0
	for _, n := range nodes {
		if !edtypes.IsNil(n) {
			count++
		}
	}
	if count == 0 {
		return nil
	}

	out := make([]any, count)
	i := 0
	for _, n := range nodes {
		if edtypes.IsNil(n) {
			continue
		}
		c.stack = append(c.stack, compressFrame{node: n, dst: out, idx: i})
		i++
	}
	return out
}

// attach ставит в очередь дочерние ноды и кладёт их слоты в m[key], если они есть.
func (c *compressor) attach(m map[string]any, key string, nodes []edtypes.Node) {
	if out := c.schedule(nodes); out != nil {
		m[key] = out
	}
}

func (c *compressor) run() {
	for len(c.stack) > 0 {
		f := c.stack[len(c.stack)-1]
		c.stack = c.stack[:len(c.stack)-1]
		f.dst[f.idx] = c.node(f.node)
	}
}

// node сжимает одну ноду. Дочерние ноды не обрабатываются сразу, а ставятся в очередь.
func (c *compressor) node(n edtypes.Node) map[string]any {
	switch v := n.(type) {
	case *edtypes.Heading:
		m := map[string]any{
			keyType:    headingCode(v.Level),
			keyContent: plainText(v.Content),
		}
		if v.ID != "" {
			m[keyID] = v.ID
		}
		return m

	case *edtypes.Paragraph:
		m := typed(edtypes.TypeParagraph)
		c.attach(m, keyContent, v.Content)
		return m

	case *edtypes.BulletList:
		m := typed(edtypes.TypeBulletList)
		c.attach(m, keyItems, v.Items)
		return m

	case *edtypes.OrderedList:
		m := typed(edtypes.TypeOrderedList)
		c.attach(m, keyItems, v.Items)
		return m

	case *edtypes.ListItem:
		m := typed(edtypes.TypeListItem)
		c.attach(m, keyContent, v.Content)
		return m

	case *edtypes.Image:
		return compressImage(v)

	case *edtypes.CodeBlock:
		lang := v.Language
		if lang == "" {
			lang = defaultLanguage
		}
		return map[string]any{
			keyType: ToCompactCode(edtypes.TypeCodeBlock),
			keyLang: lang,
			keyCode: v.Text,
		}

	case *edtypes.Table:
		m := typed(edtypes.TypeTable)
		c.attach(m, keyRows, v.Rows)
		return m

	case *edtypes.TableRow:
		m := typed(edtypes.TypeTableRow)
		c.attach(m, keyCells, v.Cells)
		return m

	case *edtypes.TableCell:
		m := typed(v.NodeType())
		c.attach(m, keyContent, v.Content)
		return m

	case *edtypes.Blockquote:
		m := typed(edtypes.TypeBlockquote)
		c.attach(m, keyContent, v.Content)
		return m

	case *edtypes.HorizontalRule:
		return typed(edtypes.TypeHorizontalRule)

	case *edtypes.Callout:
		code := codeCalloutInfo
		if v.Variant == edtypes.CalloutSuccess {
			code = codeCalloutSuccess
		}
		m := map[string]any{keyType: code}
		if v.Title != "" {
			m[keyTitle] = v.Title
		}
		c.attach(m, keyContent, v.Content)
		return m

	case *edtypes.Text:
		return encodeText(v)

	case *edtypes.HardBreak:
		return typed(edtypes.TypeHardBreak)

	case *edtypes.Generic:
		m := map[string]any{keyType: ToCompactCode(v.Type)}
		if len(v.Attrs) > 0 {
			m[keyAttrs] = maps.Clone(v.Attrs)
		}
		c.attach(m, keyContent, v.Content)
		return m

	default:
		// Реализации Node закрыты, сюда попадает только то, что добавят позже
		m := map[string]any{keyType: ToCompactCode(n.NodeType())}
		c.attach(m, keyContent, edtypes.Children(n))
		return m
	}
}

func typed(canonicalType string) map[string]any {
	return map[string]any{keyType: ToCompactCode(canonicalType)}
}

// headingCode склеивает код заголовка с уровнем: h1..h9. Уровень вне диапазона прижимается к границе.
func headingCode(level int) string {
	level = min(max(level, minHeadingLevel), maxHeadingLevel)
	return codeHeading + strconv.Itoa(level)
}

func compressImage(img *edtypes.Image) map[string]any {
	m := map[string]any{
		keyType: ToCompactCode(edtypes.TypeImage),
		keySrc:  img.Src,
	}

	info := InspectImage(img.Src)
	if info.Format != "" {
		m[keyFormat] = info.Format
	}
	if info.Animated {
		m[keyAnim] = true
	}
	if img.Alt != "" {
		m[keyAttrs] = img.Alt
	}
	if img.Title != "" {
		m[keyTitle] = img.Title
	}
	if img.Width != nil {
		m[keyWidth] = img.Width
	}
	if img.Height != nil {
		m[keyHeight] = img.Height
	}
	if img.Align != "" {
		m[keyAlign] = img.Align
	}
	return m
}

// plainText собирает текст всех потомков в порядке документа.
func plainText(nodes []edtypes.Node) string {
	var sb strings.Builder

	stack := make([]edtypes.Node, 0, len(nodes))
	pushReversed := func(children []edtypes.Node) {
		for i := len(children) - 1; i >= 0; i-- {
			if !edtypes.IsNil(children[i]) {
				stack = append(stack, children[i])
			}
		}
	}
	pushReversed(nodes)

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if t, ok := n.(*edtypes.Text); ok {
			sb.WriteString(t.Text)
			continue
		}
		pushReversed(edtypes.Children(n))
	}
	return sb.String()
}
