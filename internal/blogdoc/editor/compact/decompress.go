package compact

import (
	"regexp"
	"strconv"

	"github.com/aisa-it/blogdoc/internal/blogdoc/editor/edtypes"
)

var headingCodeReg = regexp.MustCompile(`^h([1-9])$`)

type decompressFrame struct {
	raw map[string]any
	dst []edtypes.Node
	idx int
}

type decompressor struct {
	stack []decompressFrame
}

// Decompress восстанавливает документ из компактного дерева.
// Принимает *Root, Root или результат json.Unmarshal в any. Отдельная нода с полем t
// считается документом из одного блока, любая другая форма даёт пустой документ.
func Decompress(raw any) *edtypes.Document {
	var blocks []any
	switch v := raw.(type) {
	case *Root:
		if v == nil {
			return &edtypes.Document{}
		}
		blocks = v.B
	case Root:
		blocks = v.B
	case map[string]any:
		if isRoot(v) {
			blocks, _ = v[keyBlocks].([]any)
		} else if _, ok := v[keyType]; ok {
			blocks = []any{v}
		}
	}

	var d decompressor
	doc := &edtypes.Document{Content: d.schedule(blocks)}
	d.run()
	return doc
}

// DecompressNode восстанавливает одну ноду из компактного объекта.
func DecompressNode(raw map[string]any) edtypes.Node {
	if raw == nil {
		return nil
	}
	var d decompressor
	out := d.schedule([]any{raw})
	d.run()
	return out[0]
}

func isRoot(m map[string]any) bool {
	_, hasVersion := m[keyVersion]
	_, hasBlocks := m[keyBlocks]
	return hasVersion && hasBlocks
}

// schedule резервирует слоты под ноды. Элементы, не являющиеся объектами, отбрасываются до
// выделения памяти, поэтому в результате нет nil-нод.
func (d *decompressor) schedule(items []any) []edtypes.Node {
	count := 0
	for _, item := range items {
		if _, ok := item.(map[string]any); ok {
			count++
		}
	}
	if count == 0 {
		return nil
	}

	out := make([]edtypes.Node, count)
	i := 0
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		d.stack = append(d.stack, decompressFrame{raw: m, dst: out, idx: i})
		i++
	}
	return out
}

func (d *decompressor) children(m map[string]any, key string) []edtypes.Node {
	items, _ := m[key].([]any)
	return d.schedule(items)
}

func (d *decompressor) run() {
	for len(d.stack) > 0 {
		f := d.stack[len(d.stack)-1]
		d.stack = d.stack[:len(d.stack)-1]
		f.dst[f.idx] = d.node(f.raw)
	}
}

func (d *decompressor) node(m map[string]any) edtypes.Node {
	code := getString(m, keyType)

	if match := headingCodeReg.FindStringSubmatch(code); match != nil {
		level, _ := strconv.Atoi(match[1])
		return d.heading(m, level)
	}

	switch code {
	case "":
		return decodeText(m)
	case codeHeading:
		return d.heading(m, minHeadingLevel)
	case "p":
		return &edtypes.Paragraph{Content: d.children(m, keyContent)}
	case "ul":
		return &edtypes.BulletList{Items: d.children(m, keyItems)}
	case "ol":
		return &edtypes.OrderedList{Items: d.children(m, keyItems)}
	case "li":
		return &edtypes.ListItem{Content: d.children(m, keyContent)}
	case "img":
		// f и anim выводятся из src и при восстановлении не нужны
		return &edtypes.Image{
			Src:    getString(m, keySrc),
			Alt:    getString(m, keyAttrs),
			Title:  getString(m, keyTitle),
			Width:  m[keyWidth],
			Height: m[keyHeight],
			Align:  getString(m, keyAlign),
		}
	case "code":
		lang := getString(m, keyLang)
		if lang == "" {
			lang = defaultLanguage
		}
		return &edtypes.CodeBlock{Language: lang, Text: getString(m, keyCode)}
	case "tbl":
		return &edtypes.Table{Rows: d.children(m, keyRows)}
	case "tr":
		return &edtypes.TableRow{Cells: d.children(m, keyCells)}
	case "td":
		return &edtypes.TableCell{Content: d.children(m, keyContent)}
	case "th":
		return &edtypes.TableCell{Header: true, Content: d.children(m, keyContent)}
	case "q":
		return &edtypes.Blockquote{Content: d.children(m, keyContent)}
	case "hr":
		return &edtypes.HorizontalRule{}
	case "br":
		return &edtypes.HardBreak{}
	case codeCalloutInfo, codeCalloutSuccess:
		return &edtypes.Callout{
			Variant: code,
			Title:   getString(m, keyTitle),
			Content: d.children(m, keyContent),
		}
	default:
		g := &edtypes.Generic{
			Type:    ToCanonicalType(code),
			Content: d.children(m, keyContent),
		}
		if attrs, ok := m[keyAttrs].(map[string]any); ok && len(attrs) > 0 {
			g.Attrs = attrs
		}
		return g
	}
}

// heading: c - строка с плоским текстом, либо массив нод у документов, сжатых вручную.
func (d *decompressor) heading(m map[string]any, level int) *edtypes.Heading {
	h := &edtypes.Heading{Level: level, ID: getString(m, keyID)}
	switch c := m[keyContent].(type) {
	case string:
		if c != "" {
			h.Content = []edtypes.Node{&edtypes.Text{Text: c}}
		}
	case []any:
		h.Content = d.schedule(c)
	}
	return h
}

func getString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
