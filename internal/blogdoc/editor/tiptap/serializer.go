package tiptap

import (
	"encoding/json"

	"github.com/aisa-it/blogdoc/internal/blogdoc/editor/edtypes"
)

// Serialize сериализует edtypes.Document в TipTap JSON.
func Serialize(doc *edtypes.Document) ([]byte, error) {
	return json.Marshal(ToTipTap(doc))
}

// ToTipTap преобразует каноническое дерево в структуру TipTapDocument.
func ToTipTap(doc *edtypes.Document) TipTapDocument {
	tipTapDoc := TipTapDocument{
		Type: edtypes.TypeDoc,
	}
	if doc != nil {
		var s serializer
		tipTapDoc.Content = s.schedule(doc.Content)
		s.run()
	}
	return tipTapDoc
}

type serializeFrame struct {
	node edtypes.Node
	dst  []TipTapNode
	idx  int
}

// serializer обходит дерево со своим стеком, как и parser.
type serializer struct {
	stack []serializeFrame
}

// schedule резервирует срез под ноды и ставит их в очередь, nil-ноды пропускаются.
func (s *serializer) schedule(nodes []edtypes.Node) []TipTapNode {
	count := 0
	for _, n := range nodes {
		if !edtypes.IsNil(n) {
			count++
		}
	}
	if count == 0 {
		return nil
	}

	out := make([]TipTapNode, count)
	i := 0
	for _, n := range nodes {
		if edtypes.IsNil(n) {
			continue
		}
		s.stack = append(s.stack, serializeFrame{node: n, dst: out, idx: i})
		i++
	}
	return out
}

func (s *serializer) run() {
	for len(s.stack) > 0 {
		f := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]
		f.dst[f.idx] = s.node(f.node)
	}
}

// node преобразует ноду edtypes в TipTap ноду, дочерние ноды ставятся в очередь.
func (s *serializer) node(n edtypes.Node) TipTapNode {
	switch e := n.(type) {
	case *edtypes.Heading:
		return TipTapNode{
			Type:    edtypes.TypeHeading,
			Attrs:   serializeHeadingAttrs(e),
			Content: s.schedule(e.Content),
		}
	case *edtypes.Image:
		return TipTapNode{Type: edtypes.TypeImage, Attrs: serializeImageAttrs(e)}
	case *edtypes.CodeBlock:
		return serializeCodeBlock(e)
	case *edtypes.Callout:
		attrs := make(map[string]interface{})
		setNonEmpty(attrs, "variant", e.Variant)
		setNonEmpty(attrs, "title", e.Title)
		return TipTapNode{Type: edtypes.TypeCallout, Attrs: nilIfEmpty(attrs), Content: s.schedule(e.Content)}
	case *edtypes.Text:
		return TipTapNode{Type: edtypes.TypeText, Text: e.Text, Marks: serializeMarks(e.Marks)}
	case *edtypes.Generic:
		return TipTapNode{Type: e.Type, Attrs: e.Attrs, Content: s.schedule(e.Content)}
	default:
		// Ноды без атрибутов: только тип и дочерние элементы
		return TipTapNode{Type: n.NodeType(), Content: s.schedule(edtypes.Children(n))}
	}
}

func serializeHeadingAttrs(h *edtypes.Heading) map[string]interface{} {
	attrs := map[string]interface{}{"level": h.Level}
	setNonEmpty(attrs, "id", h.ID)
	return attrs
}

func serializeImageAttrs(img *edtypes.Image) map[string]interface{} {
	attrs := map[string]interface{}{"src": img.Src}
	setNonEmpty(attrs, "alt", img.Alt)
	setNonEmpty(attrs, "title", img.Title)
	if img.Width != nil {
		attrs["width"] = img.Width
	}
	if img.Height != nil {
		attrs["height"] = img.Height
	}
	setNonEmpty(attrs, "align", img.Align)
	return attrs
}

// serializeCodeBlock преобразует CodeBlock в TipTap codeBlock ноду.
func serializeCodeBlock(c *edtypes.CodeBlock) TipTapNode {
	node := TipTapNode{Type: edtypes.TypeCodeBlock}
	if c.Language != "" {
		node.Attrs = map[string]interface{}{"language": c.Language}
	}

	// Код хранится как текстовая нода внутри
	if c.Text != "" {
		node.Content = []TipTapNode{{Type: edtypes.TypeText, Text: c.Text}}
	}
	return node
}

func nilIfEmpty(attrs map[string]interface{}) map[string]interface{} {
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}
