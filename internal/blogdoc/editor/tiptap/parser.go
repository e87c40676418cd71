package tiptap

import (
	"encoding/json"
	"io"

	"github.com/aisa-it/blogdoc/internal/blogdoc/editor/edtypes"
)

func init() {
	edtypes.TipTapParser = ParseJSON
	edtypes.TipTapSerializer = Serialize
}

// ParseJSON парсит JSON контент TipTap редактора в каноническое дерево edtypes.Document.
// Глубина вложенности ограничена только декодером encoding/json, дерево обходится без рекурсии.
func ParseJSON(r io.Reader) (*edtypes.Document, error) {
	var tipTapDoc TipTapDocument
	if err := json.NewDecoder(r).Decode(&tipTapDoc); err != nil {
		return nil, err
	}

	var p parser
	doc := &edtypes.Document{Content: p.schedule(tipTapDoc.Content)}
	p.run()
	return doc, nil
}

// parseFrame - нода TipTap, ожидающая разбора, и слот в родительском срезе для результата.
type parseFrame struct {
	src *TipTapNode
	dst []edtypes.Node
	idx int
}

type parser struct {
	stack []parseFrame
}

// parseNode разбирает одну ноду вместе с потомками.
func parseNode(node TipTapNode) edtypes.Node {
	var p parser
	out := p.schedule([]TipTapNode{node})
	p.run()
	return out[0]
}

// schedule резервирует срез под ноды и ставит их в очередь. Для пустой последовательности возвращает nil.
func (p *parser) schedule(nodes []TipTapNode) []edtypes.Node {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]edtypes.Node, len(nodes))
	for i := range nodes {
		p.stack = append(p.stack, parseFrame{src: &nodes[i], dst: out, idx: i})
	}
	return out
}

func (p *parser) run() {
	for len(p.stack) > 0 {
		f := p.stack[len(p.stack)-1]
		p.stack = p.stack[:len(p.stack)-1]
		f.dst[f.idx] = p.node(*f.src)
	}
}

// node создает ноду edtypes, дочерние ноды ставятся в очередь.
// Неизвестные типы не отбрасываются, а сохраняются в edtypes.Generic.
func (p *parser) node(node TipTapNode) edtypes.Node {
	switch node.Type {
	case edtypes.TypeHeading:
		return p.parseHeading(node)
	case edtypes.TypeParagraph:
		return &edtypes.Paragraph{Content: p.schedule(node.Content)}
	case edtypes.TypeBulletList:
		return &edtypes.BulletList{Items: p.schedule(node.Content)}
	case edtypes.TypeOrderedList:
		return &edtypes.OrderedList{Items: p.schedule(node.Content)}
	case edtypes.TypeListItem:
		return &edtypes.ListItem{Content: p.schedule(node.Content)}
	case edtypes.TypeImage:
		return parseImage(node)
	case edtypes.TypeCodeBlock:
		return parseCodeBlock(node)
	case edtypes.TypeTable:
		return &edtypes.Table{Rows: p.schedule(node.Content)}
	case edtypes.TypeTableRow:
		return &edtypes.TableRow{Cells: p.schedule(node.Content)}
	case edtypes.TypeTableCell, edtypes.TypeTableHeader:
		return &edtypes.TableCell{
			Header:  node.Type == edtypes.TypeTableHeader,
			Content: p.schedule(node.Content),
		}
	case edtypes.TypeBlockquote:
		return &edtypes.Blockquote{Content: p.schedule(node.Content)}
	case edtypes.TypeHorizontalRule:
		return &edtypes.HorizontalRule{}
	case edtypes.TypeCallout:
		return p.parseCallout(node)
	case edtypes.TypeText:
		return parseText(node)
	case edtypes.TypeHardBreak:
		return &edtypes.HardBreak{}
	default:
		return p.parseGeneric(node)
	}
}
