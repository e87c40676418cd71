// Пакет edtypes описывает каноническое дерево документа редактора: блоки, инлайн-элементы и марки.
//
// Основные возможности:
//   - Закрытый набор типов нод (Heading, Paragraph, списки, таблицы, изображения, код, цитаты, callout).
//   - Generic-нода для неизвестных типов, хранящая исходный тип, атрибуты и содержимое без потерь.
//   - Сериализация Document в JSON редактора через зарегистрированные функции пакета tiptap.
//   - Хранение Document в JSONB-колонке через driver.Valuer и sql.Scanner.
package edtypes

import (
	"bytes"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"reflect"
)

// Канонические имена типов нод и марок редактора.
const (
	TypeDoc            = "doc"
	TypeHeading        = "heading"
	TypeParagraph      = "paragraph"
	TypeBulletList     = "bulletList"
	TypeOrderedList    = "orderedList"
	TypeListItem       = "listItem"
	TypeImage          = "image"
	TypeCodeBlock      = "codeBlock"
	TypeTable          = "table"
	TypeTableRow       = "tableRow"
	TypeTableCell      = "tableCell"
	TypeTableHeader    = "tableHeader"
	TypeBlockquote     = "blockquote"
	TypeHorizontalRule = "horizontalRule"
	TypeCallout        = "callout"
	TypeText           = "text"
	TypeHardBreak      = "hardBreak"

	MarkBold   = "bold"
	MarkItalic = "italic"
	MarkLink   = "link"
)

// Варианты callout, которые различает рендерер.
const (
	CalloutInfo    = "info"
	CalloutSuccess = "success"
)

// TipTapParser - функция для парсинга TipTap JSON, устанавливается из tiptap пакета
var TipTapParser func(io.Reader) (*Document, error)

// TipTapSerializer - функция для сериализации Document в TipTap JSON, устанавливается из tiptap пакета
var TipTapSerializer func(*Document) ([]byte, error)

// Node - любая нода дерева документа. Набор реализаций закрыт: неизвестные типы представлены Generic.
type Node interface {
	// NodeType возвращает каноническое имя типа ноды.
	NodeType() string
	node()
}

// Document - корень дерева, упорядоченная последовательность блоков.
type Document struct {
	Content []Node
}

// UnmarshalJSON реализует кастомную десериализацию TipTap JSON в Document.
// Автоматически вызывает зарегистрированный TipTapParser.
func (d *Document) UnmarshalJSON(data []byte) error {
	if TipTapParser == nil {
		return errors.New("TipTapParser not registered, import tiptap package to enable TipTap JSON parsing")
	}

	doc, err := TipTapParser(bytes.NewReader(data))
	if err != nil {
		return err
	}

	d.Content = doc.Content
	return nil
}

// MarshalJSON реализует кастомную сериализацию Document в TipTap JSON.
// Автоматически вызывает зарегистрированный TipTapSerializer.
func (d *Document) MarshalJSON() ([]byte, error) {
	if TipTapSerializer == nil {
		return nil, errors.New("TipTapSerializer not registered, import tiptap package to enable TipTap JSON serialization")
	}

	return TipTapSerializer(d)
}

// Value реализует интерфейс driver.Valuer для сохранения Document в JSONB.
func (d Document) Value() (driver.Value, error) {
	b, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Scan реализует интерфейс sql.Scanner для чтения Document из JSONB.
func (d *Document) Scan(value interface{}) error {
	if value == nil {
		*d = Document{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	return d.UnmarshalJSON(raw)
}

// GormDataType указывает GORM использовать тип JSONB для PostgreSQL колонок.
func (Document) GormDataType() string {
	return "jsonb"
}

type Heading struct {
	Level   int
	ID      string // якорь для оглавления, может быть пустым
	Content []Node
}

type Paragraph struct {
	Content []Node
}

type BulletList struct {
	Items []Node
}

type OrderedList struct {
	Items []Node
}

type ListItem struct {
	Content []Node
}

// Image - изображение. Width и Height хранятся как пришли из редактора (число или строка вида "50%").
type Image struct {
	Src    string
	Alt    string
	Title  string
	Width  any
	Height any
	Align  string
}

type CodeBlock struct {
	Language string
	Text     string
}

type Table struct {
	Rows []Node
}

type TableRow struct {
	Cells []Node
}

// TableCell - ячейка таблицы, Header=true для ячейки заголовка (tableHeader).
type TableCell struct {
	Header  bool
	Content []Node
}

type Blockquote struct {
	Content []Node
}

type HorizontalRule struct{}

// Callout - выделенный блок с вариантом оформления (info, success, ...).
type Callout struct {
	Variant string
	Title   string
	Content []Node
}

// Generic - нода неизвестного типа. Тип, атрибуты и содержимое сохраняются как есть.
type Generic struct {
	Type    string
	Attrs   map[string]any
	Content []Node
}

// Text - текстовый фрагмент с форматированием.
type Text struct {
	Text  string
	Marks []Mark
}

type HardBreak struct {
	// Пустая структура для представления переноса строки <br>
}

func (*Heading) NodeType() string        { return TypeHeading }
func (*Paragraph) NodeType() string      { return TypeParagraph }
func (*BulletList) NodeType() string     { return TypeBulletList }
func (*OrderedList) NodeType() string    { return TypeOrderedList }
func (*ListItem) NodeType() string       { return TypeListItem }
func (*Image) NodeType() string          { return TypeImage }
func (*CodeBlock) NodeType() string      { return TypeCodeBlock }
func (*Table) NodeType() string          { return TypeTable }
func (*TableRow) NodeType() string       { return TypeTableRow }
func (*Blockquote) NodeType() string     { return TypeBlockquote }
func (*HorizontalRule) NodeType() string { return TypeHorizontalRule }
func (*Callout) NodeType() string        { return TypeCallout }
func (*Text) NodeType() string           { return TypeText }
func (*HardBreak) NodeType() string      { return TypeHardBreak }
func (g *Generic) NodeType() string      { return g.Type }

func (c *TableCell) NodeType() string {
	if c.Header {
		return TypeTableHeader
	}
	return TypeTableCell
}

func (*Heading) node()        {}
func (*Paragraph) node()      {}
func (*BulletList) node()     {}
func (*OrderedList) node()    {}
func (*ListItem) node()       {}
func (*Image) node()          {}
func (*CodeBlock) node()      {}
func (*Table) node()          {}
func (*TableRow) node()       {}
func (*TableCell) node()      {}
func (*Blockquote) node()     {}
func (*HorizontalRule) node() {}
func (*Callout) node()        {}
func (*Generic) node()        {}
func (*Text) node()           {}
func (*HardBreak) node()      {}

// IsNil сообщает, что нода отсутствует: nil-интерфейс или nil-указатель конкретного типа.
func IsNil(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// Children возвращает дочерние ноды для вариантов, у которых они есть. Для nil-ноды - nil.
func Children(n Node) []Node {
	if IsNil(n) {
		return nil
	}
	switch v := n.(type) {
	case *Heading:
		return v.Content
	case *Paragraph:
		return v.Content
	case *BulletList:
		return v.Items
	case *OrderedList:
		return v.Items
	case *ListItem:
		return v.Content
	case *Table:
		return v.Rows
	case *TableRow:
		return v.Cells
	case *TableCell:
		return v.Content
	case *Blockquote:
		return v.Content
	case *Callout:
		return v.Content
	case *Generic:
		return v.Content
	}
	return nil
}

// Mark - форматирование текстового фрагмента. Набор реализаций закрыт, прочие марки - OtherMark.
type Mark interface {
	MarkType() string
	mark()
}

type Bold struct{}

type Italic struct{}

// Link - ссылка, Target может быть пустым.
type Link struct {
	Href   string
	Target string
}

// OtherMark - марка, которую кодек не различает. Name может быть пустым после декодирования неизвестного кода.
type OtherMark struct {
	Name  string
	Attrs map[string]any
}

func (Bold) MarkType() string        { return MarkBold }
func (Italic) MarkType() string      { return MarkItalic }
func (Link) MarkType() string        { return MarkLink }
func (m OtherMark) MarkType() string { return m.Name }

func (Bold) mark()      {}
func (Italic) mark()    {}
func (Link) mark()      {}
func (OtherMark) mark() {}
