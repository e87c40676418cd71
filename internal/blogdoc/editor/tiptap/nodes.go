package tiptap

import (
	"log/slog"
	"strings"

	"github.com/aisa-it/blogdoc/internal/blogdoc/editor/edtypes"
)

// parseText преобразует текстовую ноду TipTap в edtypes.Text.
func parseText(node TipTapNode) *edtypes.Text {
	return &edtypes.Text{
		Text:  node.Text,
		Marks: parseMarks(node.Marks),
	}
}

// parseHeading преобразует заголовок TipTap в edtypes.Heading. Уровень по умолчанию 1.
func (p *parser) parseHeading(node TipTapNode) *edtypes.Heading {
	level := attrInt(node.Attrs, "level")
	if level <= 0 {
		level = 1
	}
	return &edtypes.Heading{
		Level:   level,
		ID:      attrString(node.Attrs, "id"),
		Content: p.schedule(node.Content),
	}
}

// parseCodeBlock преобразует блок кода TipTap в edtypes.CodeBlock.
func parseCodeBlock(node TipTapNode) *edtypes.CodeBlock {
	var text strings.Builder
	for _, child := range node.Content {
		if child.Type == edtypes.TypeText {
			text.WriteString(child.Text)
		}
	}

	return &edtypes.CodeBlock{
		Language: attrString(node.Attrs, "language"),
		Text:     text.String(),
	}
}

// parseImage преобразует изображение TipTap в edtypes.Image.
// Ширина и высота переносятся без преобразования, они бывают как числами, так и строками.
func parseImage(node TipTapNode) *edtypes.Image {
	img := &edtypes.Image{
		Src:    attrString(node.Attrs, "src"),
		Alt:    attrString(node.Attrs, "alt"),
		Title:  attrString(node.Attrs, "title"),
		Width:  node.Attrs["width"],
		Height: node.Attrs["height"],
		Align:  attrString(node.Attrs, "align"),
	}
	if img.Src == "" {
		slog.Debug("Image without src")
	}
	return img
}

// parseCallout преобразует callout TipTap в edtypes.Callout.
func (p *parser) parseCallout(node TipTapNode) *edtypes.Callout {
	return &edtypes.Callout{
		Variant: attrString(node.Attrs, "variant"),
		Title:   attrString(node.Attrs, "title"),
		Content: p.schedule(node.Content),
	}
}

// parseGeneric сохраняет ноду неизвестного типа как есть.
func (p *parser) parseGeneric(node TipTapNode) *edtypes.Generic {
	slog.Debug("Unknown node type, keep as generic", "type", node.Type)

	g := &edtypes.Generic{
		Type:    node.Type,
		Content: p.schedule(node.Content),
	}
	if len(node.Attrs) > 0 {
		g.Attrs = node.Attrs
	}
	return g
}
