package tiptap

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aisa-it/blogdoc/internal/blogdoc/editor/edtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullDocument = `{
	"type": "doc",
	"content": [
		{"type": "heading", "attrs": {"level": 1, "id": "top"}, "content": [{"type": "text", "text": "Post title"}]},
		{"type": "paragraph", "content": [
			{"type": "text", "marks": [{"type": "bold"}], "text": "Bold"},
			{"type": "text", "text": " and "},
			{"type": "text", "marks": [{"type": "link", "attrs": {"href": "https://example.com"}}], "text": "link"}
		]},
		{"type": "bulletList", "content": [
			{"type": "listItem", "content": [{"type": "paragraph", "content": [{"type": "text", "text": "one"}]}]},
			{"type": "listItem", "content": [
				{"type": "paragraph", "content": [{"type": "text", "text": "two"}]},
				{"type": "orderedList", "content": [{"type": "listItem", "content": [{"type": "paragraph"}]}]}
			]}
		]},
		{"type": "image", "attrs": {"src": "https://cdn.example.com/cat.gif", "alt": "cat", "width": 320}},
		{"type": "codeBlock", "attrs": {"language": "go"}, "content": [{"type": "text", "text": "fmt.Println(1)"}]},
		{"type": "table", "content": [
			{"type": "tableRow", "content": [
				{"type": "tableHeader", "content": [{"type": "paragraph", "content": [{"type": "text", "text": "H"}]}]},
				{"type": "tableCell", "content": [{"type": "paragraph", "content": [{"type": "text", "text": "C"}]}]}
			]}
		]},
		{"type": "blockquote", "content": [{"type": "paragraph", "content": [{"type": "text", "text": "quote"}]}]},
		{"type": "horizontalRule"},
		{"type": "callout", "attrs": {"variant": "info", "title": "Note"}, "content": [{"type": "paragraph", "content": [{"type": "text", "text": "hi"}]}]},
		{"type": "youtube", "attrs": {"src": "https://youtu.be/x", "start": 0}}
	]
}`

func TestRoundTripTipTap(t *testing.T) {
	doc, err := ParseJSON(bytes.NewReader([]byte(fullDocument)))
	require.NoError(t, err)
	require.Len(t, doc.Content, 10)

	data, err := Serialize(doc)
	require.NoError(t, err)

	again, err := ParseJSON(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, doc, again)

	// Повторная сериализация даёт тот же JSON
	data2, err := Serialize(again)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(data2))
}

func TestSerializeNilNodes(t *testing.T) {
	doc := &edtypes.Document{Content: []edtypes.Node{nil, &edtypes.HorizontalRule{}}}
	data, err := Serialize(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"doc","content":[{"type":"horizontalRule"}]}`, string(data))

	data, err = Serialize(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"doc"}`, string(data))
}

func TestDeepNesting(t *testing.T) {
	const depth = 3000
	raw := `{"type":"doc","content":[` +
		strings.Repeat(`{"type":"blockquote","content":[`, depth) +
		`{"type":"paragraph","content":[{"type":"text","text":"дно"}]}` +
		strings.Repeat(`]}`, depth) +
		`]}`

	doc, err := ParseJSON(strings.NewReader(raw))
	require.NoError(t, err)

	levels := 0
	n := doc.Content[0]
	for {
		q, ok := n.(*edtypes.Blockquote)
		if !ok {
			break
		}
		levels++
		require.Len(t, q.Content, 1)
		n = q.Content[0]
	}
	assert.Equal(t, depth, levels)
	assert.IsType(t, &edtypes.Paragraph{}, n)

	data, err := Serialize(doc)
	require.NoError(t, err)
	assert.Equal(t, raw, string(data))
}

func TestSerializeSkipsTypedNil(t *testing.T) {
	doc := &edtypes.Document{Content: []edtypes.Node{
		(*edtypes.Paragraph)(nil),
		&edtypes.Paragraph{Content: []edtypes.Node{(*edtypes.Text)(nil), &edtypes.Text{Text: "ok"}}},
	}}

	data, err := Serialize(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"ok"}]}]}`, string(data))
}
