package edtypes_test

import (
	"encoding/json"
	"testing"

	"github.com/aisa-it/blogdoc/internal/blogdoc/editor/edtypes"
	_ "github.com/aisa-it/blogdoc/internal/blogdoc/editor/tiptap" // Регистрация парсера
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name          string
		json          string
		wantNodeCount int
		wantErr       bool
	}{
		{
			name: "simple paragraph",
			json: `{
				"type": "doc",
				"content": [
					{"type": "paragraph", "content": [{"type": "text", "text": "Hello World"}]}
				]
			}`,
			wantNodeCount: 1,
		},
		{
			name: "heading and paragraph",
			json: `{
				"type": "doc",
				"content": [
					{"type": "heading", "attrs": {"level": 2}, "content": [{"type": "text", "text": "Title"}]},
					{"type": "paragraph", "content": [{"type": "text", "text": "Second"}]}
				]
			}`,
			wantNodeCount: 2,
		},
		{
			name:          "empty document",
			json:          `{"type": "doc", "content": []}`,
			wantNodeCount: 0,
		},
		{
			name:    "invalid json",
			json:    `{"type": "doc", "content": [}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc edtypes.Document
			err := json.Unmarshal([]byte(tt.json), &doc)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, doc.Content, tt.wantNodeCount)
		})
	}
}

func TestDocument_UnmarshalJSON_Integration(t *testing.T) {
	// UnmarshalJSON в составе DTO структуры
	type PostDTO struct {
		Title string           `json:"title"`
		Body  edtypes.Document `json:"body"`
	}

	jsonData := `{
		"title": "Test Post",
		"body": {
			"type": "doc",
			"content": [
				{"type": "paragraph", "content": [{"type": "text", "text": "This is a test body"}]}
			]
		}
	}`

	var post PostDTO
	require.NoError(t, json.Unmarshal([]byte(jsonData), &post))
	assert.Equal(t, "Test Post", post.Title)
	require.Len(t, post.Body.Content, 1)

	para, ok := post.Body.Content[0].(*edtypes.Paragraph)
	require.True(t, ok, "first node is %T", post.Body.Content[0])
	require.Len(t, para.Content, 1)
	assert.Equal(t, &edtypes.Text{Text: "This is a test body"}, para.Content[0])
}

func TestDocument_ValueScan(t *testing.T) {
	doc := edtypes.Document{Content: []edtypes.Node{
		&edtypes.Paragraph{Content: []edtypes.Node{&edtypes.Text{Text: "stored", Marks: []edtypes.Mark{edtypes.Bold{}}}}},
	}}

	v, err := doc.Value()
	require.NoError(t, err)

	var restored edtypes.Document
	require.NoError(t, restored.Scan(v))
	assert.Equal(t, doc, restored)

	require.NoError(t, restored.Scan(nil))
	assert.Empty(t, restored.Content)
	assert.Error(t, restored.Scan(42))
}

func TestNodeType(t *testing.T) {
	assert.Equal(t, edtypes.TypeTableHeader, (&edtypes.TableCell{Header: true}).NodeType())
	assert.Equal(t, edtypes.TypeTableCell, (&edtypes.TableCell{}).NodeType())
	assert.Equal(t, "customWidget", (&edtypes.Generic{Type: "customWidget"}).NodeType())
	assert.Equal(t, "", edtypes.OtherMark{}.MarkType())
	assert.Len(t, edtypes.Children(&edtypes.Table{Rows: []edtypes.Node{&edtypes.TableRow{}}}), 1)
	assert.Nil(t, edtypes.Children(&edtypes.HorizontalRule{}))
}

func TestIsNil(t *testing.T) {
	tests := []struct {
		name string
		node edtypes.Node
		want bool
	}{
		{"nil interface", nil, true},
		{"nil paragraph", (*edtypes.Paragraph)(nil), true},
		{"nil generic", (*edtypes.Generic)(nil), true},
		{"paragraph", &edtypes.Paragraph{}, false},
		{"hard break", &edtypes.HardBreak{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, edtypes.IsNil(tt.node))
			assert.NotPanics(t, func() { edtypes.Children(tt.node) })
		})
	}
	assert.Nil(t, edtypes.Children((*edtypes.Blockquote)(nil)))
}
