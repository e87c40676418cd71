package export

import (
	"testing"

	"github.com/aisa-it/blogdoc/internal/blogdoc/editor/edtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown(t *testing.T) {
	doc := samplePost("https://cdn.example.com/pic.png")

	out, err := MarkdownString(doc)
	require.NoError(t, err)

	for _, want := range []string{
		"# Intro\n",
		"Plain **bold**  \n[link](https://example.com)",
		"- one",
		"```go\nfmt.Println(1)\n```",
		"| Name",
		"> [!TIP]",
		"**Done**",
		"> quote",
		"---",
		"![img](https://cdn.example.com/pic.png)",
	} {
		assert.Contains(t, out, want)
	}
}

func TestTextMarkdown(t *testing.T) {
	tests := []struct {
		name string
		text *edtypes.Text
		want string
	}{
		{
			name: "plain",
			text: &edtypes.Text{Text: " a "},
			want: " a ",
		},
		{
			name: "spaces outside marks",
			text: &edtypes.Text{Text: " bold ", Marks: []edtypes.Mark{edtypes.Bold{}}},
			want: " **bold** ",
		},
		{
			name: "link wraps formatting",
			text: &edtypes.Text{Text: "x", Marks: []edtypes.Mark{edtypes.Link{Href: "https://e.com"}, edtypes.Italic{}}},
			want: "[*x*](https://e.com)",
		},
		{
			name: "inline code and strike",
			text: &edtypes.Text{Text: "c", Marks: []edtypes.Mark{edtypes.OtherMark{Name: "code"}, edtypes.OtherMark{Name: "strike"}}},
			want: "~~`c`~~",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, textMarkdown(tt.text))
		})
	}
}

func TestListItemsFlattenNested(t *testing.T) {
	items := []edtypes.Node{
		&edtypes.ListItem{Content: []edtypes.Node{
			&edtypes.Paragraph{Content: []edtypes.Node{&edtypes.Text{Text: "outer"}}},
			&edtypes.BulletList{Items: []edtypes.Node{
				&edtypes.ListItem{Content: []edtypes.Node{&edtypes.Paragraph{Content: []edtypes.Node{&edtypes.Text{Text: "inner"}}}}},
			}},
		}},
	}
	assert.Equal(t, []string{"outer", "inner"}, listItems(items))
}

func TestMarkdown_Empty(t *testing.T) {
	out, err := MarkdownString(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
