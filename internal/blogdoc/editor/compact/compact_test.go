package compact_test

import (
	"encoding/json"
	"testing"

	"github.com/aisa-it/blogdoc/internal/blogdoc/editor/compact"
	"github.com/aisa-it/blogdoc/internal/blogdoc/editor/edtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func para(text string, marks ...edtypes.Mark) *edtypes.Paragraph {
	return &edtypes.Paragraph{Content: []edtypes.Node{&edtypes.Text{Text: text, Marks: marks}}}
}

// fullDocument содержит по одной ноде каждого типа без полей, теряемых при сжатии.
func fullDocument() *edtypes.Document {
	return &edtypes.Document{Content: []edtypes.Node{
		&edtypes.Heading{Level: 2, ID: "intro", Content: []edtypes.Node{&edtypes.Text{Text: "Введение"}}},
		&edtypes.Paragraph{Content: []edtypes.Node{
			&edtypes.Text{Text: "Обычный "},
			&edtypes.Text{Text: "жирный", Marks: []edtypes.Mark{edtypes.Bold{}, edtypes.Italic{}}},
			&edtypes.HardBreak{},
			&edtypes.Text{Text: "ссылка", Marks: []edtypes.Mark{edtypes.Link{Href: "https://example.com", Target: "_blank"}}},
		}},
		&edtypes.BulletList{Items: []edtypes.Node{
			&edtypes.ListItem{Content: []edtypes.Node{para("один")}},
			&edtypes.ListItem{Content: []edtypes.Node{para("два")}},
		}},
		&edtypes.OrderedList{Items: []edtypes.Node{
			&edtypes.ListItem{Content: []edtypes.Node{para("первый")}},
		}},
		&edtypes.Image{Src: "https://cdn.example.com/photo.PNG", Alt: "фото", Title: "Заголовок", Width: "50%", Align: "center"},
		&edtypes.CodeBlock{Language: "go", Text: "fmt.Println(\"hi\")"},
		&edtypes.Table{Rows: []edtypes.Node{
			&edtypes.TableRow{Cells: []edtypes.Node{
				&edtypes.TableCell{Header: true, Content: []edtypes.Node{para("Имя")}},
				&edtypes.TableCell{Header: true, Content: []edtypes.Node{para("Значение")}},
			}},
			&edtypes.TableRow{Cells: []edtypes.Node{
				&edtypes.TableCell{Content: []edtypes.Node{para("a")}},
				&edtypes.TableCell{Content: []edtypes.Node{para("1")}},
			}},
		}},
		&edtypes.Blockquote{Content: []edtypes.Node{para("цитата")}},
		&edtypes.HorizontalRule{},
		&edtypes.Callout{Variant: edtypes.CalloutSuccess, Title: "Готово", Content: []edtypes.Node{para("всё хорошо")}},
		&edtypes.Callout{Variant: edtypes.CalloutInfo, Content: []edtypes.Node{para("к сведению")}},
		&edtypes.Generic{Type: "youtube", Attrs: map[string]any{"src": "https://youtu.be/x"}},
		&edtypes.Paragraph{},
	}}
}

func TestRoundTrip(t *testing.T) {
	doc := fullDocument()

	t.Run("in memory", func(t *testing.T) {
		assert.Equal(t, doc, compact.Decompress(compact.Compress(doc)))
	})

	t.Run("through json", func(t *testing.T) {
		data, err := compact.Marshal(doc)
		require.NoError(t, err)

		restored, err := compact.Unmarshal(data)
		require.NoError(t, err)
		assert.Equal(t, doc, restored)
	})
}

func TestMarshal_Deterministic(t *testing.T) {
	first, err := compact.Marshal(fullDocument())
	require.NoError(t, err)
	second, err := compact.Marshal(fullDocument())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMarshal_EmptyDocument(t *testing.T) {
	for _, doc := range []*edtypes.Document{nil, {}} {
		data, err := compact.Marshal(doc)
		require.NoError(t, err)
		assert.JSONEq(t, `{"v":1,"b":[]}`, string(data))
	}
}

func TestCompress_Shape(t *testing.T) {
	tests := []struct {
		name string
		node edtypes.Node
		want map[string]any
	}{
		{
			name: "heading flattens text",
			node: &edtypes.Heading{Level: 3, ID: "x", Content: []edtypes.Node{
				&edtypes.Text{Text: "Раздел "},
				&edtypes.Text{Text: "два", Marks: []edtypes.Mark{edtypes.Bold{}}},
			}},
			want: map[string]any{"t": "h3", "c": "Раздел два", "id": "x"},
		},
		{
			name: "empty heading keeps c",
			node: &edtypes.Heading{Level: 1},
			want: map[string]any{"t": "h1", "c": ""},
		},
		{
			name: "empty paragraph",
			node: &edtypes.Paragraph{},
			want: map[string]any{"t": "p"},
		},
		{
			name: "code without language",
			node: &edtypes.CodeBlock{Text: "x := 1"},
			want: map[string]any{"t": "code", "lang": "plaintext", "code": "x := 1"},
		},
		{
			name: "animated image",
			node: &edtypes.Image{Src: "https://cdn.example.com/anim-loop.JPEG?v=2", Width: 640, Height: 480},
			want: map[string]any{"t": "img", "s": "https://cdn.example.com/anim-loop.JPEG?v=2", "f": "jpg", "anim": true, "w": 640, "h": 480},
		},
		{
			name: "image without extension",
			node: &edtypes.Image{Src: "https://cdn.example.com/blob", Alt: "alt"},
			want: map[string]any{"t": "img", "s": "https://cdn.example.com/blob", "a": "alt"},
		},
		{
			name: "horizontal rule",
			node: &edtypes.HorizontalRule{},
			want: map[string]any{"t": "hr"},
		},
		{
			name: "callout with unknown variant",
			node: &edtypes.Callout{Variant: "warning", Title: "Осторожно"},
			want: map[string]any{"t": "info", "title": "Осторожно"},
		},
		{
			name: "text with marks",
			node: &edtypes.Text{Text: "t", Marks: []edtypes.Mark{
				edtypes.Bold{},
				edtypes.Italic{},
				edtypes.Link{Href: "https://example.com"},
				edtypes.OtherMark{Name: "strike"},
				edtypes.OtherMark{Name: "highlight", Attrs: map[string]any{"color": "red"}},
			}},
			want: map[string]any{"text": "t", "m": []any{
				"b",
				"i",
				map[string]any{"t": "a", "h": "https://example.com"},
				"strike",
				map[string]any{"t": "highlight", "a": map[string]any{"color": "red"}},
			}},
		},
		{
			name: "generic",
			node: &edtypes.Generic{Type: "customWidget", Attrs: map[string]any{"foo": "bar"}},
			want: map[string]any{"t": "customWidget", "a": map[string]any{"foo": "bar"}},
		},
		{
			name: "table header cell",
			node: &edtypes.TableCell{Header: true, Content: []edtypes.Node{&edtypes.Paragraph{}}},
			want: map[string]any{"t": "th", "c": []any{map[string]any{"t": "p"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compact.CompressNode(tt.node))
		})
	}
}

func TestCompress_SkipsNilNodes(t *testing.T) {
	root := compact.Compress(&edtypes.Document{Content: []edtypes.Node{nil, &edtypes.HorizontalRule{}, nil}})
	assert.Equal(t, []any{map[string]any{"t": "hr"}}, root.B)
	assert.Nil(t, compact.CompressNode(nil))
}

func TestCompress_SkipsTypedNilNodes(t *testing.T) {
	doc := &edtypes.Document{Content: []edtypes.Node{
		(*edtypes.Paragraph)(nil),
		&edtypes.Heading{Level: 2, Content: []edtypes.Node{(*edtypes.Text)(nil), &edtypes.Text{Text: "Итоги"}}},
		&edtypes.BulletList{Items: []edtypes.Node{(*edtypes.ListItem)(nil)}},
		&edtypes.Paragraph{Content: []edtypes.Node{(*edtypes.HardBreak)(nil), &edtypes.Text{Text: "ok"}}},
		(*edtypes.Generic)(nil),
	}}

	var root *compact.Root
	require.NotPanics(t, func() { root = compact.Compress(doc) })
	assert.Equal(t, []any{
		map[string]any{"t": "h2", "c": "Итоги"},
		map[string]any{"t": "ul"},
		map[string]any{"t": "p", "c": []any{map[string]any{"text": "ok"}}},
	}, root.B)

	assert.Nil(t, compact.CompressNode((*edtypes.Table)(nil)))
	assert.Equal(t, []any{}, compact.EncodeInline([]edtypes.Node{(*edtypes.Text)(nil)}))
}

func TestHeadingLevels(t *testing.T) {
	for _, level := range []int{1, 2, 3, 9} {
		doc := &edtypes.Document{Content: []edtypes.Node{
			&edtypes.Heading{Level: level, Content: []edtypes.Node{&edtypes.Text{Text: "Заголовок"}}},
		}}
		assert.Equal(t, doc, compact.Decompress(compact.Compress(doc)), "level %d", level)
	}

	assert.Equal(t, "h9", compact.CompressNode(&edtypes.Heading{Level: 9})["t"])
	assert.Equal(t, "h9", compact.CompressNode(&edtypes.Heading{Level: 12})["t"])
	assert.Equal(t, "h1", compact.CompressNode(&edtypes.Heading{Level: 0})["t"])
}

func TestGenericTypeCollidesWithCompactCode(t *testing.T) {
	doc := &edtypes.Document{Content: []edtypes.Node{
		&edtypes.Generic{Type: "success", Attrs: map[string]any{"foo": "bar"}},
		&edtypes.Generic{Type: "h2"},
	}}

	got := compact.Decompress(compact.Compress(doc))
	require.Len(t, got.Content, 2)
	assert.Equal(t, &edtypes.Callout{Variant: "success"}, got.Content[0])
	assert.Equal(t, &edtypes.Heading{Level: 2}, got.Content[1])
}

func TestUnknownTypePreservation(t *testing.T) {
	doc := &edtypes.Document{Content: []edtypes.Node{
		&edtypes.Generic{Type: "customWidget", Attrs: map[string]any{"foo": "bar"}, Content: []edtypes.Node{}},
	}}

	data, err := compact.Marshal(doc)
	require.NoError(t, err)
	restored, err := compact.Unmarshal(data)
	require.NoError(t, err)

	require.Len(t, restored.Content, 1)
	g, ok := restored.Content[0].(*edtypes.Generic)
	require.True(t, ok, "got %T", restored.Content[0])
	assert.Equal(t, "customWidget", g.Type)
	assert.Equal(t, map[string]any{"foo": "bar"}, g.Attrs)
	assert.Empty(t, g.Content)
}

func TestLossyTransforms(t *testing.T) {
	t.Run("heading formatting", func(t *testing.T) {
		doc := &edtypes.Document{Content: []edtypes.Node{
			&edtypes.Heading{Level: 2, Content: []edtypes.Node{
				&edtypes.Text{Text: "Жирный", Marks: []edtypes.Mark{edtypes.Bold{}}},
				&edtypes.Text{Text: " заголовок"},
			}},
		}}
		want := &edtypes.Document{Content: []edtypes.Node{
			&edtypes.Heading{Level: 2, Content: []edtypes.Node{&edtypes.Text{Text: "Жирный заголовок"}}},
		}}
		assert.Equal(t, want, compact.Decompress(compact.Compress(doc)))
	})

	t.Run("callout variant", func(t *testing.T) {
		doc := &edtypes.Document{Content: []edtypes.Node{&edtypes.Callout{Variant: "warning"}}}
		restored := compact.Decompress(compact.Compress(doc))
		assert.Equal(t, &edtypes.Callout{Variant: edtypes.CalloutInfo}, restored.Content[0])
	})

	t.Run("unknown mark", func(t *testing.T) {
		doc := &edtypes.Document{Content: []edtypes.Node{
			para("x", edtypes.OtherMark{Name: "strike"}),
		}}
		restored := compact.Decompress(compact.Compress(doc))
		assert.Equal(t, para("x", edtypes.OtherMark{}), restored.Content[0])
	})

	t.Run("empty code language", func(t *testing.T) {
		doc := &edtypes.Document{Content: []edtypes.Node{&edtypes.CodeBlock{Text: "x"}}}
		restored := compact.Decompress(compact.Compress(doc))
		assert.Equal(t, &edtypes.CodeBlock{Language: "plaintext", Text: "x"}, restored.Content[0])
	})
}

func TestCompress_CompactShapeDoesNotPanic(t *testing.T) {
	doc := &edtypes.Document{Content: []edtypes.Node{
		&edtypes.Generic{Type: "v", Attrs: map[string]any{"b": []any{map[string]any{"t": "p"}}}},
		&edtypes.Generic{Type: "h2", Attrs: map[string]any{"c": "text"}},
		&edtypes.Generic{},
	}}
	assert.NotPanics(t, func() {
		data, err := compact.Marshal(doc)
		require.NoError(t, err)
		compact.DecompressString(string(data))
	})
}

func TestDecompress_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *edtypes.Document
	}{
		{
			name:  "invalid json",
			input: `{not valid json`,
			want:  &edtypes.Document{},
		},
		{
			name:  "array root",
			input: `[1, 2, 3]`,
			want:  &edtypes.Document{},
		},
		{
			name:  "blocks not an array",
			input: `{"v":1,"b":"oops"}`,
			want:  &edtypes.Document{},
		},
		{
			name:  "non-object blocks are dropped",
			input: `{"v":1,"b":[1,"x",null,{"t":"hr"}]}`,
			want:  &edtypes.Document{Content: []edtypes.Node{&edtypes.HorizontalRule{}}},
		},
		{
			name:  "single node",
			input: `{"t":"p","c":[{"text":"одна нода"}]}`,
			want:  &edtypes.Document{Content: []edtypes.Node{para("одна нода")}},
		},
		{
			name:  "missing keys use defaults",
			input: `{"v":1,"b":[{"t":"code"},{"t":"ul"},{"t":"img"},{"t":"h"},{"t":"h4","c":42}]}`,
			want: &edtypes.Document{Content: []edtypes.Node{
				&edtypes.CodeBlock{Language: "plaintext"},
				&edtypes.BulletList{},
				&edtypes.Image{},
				&edtypes.Heading{Level: 1},
				&edtypes.Heading{Level: 4},
			}},
		},
		{
			name:  "heading with node content",
			input: `{"v":1,"b":[{"t":"h2","c":[{"text":"a"},{"t":"br"}]}]}`,
			want: &edtypes.Document{Content: []edtypes.Node{
				&edtypes.Heading{Level: 2, Content: []edtypes.Node{&edtypes.Text{Text: "a"}, &edtypes.HardBreak{}}},
			}},
		},
		{
			name:  "unknown code",
			input: `{"v":1,"b":[{"t":"poll","a":"not a map","c":{"x":1}}]}`,
			want:  &edtypes.Document{Content: []edtypes.Node{&edtypes.Generic{Type: "poll"}}},
		},
		{
			name:  "malformed marks",
			input: `{"v":1,"b":[{"t":"p","c":[{"text":"x","m":[1,"b",{"t":"a"},{"t":"zz","a":{"k":"v"}}]}]}]}`,
			want: &edtypes.Document{Content: []edtypes.Node{
				para("x", edtypes.Bold{}, edtypes.Link{}, edtypes.OtherMark{Attrs: map[string]any{"k": "v"}}),
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compact.DecompressString(tt.input))
		})
	}
}

func TestDecompress_Inputs(t *testing.T) {
	root := compact.Compress(&edtypes.Document{Content: []edtypes.Node{&edtypes.HorizontalRule{}}})
	want := &edtypes.Document{Content: []edtypes.Node{&edtypes.HorizontalRule{}}}

	assert.Equal(t, want, compact.Decompress(root))
	assert.Equal(t, want, compact.Decompress(*root))
	assert.Equal(t, &edtypes.Document{}, compact.Decompress((*compact.Root)(nil)))
	assert.Equal(t, &edtypes.Document{}, compact.Decompress(nil))
	assert.Equal(t, &edtypes.Document{}, compact.Decompress("string"))
	assert.Equal(t, &edtypes.HorizontalRule{}, compact.DecompressNode(map[string]any{"t": "hr"}))
}

func TestUnmarshal_InvalidJSON(t *testing.T) {
	_, err := compact.Unmarshal([]byte(`{"v":1,`))
	assert.Error(t, err)
}

func TestDeepNesting(t *testing.T) {
	// encoding/json ограничивает вложенность 10000 уровнями, каждая цитата занимает два
	const depth = 2000

	var inner edtypes.Node = para("дно")
	for range depth {
		inner = &edtypes.Blockquote{Content: []edtypes.Node{inner}}
	}
	doc := &edtypes.Document{Content: []edtypes.Node{inner}}

	data, err := compact.Marshal(doc)
	require.NoError(t, err)
	restored, err := compact.Unmarshal(data)
	require.NoError(t, err)

	count := 0
	n := restored.Content[0]
	for {
		q, ok := n.(*edtypes.Blockquote)
		if !ok {
			break
		}
		count++
		require.Len(t, q.Content, 1)
		n = q.Content[0]
	}
	assert.Equal(t, depth, count)
	assert.Equal(t, para("дно"), n)
}

func TestInline(t *testing.T) {
	nodes := []edtypes.Node{
		&edtypes.Text{Text: "a", Marks: []edtypes.Mark{edtypes.Italic{}}},
		&edtypes.HardBreak{},
		&edtypes.Text{Text: "b"},
	}

	encoded := compact.EncodeInline(nodes)
	assert.Equal(t, []any{
		map[string]any{"text": "a", "m": []any{"i"}},
		map[string]any{"t": "br"},
		map[string]any{"text": "b"},
	}, encoded)
	assert.Equal(t, nodes, compact.DecodeInline(encoded))

	assert.Equal(t, []any{}, compact.EncodeInline(nil))
	assert.Nil(t, compact.DecodeInline(nil))
}

func TestMarshal_JSONKeys(t *testing.T) {
	data, err := compact.Marshal(&edtypes.Document{Content: []edtypes.Node{
		&edtypes.Heading{Level: 1, Content: []edtypes.Node{&edtypes.Text{Text: "Hello"}}},
	}})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, float64(compact.FormatVersion), raw["v"])
	assert.Len(t, raw["b"], 1)
}
