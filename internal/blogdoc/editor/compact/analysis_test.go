package compact_test

import (
	"testing"

	"github.com/aisa-it/blogdoc/internal/blogdoc/editor/compact"
	"github.com/aisa-it/blogdoc/internal/blogdoc/editor/edtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectImage(t *testing.T) {
	tests := []struct {
		url  string
		want compact.ImageInfo
	}{
		{"https://x.com/img/photo.PNG", compact.ImageInfo{Format: "png"}},
		{"https://x.com/cat-animated.gif", compact.ImageInfo{Format: "gif", Animated: true}},
		{"https://x.com/a.jpeg?w=100", compact.ImageInfo{Format: "jpg"}},
		{"https://x.com/a.JPG", compact.ImageInfo{Format: "jpg"}},
		{"https://x.com/ANIM/banner.webp", compact.ImageInfo{Format: "webp", Animated: true}},
		{"https://x.com/logo.svg", compact.ImageInfo{Format: "svg"}},
		{"https://x.com/hero.avif", compact.ImageInfo{Format: "avif"}},
		{"https://x.com/image.png.bak", compact.ImageInfo{}},
		{"https://x.com/download?id=1", compact.ImageInfo{}},
		{"", compact.ImageInfo{}},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, compact.InspectImage(tt.url))
		})
	}
}

func TestDictionary(t *testing.T) {
	canonical := []string{
		edtypes.TypeHeading, edtypes.TypeParagraph, edtypes.TypeBulletList, edtypes.TypeOrderedList,
		edtypes.TypeListItem, edtypes.TypeImage, edtypes.TypeCodeBlock, edtypes.TypeTable,
		edtypes.TypeTableRow, edtypes.TypeTableCell, edtypes.TypeTableHeader, edtypes.TypeBlockquote,
		edtypes.TypeHorizontalRule, edtypes.TypeHardBreak,
		edtypes.MarkBold, edtypes.MarkItalic, edtypes.MarkLink,
	}

	seen := make(map[string]string)
	for _, c := range canonical {
		code := compact.ToCompactCode(c)
		assert.NotEqual(t, c, code, "%s has no short code", c)
		if prev, ok := seen[code]; ok {
			t.Errorf("code %q shared by %s and %s", code, prev, c)
		}
		seen[code] = c
		assert.Equal(t, c, compact.ToCanonicalType(code))
	}

	assert.Equal(t, "customWidget", compact.ToCompactCode("customWidget"))
	assert.Equal(t, "customWidget", compact.ToCanonicalType("customWidget"))

	_, ok := compact.LookupCanonical("customWidget")
	assert.False(t, ok)
	name, ok := compact.LookupCanonical("a")
	assert.True(t, ok)
	assert.Equal(t, edtypes.MarkLink, name)
}

func TestExtractTOC(t *testing.T) {
	doc := &edtypes.Document{Content: []edtypes.Node{
		para("вступление"),
		&edtypes.Heading{Level: 1, Content: []edtypes.Node{&edtypes.Text{Text: "Intro"}}},
		para("текст"),
		&edtypes.Heading{Level: 2, ID: "d1", Content: []edtypes.Node{&edtypes.Text{Text: "Details"}}},
	}}

	data, err := compact.Marshal(doc)
	require.NoError(t, err)

	want := []compact.TOCEntry{
		{Level: 1, Text: "Intro", Index: 1},
		{Level: 2, Text: "Details", ID: "d1", Index: 3},
	}
	assert.Equal(t, want, compact.ExtractTOC(string(data)))
	assert.Equal(t, want, compact.TOC(compact.Compress(doc)))
}

func TestExtractTOC_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []compact.TOCEntry
	}{
		{name: "invalid json", input: "{not valid json", want: []compact.TOCEntry{}},
		{name: "empty string", input: "", want: []compact.TOCEntry{}},
		{name: "blocks not an array", input: `{"v":1,"b":{}}`, want: []compact.TOCEntry{}},
		{name: "no headings", input: `{"v":1,"b":[{"t":"p"}]}`, want: []compact.TOCEntry{}},
		{
			name:  "broken elements are skipped",
			input: `{"v":1,"b":[42,{"t":"h10","c":"no"},{"t":7},{"t":"h3","c":"ok"}]}`,
			want:  []compact.TOCEntry{{Level: 3, Text: "ok", Index: 3}},
		},
		{
			name:  "heading with node content",
			input: `{"v":1,"b":[{"t":"h2","c":[{"text":"a"},{"text":"b","m":["b"]}]}]}`,
			want:  []compact.TOCEntry{{Level: 2, Text: "ab", Index: 0}},
		},
		{
			name:  "non-string id keeps the heading",
			input: `{"v":1,"b":[{"t":"h1","c":"Intro","id":7}]}`,
			want:  []compact.TOCEntry{{Level: 1, Text: "Intro", Index: 0}},
		},
		{
			name:  "non-string content keeps the heading",
			input: `{"v":1,"b":[{"t":"h2","c":{"x":1},"id":"d1"},{"t":"h3","c":null}]}`,
			want:  []compact.TOCEntry{{Level: 2, ID: "d1", Index: 0}, {Level: 3, Index: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compact.ExtractTOC(tt.input)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, []compact.TOCEntry{}, compact.TOC(nil))
	assert.Equal(t,
		[]compact.TOCEntry{{Level: 1, Text: "Intro", Index: 0}},
		compact.TOC(&compact.Root{V: 1, B: []any{map[string]any{"t": "h1", "c": "Intro", "id": 7}}}),
	)
}

func TestEstimateSize(t *testing.T) {
	tests := []struct {
		name                 string
		original, compressed string
		want                 compact.Estimate
	}{
		{
			name: "empty original",
			want: compact.Estimate{},
		},
		{
			name:       "half",
			original:   "aaaa",
			compressed: "aa",
			want:       compact.Estimate{OriginalSize: 4, CompressedSize: 2, Reduction: 2, ReductionPercent: 50},
		},
		{
			name:       "utf-8 bytes",
			original:   "привет",
			compressed: "hi",
			want:       compact.Estimate{OriginalSize: 12, CompressedSize: 2, Reduction: 10, ReductionPercent: 83.33},
		},
		{
			name:       "growth",
			original:   "ab",
			compressed: "abc",
			want:       compact.Estimate{OriginalSize: 2, CompressedSize: 3, Reduction: -1, ReductionPercent: -50},
		},
		{
			name:       "compressed without original",
			compressed: "abc",
			want:       compact.Estimate{CompressedSize: 3, Reduction: -3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compact.EstimateSize(tt.original, tt.compressed))
		})
	}
}
