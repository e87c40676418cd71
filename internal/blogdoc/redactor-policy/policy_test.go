package policy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "script removed",
			input:    `<p>текст<script>alert(1)</script></p>`,
			contains: []string{"<p>текст</p>"},
			excludes: []string{"script", "alert"},
		},
		{
			name:     "heading anchor kept",
			input:    `<h2 id="install" onclick="x()">Установка</h2>`,
			contains: []string{`<h2 id="install">Установка</h2>`},
			excludes: []string{"onclick"},
		},
		{
			name:     "callout attributes kept",
			input:    `<div data-callout="success" data-title="Готово"><p>ok</p></div>`,
			contains: []string{`data-callout="success"`, `data-title="Готово"`},
		},
		{
			name:     "code language kept",
			input:    `<pre><code class="language-go">x := 1</code></pre>`,
			contains: []string{`class="language-go"`},
		},
		{
			name:     "mention replaced",
			input:    `<p>привет <span data-type="mention" data-id="42" data-label="ivan">ivan</span></p>`,
			contains: []string{"привет @ivan"},
			excludes: []string{"span"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.input)
			for _, s := range tt.contains {
				assert.Contains(t, got, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, got, s)
			}
		})
	}
}

func TestProcessMentions(t *testing.T) {
	assert.Equal(t, "", ProcessMentions(""))

	got := ProcessMentions(`<span data-type="mention" data-id="@petr"></span>`)
	assert.True(t, strings.Contains(got, "@petr"), got)
	assert.NotContains(t, got, "@@")

	// без подписи упоминание остаётся как есть
	got = ProcessMentions(`<span data-type="mention">x</span>`)
	assert.Contains(t, got, `data-type="mention"`)
}
