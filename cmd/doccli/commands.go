package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aisa-it/blogdoc/internal/blogdoc/editor"
	"github.com/aisa-it/blogdoc/internal/blogdoc/editor/compact"
	"github.com/aisa-it/blogdoc/internal/blogdoc/editor/tiptap"
	"github.com/aisa-it/blogdoc/internal/blogdoc/export"
	"github.com/tdewolff/minify/v2"
	mjson "github.com/tdewolff/minify/v2/json"
)

func compressFile(_ string, data []byte) (any, error) {
	doc, err := tiptap.ParseJSON(bytes.NewReader(trimJSON(data)))
	if err != nil {
		return nil, fmt.Errorf("parse editor json: %w", err)
	}
	return compact.Compress(doc), nil
}

func decompressFile(_ string, data []byte) (any, error) {
	doc, err := compact.Unmarshal(trimJSON(data))
	if err != nil {
		return nil, fmt.Errorf("parse compact json: %w", err)
	}
	return tiptap.ToTipTap(doc), nil
}

func tocFile(_ string, data []byte) (any, error) {
	return compact.ExtractTOC(string(trimJSON(data))), nil
}

func estimateFile(minifyOriginal bool) processor {
	m := minify.New()
	m.AddFunc("application/json", mjson.Minify)

	return func(_ string, data []byte) (any, error) {
		data = trimJSON(data)
		doc, err := tiptap.ParseJSON(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parse editor json: %w", err)
		}
		blob, err := compact.Marshal(doc)
		if err != nil {
			return nil, err
		}

		original := string(data)
		if minifyOriginal {
			if original, err = m.String("application/json", original); err != nil {
				return nil, fmt.Errorf("minify: %w", err)
			}
		}
		return compact.EstimateSize(original, string(blob)), nil
	}
}

func importHTMLFile(_ string, data []byte) (any, error) {
	doc, err := editor.ParseDocument(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return compact.Compress(doc), nil
}

func exportMarkdownFile(_ string, data []byte) (any, error) {
	doc, err := compact.Unmarshal(trimJSON(data))
	if err != nil {
		return nil, fmt.Errorf("parse compact json: %w", err)
	}
	md, err := export.MarkdownString(doc)
	if err != nil {
		return nil, err
	}
	return []byte(md), nil
}

// exportPDFFile пишет PDF в outDir под именем входного файла. Без outDir PDF возвращается для вывода в stdout.
func exportPDFFile(o *options) processor {
	outDir := o.outDir
	return func(source string, data []byte) (any, error) {
		doc, err := compact.Unmarshal(trimJSON(data))
		if err != nil {
			return nil, fmt.Errorf("parse compact json: %w", err)
		}

		name := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
		if source == stdinSource {
			name = "document"
		}
		opts := export.PDFOptions{
			Title:        name,
			FontPath:     o.font,
			BoldFontPath: o.boldFont,
			HTTPClient:   httpClient,
		}
		if toc := compact.ExtractTOC(string(trimJSON(data))); len(toc) > 0 {
			opts.Title = toc[0].Text
		}

		var buf bytes.Buffer
		if err := export.DocumentToPDF(doc, opts, &buf); err != nil {
			return nil, err
		}
		if outDir == "" {
			return buf.Bytes(), nil
		}

		path := filepath.Join(outDir, name+".pdf")
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			return nil, err
		}
		return path, nil
	}
}
