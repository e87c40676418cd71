// Генерация документации об ошибках API в формате Markdown.
// Читает файл с определениями apierrors.DefinedError и создает документ с таблицами ошибок по группам: код, HTTP код, сообщение и перевод на русский язык.
//
// Группа ошибки берется из комментария перед первым определением группы, например "// 41** - post errors".
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	md "github.com/nao1215/markdown"
)

type errorRow struct {
	Code   int
	Status string
	Err    string
	RuErr  string
}

type errorGroup struct {
	Title string
	Rows  []errorRow
}

func main() {
	errorsFile := flag.String("src", "internal/blogdoc/apierrors/apierrors.go", "Path of apierrors.go")
	outputMd := flag.String("out", "api_errors.md", "Path to output md")
	flag.Parse()

	slog.Info("Generate api errors docs", "src", *errorsFile, "out", *outputMd)

	groups, err := parseErrors(*errorsFile)
	if err != nil {
		slog.Error("Parse errors file", "err", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(*outputMd), 0755); err != nil {
		slog.Error("Create output dir", "err", err)
		os.Exit(1)
	}
	ff, err := os.Create(*outputMd)
	if err != nil {
		slog.Error("Create output file", "err", err)
		os.Exit(1)
	}
	defer ff.Close()

	if err := render(ff, groups); err != nil {
		slog.Error("Generate docs fail", "err", err)
		os.Exit(1)
	}
	slog.Info("Docs generated", "groups", len(groups))
}

func render(w io.Writer, groups []errorGroup) error {
	doc := md.NewMarkdown(w).
		H1("Перечень кодов ошибок").
		PlainText("Ошибки возвращаются в теле ответа в виде JSON с полями `code`, `error` и `ru_error`.")

	for _, g := range groups {
		rows := make([][]string, 0, len(g.Rows))
		for _, r := range g.Rows {
			rows = append(rows, []string{md.Bold(strconv.Itoa(r.Code)), r.Status, md.Code(r.Err), md.Code(r.RuErr)})
		}
		doc.H2(g.Title).CustomTable(md.TableSet{
			Header: []string{"Код", "HTTP код", "Сообщение", "Сообщение на русском"},
			Rows:   rows,
		}, md.TableOptions{
			AutoWrapText: false,
		})
	}
	return doc.Build()
}

// parseErrors собирает определения ошибок из var блоков файла. Ошибки внутри группы сортируются по коду.
func parseErrors(path string) ([]errorGroup, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	var groups []errorGroup
	for _, d := range f.Decls {
		decl, ok := d.(*ast.GenDecl)
		if !ok || decl.Tok != token.VAR {
			continue
		}
		for _, s := range decl.Specs {
			spec, ok := s.(*ast.ValueSpec)
			if !ok {
				continue
			}
			if spec.Doc != nil || len(groups) == 0 {
				groups = append(groups, errorGroup{Title: groupTitle(spec.Doc)})
			}
			for _, v := range spec.Values {
				lit, ok := v.(*ast.CompositeLit)
				if !ok || !isDefinedError(lit.Type) {
					continue
				}
				row, err := parseRow(lit)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", fset.Position(lit.Pos()), err)
				}
				groups[len(groups)-1].Rows = append(groups[len(groups)-1].Rows, row)
			}
		}
	}

	res := groups[:0]
	for _, g := range groups {
		if len(g.Rows) == 0 {
			continue
		}
		sort.Slice(g.Rows, func(i, j int) bool { return g.Rows[i].Code < g.Rows[j].Code })
		res = append(res, g)
	}
	return res, nil
}

func groupTitle(doc *ast.CommentGroup) string {
	if doc == nil {
		return "Общие ошибки"
	}
	return strings.TrimSpace(doc.Text())
}

func isDefinedError(expr ast.Expr) bool {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name == "DefinedError"
	case *ast.SelectorExpr:
		return t.Sel.Name == "DefinedError"
	}
	return false
}

func parseRow(lit *ast.CompositeLit) (errorRow, error) {
	row := errorRow{Status: statusCell("StatusBadRequest")}
	for _, el := range lit.Elts {
		kv, ok := el.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		key, _ := kv.Key.(*ast.Ident)
		if key == nil {
			continue
		}

		var err error
		switch key.Name {
		case "Code":
			var s string
			if s, err = stringValue(kv.Value); err == nil {
				row.Code, err = strconv.Atoi(s)
			}
		case "StatusCode":
			sel, ok := kv.Value.(*ast.SelectorExpr)
			if !ok {
				return row, fmt.Errorf("StatusCode must be an http.Status* constant")
			}
			row.Status = statusCell(sel.Sel.Name)
		case "Err":
			row.Err, err = stringValue(kv.Value)
		case "RuErr":
			row.RuErr, err = stringValue(kv.Value)
		}
		if err != nil {
			return row, fmt.Errorf("%s: %w", key.Name, err)
		}
	}
	return row, nil
}

// stringValue возвращает значение литерала или конкатенации литералов.
func stringValue(expr ast.Expr) (string, error) {
	switch e := expr.(type) {
	case *ast.BasicLit:
		if e.Kind == token.STRING {
			return strconv.Unquote(e.Value)
		}
		return e.Value, nil
	case *ast.ParenExpr:
		return stringValue(e.X)
	case *ast.BinaryExpr:
		if e.Op != token.ADD {
			return "", fmt.Errorf("unsupported operator %s", e.Op)
		}
		x, err := stringValue(e.X)
		if err != nil {
			return "", err
		}
		y, err := stringValue(e.Y)
		if err != nil {
			return "", err
		}
		return x + y, nil
	}
	return "", fmt.Errorf("unsupported expression %T", expr)
}

// Коды статусов, которые используют ошибки API.
var statusCodes = map[string]int{
	"StatusOK":                    http.StatusOK,
	"StatusBadRequest":            http.StatusBadRequest,
	"StatusUnauthorized":          http.StatusUnauthorized,
	"StatusForbidden":             http.StatusForbidden,
	"StatusNotFound":              http.StatusNotFound,
	"StatusConflict":              http.StatusConflict,
	"StatusRequestEntityTooLarge": http.StatusRequestEntityTooLarge,
	"StatusUnsupportedMediaType":  http.StatusUnsupportedMediaType,
	"StatusUnprocessableEntity":   http.StatusUnprocessableEntity,
	"StatusTooManyRequests":       http.StatusTooManyRequests,
	"StatusInternalServerError":   http.StatusInternalServerError,
	"StatusBadGateway":            http.StatusBadGateway,
	"StatusServiceUnavailable":    http.StatusServiceUnavailable,
	"StatusGatewayTimeout":        http.StatusGatewayTimeout,
}

func statusCell(name string) string {
	code, ok := statusCodes[name]
	if !ok {
		return md.Italic(name)
	}
	return fmt.Sprintf("%d %s", code, md.Italic(name))
}
