package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

const stdinSource = "-"

type options struct {
	output   string
	parallel int
	outDir   string
	font     string
	boldFont string
	minify   bool
	trace    bool
}

// fileResult - результат обработки одного входа при нескольких аргументах.
type fileResult struct {
	Source string `json:"source" yaml:"source"`
	Result any    `json:"result" yaml:"result"`
}

// processor обрабатывает содержимое одного входа. Результат []byte печатается как есть, остальное - в формате --output.
type processor func(source string, data []byte) (any, error)

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "doccli",
		Short:         "Compact editor documents: convert, analyze and export",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.trace {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}
			switch opts.output {
			case "json", "yaml":
				return nil
			}
			return fmt.Errorf("unsupported output format %q", opts.output)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "json", "Output format: json|yaml")
	rootCmd.PersistentFlags().IntVarP(&opts.parallel, "parallel", "p", runtime.NumCPU(), "Max files processed at once")
	rootCmd.PersistentFlags().BoolVar(&opts.trace, "trace", false, "Verbose logs")

	rootCmd.AddCommand(
		newCommand(opts, "compress", "Editor JSON to compact JSON", compressFile),
		newCommand(opts, "decompress", "Compact JSON to editor JSON", decompressFile),
		newCommand(opts, "toc", "Table of contents of compact JSON", tocFile),
		newEstimateCmd(opts),
		newCommand(opts, "import-html", "Legacy HTML (file or http(s) URL) to compact JSON", importHTMLFile),
		newCommand(opts, "export-md", "Compact JSON to Markdown", exportMarkdownFile),
		newExportPDFCmd(opts),
	)
	return rootCmd
}

func newCommand(opts *options, use, short string, fn processor) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [files...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFiles(cmd, opts, args, fn)
		},
	}
}

func newEstimateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "estimate [files...]",
		Short: "Size reduction of editor JSON after compression",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFiles(cmd, opts, args, estimateFile(opts.minify))
		},
	}
	cmd.Flags().BoolVar(&opts.minify, "minify", false, "Minify editor JSON before measuring")
	return cmd
}

func newExportPDFCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-pdf [files...]",
		Short: "Compact JSON to PDF; writes <name>.pdf into --out, or to stdout for a single input",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.outDir == "" && len(args) > 1 {
				return fmt.Errorf("--out is required for several inputs")
			}
			return runFiles(cmd, opts, args, exportPDFFile(opts))
		},
	}
	cmd.Flags().StringVar(&opts.outDir, "out", "", "Directory for PDF files")
	cmd.Flags().StringVar(&opts.font, "font", os.Getenv("PDF_FONT_PATH"), "TTF font with cyrillic glyphs")
	cmd.Flags().StringVar(&opts.boldFont, "bold-font", os.Getenv("PDF_BOLD_FONT_PATH"), "Bold TTF font")
	return cmd
}

// runFiles обрабатывает входы параллельно и печатает результаты в порядке аргументов.
func runFiles(cmd *cobra.Command, opts *options, args []string, fn processor) error {
	if len(args) == 0 {
		args = []string{stdinSource}
	}

	results := make([]any, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(opts.parallel, 1))

	for i, src := range args {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := readInput(cmd.InOrStdin(), src)
			if err != nil {
				return fmt.Errorf("%s: %w", src, err)
			}
			res, err := fn(src, data)
			if err != nil {
				return fmt.Errorf("%s: %w", src, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(args) == 1 {
		return printResult(out, opts.output, results[0])
	}

	list := make([]fileResult, 0, len(args))
	for i, src := range args {
		res := results[i]
		if b, ok := res.([]byte); ok {
			res = string(b)
		}
		list = append(list, fileResult{Source: src, Result: res})
	}
	return printResult(out, opts.output, list)
}

func printResult(w io.Writer, format string, res any) error {
	switch v := res.(type) {
	case nil:
		return nil
	case []byte:
		_, err := w.Write(v)
		return err
	}

	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

var httpClient = newHTTPClient()

func newHTTPClient() *retryablehttp.Client {
	cl := retryablehttp.NewClient()
	cl.RetryMax = 3
	cl.RetryWaitMin = 200 * time.Millisecond
	cl.HTTPClient.Timeout = 30 * time.Second
	cl.Logger = slog.Default()
	return cl
}

// readInput читает stdin, файл или http(s) URL.
func readInput(stdin io.Reader, src string) ([]byte, error) {
	switch {
	case src == stdinSource:
		return io.ReadAll(stdin)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		resp, err := httpClient.Get(src)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		return io.ReadAll(resp.Body)
	}
	return os.ReadFile(src)
}

// trimJSON убирает BOM и пробелы, которые оставляют редакторы при сохранении файла.
func trimJSON(data []byte) []byte {
	return bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
}
