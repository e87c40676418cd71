// Пакет для экспорта документов постов в Markdown и PDF.
//
// Основные возможности:
//   - Генерация PDF из канонического дерева документа.
//   - Заголовки попадают в закладки PDF, что дает навигацию по оглавлению.
//   - Вставка изображений по URL, относительные ссылки разрешаются от базового адреса.
//   - Создание таблиц, цитат, callout-блоков и блоков кода.
//   - Поддержка стилизации текста (жирный, курсив, подчеркнутый, зачеркнутый) и ссылок.
//   - Экспорт в Markdown для лент и поиска.
package export

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"github.com/aisa-it/blogdoc/internal/blogdoc/editor/edtypes"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	fontFamily     = "Body"
	coreFontFamily = "Helvetica"
	codeFontFamily = "Courier"

	baseFontSize = 11.0
)

var headingSizes = map[int]float64{1: 22, 2: 18, 3: 15, 4: 13}

// PDFOptions - параметры экспорта в PDF.
type PDFOptions struct {
	Title string
	// BaseURL для относительных ссылок на изображения. Если nil, такие изображения пропускаются.
	BaseURL *url.URL
	// FontPath - TTF с поддержкой кириллицы. Без него используется встроенный Helvetica (cp1252).
	FontPath     string
	BoldFontPath string
	HTTPClient   *retryablehttp.Client
}

type pdfWriter struct {
	pdf    *fpdf.Fpdf
	opts   PDFOptions
	client *retryablehttp.Client
	family string
	tr     func(string) string

	defaultMargins Margins
}

type Margins struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

func (m *Margins) GetMargins(pdf fpdf.Pdf) {
	m.Left, m.Top, m.Right, m.Bottom = pdf.GetMargins()
}

// NewImageClient - HTTP клиент для загрузки изображений с повторными попытками.
func NewImageClient() *retryablehttp.Client {
	cl := retryablehttp.NewClient()
	cl.RetryMax = 3
	cl.RetryWaitMin = time.Millisecond * 200
	cl.RetryWaitMax = time.Second * 2
	cl.HTTPClient.Timeout = time.Second * 10
	cl.Logger = slog.Default()
	return cl
}

// DocumentToPDF рендерит документ в PDF формата A4 и пишет результат в out.
func DocumentToPDF(doc *edtypes.Document, opts PDFOptions, out io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "") // 210*297 mm

	w := pdfWriter{
		pdf:    pdf,
		opts:   opts,
		client: opts.HTTPClient,
		family: coreFontFamily,
		tr:     func(s string) string { return s },
	}
	if w.client == nil {
		w.client = NewImageClient()
	}

	if opts.FontPath != "" {
		pdf.AddUTF8Font(fontFamily, "", opts.FontPath)
		bold := opts.BoldFontPath
		if bold == "" {
			bold = opts.FontPath
		}
		pdf.AddUTF8Font(fontFamily, "B", bold)
		pdf.AddUTF8Font(fontFamily, "I", opts.FontPath)
		pdf.AddUTF8Font(fontFamily, "BI", bold)
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("load font: %w", err)
		}
		w.family = fontFamily
	} else {
		w.tr = pdf.UnicodeTranslatorFromDescriptor("")
	}

	w.defaultMargins.GetMargins(w.pdf)

	pdf.SetTitle(opts.Title, w.family == fontFamily)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(w.family, "", 8)
		pdf.SetTextColor(71, 74, 82)
		pdf.CellFormat(0, 8, strconv.Itoa(pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	if opts.Title != "" {
		pdf.SetFont(w.family, "B", 25)
		pdf.SetTextColor(0, 0, 0)
		w.write(opts.Title)
		pdf.Ln(-1)
		pdf.SetDrawColor(71, 74, 82)
		pdf.Line(pdf.GetX(), pdf.GetY()+2, 200, pdf.GetY()+2)
		pdf.Ln(6)
	}

	if doc != nil {
		for _, n := range doc.Content {
			w.writeBlock(n)
			w.resetMargins()
		}
	}

	return pdf.Output(out)
}

func (w *pdfWriter) writeBlocks(nodes []edtypes.Node) {
	for _, n := range nodes {
		w.writeBlock(n)
	}
}

func (w *pdfWriter) writeBlock(n edtypes.Node) {
	switch el := n.(type) {
	case *edtypes.Heading:
		w.writeHeading(el)
	case *edtypes.Paragraph:
		w.writeParagraph(el.Content)
	case *edtypes.Blockquote:
		w.writeQuote(el.Content, 74, 71, 82)
	case *edtypes.Callout:
		if el.Variant == edtypes.CalloutSuccess {
			w.writeQuote(calloutContent(el), 38, 166, 91)
		} else {
			w.writeQuote(calloutContent(el), 38, 132, 206)
		}
	case *edtypes.BulletList:
		w.writeList(el.Items, false)
	case *edtypes.OrderedList:
		w.writeList(el.Items, true)
	case *edtypes.ListItem:
		w.writeBlocks(el.Content)
	case *edtypes.CodeBlock:
		w.writeCode(el)
	case *edtypes.Table:
		w.writeTable(el)
	case *edtypes.Image:
		w.writeImage(el)
		w.pdf.Ln(-1)
	case *edtypes.HorizontalRule:
		w.pdf.Ln(2)
		w.pdf.SetLineWidth(0.2)
		w.pdf.SetDrawColor(200, 200, 200)
		l, _, r, _ := w.pdf.GetMargins()
		pW, _ := w.pdf.GetPageSize()
		w.pdf.Line(l, w.pdf.GetY(), pW-r, w.pdf.GetY())
		w.pdf.Ln(4)
	case *edtypes.Text, *edtypes.HardBreak:
		w.writeParagraph([]edtypes.Node{n})
	case *edtypes.Generic:
		w.writeBlocks(el.Content)
	}
}

func calloutContent(c *edtypes.Callout) []edtypes.Node {
	if c.Title == "" {
		return c.Content
	}
	title := &edtypes.Paragraph{Content: []edtypes.Node{
		&edtypes.Text{Text: c.Title, Marks: []edtypes.Mark{edtypes.Bold{}}},
	}}
	return append([]edtypes.Node{title}, c.Content...)
}

func (w *pdfWriter) writeHeading(h *edtypes.Heading) {
	size, ok := headingSizes[h.Level]
	if !ok {
		size = baseFontSize + 1
	}

	text := plainText(h.Content)
	w.pdf.Ln(2)
	w.pdf.Bookmark(w.tr(text), h.Level-1, -1)
	w.pdf.SetFont(w.family, "B", size)
	w.pdf.SetTextColor(0, 0, 0)
	w.write(text)
	w.pdf.Ln(-1)
	w.pdf.Ln(1)
}

func (w *pdfWriter) writeParagraph(content []edtypes.Node) {
	w.pdf.SetFont(w.family, "", baseFontSize)
	for _, n := range content {
		switch el := n.(type) {
		case *edtypes.Text:
			w.writeText(el, "")
		case *edtypes.HardBreak:
			w.pdf.Ln(-1)
		case *edtypes.Image:
			w.writeImage(el)
		default:
			w.writeParagraph(edtypes.Children(n))
		}
	}
	w.pdf.Ln(-1)
	w.pdf.Ln(1.5)
}

func (w *pdfWriter) writeQuote(content []edtypes.Node, r, g, b int) {
	w.pdf.Ln(2)
	y1 := w.pdf.GetY()
	l, _, _, _ := w.pdf.GetMargins()
	w.pdf.SetLeftMargin(l + 3)
	w.pdf.SetX(l + 3)
	w.writeBlocks(content)
	w.pdf.SetLeftMargin(l)

	w.pdf.SetLineWidth(0.5)
	w.pdf.SetDrawColor(r, g, b)
	w.pdf.Line(l+1, y1, l+1, w.pdf.GetY())
	w.pdf.Ln(2)
}

func (w *pdfWriter) writeList(items []edtypes.Node, numbered bool) {
	l, _, _, _ := w.pdf.GetMargins()
	w.pdf.SetLeftMargin(l + 3)
	for i, item := range items {
		w.pdf.SetX(l + 3)
		w.pdf.SetFont(w.family, "", baseFontSize)
		w.pdf.SetTextColor(0, 0, 0)
		if numbered {
			w.write(fmt.Sprintf("%d.", i+1))
		} else {
			w.write("-")
		}

		w.pdf.SetLeftMargin(l + 7)
		w.pdf.SetX(l + 7)
		w.writeBlocks(edtypes.Children(item))
		w.pdf.SetLeftMargin(l + 3)
	}
	w.pdf.SetLeftMargin(l)
}

func (w *pdfWriter) writeCode(c *edtypes.CodeBlock) {
	family := codeFontFamily
	if w.family == fontFamily {
		family = fontFamily
	}
	w.pdf.SetFont(family, "", baseFontSize-1)
	w.pdf.SetTextColor(0, 0, 0)
	w.SetHexFillColor("#f3f4f6")
	_, s := w.pdf.GetFontSize()
	w.pdf.MultiCell(0, s+1, w.tr(cleanUnsupportedSymbols(c.Text)), "", "L", true)
	w.pdf.Ln(2)
}

func (w *pdfWriter) writeText(t *edtypes.Text, extraStyle string) float64 {
	link := w.prepareText(t, extraStyle)
	return w.write(t.Text, link)
}

// prepareText выставляет шрифт по маркам и возвращает адрес ссылки, если она есть.
func (w *pdfWriter) prepareText(t *edtypes.Text, extraStyle string) string {
	var link string
	style := extraStyle
	for _, m := range t.Marks {
		switch mark := m.(type) {
		case edtypes.Bold:
			style += "B"
		case edtypes.Italic:
			style += "I"
		case edtypes.Link:
			link = mark.Href
		case edtypes.OtherMark:
			switch mark.Name {
			case "underline":
				style += "U"
			case "strike":
				style += "S"
			}
		}
	}
	if strings.Count(style, "B") > 1 {
		style = strings.Replace(style, "B", "", 1)
	}

	w.pdf.SetFont(w.family, style, baseFontSize)
	if link != "" {
		w.pdf.SetTextColor(38, 132, 206)
	} else {
		w.pdf.SetTextColor(0, 0, 0)
	}
	return link
}

func (w *pdfWriter) calcText(t *edtypes.Text, extraStyle string) float64 {
	w.prepareText(t, extraStyle)
	return w.pdf.GetStringWidth(w.tr(cleanUnsupportedSymbols(t.Text)))
}

func (w *pdfWriter) write(text string, link ...string) float64 {
	text = w.tr(cleanUnsupportedSymbols(text))
	_, s := w.pdf.GetFontSize()
	s += 0.1
	if len(link) > 0 && link[0] != "" {
		w.pdf.WriteLinkString(s, text, link[0])
		return 0
	}
	w.pdf.WriteLinkString(s, text, "")
	return w.pdf.GetStringWidth(text)
}

// cleanUnsupportedSymbols удаляет символы вне BMP: шрифты fpdf их не содержат.
func cleanUnsupportedSymbols(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, s := range text {
		if s < 65536 {
			sb.WriteRune(s)
		}
	}
	return sb.String()
}

func (w *pdfWriter) resolve(src string) (string, bool) {
	u, err := url.Parse(src)
	if err != nil {
		return "", false
	}
	if u.Host == "" {
		if w.opts.BaseURL == nil {
			return "", false
		}
		u = w.opts.BaseURL.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	return u.String(), true
}

func (w *pdfWriter) getImageInfo(src string) *fpdf.ImageInfoType {
	if info := w.pdf.GetImageInfo(src); info != nil {
		return info
	}

	resp, err := w.client.Get(src)
	if err != nil {
		slog.Warn("Fetch image for pdf", "url", src, "err", err)
		return nil
	}
	defer resp.Body.Close()

	options := fpdf.ImageOptions{ImageType: w.pdf.ImageTypeFromMime(resp.Header.Get("Content-Type")), ReadDpi: true}

	// unsupported image type
	if options.ImageType == "" {
		w.pdf.ClearError()
		return nil
	}

	info := w.pdf.RegisterImageOptionsReader(src, options, resp.Body)
	if w.pdf.Err() {
		slog.Warn("Register image for pdf", "url", src, "err", w.pdf.Error())
		w.pdf.ClearError()
		return nil
	}
	return info
}

func (w *pdfWriter) writeImage(img *edtypes.Image) {
	src, ok := w.resolve(img.Src)
	if !ok {
		return
	}
	if w.getImageInfo(src) == nil {
		return
	}

	maxX, _ := w.pdf.GetPageSize()
	_, _, right, _ := w.pdf.GetMargins()
	maxWidth := maxX - right - w.pdf.GetX()

	width := maxWidth
	if px, ok := img.Width.(int); ok && px > 0 {
		width = min(w.PxToUnit(px), maxWidth)
	} else if px, ok := img.Width.(float64); ok && px > 0 {
		width = min(w.PxToUnit(int(px)), maxWidth)
	}
	w.pdf.ImageOptions(src, -1, -1, width, 0, true, fpdf.ImageOptions{ReadDpi: true}, 0, src)
}

func (w *pdfWriter) writeTable(table *edtypes.Table) {
	const heightOffset = 2

	var rows [][]*edtypes.TableCell
	cols := 0
	for _, r := range table.Rows {
		row, ok := r.(*edtypes.TableRow)
		if !ok {
			continue
		}
		var cells []*edtypes.TableCell
		for _, c := range row.Cells {
			if cell, ok := c.(*edtypes.TableCell); ok {
				cells = append(cells, cell)
			}
		}
		cols = max(cols, len(cells))
		rows = append(rows, cells)
	}
	if cols == 0 {
		return
	}

	l, _, r, _ := w.pdf.GetMargins()
	pW, _ := w.pdf.GetPageSize()
	colWidth := (pW - l - r) / float64(cols)
	rowHeight := make([]float64, len(rows))

	for i, row := range rows {
		for _, cell := range row {
			contentWidth := w.calcText(&edtypes.Text{Text: plainText(cell.Content)}, cellStyle(cell))
			lines := 1
			if contentWidth > colWidth-w.pdf.GetCellMargin()*2 {
				lines = int(math.Ceil(contentWidth / (colWidth - w.pdf.GetCellMargin()*2)))
			}
			_, fz := w.pdf.GetFontSize()
			rowHeight[i] = max(rowHeight[i], (fz+0.1)*float64(lines))
		}
	}

	w.pdf.Ln(1)
	for i, row := range rows {
		w.pdf.SetX(l)
		for j := 0; j < cols; j++ {
			x, y := w.pdf.GetXY()

			w.SetHexFillColor("#e5edfa")
			header := j < len(row) && row[j].Header
			w.pdf.SetDrawColor(71, 74, 82)
			w.pdf.SetLineWidth(0.2)
			w.pdf.CellFormat(colWidth, rowHeight[i]+heightOffset, "", "1", 0, "LM", header, 0, "")

			x1, y1 := w.pdf.GetXY()
			if j < len(row) {
				w.pdf.SetXY(x, y+heightOffset/2)
				w.pdf.SetLeftMargin(x + w.pdf.GetCellMargin())
				w.pdf.SetRightMargin(pW - (x + colWidth) + w.pdf.GetCellMargin())
				w.pdf.SetX(x + w.pdf.GetCellMargin())
				w.writeCellInline(row[j])
				w.pdf.SetLeftMargin(l)
				w.pdf.SetRightMargin(r)
			}
			w.pdf.SetXY(x1, y1)
		}
		w.pdf.Ln(rowHeight[i] + heightOffset)
	}

	_, fz := w.pdf.GetFontSize()
	w.pdf.Ln(fz / 2)
}

func (w *pdfWriter) writeCellInline(cell *edtypes.TableCell) {
	style := cellStyle(cell)
	for pI, block := range cell.Content {
		for _, n := range edtypes.Children(block) {
			switch el := n.(type) {
			case *edtypes.Text:
				w.writeText(el, style)
			case *edtypes.HardBreak:
				w.pdf.Ln(-1)
			}
		}
		if pI != len(cell.Content)-1 {
			w.pdf.Ln(-1)
		}
	}
}

func cellStyle(cell *edtypes.TableCell) string {
	if cell.Header {
		return "B"
	}
	return ""
}

func (w *pdfWriter) PxToUnit(px int) float64 {
	return w.pdf.PointConvert(float64(px) * 0.75)
}

func (w *pdfWriter) SetHexFillColor(hex string) {
	hex = strings.TrimPrefix(hex, "#")
	values, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return
	}
	w.pdf.SetFillColor(
		int(uint8(values>>16)),
		int(uint8((values>>8)&0xFF)),
		int(uint8(values&0xFF)),
	)
}

// plainText - текст всех потомков подряд, для закладок и расчета ширины.
func plainText(nodes []edtypes.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		if t, ok := n.(*edtypes.Text); ok {
			sb.WriteString(t.Text)
			continue
		}
		sb.WriteString(plainText(edtypes.Children(n)))
	}
	return sb.String()
}

func (w *pdfWriter) resetMargins() {
	w.pdf.SetMargins(w.defaultMargins.Left, w.defaultMargins.Top, w.defaultMargins.Right)
}
