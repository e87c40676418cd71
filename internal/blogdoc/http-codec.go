package blogdoc

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/aisa-it/blogdoc/internal/blogdoc/apierrors"
	"github.com/aisa-it/blogdoc/internal/blogdoc/editor"
	"github.com/aisa-it/blogdoc/internal/blogdoc/editor/compact"
	"github.com/aisa-it/blogdoc/internal/blogdoc/editor/tiptap"
	"github.com/labstack/echo/v4"
	"github.com/tdewolff/minify/v2"
	mjson "github.com/tdewolff/minify/v2/json"
)

const jsonMediaType = "application/json"

var minifier *minify.M = minify.New()

func init() {
	minifier.AddFunc(jsonMediaType, mjson.Minify)
}

type EstimateRequest struct {
	Original string `json:"original" validate:"notBlank"`
	// Пустой compressed вычисляется сжатием original
	Compressed string `json:"compressed"`
	Minify     bool   `json:"minify"`
}

type ImportHTMLRequest struct {
	HTML string `json:"html" validate:"notBlank"`
}

type ImportHTMLResponse struct {
	Compact  *compact.Root    `json:"compact"`
	Estimate compact.Estimate `json:"estimate"`
}

func (s *Services) AddCodecServices(g *echo.Group) {
	codecGroup := g.Group("codec/")

	codecGroup.POST("compress/", s.compressDoc)
	codecGroup.POST("decompress/", s.decompressDoc)
	codecGroup.POST("toc/", s.extractTOC)
	codecGroup.POST("estimate/", s.estimateDoc)
	codecGroup.POST("import-html/", s.importHTML)
}

// compressDoc принимает JSON редактора и возвращает компактное представление.
func (s *Services) compressDoc(c echo.Context) error {
	doc, err := tiptap.ParseJSON(c.Request().Body)
	if err != nil {
		return EErrorDefined(c, apierrors.ErrInvalidDocument)
	}
	return c.JSON(http.StatusOK, compact.Compress(doc))
}

// decompressDoc принимает компактный JSON и возвращает JSON редактора. Некорректный JSON - 400, неизвестная структура - пустой документ.
func (s *Services) decompressDoc(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return EError(c, err)
	}
	doc, err := compact.Unmarshal(body)
	if err != nil {
		return EErrorDefined(c, apierrors.ErrInvalidCompact)
	}
	return c.JSON(http.StatusOK, tiptap.ToTipTap(doc))
}

// extractTOC строит оглавление по компактному JSON без восстановления документа. Для некорректного тела возвращается пустой список.
func (s *Services) extractTOC(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, compact.ExtractTOC(string(body)))
}

func (s *Services) estimateDoc(c echo.Context) error {
	var req EstimateRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrEstimateBodyInvalid)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrEstimateBodyInvalid)
	}

	// echo не связывает query для POST
	if v, err := strconv.ParseBool(c.QueryParam("minify")); err == nil {
		req.Minify = v
	}

	original := req.Original
	if req.Minify {
		minified, err := minifier.String(jsonMediaType, original)
		if err != nil {
			return EErrorDefined(c, apierrors.ErrMinifyFailed)
		}
		original = minified
	}

	compressed := req.Compressed
	if compressed == "" {
		doc, err := tiptap.ParseJSON(strings.NewReader(req.Original))
		if err != nil {
			return EErrorDefined(c, apierrors.ErrInvalidDocument)
		}
		blob, err := compact.Marshal(doc)
		if err != nil {
			return EError(c, err)
		}
		compressed = string(blob)
	}

	return c.JSON(http.StatusOK, compact.EstimateSize(original, compressed))
}

// importHTML преобразует HTML поста старого редактора в компактный формат.
func (s *Services) importHTML(c echo.Context) error {
	var req ImportHTMLRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrHTMLRequired)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrHTMLRequired)
	}

	doc, err := editor.ParseDocument(strings.NewReader(req.HTML))
	if err != nil {
		return EErrorDefined(c, apierrors.ErrHTMLImportFailed)
	}

	root := compact.Compress(doc)
	blob, err := compact.Marshal(doc)
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, ImportHTMLResponse{
		Compact:  root,
		Estimate: compact.EstimateSize(req.HTML, string(blob)),
	})
}
