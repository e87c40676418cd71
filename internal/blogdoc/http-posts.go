package blogdoc

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/aisa-it/blogdoc/internal/blogdoc/apierrors"
	blobstorage "github.com/aisa-it/blogdoc/internal/blogdoc/blob-storage"
	"github.com/aisa-it/blogdoc/internal/blogdoc/business"
	"github.com/aisa-it/blogdoc/internal/blogdoc/editor/compact"
	"github.com/aisa-it/blogdoc/internal/blogdoc/editor/tiptap"
	errStack "github.com/aisa-it/blogdoc/internal/blogdoc/stack-error"
	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
)

type PostContext struct {
	echo.Context
	PostID uuid.UUID
}

type SavePostResponse struct {
	ID       string           `json:"id"`
	Estimate compact.Estimate `json:"estimate"`
}

func (s *Services) PostMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := uuid.FromString(c.Param("postId"))
		if err != nil {
			return EErrorDefined(c, apierrors.ErrInvalidPostID)
		}
		return next(PostContext{c, id})
	}
}

func (s *Services) AddPostServices(g *echo.Group) {
	g.GET("posts/", s.getPostList)
	g.POST("posts/", s.createPost)
	g.GET("posts/stats/", s.getPostStats)

	postGroup := g.Group("posts/:postId", s.PostMiddleware)

	postGroup.GET("/", s.getPost)
	postGroup.PUT("/", s.updatePost)
	postGroup.DELETE("/", s.deletePost)
	postGroup.GET("/raw/", s.getPostRaw)
	postGroup.GET("/toc/", s.getPostTOC)
	postGroup.GET("/markdown/", s.getPostMarkdown)
	postGroup.GET("/pdf/", s.getPostPDF)
}

func (s *Services) getPostList(c echo.Context) error {
	list, err := s.posts.List()
	if err != nil {
		return postError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Services) getPostStats(c echo.Context) error {
	stats, err := s.posts.Stats()
	if err != nil {
		return postError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// createPost сохраняет документ редактора под новым UUID.
func (s *Services) createPost(c echo.Context) error {
	id, err := uuid.NewV4()
	if err != nil {
		return EError(c, err)
	}
	return s.savePost(c, id.String(), http.StatusCreated)
}

func (s *Services) updatePost(c echo.Context) error {
	return s.savePost(c, c.(PostContext).PostID.String(), http.StatusOK)
}

func (s *Services) savePost(c echo.Context, id string, status int) error {
	doc, err := tiptap.ParseJSON(c.Request().Body)
	if err != nil {
		return EErrorDefined(c, apierrors.ErrInvalidDocument)
	}

	estimate, err := s.posts.Save(id, doc)
	if err != nil {
		return postError(c, err)
	}
	return c.JSON(status, SavePostResponse{ID: id, Estimate: estimate})
}

func (s *Services) getPost(c echo.Context) error {
	doc, err := s.posts.Load(c.(PostContext).PostID.String())
	if err != nil {
		return postError(c, err)
	}
	return c.JSON(http.StatusOK, tiptap.ToTipTap(doc))
}

func (s *Services) getPostRaw(c echo.Context) error {
	blob, err := s.posts.Raw(c.(PostContext).PostID.String())
	if err != nil {
		return postError(c, err)
	}
	return c.JSONBlob(http.StatusOK, blob)
}

func (s *Services) getPostTOC(c echo.Context) error {
	toc, err := s.posts.TOC(c.(PostContext).PostID.String())
	if err != nil {
		return postError(c, err)
	}
	return c.JSON(http.StatusOK, toc)
}

func (s *Services) getPostMarkdown(c echo.Context) error {
	md, err := s.posts.Markdown(c.(PostContext).PostID.String())
	if err != nil {
		return postError(c, err)
	}
	return c.Blob(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
}

func (s *Services) getPostPDF(c echo.Context) error {
	id := c.(PostContext).PostID.String()

	var buf bytes.Buffer
	if err := s.posts.PDF(id, &buf); err != nil {
		if errors.Is(err, blobstorage.ErrNotFound) {
			return EErrorDefined(c, apierrors.ErrPostNotFound)
		}
		errStack.GetError(c, err)
		return EErrorDefined(c, apierrors.ErrExportFailed.WithFormattedMessage("PDF"))
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", id+".pdf"))
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}

func (s *Services) deletePost(c echo.Context) error {
	if err := s.posts.Delete(c.(PostContext).PostID.String()); err != nil {
		return postError(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// postError переводит ошибки бизнес-логики постов в ответы API.
func postError(c echo.Context, err error) error {
	var sizeErr *business.SizeError
	switch {
	case errors.Is(err, blobstorage.ErrNotFound):
		return EErrorDefined(c, apierrors.ErrPostNotFound)
	case errors.As(err, &sizeErr):
		return EErrorDefined(c, apierrors.ErrPostTooLarge.WithFormattedMessage(
			fmt.Sprintf("%d/%d bytes", sizeErr.Size, sizeErr.Limit)))
	}

	var te *errStack.TrackerError
	if errors.As(err, &te) {
		errStack.GetError(c, err)
		return EErrorDefined(c, apierrors.ErrStorageUnavailable)
	}
	return EError(c, err)
}
