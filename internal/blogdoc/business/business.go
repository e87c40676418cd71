// Бизнес-логика постов: сжатие документа редактора в компактный формат, контроль размера, хранение и экспорт.
// Функции предназначены для переиспользования в HTTP handlers и CLI.
package business

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	blobstorage "github.com/aisa-it/blogdoc/internal/blogdoc/blob-storage"
	"github.com/aisa-it/blogdoc/internal/blogdoc/editor/compact"
	"github.com/aisa-it/blogdoc/internal/blogdoc/editor/edtypes"
	"github.com/aisa-it/blogdoc/internal/blogdoc/editor/tiptap"
	"github.com/aisa-it/blogdoc/internal/blogdoc/export"
	errStack "github.com/aisa-it/blogdoc/internal/blogdoc/stack-error"
)

var ErrPostTooLarge = errors.New("compact post exceeds size limit")

// SizeError - отказ в сохранении поста, сжатый blob которого больше лимита хранилища.
type SizeError struct {
	Size  int
	Limit int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("%s: %d > %d bytes", ErrPostTooLarge, e.Size, e.Limit)
}

func (e *SizeError) Is(target error) bool {
	return target == ErrPostTooLarge
}

type Posts struct {
	storage     blobstorage.BlobStorage
	maxBlobSize int
	pdf         export.PDFOptions
}

func NewPosts(storage blobstorage.BlobStorage, maxBlobSize int, pdf export.PDFOptions) *Posts {
	return &Posts{
		storage:     storage,
		maxBlobSize: maxBlobSize,
		pdf:         pdf,
	}
}

// Save сжимает документ и сохраняет его под ключом id.
// Статистика сравнивает JSON редактора с компактным blob и возвращается также при отказе по размеру.
func (p *Posts) Save(id string, doc *edtypes.Document) (compact.Estimate, error) {
	if doc == nil {
		doc = &edtypes.Document{}
	}

	blob, err := compact.Marshal(doc)
	if err != nil {
		return compact.Estimate{}, errStack.Wrap("marshal compact", err)
	}
	original, err := tiptap.Serialize(doc)
	if err != nil {
		return compact.Estimate{}, errStack.Wrap("serialize editor json", err)
	}
	estimate := compact.EstimateSize(string(original), string(blob))

	if p.maxBlobSize > 0 && len(blob) > p.maxBlobSize {
		rejectedPosts.Inc()
		return estimate, &SizeError{Size: len(blob), Limit: p.maxBlobSize}
	}

	if err := p.storage.Put(id, blob); err != nil {
		return estimate, errStack.Wrap("put blob", err).AddContext("post", id)
	}

	savedPosts.Inc()
	reductionPercent.Observe(estimate.ReductionPercent)
	return estimate, nil
}

// Load восстанавливает документ поста. Для отсутствующего поста возвращает blobstorage.ErrNotFound.
func (p *Posts) Load(id string) (*edtypes.Document, error) {
	blob, err := p.Raw(id)
	if err != nil {
		return nil, err
	}
	doc, err := compact.Unmarshal(blob)
	if err != nil {
		return nil, errStack.Wrap("unmarshal compact", err).AddContext("post", id)
	}
	return doc, nil
}

// Raw - компактный blob поста без декодирования.
func (p *Posts) Raw(id string) ([]byte, error) {
	blob, err := p.storage.Get(id)
	if err != nil {
		if errors.Is(err, blobstorage.ErrNotFound) {
			return nil, err
		}
		return nil, errStack.Wrap("get blob", err).AddContext("post", id)
	}
	return blob, nil
}

func (p *Posts) TOC(id string) ([]compact.TOCEntry, error) {
	blob, err := p.Raw(id)
	if err != nil {
		return nil, err
	}
	return compact.ExtractTOC(string(blob)), nil
}

func (p *Posts) Delete(id string) error {
	if err := p.storage.Delete(id); err != nil {
		return errStack.Wrap("delete blob", err).AddContext("post", id)
	}
	return nil
}

func (p *Posts) List() ([]blobstorage.BlobInfo, error) {
	res := make([]blobstorage.BlobInfo, 0)
	if err := p.storage.List(func(info blobstorage.BlobInfo) error {
		res = append(res, info)
		return nil
	}); err != nil {
		return nil, errStack.Wrap("list blobs", err)
	}
	return res, nil
}

// Markdown экспортирует пост в Markdown.
func (p *Posts) Markdown(id string) (string, error) {
	doc, err := p.Load(id)
	if err != nil {
		return "", err
	}
	return export.MarkdownString(doc)
}

// PDF экспортирует пост в PDF. Заголовок документа - первый пункт оглавления, иначе id поста.
func (p *Posts) PDF(id string, w io.Writer) error {
	blob, err := p.Raw(id)
	if err != nil {
		return err
	}
	doc, err := compact.Unmarshal(blob)
	if err != nil {
		return errStack.Wrap("unmarshal compact", err).AddContext("post", id)
	}

	opts := p.pdf
	opts.Title = id
	if toc := compact.ExtractTOC(string(blob)); len(toc) > 0 && toc[0].Text != "" {
		opts.Title = toc[0].Text
	}

	var buf bytes.Buffer
	if err := export.DocumentToPDF(doc, opts, &buf); err != nil {
		return errStack.Wrap("render pdf", err).AddContext("post", id)
	}
	_, err = buf.WriteTo(w)
	return err
}
