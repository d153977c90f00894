package attachments

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"pahla_backend/internals/constants"
	"pahla_backend/internals/features/nominations/model"
	"pahla_backend/internals/features/nominations/repository"
	helper "pahla_backend/internals/helpers"
	"pahla_backend/internals/helpers/storage"
	"pahla_backend/internals/logger"
)

var (
	ErrAttachmentLimit      = errors.New("attachment limit reached for this file type")
	ErrConfirmationRequired = errors.New("deleting a document must be confirmed")
	ErrMissingNomination    = errors.New("save section A before uploading documents")
	ErrMissingUploader      = errors.New("uploader id is required")
	ErrInvalidFileType      = errors.New("file_type must be cv_resume, photo_media or additional_document")
	ErrMissingFile          = errors.New("file is required")
	// ErrBlobStore wraps every object-store failure.
	ErrBlobStore = errors.New("document storage failed")
)

const keyRoot = "nominations"

type UploadRequest struct {
	NominationID uuid.UUID
	UploaderID   string
	FileType     model.FileType
	FileName     string
	ContentType  string
	Body         io.Reader
}

// File is one entry of a batch upload.
type File struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

type UploadResult struct {
	FileName string    `json:"file_name"`
	Document *Document `json:"document,omitempty"`
	Err      error     `json:"-"`
	Error    string    `json:"error,omitempty"`
}

// Document is a metadata row plus its public URL.
type Document struct {
	model.NominationDocumentModel
	URL string `json:"url"`
}

type DeleteRequest struct {
	DocumentID uuid.UUID
	// Empty means no uploader scope (admin).
	UploaderID string
	Confirmed  bool
}

// Manager keeps blobs and nomination_documents rows in step.
type Manager struct {
	Docs   repository.DocumentStore
	Blobs  storage.BlobStore
	Prefix string

	ConvertPhotos bool
	WebP          storage.WebPOptions
	Concurrency   int
	Now           func() time.Time

	mu      sync.Mutex
	pending map[slot]int
	lastMs  int64
}

type slot struct {
	nomination uuid.UUID
	fileType   model.FileType
}

func NewManager(docs repository.DocumentStore, blobs storage.BlobStore) *Manager {
	return &Manager{
		Docs:          docs,
		Blobs:         blobs,
		ConvertPhotos: true,
		WebP:          storage.DefaultWebPOptions(),
		Concurrency:   3,
	}
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now().UTC()
}

// Upload stores one file. Limits are checked before anything is written.
func (m *Manager) Upload(ctx context.Context, req UploadRequest) (*Document, error) {
	if err := checkBase(req.NominationID, req.UploaderID, req.FileType); err != nil {
		return nil, err
	}
	ok, err := m.reserve(ctx, req.NominationID, []model.FileType{req.FileType})
	if err != nil {
		return nil, err
	}
	if !ok[0] {
		return nil, ErrAttachmentLimit
	}
	defer m.release(req.NominationID, req.FileType)
	return m.store(ctx, req)
}

// UploadBatch uploads files of one type. Capacity goes to files in input
// order; accepted files upload concurrently and fail independently.
func (m *Manager) UploadBatch(ctx context.Context, base UploadRequest, files []File) ([]UploadResult, error) {
	if err := checkBase(base.NominationID, base.UploaderID, base.FileType); err != nil {
		return nil, err
	}
	results := make([]UploadResult, len(files))
	if len(files) == 0 {
		return results, nil
	}

	types := make([]model.FileType, len(files))
	for i := range files {
		types[i] = base.FileType
		results[i].FileName = files[i].FileName
	}
	accepted, err := m.reserve(ctx, base.NominationID, types)
	if err != nil {
		return nil, err
	}

	var g errgroup.Group
	limit := m.Concurrency
	if limit <= 0 {
		limit = 3
	}
	g.SetLimit(limit)

	for i, f := range files {
		if !accepted[i] {
			results[i].Err = ErrAttachmentLimit
			continue
		}
		i, f := i, f
		g.Go(func() error {
			defer m.release(base.NominationID, base.FileType)
			req := base
			req.FileName = f.FileName
			req.ContentType = f.ContentType
			req.Body = f.Body
			doc, err := m.store(ctx, req)
			results[i].Document = doc
			results[i].Err = err
			return nil
		})
	}
	_ = g.Wait()

	for i := range results {
		if results[i].Err != nil {
			results[i].Error = results[i].Err.Error()
		}
	}
	return results, nil
}

// store writes the blob, then the metadata row.
func (m *Manager) store(ctx context.Context, req UploadRequest) (*Document, error) {
	log := logger.With("attachments")
	if req.Body == nil || strings.TrimSpace(req.FileName) == "" {
		return nil, ErrMissingFile
	}

	data, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	name, contentType := req.FileName, req.ContentType
	if contentType == "" {
		contentType = constants.ContentTypeFromExt(name)
	}

	if req.FileType == model.FilePhotoMedia && m.ConvertPhotos && storage.IsConvertibleImage(contentType, name) {
		converted, cerr := storage.ConvertToWebP(bytes.NewReader(data), m.WebP)
		if cerr != nil {
			log.Warn().Err(cerr).Str("file", name).Msg("webp conversion failed, storing original")
		} else {
			data, name, contentType = converted, storage.WebPFileName(name), "image/webp"
		}
	}

	key := storage.JoinKey(m.Prefix, keyRoot,
		req.UploaderID,
		req.NominationID.String(),
		string(req.FileType),
		fmt.Sprintf("%d_%s", m.stamp(), helper.Slugify(name, 100)),
	)

	if _, err := m.Blobs.Put(ctx, key, bytes.NewReader(data), contentType); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBlobStore, err)
	}

	row := &model.NominationDocumentModel{
		NominationID: req.NominationID,
		FileName:     name,
		StoragePath:  key,
		FileType:     req.FileType,
		ContentType:  contentType,
		SizeBytes:    int64(len(data)),
		UploaderID:   req.UploaderID,
		UploadedAt:   m.now(),
	}
	if err := m.Docs.Create(ctx, row); err != nil {
		// the blob stays behind; logged so it can be cleaned up by hand
		log.Error().Err(err).Str("storage_path", key).Msg("document metadata insert failed, orphaned blob")
		return nil, fmt.Errorf("save document metadata: %w", err)
	}
	return &Document{NominationDocumentModel: *row, URL: m.Blobs.PublicURL(key)}, nil
}

// List returns the nomination's documents, scoped to uploaderID when set.
func (m *Manager) List(ctx context.Context, nominationID uuid.UUID, uploaderID string, fileType model.FileType) ([]Document, error) {
	if nominationID == uuid.Nil {
		return nil, ErrMissingNomination
	}
	if fileType != "" && !fileType.Valid() {
		return nil, ErrInvalidFileType
	}
	rows, err := m.Docs.List(ctx, repository.DocumentFilter{
		NominationID: nominationID,
		UploaderID:   uploaderID,
		FileType:     fileType,
	})
	if err != nil {
		return nil, err
	}
	out := make([]Document, 0, len(rows))
	for _, r := range rows {
		out = append(out, Document{NominationDocumentModel: r, URL: m.Blobs.PublicURL(r.StoragePath)})
	}
	return out, nil
}

// Delete removes the blob first; the row only goes once the blob is gone.
func (m *Manager) Delete(ctx context.Context, req DeleteRequest) error {
	if !req.Confirmed {
		return ErrConfirmationRequired
	}
	doc, err := m.Docs.Find(ctx, req.DocumentID)
	if err != nil {
		return err
	}
	if req.UploaderID != "" && doc.UploaderID != req.UploaderID {
		return repository.ErrNotFound
	}

	if err := m.Blobs.Remove(ctx, []string{doc.StoragePath}); err != nil {
		logger.With("attachments").Warn().Err(err).Str("document_id", doc.ID.String()).Msg("blob delete failed, keeping metadata")
		return fmt.Errorf("%w: %v", ErrBlobStore, err)
	}
	if err := m.Docs.Delete(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete document metadata: %w", err)
	}
	return nil
}

// Remaining reports how many more files of each capped type may be uploaded.
func (m *Manager) Remaining(ctx context.Context, nominationID uuid.UUID) (map[model.FileType]int, error) {
	counts, err := m.Docs.CountByType(ctx, nominationID)
	if err != nil {
		return nil, err
	}
	out := make(map[model.FileType]int, len(model.FileTypeLimits))
	for ft, limit := range model.FileTypeLimits {
		left := limit - int(counts[ft])
		if left < 0 {
			left = 0
		}
		out[ft] = left
	}
	return out, nil
}

// stamp is the current unix millisecond, bumped so keys never repeat.
func (m *Manager) stamp() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms := m.now().UnixMilli()
	if ms <= m.lastMs {
		ms = m.lastMs + 1
	}
	m.lastMs = ms
	return ms
}

func checkBase(nominationID uuid.UUID, uploaderID string, ft model.FileType) error {
	switch {
	case nominationID == uuid.Nil:
		return ErrMissingNomination
	case strings.TrimSpace(uploaderID) == "":
		return ErrMissingUploader
	case !ft.Valid():
		return ErrInvalidFileType
	}
	return nil
}

// reserve grants capacity to each entry in order, counting stored rows plus
// uploads still in flight.
func (m *Manager) reserve(ctx context.Context, nominationID uuid.UUID, types []model.FileType) ([]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts, err := m.Docs.CountByType(ctx, nominationID)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	if m.pending == nil {
		m.pending = map[slot]int{}
	}

	ok := make([]bool, len(types))
	for i, ft := range types {
		k := slot{nominationID, ft}
		if limit, capped := ft.Limit(); capped && int(counts[ft])+m.pending[k] >= limit {
			continue
		}
		m.pending[k]++
		ok[i] = true
	}
	return ok, nil
}

func (m *Manager) release(nominationID uuid.UUID, ft model.FileType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := slot{nominationID, ft}
	if m.pending[k] <= 1 {
		delete(m.pending, k)
		return
	}
	m.pending[k]--
}
