package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
)

// multipartMemory is how much of a multipart body is buffered in memory
// before parts spill to temporary files.
const multipartMemory = 32 << 20

const cleanupEnqueueTimeout = 5 * time.Second

// Storage folders.
const (
	folderAvatars    = "avatars"
	folderCovers     = "covers"
	folderVideos     = "videos"
	folderThumbnails = "thumbnails"
)

// Uploader turns multipart file fields into stored media.
type Uploader struct {
	Storage  MediaStorage
	Cleaner  MediaCleaner
	MaxBytes int64
}

// parseForm parses a multipart or urlencoded body within the size limit.
func (u Uploader) parseForm(w http.ResponseWriter, r *http.Request) error {
	if u.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, u.MaxBytes)
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err == nil {
		return nil
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return newAPIError(http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
	}
	return badRequest("invalid form body")
}

// file returns the named file part, or nil when it was not sent.
func file(r *http.Request, field string) *multipart.FileHeader {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil
	}
	return r.MultipartForm.File[field][0]
}

// store uploads a file part after checking its declared media type against
// kind ("image" or "video").
func (u Uploader) store(ctx context.Context, fh *multipart.FileHeader, field, kind, folder string) (models.MediaAsset, error) {
	if u.Storage == nil {
		return models.MediaAsset{}, errors.New("media storage unavailable")
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, kind+"/") {
		return models.MediaAsset{}, badRequest(fmt.Sprintf("%s must be %s file", field, article(kind)))
	}

	f, err := fh.Open()
	if err != nil {
		return models.MediaAsset{}, fmt.Errorf("open %s: %w", field, err)
	}
	defer f.Close()

	asset, err := u.Storage.Upload(ctx, folder, fh.Filename, contentType, f)
	if err != nil {
		return models.MediaAsset{}, fmt.Errorf("upload %s: %w", field, err)
	}
	return asset, nil
}

// required uploads a mandatory file field.
func (u Uploader) required(ctx context.Context, r *http.Request, field, kind, folder string) (models.MediaAsset, error) {
	fh := file(r, field)
	if fh == nil {
		return models.MediaAsset{}, badRequest(field + " file is required")
	}
	return u.store(ctx, fh, field, kind, folder)
}

// optional uploads a file field when present and returns a zero asset otherwise.
func (u Uploader) optional(ctx context.Context, r *http.Request, field, kind, folder string) (models.MediaAsset, error) {
	fh := file(r, field)
	if fh == nil {
		return models.MediaAsset{}, nil
	}
	return u.store(ctx, fh, field, kind, folder)
}

// discard schedules removal of assets that ended up unreferenced.
func (u Uploader) discard(ctx context.Context, assets ...models.MediaAsset) {
	if u.Cleaner == nil {
		return
	}
	keys := make([]string, 0, len(assets))
	for _, a := range assets {
		if a.StorageKey != "" {
			keys = append(keys, a.StorageKey)
		}
	}
	if len(keys) == 0 {
		return
	}
	// The request may be over by the time the queue has room.
	enqueueCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupEnqueueTimeout)
	defer cancel()
	if err := u.Cleaner.Enqueue(enqueueCtx, keys...); err != nil {
		logging.FromContext(ctx).Error("schedule media cleanup", "keys", keys, "error", err)
	}
}

func article(kind string) string {
	if kind == "image" {
		return "an image"
	}
	return "a " + kind
}
