package services

import (
	"io"
	"log"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"meridianwealth/internal/config"
	"meridianwealth/internal/metrics"

	apperrors "meridianwealth/pkg/errors"
)

// allowedExtensions are the upload types the site serves: article and
// profile images plus attached report PDFs.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".pdf":  true,
}

// StorageService writes uploaded objects under a local root and hands back
// the public URL they are served from
type StorageService struct {
	root       string
	publicPath string
	publicURL  string
	maxSize    int64
}

// NewStorageService creates a new storage service
func NewStorageService(cfg *config.Config) (*StorageService, error) {
	if err := os.MkdirAll(cfg.Storage.Root, 0o755); err != nil {
		return nil, apperrors.Internal("failed to create storage root", err)
	}
	return &StorageService{
		root:       cfg.Storage.Root,
		publicPath: cfg.Storage.PublicPath,
		publicURL:  strings.TrimRight(cfg.App.PublicURL, "/"),
		maxSize:    cfg.Storage.MaxUploadSize,
	}, nil
}

// Root returns the directory objects are written under
func (s *StorageService) Root() string {
	return s.root
}

// PublicPath returns the URL path prefix objects are served from
func (s *StorageService) PublicPath() string {
	return s.publicPath
}

// UploadResult describes a stored object
type UploadResult struct {
	ObjectName string `json:"object_name"`
	URL        string `json:"url"`
	Size       int64  `json:"size"`
}

// MaxSize returns the configured upload size cap in bytes
func (s *StorageService) MaxSize() int64 {
	return s.maxSize
}

// Save stores one multipart upload under a fresh object name
func (s *StorageService) Save(file multipart.File, header *multipart.FileHeader) (*UploadResult, error) {
	log.Printf("[STORAGE] Upload request: name=%s size=%d", header.Filename, header.Size)

	if header.Size > s.maxSize {
		metrics.RecordUpload(false)
		return nil, apperrors.Validation("file exceeds the upload size limit")
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		metrics.RecordUpload(false)
		return nil, apperrors.Validation("unsupported file type")
	}

	objectName := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(s.root, objectName))
	if err != nil {
		metrics.RecordUpload(false)
		return nil, apperrors.Internal("failed to store file", err)
	}
	defer dst.Close()

	// LimitReader guards against a lying Content-Length.
	written, err := io.Copy(dst, io.LimitReader(file, s.maxSize+1))
	if err != nil {
		metrics.RecordUpload(false)
		return nil, apperrors.Internal("failed to store file", err)
	}
	if written > s.maxSize {
		os.Remove(filepath.Join(s.root, objectName))
		metrics.RecordUpload(false)
		return nil, apperrors.Validation("file exceeds the upload size limit")
	}

	metrics.RecordUpload(true)
	log.Printf("[STORAGE] Upload successful: object=%s size=%d", objectName, written)
	return &UploadResult{
		ObjectName: objectName,
		URL:        s.publicURL + path.Join(s.publicPath, objectName),
		Size:       written,
	}, nil
}

// Delete removes a stored object by name
func (s *StorageService) Delete(objectName string) error {
	// Reject anything that could escape the storage root.
	if objectName == "" || objectName != filepath.Base(objectName) {
		return apperrors.Validation("invalid object name")
	}
	if err := os.Remove(filepath.Join(s.root, objectName)); err != nil {
		if os.IsNotExist(err) {
			return apperrors.NotFound("object not found")
		}
		return apperrors.Internal("failed to delete object", err)
	}
	log.Printf("[STORAGE] Object %s deleted", objectName)
	return nil
}
