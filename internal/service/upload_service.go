package service

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/campuslink/portal-api/pkg/errors"
	"github.com/campuslink/portal-api/pkg/storage"
)

// UploadConfig tunes attachment upload behaviour.
type UploadConfig struct {
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
	APIPrefix        string
}

// UploadResult describes a stored attachment.
type UploadResult struct {
	FileID       string    `json:"fileId"`
	FileName     string    `json:"fileName"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"contentType"`
	URL          string    `json:"url"`
	ExpiresAt    time.Time `json:"expiresAt"`
	RelativePath string    `json:"-"`
}

// UploadService stores attachment and material files and hands out signed
// download URLs.
type UploadService struct {
	storage *storage.LocalStorage
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     UploadConfig
}

// NewUploadService constructs an UploadService.
func NewUploadService(files *storage.LocalStorage, signer *storage.SignedURLSigner, cfg UploadConfig, logger *zap.Logger) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = 10 << 20
	}
	return &UploadService{storage: files, signer: signer, logger: logger, cfg: cfg}
}

// Store validates and persists one multipart file.
func (s *UploadService) Store(header *multipart.FileHeader) (*UploadResult, error) {
	if header == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no file provided")
	}
	if header.Size > s.cfg.MaxFileSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("file exceeds maximum size of %d bytes", s.cfg.MaxFileSizeBytes))
	}

	contentType := header.Header.Get("Content-Type")
	if !s.allowedMIME(contentType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("content type %q is not allowed", contentType))
	}

	src, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}
	defer src.Close() //nolint:errcheck

	fileID := uuid.NewString()
	filename := fmt.Sprintf("attachments/%s%s", fileID, sanitizeExt(header.Filename))
	relPath, err := s.storage.SaveStream(filename, io.LimitReader(src, s.cfg.MaxFileSizeBytes))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store upload")
	}

	token, expiresAt, err := s.signer.Generate(fileID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download token")
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	s.logger.Info("attachment stored", zap.String("file_id", fileID), zap.Int64("size", header.Size))

	return &UploadResult{
		FileID:       fileID,
		FileName:     header.Filename,
		Size:         header.Size,
		ContentType:  contentType,
		URL:          fmt.Sprintf("%s/uploads/%s", prefix, token),
		ExpiresAt:    expiresAt,
		RelativePath: relPath,
	}, nil
}

// Open validates a download token and opens the referenced file.
func (s *UploadService) Open(token string) (io.ReadCloser, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "file no longer available")
	}
	return file, nil
}

func (s *UploadService) allowedMIME(contentType string) bool {
	if len(s.cfg.AllowedMIMEs) == 0 {
		return true
	}
	base := contentType
	if idx := strings.Index(base, ";"); idx >= 0 {
		base = base[:idx]
	}
	base = strings.TrimSpace(strings.ToLower(base))
	for _, allowed := range s.cfg.AllowedMIMEs {
		if strings.EqualFold(strings.TrimSpace(allowed), base) {
			return true
		}
	}
	return false
}

func sanitizeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
