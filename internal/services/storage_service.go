// internal/services/storage_service.go
package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/uni402-backend/internal/config"
	"github.com/javajoker/uni402-backend/internal/models"
	"github.com/javajoker/uni402-backend/internal/utils"
)

// StorageService holds lesson files (videos, PDFs) and hands out links to them once a lesson is unlocked.
type StorageService struct {
	s3Client *s3.S3
	config   *config.Config
}

type UploadResult struct {
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

type UploadOptions struct {
	Folder       string
	MaxSize      int64 // in bytes
	AllowedTypes []string
}

func NewStorageService(config *config.Config) (*StorageService, error) {
	if config.AWS.AccessKeyID == "" {
		// Return service without S3 for local development
		return NewLocalStorageService(config), nil
	}

	// Create AWS session
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AWS.AccessKeyID,
			config.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		config:   config,
	}, nil
}

// NewLocalStorageService keeps lesson files on disk under the uploads directory.
func NewLocalStorageService(config *config.Config) *StorageService {
	return &StorageService{config: config}
}

func (s *StorageService) UsesS3() bool {
	return s.s3Client != nil
}

// ContentURL returns a fetchable link for file-backed lessons, or "" when the payload is inline.
func (s *StorageService) ContentURL(lesson *models.Lesson) (string, error) {
	if !lesson.ContentType.HasObjectPayload() || lesson.ContentData == "" {
		return "", nil
	}

	if isAbsoluteURL(lesson.ContentData) {
		return lesson.ContentData, nil
	}

	key := cleanKey(lesson.ContentData)

	if s.s3Client != nil {
		return s.GeneratePresignedURL(key, s.linkTTL())
	}

	// local files are only served with a short-lived token bound to the key
	token, _, err := utils.GenerateFileToken(key, s.linkTTL())
	if err != nil {
		return "", fmt.Errorf("failed to sign file link: %w", err)
	}
	return fmt.Sprintf("%s/uploads/%s?token=%s", strings.TrimSuffix(s.config.Server.BaseURL, "/"), key, url.QueryEscape(token)), nil
}

// LocalFilePath resolves a requested upload key to a path under the uploads directory,
// provided token was issued for that key and has not expired.
func (s *StorageService) LocalFilePath(key, token string) (string, error) {
	key = cleanKey(key)
	if key == "" || token == "" {
		return "", ErrFileAccessDenied
	}

	if err := utils.ValidateFileToken(token, key); err != nil {
		logrus.WithError(err).WithField("key", key).Debug("Rejected file link")
		return "", ErrFileAccessDenied
	}

	return filepath.Join(s.config.Static.UploadsDir, filepath.FromSlash(key)), nil
}

func (s *StorageService) linkTTL() time.Duration {
	if s.config.AWS.PresignTTL > 0 {
		return time.Duration(s.config.AWS.PresignTTL) * time.Minute
	}
	return 15 * time.Minute
}

func (s *StorageService) UploadFile(file multipart.File, header *multipart.FileHeader, options UploadOptions) (*UploadResult, error) {
	// Validate file size
	if options.MaxSize > 0 && header.Size > options.MaxSize {
		return nil, fmt.Errorf("file size %d bytes exceeds maximum allowed size %d bytes", header.Size, options.MaxSize)
	}

	// Validate file type
	if len(options.AllowedTypes) > 0 {
		fileExt := strings.ToLower(filepath.Ext(header.Filename))
		allowed := false
		for _, allowedType := range options.AllowedTypes {
			if fileExt == allowedType {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, fmt.Errorf("file type %s is not allowed", fileExt)
		}
	}

	// Generate unique filename
	filename := s.generateFileName(header.Filename, options.Folder)

	// Read file content
	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	contentType := header.Header.Get("Content-Type")

	// Upload to S3 or local storage
	if s.s3Client != nil {
		return s.uploadToS3(fileBytes, filename, contentType)
	}

	return s.uploadToLocal(fileBytes, filename, contentType)
}

func (s *StorageService) uploadToS3(fileBytes []byte, key, contentType string) (*UploadResult, error) {
	// Lesson files stay private; they are only reachable through presigned links
	params := &s3.PutObjectInput{
		Bucket:        aws.String(s.config.AWS.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(fileBytes),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(fileBytes))),
	}

	if _, err := s.s3Client.PutObject(params); err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		Key:      key,
		Size:     int64(len(fileBytes)),
		MimeType: contentType,
	}, nil
}

func (s *StorageService) uploadToLocal(fileBytes []byte, key, contentType string) (*UploadResult, error) {
	filePath := filepath.Join(s.config.Static.UploadsDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	if err := os.WriteFile(filePath, fileBytes, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	logrus.WithField("key", key).Debug("Stored lesson file locally")

	return &UploadResult{
		Key:      key,
		Size:     int64(len(fileBytes)),
		MimeType: contentType,
	}, nil
}

func (s *StorageService) GeneratePresignedURL(key string, expiration time.Duration) (string, error) {
	if s.s3Client == nil {
		return "", ErrStorageDisabled
	}

	if s.config.AWS.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimSuffix(s.config.AWS.CloudFrontURL, "/"), key), nil
	}

	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Key:    aws.String(key),
	})

	presigned, err := req.Presign(expiration)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return presigned, nil
}

func (s *StorageService) GetDefaultUploadOptions(contentType models.ContentType) UploadOptions {
	switch contentType {
	case models.ContentTypeVideo:
		return UploadOptions{
			Folder:       "videos",
			MaxSize:      500 * 1024 * 1024, // 500MB
			AllowedTypes: []string{".mp4", ".webm", ".mov"},
		}
	case models.ContentTypePDF:
		return UploadOptions{
			Folder:       "pdfs",
			MaxSize:      50 * 1024 * 1024, // 50MB
			AllowedTypes: []string{".pdf"},
		}
	default:
		return UploadOptions{
			Folder:       "general",
			MaxSize:      5 * 1024 * 1024, // 5MB
			AllowedTypes: []string{".pdf", ".md", ".txt"},
		}
	}
}

func (s *StorageService) generateFileName(originalName, folder string) string {
	// Generate UUID for uniqueness
	id := uuid.New()

	// Get file extension
	ext := strings.ToLower(filepath.Ext(originalName))

	// Create filename with timestamp and UUID
	timestamp := time.Now().Format("20060102")
	filename := fmt.Sprintf("%s_%s%s", timestamp, id.String(), ext)

	if folder != "" {
		return fmt.Sprintf("%s/%s", folder, filename)
	}

	return filename
}

// cleanKey normalizes an object key and strips any attempt to climb out of the uploads root.
func cleanKey(key string) string {
	return strings.TrimPrefix(path.Clean("/"+key), "/")
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
