package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	ProfilePhotoFolder  = "moodlog/profile-photos"
	MaxProfilePhotoSize = 5 << 20
)

var (
	ErrPhotoTooLarge   = errors.New("photo exceeds 5MB")
	ErrUnsupportedType = errors.New("photo must be a JPEG, PNG, GIF or WebP image")
)

// PhotoUploader stores a user's profile photo and returns its public URL.
type PhotoUploader interface {
	UploadProfilePhoto(ctx context.Context, userID string, fileHeader *multipart.FileHeader) (string, error)
}

type CloudinaryService struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryService(cloudName, apiKey, apiSecret string) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryService{cld: cld}, nil
}

// UploadProfilePhoto overwrites the user's photo, keyed by user id so each user has
// exactly one stored image.
func (s *CloudinaryService) UploadProfilePhoto(ctx context.Context, userID string, fileHeader *multipart.FileHeader) (string, error) {
	file, err := OpenProfilePhoto(fileHeader)
	if err != nil {
		return "", err
	}
	defer file.Close()

	uploadResult, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       ProfilePhotoFolder,
		PublicID:     userID,
		Overwrite:    api.Bool(true),
		Invalidate:   api.Bool(true),
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	if uploadResult.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected upload: %s", uploadResult.Error.Message)
	}
	return uploadResult.SecureURL, nil
}

// OpenProfilePhoto checks size and sniffed content type, then opens the upload
// rewound to its start.
func OpenProfilePhoto(fileHeader *multipart.FileHeader) (multipart.File, error) {
	if fileHeader.Size > MaxProfilePhotoSize {
		return nil, ErrPhotoTooLarge
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	head := make([]byte, 512)
	n, _ := file.Read(head)
	if !isImageType(http.DetectContentType(head[:n])) {
		file.Close()
		return nil, ErrUnsupportedType
	}
	if _, err := file.Seek(0, 0); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to rewind file: %w", err)
	}
	return file, nil
}

func isImageType(contentType string) bool {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}
