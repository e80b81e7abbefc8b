package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/AnshRaj112/nits-community-backend/internal/models"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ObjectStore is the remote media host. Upload returns a ref carrying a stable
// URL and an opaque PublicID handle; Destroy removes the object behind a ref.
type ObjectStore interface {
	Upload(ctx context.Context, filename string, data []byte) (models.Media, error)
	Destroy(ctx context.Context, ref models.Media) error
}

const cloudinaryNotFound = "not found"

// Refs stored before resource_type was recorded are tried against each type.
var cloudinaryResourceTypes = []string{"image", "video", "raw"}

func destroyResourceTypes(ref models.Media) []string {
	if ref.ResourceType != "" {
		return []string{ref.ResourceType}
	}
	return cloudinaryResourceTypes
}

type CloudinaryService struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryService(cloudName, apiKey, apiSecret, folder string) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &CloudinaryService{
		cld:    cld,
		folder: folder,
	}, nil
}

// Upload keeps the original filename as the public id inside the folder, so
// re-uploading a file with the same name replaces it.
func (s *CloudinaryService) Upload(ctx context.Context, filename string, data []byte) (models.Media, error) {
	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:         s.folder,
		PublicID:       strings.TrimSuffix(path.Base(filename), path.Ext(filename)),
		UseFilename:    api.Bool(true),
		UniqueFilename: api.Bool(false),
		ResourceType:   "auto",
	})
	if err != nil {
		return models.Media{}, fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return models.Media{}, fmt.Errorf("cloudinary rejected upload: %s", result.Error.Message)
	}

	return models.Media{
		Filename:     filename,
		URL:          result.SecureURL,
		PublicID:     result.PublicID,
		ResourceType: result.ResourceType,
	}, nil
}

// Destroy deletes ref.PublicID under the resource type recorded at upload.
// Without one it tries image, video and raw until the asset is found.
func (s *CloudinaryService) Destroy(ctx context.Context, ref models.Media) error {
	for _, rt := range destroyResourceTypes(ref) {
		result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
			PublicID:     ref.PublicID,
			ResourceType: rt,
		})
		if err != nil {
			return fmt.Errorf("failed to destroy %s: %w", ref.PublicID, err)
		}
		if result.Error.Message != "" {
			return fmt.Errorf("cloudinary rejected destroy of %s: %s", ref.PublicID, result.Error.Message)
		}
		if result.Result != cloudinaryNotFound {
			return nil
		}
	}
	return fmt.Errorf("cloudinary asset %s not found", ref.PublicID)
}
