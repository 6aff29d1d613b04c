package helpers

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/campus-hub/eventhub/internal/models"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// CloudinaryStorage keeps event and chat media on Cloudinary.
type CloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStorage(cld *cloudinary.Cloudinary) *CloudinaryStorage {
	return &CloudinaryStorage{cld: cld}
}

func resourceType(contentType string) string {
	if strings.HasPrefix(contentType, "video/") {
		return "video"
	}
	return "image"
}

func (cs *CloudinaryStorage) Upload(ctx context.Context, data io.Reader, contentType, folder string) (models.StoredObject, error) {
	ctx, cancel := StorageContext(ctx)
	defer cancel()
	res, err := cs.cld.Upload.Upload(ctx, data, uploader.UploadParams{
		Folder:       folder,
		PublicID:     "media_" + uuid.NewString(),
		ResourceType: resourceType(contentType),
		Tags:         []string{"eventhub"},
	})
	if err != nil {
		return models.StoredObject{}, fmt.Errorf("failed to upload to cloudinary: %v", err)
	}
	if res.Error.Message != "" {
		return models.StoredObject{}, fmt.Errorf("cloudinary rejected upload: %s", res.Error.Message)
	}
	return models.StoredObject{
		URL:      res.SecureURL,
		PublicID: res.PublicID,
		Format:   res.Format,
		Width:    res.Width,
		Height:   res.Height,
		Bytes:    int64(res.Bytes),
	}, nil
}

func (cs *CloudinaryStorage) Delete(ctx context.Context, publicID, resourceKind string) error {
	ctx, cancel := StorageContext(ctx)
	defer cancel()
	res, err := cs.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceKind,
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from cloudinary: %v", publicID, err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary rejected delete of %s: %s", publicID, res.Error.Message)
	}
	return nil
}
