package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/campus-hub/eventhub/internal/helpers"
	"github.com/campus-hub/eventhub/internal/models"
)

const (
	MaxMediaBytes     = 30 << 20
	MaxChatMediaBytes = 10 << 20
)

// ObjectStorage stores media blobs outside the aggregate.
type ObjectStorage interface {
	Upload(ctx context.Context, data io.Reader, contentType, folder string) (models.StoredObject, error)
	Delete(ctx context.Context, publicID, resourceKind string) error
}

// Upload is a file received from a client.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Data        io.Reader
}

type MediaService struct {
	env     *Env
	storage ObjectStorage
}

func NewMediaService(env *Env, storage ObjectStorage) *MediaService {
	return &MediaService{env: env, storage: storage}
}

// deleteObjects removes stored blobs. Failures are logged and ignored.
func deleteObjects(ctx context.Context, storage ObjectStorage, logger *slog.Logger, media []models.Media) {
	if storage == nil {
		return
	}
	ctx, cancel := helpers.StorageContext(ctx)
	defer cancel()
	for _, m := range media {
		if m.PublicID == "" {
			continue
		}
		if err := storage.Delete(ctx, m.PublicID, models.ResourceKind(m.Type)); err != nil {
			logger.Warn("failed to delete media object", "public_id", m.PublicID, "error", err)
		}
	}
}

func eventFolder(eventID int64) string {
	return fmt.Sprintf("campus-events/%d", eventID)
}

// UploadMedia stores a photo or video for an event owned by regNumber.
func (ms *MediaService) UploadMedia(ctx context.Context, eventID int64, regNumber string, file Upload) (*models.Media, error) {
	kind, ok := models.MediaKind(file.ContentType)
	if !ok {
		return nil, models.Invalidf("only images and videos can be uploaded")
	}
	if file.Size > MaxMediaBytes {
		return nil, models.Invalidf("file exceeds the %d MB limit", MaxMediaBytes>>20)
	}
	if ms.storage == nil {
		return nil, fmt.Errorf("%w: media storage is not configured", models.ErrPersistence)
	}

	agg, err := ms.env.Gateway.Read(ctx)
	if err != nil {
		return nil, err
	}
	ev, err := agg.FindEvent(eventID)
	if err != nil {
		return nil, err
	}
	if ev.CreatorRegNumber != regNumber {
		return nil, models.Forbiddenf("you are not authorized to upload media for this event")
	}

	uploadCtx, cancel := helpers.StorageContext(ctx)
	obj, err := ms.storage.Upload(uploadCtx, file.Data, file.ContentType, eventFolder(eventID))
	cancel()
	if err != nil {
		return nil, fmt.Errorf("failed to upload media: %w", err)
	}

	var media models.Media
	err = ms.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		now := ms.env.now()
		ev, err := agg.FindEvent(eventID)
		if err != nil {
			return err
		}
		if ev.CreatorRegNumber != regNumber {
			return models.Forbiddenf("you are not authorized to upload media for this event")
		}
		size := file.Size
		if size == 0 {
			size = obj.Bytes
		}
		media = models.Media{
			ID:         agg.NextID(now),
			EventID:    eventID,
			Name:       file.Name,
			URL:        obj.URL,
			PublicID:   obj.PublicID,
			Type:       kind,
			Size:       size,
			Format:     obj.Format,
			Width:      obj.Width,
			Height:     obj.Height,
			UploadedAt: now.UTC(),
		}
		agg.Media = append(agg.Media, media)
		touch(agg, regNumber, now)
		return nil
	})
	if err != nil {
		deleteObjects(ctx, ms.storage, ms.env.Logger, []models.Media{{PublicID: obj.PublicID, Type: kind}})
		return nil, err
	}

	ms.env.publish(PushEventsChanged, "media_uploaded", eventID, "")
	ms.env.publish(PushMediaChanged, "uploaded", eventID, "")
	return &media, nil
}

// DeleteMedia removes a media item of an event owned by regNumber.
func (ms *MediaService) DeleteMedia(ctx context.Context, mediaID int64, regNumber string) error {
	var removed models.Media
	err := ms.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		idx := agg.MediaIndex(mediaID)
		if idx < 0 {
			return models.NotFoundf("media not found")
		}
		m := agg.Media[idx]
		if ev, err := agg.FindEvent(m.EventID); err == nil && ev.CreatorRegNumber != regNumber {
			return models.Forbiddenf("you are not authorized to delete this media")
		}
		agg.Media = append(agg.Media[:idx], agg.Media[idx+1:]...)
		removed = m
		return nil
	})
	if err != nil {
		return err
	}

	deleteObjects(ctx, ms.storage, ms.env.Logger, []models.Media{removed})
	ms.env.publish(PushEventsChanged, "media_deleted", removed.EventID, "")
	ms.env.publish(PushMediaChanged, "deleted", removed.EventID, "")
	return nil
}

func (ms *MediaService) ListMedia(ctx context.Context, eventID int64) ([]models.Media, error) {
	agg, err := ms.env.Gateway.Read(ctx)
	if err != nil {
		return nil, err
	}
	return agg.MediaFor(eventID), nil
}
