package services

import (
	"context"
	"strings"

	"signage_server/internal/apperr"
	"signage_server/internal/assets"
	"signage_server/internal/models"
	"signage_server/internal/repository"

	"go.uber.org/zap"
)

// CreateMediaRequest carries media metadata plus the uploaded payloads
type CreateMediaRequest struct {
	Title       string
	Description string
	MediaType   models.MediaType
	Duration    int // seconds; 0 selects models.DefaultMediaDuration
	File        *assets.Upload
	Thumbnail   *assets.Upload
}

// UpdateMediaRequest represents a partial media update. media_type is immutable.
type UpdateMediaRequest struct {
	Title       *string           `json:"title"`
	Description *string           `json:"description"`
	MediaType   *models.MediaType `json:"media_type"`
	Duration    *int              `json:"duration"`
}

func validateMediaFields(title string, mediaType models.MediaType, duration int) error {
	switch {
	case title == "":
		return apperr.Validation("title is required")
	case len(title) > 100:
		return apperr.Validation("title must be at most 100 characters")
	case !mediaType.Valid():
		return apperr.Validation("media_type must be one of image, video, text").WithDetail("media_type", string(mediaType))
	case duration <= 0:
		return apperr.Validation("duration must be a positive number of seconds")
	}
	return nil
}

// withURLs fills the derived URL fields from the asset store
func (s *CatalogService) withURLs(m *models.Media) {
	m.FileURL = s.assets.URL(m.File)
	m.ThumbnailURL = s.assets.URL(m.Thumbnail)
}

// CreateMedia stores the payloads and records the media for ownerID
func (s *CatalogService) CreateMedia(ctx context.Context, ownerID uint, req *CreateMediaRequest) (*models.Media, error) {
	media := &models.Media{
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		MediaType:   req.MediaType,
		Duration:    req.Duration,
	}
	if media.Duration == 0 {
		media.Duration = models.DefaultMediaDuration
	}
	if err := validateMediaFields(media.Title, media.MediaType, media.Duration); err != nil {
		return nil, err
	}
	if req.File == nil {
		return nil, apperr.Validation("file is required")
	}

	ref, err := s.assets.Put(ctx, "media", *req.File)
	if err != nil {
		return nil, err
	}
	media.File = ref
	if req.Thumbnail != nil {
		thumb, err := s.assets.Put(ctx, "thumbnails", *req.Thumbnail)
		if err != nil {
			s.discardBlobs(ctx, ref)
			return nil, err
		}
		media.Thumbnail = thumb
	}

	if err := s.store.Media().Create(ctx, media); err != nil {
		s.discardBlobs(ctx, media.File, media.Thumbnail)
		return nil, err
	}
	s.withURLs(media)
	s.logger.Info("media created",
		zap.Uint("media", media.ID),
		zap.String("media_type", string(media.MediaType)),
		zap.Uint("owner", ownerID),
	)
	return media, nil
}

// GetMedia returns the media with id if ownerID owns it
func (s *CatalogService) GetMedia(ctx context.Context, ownerID, id uint) (*models.Media, error) {
	media, err := s.store.Media().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if media.OwnerID != ownerID {
		return nil, apperr.NotFound("media not found")
	}
	s.withURLs(media)
	return media, nil
}

// ListMedia returns the caller's media
func (s *CatalogService) ListMedia(ctx context.Context, ownerID uint) ([]models.Media, error) {
	media, err := s.store.Media().ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for i := range media {
		s.withURLs(&media[i])
	}
	return media, nil
}

// UpdateMedia applies a partial update; changing media_type is rejected
func (s *CatalogService) UpdateMedia(ctx context.Context, ownerID, id uint, req *UpdateMediaRequest) (*models.Media, error) {
	media, err := s.GetMedia(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if req.MediaType != nil && *req.MediaType != media.MediaType {
		return nil, apperr.Validation("media_type cannot be changed after creation")
	}
	if req.Title != nil {
		media.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		media.Description = *req.Description
	}
	if req.Duration != nil {
		media.Duration = *req.Duration
	}
	if err := validateMediaFields(media.Title, media.MediaType, media.Duration); err != nil {
		return nil, err
	}

	if err := s.store.Media().Update(ctx, media); err != nil {
		return nil, err
	}
	s.withURLs(media)
	return media, nil
}

// DeleteMedia removes the media and every playlist slot referencing it, then drops the payloads
func (s *CatalogService) DeleteMedia(ctx context.Context, ownerID, id uint) error {
	media, err := s.GetMedia(ctx, ownerID, id)
	if err != nil {
		return err
	}
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Playlists().RemoveMedia(ctx, id); err != nil {
			return err
		}
		return tx.Media().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.discardBlobs(ctx, media.File, media.Thumbnail)
	return nil
}

// discardBlobs deletes stored payloads, logging failures
func (s *CatalogService) discardBlobs(ctx context.Context, refs ...string) {
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if err := s.assets.Delete(ctx, ref); err != nil {
			s.logger.Warn("failed to delete stored asset", zap.String("ref", ref), zap.Error(err))
		}
	}
}
