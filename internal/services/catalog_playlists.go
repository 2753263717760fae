package services

import (
	"context"
	"strings"

	"signage_server/internal/apperr"
	"signage_server/internal/models"
	"signage_server/internal/repository"

	"go.uber.org/zap"
)

// PlaylistRequest represents the request for creating or replacing playlist metadata
type PlaylistRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

// UpdatePlaylistRequest represents a partial playlist update
type UpdatePlaylistRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// ItemRequest names the media for add_item and remove_item
type ItemRequest struct {
	MediaID uint `json:"media_id" binding:"required"`
}

// PlaylistDetail is a playlist with its media in playback order
type PlaylistDetail struct {
	models.Playlist
	Media []models.Media `json:"items"`
}

func validatePlaylistName(name string) error {
	switch {
	case name == "":
		return apperr.Validation("name is required")
	case len(name) > 100:
		return apperr.Validation("name must be at most 100 characters")
	}
	return nil
}

// CreatePlaylist creates an empty playlist for ownerID
func (s *CatalogService) CreatePlaylist(ctx context.Context, ownerID uint, req *PlaylistRequest) (*PlaylistDetail, error) {
	playlist := &models.Playlist{
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		playlist.IsActive = *req.IsActive
	}
	if err := validatePlaylistName(playlist.Name); err != nil {
		return nil, err
	}
	if err := s.store.Playlists().Create(ctx, playlist); err != nil {
		return nil, err
	}
	return &PlaylistDetail{Playlist: *playlist, Media: []models.Media{}}, nil
}

// ownedPlaylist loads a playlist visible to ownerID
func (s *CatalogService) ownedPlaylist(ctx context.Context, store repository.Store, ownerID, id uint) (*models.Playlist, error) {
	playlist, err := store.Playlists().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if playlist.OwnerID != ownerID {
		return nil, apperr.NotFound("playlist not found")
	}
	return playlist, nil
}

// GetPlaylist returns the hydrated playlist if ownerID owns it
func (s *CatalogService) GetPlaylist(ctx context.Context, ownerID, id uint) (*PlaylistDetail, error) {
	playlist, err := s.ownedPlaylist(ctx, s.store, ownerID, id)
	if err != nil {
		return nil, err
	}
	return s.Hydrate(ctx, playlist)
}

// ListPlaylists returns the caller's playlists, hydrated
func (s *CatalogService) ListPlaylists(ctx context.Context, ownerID uint) ([]PlaylistDetail, error) {
	playlists, err := s.store.Playlists().ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]PlaylistDetail, 0, len(playlists))
	for i := range playlists {
		detail, err := s.Hydrate(ctx, &playlists[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *detail)
	}
	return out, nil
}

// UpdatePlaylist applies a partial update to playlist metadata
func (s *CatalogService) UpdatePlaylist(ctx context.Context, ownerID, id uint, req *UpdatePlaylistRequest) (*PlaylistDetail, error) {
	playlist, err := s.ownedPlaylist(ctx, s.store, ownerID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		playlist.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		playlist.Description = *req.Description
	}
	if req.IsActive != nil {
		playlist.IsActive = *req.IsActive
	}
	if err := validatePlaylistName(playlist.Name); err != nil {
		return nil, err
	}
	if err := s.store.Playlists().Update(ctx, playlist); err != nil {
		return nil, err
	}
	return s.Hydrate(ctx, playlist)
}

// DeletePlaylist removes the playlist and every schedule that plays it
func (s *CatalogService) DeletePlaylist(ctx context.Context, ownerID, id uint) error {
	if _, err := s.ownedPlaylist(ctx, s.store, ownerID, id); err != nil {
		return err
	}
	return s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Schedules().DeleteByPlaylist(ctx, id); err != nil {
			return err
		}
		return tx.Playlists().Delete(ctx, id)
	})
}

// AddItem appends mediaID to the end of the playlist. Duplicates are allowed.
// The caller must own both the playlist and the media.
func (s *CatalogService) AddItem(ctx context.Context, callerID, playlistID, mediaID uint) error {
	return s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := s.ownedPlaylist(ctx, tx, callerID, playlistID); err != nil {
			return err
		}
		media, err := tx.Media().GetByID(ctx, mediaID)
		if err != nil {
			return err
		}
		if media.OwnerID != callerID {
			return apperr.PermissionDenied("you don't own this media")
		}
		if err := tx.Playlists().AppendItem(ctx, playlistID, mediaID); err != nil {
			return err
		}
		s.logger.Debug("playlist item added", zap.Uint("playlist", playlistID), zap.Uint("media", mediaID))
		return nil
	})
}

// RemoveItem deletes the last occurrence of mediaID, undoing the most recent AddItem
func (s *CatalogService) RemoveItem(ctx context.Context, callerID, playlistID, mediaID uint) error {
	return s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := s.ownedPlaylist(ctx, tx, callerID, playlistID); err != nil {
			return err
		}
		removed, err := tx.Playlists().RemoveLastItem(ctx, playlistID, mediaID)
		if err != nil {
			return err
		}
		if !removed {
			return apperr.NotFound("media is not in this playlist").WithDetail("media_id", uintString(mediaID))
		}
		s.logger.Debug("playlist item removed", zap.Uint("playlist", playlistID), zap.Uint("media", mediaID))
		return nil
	})
}

// Hydrate loads the playlist's media in playback order
func (s *CatalogService) Hydrate(ctx context.Context, playlist *models.Playlist) (*PlaylistDetail, error) {
	ids, err := s.store.Playlists().ItemMediaIDs(ctx, playlist.ID)
	if err != nil {
		return nil, err
	}
	byID, err := s.store.Media().GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	detail := &PlaylistDetail{Playlist: *playlist, Media: make([]models.Media, 0, len(ids))}
	for _, id := range ids {
		m, ok := byID[id]
		if !ok {
			continue
		}
		s.withURLs(&m)
		detail.Media = append(detail.Media, m)
	}
	return detail, nil
}
