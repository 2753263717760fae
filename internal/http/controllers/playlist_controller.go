package controllers

import (
	"net/http"

	"signage_server/internal/services"

	"github.com/gin-gonic/gin"
)

// PlaylistController handles playlists and their item sequences
type PlaylistController struct {
	catalog *services.CatalogService
}

// NewPlaylistController creates a new playlist controller
func NewPlaylistController(catalog *services.CatalogService) *PlaylistController {
	return &PlaylistController{catalog: catalog}
}

// ItemStatusResponse is the body of add_item and remove_item
type ItemStatusResponse struct {
	Status string `json:"status"`
}

// GetPlaylists returns the caller's playlists with their items
func (pc *PlaylistController) GetPlaylists(c *gin.Context) {
	playlists, err := pc.catalog.ListPlaylists(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Playlists retrieved successfully", playlists, len(playlists))
}

// GetPlaylist returns one playlist with its items in playback order
func (pc *PlaylistController) GetPlaylist(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	playlist, err := pc.catalog.GetPlaylist(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Playlist retrieved successfully", playlist, 0)
}

// CreatePlaylist creates an empty playlist
func (pc *PlaylistController) CreatePlaylist(c *gin.Context) {
	var req services.PlaylistRequest
	if !bindJSON(c, &req) {
		return
	}
	playlist, err := pc.catalog.CreatePlaylist(c.Request.Context(), currentUser(c).ID, &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "Playlist created successfully", playlist, 0)
}

// UpdatePlaylist applies a partial metadata update
func (pc *PlaylistController) UpdatePlaylist(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdatePlaylistRequest
	if !bindJSON(c, &req) {
		return
	}
	playlist, err := pc.catalog.UpdatePlaylist(c.Request.Context(), currentUser(c).ID, id, &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Playlist updated successfully", playlist, 0)
}

// DeletePlaylist removes the playlist and its schedules
func (pc *PlaylistController) DeletePlaylist(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := pc.catalog.DeletePlaylist(c.Request.Context(), currentUser(c).ID, id); err != nil {
		RespondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Playlist deleted successfully", nil, 0)
}

// AddItem appends a media to the playlist
func (pc *PlaylistController) AddItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.ItemRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := pc.catalog.AddItem(c.Request.Context(), currentUser(c).ID, id, req.MediaID); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ItemStatusResponse{Status: "item added"})
}

// RemoveItem drops the last occurrence of a media from the playlist
func (pc *PlaylistController) RemoveItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.ItemRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := pc.catalog.RemoveItem(c.Request.Context(), currentUser(c).ID, id, req.MediaID); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ItemStatusResponse{Status: "item removed"})
}
