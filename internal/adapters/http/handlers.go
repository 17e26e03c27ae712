package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Mingle/internal/app"
	"github.com/dkeye/Mingle/internal/auth"
	"github.com/dkeye/Mingle/internal/domain"
)

// API is the thin HTTP surface next to the realtime path: history reads, the
// alternate send route and the live member projection.
type API struct {
	Service   *app.Service
	Registry  *app.Registry
	Directory app.RoomDirectory
}

type postMessageRequest struct {
	Content string `json:"content"`
}

func (a *API) getMessages(c *gin.Context) {
	room, ok := roomParam(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be numeric"})
			return
		}
		limit = n
	}

	msgs, err := a.Service.History(c.Request.Context(), room, limit)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("room", room.String()).Msg("history read")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// postMessage is the non-realtime send path. It persists and broadcasts
// through the same service as the socket handler, so a message is never
// stored twice.
func (a *API) postMessage(c *gin.Context) {
	room, ok := roomParam(c)
	if !ok {
		return
	}
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	exists, err := a.Directory.Exists(c.Request.Context(), room)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("room", room.String()).Msg("directory lookup")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "directory unavailable"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown room"})
		return
	}

	msg, err := a.Service.Post(c.Request.Context(), identity, room, req.Content)
	switch {
	case errors.Is(err, app.ErrEmptyContent):
		c.JSON(http.StatusBadRequest, gin.H{"error": "message content is required"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (a *API) getMembers(c *gin.Context) {
	room, ok := roomParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"room":    room,
		"members": a.Registry.OnlineIn(room),
	})
}

func roomParam(c *gin.Context) (domain.RoomID, bool) {
	room, err := domain.ParseRoomID(c.Param("room"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room id must be numeric"})
		return 0, false
	}
	return room, true
}
