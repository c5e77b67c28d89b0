package handler

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"github.com/noah-isme/roomplan-api/internal/dto"
	"github.com/noah-isme/roomplan-api/pkg/response"
)

//go:embed templates/live.html
var liveTemplates embed.FS

var liveTemplate = template.Must(template.ParseFS(liveTemplates, "templates/live.html"))

type liveService interface {
	Schedule(ctx context.Context) (*dto.LiveSchedule, bool, error)
}

// LiveHandler serves the read-only live schedule.
type LiveHandler struct {
	live liveService
}

// NewLiveHandler constructs a LiveHandler.
func NewLiveHandler(live liveService) *LiveHandler {
	return &LiveHandler{live: live}
}

// Page godoc
// @Summary Live schedule page
// @Description HTML page listing bookings that have not ended, refreshed periodically.
// @Tags Live
// @Produce html
// @Success 200 {string} string
// @Router /live [get]
func (h *LiveHandler) Page(c *gin.Context) {
	schedule, cached, err := h.live.Schedule(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Refresh", strconv.Itoa(schedule.RefreshSeconds))
	c.Header("X-Cache", cacheHeader(cached))
	c.Render(http.StatusOK, render.HTML{Template: liveTemplate, Name: "live.html", Data: schedule})
}

// Data godoc
// @Summary Live schedule data
// @Tags Live
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /live/data [get]
func (h *LiveHandler) Data(c *gin.Context) {
	schedule, cached, err := h.live.Schedule(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, map[string]interface{}{"cached": cached})
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
