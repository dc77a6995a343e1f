package handlers

import (
	"errors"
	"nuncio/internal/services"
	"nuncio/internal/utils"

	"github.com/gin-gonic/gin"
)

// ListByTopic shows /topic/:name, hottest first.
func (h *StoryHandler) ListByTopic(c *gin.Context) {
	topic, page, err := h.forum.Posts.ListByTopic(c.Request.Context(), c.Param("name"), utils.PageParam(c.Query("page")))
	if err != nil {
		fail(c, err)
		return
	}
	h.renderPage(c, page, gin.H{"Title": "Topic: " + topic.TagName, "Topic": topic})
}

// ListByEvent shows /event/:name, hottest first.
func (h *StoryHandler) ListByEvent(c *gin.Context) {
	event, page, err := h.forum.Posts.ListByEvent(c.Request.Context(), c.Param("name"), utils.PageParam(c.Query("page")))
	if err != nil {
		fail(c, err)
		return
	}
	h.renderPage(c, page, gin.H{"Title": "Event: " + event.EventName, "Event": event})
}

const featureRequestTopic = "feature-request"

// FeatureRequests lists the feature-request topic. The page is shown, empty,
// before anyone has posted to it.
func (h *StoryHandler) FeatureRequests(c *gin.Context) {
	data := gin.H{"Title": "Feature requests", "FeatureRequestTopic": featureRequestTopic}
	topic, page, err := h.forum.Posts.ListByTopic(c.Request.Context(), featureRequestTopic, utils.PageParam(c.Query("page")))
	switch {
	case errors.Is(err, services.ErrNotFound):
		page = &services.Page{Number: 1}
	case err != nil:
		fail(c, err)
		return
	default:
		data["Topic"] = topic
	}
	h.renderPage(c, page, data)
}
