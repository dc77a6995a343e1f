package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Page serves one of the static information pages.
func Page(view, title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		Render(c, http.StatusOK, view, gin.H{"Title": title})
	}
}
