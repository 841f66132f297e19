package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func writeError(c *gin.Context, apiErr *APIError) {
	if apiErr == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "internal_error",
				"message": "internal server error",
			},
		})
		return
	}

	errorBody := gin.H{
		"code":    apiErr.Code,
		"message": apiErr.Message,
	}
	if apiErr.Details != nil {
		errorBody["details"] = apiErr.Details
	}

	c.JSON(apiErr.Status, gin.H{
		"error": errorBody,
	})
}

func invalidJSON(c *gin.Context) {
	writeError(c, BadRequest("invalid_json", "invalid request body"))
}
