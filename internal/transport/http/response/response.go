package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OK writes {success:true, ...fields}.
func OK(c *gin.Context, fields gin.H) {
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// Fail writes {success:false, message} with the given status.
func Fail(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, gin.H{
		"success": false,
		"message": message,
	})
}

func AbortFail(c *gin.Context, httpStatus int, message string) {
	Fail(c, httpStatus, message)
	c.Abort()
}
