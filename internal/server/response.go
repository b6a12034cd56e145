package server

import "github.com/gin-gonic/gin"

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Status    string      `json:"status"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

func success(c *gin.Context, statusCode int, data interface{}, message string) {
	c.JSON(statusCode, APIResponse{
		Status:    "success",
		Message:   message,
		Data:      data,
		RequestID: c.GetString(requestIDKey),
	})
}

func fail(c *gin.Context, statusCode int, err error, message string) {
	resp := APIResponse{
		Status:    "error",
		Message:   message,
		RequestID: c.GetString(requestIDKey),
	}
	if err != nil {
		resp.Error = err.Error()
	}
	c.AbortWithStatusJSON(statusCode, resp)
}
