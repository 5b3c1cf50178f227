package tool

import (
	"maps"

	"github.com/gin-gonic/gin"
)

func FastReturnError(msg string) gin.H {
	return gin.H{
		"error": msg,
	}
}

func FastReturnSuccess() gin.H {
	return gin.H{
		"status": "ok",
	}
}

func FastReturnSuccessWithData(data any) gin.H {
	return gin.H{
		"data": data,
	}
}

func FastReturnErrorWithData(msg string, data map[string]any) gin.H {
	resp := gin.H{
		"error": msg,
	}
	maps.Copy(resp, data)
	return resp
}

// FastReturnRejection reports a batch the validator refused. view is the
// session as it stands afterwards (unchanged selection, banner set).
func FastReturnRejection(msg, slot string, files []string, view any) gin.H {
	if files == nil {
		files = []string{}
	}
	return FastReturnErrorWithData(msg, map[string]any{
		"slot":  slot,
		"files": files,
		"data":  view,
	})
}

// FastReturnUpstreamError reports a failed backend call. statusCode is
// omitted when the request never got a response.
func FastReturnUpstreamError(msg, endpoint string, statusCode int, view any) gin.H {
	resp := gin.H{
		"error": msg,
		"data":  view,
	}
	if endpoint != "" {
		resp["endpoint"] = endpoint
	}
	if statusCode > 0 {
		resp["statusCode"] = statusCode
	}
	return resp
}
