package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/moyoez/claimdesk/api/models"
	"github.com/moyoez/claimdesk/tool"
)

const (
	defaultQRSize = 200
	maxQRSize     = 512
)

// GenerateQRCode returns a PNG QR code image.
// GET ?size=200x200&data=<url-encoded-content>
// GET ?size=200&session=<id> encodes this server's URL for that session, so
// a phone can scan it and keep filling the same claim.
func GenerateQRCode(c *gin.Context) {
	data := c.Query("data")
	if data == "" {
		if sessionId := c.Query("session"); sessionId != "" {
			if _, ok := models.LookupSession(sessionId); !ok {
				c.JSON(http.StatusNotFound, tool.FastReturnError("Session not found"))
				return
			}
			data = sessionLink(c, sessionId)
		}
	}
	if data == "" {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Missing required parameter: data or session"))
		return
	}

	size := parseSize(c.Query("size"))
	if size <= 0 {
		size = defaultQRSize
	}
	if size > maxQRSize {
		size = maxQRSize
	}

	png, err := qrcode.Encode(data, qrcode.Medium, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to encode QR code: "+err.Error()))
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

func sessionLink(c *gin.Context, sessionId string) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	host := c.Request.Host
	if tool.GetCurrentConfig().AllowRemote {
		host = tool.ReachableHost(host)
	}
	return scheme + "://" + host + "/api/self/v1/sessions/" + sessionId
}

// parseSize parses size from "200x200" or "200" and returns the pixel dimension.
func parseSize(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if idx := strings.Index(s, "x"); idx > 0 {
		s = strings.TrimSpace(s[:idx])
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
