package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/claimdesk/claim"
	"github.com/moyoez/claimdesk/tool"
	"github.com/moyoez/claimdesk/transfer"
)

// Submit POST /api/self/v1/sessions/:id/submit
// Runs verify then assess. With ?async=true the guards run first, then it
// answers 202 in Verifying and the result arrives over notify-ws. A dropped
// client connection does not abort the submission.
func Submit(c *gin.Context) {
	s, ok := sessionFromParam(c)
	if !ok {
		return
	}
	if !s.Ready() {
		c.JSON(http.StatusConflict, tool.FastReturnError("Please upload both a label image and damage media before submitting."))
		return
	}
	if err := s.StartSubmit(); err != nil {
		if isGuardError(err) {
			c.JSON(http.StatusConflict, tool.FastReturnError(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, tool.FastReturnError(err.Error()))
		return
	}
	ctx := context.WithoutCancel(c.Request.Context())

	if c.Query("async") == "true" {
		view := s.Snapshot()
		go func() {
			if _, err := s.CompleteSubmit(ctx); err != nil {
				tool.DefaultLogger.Warnf("[Submit] Session %s: %v", s.ID(), err)
			}
		}()
		c.JSON(http.StatusAccepted, tool.FastReturnSuccessWithData(view))
		return
	}

	if _, err := s.CompleteSubmit(ctx); err != nil {
		var be *transfer.BackendError
		if errors.As(err, &be) {
			c.JSON(http.StatusBadGateway, tool.FastReturnUpstreamError(be.Message, be.Endpoint, be.StatusCode, s.Snapshot()))
			return
		}
		c.JSON(http.StatusBadGateway, tool.FastReturnUpstreamError(claim.DisplayMessage(err), "", 0, s.Snapshot()))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(s.Snapshot()))
}

func isGuardError(err error) bool {
	return errors.Is(err, claim.ErrNotReady) ||
		errors.Is(err, claim.ErrSubmissionInFlight) ||
		errors.Is(err, claim.ErrErrorPending)
}

// Dismiss POST /api/self/v1/sessions/:id/dismiss
// Hides the error banner; an errored submission goes back to idle.
func Dismiss(c *gin.Context) {
	s, ok := sessionFromParam(c)
	if !ok {
		return
	}
	s.Dismiss()
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(s.Snapshot()))
}

// Reset POST /api/self/v1/sessions/:id/reset
// Back to the upload step with the selections kept.
func Reset(c *gin.Context) {
	s, ok := sessionFromParam(c)
	if !ok {
		return
	}
	s.Reset()
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(s.Snapshot()))
}
