package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/claimdesk/api/models"
	"github.com/moyoez/claimdesk/claim"
	"github.com/moyoez/claimdesk/intake"
	"github.com/moyoez/claimdesk/metrics"
	"github.com/moyoez/claimdesk/tool"
	"github.com/moyoez/claimdesk/types"
)

const (
	FormFieldFiles = "files"
	// MaxUploadBodySize bounds one slot upload request: a 50MB video plus multipart overhead.
	MaxUploadBodySize = 64 << 20
)

// IntakeController serves intake sessions: selection edits, previews and
// raw media.
type IntakeController struct {
	backend claim.Backend
	opts    intake.Options
}

func NewIntakeController(backend claim.Backend, opts intake.Options) *IntakeController {
	return &IntakeController{backend: backend, opts: opts}
}

// sessionFromParam loads :id or answers 404.
func sessionFromParam(c *gin.Context) (*intake.Session, bool) {
	id := c.Param("id")
	if !tool.IsSessionID(id) {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Invalid session id"))
		return nil, false
	}
	s, ok := models.LookupSession(id)
	if !ok {
		c.JSON(http.StatusNotFound, tool.FastReturnError("Session not found"))
		return nil, false
	}
	return s, true
}

func slotFromParam(c *gin.Context) (types.Slot, bool) {
	slot, err := types.ParseSlot(c.Param("slot"))
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError(err.Error()))
		return "", false
	}
	return slot, true
}

// CreateSession POST /api/self/v1/sessions
func (ic *IntakeController) CreateSession(c *gin.Context) {
	s := intake.NewSession(tool.GenerateRandomUUID(), ic.backend, ic.opts)
	models.StoreSession(s)
	metrics.SessionCreated()
	tool.DefaultLogger.Infof("[Intake] Session %s created for %s", s.ID(), c.ClientIP())
	c.JSON(http.StatusCreated, tool.FastReturnSuccessWithData(s.Snapshot()))
}

// GetSession GET /api/self/v1/sessions/:id
func (ic *IntakeController) GetSession(c *gin.Context) {
	s, ok := sessionFromParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(s.Snapshot()))
}

// DeleteSession DELETE /api/self/v1/sessions/:id
func (ic *IntakeController) DeleteSession(c *gin.Context) {
	s, ok := sessionFromParam(c)
	if !ok {
		return
	}
	if s.State() == types.StateVerifying || s.State() == types.StateAssessing {
		c.JSON(http.StatusConflict, tool.FastReturnError(claim.ErrSubmissionInFlight.Error()))
		return
	}
	models.RemoveSession(s.ID())
	c.JSON(http.StatusOK, tool.FastReturnSuccess())
}

// AddFiles POST /api/self/v1/sessions/:id/slots/:slot (multipart "files")
func (ic *IntakeController) AddFiles(c *gin.Context) {
	s, ok := sessionFromParam(c)
	if !ok {
		return
	}
	slot, ok := slotFromParam(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBodySize)
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Invalid multipart form: "+err.Error()))
		return
	}
	batch, err := readBatch(form.File[FormFieldFiles])
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError(err.Error()))
		return
	}

	view, err := s.AddFiles(slot, batch)
	if err != nil {
		var ve *intake.ValidationError
		switch {
		case errors.As(err, &ve):
			c.JSON(http.StatusUnprocessableEntity, tool.FastReturnRejection(ve.Message, string(ve.Slot), ve.Files, view))
		case errors.Is(err, intake.ErrEmptyBatch):
			c.JSON(http.StatusBadRequest, tool.FastReturnError("No files provided"))
		default:
			c.JSON(http.StatusBadRequest, tool.FastReturnError(err.Error()))
		}
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(view))
}

func readBatch(headers []*multipart.FileHeader) ([]types.MediaFile, error) {
	batch := make([]types.MediaFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
		}
		mf, err := tool.ReadMediaFile(fh.Filename, fh.Header.Get("Content-Type"), f)
		if closeErr := f.Close(); closeErr != nil {
			tool.DefaultLogger.Errorf("Failed to close upload part: %v", closeErr)
		}
		if err != nil {
			return nil, err
		}
		batch = append(batch, mf)
	}
	return batch, nil
}

// RemoveFile DELETE /api/self/v1/sessions/:id/slots/:slot/files/:name
func (ic *IntakeController) RemoveFile(c *gin.Context) {
	s, ok := sessionFromParam(c)
	if !ok {
		return
	}
	slot, ok := slotFromParam(c)
	if !ok {
		return
	}
	view, err := s.RemoveFile(slot, c.Param("name"))
	if err != nil {
		if errors.Is(err, intake.ErrFileNotSelected) {
			c.JSON(http.StatusNotFound, tool.FastReturnError(err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, tool.FastReturnError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(view))
}

// ClearSlot DELETE /api/self/v1/sessions/:id/slots/:slot
func (ic *IntakeController) ClearSlot(c *gin.Context) {
	s, ok := sessionFromParam(c)
	if !ok {
		return
	}
	slot, ok := slotFromParam(c)
	if !ok {
		return
	}
	view, err := s.ClearSlot(slot)
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(view))
}

// Previews GET /api/self/v1/sessions/:id/slots/:slot/previews
// ?wait=true blocks until every thumbnail has resolved.
func (ic *IntakeController) Previews(c *gin.Context) {
	s, ok := sessionFromParam(c)
	if !ok {
		return
	}
	slot, ok := slotFromParam(c)
	if !ok {
		return
	}
	if c.Query("wait") == "true" {
		if err := s.WaitPreviews(c.Request.Context(), slot); err != nil {
			c.JSON(http.StatusRequestTimeout, tool.FastReturnError(err.Error()))
			return
		}
	}
	previews, err := s.Previews(slot)
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(previews))
}

// RawFile GET /api/self/v1/sessions/:id/slots/:slot/files/:name
// Serves the selected bytes; video previews play from here.
func (ic *IntakeController) RawFile(c *gin.Context) {
	s, ok := sessionFromParam(c)
	if !ok {
		return
	}
	slot, ok := slotFromParam(c)
	if !ok {
		return
	}
	f, err := s.File(slot, c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, tool.FastReturnError(err.Error()))
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Type", f.Type)
	// ServeContent answers Range requests, which video elements rely on.
	http.ServeContent(c.Writer, c.Request, f.Name, s.Created(), bytes.NewReader(f.Content))
}
