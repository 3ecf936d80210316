package uihttp

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"cleargraph/internal/digitize"
	"cleargraph/internal/intake"
	"cleargraph/internal/logger"
	"cleargraph/internal/workspace"

	"github.com/gin-gonic/gin"
)

// Digitizer is what the JSON API calls directly.
type Digitizer interface {
	workspace.Digitizer
	Ready() bool
}

type handler struct {
	cfg ServerConfig
}

type pageData struct {
	State          workspace.State
	OriginalImage  template.URL
	SVG            template.HTML
	Title          string
	Explanation    string
	Error          string
	Notice         string
	RefreshSeconds int
	PoweredBy      string
	PoweredByURL   string
}

type digitizeRequest struct {
	Image    string `json:"image" binding:"required"`
	MIMEType string `json:"mimeType"`
}

// multipart and base64 overhead on top of the raw image limit
const bodySlack = 1 << 20

func (h *handler) register(r *gin.Engine) {
	r.GET("/", h.index)
	r.POST("/upload", h.upload)
	r.POST("/reset", h.reset)
	r.GET("/download", h.download)
	r.POST("/api/digitize", h.apiDigitize)
}

// session returns the caller's workspace. The cookie is re-issued on every request so
// its MaxAge slides along with the workspace idle timer.
func (h *handler) session(c *gin.Context) *workspace.Workspace {
	id, _ := c.Cookie(h.cfg.CookieName)
	ws, _ := h.cfg.Workspaces.Acquire(id)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, ws.ID(), int(h.cfg.SessionTTL.Seconds()), "/", "", false, true)
	return ws
}

func (h *handler) render(c *gin.Context, status int, snap workspace.Snapshot, notice string) {
	data := pageData{
		State:          snap.State,
		Error:          snap.Error,
		Notice:         notice,
		RefreshSeconds: h.cfg.RefreshSeconds,
		PoweredBy:      h.cfg.PoweredBy,
		PoweredByURL:   h.cfg.PoweredByURL,
	}
	if snap.OriginalImage != "" {
		data.OriginalImage = template.URL(snap.OriginalImage)
	}
	if snap.Result != nil {
		// svgContent has been through svgclean before it reaches the workspace
		data.SVG = template.HTML(snap.Result.SVGContent)
		data.Title = snap.Result.Title
		data.Explanation = snap.Result.Explanation
	}
	c.Header("Cache-Control", "no-store")
	c.HTML(status, "index.html", data)
}

func (h *handler) index(c *gin.Context) {
	h.render(c, http.StatusOK, h.session(c).Snapshot(), "")
}

func (h *handler) upload(c *gin.Context) {
	ws := h.session(c)
	img, status, err := h.readMultipart(c)
	if err != nil {
		logger.Warnf("[ui] %s: upload rejected: %v", ws.ID(), err)
		h.render(c, status, ws.Snapshot(), uploadNotice(err))
		return
	}
	if err := h.cfg.Workspaces.Submit(ws, img); err != nil {
		if !errors.Is(err, workspace.ErrBusy) {
			logger.Errorf("[ui] %s: submit failed: %v", ws.ID(), err)
			h.render(c, http.StatusServiceUnavailable, ws.Snapshot(), workspace.FailureMessage)
			return
		}
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *handler) reset(c *gin.Context) {
	h.session(c).Reset()
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *handler) download(c *gin.Context) {
	snap := h.session(c).Snapshot()
	if snap.State != workspace.StateSuccess || snap.Result == nil {
		c.String(http.StatusNotFound, "no diagram to download")
		return
	}
	name := fmt.Sprintf("cleargraph-%d.svg", time.Now().UnixMilli())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "image/svg+xml", []byte(snap.Result.SVGContent))
}

func (h *handler) apiDigitize(c *gin.Context) {
	if !h.cfg.Digitizer.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": digitize.ErrMissingAPIKey.Error()})
		return
	}
	var (
		img    intake.Image
		status int
		err    error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		img, status, err = h.readMultipart(c)
	} else {
		img, status, err = h.readJSON(c)
	}
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	if h.cfg.APITimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.APITimeout)
		defer cancel()
	}
	res, err := h.cfg.Digitizer.Digitize(ctx, img)
	if err != nil {
		status, msg := apiError(err)
		logger.Warnf("[api] digitize failed (%d): %v", status, err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) limitBody(c *gin.Context, extra int64) {
	if h.cfg.UploadLimit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.UploadLimit+extra)
	}
}

func (h *handler) readMultipart(c *gin.Context) (intake.Image, int, error) {
	h.limitBody(c, bodySlack)
	fh, err := c.FormFile("image")
	if err != nil {
		if isBodyTooLarge(err) {
			return intake.Image{}, http.StatusRequestEntityTooLarge, intake.ErrTooLarge
		}
		return intake.Image{}, http.StatusBadRequest, fmt.Errorf("missing image file: %w", err)
	}
	img, err := openUpload(fh, h.cfg.UploadLimit)
	if err != nil {
		return intake.Image{}, intakeStatus(err), err
	}
	return img, http.StatusOK, nil
}

func openUpload(fh *multipart.FileHeader, limit int64) (intake.Image, error) {
	f, err := fh.Open()
	if err != nil {
		return intake.Image{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return intake.Read(f, fh.Header.Get("Content-Type"), limit)
}

func (h *handler) readJSON(c *gin.Context) (intake.Image, int, error) {
	h.limitBody(c, h.cfg.UploadLimit/3+bodySlack)
	var req digitizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if isBodyTooLarge(err) {
			return intake.Image{}, http.StatusRequestEntityTooLarge, intake.ErrTooLarge
		}
		return intake.Image{}, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err)
	}
	img, err := intake.FromBase64(req.Image, req.MIMEType, h.cfg.UploadLimit)
	if err != nil {
		return intake.Image{}, intakeStatus(err), err
	}
	return img, http.StatusOK, nil
}

func isBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large")
}

func intakeStatus(err error) int {
	if errors.Is(err, intake.ErrTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func uploadNotice(err error) string {
	switch {
	case errors.Is(err, intake.ErrNotImage):
		return intake.ErrNotImage.Error()
	case errors.Is(err, intake.ErrTooLarge):
		return "That image is too large. Please upload a smaller file."
	default:
		return "Please choose an image to upload."
	}
}

func apiError(err error) (int, string) {
	switch {
	case errors.Is(err, digitize.ErrMissingAPIKey):
		return http.StatusServiceUnavailable, digitize.ErrMissingAPIKey.Error()
	case errors.Is(err, digitize.ErrUnparseable):
		return http.StatusBadGateway, digitize.ErrUnparseable.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "the model did not answer in time"
	default:
		return http.StatusBadGateway, "the model request failed"
	}
}
