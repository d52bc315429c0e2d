package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/bogarovo/internal/domain/models"
	"github.com/mamadbah2/bogarovo/internal/service/broadcast"
)

const maxImageBytes = 10 << 20

var errImageTooLarge = errors.New("image exceeds 10 MiB")

// Broadcaster is the SMS broadcast session the handlers drive.
type Broadcaster interface {
	State() broadcast.State
	RequestPermission(p broadcast.Permission, granted bool) broadcast.State
	Scan(ctx context.Context, image []byte, mimeType string) broadcast.State
	SetSelected(index int, selected bool) (broadcast.State, error)
	SetMessage(message string) broadcast.State
	Send(ctx context.Context) broadcast.State
}

// BroadcastHandler exposes the delivery slip scan and SMS broadcast flow.
// Collaborator failures arrive as the session status, so these endpoints
// answer 200 with the new state.
type BroadcastHandler struct {
	svc    Broadcaster
	logger *zap.Logger
}

// NewBroadcastHandler constructs the HTTP handler adapter.
func NewBroadcastHandler(svc Broadcaster, logger *zap.Logger) *BroadcastHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BroadcastHandler{svc: svc, logger: logger}
}

// State returns the current session.
func (h *BroadcastHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.State())
}

// Scan reads the photo from the multipart field "image" or the raw body.
func (h *BroadcastHandler) Scan(c *gin.Context) {
	image, mimeType, err := readImage(c)
	if errors.Is(err, errImageTooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.logger.Warn("invalid scan upload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image upload"})
		return
	}
	c.JSON(http.StatusOK, h.svc.Scan(c.Request.Context(), image, mimeType))
}

// SetMessage replaces the SMS body.
func (h *BroadcastHandler) SetMessage(c *gin.Context) {
	var req models.SetMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	c.JSON(http.StatusOK, h.svc.SetMessage(req.Message))
}

// SelectRecipient includes or excludes one recipient.
func (h *BroadcastHandler) SelectRecipient(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
		return
	}

	var req models.SelectRecipientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	state, err := h.svc.SetSelected(index, req.Selected)
	if errors.Is(err, broadcast.ErrRecipientIndex) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, state)
}

// Send texts the message to the selected recipients.
func (h *BroadcastHandler) Send(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Send(c.Request.Context()))
}

// Permission records the outcome of a permission prompt shown by the client.
func (h *BroadcastHandler) Permission(c *gin.Context) {
	p, err := broadcast.ParsePermission(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	var req models.PermissionResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	c.JSON(http.StatusOK, h.svc.RequestPermission(p, req.Granted))
}

func readImage(c *gin.Context) ([]byte, string, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("image")
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", nil
		}
		if err != nil {
			return nil, "", err
		}
		if header.Size > maxImageBytes {
			return nil, "", errImageTooLarge
		}
		file, err := header.Open()
		if err != nil {
			return nil, "", err
		}
		defer file.Close()

		image, err := readLimited(file)
		return image, imageType(header.Header.Get("Content-Type"), image), err
	}

	image, err := readLimited(c.Request.Body)
	return image, imageType(c.ContentType(), image), err
}

func readLimited(r io.Reader) ([]byte, error) {
	image, err := io.ReadAll(io.LimitReader(r, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(image) > maxImageBytes {
		return nil, errImageTooLarge
	}
	return image, nil
}

// imageType trusts a declared image/* type and otherwise sniffs the bytes.
func imageType(declared string, image []byte) string {
	if strings.HasPrefix(declared, "image/") || len(image) == 0 {
		return declared
	}
	if sniffed := http.DetectContentType(image); strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	return declared
}
