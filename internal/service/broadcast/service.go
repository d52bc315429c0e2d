package broadcast

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/bogarovo/internal/domain/models"
	"github.com/mamadbah2/bogarovo/internal/metrics"
)

// Status messages shown to the user. Collaborator failures end up here instead
// of being returned as errors.
const (
	StatusCameraReady     = "Camera ready."
	StatusCameraDenied    = "Without permission photos cannot be taken."
	StatusCameraRequired  = "Camera permission is required to photograph the slip."
	StatusSMSGranted      = "SMS permission granted."
	StatusSMSDenied       = "Without permission SMS cannot be sent."
	StatusSMSRequired     = "SMS permission is required to send messages."
	StatusNoPhoto         = "No photo was captured."
	StatusOCRFailed       = "Text recognition failed. Please try a sharper photo."
	StatusNoRecipients    = "No names with phone numbers were found in the photo."
	StatusNothingSelected = "No recipients selected."
	statusLoadedFormat    = "Loaded %d contacts."
	statusSentFormat      = "SMS sent: %d"
)

// ErrRecipientIndex is returned when a selection targets a recipient that does not exist.
var ErrRecipientIndex = errors.New("recipient index out of range")

// Recognizer extracts text from a photographed slip.
type Recognizer interface {
	RecognizeText(ctx context.Context, image []byte, mimeType string) (string, error)
}

// Sender delivers one text message.
type Sender interface {
	SendText(ctx context.Context, to, body string) error
}

// State is a snapshot of the broadcast session.
type State struct {
	Recipients []models.SmsRecipient `json:"recipients"`
	Message    string                `json:"message"`
	Status     string                `json:"status"`
	Camera     bool                  `json:"camera_granted"`
	SMS        bool                  `json:"sms_granted"`
}

// Service holds the single-user broadcast session: the recipients from the
// latest scan, the message body and the last status line.
type Service struct {
	recognizer Recognizer
	sender     Sender
	gate       *Gate
	metrics    *metrics.Metrics
	logger     *zap.Logger

	mu         sync.Mutex
	recipients []models.SmsRecipient
	message    string
	status     string
}

// NewService wires a broadcast session with the default message template.
func NewService(recognizer Recognizer, sender Sender, gate *Gate, template string, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gate == nil {
		gate = NewGate(false, false)
	}
	return &Service{
		recognizer: recognizer,
		sender:     sender,
		gate:       gate,
		metrics:    m,
		logger:     logger,
		message:    template,
	}
}

// State returns a copy of the session.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// RequestPermission records a grant outcome and reports it as status.
func (s *Service) RequestPermission(p Permission, granted bool) State {
	s.gate.Set(p, granted)

	var status string
	switch {
	case p == PermissionCamera && granted:
		status = StatusCameraReady
	case p == PermissionCamera:
		status = StatusCameraDenied
	case granted:
		status = StatusSMSGranted
	default:
		status = StatusSMSDenied
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	return s.stateLocked()
}

// Scan recognizes text on the photo and replaces the recipient list with what
// it finds. Recognition runs without holding the session lock.
func (s *Service) Scan(ctx context.Context, image []byte, mimeType string) State {
	if !s.gate.Granted(PermissionCamera) {
		return s.setStatus(StatusCameraRequired)
	}
	if len(image) == 0 {
		return s.setStatus(StatusNoPhoto)
	}

	text, err := s.recognize(ctx, image, mimeType)
	s.metrics.OCRScanned(err)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.logger.Warn("text recognition failed", zap.Error(err))
		s.recipients = nil
		s.status = StatusOCRFailed
		return s.stateLocked()
	}

	s.recipients = models.ExtractRecipients(text)
	if len(s.recipients) == 0 {
		s.status = StatusNoRecipients
	} else {
		s.status = fmt.Sprintf(statusLoadedFormat, len(s.recipients))
	}
	s.logger.Info("delivery slip scanned", zap.Int("recipients", len(s.recipients)))
	return s.stateLocked()
}

// SetSelected marks one recipient for sending or excludes it.
func (s *Service) SetSelected(index int, selected bool) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.recipients) {
		return s.stateLocked(), ErrRecipientIndex
	}
	s.recipients[index].Selected = selected
	return s.stateLocked(), nil
}

// SetMessage replaces the SMS body.
func (s *Service) SetMessage(message string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
	return s.stateLocked()
}

// Send texts the message to every selected recipient in list order. Each send
// is fire and forget: failures are logged and counted, never retried, and do
// not change the reported count.
func (s *Service) Send(ctx context.Context) State {
	if !s.gate.Granted(PermissionSMS) {
		return s.setStatus(StatusSMSRequired)
	}

	s.mu.Lock()
	var selected []models.SmsRecipient
	for _, r := range s.recipients {
		if r.Selected {
			selected = append(selected, r)
		}
	}
	message := s.message
	s.mu.Unlock()

	if len(selected) == 0 {
		return s.setStatus(StatusNothingSelected)
	}

	for _, r := range selected {
		err := s.send(ctx, r.Phone, message)
		s.metrics.SMSSent(err)
		if err != nil {
			s.logger.Warn("sms send failed", zap.String("phone", r.Phone), zap.Error(err))
		}
	}

	s.logger.Info("broadcast sent", zap.Int("recipients", len(selected)))
	return s.setStatus(fmt.Sprintf(statusSentFormat, len(selected)))
}

func (s *Service) recognize(ctx context.Context, image []byte, mimeType string) (string, error) {
	if s.recognizer == nil {
		return "", errors.New("no text recognizer configured")
	}
	return s.recognizer.RecognizeText(ctx, image, mimeType)
}

func (s *Service) send(ctx context.Context, phone, message string) error {
	if s.sender == nil {
		return errors.New("no sms gateway configured")
	}
	return s.sender.SendText(ctx, phone, message)
}

func (s *Service) setStatus(status string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	return s.stateLocked()
}

func (s *Service) stateLocked() State {
	recipients := make([]models.SmsRecipient, len(s.recipients))
	copy(recipients, s.recipients)
	return State{
		Recipients: recipients,
		Message:    s.message,
		Status:     s.status,
		Camera:     s.gate.Granted(PermissionCamera),
		SMS:        s.gate.Granted(PermissionSMS),
	}
}
