package services

import (
	"fmt"
	"io"

	"arogyam-go/internal/models"

	"go.uber.org/zap"
)

// EmailService is a placeholder for a real email sending service. Messages
// are logged and written to out.
type EmailService struct {
	log *zap.Logger
	out io.Writer
}

func NewEmailService(log *zap.Logger, out io.Writer) *EmailService {
	if out == nil {
		out = io.Discard
	}
	return &EmailService{log: log, out: out}
}

// SendConsultationReminder simulates the day-before reminder for a
// confirmed consultation.
func (s *EmailService) SendConsultationReminder(c models.Consultation) error {
	s.log.Info("Sending consultation reminder",
		zap.Uint("consultationID", c.ID),
		zap.String("to", c.Email),
		zap.String("date", c.PreferredDate.Format("2006-01-02")),
	)
	when := c.PreferredDate.Format("Monday, 2 January")
	if c.PreferredTime != "" {
		when += " at " + c.PreferredTime
	}
	_, err := fmt.Fprintf(s.out, "--- SIMULATING EMAIL ---\nTo: %s\nSubject: Your Arogyam consultation is tomorrow\nHi %s,\nThis is a reminder of your %s consultation on %s.\n\n",
		c.Email, c.Name, c.ConsultationType, when)
	return err
}
