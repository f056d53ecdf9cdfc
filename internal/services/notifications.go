package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/harentsoaR/dentist-sync/internal/models"
)

// DefaultTextbeltURL is the Textbelt send endpoint.
const DefaultTextbeltURL = "https://textbelt.com/text"

// NotificationService sends appointment confirmations by SMS through
// Textbelt. Without a key it does nothing.
type NotificationService struct {
	URL    string
	Key    string
	Client *http.Client
	Logger *log.Logger
}

func NewNotificationService(url, key string, logger *log.Logger) *NotificationService {
	if url == "" {
		url = DefaultTextbeltURL
	}
	if logger == nil {
		logger = log.New(os.Stderr, "[sms] ", log.LstdFlags)
	}
	return &NotificationService{URL: url, Key: key, Client: &http.Client{Timeout: 15 * time.Second}, Logger: logger}
}

// Enabled reports whether messages will actually be sent.
func (s *NotificationService) Enabled() bool {
	return s != nil && s.Key != ""
}

// AppointmentMessage is the confirmation text for apt.
func AppointmentMessage(clinic string, patient models.Patient, apt models.Appointment) string {
	when := apt.Date
	if apt.Time != "" {
		when += " " + apt.Time
	}
	msg := fmt.Sprintf("%s: appointment confirmed for %s on %s.", clinic, patient.Name, when)
	if apt.Service != "" {
		msg = fmt.Sprintf("%s: %s appointment confirmed for %s on %s.", clinic, apt.Service, patient.Name, when)
	}
	return msg
}

// SendAppointmentConfirmation texts the patient in the background. Patients
// without a phone number are skipped.
func (s *NotificationService) SendAppointmentConfirmation(clinic string, patient models.Patient, apt models.Appointment) {
	if !s.Enabled() {
		return
	}
	if patient.Phone == "" {
		s.Logger.Println("SMS not sent: patient has no phone number.")
		return
	}
	phone := patient.PhoneCode + patient.Phone
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.Send(ctx, phone, AppointmentMessage(clinic, patient, apt)); err != nil {
			s.Logger.Printf("Failed to send SMS to %s: %v", phone, err)
			return
		}
		s.Logger.Printf("Sent SMS to %s", phone)
	}()
}

// Send delivers one message and reports Textbelt's verdict.
func (s *NotificationService) Send(ctx context.Context, phone, message string) error {
	postBody, err := json.Marshal(map[string]string{
		"phone":   phone,
		"message": message,
		"key":     s.Key,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(postBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode textbelt response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("textbelt: %s", result.Error)
	}
	return nil
}
