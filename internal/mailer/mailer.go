package mailer

import "log"

// Mailer delivers the visitor QR pass. Delivery is best-effort: a
// failure is logged by the caller and never rolls back a check-in.
type Mailer interface {
	SendVisitorQR(toEmail, visitorName, qrPath string) error
}

// MockMailer logs instead of sending. Used when SMTP is disabled.
type MockMailer struct{}

func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) SendVisitorQR(toEmail, visitorName, qrPath string) error {
	log.Printf("[MOCK MAIL] visitor QR pass for %s -> %s (attachment: %s)", visitorName, toEmail, qrPath)
	return nil
}
