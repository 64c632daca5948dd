package mailer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"

	"vms-backend/internal/config"
)

// SMTPMailer sends the QR pass as a MIME message with the PNG attached.
type SMTPMailer struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		Host:     strings.TrimSpace(cfg.Host),
		Port:     cfg.Port,
		From:     strings.TrimSpace(cfg.From),
		Username: strings.TrimSpace(cfg.Username),
		Password: strings.TrimSpace(cfg.Password),
	}
}

// SendVisitorQR emails the generated QR image to the visitor.
func (s *SMTPMailer) SendVisitorQR(toEmail, visitorName, qrPath string) error {
	toEmail = strings.TrimSpace(toEmail)
	if toEmail == "" {
		return fmt.Errorf("empty recipient email")
	}

	attachment, err := os.ReadFile(qrPath)
	if err != nil {
		return fmt.Errorf("failed to read QR file: %w", err)
	}

	var buf bytes.Buffer
	boundary := "vms-mixed-boundary"
	fmt.Fprintf(&buf, "From: Visitor Management System <%s>\r\n", s.From)
	fmt.Fprintf(&buf, "To: %s\r\n", toEmail)
	fmt.Fprintf(&buf, "Subject: Your Visitor QR Pass - VMS\r\n")
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", boundary)

	// html body
	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	fmt.Fprintf(&buf, "Content-Type: text/html; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "<h2>Hello %s,</h2>\r\n", visitorName)
	fmt.Fprintf(&buf, "<p>Your visitor entry has been registered.</p>\r\n")
	fmt.Fprintf(&buf, "<p>Please find your QR pass attached below.</p>\r\n")
	fmt.Fprintf(&buf, "<br><b>Thank you!</b><br><b>Visitor Management System</b>\r\n\r\n")

	// png attachment
	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	fmt.Fprintf(&buf, "Content-Type: image/png; name=%q\r\n", filepath.Base(qrPath))
	fmt.Fprintf(&buf, "Content-Transfer-Encoding: base64\r\n")
	fmt.Fprintf(&buf, "Content-Disposition: attachment; filename=\"Visitor_QR.png\"\r\n\r\n")

	encoded := base64.StdEncoding.EncodeToString(attachment)
	for len(encoded) > 76 {
		buf.WriteString(encoded[:76] + "\r\n")
		encoded = encoded[76:]
	}
	buf.WriteString(encoded + "\r\n\r\n")
	fmt.Fprintf(&buf, "--%s--\r\n", boundary)

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)

	// Dev SMTP (Mailpit on 1025): no auth.
	if s.Username == "" {
		return smtp.SendMail(addr, nil, s.From, []string{toEmail}, buf.Bytes())
	}

	auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
	return smtp.SendMail(addr, auth, s.From, []string{toEmail}, buf.Bytes())
}
