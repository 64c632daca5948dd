package qr

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"vms-backend/internal/apperr"
)

// PayloadPrefix tags every visitor QR payload. Anything scanned
// without it is rejected before a database lookup happens.
const PayloadPrefix = "VMS_VISITOR:"

// EncodePayload builds the scannable payload for a visitor id.
func EncodePayload(visitorID int) string {
	return PayloadPrefix + strconv.Itoa(visitorID)
}

// ParsePayload extracts the visitor id from a scanned payload.
func ParsePayload(data string) (int, error) {
	if !strings.HasPrefix(data, PayloadPrefix) {
		return 0, apperr.New(apperr.KindFormat, "invalid QR format")
	}
	id, err := strconv.Atoi(strings.TrimPrefix(data, PayloadPrefix))
	if err != nil || id <= 0 {
		return 0, apperr.New(apperr.KindFormat, "invalid QR data")
	}
	return id, nil
}

// Generator writes visitor QR codes as PNG files under a folder.
type Generator struct {
	Folder string
}

// NewGenerator creates the output folder if needed.
func NewGenerator(folder string) (*Generator, error) {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create QR folder: %w", err)
	}
	return &Generator{Folder: folder}, nil
}

// GenerateForVisitor encodes the visitor payload into a 300x300 PNG
// and returns the file path.
func (g *Generator) GenerateForVisitor(visitorID int) (string, error) {
	path := filepath.Join(g.Folder, fmt.Sprintf("visitor-%d.png", visitorID))
	if err := qrcode.WriteFile(EncodePayload(visitorID), qrcode.Medium, 300, path); err != nil {
		return "", fmt.Errorf("failed to generate QR: %w", err)
	}
	return path, nil
}
