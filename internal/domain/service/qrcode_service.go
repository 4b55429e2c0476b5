package service

import (
	"github.com/google/uuid"
)

// QRCodeService renders and reads order receipt QR codes.
type QRCodeService interface {
	// GenerateOrderReceiptQR renders a PNG pointing at the order's receipt.
	GenerateOrderReceiptQR(orderID uuid.UUID) ([]byte, error)

	// ParseOrderReceiptQR extracts the order ID from scanned QR content.
	ParseOrderReceiptQR(qrData string) (uuid.UUID, error)
}
