// Package qrcode renders order receipt QR codes.
package qrcode

import (
	"net/url"
	"strings"

	"storefront/config"
	"storefront/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"
)

const (
	defaultSize    = 256
	defaultBaseURL = "http://localhost:3000/orders"
)

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
	baseURL              *url.URL
}

// NewQRCodeService creates a new QR code service instance
func NewQRCodeService(cfg *config.Config) (service.QRCodeService, error) {
	size, level, rawBaseURL := defaultSize, "M", defaultBaseURL
	if cfg.QRCode != nil {
		if cfg.QRCode.Size > 0 {
			size = cfg.QRCode.Size
		}
		if cfg.QRCode.ErrorCorrectionLevel != "" {
			level = cfg.QRCode.ErrorCorrectionLevel
		}
		if cfg.QRCode.BaseURL != "" {
			rawBaseURL = cfg.QRCode.BaseURL
		}
	}

	baseURL, err := url.Parse(strings.TrimRight(rawBaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid qrcode base URL")
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: recoveryLevel(level),
		baseURL:              baseURL,
	}, nil
}

func recoveryLevel(level string) qrcode.RecoveryLevel {
	switch strings.ToUpper(level) {
	case "L":
		return qrcode.Low
	case "Q":
		return qrcode.High
	case "H":
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

// GenerateOrderReceiptQR encodes the order page URL, e.g. https://shop.example/orders/<id>.
func (s *qrcodeService) GenerateOrderReceiptQR(orderID uuid.UUID) ([]byte, error) {
	if orderID == uuid.Nil {
		return nil, errors.New("order id is required")
	}

	qrCode, err := qrcode.New(s.receiptURL(orderID), s.errorCorrectionLevel)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create QR code")
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate PNG")
	}

	return pngBytes, nil
}

// ParseOrderReceiptQR accepts only URLs under the configured base.
func (s *qrcodeService) ParseOrderReceiptQR(qrData string) (uuid.UUID, error) {
	parsed, err := url.Parse(strings.TrimSpace(qrData))
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "receipt QR is not a URL")
	}
	if !strings.EqualFold(parsed.Scheme, s.baseURL.Scheme) || !strings.EqualFold(parsed.Host, s.baseURL.Host) {
		return uuid.Nil, errors.Errorf("receipt QR points at foreign host %q", parsed.Host)
	}

	rest, ok := strings.CutPrefix(parsed.Path, s.baseURL.Path+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return uuid.Nil, errors.Errorf("receipt QR path %q is not an order page", parsed.Path)
	}

	orderID, err := uuid.Parse(rest)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "failed to parse order ID")
	}

	return orderID, nil
}

func (s *qrcodeService) receiptURL(orderID uuid.UUID) string {
	return s.baseURL.JoinPath(orderID.String()).String()
}
