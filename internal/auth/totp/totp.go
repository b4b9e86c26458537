// Package totp generates and verifies time-based one-time passwords and renders enrollment QR codes
package totp

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// Period is the length of one TOTP time step
	Period = 30
	// qrSize is the width and height of rendered QR images in pixels
	qrSize = 256
)

// ErrCorruptSecret is returned when a stored secret cannot be decoded as base32
var ErrCorruptSecret = errors.New("stored two-factor secret is corrupted")

// Enrollment holds the material produced when enrolling an account.
// Secret is persisted on the account; URI is regenerable and only shown once.
type Enrollment struct {
	Secret string
	URI    string
}

// Engine generates TOTP secrets and verifies submitted codes
type Engine struct {
	issuer string
	skew   uint
}

// NewEngine creates a new TOTP engine.
// skew is the number of adjacent time steps accepted on each side; values below 1 are raised to 1.
func NewEngine(issuer string, skew uint) *Engine {
	if skew < 1 {
		skew = 1
	}
	return &Engine{
		issuer: issuer,
		skew:   skew,
	}
}

// GenerateSecret creates a new random shared secret and its otpauth:// enrollment URI labeled with label
func (e *Engine) GenerateSecret(label string) (*Enrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      e.issuer,
		AccountName: label,
		Period:      Period,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate two-factor secret: %w", err)
	}

	return &Enrollment{
		Secret: key.Secret(),
		URI:    key.URL(),
	}, nil
}

// Verify reports whether code is valid for secret at the given time.
//
// Incorrect or malformed codes return false with no error.
// A secret that is not valid base32 returns ErrCorruptSecret.
func (e *Engine) Verify(secret, code string, at time.Time) (bool, error) {
	ok, err := totp.ValidateCustom(code, secret, at, e.validateOpts())
	if err == nil {
		return ok, nil
	}
	if errors.Is(err, otp.ErrValidateSecretInvalidBase32) {
		return false, ErrCorruptSecret
	}
	return false, nil
}

// GenerateCode returns the code for secret at the given time
func (e *Engine) GenerateCode(secret string, at time.Time) (string, error) {
	code, err := totp.GenerateCodeCustom(secret, at, e.validateOpts())
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return code, nil
}

func (e *Engine) validateOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    Period,
		Skew:      e.skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// QRCode renders uri as a PNG QR image and returns it as a data URL
func QRCode(uri string) (string, error) {
	code, err := qr.Encode(uri, qr.M, qr.Auto)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}

	scaled, err := barcode.Scale(code, qrSize, qrSize)
	if err != nil {
		return "", fmt.Errorf("failed to scale QR code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return "", fmt.Errorf("failed to encode QR image: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
