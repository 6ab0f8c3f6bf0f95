// Package totpx wraps RFC 6238 time-based one-time passwords: secret
// enrolment with a scannable QR code, and code verification.
package totpx

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const qrSizePixels = 256

// Enrollment is what a user needs to add the account to an authenticator
// app: the base32 secret for manual entry and a PNG QR code of the
// provisioning URI.
type Enrollment struct {
	Secret string
	// QRCode is a data URI ("data:image/png;base64,...") suitable for an
	// <img> tag.
	QRCode string
	// URL is the raw otpauth:// provisioning URI.
	URL string
}

// GenerateSecret creates a fresh TOTP secret labelled issuer:account
// (30-second period, six digits, SHA-1, the authenticator-app defaults).
func GenerateSecret(issuer, account string) (Enrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return Enrollment{}, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	img, err := key.Image(qrSizePixels, qrSizePixels)
	if err != nil {
		return Enrollment{}, fmt.Errorf("failed to render QR code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Enrollment{}, fmt.Errorf("failed to encode QR code: %w", err)
	}

	return Enrollment{
		Secret: key.Secret(),
		QRCode: "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		URL:    key.URL(),
	}, nil
}

// Verify reports whether code is valid for the base32 secret within the
// library's default clock-skew window.
func Verify(code, secret string) bool {
	return totp.Validate(code, secret)
}
