package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// resetTokenPayload is the signed content of a password reset token.
type resetTokenPayload struct {
	Email    string `json:"email"`
	Subject  string `json:"sub"`
	ExpireAt int64  `json:"exp"`
}

const subjectPasswordReset = "password_reset"

func signResetToken(secret, email string, ttl time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().UTC().Add(ttl)
	payload, err := json.Marshal(resetTokenPayload{
		Email:    email,
		Subject:  subjectPasswordReset,
		ExpireAt: expiresAt.Unix(),
	})
	if err != nil {
		return "", time.Time{}, err
	}

	body := base64.RawURLEncoding.EncodeToString(payload)
	return body + "." + signPayload(secret, body), expiresAt, nil
}

// verifyResetToken returns the email the token was issued for, or
// ErrInvalidResetToken on any signature, shape, subject, or expiry failure.
func verifyResetToken(secret, token string) (string, error) {
	body, sig, ok := strings.Cut(token, ".")
	if !ok {
		return "", ErrInvalidResetToken
	}
	if !hmac.Equal([]byte(signPayload(secret, body)), []byte(sig)) {
		return "", ErrInvalidResetToken
	}

	raw, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return "", ErrInvalidResetToken
	}

	var payload resetTokenPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", ErrInvalidResetToken
	}
	if payload.Subject != subjectPasswordReset || payload.Email == "" {
		return "", ErrInvalidResetToken
	}
	if time.Now().UTC().Unix() > payload.ExpireAt {
		return "", ErrInvalidResetToken
	}
	return payload.Email, nil
}

func signPayload(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
