package jwt

import "errors"

var (
	ErrInvalidToken      = errors.New("jwt.errors.invalid_token")
	ErrExpiredToken      = errors.New("jwt.errors.token_expired")
	ErrMissingSigningKey = errors.New("jwt.errors.missing_signing_key")
	ErrMissingUserID     = errors.New("jwt.errors.missing_user_id")
)
