package auth

import (
	"net/mail"
	"strings"

	errors "github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/core/common/validation"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupDTO struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// RefreshTokenDTO for refresh token requests
type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutDTO struct {
	RefreshToken string `json:"refresh_token"`
}

type SignupResponse struct {
	ID     int64      `json:"id"`
	Email  string     `json:"email"`
	Tokens AuthTokens `json:"tokens"`
}

func (d LoginDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required(errors.ErrCodeInvalidEmail)
	v.Field("password", d.Password).Required(errors.ErrCodeInvalidPassword)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

func (d SignupDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", strings.TrimSpace(d.Email)).
		Required(errors.ErrCodeInvalidEmail).
		MaxLength(255, errors.ErrCodeInvalidEmail).
		Custom(validEmail)
	v.Field("password", d.Password).
		Required(errors.ErrCodeInvalidPassword).
		MinLength(6, errors.ErrCodeInvalidPassword).
		MaxLength(72, errors.ErrCodeInvalidPassword)
	v.Field("first_name", d.FirstName).
		Required(errors.ErrCodeInvalidName).
		MaxLength(100, errors.ErrCodeInvalidName)
	v.Field("last_name", d.LastName).
		Required(errors.ErrCodeInvalidName).
		MaxLength(100, errors.ErrCodeInvalidName)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

func (d RefreshTokenDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("refresh_token", d.RefreshToken).Required(errors.ErrCodeInvalidToken)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

func validEmail(value interface{}) *errors.AppError {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return errors.NewValidationFieldError("email", "email is invalid", errors.ErrCodeInvalidEmail)
	}
	return nil
}
