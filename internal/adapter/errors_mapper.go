package adapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))

	switch resp.StatusCode() {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrBadRequest, body)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, body)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbidden, body)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, body)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, body)
	case http.StatusBadGateway:
		return fmt.Errorf("%w: %s", ErrBadGateway, body)
	case http.StatusInternalServerError:
		return fmt.Errorf("%w: %s", ErrInternalServerError, body)
	default:
		if body == "" {
			body = http.StatusText(resp.StatusCode())
		}
		return fmt.Errorf("http %d: %s", resp.StatusCode(), body)
	}
}

// authErrorBody is the identity-provider error envelope:
// {"error": {"message": "EMAIL_EXISTS"}}.
type authErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// mapAuthError translates failed auth responses into the auth sentinel
// errors. Responses without a recognised provider code fall back to plain
// HTTP status mapping.
func mapAuthError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	var body authErrorBody
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		code := body.Error.Message
		// throttling codes carry a trailing explanation after " : "
		if idx := strings.Index(code, " :"); idx > 0 {
			code = code[:idx]
		}
		switch code {
		case "EMAIL_EXISTS":
			return ErrEmailExists
		case "WEAK_PASSWORD":
			return ErrWeakPassword
		case "INVALID_EMAIL":
			return ErrInvalidEmail
		case "EMAIL_NOT_FOUND":
			return ErrEmailNotFound
		case "INVALID_PASSWORD":
			return ErrInvalidPassword
		case "TOO_MANY_ATTEMPTS_TRY_LATER":
			return ErrTooManyAttempts
		}
	}

	return mapHTTPError(resp)
}
