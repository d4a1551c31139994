package validator

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/futig/fxchat-backend/internal/entity"
)

// MaxMessageLength bounds a single chat message, in characters
const MaxMessageLength = 4000

// ValidateChatRequest checks that a message was supplied. An empty string is a valid message.
func ValidateChatRequest(req *entity.ChatRequest) error {
	if req.Message == nil {
		return fmt.Errorf("%w: message", entity.ErrMissingField)
	}
	if utf8.RuneCountInString(*req.Message) > MaxMessageLength {
		return fmt.Errorf("%w: message longer than %d characters", entity.ErrInvalidFormat, MaxMessageLength)
	}
	return nil
}

// ValidateURL accepts absolute http and https URLs with a host
func ValidateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %s", entity.ErrInvalidURL, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %s: scheme must be http or https", entity.ErrInvalidURL, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %s: missing host", entity.ErrInvalidURL, raw)
	}
	return nil
}

// InvalidURLs returns the URLs that fail ValidateURL, in input order
func InvalidURLs(urls []string) []string {
	var invalid []string
	for _, u := range urls {
		if ValidateURL(u) != nil {
			invalid = append(invalid, u)
		}
	}
	return invalid
}
