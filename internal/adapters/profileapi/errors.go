package profileapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/target/profilegate/internal/errors"
)

// StatusError is an unexpected non-2xx answer.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Status)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

// ServerRejection is a refused profile submission. Message is what the
// service said, suitable for showing to the user as-is.
type ServerRejection struct {
	Status  int
	Message string
	// Fields holds per-field messages when the service sent them.
	Fields map[string]string
}

func (e *ServerRejection) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("submission rejected (%d)", e.Status)
	}
	return e.Message
}

func newServerRejection(resp *http.Response) error {
	raw := readErrorBody(resp.Body)
	rej := &ServerRejection{Status: resp.StatusCode}

	var body struct {
		Message string            `json:"message"`
		Error   string            `json:"error"`
		Errors  map[string]string `json:"errors"`
	}
	if err := json.Unmarshal([]byte(raw), &body); err == nil {
		rej.Message = strings.TrimSpace(firstNonEmpty(body.Message, body.Error))
		rej.Fields = body.Errors
	} else {
		rej.Message = raw
	}
	return apperrors.Wrap(rej, apperrors.ErrCodeRejected, "profile submission rejected")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
