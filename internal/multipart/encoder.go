package multipart

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	boundaryPrefix      = "----ProfileGateBoundary"
	maxBoundaryAttempts = 5
	crlf                = "\r\n"
)

// ErrBoundaryCollision is returned when no generated boundary avoided the payload.
var ErrBoundaryCollision = errors.New("multipart: could not generate a non-colliding boundary")

// NewBoundary returns a fixed prefix followed by a random 32-hex-digit suffix.
func NewBoundary() string {
	return boundaryPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ContentType returns the request Content-Type for a body framed with boundary.
func ContentType(boundary string) string {
	return "multipart/form-data; boundary=" + boundary
}

// Encode frames parts into a multipart body with a fresh boundary. Attachments
// the server already has are skipped.
func Encode(parts []Part) ([]byte, string, error) {
	pending := Pending(parts)
	for range maxBoundaryAttempts {
		boundary := NewBoundary()
		if collides(pending, boundary) {
			continue
		}
		body, err := EncodeWithBoundary(pending, boundary)
		if err != nil {
			return nil, "", err
		}
		return body, boundary, nil
	}
	return nil, "", ErrBoundaryCollision
}

// EncodeWithBoundary frames parts with the given boundary. Output is a pure
// function of its inputs.
func EncodeWithBoundary(parts []Part, boundary string) ([]byte, error) {
	if boundary == "" {
		return nil, errors.New("multipart: boundary is required")
	}

	var buf bytes.Buffer
	delim := "--" + boundary
	for _, p := range Pending(parts) {
		if p.partName() == "" {
			return nil, errors.New("multipart: part name is required")
		}

		buf.WriteString(delim + crlf)
		switch v := p.(type) {
		case Field:
			fmt.Fprintf(&buf, `Content-Disposition: form-data; name="%s"`+crlf, escapeQuotes(v.Name))
			buf.WriteString(crlf)
			buf.WriteString(v.Value)
		case Attachment:
			if v.Data == nil && v.localPath() != "" {
				return nil, fmt.Errorf("multipart: attachment %q was not loaded", v.Name)
			}
			contentType := v.ContentType
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			fmt.Fprintf(&buf, `Content-Disposition: form-data; name="%s"; filename="%s"`+crlf,
				escapeQuotes(v.Name), escapeQuotes(v.Filename))
			fmt.Fprintf(&buf, "Content-Type: %s"+crlf, stripNewlines(contentType))
			buf.WriteString("Content-Transfer-Encoding: base64" + crlf)
			buf.WriteString(crlf)
			buf.WriteString(base64.StdEncoding.EncodeToString(v.Data))
		default:
			return nil, fmt.Errorf("multipart: unsupported part %T", p)
		}
		buf.WriteString(crlf)
	}
	buf.WriteString(delim + "--" + crlf)
	return buf.Bytes(), nil
}

// collides reports whether boundary appears in any raw text the body carries.
// Base64 payloads cannot contain '-', so only fields and headers matter.
func collides(parts []Part, boundary string) bool {
	for _, p := range parts {
		switch v := p.(type) {
		case Field:
			if strings.Contains(v.Value, boundary) || strings.Contains(v.Name, boundary) {
				return true
			}
		case Attachment:
			if strings.Contains(v.Filename, boundary) || strings.Contains(v.Name, boundary) {
				return true
			}
		}
	}
	return false
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"", "\r", "", "\n", "")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }

func stripNewlines(s string) string { return strings.NewReplacer("\r", "", "\n", "").Replace(s) }
