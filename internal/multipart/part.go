// Package multipart builds the multipart/form-data bodies used for profile
// submissions. Attachments are carried base64-encoded, and attachments the
// server already holds are never sent again.
package multipart

import (
	"net/url"
	"strings"
)

// Part is either a Field or an Attachment.
type Part interface {
	partName() string
}

// Field is a named UTF-8 text value.
type Field struct {
	Name  string
	Value string
}

func (f Field) partName() string { return f.Name }

// Attachment is a named binary payload.
//
// Source is where the payload comes from: a local path (or file:// URL) that
// the Loader reads into Data, or an http(s) URL for content the server
// already has. FromServer marks attachments populated from a profile fetch.
type Attachment struct {
	Name        string
	Filename    string
	ContentType string
	Data        []byte
	Source      string
	FromServer  bool
}

func (a Attachment) partName() string { return a.Name }

// Remote reports whether the source is an http or https URL.
func (a Attachment) Remote() bool {
	u, err := url.Parse(strings.TrimSpace(a.Source))
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

// AlreadyUploaded reports whether sending the attachment would re-upload
// content the server already has.
func (a Attachment) AlreadyUploaded() bool {
	return a.FromServer || a.Remote()
}

// localPath returns the filesystem path of a local source, or "".
func (a Attachment) localPath() string {
	src := strings.TrimSpace(a.Source)
	if src == "" || a.Remote() {
		return ""
	}
	if strings.HasPrefix(src, "file://") {
		if u, err := url.Parse(src); err == nil {
			return u.Path
		}
	}
	return src
}

// Pending drops attachments the server already has, preserving order.
func Pending(parts []Part) []Part {
	out := make([]Part, 0, len(parts))
	for _, p := range parts {
		if a, ok := p.(Attachment); ok && a.AlreadyUploaded() {
			continue
		}
		out = append(out, p)
	}
	return out
}
