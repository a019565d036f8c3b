package multipart

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

const defaultLoadConcurrency = 4

// AttachmentReadError reports a local attachment that could not be read.
type AttachmentReadError struct {
	Field string
	Path  string
	Err   error
}

func (e *AttachmentReadError) Error() string {
	return fmt.Sprintf("attachment %s: read %s: %v", e.Field, e.Path, e.Err)
}

func (e *AttachmentReadError) Unwrap() error {
	return e.Err
}

// Warning is a non-fatal, field-specific problem found while loading.
type Warning struct {
	Field string
	Err   error
}

func (w Warning) String() string { return w.Field + ": " + w.Err.Error() }

// LoaderOptions groups dependencies for Loader.
type LoaderOptions struct {
	// ReadFile defaults to os.ReadFile.
	ReadFile func(path string) ([]byte, error)
	// Concurrency bounds parallel reads; defaults to 4.
	Concurrency int
	Logger      *slog.Logger
}

// Loader reads local attachment payloads ahead of encoding.
type Loader struct {
	readFile    func(path string) ([]byte, error)
	concurrency int
	logger      *slog.Logger
}

// NewLoader constructs a Loader.
func NewLoader(opts LoaderOptions) *Loader {
	l := &Loader{
		readFile:    opts.ReadFile,
		concurrency: opts.Concurrency,
		logger:      opts.Logger,
	}
	if l.readFile == nil {
		l.readFile = os.ReadFile
	}
	if l.concurrency <= 0 {
		l.concurrency = defaultLoadConcurrency
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// Load applies the skip policy, then reads every local attachment
// concurrently. Part order is preserved. An attachment that fails to read is
// dropped with a Warning, unless required reports its field as required, in
// which case Load returns the *AttachmentReadError.
func (l *Loader) Load(ctx context.Context, parts []Part, required func(field string) bool) ([]Part, []Warning, error) {
	pending := Pending(parts)
	loaded := make([]Part, len(pending))
	failures := make([]error, len(pending))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	for i, p := range pending {
		a, ok := p.(Attachment)
		if !ok || a.Data != nil || a.localPath() == "" {
			loaded[i] = p
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := l.readFile(a.localPath())
			if err != nil {
				readErr := &AttachmentReadError{Field: a.Name, Path: a.localPath(), Err: err}
				if required != nil && required(a.Name) {
					return readErr
				}
				failures[i] = readErr
				return nil
			}
			loaded[i] = fill(a, data)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	out := make([]Part, 0, len(loaded))
	var warnings []Warning
	for i, p := range loaded {
		if failures[i] != nil {
			name := pending[i].partName()
			l.logger.WarnContext(ctx, "attachment dropped from submission", "field", name, "error", failures[i])
			warnings = append(warnings, Warning{Field: name, Err: failures[i]})
			continue
		}
		out = append(out, p)
	}
	return out, warnings, nil
}

func fill(a Attachment, data []byte) Attachment {
	if data == nil {
		data = []byte{}
	}
	a.Data = data
	if a.Filename == "" {
		a.Filename = filepath.Base(a.localPath())
	}
	if a.ContentType == "" {
		a.ContentType = mime.TypeByExtension(filepath.Ext(a.Filename))
	}
	if a.ContentType == "" {
		a.ContentType = http.DetectContentType(data)
	}
	return a
}
