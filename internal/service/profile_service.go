package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	domainauth "github.com/target/profilegate/internal/domain/auth"
	"github.com/target/profilegate/internal/domain/gate"
	"github.com/target/profilegate/internal/domain/profile"
	apperrors "github.com/target/profilegate/internal/errors"
	"github.com/target/profilegate/internal/multipart"
	"github.com/target/profilegate/internal/observability/metrics"
	"github.com/target/profilegate/internal/observability/statsd"
	"github.com/target/profilegate/internal/ports"
)

const defaultDocumentConcurrency = 4

// ProfileServiceOptions groups dependencies for ProfileService.
type ProfileServiceOptions struct {
	API      ports.ProfileAPI
	Sessions *SessionController
	Loader   *multipart.Loader
	// DocumentConcurrency bounds parallel document fetches; defaults to 4.
	DocumentConcurrency int
	Logger              *slog.Logger
	// Metrics defaults to statsd.Discard.
	Metrics statsd.Sink
}

// ProfileService submits profile forms and fetches previously uploaded documents.
type ProfileService struct {
	api         ports.ProfileAPI
	sessions    *SessionController
	loader      *multipart.Loader
	concurrency int
	logger      *slog.Logger
	metrics     statsd.Sink
}

// NewProfileService constructs a ProfileService.
func NewProfileService(opts ProfileServiceOptions) (*ProfileService, error) {
	if opts.API == nil {
		return nil, errors.New("profile api is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("session controller is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loader := opts.Loader
	if loader == nil {
		loader = multipart.NewLoader(multipart.LoaderOptions{Logger: logger})
	}
	concurrency := opts.DocumentConcurrency
	if concurrency <= 0 {
		concurrency = defaultDocumentConcurrency
	}
	sink := opts.Metrics
	if sink == nil {
		sink = statsd.Discard
	}
	return &ProfileService{
		api:         opts.API,
		sessions:    opts.Sessions,
		loader:      loader,
		concurrency: concurrency,
		logger:      logger.With("component", "profile"),
		metrics:     sink,
	}, nil
}

// SubmitResult describes a successful submission.
type SubmitResult struct {
	Record   *profile.Record
	Complete bool
	Mode     gate.Mode
	// Warnings lists attachments dropped because they could not be read.
	Warnings []multipart.Warning
}

// Submit encodes the form and sends it. A *profileapi.ServerRejection or any
// other failure is returned without touching the session or the form.
func (s *ProfileService) Submit(ctx context.Context, form *ProfileForm) (SubmitResult, error) {
	sess, err := s.activeSession(form)
	if err != nil {
		return SubmitResult{}, err
	}

	start := time.Now()
	m := metrics.SubmissionMetric{Role: string(sess.Role), Result: metrics.ResultError}
	defer func() {
		m.Duration = time.Since(start)
		metrics.EmitSubmission(s.metrics, m)
	}()

	submitted := form.Record()
	loaded, warnings, err := s.loader.Load(ctx, form.Parts(), form.Required)
	if err != nil {
		m.Err = err
		return SubmitResult{}, err
	}
	m.Warnings = len(warnings)

	body, boundary, err := multipart.Encode(loaded)
	if err != nil {
		m.Err = err
		return SubmitResult{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode profile submission")
	}
	m.Parts, m.Bytes = len(loaded), len(body)

	s.logger.InfoContext(ctx, "submitting profile",
		"user_id", sess.UserID, "role", sess.Role, "parts", len(loaded), "bytes", len(body))

	echo, err := s.api.SubmitProfile(ctx, sess.Token, sess.Role, body, multipart.ContentType(boundary))
	if err != nil {
		m.Err = err
		if apperrors.IsRejected(err) {
			m.Result = metrics.ResultRejected
		}
		return SubmitResult{}, s.sessions.InvalidateOnAuthFailure(ctx, err)
	}
	if echo == nil {
		echo = submitted
	}

	complete, err := s.sessions.AcceptProfile(ctx, echo)
	if err != nil {
		m.Err = err
		return SubmitResult{}, err
	}
	m.Result = metrics.ResultSuccess
	if err := form.saved(echo, loaded); err != nil {
		s.logger.WarnContext(ctx, "reload form from submission echo", "error", err)
	}

	return SubmitResult{
		Record:   echo,
		Complete: complete,
		Mode:     s.sessions.Mode(),
		Warnings: warnings,
	}, nil
}

// Documents fetches each named document concurrently. Documents the server
// does not have are left out. The returned attachments are flagged as held
// by the server.
func (s *ProfileService) Documents(ctx context.Context, types []string) ([]multipart.Attachment, error) {
	sess := s.sessions.Session()
	if !sess.LoggedIn() {
		return nil, apperrors.Unauthorized("no active session")
	}

	found := make([]*multipart.Attachment, len(types))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, docType := range types {
		g.Go(func() error {
			doc, ok, err := s.api.FetchDocument(gctx, sess.Token, sess.Role, docType)
			if err != nil {
				return fmt.Errorf("fetch document %s: %w", docType, err)
			}
			if !ok {
				s.logger.DebugContext(gctx, "document not uploaded yet", "type", docType)
				return nil
			}
			found[i] = &multipart.Attachment{
				Name:        docType,
				Filename:    doc.Filename,
				ContentType: doc.ContentType,
				Source:      doc.URL,
				FromServer:  true,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, s.sessions.InvalidateOnAuthFailure(ctx, err)
	}

	out := make([]multipart.Attachment, 0, len(types))
	for _, a := range found {
		if a != nil {
			out = append(out, *a)
		}
	}
	return out, nil
}

// LoadForm builds a form for the current session from its last-known
// profile and the named documents.
func (s *ProfileService) LoadForm(ctx context.Context, docTypes []string) (*ProfileForm, error) {
	sess := s.sessions.Session()
	if !sess.LoggedIn() {
		return nil, apperrors.Unauthorized("no active session")
	}
	form, err := NewProfileForm(sess.Role)
	if err != nil {
		return nil, err
	}
	if err := form.Load(sess.Profile); err != nil {
		return nil, err
	}
	if len(docTypes) > 0 {
		docs, err := s.Documents(ctx, docTypes)
		if err != nil {
			return nil, err
		}
		form.LoadAttachments(docs)
	}
	return form, nil
}

// ConfirmBank asks the service to confirm the form's bank details.
func (s *ProfileService) ConfirmBank(ctx context.Context, form *ProfileForm) error {
	sess, err := s.activeSession(form)
	if err != nil {
		return err
	}
	c := bankConfirmer{api: s.api, token: sess.Token, role: sess.Role}
	if err := form.ConfirmBank(ctx, c); err != nil {
		return s.sessions.InvalidateOnAuthFailure(ctx, err)
	}
	s.logger.InfoContext(ctx, "bank details confirmed", "user_id", sess.UserID)
	return nil
}

func (s *ProfileService) activeSession(form *ProfileForm) (domainauth.Session, error) {
	sess := s.sessions.Session()
	if !sess.LoggedIn() {
		return domainauth.Session{}, apperrors.Unauthorized("no active session")
	}
	if form == nil {
		return domainauth.Session{}, apperrors.Validation("form is required")
	}
	if form.Role() != sess.Role {
		return domainauth.Session{}, apperrors.Validation(
			fmt.Sprintf("form is for %s but session role is %s", form.Role(), sess.Role))
	}
	return sess, nil
}

// bankConfirmer binds the remote confirmation call to one session.
type bankConfirmer struct {
	api   ports.ProfileAPI
	token string
	role  domainauth.Role
}

func (b bankConfirmer) ConfirmBank(ctx context.Context) (bool, error) {
	return b.api.ConfirmBank(ctx, b.token, b.role)
}
