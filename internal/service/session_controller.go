package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	domainauth "github.com/target/profilegate/internal/domain/auth"
	"github.com/target/profilegate/internal/domain/gate"
	"github.com/target/profilegate/internal/domain/policy"
	"github.com/target/profilegate/internal/domain/profile"
	apperrors "github.com/target/profilegate/internal/errors"
	"github.com/target/profilegate/internal/observability/metrics"
	"github.com/target/profilegate/internal/observability/statsd"
	"github.com/target/profilegate/internal/ports"
)

// SessionControllerOptions groups dependencies for SessionController.
type SessionControllerOptions struct {
	Cache  ports.SessionCache
	API    ports.ProfileAPI
	Roles  ports.RoleNormalizer
	Logger *slog.Logger
	// Metrics defaults to statsd.Discard.
	Metrics statsd.Sink
	// TokenExpiry reads an expiry from a bearer token; ok is false when the
	// token carries none. Optional.
	TokenExpiry func(token string) (exp time.Time, ok bool)
	// Now defaults to time.Now.
	Now func() time.Time
}

// State is the snapshot handed to observers and callers. Version increases
// with every change, so observers can drop a snapshot older than one they
// already applied.
type State struct {
	Session domainauth.Session
	Mode    gate.Mode
	Version uint64
}

// LoginInput carries what the remote sign-in returned.
type LoginInput struct {
	Token   string
	RawRole domainauth.RawRole
	UserID  string
	// ProfileHint is the role-shaped profile object sign-in included, if any.
	ProfileHint json.RawMessage
}

type cachePolicy string

const (
	trustCache  cachePolicy = "trust-cache"
	bypassCache cachePolicy = "bypass-cache"
)

const rehydrateFlight = "rehydrate"

// SessionController owns the single process-wide Session.
//
// Network calls run without holding any lock. Every mutation and its cache
// write run under opMu, and every session replacement bumps gen. A
// completeness resolution only applies its result if gen is unchanged, which
// is how a check superseded by logout or a new login is abandoned.
type SessionController struct {
	cache       ports.SessionCache
	api         ports.ProfileAPI
	roles       ports.RoleNormalizer
	logger      *slog.Logger
	metrics     statsd.Sink
	tokenExpiry func(string) (time.Time, bool)
	now         func() time.Time

	opMu sync.Mutex

	mu      sync.RWMutex
	session domainauth.Session
	gen     uint64
	version uint64

	flights singleflight.Group

	obsMu     sync.Mutex
	observers map[uint64]func(State)
	nextObs   uint64
}

// NewSessionController constructs a SessionController in the logged-out state.
func NewSessionController(opts SessionControllerOptions) (*SessionController, error) {
	if opts.Cache == nil {
		return nil, errors.New("session cache is required")
	}
	if opts.API == nil {
		return nil, errors.New("profile api is required")
	}
	if opts.Roles == nil {
		return nil, errors.New("role normalizer is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	sink := opts.Metrics
	if sink == nil {
		sink = statsd.Discard
	}
	return &SessionController{
		cache:       opts.Cache,
		api:         opts.API,
		roles:       opts.Roles,
		logger:      logger.With("component", "session"),
		metrics:     sink,
		tokenExpiry: opts.TokenExpiry,
		now:         now,
		observers:   make(map[uint64]func(State)),
	}, nil
}

// Session returns a copy of the current session.
func (c *SessionController) Session() domainauth.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// Mode returns the navigation mode for the current session.
func (c *SessionController) Mode() gate.Mode {
	return gate.Derive(c.Session())
}

// State returns the current snapshot.
func (c *SessionController) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return State{Session: c.session, Mode: gate.Derive(c.session), Version: c.version}
}

// Subscribe registers fn to receive a State after every change. fn runs on
// the goroutine that made the change and must not block.
func (c *SessionController) Subscribe(fn func(State)) (cancel func()) {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	return func() {
		c.obsMu.Lock()
		defer c.obsMu.Unlock()
		delete(c.observers, id)
	}
}

// Rehydrate restores the session persisted by a previous process and resolves
// its completeness, trusting a cached "true" verdict. Concurrent calls share
// one restore.
func (c *SessionController) Rehydrate(ctx context.Context) (State, error) {
	v, err, _ := c.flights.Do(rehydrateFlight, func() (any, error) {
		return c.rehydrate(ctx)
	})
	st, ok := v.(State)
	if !ok {
		st = c.State()
	}
	return st, err
}

func (c *SessionController) rehydrate(ctx context.Context) (State, error) {
	creds, ok, err := c.cache.LoadCredentials(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "load cached credentials", "error", err)
		return c.State(), apperrors.Wrap(err, apperrors.ErrCodeInternal, "load cached session")
	}
	if !ok {
		return c.State(), nil
	}

	if !knownRole(creds.Role) {
		c.logger.WarnContext(ctx, "discarding cached session with unknown role",
			"user_id", creds.UserID, "role", creds.Role)
		return c.clearStale(ctx, creds.UserID)
	}
	if c.expired(creds.Token) {
		c.logger.InfoContext(ctx, "cached token expired", "user_id", creds.UserID)
		return c.clearStale(ctx, creds.UserID)
	}

	c.opMu.Lock()
	gen, st := c.replaceLocked(domainauth.NewSession(creds))
	c.opMu.Unlock()
	c.publish(st)

	c.logger.InfoContext(ctx, "session restored", "user_id", creds.UserID, "role", creds.Role)
	metrics.EmitTransition(c.metrics, "rehydrate", string(creds.Role))
	return c.resolve(ctx, gen, st.Session, trustCache, nil), nil
}

// Login normalizes the raw role, persists the credentials as one unit,
// installs the new session and resolves its completeness. An unmapped raw
// role is returned as-is and nothing is changed.
func (c *SessionController) Login(ctx context.Context, in LoginInput) (State, error) {
	token := strings.TrimSpace(in.Token)
	userID := strings.TrimSpace(in.UserID)
	if token == "" {
		return c.State(), apperrors.ValidationField("token", "token is required")
	}
	if userID == "" {
		return c.State(), apperrors.ValidationField("user_id", "user id is required")
	}

	role, err := c.roles.Normalize(in.RawRole)
	if err != nil {
		return c.State(), err
	}

	creds := domainauth.Credentials{Token: token, RawRole: in.RawRole, Role: role, UserID: userID}

	c.opMu.Lock()
	if prev := c.Session(); prev.LoggedIn() && prev.UserID != userID {
		if err := c.cache.Clear(ctx, prev.UserID); err != nil {
			c.logger.WarnContext(ctx, "clear previous user's cache entries", "user_id", prev.UserID, "error", err)
		}
	}
	if err := c.cache.SaveCredentials(ctx, creds); err != nil {
		c.opMu.Unlock()
		return c.State(), apperrors.Wrap(err, apperrors.ErrCodeInternal, "persist session")
	}
	gen, st := c.replaceLocked(domainauth.NewSession(creds))
	c.opMu.Unlock()
	c.publish(st)

	c.logger.InfoContext(ctx, "logged in", "user_id", userID, "role", role, "raw_role", in.RawRole)
	metrics.EmitTransition(c.metrics, "login", string(role))
	return c.resolve(ctx, gen, st.Session, trustCache, c.decodeHint(ctx, role, in.ProfileHint)), nil
}

// SignIn authenticates against the remote service and logs in with the result.
func (c *SessionController) SignIn(ctx context.Context, in ports.SignInInput) (State, error) {
	res, err := c.api.SignIn(ctx, in)
	if err != nil {
		return c.State(), err
	}
	return c.Login(ctx, LoginInput{
		Token:       res.Token,
		RawRole:     res.RawRole,
		UserID:      res.UserID,
		ProfileHint: res.Profile,
	})
}

// Refresh re-resolves completeness against the remote service, ignoring the
// cached verdict.
func (c *SessionController) Refresh(ctx context.Context) (State, error) {
	c.mu.RLock()
	sess, gen := c.session, c.gen
	c.mu.RUnlock()
	if !sess.LoggedIn() {
		return c.State(), nil
	}
	return c.resolve(ctx, gen, sess, bypassCache, nil), nil
}

// MarkComplete records a successful profile submission. It is idempotent.
func (c *SessionController) MarkComplete(ctx context.Context) error {
	c.opMu.Lock()
	st, err := c.markCompleteLocked(ctx, nil)
	c.opMu.Unlock()
	if err != nil {
		return err
	}
	c.publish(st)
	return nil
}

// AcceptProfile takes the record the service echoed after a successful
// submission, stores it on the session and marks the session complete when
// the policy agrees.
func (c *SessionController) AcceptProfile(ctx context.Context, rec *profile.Record) (bool, error) {
	c.opMu.Lock()
	sess := c.Session()
	if !sess.LoggedIn() {
		c.opMu.Unlock()
		return false, apperrors.Unauthorized("no active session")
	}

	complete, evalErr := policy.Evaluate(sess.Role, rec)
	if evalErr != nil {
		c.logger.WarnContext(ctx, "evaluate submitted profile", "user_id", sess.UserID, "error", evalErr)
	}

	var (
		st  State
		err error
	)
	if complete {
		st, err = c.markCompleteLocked(ctx, rec)
	} else {
		c.forgetCompletion(ctx, sess.UserID)
		st = c.updateLocked(func(s *domainauth.Session) {
			s.Profile = rec
			s.Completion = domainauth.CompletionIncomplete
		})
	}
	c.opMu.Unlock()
	if err != nil {
		return false, err
	}
	c.publish(st)
	return complete, nil
}

// Logout clears the in-memory session and every cache entry belonging to it.
// The in-memory session is cleared even if the cache cannot be.
func (c *SessionController) Logout(ctx context.Context) error {
	c.opMu.Lock()
	st, err := c.logoutLocked(ctx)
	c.opMu.Unlock()
	c.publish(st)
	return err
}

// InvalidateOnAuthFailure logs the user out when err is an authorization
// failure from an authenticated call. It returns err unchanged.
func (c *SessionController) InvalidateOnAuthFailure(ctx context.Context, err error) error {
	if err == nil || !apperrors.IsUnauthorized(err) {
		return err
	}
	if !c.Session().LoggedIn() {
		return err
	}
	c.logger.WarnContext(ctx, "token rejected, logging out", "error", err)
	if logoutErr := c.Logout(ctx); logoutErr != nil {
		c.logger.ErrorContext(ctx, "logout after token rejection", "error", logoutErr)
	}
	return err
}

// outcome is the result of one completeness resolution.
type outcome struct {
	completion   domainauth.Completion
	profile      *profile.Record
	persist      bool
	forget       bool
	unauthorized bool
	source       string
	err          error
}

// resolve runs one completeness resolution for sess, installed as
// generation gen. Concurrent callers asking for the same user, generation and
// cache policy share a single remote check and a single state write.
func (c *SessionController) resolve(
	ctx context.Context,
	gen uint64,
	sess domainauth.Session,
	p cachePolicy,
	hint *profile.Record,
) State {
	key := fmt.Sprintf("%s/%d/%s", sess.UserID, gen, p)

	v, _, _ := c.flights.Do(key, func() (any, error) {
		start := time.Now()
		out := c.evaluate(ctx, sess, p, hint)
		st, applied := c.apply(ctx, gen, out)

		result := metrics.ResultSuccess
		switch {
		case !applied:
			result = metrics.ResultDropped
		case out.err != nil:
			result = metrics.ResultError
		}
		metrics.EmitResolution(c.metrics, metrics.ResolutionMetric{
			Role:       string(sess.Role),
			Source:     out.source,
			Completion: out.completion.String(),
			Result:     result,
			Duration:   time.Since(start),
			Err:        out.err,
		})
		return st, nil
	})
	st, ok := v.(State)
	if !ok {
		return c.State()
	}
	return st
}

func (c *SessionController) evaluate(
	ctx context.Context,
	sess domainauth.Session,
	p cachePolicy,
	hint *profile.Record,
) outcome {
	log := c.logger.With("user_id", sess.UserID, "role", sess.Role)

	if !sess.Role.RequiresProfile() {
		return outcome{completion: domainauth.CompletionComplete, persist: true, source: metrics.SourceRole}
	}

	if hint != nil && policy.IsComplete(sess.Role, hint) {
		return outcome{completion: domainauth.CompletionComplete, profile: hint, persist: true, source: metrics.SourceHint}
	}

	if p == trustCache {
		verified, err := c.cache.CompletionVerified(ctx, sess.UserID)
		if err != nil {
			log.WarnContext(ctx, "read cached completeness", "error", err)
		}
		if err == nil && verified {
			log.DebugContext(ctx, "completeness served from cache")
			return outcome{completion: domainauth.CompletionComplete, profile: hint, source: metrics.SourceCache}
		}
	}

	rec, err := c.api.FetchProfile(ctx, sess.Token, sess.Role)
	switch {
	case apperrors.IsUnauthorized(err):
		return outcome{unauthorized: true, source: metrics.SourceRemote, err: err}
	case apperrors.IsNotFound(err):
		log.InfoContext(ctx, "no profile on record")
		return outcome{completion: domainauth.CompletionIncomplete, profile: hint, forget: true, source: metrics.SourceRemote}
	case err != nil:
		log.WarnContext(ctx, "profile fetch failed, gating as incomplete", "error", err)
		return outcome{completion: domainauth.CompletionIncomplete, profile: hint, source: metrics.SourceRemote, err: err}
	}

	complete, evalErr := policy.Evaluate(sess.Role, rec)
	if evalErr != nil {
		log.WarnContext(ctx, "evaluate fetched profile", "error", evalErr)
	}
	return outcome{
		completion: domainauth.CompletionFrom(complete),
		profile:    rec,
		persist:    complete,
		forget:     !complete,
		source:     metrics.SourceRemote,
		err:        evalErr,
	}
}

// apply installs out if gen is still current and reports whether it did.
// Cache writes use a context detached from the caller's cancellation so
// memory and cache agree.
func (c *SessionController) apply(ctx context.Context, gen uint64, out outcome) (State, bool) {
	c.opMu.Lock()

	c.mu.RLock()
	current := c.gen
	c.mu.RUnlock()
	if current != gen {
		c.opMu.Unlock()
		c.logger.DebugContext(ctx, "discarding superseded completeness result")
		return c.State(), false
	}

	if out.unauthorized {
		c.logger.WarnContext(ctx, "profile fetch rejected token, logging out")
		st, err := c.logoutLocked(context.WithoutCancel(ctx))
		c.opMu.Unlock()
		if err != nil {
			c.logger.ErrorContext(ctx, "logout after token rejection", "error", err)
		}
		c.publish(st)
		return st, true
	}

	sess := c.Session()
	switch {
	case out.persist:
		if err := c.cache.MarkCompletionVerified(context.WithoutCancel(ctx), sess.UserID); err != nil {
			c.logger.WarnContext(ctx, "persist completeness", "user_id", sess.UserID, "error", err)
		}
	case out.forget:
		c.forgetCompletion(ctx, sess.UserID)
	}
	st := c.updateLocked(func(s *domainauth.Session) {
		s.Completion = out.completion
		if out.profile != nil {
			s.Profile = out.profile
		}
	})
	c.opMu.Unlock()

	c.logger.InfoContext(ctx, "completeness resolved",
		"user_id", sess.UserID, "role", sess.Role, "complete", out.completion.String(), "mode", st.Mode.String())
	c.publish(st)
	return st, true
}

func (c *SessionController) markCompleteLocked(ctx context.Context, rec *profile.Record) (State, error) {
	sess := c.Session()
	if !sess.LoggedIn() {
		return c.State(), apperrors.Unauthorized("no active session")
	}
	if err := c.cache.MarkCompletionVerified(context.WithoutCancel(ctx), sess.UserID); err != nil {
		c.logger.WarnContext(ctx, "persist completeness", "user_id", sess.UserID, "error", err)
	}
	return c.updateLocked(func(s *domainauth.Session) {
		s.Completion = domainauth.CompletionComplete
		if rec != nil {
			s.Profile = rec
		}
	}), nil
}

// forgetCompletion drops a cached "true" the service no longer agrees with, so
// the next process start resolves remotely.
func (c *SessionController) forgetCompletion(ctx context.Context, userID string) {
	if err := c.cache.ForgetCompletion(context.WithoutCancel(ctx), userID); err != nil {
		c.logger.WarnContext(ctx, "forget cached completeness", "user_id", userID, "error", err)
	}
}

func (c *SessionController) logoutLocked(ctx context.Context) (State, error) {
	userID := c.Session().UserID
	if userID == "" {
		if creds, ok, err := c.cache.LoadCredentials(ctx); err == nil && ok {
			userID = creds.UserID
		}
	}

	var clearErr error
	if err := c.cache.Clear(ctx, userID); err != nil {
		clearErr = apperrors.Wrap(err, apperrors.ErrCodeInternal, "clear cached session")
	}
	role := c.Session().Role
	_, st := c.replaceLocked(domainauth.Session{})
	c.logger.InfoContext(ctx, "logged out", "user_id", userID)
	metrics.EmitTransition(c.metrics, "logout", string(role))
	return st, clearErr
}

func (c *SessionController) clearStale(ctx context.Context, userID string) (State, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	if err := c.cache.Clear(ctx, userID); err != nil {
		return c.State(), apperrors.Wrap(err, apperrors.ErrCodeInternal, "clear stale session")
	}
	return c.State(), nil
}

// replaceLocked swaps in a new session and starts a new generation.
func (c *SessionController) replaceLocked(s domainauth.Session) (uint64, State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
	c.gen++
	c.version++
	return c.gen, State{Session: c.session, Mode: gate.Derive(c.session), Version: c.version}
}

func (c *SessionController) updateLocked(fn func(*domainauth.Session)) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.session)
	c.version++
	return State{Session: c.session, Mode: gate.Derive(c.session), Version: c.version}
}

func (c *SessionController) publish(st State) {
	c.obsMu.Lock()
	fns := make([]func(State), 0, len(c.observers))
	for _, fn := range c.observers {
		fns = append(fns, fn)
	}
	c.obsMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

func (c *SessionController) expired(token string) bool {
	if c.tokenExpiry == nil {
		return false
	}
	exp, ok := c.tokenExpiry(token)
	return ok && !c.now().Before(exp)
}

func (c *SessionController) decodeHint(ctx context.Context, role domainauth.Role, raw json.RawMessage) *profile.Record {
	if len(raw) == 0 || !role.RequiresProfile() {
		return nil
	}
	rec, err := profile.Decode(profileKind(role), raw)
	if err != nil {
		c.logger.WarnContext(ctx, "ignoring malformed sign-in profile", "role", role, "error", err)
		return nil
	}
	return rec
}

func knownRole(r domainauth.Role) bool {
	switch r {
	case domainauth.RoleEmployee, domainauth.RoleRetailer, domainauth.RoleClient:
		return true
	default:
		return false
	}
}

func profileKind(role domainauth.Role) profile.Kind {
	if role == domainauth.RoleRetailer {
		return profile.KindRetailer
	}
	return profile.KindEmployee
}
