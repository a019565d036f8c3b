// Package profileapi is the HTTP client for the remote profile service.
package profileapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
	"golang.org/x/oauth2"

	domainauth "github.com/target/profilegate/internal/domain/auth"
	"github.com/target/profilegate/internal/domain/profile"
	apperrors "github.com/target/profilegate/internal/errors"
	"github.com/target/profilegate/internal/ports"
)

const (
	defaultTimeout        = 15 * time.Second
	defaultSignInPath     = "/api/auth/login"
	defaultProfilePath    = "/api/{role}/profile"
	defaultDocumentPath   = "/api/{role}/documents/{type}"
	defaultBankPath       = "/api/{role}/bank/confirm"
	defaultProfileExtract = "{role} || data.{role} || data || @"

	maxErrorBody = 4 << 10
)

// Sign-in responses differ between backend versions; these expressions find
// each value wherever it was put.
const (
	signInTokenExpr   = "token || access_token || data.token || data.access_token"
	signInRoleExpr    = "role || user.role || data.role || data.user.role"
	signInUserIDExpr  = "userId || user_id || user.id || data.userId || data.user_id || data.user.id"
	signInProfileExpr = "profile || user.profile || data.profile || data.user.profile"
)

// Config configures the remote service client. Paths may contain the
// placeholders {role} and {type}.
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	SignInPath      string
	ProfilePath     string
	DocumentPath    string
	BankConfirmPath string
	// SubmitMethod is PUT unless set to PATCH.
	SubmitMethod string
	// ProfileExtract is a JMESPath expression locating the profile object in
	// fetch and submit responses.
	ProfileExtract string
	// Transport is the base round tripper; defaults to http.DefaultTransport.
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// Client implements ports.ProfileAPI over HTTP.
type Client struct {
	base         *url.URL
	timeout      time.Duration
	signInPath   string
	profilePath  string
	documentPath string
	bankPath     string
	submitMethod string
	extract      string
	transport    http.RoundTripper
	logger       *slog.Logger
}

var _ ports.ProfileAPI = (*Client)(nil)

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("profile api base url is required")
	}
	base, err := url.Parse(raw)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid profile api base url %q", raw)
	}

	extract := fallback(cfg.ProfileExtract, defaultProfileExtract)
	for _, role := range []domainauth.Role{domainauth.RoleEmployee, domainauth.RoleRetailer} {
		if _, err := jmespath.Compile(expandRole(extract, role)); err != nil {
			return nil, fmt.Errorf("invalid profile extract expression: %w", err)
		}
	}

	method := strings.ToUpper(strings.TrimSpace(cfg.SubmitMethod))
	if method != http.MethodPatch {
		method = http.MethodPut
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base:         base,
		timeout:      timeout,
		signInPath:   fallback(cfg.SignInPath, defaultSignInPath),
		profilePath:  fallback(cfg.ProfilePath, defaultProfilePath),
		documentPath: fallback(cfg.DocumentPath, defaultDocumentPath),
		bankPath:     fallback(cfg.BankConfirmPath, defaultBankPath),
		submitMethod: method,
		extract:      extract,
		transport:    transport,
		logger:       logger,
	}, nil
}

// SignIn exchanges phone and password for a bearer token.
func (c *Client) SignIn(ctx context.Context, in ports.SignInInput) (ports.SignInResult, error) {
	payload, err := json.Marshal(map[string]string{"phone": in.Phone, "password": in.Password})
	if err != nil {
		return ports.SignInResult{}, fmt.Errorf("encode sign-in payload: %w", err)
	}

	resp, err := c.do(ctx, c.anonymous(), http.MethodPost, c.endpoint(c.signInPath, "", ""),
		bytes.NewReader(payload), "application/json")
	if err != nil {
		return ports.SignInResult{}, err
	}
	defer closeBody(resp)

	if err := checkAuth(resp, "sign-in rejected"); err != nil {
		return ports.SignInResult{}, err
	}
	if !success(resp.StatusCode) {
		return ports.SignInResult{}, statusError(resp, "sign-in failed")
	}

	doc, err := decodeJSON(resp.Body)
	if err != nil {
		return ports.SignInResult{}, apperrors.Network(err, "decode sign-in response")
	}

	out := ports.SignInResult{
		Token:   searchString(signInTokenExpr, doc),
		RawRole: domainauth.RawRole(searchString(signInRoleExpr, doc)),
		UserID:  searchString(signInUserIDExpr, doc),
	}
	if out.Token == "" || out.UserID == "" {
		return ports.SignInResult{}, apperrors.Network(errors.New("missing token or user id"), "unusable sign-in response")
	}
	if hint, _ := jmespath.Search(signInProfileExpr, doc); isObject(hint) {
		if b, err := json.Marshal(hint); err == nil {
			out.Profile = b
		}
	}
	return out, nil
}

// FetchProfile retrieves the role-shaped profile record. A nil record with a
// nil error means the service answered without a profile object.
func (c *Client) FetchProfile(ctx context.Context, token string, role domainauth.Role) (*profile.Record, error) {
	kind, err := kindOf(role)
	if err != nil {
		return nil, err
	}
	hc, err := c.bearer(token)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, hc, http.MethodGet, c.endpoint(c.profilePath, role, ""), nil, "")
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	if err := checkAuth(resp, "profile fetch rejected"); err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.NotFoundf("no %s profile on record", role)
	}
	if !success(resp.StatusCode) {
		return nil, statusError(resp, "profile fetch failed")
	}
	return c.decodeProfile(resp.Body, role, kind)
}

// SubmitProfile sends an encoded multipart body. Non-2xx answers other than
// 401/403 are returned as *ServerRejection.
func (c *Client) SubmitProfile(
	ctx context.Context,
	token string,
	role domainauth.Role,
	body []byte,
	contentType string,
) (*profile.Record, error) {
	kind, err := kindOf(role)
	if err != nil {
		return nil, err
	}
	hc, err := c.bearer(token)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, hc, c.submitMethod, c.endpoint(c.profilePath, role, ""), bytes.NewReader(body), contentType)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	if err := checkAuth(resp, "profile submission rejected"); err != nil {
		return nil, err
	}
	if !success(resp.StatusCode) {
		return nil, newServerRejection(resp)
	}

	rec, err := c.decodeProfile(resp.Body, role, kind)
	if err != nil {
		// The write succeeded; the caller falls back to what it sent.
		c.logger.WarnContext(ctx, "unusable submission echo", "role", role, "error", err)
		return nil, nil
	}
	return rec, nil
}

// FetchDocument retrieves metadata for one previously uploaded document.
func (c *Client) FetchDocument(
	ctx context.Context,
	token string,
	role domainauth.Role,
	docType string,
) (ports.Document, bool, error) {
	hc, err := c.bearer(token)
	if err != nil {
		return ports.Document{}, false, err
	}

	resp, err := c.do(ctx, hc, http.MethodGet, c.endpoint(c.documentPath, role, docType), nil, "")
	if err != nil {
		return ports.Document{}, false, err
	}
	defer closeBody(resp)

	if err := checkAuth(resp, "document fetch rejected"); err != nil {
		return ports.Document{}, false, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return ports.Document{}, false, nil
	}
	if !success(resp.StatusCode) {
		return ports.Document{}, false, statusError(resp, "document fetch failed")
	}

	doc, err := decodeJSON(resp.Body)
	if err != nil {
		return ports.Document{}, false, apperrors.Network(err, "decode document response")
	}
	out := ports.Document{
		Type:        docType,
		URL:         searchString("url || file_url || data.url || data.file_url", doc),
		Filename:    searchString("filename || file_name || data.filename || data.file_name", doc),
		ContentType: searchString("content_type || mime_type || data.content_type || data.mime_type", doc),
	}
	if out.URL == "" {
		return ports.Document{}, false, nil
	}
	return out, true, nil
}

// ConfirmBank asks the service whether the test disbursement was acknowledged.
func (c *Client) ConfirmBank(ctx context.Context, token string, role domainauth.Role) (bool, error) {
	hc, err := c.bearer(token)
	if err != nil {
		return false, err
	}

	resp, err := c.do(ctx, hc, http.MethodPost, c.endpoint(c.bankPath, role, ""), nil, "")
	if err != nil {
		return false, err
	}
	defer closeBody(resp)

	if err := checkAuth(resp, "bank confirmation rejected"); err != nil {
		return false, err
	}
	if !success(resp.StatusCode) {
		return false, statusError(resp, "bank confirmation failed")
	}

	doc, err := decodeJSON(resp.Body)
	if err != nil {
		return false, apperrors.Network(err, "decode bank confirmation response")
	}
	v, _ := jmespath.Search("is_verified || verified || confirmed || data.is_verified || data.verified", doc)
	confirmed, _ := v.(bool)
	return confirmed, nil
}

func (c *Client) anonymous() *http.Client {
	return &http.Client{Timeout: c.timeout, Transport: c.transport}
}

func (c *Client) bearer(token string) (*http.Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apperrors.Unauthorized("no bearer token")
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	return &http.Client{
		Timeout:   c.timeout,
		Transport: &oauth2.Transport{Source: src, Base: c.transport},
	}, nil
}

func (c *Client) do(
	ctx context.Context,
	hc *http.Client,
	method, endpoint string,
	body io.Reader,
	contentType string,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "profile api request failed", "method", method, "path", req.URL.Path, "error", err)
		return nil, apperrors.Network(err, fmt.Sprintf("%s %s", method, req.URL.Path))
	}
	c.logger.DebugContext(ctx, "profile api request",
		"method", method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start))
	return resp, nil
}

func (c *Client) endpoint(path string, role domainauth.Role, docType string) string {
	p := strings.ReplaceAll(path, "{role}", url.PathEscape(string(role)))
	p = strings.ReplaceAll(p, "{type}", url.PathEscape(docType))
	return c.base.JoinPath(p).String()
}

func (c *Client) decodeProfile(r io.Reader, role domainauth.Role, kind profile.Kind) (*profile.Record, error) {
	doc, err := decodeJSON(r)
	if err != nil {
		return nil, apperrors.Network(err, "decode profile response")
	}
	if doc == nil {
		return nil, nil
	}
	found, err := jmespath.Search(expandRole(c.extract, role), doc)
	if err != nil {
		return nil, fmt.Errorf("extract profile: %w", err)
	}
	if !isObject(found) {
		return nil, nil
	}
	b, err := json.Marshal(found)
	if err != nil {
		return nil, fmt.Errorf("re-encode profile: %w", err)
	}
	return profile.Decode(kind, b)
}

func kindOf(role domainauth.Role) (profile.Kind, error) {
	switch role {
	case domainauth.RoleEmployee:
		return profile.KindEmployee, nil
	case domainauth.RoleRetailer:
		return profile.KindRetailer, nil
	default:
		return "", apperrors.ValidationField("role", fmt.Sprintf("role %q has no profile", role))
	}
}

func expandRole(expr string, role domainauth.Role) string {
	return strings.ReplaceAll(expr, "{role}", string(role))
}

func decodeJSON(r io.Reader) (any, error) {
	var doc any
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return doc, nil
}

func searchString(expr string, doc any) string {
	if doc == nil {
		return ""
	}
	v, err := jmespath.Search(expr, doc)
	if err != nil {
		return ""
	}
	return scalarString(v)
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

func isObject(v any) bool {
	m, ok := v.(map[string]any)
	return ok && len(m) > 0
}

func success(status int) bool { return status >= 200 && status < 300 }

func checkAuth(resp *http.Response, msg string) error {
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return apperrors.Unauthorized(fmt.Sprintf("%s: %s", msg, resp.Status))
	}
	return nil
}

func statusError(resp *http.Response, msg string) error {
	return apperrors.Wrap(&StatusError{Status: resp.StatusCode, Body: readErrorBody(resp.Body)},
		apperrors.ErrCodeNetwork, msg)
}

func readErrorBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return strings.TrimSpace(string(b))
}

func closeBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}

func fallback(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}
