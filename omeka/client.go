// Package omeka is the HTTP client for the target CMS's admin form API:
// one authenticated session carried by cookies, an exhibit-create form,
// and an item-create form with file attachments.
package omeka

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/c360studio/semexhibit/extract"
)

// ErrLogin marks a failed admin login. Login failure is fatal to a run.
var ErrLogin = errors.New("login failed")

// ErrSubmit marks a rejected exhibit or item submission.
var ErrSubmit = errors.New("submission rejected")

// Admin form endpoints, relative to the CMS base URL.
const (
	loginPath      = "admin/users/login"
	exhibitAddPath = "admin/exhibits/add"
	itemAddPath    = "admin/items/add"
)

// Client talks to one CMS instance. The session cookies obtained by Login
// ride along on every later submission.
type Client struct {
	base   *url.URL
	login  *http.Client // follows redirects so a login lands on a page
	submit *http.Client // submissions never follow redirects
	logger *slog.Logger
}

// NewClient creates a client for the CMS at baseURL. A missing trailing
// slash on the base is tolerated.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse CMS URL: %w", err)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &Client{
		base:  base,
		login: &http.Client{Jar: jar, Timeout: timeout},
		submit: &http.Client{
			Jar:     jar,
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: logger,
	}, nil
}

// Login authenticates the admin user once. The session cookies land in the
// shared jar; any non-success response is fatal.
func (c *Client) Login(ctx context.Context, user, password string) error {
	endpoint := c.base.JoinPath(loginPath)
	form := url.Values{
		"username": {user},
		"password": {password},
		"remember": {"1"},
	}

	c.logger.Info("logging in", "url", endpoint.String(), "user", user)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.login.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLogin, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrLogin, resp.StatusCode)
	}
	return nil
}

// AddExhibit submits the exhibit-create form. The CMS answers a redirect
// on success, which counts; a 4xx or 5xx does not.
func (c *Client) AddExhibit(ctx context.Context, fields *extract.FieldSet) error {
	endpoint := c.base.JoinPath(exhibitAddPath)
	form := url.Values{}
	for _, f := range fields.Fields() {
		form.Set(f.Key, f.Value)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create exhibit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.submit.Do(req)
	if err != nil {
		return fmt.Errorf("submit exhibit: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("submit exhibit: %w: status %d", ErrSubmit, resp.StatusCode)
	}
	title, _ := fields.Get(extract.FieldExhibitTitle)
	c.logger.Info("created exhibit", "title", title, "status", resp.StatusCode)
	return nil
}

// AddItem submits one item-create form as multipart, fields first and then
// every binary attachment under its ordinal name.
func (c *Client) AddItem(ctx context.Context, fields *extract.FieldSet) error {
	endpoint := c.base.JoinPath(itemAddPath)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range fields.Fields() {
		if err := w.WriteField(f.Key, f.Value); err != nil {
			return fmt.Errorf("encode item field %s: %w", f.Key, err)
		}
	}
	for _, att := range fields.Files() {
		part, err := w.CreateFormFile(att.Field, att.Name)
		if err != nil {
			return fmt.Errorf("encode attachment %s: %w", att.Name, err)
		}
		if _, err := part.Write(att.Data); err != nil {
			return fmt.Errorf("encode attachment %s: %w", att.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish item form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), &body)
	if err != nil {
		return fmt.Errorf("create item request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.submit.Do(req)
	if err != nil {
		return fmt.Errorf("submit item: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("submit item: %w: status %d", ErrSubmit, resp.StatusCode)
	}
	title, _ := fields.Get(extract.FieldTitle)
	c.logger.Info("created item",
		"title", title, "attachments", len(fields.Files()), "status", resp.StatusCode)
	return nil
}
