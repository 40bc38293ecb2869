package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avatarctic/plate-checker/go/internal/core/domain/plate"
	"github.com/avatarctic/plate-checker/go/internal/core/ports"
	"github.com/sirupsen/logrus"
)

// RegistryConfig holds the plate registry endpoints and call limits.
type RegistryConfig struct {
	SessionURL string
	CheckURL   string
	// Timeout bounds each of the two calls separately.
	Timeout   time.Duration
	UserAgent string
	// MaxBodyBytes caps how much of a response body is read.
	MaxBodyBytes int64
}

// Client implements ports.PlateRegistry over HTTP. Calls are fire-once: no retries.
type Client struct {
	config *RegistryConfig
	http   *http.Client
	logger *logrus.Logger
}

// NewClient creates a registry client. A nil httpClient gets a default one
// without a client-wide timeout; per-call deadlines come from config.Timeout.
func NewClient(config *RegistryConfig, httpClient *http.Client, logger *logrus.Logger) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = 1 << 20
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Client{config: config, http: httpClient, logger: logger}
}

// StartSession asks the registry for a session and keeps the cookies it sets.
func (c *Client) StartSession(ctx context.Context) (*ports.RegistrySession, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.SessionURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build session request: %w", err)
	}
	c.decorate(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observeCall("session", "error", start)
		return nil, fmt.Errorf("session request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, c.config.MaxBodyBytes))
	observeCall("session", strconv.Itoa(resp.StatusCode), start)

	if resp.StatusCode >= 400 {
		return nil, &ports.SessionStatusError{Status: resp.StatusCode}
	}
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		c.logger.WithField("status", resp.StatusCode).Warn("plate registry session started without cookies")
	}
	return &ports.RegistrySession{Cookies: cookies, StartedAt: start}, nil
}

// Check posts the plate to the registry's check endpoint within session.
func (c *Client) Check(ctx context.Context, session *ports.RegistrySession, key plate.Key) (*ports.RegistryResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	body := EncodeCheckForm(key).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.CheckURL, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build check request: %w", err)
	}
	c.decorate(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	if session != nil {
		for _, ck := range session.Cookies {
			req.AddCookie(ck)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observeCall("check", "error", start)
		return nil, fmt.Errorf("check request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxBodyBytes))
	if err != nil {
		observeCall("check", "error", start)
		return nil, fmt.Errorf("read check response: %w", err)
	}
	observeCall("check", strconv.Itoa(resp.StatusCode), start)

	contentType := resp.Header.Get("Content-Type")
	return &ports.RegistryResponse{
		Status:      resp.StatusCode,
		ContentType: contentType,
		Payload:     DecodePayload(contentType, raw),
		Raw:         raw,
	}, nil
}

func (c *Client) decorate(req *http.Request) {
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
}

// EncodeCheckForm builds the check form: fixed plate metadata plus one field
// per character position, character1 through character14, unset ones empty.
func EncodeCheckForm(key plate.Key) url.Values {
	form := url.Values{}
	form.Set("plateType", "personalised")
	form.Set("vehicleCategory", "passenger")
	form.Set("plateFormat", "standard")
	form.Set("plate", key.String())
	form.Set("plateLength", strconv.Itoa(len([]rune(key.String()))))
	for i, ch := range key.Characters() {
		form.Set("character"+strconv.Itoa(i+1), ch)
	}
	return form
}

// DecodePayload turns a response body into what the interpreter consumes:
// nil for an empty body, a decoded JSON value when the body is JSON, text otherwise.
func DecodePayload(contentType string, raw []byte) any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	mediaType, _, _ := mime.ParseMediaType(contentType)
	looksJSON := trimmed[0] == '{' || trimmed[0] == '['
	if mediaType == "application/json" || strings.HasSuffix(mediaType, "+json") || looksJSON {
		var v any
		if err := json.Unmarshal(trimmed, &v); err == nil {
			return v
		}
	}
	return string(raw)
}
