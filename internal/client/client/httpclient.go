package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

const maxResponseBytes = 4 << 20

type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient returns a client for the server at serverURL. A bare
// host:port is treated as http.
func NewHTTPClient(serverURL string, timeout time.Duration) (*HTTPClient, error) {
	if !strings.Contains(serverURL, "://") {
		serverURL = "http://" + serverURL
	}
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q: missing host", serverURL)
	}
	return &HTTPClient{baseURL: u, http: &http.Client{Timeout: timeout}}, nil
}

type messageReply struct {
	Message string `json:"message"`
	Result  bool   `json:"result"`
}

type signUpRequest struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInReply struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type listReply struct {
	Users  []Activity `json:"users"`
	Result bool       `json:"result"`
}

func (c *HTTPClient) SignUp(ctx context.Context, p Profile, password []byte) error {
	req := signUpRequest{FirstName: p.FirstName, LastName: p.LastName, Email: p.Email, Password: string(password)}
	var reply messageReply
	return c.do(ctx, http.MethodPost, "/sign-up", "", req, &reply)
}

func (c *HTTPClient) SignIn(ctx context.Context, email string, password []byte) (string, error) {
	var reply signInReply
	if err := c.do(ctx, http.MethodPost, "/sign-in", "", signInRequest{Email: email, Password: string(password)}, &reply); err != nil {
		return "", err
	}
	if reply.Token == "" {
		return "", errors.New("server returned an empty token")
	}
	return reply.Token, nil
}

func (c *HTTPClient) SignOut(ctx context.Context, token string) error {
	var reply messageReply
	return c.do(ctx, http.MethodPost, "/sign-out", token, nil, &reply)
}

// List fetches the login activity list. token may be empty when the server
// does not protect the list.
func (c *HTTPClient) List(ctx context.Context, token string) ([]Activity, error) {
	var reply listReply
	if err := c.do(ctx, http.MethodGet, "/list", token, nil, &reply); err != nil {
		return nil, err
	}
	if reply.Users == nil {
		return []Activity{}, nil
	}
	return reply.Users, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", "", nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set(common.AccessTokenHeaderName, token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func apiError(code int, data []byte) error {
	var reply messageReply
	msg := http.StatusText(code)
	if err := json.Unmarshal(data, &reply); err == nil && reply.Message != "" {
		msg = reply.Message
	}
	apiErr := &APIError{StatusCode: code, Message: msg}
	if code == http.StatusUnauthorized {
		return fmt.Errorf("%w: %w", ErrUnauthorized, apiErr)
	}
	return apiErr
}
