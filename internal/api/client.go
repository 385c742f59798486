package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"infini-cli/internal/model"
)

const DefaultBaseURL = "http://localhost:5000/api"

// Client talks to the Infini API gateway. Token may be empty for the auth
// endpoints and must be set (SetSession) before any other call.
type Client struct {
	BaseURL string
	Token   string

	httpClient *http.Client
}

func New(baseURL string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    baseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// SetSession attaches the bearer token used on all authenticated calls.
func (c *Client) SetSession(s *model.Session) {
	if s == nil {
		c.Token = ""
		return
	}
	c.Token = s.Token
}

// httpError is the raw shape of a failed gateway response before an
// operation maps it onto the error taxonomy.
type httpError struct {
	Status  int
	Message string
}

func (e httpError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

func (e httpError) denied() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

type authResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*model.Session, error) {
	var out authResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, authErr("login", err)
	}
	return &model.Session{Token: out.Token, User: out.User}, nil
}

func (c *Client) Register(ctx context.Context, email, password, name string) (*model.Session, error) {
	var out authResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/register", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	}, &out)
	if err != nil {
		return nil, authErr("register", err)
	}
	return &model.Session{Token: out.Token, User: out.User}, nil
}

func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	var out struct {
		Projects []model.Project `json:"projects"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/projects", nil, &out); err != nil {
		return nil, netErr("list projects", err)
	}
	return out.Projects, nil
}

func (c *Client) CreateProject(ctx context.Context, topic string, docType model.DocumentType, title string, outline []string) (*model.Project, error) {
	var out struct {
		Project model.Project `json:"project"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/projects", map[string]any{
		"document_type": docType,
		"title":         title,
		"topic":         topic,
		"outline":       outline,
	}, &out)
	if err != nil {
		return nil, netErr("create project", err)
	}
	return &out.Project, nil
}

func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	err := c.doJSON(ctx, http.MethodDelete, "/projects/"+url.PathEscape(projectID), nil, nil)
	return netErr("delete project", err)
}

func (c *Client) ListSections(ctx context.Context, projectID string) ([]model.Section, error) {
	var out struct {
		Sections []model.Section `json:"sections"`
	}
	path := "/projects/" + url.PathEscape(projectID) + "/sections"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, netErr("list sections", err)
	}
	return out.Sections, nil
}

func (c *Client) SuggestOutline(ctx context.Context, topic string, docType model.DocumentType) ([]string, error) {
	var out struct {
		Outline []string `json:"outline"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/ai/suggest-outline", map[string]any{
		"topic":         topic,
		"document_type": docType,
	}, &out)
	if err != nil {
		return nil, genErr("outline suggestion", err)
	}
	return out.Outline, nil
}

func (c *Client) GenerateAll(ctx context.Context, projectID string) ([]model.Section, error) {
	var out struct {
		Sections []model.Section `json:"sections"`
	}
	path := "/projects/" + url.PathEscape(projectID) + "/generate"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, genErr("content generation", err)
	}
	return out.Sections, nil
}

// RefineSection requests a content revision for one section. The gateway
// returns only the rewritten content; everything else about the section is
// unchanged on the server.
func (c *Client) RefineSection(ctx context.Context, sectionID, instruction string) (string, error) {
	var out struct {
		Content string `json:"content"`
	}
	path := "/sections/" + url.PathEscape(sectionID) + "/refine"
	err := c.doJSON(ctx, http.MethodPost, path, map[string]string{
		"prompt": instruction,
	}, &out)
	if err != nil {
		return "", genErr("refine", err)
	}
	return out.Content, nil
}

func (c *Client) SetFeedback(ctx context.Context, sectionID string, liked *bool) error {
	path := "/sections/" + url.PathEscape(sectionID) + "/feedback"
	err := c.doJSON(ctx, http.MethodPost, path, map[string]any{"liked": liked}, nil)
	return netErr("set feedback", err)
}

func (c *Client) SetComment(ctx context.Context, sectionID, comment string) error {
	path := "/sections/" + url.PathEscape(sectionID) + "/comment"
	err := c.doJSON(ctx, http.MethodPost, path, map[string]string{"comment": comment}, nil)
	return netErr("set comment", err)
}

// ExportProject fetches the rendered document artifact. The payload is opaque
// binary; the content type follows the project's document type.
func (c *Client) ExportProject(ctx context.Context, projectID string) ([]byte, error) {
	path := "/projects/" + url.PathEscape(projectID) + "/export"
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, ExportError{Reason: err.Error()}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ExportError{Reason: err.Error()}
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		if he, ok := err.(httpError); ok && he.denied() {
			return nil, AuthError{Reason: he.Message}
		}
		return nil, ExportError{Reason: err.Error()}
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ExportError{Reason: err.Error()}
	}
	return b, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return req, nil
}

// doJSON issues the request and decodes the JSON response into out (out may
// be nil when the body doesn't matter). It returns httpError for non-2xx
// responses and NetworkError for transport failures; callers map those onto
// the per-operation taxonomy.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	op := method + " " + path

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return NetworkError{Op: op, Reason: err.Error()}
		}
		body = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return NetworkError{Op: op, Reason: err.Error()}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return NetworkError{Op: op, Reason: err.Error()}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NetworkError{Op: op, Reason: "decoding response: " + err.Error()}
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return httpError{Status: resp.StatusCode, Message: readErrorMessage(resp)}
}

// readErrorMessage mirrors the gateway's error convention: a JSON body with
// an "error" field when the handler failed cleanly, arbitrary text otherwise.
func readErrorMessage(resp *http.Response) string {
	b, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(bytes.TrimSpace(b)) == 0 {
		return resp.Status
	}
	var structured struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &structured) == nil && structured.Error != "" {
		return structured.Error
	}
	return strings.TrimSpace(string(b))
}

// authErr maps failures on the auth endpoints: any rejected request means the
// credentials were not accepted; transport failures stay NetworkError.
func authErr(op string, err error) error {
	switch e := err.(type) {
	case nil:
		return nil
	case httpError:
		return AuthError{Reason: e.Message}
	default:
		return err
	}
}

// netErr maps failures on plain CRUD endpoints.
func netErr(op string, err error) error {
	switch e := err.(type) {
	case nil:
		return nil
	case httpError:
		if e.denied() {
			return AuthError{Reason: e.Message}
		}
		return NetworkError{Op: op, Reason: e.Error()}
	default:
		return err
	}
}

// genErr maps failures on the AI endpoints; auth rejections keep their
// meaning so the caller can force re-login.
func genErr(op string, err error) error {
	switch e := err.(type) {
	case nil:
		return nil
	case httpError:
		if e.denied() {
			return AuthError{Reason: e.Message}
		}
		return GenerationError{Op: op, Reason: e.Message}
	case NetworkError:
		return GenerationError{Op: op, Reason: e.Reason}
	default:
		return err
	}
}
