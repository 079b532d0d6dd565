package sharepoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"catering-operations-backend/internal/services/ingest"
)

const (
	graphBaseURL = "https://graph.microsoft.com/v1.0"
	loginBaseURL = "https://login.microsoftonline.com"
)

// Client downloads documents from a SharePoint drive through the Microsoft
// Graph API using a client-credential token. It performs no retries; a failed
// fetch is terminal for the run that requested it.
type Client struct {
	tenantID     string
	clientID     string
	clientSecret string
	siteURL      string
	http         *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient reads the SharePoint credentials from the environment. A nil
// client with no error means the integration is not configured; callers treat
// that as sync disabled rather than checking credentials per call.
func NewClient() (*Client, error) {
	tenantID := strings.TrimSpace(os.Getenv("SHAREPOINT_TENANT_ID"))
	clientID := strings.TrimSpace(os.Getenv("SHAREPOINT_CLIENT_ID"))
	clientSecret := strings.TrimSpace(os.Getenv("SHAREPOINT_CLIENT_SECRET"))
	if tenantID == "" || clientID == "" || clientSecret == "" {
		return nil, nil
	}

	siteURL := strings.TrimSpace(os.Getenv("SHAREPOINT_SITE_URL"))
	if siteURL == "" {
		return nil, errors.New("SHAREPOINT_SITE_URL is required when credentials are set")
	}

	return &Client{
		tenantID:     tenantID,
		clientID:     clientID,
		clientSecret: clientSecret,
		siteURL:      siteURL,
		http:         &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"scope":         {"https://graph.microsoft.com/.default"},
	}
	endpoint := fmt.Sprintf("%s/%s/oauth2/v2.0/token", loginBaseURL, c.tenantID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if parsed.AccessToken == "" {
		return "", errors.New("token response has no access_token")
	}

	c.token = parsed.AccessToken
	// Refresh a minute early so an almost-expired token is never used.
	c.tokenExpiry = time.Now().Add(time.Duration(parsed.ExpiresIn-60) * time.Second)
	return c.token, nil
}

// DownloadFile fetches one document by drive path and returns its bytes.
// All failure modes come back as an ingest.FetchError.
func (c *Client) DownloadFile(ctx context.Context, filePath string) ([]byte, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, &ingest.FetchError{Path: filePath, Err: err}
	}

	endpoint := fmt.Sprintf("%s/sites/%s/drive/root:%s:/content", graphBaseURL, c.siteURL, filePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &ingest.FetchError{Path: filePath, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ingest.FetchError{Path: filePath, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &ingest.FetchError{
			Path: filePath,
			Err:  fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, ingest.MaxFileSize+1))
	if err != nil {
		return nil, &ingest.FetchError{Path: filePath, Err: err}
	}
	return data, nil
}
