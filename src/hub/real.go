package hub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jeff-dagenais/tklbam/src/profile"
)

// DefaultBaseURL is the hub API endpoint.
const DefaultBaseURL = "https://hub.turnkeylinux.org/api/backup"

// HTTPClient talks to the real hub over HTTPS.
type HTTPClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// New returns a hub client authenticated with the subscription API key.
func New(baseURL, apiKey string) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) GetProfile(version string, since time.Time) (*profile.Profile, error) {
	q := url.Values{"version": {version}}
	if !since.IsZero() {
		q.Set("since", strconv.FormatInt(since.Unix(), 10))
	}
	var p profile.Profile
	status, err := c.get("/profile?"+q.Encode(), &p)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotModified {
		return nil, nil
	}
	return &p, nil
}

func (c *HTTPClient) GetCredentials() (Credentials, error) {
	var creds Credentials
	if _, err := c.get("/credentials", &creds); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

func (c *HTTPClient) UpdatedBackup(address string) error {
	req, err := http.NewRequest(http.MethodPut, c.BaseURL+"/updated", nil)
	if err != nil {
		return &UnavailableError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("X-Backup-Address", address)
	resp, err := c.Client.Do(req)
	if err != nil {
		return &UnavailableError{Err: err}
	}
	defer resp.Body.Close()
	return c.checkStatus(resp.StatusCode)
}

func (c *HTTPClient) get(path string, v interface{}) (int, error) {
	req, err := http.NewRequest(http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return 0, &UnavailableError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	resp, err := c.Client.Do(req)
	if err != nil {
		return 0, &UnavailableError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotModified {
		return resp.StatusCode, nil
	}
	if err := c.checkStatus(resp.StatusCode); err != nil {
		return resp.StatusCode, err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return resp.StatusCode, &UnavailableError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return resp.StatusCode, nil
}

func (c *HTTPClient) checkStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &NotSubscribedError{Msg: "hub rejected API key (HTTP " + strconv.Itoa(status) + ")"}
	case status >= 300:
		return &UnavailableError{Err: fmt.Errorf("hub returned HTTP %d", status)}
	}
	return nil
}
