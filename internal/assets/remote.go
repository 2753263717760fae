package assets

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

type remoteObject struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// RemoteStore keeps payloads in an HTTP object service:
// POST {base}/objects/{prefix} (multipart "file") returns {"key","url"},
// DELETE {base}/objects/{key} removes it.
type RemoteStore struct {
	client  *resty.Client
	baseURL string
}

// NewRemoteStore creates a client for the object service at baseURL
func NewRemoteStore(baseURL, token string) *RemoteStore {
	baseURL = strings.TrimRight(baseURL, "/")
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(5*time.Minute).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(3*time.Second).
		SetHeader("Accept", "application/json")
	if token != "" {
		client.SetAuthToken(token)
	}
	return &RemoteStore{client: client, baseURL: baseURL}
}

func (s *RemoteStore) Put(ctx context.Context, prefix string, up Upload) (string, error) {
	var obj remoteObject
	resp, err := s.client.R().
		SetContext(ctx).
		SetFileReader("file", objectName(prefix, up, time.Now()), up.Body).
		SetResult(&obj).
		SetPathParam("prefix", prefix).
		Post("/objects/{prefix}")
	if err != nil {
		return "", fmt.Errorf("upload to asset service: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("asset service returned %s", resp.Status())
	}
	if obj.Key == "" {
		return "", fmt.Errorf("asset service returned no key")
	}
	return obj.Key, nil
}

func (s *RemoteStore) URL(ref string) string {
	if ref == "" {
		return ""
	}
	return s.baseURL + "/objects/" + ref
}

func (s *RemoteStore) Delete(ctx context.Context, ref string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetRawPathParam("key", ref).
		Delete("/objects/{key}")
	if err != nil {
		return fmt.Errorf("delete from asset service: %w", err)
	}
	if resp.IsError() && resp.StatusCode() != http.StatusNotFound {
		return fmt.Errorf("asset service returned %s", resp.Status())
	}
	return nil
}
