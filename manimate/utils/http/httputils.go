package httputils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// StatusError is returned when the upstream answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status: %d - %s", e.StatusCode, e.Body)
}

func newJSONRequest(ctx context.Context, url string, body interface{}, headers map[string]string) (*http.Request, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// GetJSON fetches url and decodes a 200 response into resp.
func GetJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, resp interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r, err := client.Do(req)
	if err != nil {
		return err
	}
	defer r.Body.Close()
	if r.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(r.Body, 4096))
		return &StatusError{StatusCode: r.StatusCode, Body: string(b)}
	}
	return json.NewDecoder(r.Body).Decode(resp)
}

// PostStream returns the open response body; the caller closes it.
func PostStream(ctx context.Context, client *http.Client, url string, headers map[string]string, body interface{}) (io.ReadCloser, error) {
	req, err := newJSONRequest(ctx, url, body, headers)
	if err != nil {
		return nil, err
	}
	r, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if r.StatusCode != http.StatusOK {
		defer r.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(r.Body, 4096))
		return nil, &StatusError{StatusCode: r.StatusCode, Body: string(b)}
	}
	return r.Body, nil
}
