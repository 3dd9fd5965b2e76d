package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/daywatch-app/daywatch/internal/daemon"
)

// apiBase returns the daemon's API base URL from the on-disk config.
func apiBase() (string, error) {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("http://%s:%d", cfg.API.Host, cfg.API.Port), nil
}

var apiClient = &http.Client{Timeout: 5 * time.Second}

// apiGet fetches a JSON document from the daemon and decodes it into out.
func apiGet(path string, out interface{}) error {
	base, err := apiBase()
	if err != nil {
		return err
	}

	resp, err := apiClient.Get(base + path)
	if err != nil {
		return fmt.Errorf("is the daemon running? (daywatch serve): %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// apiPost sends a JSON body (or nothing) to the daemon.
func apiPost(path string, body interface{}) error {
	base, err := apiBase()
	if err != nil {
		return err
	}

	var r io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(buf)
	}

	resp, err := apiClient.Post(base+path, "application/json", r)
	if err != nil {
		return fmt.Errorf("is the daemon running? (daywatch serve): %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return nil
}

func apiError(resp *http.Response) error {
	var e struct {
		Error string `json:"error"`
	}
	if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
		return fmt.Errorf("%s", e.Error)
	}
	return fmt.Errorf("daemon returned %s", resp.Status)
}
