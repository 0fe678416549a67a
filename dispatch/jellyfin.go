package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/datakeeper/scanrelay/scan"
)

const jellyfinTimeout = 10 * time.Second

// JellyfinDispatcher reports changed paths to a Jellyfin (or Emby)
// server's library monitor.
type JellyfinDispatcher struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewJellyfinDispatcher(baseURL, token string, client *http.Client) *JellyfinDispatcher {
	if client == nil {
		client = &http.Client{Timeout: jellyfinTimeout}
	}
	return &JellyfinDispatcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  client,
	}
}

type jellyfinMediaUpdate struct {
	Path       string `json:"Path"`
	UpdateType string `json:"UpdateType"`
}

type jellyfinUpdateBody struct {
	Updates []jellyfinMediaUpdate `json:"Updates"`
}

func (d *JellyfinDispatcher) Dispatch(ctx context.Context, req scan.Request) error {
	body, err := json.Marshal(jellyfinUpdateBody{
		Updates: []jellyfinMediaUpdate{{Path: req.Path.Path, UpdateType: "Modified"}},
	})
	if err != nil {
		return submissionFailed("jellyfin", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/Library/Media/Updated", bytes.NewReader(body))
	if err != nil {
		return submissionFailed("jellyfin", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if d.token != "" {
		httpReq.Header.Set("X-Emby-Token", d.token)
	}

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return submissionFailed("jellyfin", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return submissionFailed("jellyfin", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	return nil
}
