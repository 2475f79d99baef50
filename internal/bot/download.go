package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var errInvalidRequest = errors.New("invalid request")

// download fetches an attachment from Discord's CDN.
func (h *implHandler) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download attachment: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	if len(data) > maxDownloadSize {
		return nil, fmt.Errorf("attachment larger than %d bytes", maxDownloadSize)
	}
	return data, nil
}
