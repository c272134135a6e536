package status

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/h2non/filetype"
)

// filetype only needs the first 261 bytes to classify a payload.
const probeHeadLen = 261

// ProbeResult describes what a mount is actually serving.
type ProbeResult struct {
	MIME    string
	IsAudio bool
}

// ProbeMount reads the head of a live stream and classifies its payload.
// It answers whether a mount that the relay reports as up is really
// serving audio, and with which content type.
func ProbeMount(ctx context.Context, streamURL string) (*ProbeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return nil, fmt.Errorf("probe request error: %w", err)
	}

	resp, err := newHTTPClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("probe fetch error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("probe: mount returned %s", resp.Status)
	}

	head := make([]byte, probeHeadLen)
	n, err := io.ReadFull(resp.Body, head)
	if err != nil && n == 0 {
		return nil, fmt.Errorf("probe read error: %w", err)
	}
	head = head[:n]

	kind, err := filetype.Match(head)
	if err != nil {
		return nil, fmt.Errorf("probe match error: %w", err)
	}

	res := &ProbeResult{IsAudio: filetype.IsAudio(head)}
	if kind == filetype.Unknown {
		// Raw MPEG audio frames have no container magic; fall back to
		// whatever the mount announced.
		res.MIME = resp.Header.Get("Content-Type")
		return res, nil
	}

	res.MIME = fmt.Sprintf("%s/%s", kind.MIME.Type, kind.MIME.Subtype)
	return res, nil
}
