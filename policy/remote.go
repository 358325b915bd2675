package policy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"hexit/utils"
)

type RemoteOption func(r *Remote)

func WithHTTPClient(client *http.Client) RemoteOption {
	return func(r *Remote) {
		if client != nil {
			r.client = client
		}
	}
}

// WithoutCheckpointCheck skips the local directory check on Restore, for
// servers that resolve checkpoints on their own filesystem.
func WithoutCheckpointCheck() RemoteOption {
	return func(r *Remote) {
		r.checkLocal = false
	}
}

// Remote is a Service backed by an inference server speaking JSON over HTTP.
type Remote struct {
	baseURL    string
	client     *http.Client
	checkLocal bool

	mu       sync.Mutex
	sessions map[string]*remoteSession
}

var _ Service = (*Remote)(nil)

func NewRemote(baseURL string, options ...RemoteOption) *Remote {
	r := &Remote{
		baseURL:    baseURL,
		client:     &http.Client{Timeout: 30 * time.Second},
		checkLocal: true,
		sessions:   make(map[string]*remoteSession),
	}
	for _, option := range options {
		option(r)
	}
	return r
}

type restoreRequest struct {
	Checkpoint string `json:"checkpoint"`
}

type restoreResponse struct {
	Session string `json:"session"`
}

type predictRequest struct {
	Session string      `json:"session"`
	States  [][]float64 `json:"states"`
}

type predictResponse struct {
	Scores [][]float64 `json:"scores"`
}

func (r *Remote) Restore(ctx context.Context, checkpoint string) (Session, error) {
	if r.checkLocal {
		if err := utils.RequireDir(checkpoint); err != nil {
			return nil, fmt.Errorf("failed to restore checkpoint: %w", err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[checkpoint]; ok {
		return s, nil
	}

	var resp restoreResponse
	if err := r.post(ctx, "/restore", restoreRequest{Checkpoint: checkpoint}, &resp); err != nil {
		return nil, fmt.Errorf("failed to restore checkpoint %s: %w", checkpoint, err)
	}
	log.Ctx(ctx).Info().Str("checkpoint", checkpoint).Str("session", resp.Session).Msg("restored policy")

	s := &remoteSession{remote: r, checkpoint: checkpoint, id: resp.Session}
	r.sessions[checkpoint] = s
	return s, nil
}

func (r *Remote) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("policy server returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

type remoteSession struct {
	remote     *Remote
	checkpoint string
	id         string
}

func (s *remoteSession) Checkpoint() string { return s.checkpoint }

func (s *remoteSession) Scores(ctx context.Context, vectors [][]float64) ([][]float64, error) {
	var resp predictResponse
	if err := s.remote.post(ctx, "/predict", predictRequest{Session: s.id, States: vectors}, &resp); err != nil {
		return nil, err
	}
	return resp.Scores, nil
}
