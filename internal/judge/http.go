package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// HTTPJudge asks a remote endpoint for a verdict. The endpoint receives the
// Query as JSON and answers {"correct": bool}.
type HTTPJudge struct {
	url    string
	client *http.Client
	log    *zap.Logger
}

func NewHTTPJudge(url string, client *http.Client, log *zap.Logger) *HTTPJudge {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPJudge{url: url, client: client, log: log}
}

func (j *HTTPJudge) Judge(ctx context.Context, q Query) (bool, error) {
	body, err := json.Marshal(q)
	if err != nil {
		return false, fmt.Errorf("marshal judge query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.url, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("build judge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := j.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("judge request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("judge endpoint returned %d", resp.StatusCode)
	}

	var out struct {
		Correct bool `json:"correct"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("decode judge response: %w", err)
	}
	j.log.Debug("auto-judge verdict", zap.Bool("correct", out.Correct))
	return out.Correct, nil
}
