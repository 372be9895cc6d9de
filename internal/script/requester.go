package script

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"audioverse/internal/config"
	"audioverse/internal/domain/podcast"

	"github.com/sirupsen/logrus"
)

const promptTemplate = "Write a professional podcast script about %s. Include a title and structure it with sections including an introduction, main discussion points, and conclusion."

// Generator produces a script for a topic
type Generator interface {
	Generate(ctx context.Context, topic podcast.Topic) (podcast.Script, error)
}

// Requester asks a completion endpoint for a script and falls back to the
// local template whenever the remote call cannot produce one.
type Requester struct {
	endpoint    string
	model       string
	apiKey      string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

type completionRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

// fallback reasons, logged with every local generation
const (
	reasonNoCredential = "no_credential"
	reasonNetwork      = "network"
	reasonStatus       = "status"
	reasonParse        = "parse"
)

type remoteError struct {
	reason string
	err    error
}

func (e *remoteError) Error() string { return e.err.Error() }
func (e *remoteError) Unwrap() error { return e.err }

func NewRequester(cfg config.ScriptConfig) *Requester {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Requester{
		endpoint:    cfg.Endpoint,
		model:       cfg.Model,
		apiKey:      strings.TrimSpace(cfg.APIKey),
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// Generate never fails: every remote problem ends in the local template.
func (r *Requester) Generate(ctx context.Context, topic podcast.Topic) (podcast.Script, error) {
	if r.apiKey == "" {
		logrus.WithField("reason", reasonNoCredential).Warn("No script API key configured, using local template")
		return Fallback(topic), nil
	}

	content, err := r.complete(ctx, topic)
	if err != nil {
		reason := reasonNetwork
		if re, ok := err.(*remoteError); ok {
			reason = re.reason
		}
		logrus.WithError(err).WithFields(logrus.Fields{
			"reason": reason,
			"topic":  topic.String(),
		}).Warn("Script generation failed, using local template")
		return Fallback(topic), nil
	}

	script := podcast.Script{
		Title:   ExtractTitle(content, topic),
		Content: content,
	}

	logrus.WithFields(logrus.Fields{
		"title":  script.Title,
		"length": len(content),
	}).Info("Generated script from completion endpoint")

	return script, nil
}

func (r *Requester) complete(ctx context.Context, topic podcast.Topic) (string, error) {
	payload := completionRequest{
		Model:       r.model,
		Prompt:      Prompt(topic),
		MaxTokens:   r.maxTokens,
		Temperature: r.temperature,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", &remoteError{reason: reasonParse, err: fmt.Errorf("failed to encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &remoteError{reason: reasonNetwork, err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", &remoteError{reason: reasonNetwork, err: fmt.Errorf("failed to reach completion endpoint: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return "", &remoteError{reason: reasonStatus, err: fmt.Errorf("completion endpoint returned status %d", resp.StatusCode)}
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &remoteError{reason: reasonParse, err: fmt.Errorf("failed to decode completion: %w", err)}
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Text) == "" {
		return "", &remoteError{reason: reasonParse, err: fmt.Errorf("completion contained no text")}
	}

	return out.Choices[0].Text, nil
}

// Prompt renders the instruction sent to the completion endpoint
func Prompt(topic podcast.Topic) string {
	return fmt.Sprintf(promptTemplate, topic)
}
