package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

// NewClient fails fast on missing credentials so a misconfiguration surfaces
// before any user-facing stream starts.
func NewClient(baseURL, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("model: base url is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("model: api key is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("model: model name is required")
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		Client:  &http.Client{Timeout: 90 * time.Second},
	}, nil
}

type chatReq struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatResp struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Client) newRequest(ctx context.Context, stream bool, messages []Message) (*http.Request, error) {
	b, err := json.Marshal(chatReq{
		Model:    c.Model,
		Messages: messages,
		Stream:   stream,
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/chat/completions", strings.TrimRight(c.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	return req, nil
}

func upstreamError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
	msg := strings.TrimSpace(string(body))
	return fmt.Errorf("model api error (%d): %s", resp.StatusCode, msg)
}

func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	req, err := c.newRequest(ctx, false, messages)
	if err != nil {
		return "", err
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", upstreamError(resp)
	}

	var decoded chatResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return "", errors.New(decoded.Error.Message)
	}
	if len(decoded.Choices) == 0 {
		return "", errors.New("model: empty response")
	}
	return decoded.Choices[0].Message.Content, nil
}

// StreamChat opens one upstream connection and emits text deltas as they
// arrive. Cancelling ctx closes the connection; the sequence is not
// restartable.
func (c *Client) StreamChat(ctx context.Context, messages []Message) (<-chan string, <-chan error) {
	chunks := make(chan string, 16)
	errs := make(chan error, 1)

	go func() {
		defer close(chunks)
		defer close(errs)

		req, err := c.newRequest(ctx, true, messages)
		if err != nil {
			errs <- err
			return
		}

		if c.Client.Timeout < 30*time.Second {
			c.Client.Timeout = 0 // no global timeout; ctx controls it
		}

		resp, err := c.Client.Do(req)
		if err != nil {
			errs <- err
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			errs <- upstreamError(resp)
			return
		}

		var dec DeltaDecoder
		buf := make([]byte, 32*1024)
		sawBytes := false

		for {
			n, readErr := resp.Body.Read(buf)
			if n > 0 {
				sawBytes = true
				for _, frag := range dec.Feed(buf[:n]) {
					select {
					case chunks <- frag:
					case <-ctx.Done():
						return
					}
				}
				if dec.Done() {
					return
				}
			}
			if readErr != nil {
				if readErr != io.EOF {
					errs <- readErr
					return
				}
				if !sawBytes {
					errs <- errors.New("model: empty response body")
				}
				return
			}
		}
	}()

	return chunks, errs
}
