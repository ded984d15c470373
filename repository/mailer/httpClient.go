package mailerrepo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"bookgalaxy/util/httpx"
)

type httpSender struct {
	url    string
	apiKey string
	from   string
	client *http.Client
}

// NewHTTP posts each message as JSON to a mail relay.
func NewHTTP(url, apiKey, from string) Sender {
	return &httpSender{url: url, apiKey: apiKey, from: from, client: httpx.Client()}
}

func (s *httpSender) Send(ctx context.Context, m Message) error {
	b, err := json.Marshal(map[string]string{
		"from":    s.from,
		"to":      m.To,
		"subject": m.Subject,
		"text":    m.Body,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mail relay: %s: %s", resp.Status, bytes.TrimSpace(msg))
	}
	return nil
}
