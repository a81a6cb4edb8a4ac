// Package translate adapts the DeepL REST API to the core Translator
// contract. The provider is treated as unreliable: any non-OK status or
// malformed body is an error for the caller to contain.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Babel/internal/config"
	"github.com/dkeye/Babel/internal/domain"
)

type Client struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

type request struct {
	Text       []string `json:"text"`
	SourceLang string   `json:"source_lang"`
	TargetLang string   `json:"target_lang"`
}

type response struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		apiKey: cfg.DeepLAPIKey,
		apiURL: cfg.DeepLAPIURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) Translate(ctx context.Context, text string, source, target domain.Lang) (string, error) {
	body, err := json.Marshal(request{
		Text:       []string{text},
		SourceLang: strings.ToUpper(string(source)),
		TargetLang: strings.ToUpper(string(target)),
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "DeepL-Auth-Key "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepl request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("deepl returned status %d", resp.StatusCode)
	}

	var parsed response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Translations) == 0 {
		return "", fmt.Errorf("deepl returned no translations")
	}

	log.Debug().Str("module", "translate").Str("source", string(source)).Str("target", string(target)).Msg("translated utterance")
	return parsed.Translations[0].Text, nil
}
