package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Provider is one remote translation API.
type Provider interface {
	Name() string
	Translate(ctx context.Context, text, source, target string) (string, error)
}

var errEmptyTranslation = errors.New("provider returned an empty translation")

func doJSON(ctx context.Context, client *http.Client, req *http.Request, out any) error {
	req = req.WithContext(ctx)
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func postJSON(ctx context.Context, client *http.Client, endpoint string, headers map[string]string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return doJSON(ctx, client, req, out)
}

// LibreTranslate calls a LibreTranslate /translate endpoint.
type LibreTranslate struct {
	Endpoint string
	Client   *http.Client
}

func (p *LibreTranslate) Name() string { return "libretranslate" }

func (p *LibreTranslate) Translate(ctx context.Context, text, source, target string) (string, error) {
	var out struct {
		TranslatedText string `json:"translatedText"`
	}
	body := map[string]string{"q": text, "source": source, "target": target, "format": "text"}
	if err := postJSON(ctx, p.Client, p.Endpoint, nil, body, &out); err != nil {
		return "", err
	}
	if out.TranslatedText == "" {
		return "", errEmptyTranslation
	}
	return out.TranslatedText, nil
}

// Lingva calls a Lingva /api/v1/{source}/{target}/{query} endpoint.
type Lingva struct {
	BaseURL string
	Client  *http.Client
}

func (p *Lingva) Name() string { return "lingva" }

func (p *Lingva) Translate(ctx context.Context, text, source, target string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/%s/%s",
		strings.TrimRight(p.BaseURL, "/"), url.PathEscape(source), url.PathEscape(target), url.PathEscape(text))
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	var out struct {
		Translation string `json:"translation"`
	}
	if err := doJSON(ctx, p.Client, req, &out); err != nil {
		return "", err
	}
	if out.Translation == "" {
		return "", errEmptyTranslation
	}
	return out.Translation, nil
}

// Yandex calls the Yandex Cloud translate v2 endpoint.
type Yandex struct {
	Endpoint string
	APIKey   string
	Client   *http.Client
}

func (p *Yandex) Name() string { return "yandex" }

func (p *Yandex) Translate(ctx context.Context, text, source, target string) (string, error) {
	body := map[string]any{
		"texts":              []string{text},
		"targetLanguageCode": target,
	}
	if source != autoDetect {
		body["sourceLanguageCode"] = source
	}
	var headers map[string]string
	if p.APIKey != "" {
		headers = map[string]string{"Authorization": "Api-Key " + p.APIKey}
	}
	var out struct {
		Translations []struct {
			Text string `json:"text"`
		} `json:"translations"`
	}
	if err := postJSON(ctx, p.Client, p.Endpoint, headers, body, &out); err != nil {
		return "", err
	}
	if len(out.Translations) == 0 || out.Translations[0].Text == "" {
		return "", errEmptyTranslation
	}
	return out.Translations[0].Text, nil
}
