package describe

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

	"server/internal/domain"
)

const openAIDefaultTimeout = 15 * time.Second

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIOptions configures the OpenAI-backed describer.
type OpenAIOptions struct {
	APIKey       string
	Model        string
	BaseURL      string
	Organization string
	HTTPClient   *http.Client
	Fallback     Describer
	OnFallback   func(reason string, err error)
}

// OpenAIDescriber calls the chat completions API to write the exposé texts.
// Any upstream failure routes to the fallback describer; callers never see
// an error unless no fallback is configured.
type OpenAIDescriber struct {
	apiKey       string
	model        string
	baseURL      string
	organization string
	client       *http.Client
	fallback     Describer
	onFallback   func(reason string, err error)
}

type openAIChatRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	ResponseFormat *openAIFormat   `json:"response_format,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIFormat struct {
	Type string `json:"type"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type describePayload struct {
	Description         string `json:"description"`
	LocationDescription string `json:"location_description"`
}

// NewOpenAIDescriber builds the describer. The API key is required; use the
// static describer directly when none is configured.
func NewOpenAIDescriber(opts OpenAIOptions) (*OpenAIDescriber, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultOpenAIModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: openAIDefaultTimeout}
	}
	return &OpenAIDescriber{
		apiKey:       strings.TrimSpace(opts.APIKey),
		model:        model,
		baseURL:      baseURL,
		organization: strings.TrimSpace(opts.Organization),
		client:       client,
		fallback:     opts.Fallback,
		onFallback:   opts.OnFallback,
	}, nil
}

func (o *OpenAIDescriber) Describe(ctx context.Context, bundle domain.PropertyBundle) (*Result, error) {
	payload := openAIChatRequest{
		Model:       o.model,
		Temperature: 0.7,
		ResponseFormat: &openAIFormat{
			Type: "json_object",
		},
		Messages: []openAIMessage{
			{Role: "system", Content: systemPromptDE},
			{Role: "user", Content: buildUserPrompt(bundle)},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return o.useFallback(ctx, bundle, "marshal_request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return o.useFallback(ctx, bundle, "build_request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	if o.organization != "" {
		req.Header.Set("OpenAI-Organization", o.organization)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return o.useFallback(ctx, bundle, "request_failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return o.useFallback(ctx, bundle, "bad_status",
			fmt.Errorf("openai status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
	}

	var chat openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return o.useFallback(ctx, bundle, "decode_response", err)
	}
	if len(chat.Choices) == 0 {
		return o.useFallback(ctx, bundle, "empty_response", errors.New("no choices returned"))
	}

	var out describePayload
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &out); err != nil {
		return o.useFallback(ctx, bundle, "decode_content", err)
	}
	if strings.TrimSpace(out.Description) == "" {
		return o.useFallback(ctx, bundle, "empty_description", errors.New("model returned empty description"))
	}

	return &Result{
		Description:         strings.TrimSpace(out.Description),
		LocationDescription: strings.TrimSpace(out.LocationDescription),
		Provider:            openAIProviderName,
	}, nil
}

func (o *OpenAIDescriber) useFallback(ctx context.Context, bundle domain.PropertyBundle, reason string, cause error) (*Result, error) {
	if o.onFallback != nil {
		o.onFallback(reason, cause)
	}
	if o.fallback == nil {
		if cause == nil {
			cause = errors.New(reason)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, cause)
	}
	return o.fallback.Describe(ctx, bundle)
}

const systemPromptDE = "Du bist ein erfahrener Immobilien-Texter. Erstelle einen eleganten, professionellen und verkaufsfördernden Beschreibungstext auf Deutsch für ein Immobilien-Exposé (120-180 Wörter, fließender Text ohne Aufzählungen) sowie eine ansprechende Lagebeschreibung (ca. 150 Wörter: Wohngegend, Verkehrsanbindung, Einkaufsmöglichkeiten, Bildung, Freizeit). Antworte als JSON-Objekt mit den Feldern \"description\" und \"location_description\"."

func buildUserPrompt(bundle domain.PropertyBundle) string {
	var b strings.Builder
	b.WriteString("Erstelle die Exposé-Texte für folgende Immobilie:\n")
	fields := []struct {
		label, key string
	}{
		{"Titel", "title"},
		{"Immobilientyp", "property_type"},
		{"Adresse", "address"},
		{"Stadt", "city"},
		{"Zimmeranzahl", "rooms"},
		{"Wohnfläche (m²)", "area"},
		{"Baujahr", "yearBuilt"},
		{"Zustand", "condition"},
		{"Ausstattung", "equipment"},
		{"Besonderheiten", "features"},
		{"Energieeffizienzklasse", "energy_class"},
	}
	for _, f := range fields {
		if v, ok := bundle[f.key]; ok && v != nil {
			fmt.Fprintf(&b, "- %s: %v\n", f.label, v)
		}
	}
	return b.String()
}

var _ Describer = (*OpenAIDescriber)(nil)
