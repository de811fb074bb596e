package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/config"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
)

// Inline request data is capped by the API; larger videos are rejected before upload.
const maxVideoBytes = 20 << 20

const prompt = `You are an emergency triage assistant. Watch the attached video recorded by a user who pressed an SOS button.
Decide whether it shows a real emergency and which single service should respond.
Respond with JSON only:
{"is_emergency": bool, "primary_service": "Police" | "Ambulance" | "Fire Brigade" | null, "confidence": "High" | "Medium" | "Low" | null, "reason": string}
When is_emergency is false, primary_service and confidence must be null.`

var ErrEmptyResponse = errors.New("classifier returned no content")

type Classifier struct {
	logger *slog.Logger
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
	http   *http.Client
}

func New(ctx context.Context, logger *slog.Logger, cfg config.ClassifierConfig) (*Classifier, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, e.Wrap("gemini.New", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = responseSchema()
	model.SetTemperature(0)

	logger.Info("Gemini classifier ready", slog.String("model", cfg.Model))

	return &Classifier{
		logger: logger,
		client: client,
		model:  model,
		name:   cfg.Model,
		http:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"is_emergency":    {Type: genai.TypeBoolean},
			"primary_service": {Type: genai.TypeString, Nullable: true, Enum: []string{"Police", "Ambulance", "Fire Brigade"}},
			"confidence":      {Type: genai.TypeString, Nullable: true, Enum: []string{"High", "Medium", "Low"}},
			"reason":          {Type: genai.TypeString},
		},
		Required: []string{"is_emergency", "primary_service", "confidence"},
	}
}

func (c *Classifier) Classify(ctx context.Context, ev domain.SOSCreated) (domain.Classification, error) {
	const op = "gemini.Classifier.Classify"

	video, mime, err := c.download(ctx, ev.VideoURL)
	if err != nil {
		return domain.Classification{}, e.Wrap(op, err)
	}

	parts := []genai.Part{genai.Blob{MIMEType: mime, Data: video}, genai.Text(prompt)}
	if msg := strings.TrimSpace(ev.Message); msg != "" {
		parts = append(parts, genai.Text("Reporter message: "+msg))
	}

	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("%s: %w: %s", op, e.ErrUpstreamUnavailable, err.Error())
	}

	out, err := parse(responseText(resp))
	if err != nil {
		return domain.Classification{}, e.Wrap(op, err)
	}
	out.Model = c.name
	out.ClassifiedAt = time.Now().UTC()

	c.logger.Debug("video classified",
		slog.String("op", op),
		slog.String("incident_id", ev.IncidentID.String()),
		slog.Bool("is_emergency", out.IsEmergency),
	)
	return out, nil
}

func (c *Classifier) download(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("video url: %w", e.ErrInvalidInput)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch video: %w: %s", e.ErrUpstreamUnavailable, err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, "", fmt.Errorf("fetch video: %w", e.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, "", fmt.Errorf("fetch video: status %d: %w", resp.StatusCode, e.ErrUpstreamUnavailable)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxVideoBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read video: %w: %s", e.ErrUpstreamUnavailable, err.Error())
	}
	if len(data) > maxVideoBytes {
		return nil, "", fmt.Errorf("video larger than %d bytes: %w", maxVideoBytes, e.ErrInvalidInput)
	}

	mime := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(mime, "video/") {
		mime = "video/mp4"
	}
	return data, mime, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		if sb.Len() > 0 {
			break
		}
	}
	return sb.String()
}

// parse accepts the model output, tolerating a fenced code block around the JSON.
func parse(text string) (domain.Classification, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Classification{}, ErrEmptyResponse
	}

	var c domain.Classification
	if err := json.Unmarshal([]byte(text), &c); err != nil {
		return domain.Classification{}, fmt.Errorf("decode classifier output: %w", err)
	}
	if !c.IsEmergency {
		c.PrimaryService = nil
		c.Confidence = nil
	}
	return c, nil
}

func (c *Classifier) Close() error {
	return c.client.Close()
}
