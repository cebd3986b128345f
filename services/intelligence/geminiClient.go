package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"meetingroom/models"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrEmptyResponse is returned when the model produced no text part.
var ErrEmptyResponse = errors.New("gemini returned no text")

// GeminiNLU implements NLU with JSON-schema constrained Gemini calls.
type GeminiNLU struct {
	client    *genai.Client
	modelName string
	prompts   *PromptManager
	timeout   time.Duration
}

func NewGeminiNLU(ctx context.Context, apiKey, modelName string, prompts *PromptManager, timeout time.Duration) (*GeminiNLU, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiNLU{client: client, modelName: modelName, prompts: prompts, timeout: timeout}, nil
}

func (g *GeminiNLU) Close() error {
	return g.client.Close()
}

func str(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

var routeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"intent": {
			Type: genai.TypeString,
			Enum: []string{"Check", "Book", "Change", "Cancel", "Mine", "Unknown"},
		},
		"params": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"reservation_id": str("예약 ID"),
				"building":       str("건물명"),
				"floor":          str("층 번호"),
				"room":           str("회의실 이름"),
				"start":          str("YYYY-MM-DDTHH:MM"),
				"end":            str("YYYY-MM-DDTHH:MM"),
				"title":          str("회의 제목"),
				"purpose":        str("회의 목적"),
				"user_name":      str("예약자 이름"),
				"days_ahead":     {Type: genai.TypeInteger, Nullable: true},
			},
		},
		"need_more": {Type: genai.TypeBoolean},
		"ask_user":  str("부족한 정보를 묻는 질문"),
	},
	Required: []string{"intent", "need_more"},
}

var floorSchema = &genai.Schema{Type: genai.TypeInteger, Description: "층 번호", Nullable: true}

var bookSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"building":  str("건물명"),
		"floor":     floorSchema,
		"room":      str("회의실 이름"),
		"user_name": str("예약자 이름"),
		"purpose":   str("회의 목적"),
		"title":     str("회의 제목"),
		"start":     str("YYYY-MM-DDTHH:MM"),
		"end":       str("YYYY-MM-DDTHH:MM"),
	},
	Required: []string{"building", "room", "user_name", "purpose", "title", "start", "end"},
}

var checkSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"building": str("건물명"),
		"floor":    floorSchema,
		"room":     str("회의실 이름"),
		"start":    str("YYYY-MM-DDTHH:MM"),
		"end":      str("YYYY-MM-DDTHH:MM"),
	},
	Required: []string{"building", "room", "start", "end"},
}

// model builds a per-call model so concurrent runs never share system instructions.
func (g *GeminiNLU) model(system string, schema *genai.Schema) *genai.GenerativeModel {
	m := g.client.GenerativeModel(g.modelName)
	m.SetTemperature(0)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	if schema != nil {
		m.ResponseMIMEType = "application/json"
		m.ResponseSchema = schema
	}
	return m
}

func (g *GeminiNLU) generate(ctx context.Context, m *genai.GenerativeModel, input string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	resp, err := m.GenerateContent(ctx, genai.Text(input))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

func (g *GeminiNLU) generateJSON(ctx context.Context, prompt string, params map[string]string, schema *genai.Schema, input string, out any) error {
	system, err := g.prompts.Get(prompt, params)
	if err != nil {
		return err
	}
	text, err := g.generate(ctx, g.model(system, schema), input)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("malformed %s response: %w", prompt, err)
	}
	return nil
}

func (g *GeminiNLU) Classify(ctx context.Context, query string, today time.Time) (*models.RouteOutput, error) {
	var out models.RouteOutput
	params := map[string]string{"today": today.Format(models.DateLayout)}
	if err := g.generateJSON(ctx, PromptRouterIntent, params, routeSchema, query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *GeminiNLU) ExtractBookSlots(ctx context.Context, query string, today time.Time) (*models.BookSlots, error) {
	var out models.BookSlots
	params := map[string]string{"today": today.Format(models.DateLayout)}
	if err := g.generateJSON(ctx, PromptBookSlotsExtract, params, bookSchema, query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *GeminiNLU) ExtractCheckSlots(ctx context.Context, query string, today time.Time) (*models.CheckSlots, error) {
	var out models.CheckSlots
	params := map[string]string{"today": today.Format(models.DateLayout)}
	if err := g.generateJSON(ctx, PromptCheckSlotsExtract, params, checkSchema, query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *GeminiNLU) Summarize(ctx context.Context, params models.Params, result *models.ActionResult) (string, error) {
	system, err := g.prompts.Get(PromptReporter, nil)
	if err != nil {
		return "", err
	}
	p, err := json.Marshal(params)
	if err != nil {
		return "", err
	}
	r, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return g.generate(ctx, g.model(system, nil), fmt.Sprintf("params: %s\nresult: %s", p, r))
}
