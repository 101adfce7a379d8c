package narrator

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"github.com/tatianab/dungeon-guardian/internal/catalog"
	"github.com/tatianab/dungeon-guardian/internal/goals"
	"github.com/tatianab/dungeon-guardian/internal/models"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

//go:embed prompts/describe_goal.txt
var describeGoalPrompt string

//go:embed prompts/describe_action.txt
var describeActionPrompt string

//go:embed prompts/reflect_on_failure.txt
var reflectOnFailurePrompt string

var prompts = template.Must(template.New("describe_goal").Parse(describeGoalPrompt))

func init() {
	template.Must(prompts.New("describe_action").Parse(describeActionPrompt))
	template.Must(prompts.New("reflect_on_failure").Parse(reflectOnFailurePrompt))
}

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// memoryWindow is how many earlier reflections go into a failure prompt.
const memoryWindow = 3

type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Gemini narrates with a Gemini model and falls back to the template
// narrator whenever the model cannot answer.
type Gemini struct {
	client   *genai.Client
	model    generator
	fallback Template
	logger   *zap.Logger
}

func NewGemini(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return newGemini(client.GenerativeModel(model), client, logger), nil
}

func newGemini(model generator, client *genai.Client, logger *zap.Logger) *Gemini {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gemini{client: client, model: model, logger: logger}
}

func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *Gemini) DescribeGoal(ctx context.Context, s models.WorldState, goal goals.Goal) string {
	text, err := g.generate(ctx, "describe_goal", struct {
		State models.WorldState
		Goal  string
	}{s, goal.String()})
	if err != nil {
		g.logger.Warn("Falling back to template narration", zap.String("prompt", "describe_goal"), zap.Error(err))
		return g.fallback.DescribeGoal(ctx, s, goal)
	}
	return text
}

func (g *Gemini) DescribeAction(ctx context.Context, s models.WorldState, id catalog.ActionID) string {
	text, err := g.generate(ctx, "describe_action", struct {
		State  models.WorldState
		Action string
	}{s, string(id)})
	if err != nil {
		g.logger.Warn("Falling back to template narration", zap.String("prompt", "describe_action"), zap.Error(err))
		return g.fallback.DescribeAction(ctx, s, id)
	}
	return text
}

func (g *Gemini) ReflectOnFailure(ctx context.Context, s models.WorldState, id catalog.ActionID, reason string, step int, mem *Memory) string {
	var recent []Entry
	if mem != nil {
		recent = mem.Recent(memoryWindow)
	}
	text, err := g.generate(ctx, "reflect_on_failure", struct {
		State  models.WorldState
		Action string
		Reason string
		Memory []Entry
	}{s, string(id), reason, recent})
	if err != nil {
		g.logger.Warn("Falling back to template narration", zap.String("prompt", "reflect_on_failure"), zap.Error(err))
		return g.fallback.ReflectOnFailure(ctx, s, id, reason, step, mem)
	}
	remember(mem, step, id, reason, text)
	return text
}

func (g *Gemini) generate(ctx context.Context, prompt string, data any) (string, error) {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, prompt, data); err != nil {
		return "", err
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(buf.String()))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content returned from Gemini")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response type from Gemini")
	}
	out := strings.TrimSpace(string(text))
	if out == "" {
		return "", fmt.Errorf("empty response from Gemini")
	}
	return out, nil
}
