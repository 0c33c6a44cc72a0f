package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/yukikurage/collab-api/internal/config"
	"github.com/yukikurage/collab-api/internal/models"
)

const draftingPrompt = `You turn meeting notes, emails and chat messages into task drafts for a team task board.

Reply with a JSON object of the form:
{"tasks": [{"title": "...", "description": "...", "priority": "low|medium|high", "dueDate": "2025-10-28T23:59:59Z or null"}]}

- One entry per concrete, actionable piece of work; titles are short and imperative.
- priority is high only for work described as urgent or blocking, low for nice-to-haves, otherwise medium.
- Resolve relative deadlines ("tomorrow", "by Friday") against the current time you are given; use null when no deadline is stated.
- Return {"tasks": []} when the text contains no work.`

var errEmptyCompletion = errors.New("completion returned no choices")

// AIService drafts tasks from free text with an OpenAI chat model.
type AIService struct {
	client *openai.Client
	model  string
	now    func() time.Time
}

// GeneratedTask is a task draft. Drafts are returned to the caller, never stored.
type GeneratedTask struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"dueDate"`
}

type draftResponse struct {
	Tasks []GeneratedTask `json:"tasks"`
}

// NewAIService returns nil when no API key is configured.
func NewAIService(cfg config.OpenAIConfig) *AIService {
	if cfg.APIKey == "" {
		return nil
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}

	return &AIService{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		now:    time.Now,
	}
}

// DraftTasks asks the model for task drafts found in text.
func (s *AIService) DraftTasks(ctx context.Context, text string) ([]GeneratedTask, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: draftingPrompt},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Current time: %s\n\n%s", s.now().UTC().Format(time.RFC3339), text),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errEmptyCompletion
	}

	return parseGeneratedTasks(resp.Choices[0].Message.Content)
}

// parseGeneratedTasks reads {"tasks": [...]} and also tolerates a bare array,
// optionally wrapped in a fenced code block.
func parseGeneratedTasks(content string) ([]GeneratedTask, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "[") {
		var tasks []GeneratedTask
		if err := json.Unmarshal([]byte(content), &tasks); err != nil {
			return nil, fmt.Errorf("parse task drafts: %w", err)
		}
		return tasks, nil
	}

	var resp draftResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return nil, fmt.Errorf("parse task drafts: %w", err)
	}
	return resp.Tasks, nil
}
