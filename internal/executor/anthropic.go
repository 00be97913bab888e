// Package executor turns a task description into model-driven work: it sends
// the task to the Anthropic API, parses the response for fenced action
// blocks, and runs them locally.
package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"

	"github.com/pmorel/tasker/internal/queue"
)

const (
	defaultModel     = "claude-sonnet-4-5"
	defaultMaxTokens = 4096
)

const systemPrompt = `You are an autonomous task execution agent.

You are running unattended. Execute the given task completely, try
alternative approaches when something fails, and report what you did.

Structure every action as a fenced block:

` + "```bash" + `
command to execute
` + "```" + `

` + "```file:/path/to/file" + `
content to write to that file
` + "```" + `

` + "```python" + `
code to run
` + "```" + `

Finish with a short status summary in plain text.`

// Options configures the Anthropic executor.
type Options struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	WorkDir   string
}

// Anthropic executes tasks through the Anthropic messages API.
type Anthropic struct {
	client    anthropic.Client
	modelName string
	maxTokens int
	parser    *ResponseParser
	runner    *ActionRunner
}

// NewAnthropic builds an executor from the given options.
func NewAnthropic(opts Options) (*Anthropic, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("anthropic executor: API key is required")
	}

	modelName := opts.Model
	if modelName == "" {
		modelName = defaultModel
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.Timeout > 0 {
		clientOpts = append(clientOpts, option.WithRequestTimeout(opts.Timeout))
	} else {
		clientOpts = append(clientOpts, option.WithRequestTimeout(120*time.Second))
	}

	return &Anthropic{
		client:    anthropic.NewClient(clientOpts...),
		modelName: modelName,
		maxTokens: maxTokens,
		parser:    NewResponseParser(),
		runner:    NewActionRunner(opts.WorkDir),
	}, nil
}

// Execute sends the task to the model, runs the actions it returns, and
// reports the combined result. A model or transport error fails the task;
// individual action failures are recorded in the result instead.
func (a *Anthropic) Execute(ctx context.Context, t *queue.Task) (*queue.ExecutionResult, error) {
	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.modelName),
		MaxTokens:   int64(a.maxTokens),
		Temperature: param.NewOpt(0.7),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(taskPrompt(t))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic call: %w", err)
	}

	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}
	response := content.String()

	actions := a.parser.Parse(response)
	results := a.runner.Run(ctx, actions)

	return &queue.ExecutionResult{
		Response:        response,
		ActionsExecuted: len(actions),
		Results:         results,
		FinishedAt:      time.Now(),
	}, nil
}

func taskPrompt(t *queue.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n", t.Description)
	fmt.Fprintf(&b, "Priority: %d/%d\n", t.Priority, queue.MaxPriority)
	if len(t.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(t.Tags, ", "))
	}
	fmt.Fprintf(&b, "Created: %s\n", t.CreatedAt.Format(time.RFC3339))
	if t.Notes != "" {
		fmt.Fprintf(&b, "\nDetails: %s\n", t.Notes)
	}
	b.WriteString("\nExecute this task now and report completion status.")
	return b.String()
}
