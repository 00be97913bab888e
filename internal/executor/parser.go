package executor

import "strings"

// ActionKind classifies a parsed action block.
type ActionKind string

const (
	// ActionShell runs commands through the shell interpreter.
	ActionShell ActionKind = "shell"
	// ActionFile writes content to a path.
	ActionFile ActionKind = "file"
	// ActionCode runs source through a language interpreter.
	ActionCode ActionKind = "code"
)

// Action is one executable block extracted from a model response.
type Action struct {
	Kind   ActionKind
	Path   string // file target, ActionFile only
	Lang   string // language tag, ActionCode only
	Source string
}

// ResponseParser extracts fenced action blocks from model output.
//
// Recognized fences: "```bash" / "```sh" / "```shell" become shell actions,
// "```file:/path" becomes a file write, any other language tag becomes a code
// action. Untagged fences are prose formatting and are ignored.
type ResponseParser struct{}

func NewResponseParser() *ResponseParser {
	return &ResponseParser{}
}

func (p *ResponseParser) Parse(response string) []Action {
	var actions []Action
	var current *Action
	var body strings.Builder

	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)

		if current != nil {
			if trimmed == "```" {
				current.Source = body.String()
				if keepAction(current) {
					actions = append(actions, *current)
				}
				current = nil
				body.Reset()
				continue
			}
			body.WriteString(line)
			body.WriteByte('\n')
			continue
		}

		if !strings.HasPrefix(trimmed, "```") {
			continue
		}
		info := strings.TrimPrefix(trimmed, "```")
		switch {
		case info == "":
			// Untagged fence: skip its body entirely.
			current = &Action{Kind: ""}
		case info == "bash" || info == "sh" || info == "shell":
			current = &Action{Kind: ActionShell}
		case strings.HasPrefix(info, "file:"):
			current = &Action{Kind: ActionFile, Path: strings.TrimSpace(strings.TrimPrefix(info, "file:"))}
		default:
			current = &Action{Kind: ActionCode, Lang: info}
		}
	}

	// An unterminated fence still counts; the model sometimes stops at the
	// token limit mid-block.
	if current != nil {
		current.Source = body.String()
		if keepAction(current) {
			actions = append(actions, *current)
		}
	}

	return actions
}

func keepAction(a *Action) bool {
	if a.Kind == "" {
		return false
	}
	if a.Kind == ActionFile && a.Path == "" {
		return false
	}
	return strings.TrimSpace(a.Source) != ""
}
