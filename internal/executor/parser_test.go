package executor

import "testing"

func TestParseShellBlock(t *testing.T) {
	p := NewResponseParser()

	actions := p.Parse("I'll list the files first.\n```bash\nls -la\necho done\n```\nAll set.")
	if len(actions) != 1 {
		t.Fatalf("got %d actions, want 1", len(actions))
	}
	if actions[0].Kind != ActionShell {
		t.Errorf("Kind: got %q", actions[0].Kind)
	}
	if actions[0].Source != "ls -la\necho done\n" {
		t.Errorf("Source: got %q", actions[0].Source)
	}
}

func TestParseFileBlock(t *testing.T) {
	p := NewResponseParser()

	actions := p.Parse("```file:notes/todo.md\n# Todo\n- water plants\n```")
	if len(actions) != 1 {
		t.Fatalf("got %d actions, want 1", len(actions))
	}
	a := actions[0]
	if a.Kind != ActionFile || a.Path != "notes/todo.md" {
		t.Errorf("got %+v", a)
	}
	if a.Source != "# Todo\n- water plants\n" {
		t.Errorf("Source: got %q", a.Source)
	}
}

func TestParseCodeBlock(t *testing.T) {
	p := NewResponseParser()

	actions := p.Parse("```python\nprint('hi')\n```")
	if len(actions) != 1 {
		t.Fatalf("got %d actions, want 1", len(actions))
	}
	if actions[0].Kind != ActionCode || actions[0].Lang != "python" {
		t.Errorf("got %+v", actions[0])
	}
}

func TestParseMixedResponse(t *testing.T) {
	p := NewResponseParser()

	response := `First the setup:
` + "```sh" + `
mkdir -p out
` + "```" + `
Then the report:
` + "```file:out/report.txt" + `
done
` + "```" + `
And a check:
` + "```python" + `
print("ok")
` + "```" + `
Task complete.`

	actions := p.Parse(response)
	if len(actions) != 3 {
		t.Fatalf("got %d actions, want 3", len(actions))
	}
	kinds := []ActionKind{actions[0].Kind, actions[1].Kind, actions[2].Kind}
	want := []ActionKind{ActionShell, ActionFile, ActionCode}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("action %d: got %q, want %q", i, kinds[i], want[i])
		}
	}
}

func TestParseIgnoresUntaggedFences(t *testing.T) {
	p := NewResponseParser()

	actions := p.Parse("Example output:\n```\nnot a command\n```\ndone")
	if len(actions) != 0 {
		t.Fatalf("got %d actions from untagged fence", len(actions))
	}
}

func TestParseSkipsEmptyBlocks(t *testing.T) {
	p := NewResponseParser()

	actions := p.Parse("```bash\n\n```\n```file:\nbody\n```")
	if len(actions) != 0 {
		t.Fatalf("got %d actions, want 0", len(actions))
	}
}

func TestParseUnterminatedBlock(t *testing.T) {
	p := NewResponseParser()

	actions := p.Parse("```bash\necho truncated")
	if len(actions) != 1 {
		t.Fatalf("got %d actions, want 1", len(actions))
	}
	if actions[0].Source != "echo truncated\n" {
		t.Errorf("Source: got %q", actions[0].Source)
	}
}

func TestParseNoActions(t *testing.T) {
	p := NewResponseParser()

	if actions := p.Parse("Nothing to execute, the task is informational."); len(actions) != 0 {
		t.Fatalf("got %d actions, want 0", len(actions))
	}
}
