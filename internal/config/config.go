// Package config loads the tasker configuration file and resolves the data
// paths everything else writes under.
package config

import "time"

// Config is the root configuration.
type Config struct {
	Queue    QueueConfig    `json:"queue"`
	Gateway  GatewayConfig  `json:"gateway"`
	Events   EventsConfig   `json:"events"`
	Executor ExecutorConfig `json:"executor"`
}

// QueueConfig holds poll loop settings.
type QueueConfig struct {
	// Interval between poll cycles in autonomous mode.
	Interval Duration `json:"interval,omitempty"`
}

// GatewayConfig holds the dashboard server settings.
type GatewayConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// EventsConfig holds event bus settings.
type EventsConfig struct {
	BufferSize int `json:"buffer_size"`
}

// ExecutorConfig configures the Anthropic executor.
type ExecutorConfig struct {
	Model     string   `json:"model,omitempty"`
	MaxTokens int      `json:"max_tokens,omitempty"`
	APIKey    string   `json:"api_key,omitempty"` // direct key or ${{ .Env.VAR }} template
	BaseURL   string   `json:"base_url,omitempty"`
	Timeout   Duration `json:"timeout,omitempty"`
	WorkDir   string   `json:"work_dir,omitempty"`
}

// Duration wraps time.Duration for JSON unmarshaling.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}
