package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Configuration struct {
	API     *APIConfig
	Model   *ModelConfig
	Budget  *BudgetConfig
	Session *SessionConfig
	Verbose bool
}

type APIConfig struct {
	Key     string
	BaseURL string
	Timeout time.Duration
}

type ModelConfig struct {
	Model               string
	MaxCompletionTokens int
	Temperature         float32
}

// BudgetConfig carries the token ceilings every size-checking operation
// reads. Fixed at startup, never mutated at runtime.
type BudgetConfig struct {
	MaxContextTokens int
	MaxFileTokens    int
	MaxFilesPerAdd   int
}

type SessionConfig struct {
	// MaxMessages is the message-count ceiling that triggers history
	// trimming.
	MaxMessages int
	// Prompt overrides the built-in system preamble when non-empty.
	Prompt string
}

// YamlSource implements cli.ValueSource for a map loaded from YAML
type YamlSource struct {
	data map[string]any
	key  string
}

func (y *YamlSource) Lookup() (string, bool) {
	if v, ok := y.data[y.key]; ok {
		// Handle slices by joining with comma
		if slice, ok := v.([]any); ok {
			var strs []string
			for _, item := range slice {
				strs = append(strs, fmt.Sprintf("%v", item))
			}
			return strings.Join(strs, ","), true
		}
		return fmt.Sprintf("%v", v), true
	}
	return "", false
}

func (y *YamlSource) String() string   { return "yaml" }
func (y *YamlSource) GoString() string { return "yaml" }

func GetFlags() []cli.Flag {
	// Pre-parse config path
	configPath := getConfigPath()
	var configData map[string]any
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err == nil {
			_ = yaml.Unmarshal(data, &configData)
		} else {
			fmt.Fprintf(os.Stderr, "Warning: failed to read config file %s: %v\n", configPath, err)
		}
	}

	// Helper to create sources: EnvVar > YAML > Default
	src := func(key string, env ...string) cli.ValueSourceChain {
		chain := cli.ValueSourceChain{}
		for _, e := range env {
			chain.Chain = append(chain.Chain, cli.EnvVar(e))
		}
		if configData != nil {
			chain.Chain = append(chain.Chain, &YamlSource{data: configData, key: key})
		}
		return chain
	}

	return []cli.Flag{
		// Config file
		&cli.StringFlag{Name: "config", Aliases: []string{"b"}, Usage: "use the named configuration file", Sources: cli.EnvVars("DEEPSEEK_CONFIG")},

		// API Configuration
		&cli.StringFlag{Name: "apikey", Usage: "DeepSeek API key", Sources: src("apikey", "DEEPSEEK_API_KEY")},
		&cli.StringFlag{Name: "apiurl", Value: "https://api.deepseek.com", Usage: "API base URL (any OpenAI-compatible endpoint)", Sources: src("apiurl", "DEEPSEEK_API_URL")},
		&cli.DurationFlag{Name: "apitimeout", Aliases: []string{"t"}, Value: time.Minute * 5, Usage: "timeout for each completion request", Sources: src("apitimeout", "DEEPSEEK_APITIMEOUT")},

		// Model Configuration
		&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Value: "deepseek-reasoner", Usage: "model to be used for responses", Sources: src("model", "DEEPSEEK_MODEL")},
		&cli.IntFlag{Name: "maxtokens", Value: 64000, Usage: "maximum number of completion tokens to generate", Sources: src("maxtokens", "DEEPSEEK_MAXTOKENS")},
		&cli.FloatFlag{Name: "temperature", Value: 0.7, Usage: "temperature for the completion", Sources: src("temperature", "DEEPSEEK_TEMPERATURE")},

		// Token budget
		&cli.IntFlag{Name: "maxcontext", Value: 50000, Usage: "approximate token ceiling for the conversation", Sources: src("maxcontext", "DEEPSEEK_MAXCONTEXT")},
		&cli.IntFlag{Name: "maxfiletokens", Value: 8000, Usage: "approximate token ceiling per added file", Sources: src("maxfiletokens", "DEEPSEEK_MAXFILETOKENS")},
		&cli.IntFlag{Name: "maxfiles", Value: 20, Usage: "maximum number of files added per /add directory", Sources: src("maxfiles", "DEEPSEEK_MAXFILES")},

		// Session behavior
		&cli.IntFlag{Name: "history", Aliases: []string{"H"}, Value: 30, Usage: "message-count ceiling before the conversation is trimmed", Sources: src("history", "DEEPSEEK_HISTORY")},
		&cli.StringFlag{Name: "prompt", Usage: "override the built-in system prompt", Sources: src("prompt", "DEEPSEEK_PROMPT")},

		&cli.BoolFlag{Name: "verbose", Aliases: []string{"V"}, Usage: "enable verbose logging of sessions and requests", Sources: src("verbose", "DEEPSEEK_VERBOSE")},
	}
}

func getConfigPath() string {
	// Check env first
	if v := os.Getenv("DEEPSEEK_CONFIG"); v != "" {
		return v
	}
	// Check args
	for i, arg := range os.Args {
		if arg == "--config" || arg == "-b" {
			if i+1 < len(os.Args) {
				return os.Args[i+1]
			}
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	return ""
}

func NewConfiguration(c *cli.Command) *Configuration {
	if c.IsSet("config") {
		zap.S().Infow("Using config file", "path", c.String("config"))
	}

	config := &Configuration{
		API: &APIConfig{
			Key:     c.String("apikey"),
			BaseURL: c.String("apiurl"),
			Timeout: c.Duration("apitimeout"),
		},
		Model: &ModelConfig{
			Model:               c.String("model"),
			MaxCompletionTokens: c.Int("maxtokens"),
			Temperature:         float32(c.Float("temperature")),
		},
		Budget: &BudgetConfig{
			MaxContextTokens: c.Int("maxcontext"),
			MaxFileTokens:    c.Int("maxfiletokens"),
			MaxFilesPerAdd:   c.Int("maxfiles"),
		},
		Session: &SessionConfig{
			MaxMessages: c.Int("history"),
			Prompt:      c.String("prompt"),
		},
		Verbose: c.Bool("verbose"),
	}

	return config
}

func (c *Configuration) PrintConfig() {
	fmt.Printf("apiurl: %s\n", c.API.BaseURL)
	if len(c.API.Key) > 3 {
		fmt.Printf("apikey: %s\n", strings.Repeat("*", len(c.API.Key)-3)+c.API.Key[len(c.API.Key)-3:])
	} else {
		fmt.Printf("apikey: %s\n", c.API.Key)
	}
	fmt.Printf("apitimeout: %s\n", c.API.Timeout)
	fmt.Printf("model: %s\n", c.Model.Model)
	fmt.Printf("maxtokens: %d\n", c.Model.MaxCompletionTokens)
	fmt.Printf("temperature: %f\n", c.Model.Temperature)
	fmt.Printf("maxcontext: %d\n", c.Budget.MaxContextTokens)
	fmt.Printf("maxfiletokens: %d\n", c.Budget.MaxFileTokens)
	fmt.Printf("maxfiles: %d\n", c.Budget.MaxFilesPerAdd)
	fmt.Printf("history: %d\n", c.Session.MaxMessages)
	fmt.Printf("verbose: %t\n", c.Verbose)
}
