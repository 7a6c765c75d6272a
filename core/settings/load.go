package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads settings from a YAML file at path, applies defaults, then
// environment overrides, and validates the result. A missing file is not an
// error: the defaults are used. An empty path skips the file entirely.
//
// The loading sequence is:
// 1. Start from Defaults()
// 2. Overlay the YAML file, if any
// 3. Apply CHATBRIDGE_* environment variable overrides
// 4. Fill remaining zero values and validate
func Load(path string) (Settings, error) {
	s := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Settings{}, fmt.Errorf("failed to read settings file %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &s); err != nil {
				return Settings{}, fmt.Errorf("failed to parse settings file %q: %w", path, err)
			}
		}
	}

	applyEnvOverrides(&s)
	s.ApplyDefaults()

	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("settings validation failed: %w", err)
	}
	return s, nil
}

// LoadEnvFiles loads KEY=value pairs from the given dotenv files into the
// process environment. Variables already set are left untouched, and files
// that do not exist are skipped.
func LoadEnvFiles(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load env file %q: %w", path, err)
		}
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to s.
// Variables use the format CHATBRIDGE_FIELD. The vendor variables
// ANTHROPIC_API_KEY and OPENAI_API_KEY are honored only when no key is
// configured.
func applyEnvOverrides(s *Settings) {
	if val := os.Getenv("CHATBRIDGE_SERVER_ADDRESS"); val != "" {
		s.ServerAddress = val
	}
	if val := os.Getenv("CHATBRIDGE_LMSTUDIO_ADDRESS"); val != "" {
		s.LMStudioAddress = val
	}

	if val := os.Getenv("CHATBRIDGE_CLAUDE_API_KEY"); val != "" {
		s.ClaudeAPIKey = val
	} else if val := os.Getenv("ANTHROPIC_API_KEY"); val != "" && s.ClaudeAPIKey == "" {
		s.ClaudeAPIKey = val
	}
	if val := os.Getenv("CHATBRIDGE_OPENAI_API_KEY"); val != "" {
		s.OpenAIAPIKey = val
	} else if val := os.Getenv("OPENAI_API_KEY"); val != "" && s.OpenAIAPIKey == "" {
		s.OpenAIAPIKey = val
	}

	if val := os.Getenv("CHATBRIDGE_TEMPERATURE"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			s.Temperature = f
		}
	}
	if val := os.Getenv("CHATBRIDGE_TOP_P"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			s.TopP = f
		}
	}
	if val := os.Getenv("CHATBRIDGE_TOP_K"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			s.TopK = f
		}
	}
	if val := os.Getenv("CHATBRIDGE_SYSTEM_INSTRUCTION"); val != "" {
		s.SystemInstruction = val
	}

	if val := os.Getenv("CHATBRIDGE_PROVIDER"); val != "" {
		s.SelectedProvider = val
	}
	if val := os.Getenv("CHATBRIDGE_MODEL"); val != "" {
		s.SelectedModel = val
	}

	overrideBool("CHATBRIDGE_SHOW_OLLAMA", &s.ShowOllama)
	overrideBool("CHATBRIDGE_SHOW_LMSTUDIO", &s.ShowLMStudio)
	overrideBool("CHATBRIDGE_SHOW_CLAUDE", &s.ShowClaude)
	overrideBool("CHATBRIDGE_SHOW_OPENAI", &s.ShowOpenAI)

	if val := os.Getenv("CHATBRIDGE_REQUEST_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			s.RequestTimeout = d
		}
	}
	if val := os.Getenv("CHATBRIDGE_RESOURCE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			s.ResourceTimeout = d
		}
	}
	if val := os.Getenv("CHATBRIDGE_MAX_CONNS_PER_HOST"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			s.MaxConnsPerHost = i
		}
	}
}

func overrideBool(key string, target *bool) {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*target = b
		}
	}
}
