package settings

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/leofalp/chatbridge/providers/ai"
)

// clearEnv blanks every variable the loader looks at so the host
// environment cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CHATBRIDGE_SERVER_ADDRESS", "CHATBRIDGE_LMSTUDIO_ADDRESS",
		"CHATBRIDGE_CLAUDE_API_KEY", "CHATBRIDGE_OPENAI_API_KEY",
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY",
		"CHATBRIDGE_TEMPERATURE", "CHATBRIDGE_TOP_P", "CHATBRIDGE_TOP_K",
		"CHATBRIDGE_SYSTEM_INSTRUCTION", "CHATBRIDGE_PROVIDER", "CHATBRIDGE_MODEL",
		"CHATBRIDGE_SHOW_OLLAMA", "CHATBRIDGE_SHOW_LMSTUDIO",
		"CHATBRIDGE_SHOW_CLAUDE", "CHATBRIDGE_SHOW_OPENAI",
		"CHATBRIDGE_REQUEST_TIMEOUT", "CHATBRIDGE_RESOURCE_TIMEOUT",
		"CHATBRIDGE_MAX_CONNS_PER_HOST",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestDefaults(t *testing.T) {
	s := Defaults()

	if s.Temperature != 0.7 {
		t.Errorf("expected temperature 0.7, got %v", s.Temperature)
	}
	if s.TopP != 0.9 || s.TopK != 40 {
		t.Errorf("expected top_p 0.9 and top_k 40, got %v and %v", s.TopP, s.TopK)
	}
	if s.SystemInstruction != DefaultSystemInstruction {
		t.Errorf("unexpected system instruction %q", s.SystemInstruction)
	}
	if s.RequestTimeout != 300*time.Second || s.ResourceTimeout != 600*time.Second {
		t.Errorf("unexpected timeouts %s / %s", s.RequestTimeout, s.ResourceTimeout)
	}
	if s.MaxConnsPerHost != 6 {
		t.Errorf("expected 6 connections per host, got %d", s.MaxConnsPerHost)
	}

	enabled := s.EnabledProviders()
	if len(enabled) != 1 || enabled[0] != ai.ProviderOllama {
		t.Errorf("expected only ollama enabled, got %v", enabled)
	}
	if s.Provider() != ai.ProviderOllama {
		t.Errorf("expected ollama selected, got %s", s.Provider())
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	s, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ServerAddress != ai.DefaultOllamaAddress {
		t.Errorf("expected default server address, got %q", s.ServerAddress)
	}
}

func TestLoad_FileOverlaysDefaults(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "settings.yaml")
	writeFile(t, path, `
server_address: 192.168.1.20
temperature: 0
selected_provider: Claude API
show_claude: true
claude_api_key: sk-ant-test
request_timeout: 45s
`)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.ServerAddress != "192.168.1.20" {
		t.Errorf("unexpected server address %q", s.ServerAddress)
	}
	if s.Temperature != 0 {
		t.Errorf("expected explicit zero temperature to be kept, got %v", s.Temperature)
	}
	if s.Provider() != ai.ProviderClaude {
		t.Errorf("expected claude selected, got %s", s.Provider())
	}
	if s.RequestTimeout != 45*time.Second {
		t.Errorf("expected 45s request timeout, got %s", s.RequestTimeout)
	}
	if s.TopK != 40 {
		t.Errorf("expected untouched top_k default, got %v", s.TopK)
	}

	enabled := s.EnabledProviders()
	if len(enabled) != 2 || enabled[0] != ai.ProviderOllama || enabled[1] != ai.ProviderClaude {
		t.Errorf("unexpected enabled providers %v", enabled)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "settings.yaml")
	writeFile(t, path, "temperature: [not a number")

	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "temperature too high", content: "temperature: 3.5", wantErr: "temperature"},
		{name: "top_p above one", content: "top_p: 1.5", wantErr: "top_p"},
		{name: "unknown provider", content: "selected_provider: gemini", wantErr: "selected_provider"},
		{name: "request exceeds resource timeout", content: "request_timeout: 20m\nresource_timeout: 10m", wantErr: "exceeds"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			path := filepath.Join(t.TempDir(), "settings.yaml")
			writeFile(t, path, tc.content)

			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHATBRIDGE_SERVER_ADDRESS", "http://gpu-box:11434")
	t.Setenv("CHATBRIDGE_TEMPERATURE", "1.2")
	t.Setenv("CHATBRIDGE_SHOW_OPENAI", "true")
	t.Setenv("CHATBRIDGE_REQUEST_TIMEOUT", "30s")
	t.Setenv("OPENAI_API_KEY", "sk-vendor")
	t.Setenv("CHATBRIDGE_MODEL", "llama3.2")

	path := filepath.Join(t.TempDir(), "settings.yaml")
	writeFile(t, path, "temperature: 0.3\nclaude_api_key: from-file\n")
	t.Setenv("ANTHROPIC_API_KEY", "vendor-should-not-win")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.ServerAddress != "http://gpu-box:11434" {
		t.Errorf("unexpected server address %q", s.ServerAddress)
	}
	if s.Temperature != 1.2 {
		t.Errorf("expected env temperature 1.2, got %v", s.Temperature)
	}
	if !s.ShowOpenAI {
		t.Error("expected openai to be shown")
	}
	if s.RequestTimeout != 30*time.Second {
		t.Errorf("expected 30s, got %s", s.RequestTimeout)
	}
	if s.OpenAIAPIKey != "sk-vendor" {
		t.Errorf("expected vendor key to fill empty openai key, got %q", s.OpenAIAPIKey)
	}
	if s.ClaudeAPIKey != "from-file" {
		t.Errorf("expected file key to win over vendor variable, got %q", s.ClaudeAPIKey)
	}
	if s.SelectedModel != "llama3.2" {
		t.Errorf("unexpected model %q", s.SelectedModel)
	}
}

func TestSettings_ConnectionConfig(t *testing.T) {
	s := Defaults()
	s.ServerAddress = "10.0.0.5"
	s.LMStudioAddress = "http://studio.local:4321"
	s.ClaudeAPIKey = "claude-key"
	s.OpenAIAPIKey = "openai-key"
	s.Temperature = 0.2
	s.SystemInstruction = "Be brief."

	testCases := []struct {
		kind         ai.ProviderKind
		wantEndpoint string
		wantKey      string
	}{
		{kind: ai.ProviderOllama, wantEndpoint: "http://10.0.0.5:11434"},
		{kind: ai.ProviderLMStudio, wantEndpoint: "http://studio.local:4321"},
		{kind: ai.ProviderClaude, wantEndpoint: "https://api.anthropic.com", wantKey: "claude-key"},
		{kind: ai.ProviderOpenAI, wantEndpoint: "https://api.openai.com", wantKey: "openai-key"},
	}

	for _, tc := range testCases {
		t.Run(string(tc.kind), func(t *testing.T) {
			cfg := s.ConnectionConfig(tc.kind)

			if cfg.Provider != tc.kind {
				t.Errorf("expected provider %s, got %s", tc.kind, cfg.Provider)
			}
			if got := cfg.Endpoint(); got != tc.wantEndpoint {
				t.Errorf("Endpoint() = %q, want %q", got, tc.wantEndpoint)
			}
			if cfg.APIKey != tc.wantKey {
				t.Errorf("expected key %q, got %q", tc.wantKey, cfg.APIKey)
			}
			if cfg.Temperature != 0.2 || cfg.SystemInstruction != "Be brief." {
				t.Errorf("sampling settings not carried over: %+v", cfg)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestStatic_Snapshot(t *testing.T) {
	s := Defaults()
	s.SelectedModel = "qwen2.5"

	var store Store = Static(s)
	if store.Snapshot().SelectedModel != "qwen2.5" {
		t.Errorf("unexpected snapshot %+v", store.Snapshot())
	}
}

func TestFileStore_LoadsDotEnvAndReloads(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	writeFile(t, path, "selected_model: llama3\n")
	writeFile(t, filepath.Join(dir, ".env"), "CHATBRIDGE_CLAUDE_API_KEY=dotenv-key\n")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.Snapshot().ClaudeAPIKey; got != "dotenv-key" {
		t.Errorf("expected key from .env, got %q", got)
	}

	writeFile(t, path, "selected_model: mistral\n")
	if _, err := store.Reload(); err != nil {
		t.Fatalf("unexpected reload error: %v", err)
	}
	if got := store.Snapshot().SelectedModel; got != "mistral" {
		t.Errorf("expected reloaded model, got %q", got)
	}

	writeFile(t, path, "temperature: 9\n")
	if _, err := store.Reload(); err == nil {
		t.Fatal("expected validation error on reload")
	}
	if got := store.Snapshot().SelectedModel; got != "mistral" {
		t.Errorf("expected previous snapshot to survive a failed reload, got %q", got)
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "settings.yaml")
	writeFile(t, path, "selected_model: first\n")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	watcher, err := NewWatcher(store, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	changed := make(chan Settings, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = watcher.Watch(ctx, func(s Settings) { changed <- s })
	}()

	// Give the watch loop a moment to start before writing.
	time.Sleep(50 * time.Millisecond)
	writeFile(t, path, "selected_model: second\n")

	select {
	case s := <-changed:
		if s.SelectedModel != "second" {
			t.Errorf("expected reloaded model, got %q", s.SelectedModel)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	if err := watcher.Stop(); err != nil {
		t.Errorf("unexpected stop error: %v", err)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	w := &Watcher{fileName: "settings.yaml"}

	if w.shouldProcessEvent(fsnotifyEvent("/tmp/other.yaml")) {
		t.Error("expected unrelated file to be ignored")
	}
	if !w.shouldProcessEvent(fsnotifyEvent("/tmp/settings.yaml")) {
		t.Error("expected settings file write to be processed")
	}
}

func TestNewWatcher_RequiresFileStore(t *testing.T) {
	if _, err := NewWatcher(nil); err == nil {
		t.Error("expected error for nil store")
	}
}

func fsnotifyEvent(name string) fsnotify.Event {
	return fsnotify.Event{Name: name, Op: fsnotify.Write}
}
