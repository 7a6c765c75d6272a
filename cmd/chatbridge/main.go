// Chatbridge streams chat completions from local and hosted LLM providers.
//
// It speaks to Ollama, LM Studio, the Claude API and the OpenAI API through
// one streaming pipeline, keeps the conversation in memory and prints the
// answer as it arrives.
//
// Usage:
//
//	# Ask one question with the selected provider and model
//	chatbridge chat "Why is the sky blue?"
//
//	# Pick a provider and model explicitly
//	chatbridge chat --provider openai --model gpt-4o-mini "Hello"
//
//	# Interactive session; edits to the settings file apply on the fly
//	chatbridge repl --config ~/.config/chatbridge/settings.yaml
//
//	# List the models of every enabled provider
//	chatbridge models
//
//	# Expose Prometheus metrics while chatting
//	chatbridge repl --metrics-addr :9464
package main

func main() {
	Execute()
}
