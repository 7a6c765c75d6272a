package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leofalp/chatbridge/core/session"
	"github.com/leofalp/chatbridge/providers/ai"
)

var chatFlags struct {
	provider      string
	model         string
	image         string
	group         string
	noAnnotations bool
}

var chatCmd = &cobra.Command{
	Use:   "chat [prompt]",
	Short: "Stream one answer to stdout",
	Long: `Send a single prompt and stream the answer to stdout.

The prompt is taken from the arguments, or from stdin when no argument is
given. Ctrl-C stops the generation and keeps the partial answer.

Examples:
  # Use the selected provider and model
  chatbridge chat "Summarize the plot of Hamlet"

  # Pick the provider and model
  chatbridge chat --provider claude --model claude-sonnet-4-20250514 "Hello"

  # Attach an image
  chatbridge chat --model llava --image photo.jpg "What is in this picture?"

  # Read the prompt from a file
  chatbridge chat < prompt.txt`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVarP(&chatFlags.provider, "provider", "p", "", "provider (ollama, lmstudio, claude, openai); defaults to the selected one")
	chatCmd.Flags().StringVarP(&chatFlags.model, "model", "m", "", "model name; defaults to the selected one")
	chatCmd.Flags().StringVar(&chatFlags.image, "image", "", "image file to attach to the prompt")
	chatCmd.Flags().StringVar(&chatFlags.group, "group", "", "conversation id")
	chatCmd.Flags().BoolVar(&chatFlags.noAnnotations, "no-annotations", false, "do not append the model name and tokens/sec")
}

func runChat(cmd *cobra.Command, args []string) error {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read prompt: %w", err)
		}
		prompt = strings.TrimSpace(string(raw))
	}
	if prompt == "" {
		return errors.New("prompt is empty")
	}

	image, err := loadImage(chatFlags.image)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.serveMetrics(metricsAddr)()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	s := a.settings.Snapshot()
	kind, err := resolveProvider(s, chatFlags.provider)
	if err != nil {
		return err
	}
	model, err := a.resolveModel(ctx, s, kind, chatFlags.model)
	if err != nil {
		return err
	}

	controller, err := a.newController(s, kind, chatFlags.group, !chatFlags.noAnnotations)
	if err != nil {
		return err
	}

	_, err = streamAnswer(ctx, controller, cmd.OutOrStdout(), prompt, image, model)
	return err
}

// streamAnswer prints one generation as it arrives. A failed generation is
// returned as an error after any partial text.
func streamAnswer(ctx context.Context, controller *session.Controller, out io.Writer, prompt string, image *ai.Image, model string) (ai.Outcome, error) {
	gen, err := controller.Generate(ctx, prompt, image, model)
	if err != nil {
		return ai.Outcome{}, err
	}

	for delta := range gen.Deltas() {
		fmt.Fprint(out, delta)
	}
	outcome := gen.Wait()

	switch outcome.Kind {
	case ai.OutcomeCancelled:
		fmt.Fprintln(out, "\nCancelled by user.")
	case ai.OutcomeFailed:
		if outcome.Text != "" {
			fmt.Fprintln(out)
		}
		return outcome, outcome.Err
	default:
		fmt.Fprintln(out)
	}
	return outcome, nil
}

func loadImage(path string) (*ai.Image, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return ai.NewImage(data), nil
}

// commandContext returns the command's context, or Background when the
// command was invoked directly.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
