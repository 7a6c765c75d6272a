package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/leofalp/chatbridge/core/session"
	"github.com/leofalp/chatbridge/core/settings"
	"github.com/leofalp/chatbridge/providers/memory"
)

var replFlags struct {
	provider      string
	model         string
	group         string
	noAnnotations bool
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Chat interactively",
	Long: `Start an interactive chat. Every answer is streamed as it arrives and the
whole conversation is sent as history with the next prompt.

Changes to the settings file are picked up while the session runs: the
provider connection is rebuilt from the new settings and the conversation
continues.

Ctrl-C stops the current answer; pressing it again while idle exits.

Commands:
  /model NAME   switch model
  /models       list the current provider's models
  /cancel       stop the current answer
  /quit         leave`,
	RunE: runREPL,
}

func init() {
	rootCmd.AddCommand(replCmd)

	replCmd.Flags().StringVarP(&replFlags.provider, "provider", "p", "", "provider (ollama, lmstudio, claude, openai); defaults to the selected one")
	replCmd.Flags().StringVarP(&replFlags.model, "model", "m", "", "model name; defaults to the selected one")
	replCmd.Flags().StringVar(&replFlags.group, "group", "", "conversation id; a new one is generated when empty")
	replCmd.Flags().BoolVar(&replFlags.noAnnotations, "no-annotations", false, "do not append the model name and tokens/sec")
}

// repl owns the controller of an interactive session. The controller is
// replaced, never reconfigured, when the settings change.
type repl struct {
	app      *app
	out      io.Writer
	group    string
	annotate bool
	provider string

	mu         sync.Mutex
	controller *session.Controller
	model      string
	pinned     string
}

func runREPL(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.serveMetrics(metricsAddr)()

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	group := replFlags.group
	if group == "" {
		group = memory.NewGroupID()
	}

	r := &repl{
		app:      a,
		out:      cmd.OutOrStdout(),
		group:    group,
		annotate: !replFlags.noAnnotations,
		provider: replFlags.provider,
		pinned:   replFlags.model,
	}
	if err := r.rebuild(ctx, a.settings.Snapshot()); err != nil {
		return err
	}

	if watcher, err := settings.NewWatcher(a.settings, settings.WithLogger(a.logger)); err != nil {
		a.logger.Warn("Settings hot reload disabled", "error", err)
	} else {
		defer watcher.Stop()
		go func() {
			_ = watcher.Watch(ctx, func(s settings.Settings) {
				if err := r.rebuild(ctx, s); err != nil {
					a.logger.Warn("Keeping previous connection", "error", err)
				}
			})
		}()
	}

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)
	go func() {
		for range interrupts {
			if !r.cancelActive() {
				cancel()
				return
			}
		}
	}()

	return r.loop(ctx, cmd.InOrStdin())
}

// loop reads prompts until EOF, /quit or cancellation.
func (r *repl) loop(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(r.out, "> ")

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.out)
			return nil
		case next, ok := <-lines:
			if !ok {
				fmt.Fprintln(r.out)
				return nil
			}
			line = strings.TrimSpace(next)
		}

		switch {
		case line == "":
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/cancel":
			r.cancelActive()
		case line == "/models":
			r.listModels(ctx)
		case strings.HasPrefix(line, "/model "):
			r.setModel(strings.TrimSpace(strings.TrimPrefix(line, "/model ")))
		default:
			r.send(ctx, line)
		}
	}
}

// rebuild swaps in a controller built from s. A generation running on the
// previous controller is left to finish on its own connection.
func (r *repl) rebuild(ctx context.Context, s settings.Settings) error {
	kind, err := resolveProvider(s, r.provider)
	if err != nil {
		return err
	}

	r.mu.Lock()
	pinned := r.pinned
	r.mu.Unlock()

	model, err := r.app.resolveModel(ctx, s, kind, pinned)
	if err != nil {
		return err
	}

	controller, err := r.app.newController(s, kind, r.group, r.annotate)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.controller = controller
	r.model = model
	r.mu.Unlock()

	r.app.logger.Info("Connection ready", "provider", string(kind), "model", model)
	return nil
}

func (r *repl) current() (*session.Controller, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.controller, r.model
}

func (r *repl) setModel(model string) {
	if model == "" {
		return
	}
	r.mu.Lock()
	r.model = model
	r.pinned = model
	r.mu.Unlock()
	fmt.Fprintf(r.out, "Using %s\n", model)
}

// cancelActive stops the running generation and reports whether there was one.
func (r *repl) cancelActive() bool {
	controller, _ := r.current()
	if controller == nil || controller.State() == session.StateIdle {
		return false
	}
	controller.Cancel()
	return true
}

func (r *repl) listModels(ctx context.Context) {
	controller, model := r.current()
	for _, name := range r.app.directory().ListModels(ctx, controller.Config()) {
		marker := " "
		if name == model {
			marker = "*"
		}
		fmt.Fprintf(r.out, " %s %s\n", marker, name)
	}
}

func (r *repl) send(ctx context.Context, prompt string) {
	controller, model := r.current()
	if _, err := streamAnswer(ctx, controller, r.out, prompt, nil, model); err != nil {
		fmt.Fprintf(r.out, "Error: %v\n", err)
	}
}
