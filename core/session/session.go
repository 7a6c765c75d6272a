package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leofalp/chatbridge/core/bridge"
	"github.com/leofalp/chatbridge/core/metrics"
	"github.com/leofalp/chatbridge/providers/ai"
	"github.com/leofalp/chatbridge/providers/ai/adapters"
	"github.com/leofalp/chatbridge/providers/memory"
	"github.com/leofalp/chatbridge/providers/observability"
)

// State is the phase of the controller's active generation.
type State int

const (
	// StateIdle means no generation is running.
	StateIdle State = iota
	// StateSending means a request was sent and no body has arrived yet.
	StateSending
	// StateStreaming means the response body is being read.
	StateStreaming
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	default:
		return "idle"
	}
}

// Controller runs generations against one provider connection. It allows at
// most one active generation: starting a new one cancels the previous one.
//
// A Controller is bound to the ConnectionConfig it was created with. When
// the provider, address or API key changes, build a new Controller.
type Controller struct {
	cfg      ai.ConnectionConfig
	adapter  ai.Adapter
	bridge   *bridge.Bridge
	store    memory.Store
	groupID  string
	observer observability.Provider
	metrics  *metrics.Collector
	annotate bool

	mu        sync.Mutex
	state     State
	active    *Generation
	exchanges []exchange
}

// exchange is one prompt and, once its generation has ended with some text,
// the answer. Keeping them paired keeps a cancelled answer next to its own
// prompt when a newer prompt was sent before it ended.
type exchange struct {
	question ai.Turn
	answer   *ai.Turn
}

// New validates cfg and returns a Controller with a fresh adapter and
// bridge. A [*ai.ConfigError] is returned when cfg cannot work, for example
// a cloud provider without an API key.
func New(cfg ai.ConnectionConfig, opts ...Option) (*Controller, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	adapter, err := adapters.New(cfg)
	if err != nil {
		return nil, err
	}

	groupID := o.groupID
	if groupID == "" {
		groupID = memory.NewGroupID()
	}

	return &Controller{
		cfg:      cfg,
		adapter:  adapter,
		bridge:   bridge.New(o.client, cfg, adapter, o.middlewares...),
		store:    o.store,
		groupID:  groupID,
		observer: o.observer,
		metrics:  o.metrics,
		annotate: o.annotate,
	}, nil
}

// Config returns the connection config the controller is bound to.
func (c *Controller) Config() ai.ConnectionConfig {
	return c.cfg
}

// GroupID returns the conversation id used with the store.
func (c *Controller) GroupID() string {
	return c.groupID
}

// State returns the phase of the active generation.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Transcript returns a copy of the turns seen by this controller. Every
// prompt is followed by its answer, if it got one.
func (c *Controller) Transcript() []ai.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()

	turns := make([]ai.Turn, 0, 2*len(c.exchanges))
	for _, e := range c.exchanges {
		turns = append(turns, e.question)
		if e.answer != nil {
			turns = append(turns, *e.answer)
		}
	}
	return turns
}

// Cancel stops the active generation, if any. Calling it while idle does
// nothing.
func (c *Controller) Cancel() {
	c.mu.Lock()
	active := c.active
	c.mu.Unlock()

	if active != nil {
		active.Cancel()
	}
}

// Generate starts a generation for prompt and returns immediately. Range
// over [Generation.Deltas] to display text as it arrives, then call
// [Generation.Wait] for the outcome.
//
// Configuration problems (no model, missing API key) are returned here,
// before any network call. Every other failure is reported through the
// outcome. A generation that is still running is cancelled first.
func (c *Controller) Generate(ctx context.Context, prompt string, image *ai.Image, model string) (*Generation, error) {
	if strings.TrimSpace(model) == "" {
		return nil, &ai.ConfigError{Provider: c.cfg.Provider, Message: "model is required"}
	}

	history, err := c.history(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation history: %w", err)
	}

	request := ai.GenerationRequest{
		Prompt:            prompt,
		Image:             image,
		Model:             model,
		History:           history,
		SystemInstruction: c.cfg.SystemInstruction,
	}

	prepared, err := c.adapter.BuildChatRequest(request)
	if err != nil {
		return nil, err
	}

	genCtx, cancel := context.WithCancel(ctx)
	g := &Generation{
		id:      uuid.NewString(),
		request: request,
		ctx:     genCtx,
		cancel:  cancel,
		deltas:  make(chan string, deltaBuffer),
		done:    make(chan struct{}),
	}

	c.mu.Lock()
	previous := c.active
	c.active = g
	c.state = StateSending
	g.exchange = len(c.exchanges)
	c.exchanges = append(c.exchanges, exchange{question: ai.Turn{
		Role:      ai.RoleUser,
		Content:   prompt,
		Image:     image,
		Timestamp: time.Now(),
	}})
	c.mu.Unlock()

	if previous != nil {
		previous.Cancel()
	}

	go c.run(g, prepared)
	return g, nil
}

// history returns the prior turns sent with a new prompt. Like the store,
// it holds only exchanges that ended with an answer.
func (c *Controller) history(ctx context.Context) ([]ai.Turn, error) {
	if c.store == nil {
		c.mu.Lock()
		defer c.mu.Unlock()

		var turns []ai.Turn
		for _, e := range c.exchanges {
			if e.answer != nil {
				turns = append(turns, e.question, *e.answer)
			}
		}
		return turns, nil
	}

	records, err := c.store.FetchHistory(ctx, c.groupID)
	if err != nil {
		return nil, err
	}
	return memory.ToTurns(records), nil
}

// setState updates the controller state if g is still the active generation.
func (c *Controller) setState(g *Generation, state State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == g {
		c.state = state
	}
}

// release pairs answer with g's prompt and returns to idle if g is still
// the active generation.
func (c *Controller) release(g *Generation, answer string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if answer != "" {
		c.exchanges[g.exchange].answer = &ai.Turn{
			Role:      ai.RoleAssistant,
			Content:   answer,
			Timestamp: time.Now(),
		}
	}
	if c.active == g {
		c.active = nil
		c.state = StateIdle
	}
}
