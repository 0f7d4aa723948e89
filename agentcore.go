// Package agentcore provides a high-level façade over the conversation
// assistant and the lead enrichment pipeline. Most applications interact
// with this package by:
//  1. Loading a config.Config and creating an AgentCore via New()
//  2. Starting the background dispatcher (Start) for lead processing
//  3. Serving conversation turns with HandleMessage and lead submissions
//     with SubmitLead from their own transport layer
//
// The façade only wires the underlying packages together; each of them is
// usable on its own when an application needs a different composition.
package agentcore

import (
	"context"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/nementium/agentcore/assist"
	"github.com/nementium/agentcore/budget"
	"github.com/nementium/agentcore/config"
	"github.com/nementium/agentcore/dispatch"
	"github.com/nementium/agentcore/enrich"
	"github.com/nementium/agentcore/gateway"
	"github.com/nementium/agentcore/intake"
	"github.com/nementium/agentcore/logging"
	"github.com/nementium/agentcore/model"
	"github.com/nementium/agentcore/model/anthropic"
	"github.com/nementium/agentcore/model/openai"
	"github.com/nementium/agentcore/notify"
	"github.com/nementium/agentcore/record"
	"github.com/nementium/agentcore/search"
	"github.com/nementium/agentcore/tool"
)

// Version is the module version.
const Version = "0.1.0"

// Options overrides the collaborators New would otherwise build from the
// config. Tests plug in-memory fakes here.
type Options struct {
	Store     record.Store
	Searcher  search.Searcher
	Mailer    notify.Mailer
	Messenger notify.Messenger
	Logger    logging.Logger
}

// AgentCore aggregates the assistant, the enrichment pipeline and the
// background dispatcher.
type AgentCore struct {
	cfg        *config.Config
	logger     logging.Logger
	store      record.Store
	assistant  *assist.Assistant
	pipeline   *enrich.Pipeline
	dispatcher *dispatch.Dispatcher
	intake     *intake.Intake
}

// New wires an AgentCore from the config. Provider selection follows the
// configured credentials: OpenAI primary when its key is present, Anthropic
// as secondary or as primary when it is the only one.
func New(cfg *config.Config, optFns ...func(o *Options)) (*AgentCore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger(&logging.Config{Level: parseLevel(cfg.LogLevel), Format: cfg.LogFormat})
	}

	store := opts.Store
	if store == nil {
		store = record.NewRESTStore(cfg.Store.URL, cfg.Store.ServiceKey, func(o *record.RESTOptions) {
			o.Logger = logger
		})
	}

	completer, err := buildGateway(cfg, logger)
	if err != nil {
		return nil, err
	}

	searcher := opts.Searcher
	if searcher == nil {
		searcher = search.NewClient(
			search.NewBraveClient(cfg.Search.BraveKey, func(o *search.BraveOptions) { o.Logger = logger }),
			func(o *search.ClientOptions) {
				o.Secondary = search.NewDuckDuckGoClient()
				o.LegBudget = cfg.Budgets.Search
				o.Logger = logger
			},
		)
	}

	mailer := opts.Mailer
	if mailer == nil {
		mailer = notify.NewResendMailer(cfg.Notify.ResendKey, cfg.Notify.FromEmail, func(o *notify.ResendOptions) {
			o.FromName = cfg.Notify.FromName
			o.Logger = logger
		})
	}

	messenger := opts.Messenger
	if messenger == nil && cfg.Notify.TelegramToken != "" {
		messenger, err = notify.NewTelegramMessenger(cfg.Notify.TelegramToken, func(o *notify.TelegramOptions) {
			o.Logger = logger
		})
		if err != nil {
			return nil, err
		}
	}

	registry, err := buildRegistry(store, searcher, mailer, messenger, logger)
	if err != nil {
		return nil, err
	}

	assistant := assist.New(completer, registry, func(o *assist.Options) {
		o.MaxIterations = cfg.Assistant.MaxIterations
		o.HistoryLimit = cfg.Assistant.HistoryLimit
		o.Logger = logger
	})

	pipeline := enrich.NewPipeline(store, completer, searcher, mailer, cfg.Notify.LeadInbox, func(o *enrich.Options) {
		o.Budgets = budget.Tree{
			Total:       cfg.Budgets.Total,
			Prospecting: cfg.Budgets.Prospecting,
			Search:      cfg.Budgets.Search,
			Extraction:  cfg.Budgets.Extraction,
			Generation:  cfg.Budgets.Generation,
		}
		o.Logger = logger
	})

	dispatcher := dispatch.New(func(ctx context.Context, leadID int64) {
		// Process logs and records its own failures.
		_, _ = pipeline.Process(ctx, leadID)
	}, func(o *dispatch.Options) {
		o.QueueSize = cfg.Dispatch.QueueSize
		o.Workers = cfg.Dispatch.Workers
		o.Logger = logger
	})

	return &AgentCore{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		assistant:  assistant,
		pipeline:   pipeline,
		dispatcher: dispatcher,
		intake:     intake.New(store, dispatcher, func(o *intake.Options) { o.Logger = logger }),
	}, nil
}

func buildGateway(cfg *config.Config, logger logging.Logger) (*gateway.Gateway, error) {
	var providers []model.Provider
	if cfg.Providers.OpenAIKey != "" {
		providers = append(providers, openai.NewProvider(func(o *openai.Options) {
			o.APIKey = cfg.Providers.OpenAIKey
			o.Model = cfg.Providers.OpenAIModel
		}))
	}
	if cfg.Providers.AnthropicKey != "" {
		providers = append(providers, anthropic.NewProvider(func(o *anthropic.Options) {
			o.APIKey = cfg.Providers.AnthropicKey
			o.Model = anthropicsdk.Model(cfg.Providers.AnthropicModel)
		}))
	}
	if len(providers) == 0 {
		return nil, fmt.Errorf("no model provider credentials configured")
	}

	return gateway.New(providers[0], func(o *gateway.Options) {
		if len(providers) > 1 {
			o.Secondary = providers[1]
		}
		o.CallTimeout = cfg.Assistant.ModelTimeout
		o.Logger = logger
	}), nil
}

func buildRegistry(store record.Store, searcher search.Searcher, mailer notify.Mailer, messenger notify.Messenger, logger logging.Logger) (*tool.Registry, error) {
	registry := tool.NewRegistry(logger)

	tools := []*tool.FunctionTool{
		tool.NewWebSearchTool(searcher),
		tool.NewFetchURLTool(search.NewFetcher()),
		tool.NewCurrentDateTool(nil),
		tool.NewListContactsTool(store),
	}
	for _, t := range tools {
		if err := registry.Register(t); err != nil {
			return nil, err
		}
	}
	if err := registry.RegisterFinalAction(tool.NewSendEmailTool(store, mailer)); err != nil {
		return nil, err
	}
	if messenger != nil {
		if err := registry.RegisterFinalAction(tool.NewSendTelegramTool(store, messenger)); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Start launches the background dispatcher.
func (a *AgentCore) Start(ctx context.Context) { a.dispatcher.Start(ctx) }

// Stop drains the dispatcher queue and waits for in-flight leads.
func (a *AgentCore) Stop() { a.dispatcher.Stop() }

// HandleMessage runs one conversation turn.
func (a *AgentCore) HandleMessage(ctx context.Context, req assist.TurnRequest) (*assist.TurnResult, error) {
	return a.assistant.HandleMessage(ctx, req)
}

// SubmitLead validates and stores a contact form submission and schedules
// its enrichment.
func (a *AgentCore) SubmitLead(ctx context.Context, in intake.LeadInput) (int64, error) {
	return a.intake.Submit(ctx, in)
}

// LeadStatus reports the processing state of a lead.
func (a *AgentCore) LeadStatus(ctx context.Context, leadID int64) (record.Record, error) {
	return a.intake.Status(ctx, leadID)
}

// ProcessLead runs the enrichment pipeline synchronously, bypassing the
// queue. Useful for CLIs and tests.
func (a *AgentCore) ProcessLead(ctx context.Context, leadID int64) (*enrich.Result, error) {
	return a.pipeline.Process(ctx, leadID)
}

// Assistant exposes the underlying assistant.
func (a *AgentCore) Assistant() *assist.Assistant { return a.assistant }

// Pipeline exposes the underlying enrichment pipeline.
func (a *AgentCore) Pipeline() *enrich.Pipeline { return a.pipeline }

func parseLevel(level string) logging.LogLevel {
	switch level {
	case "debug":
		return logging.LogLevelDebug
	case "warn":
		return logging.LogLevelWarn
	case "error":
		return logging.LogLevelError
	default:
		return logging.LogLevelInfo
	}
}
