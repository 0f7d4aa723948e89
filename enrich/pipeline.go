// Package enrich implements the lead enrichment pipeline: a one-shot run per
// lead that fans out web searches in parallel, extracts structured fields
// through the model gateway, analyzes the lead's message locally and mails a
// notification, all under a tree of nested timeout budgets.
package enrich

import (
	"context"
	"strconv"
	"time"

	"github.com/nementium/agentcore/budget"
	"github.com/nementium/agentcore/fault"
	"github.com/nementium/agentcore/logging"
	"github.com/nementium/agentcore/model"
	"github.com/nementium/agentcore/notify"
	"github.com/nementium/agentcore/record"
	"github.com/nementium/agentcore/search"
)

// Completer generates one model turn. *gateway.Gateway satisfies it.
type Completer interface {
	Complete(ctx context.Context, req model.Request) (*model.Response, error)
}

// errorWriteGrace bounds the detached status write after a blown run budget.
const errorWriteGrace = 10 * time.Second

// Options configures a Pipeline.
type Options struct {
	// Budgets is the timeout tree. Zero fields disable the corresponding
	// bound.
	Budgets budget.Tree
	// RecipientName personalizes the notification greeting.
	RecipientName string
	Logger        logging.Logger
}

// Pipeline processes leads end to end.
type Pipeline struct {
	store         record.Store
	completer     Completer
	searcher      search.Searcher
	mailer        notify.Mailer
	notifyEmail   string
	recipientName string
	budgets       budget.Tree
	logger        logging.Logger
	now           func() time.Time
}

// NewPipeline creates a Pipeline. notifyEmail is the inbox that receives the
// lead notifications.
func NewPipeline(store record.Store, completer Completer, searcher search.Searcher, mailer notify.Mailer, notifyEmail string, optFns ...func(o *Options)) *Pipeline {
	opts := Options{
		RecipientName: "equipo",
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Pipeline{
		store:         store,
		completer:     completer,
		searcher:      searcher,
		mailer:        mailer,
		notifyEmail:   notifyEmail,
		recipientName: opts.RecipientName,
		budgets:       opts.Budgets,
		logger:        opts.Logger,
		now:           time.Now,
	}
}

// Result reports one pipeline run.
type Result struct {
	LeadID  int64
	Status  string
	EmailID string
}

// Process runs the pipeline for one lead. The whole run is bounded by the
// total budget; if it fires, or any stage fails hard, the lead's status goes
// to error with a truncated reason, written outside the blown budget so the
// marker itself cannot be lost to it. A lead not in status new is skipped.
func (p *Pipeline) Process(ctx context.Context, leadID int64) (*Result, error) {
	run, cancel := budget.Child(ctx, p.budgets.Total)
	defer cancel()

	result, err := p.process(run, leadID)
	if err == nil {
		return result, nil
	}
	err = fault.FromContext(err, "enrichment run")
	p.logger.Error("enrichment run failed", "lead_id", leadID, "error", err.Error())

	if !fault.Is(err, fault.NotFound) {
		p.markError(ctx, leadID, err)
	}
	return nil, err
}

func (p *Pipeline) process(ctx context.Context, leadID int64) (*Result, error) {
	filters := leadFilter(leadID)

	rec, err := p.store.SelectOne(ctx, LeadsTable, "*", filters)
	if err != nil {
		return nil, err
	}
	lead := leadFromRecord(rec)
	lead.ID = leadID

	if lead.Status != StatusNew {
		p.logger.Info("lead skipped", "lead_id", leadID, "status", lead.Status)
		return &Result{LeadID: leadID, Status: lead.Status}, nil
	}

	// The processing write is the soft claim: a concurrent run loading the
	// lead afterwards sees a non-new status and skips it.
	if err := p.store.Update(ctx, LeadsTable, record.Record{"status": StatusProcessing}, filters); err != nil {
		return nil, err
	}
	p.logger.Info("lead claimed", "lead_id", leadID, "name", lead.Name)

	prospectCtx, cancelProspect := budget.Child(ctx, p.budgets.Prospecting)
	enr, snippets := p.prospect(prospectCtx, lead)
	prospectTimedOut := prospectCtx.Err() != nil && ctx.Err() == nil
	cancelProspect()

	if prospectTimedOut {
		p.logger.Warn("prospecting budget exceeded, continuing with partial data", "lead_id", leadID)
		enr = timeoutEnrichment(lead)
	} else {
		enr.merge(p.extract(ctx, lead, snippets))
		analyzeMessage(lead.Message, &enr.Signals)
	}
	enr.dedupeSources()

	// Best effort checkpoint: the run is still useful if this write fails.
	if err := p.store.Update(ctx, LeadsTable, record.Record{"prospecting_json": enr}, filters); err != nil {
		p.logger.Warn("persisting enrichment failed", "lead_id", leadID, "error", err.Error())
	}

	email := p.generateEmail(ctx, lead, enr)

	enr.ServiceFit = deriveServiceFit(enr.Signals)
	enr.NextSteps = defaultNextSteps()
	if err := p.store.Update(ctx, LeadsTable, record.Record{"prospecting_json": enr}, filters); err != nil {
		p.logger.Warn("persisting enrichment failed", "lead_id", leadID, "error", err.Error())
	}

	sent, err := p.mailer.SendEmail(ctx, notify.EmailRequest{
		To:      p.notifyEmail,
		Subject: email.Subject,
		HTML:    email.HTMLBody,
	})
	if err != nil {
		return nil, fault.Wrap(err, fault.ToolExecution, "sending lead notification")
	}

	err = p.store.Update(ctx, LeadsTable, record.Record{
		"status":        StatusEmailed,
		"email_sent_at": p.now().UTC().Format(time.RFC3339),
	}, filters)
	if err != nil {
		return nil, err
	}

	p.logger.Info("lead emailed", "lead_id", leadID, "email_id", sent.ID)
	return &Result{LeadID: leadID, Status: StatusEmailed, EmailID: sent.ID}, nil
}

// markError records the failure on the lead. It runs on a detached context
// so the write survives the blown run budget.
func (p *Pipeline) markError(ctx context.Context, leadID int64, cause error) {
	dctx, cancel := budget.Detached(ctx, errorWriteGrace)
	defer cancel()

	msg := cause.Error()
	if len(msg) > 500 {
		msg = msg[:500]
	}
	patch := record.Record{"status": StatusError, "error": msg}
	if err := p.store.Update(dctx, LeadsTable, patch, leadFilter(leadID)); err != nil {
		p.logger.Error("writing error status failed", "lead_id", leadID, "error", err.Error())
	}
}

func leadFilter(leadID int64) map[string]string {
	return map[string]string{"id": strconv.FormatInt(leadID, 10)}
}
