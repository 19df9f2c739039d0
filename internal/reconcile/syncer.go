// Package reconcile implements the sync strategy that keeps one CI bot per
// open pull request and mirrors integration results back as commit statuses.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/buildasaur/buildasaur/internal/buildtemplate"
	"github.com/buildasaur/buildasaur/internal/ciserver"
	"github.com/buildasaur/buildasaur/internal/github"
	"github.com/buildasaur/buildasaur/internal/otel"
	"github.com/buildasaur/buildasaur/internal/storage"
	"github.com/buildasaur/buildasaur/internal/syncer"
	"github.com/buildasaur/buildasaur/internal/telemetry"
	"github.com/buildasaur/buildasaur/internal/workspace"
)

// DefaultParallelism bounds how many pull requests are reconciled at once.
const DefaultParallelism = 4

// Report keys set on every cycle.
const (
	ReportPullRequests = "pull_requests"
	ReportBotsCreated  = "bots_created"
	ReportBotsUpdated  = "bots_updated"
	ReportBotsDeleted  = "bots_deleted"
	ReportStatuses     = "statuses_posted"
	ReportSkipped      = "pull_requests_skipped"
	ReportTemplate     = "template"
)

// ErrNoValidTemplate is reported when the project has no usable build template.
var ErrNoValidTemplate = errors.New("no valid build template")

// BotSyncer is the reconciliation strategy for one repository.
type BotSyncer struct {
	meta        workspace.Metadata
	owner       string
	repo        string
	templateID  string
	github      github.Client
	ci          ciserver.Client
	templates   storage.TemplateStore
	parallelism int
	logger      *slog.Logger
	metrics     *telemetry.ReconcileMetrics
	tracer      trace.Tracer
}

var _ syncer.Strategy = (*BotSyncer)(nil)

// Option configures a BotSyncer.
type Option func(*BotSyncer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *BotSyncer) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithParallelism overrides DefaultParallelism.
func WithParallelism(n int) Option {
	return func(b *BotSyncer) {
		if n > 0 {
			b.parallelism = n
		}
	}
}

// WithMetrics counts bot operations and posted statuses.
func WithMetrics(m *telemetry.ReconcileMetrics) Option {
	return func(b *BotSyncer) {
		b.metrics = m
	}
}

// WithTracer traces every pull request reconciliation.
func WithTracer(t trace.Tracer) Option {
	return func(b *BotSyncer) {
		b.tracer = t
	}
}

// New creates a BotSyncer for the repository meta points at. templateID names
// the preferred build template; when empty the first valid template offered
// to the project is used.
func New(
	meta workspace.Metadata,
	templateID string,
	gh github.Client,
	ci ciserver.Client,
	templates storage.TemplateStore,
	opts ...Option,
) (*BotSyncer, error) {
	owner, repo, ok := meta.URL().OwnerAndRepo()
	if !ok {
		return nil, fmt.Errorf("cannot derive owner and repository from %q", meta.URL().String())
	}

	b := &BotSyncer{
		meta:        meta,
		owner:       owner,
		repo:        repo,
		templateID:  templateID,
		github:      gh,
		ci:          ci,
		templates:   templates,
		parallelism: DefaultParallelism,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With("repository", b.fullName())
	return b, nil
}

func (b *BotSyncer) fullName() string {
	return b.owner + "/" + b.repo
}

type counters struct {
	created, updated, deleted, statuses, skipped atomic.Int64
}

// Sync implements syncer.Strategy.
func (b *BotSyncer) Sync(ctx context.Context, r syncer.Reporter, done func()) {
	defer done()

	ctx, span := otel.StartSpan(ctx, b.tracer, "reconcile.sync",
		trace.WithAttributes(otel.AttrRepository.String(b.fullName())))
	defer span.End()

	tpl, err := b.template(ctx)
	if err != nil {
		otel.RecordError(span, err)
		r.ReportError(err, "loading build template")
		return
	}
	r.SetReport(ReportTemplate, tpl.DisplayName())

	prs, err := b.github.ListOpenPullRequests(ctx, b.owner, b.repo)
	if err != nil {
		otel.RecordError(span, err)
		r.ReportError(err, "listing pull requests")
		return
	}
	r.SetReport(ReportPullRequests, strconv.Itoa(len(prs)))

	bots, err := b.ci.ListBots(ctx)
	if err != nil {
		otel.RecordError(span, err)
		r.ReportError(err, "listing bots")
		return
	}

	managed := make(map[int]ciserver.Bot)
	for _, bot := range bots {
		if n, ok := pullRequestNumber(bot.Name, b.owner, b.repo); ok {
			managed[n] = bot
		}
	}

	var stats counters
	var g errgroup.Group
	g.SetLimit(b.parallelism)

	open := make(map[int]bool, len(prs))
	for _, pr := range prs {
		open[pr.Number] = true
		var existing *ciserver.Bot
		if bot, ok := managed[pr.Number]; ok {
			existing = &bot
		}
		g.Go(func() error {
			b.syncPullRequest(ctx, r, tpl, pr, existing, &stats)
			return nil
		})
	}

	for n, bot := range managed {
		if open[n] {
			continue
		}
		g.Go(func() error {
			b.deleteBot(ctx, r, n, bot, &stats)
			return nil
		})
	}

	_ = g.Wait()

	span.SetAttributes(otel.AttrResultCount.Int(len(prs)))
	r.SetReport(ReportBotsCreated, strconv.FormatInt(stats.created.Load(), 10))
	r.SetReport(ReportBotsUpdated, strconv.FormatInt(stats.updated.Load(), 10))
	r.SetReport(ReportBotsDeleted, strconv.FormatInt(stats.deleted.Load(), 10))
	r.SetReport(ReportStatuses, strconv.FormatInt(stats.statuses.Load(), 10))
	r.SetReport(ReportSkipped, strconv.FormatInt(stats.skipped.Load(), 10))

	b.logger.DebugContext(ctx, "Reconciled pull requests",
		"pull_requests", len(prs),
		"created", stats.created.Load(),
		"updated", stats.updated.Load(),
		"deleted", stats.deleted.Load(),
	)
}

// template loads the preferred template, or the first valid one offered to
// the project when no preference is configured.
func (b *BotSyncer) template(ctx context.Context) (*buildtemplate.BuildTemplate, error) {
	if b.templateID != "" {
		tpl, err := b.templates.Load(ctx, b.templateID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: template %s not found", ErrNoValidTemplate, b.templateID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load template %s: %w", b.templateID, err)
		}
		if !tpl.Validate() {
			return nil, fmt.Errorf("%w: template %s is incomplete", ErrNoValidTemplate, b.templateID)
		}
		return tpl, nil
	}

	candidates, err := b.templates.ListForProject(ctx, b.meta.ProjectName())
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	for _, tpl := range candidates {
		if tpl.Validate() {
			return tpl, nil
		}
	}
	return nil, fmt.Errorf("%w: none stored for project %s", ErrNoValidTemplate, b.meta.ProjectName())
}

func (b *BotSyncer) syncPullRequest(
	ctx context.Context,
	r syncer.Reporter,
	tpl *buildtemplate.BuildTemplate,
	pr github.PullRequest,
	existing *ciserver.Bot,
	stats *counters,
) {
	name := BotName(b.owner, b.repo, pr.Number)
	ctx, span := otel.StartSpan(ctx, b.tracer, "reconcile.pull_request",
		trace.WithAttributes(
			otel.AttrRepository.String(b.fullName()),
			otel.AttrPullRequest.Int(pr.Number),
			otel.AttrBotName.String(name),
			otel.AttrTemplateID.String(tpl.ID),
		))
	defer span.End()

	fail := func(err error, what string) {
		otel.RecordError(span, err)
		r.ReportError(err, fmt.Sprintf("PR #%d: %s", pr.Number, what))
	}

	if pr.Head.Repo != nil && pr.Head.Repo.FullName != "" && pr.Head.Repo.FullName != b.fullName() {
		b.logger.WarnContext(ctx, "Skipping pull request from a fork",
			"pull_request", pr.Number, "fork", pr.Head.Repo.FullName)
		stats.skipped.Add(1)
		return
	}

	desired := desiredBot(name, tpl, b.meta, pr.Head.Ref)

	var bot *ciserver.Bot
	switch {
	case existing == nil:
		created, err := b.ci.CreateBot(ctx, desired)
		if err != nil {
			fail(err, "creating bot")
			return
		}
		bot = created
		stats.created.Add(1)
		b.metrics.RecordBotOperation(ctx, b.fullName(), telemetry.BotCreated)
		b.logger.InfoContext(ctx, "Created bot", "bot", name, "branch", pr.Head.Ref)
	case drifted(*existing, desired):
		desired.ID, desired.Rev = existing.ID, existing.Rev
		updated, err := b.ci.UpdateBot(ctx, desired)
		if err != nil {
			fail(err, "updating bot")
			return
		}
		bot = updated
		stats.updated.Add(1)
		b.metrics.RecordBotOperation(ctx, b.fullName(), telemetry.BotUpdated)
		b.logger.InfoContext(ctx, "Updated bot", "bot", name, "branch", pr.Head.Ref)
	default:
		bot = existing
	}

	integration, err := b.ci.LatestIntegration(ctx, bot.ID)
	if err != nil {
		fail(err, "reading integrations")
		return
	}

	if needsIntegration(tpl, integration, pr.Head.SHA) {
		started, err := b.ci.StartIntegration(ctx, bot.ID)
		if err != nil {
			fail(err, "starting integration")
			return
		}
		integration = started
		b.logger.InfoContext(ctx, "Started integration", "bot", name, "integration", started.Number)
	}

	if pr.Head.SHA == "" {
		return
	}
	status := statusFor(integration)
	latest, err := b.github.LatestStatus(ctx, b.owner, b.repo, pr.Head.SHA, StatusContext)
	if err != nil {
		fail(err, "reading commit status")
		return
	}
	if latest != nil && latest.Equal(status) {
		return
	}
	if err := b.github.PostStatus(ctx, b.owner, b.repo, pr.Head.SHA, status); err != nil {
		fail(err, "posting commit status")
		return
	}
	stats.statuses.Add(1)
	b.metrics.RecordStatusPosted(ctx, b.fullName(), string(status.State))
}

func (b *BotSyncer) deleteBot(ctx context.Context, r syncer.Reporter, number int, bot ciserver.Bot, stats *counters) {
	ctx, span := otel.StartSpan(ctx, b.tracer, "reconcile.delete_bot",
		trace.WithAttributes(
			otel.AttrPullRequest.Int(number),
			otel.AttrBotName.String(bot.Name),
		))
	defer span.End()

	if err := b.ci.DeleteBot(ctx, bot.ID, bot.Rev); err != nil {
		otel.RecordError(span, err)
		r.ReportError(err, fmt.Sprintf("PR #%d: deleting bot", number))
		return
	}
	stats.deleted.Add(1)
	b.metrics.RecordBotOperation(ctx, b.fullName(), telemetry.BotDeleted)
	b.logger.InfoContext(ctx, "Deleted bot of closed pull request", "bot", bot.Name)
}

// needsIntegration reports whether buildasaur has to start an integration
// itself. Only manually scheduled bots need that, and only when no
// integration covers the head commit yet.
func needsIntegration(tpl *buildtemplate.BuildTemplate, latest *ciserver.Integration, headSHA string) bool {
	if tpl.Schedule.Type != buildtemplate.ScheduleTypeManual {
		return false
	}
	if latest == nil {
		return true
	}
	if !latest.Completed() || latest.Revision == "" || headSHA == "" {
		return false
	}
	return latest.Revision != headSHA
}
