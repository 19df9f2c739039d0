// Package otel holds small tracing helpers shared by the sync engine and the
// reconciliation strategy.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Attribute keys used on buildasaur spans.
const (
	AttrSyncerName  = attribute.Key("syncer.name")
	AttrRepository  = attribute.Key("vcs.repository")
	AttrPullRequest = attribute.Key("vcs.pull_request.number")
	AttrBotName     = attribute.Key("ci.bot.name")
	AttrTemplateID  = attribute.Key("build_template.id")
	AttrResultCount = attribute.Key("result.count")
)

// StartSpan starts a span on tracer. With a nil tracer ctx is returned as is
// together with a non-recording span, so ending it never ends a parent span.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, noop.Span{}
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError marks span as failed. The status description stays generic;
// the error itself is attached as an event. Nil spans and errors are ignored.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}
