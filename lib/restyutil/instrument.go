package restyutil

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/semconv/v1.13.0/httpconv"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentOutput receives the rendered http exchanges when debug
// logging is on. Site scrapers break without warning, so keeping the
// raw request/response pairs around is the cheapest way to diff the
// markup that broke a selector.
type InstrumentOutput interface {
	Write(id string, contents string)
}

type exchangeIdKey struct{}

type recorder struct {
	output  InstrumentOutput
	tracer  trace.Tracer
	counter atomic.Uint64
}

// InstrumentClient hooks spans and exchange dumps into a resty client.
// A nil tracer falls back to a tracer named "resty", a nil output makes
// the whole call a no-op.
func InstrumentClient(client *resty.Client, tracer trace.Tracer, output InstrumentOutput) {
	if output == nil {
		return
	}
	if tracer == nil {
		tracer = otel.Tracer("resty")
	}

	r := &recorder{output: output, tracer: tracer}
	client.OnBeforeRequest(r.start)
	client.OnAfterResponse(r.finish)
	client.OnError(r.fail)
}

func (r *recorder) start(_ *resty.Client, req *resty.Request) error {
	ctx, _ := r.tracer.Start(req.Context(), req.Method)

	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		id := strconv.FormatUint(r.counter.Add(1), 10)
		slog.DebugContext(
			ctx, "start request",
			"method", req.Method,
			"url", req.URL,
			"exchange_id", id,
		)
		ctx = context.WithValue(ctx, exchangeIdKey{}, id)
	}

	req.SetContext(ctx)
	return nil
}

func (r *recorder) finish(_ *resty.Client, res *resty.Response) error {
	ctx := res.Request.Context()
	span := trace.SpanFromContext(ctx)
	defer span.End()

	// request attributes come from RawRequest which is still nil at
	// OnBeforeRequest time
	span.SetName(fmt.Sprintf("http %s", res.Request.Method))
	span.SetAttributes(httpconv.ClientRequest(res.Request.RawRequest)...)
	span.SetAttributes(httpconv.ClientResponse(res.RawResponse)...)

	id, ok := ctx.Value(exchangeIdKey{}).(string)
	if !ok {
		return nil
	}
	r.output.Write(id, formatHttpMessage(res))
	slog.DebugContext(
		ctx, "request succeeded",
		"method", res.Request.Method,
		"url", res.Request.URL,
		"exchange_id", id,
	)
	return nil
}

func (r *recorder) fail(req *resty.Request, err error) {
	ctx := req.Context()
	span := trace.SpanFromContext(ctx)
	defer span.End()

	span.RecordError(err)
	span.SetStatus(codes.Error, "request failed")

	attrs := []any{
		"method", req.Method,
		"url", req.URL,
		"err", err,
	}
	if id, ok := ctx.Value(exchangeIdKey{}).(string); ok {
		attrs = append(attrs, "exchange_id", id)
	}
	slog.ErrorContext(ctx, "request failed", attrs...)

	span.SetName(fmt.Sprintf("http %s", req.Method))
	if req.RawRequest != nil {
		span.SetAttributes(httpconv.ClientRequest(req.RawRequest)...)
	}
}
