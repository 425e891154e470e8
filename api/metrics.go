package api

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName            = "prism-todo/api"
	documentSpanName      = "prism.document.request"
	documentEventName     = "document.request"
	documentEventDomain   = "prism.document"
	observabilityEventMsg = "observability.event"
)

// documentRequestMetrics records timings for export and import requests and
// emits them once per request as a span plus a structured log entry.
type documentRequestMetrics struct {
	logger         *log.Logger
	span           trace.Span
	route          string
	start          time.Time
	readDuration   time.Duration
	decodeDuration time.Duration
	encodeDuration time.Duration
	documentBytes  int64
	tasks          int
	errorStage     string
}

func newDocumentRequestMetrics(ctx context.Context, logger *log.Logger, route string) (*documentRequestMetrics, context.Context) {
	spanCtx, span := otel.Tracer(tracerName).Start(ctx, documentSpanName,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("http.route", route)),
	)
	return &documentRequestMetrics{
		logger: logger,
		span:   span,
		route:  route,
		start:  time.Now(),
	}, spanCtx
}

func (m *documentRequestMetrics) ObserveRead(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.readDuration = duration
}

func (m *documentRequestMetrics) ObserveDecode(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.decodeDuration = duration
}

func (m *documentRequestMetrics) ObserveEncode(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.encodeDuration = duration
}

func (m *documentRequestMetrics) SetDocumentBytes(n int64) {
	if n < 0 {
		n = 0
	}
	m.documentBytes = n
}

func (m *documentRequestMetrics) SetTasks(count int) {
	if count < 0 {
		count = 0
	}
	m.tasks = count
}

func (m *documentRequestMetrics) SetErrorStage(stage string) {
	if stage == "" {
		return
	}
	m.errorStage = stage
}

func (m *documentRequestMetrics) attributes(status int, err error) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("http.route", m.route),
		attribute.Int("http.status_code", status),
		attribute.Float64("prism.document.total_ms", durationToMillis(time.Since(m.start))),
		attribute.Int64("prism.document.bytes", m.documentBytes),
		attribute.Int("prism.document.tasks", m.tasks),
	}
	if m.readDuration > 0 {
		attrs = append(attrs, attribute.Float64("prism.document.read_ms", durationToMillis(m.readDuration)))
	}
	if m.decodeDuration > 0 {
		attrs = append(attrs, attribute.Float64("prism.document.decode_ms", durationToMillis(m.decodeDuration)))
	}
	if m.encodeDuration > 0 {
		attrs = append(attrs, attribute.Float64("prism.document.encode_ms", durationToMillis(m.encodeDuration)))
	}
	if m.errorStage != "" {
		attrs = append(attrs, attribute.String("prism.document.error_stage", m.errorStage))
	}
	if err != nil {
		attrs = append(attrs, attribute.String("error.message", err.Error()))
	}
	return attrs
}

// Log ends the span and writes the observability entry.
func (m *documentRequestMetrics) Log(status int, err error) {
	if m == nil {
		return
	}

	attrs := m.attributes(status, err)
	severityText, severityNumber := severityForStatus(status, err)

	if m.span != nil {
		m.span.SetAttributes(attrs...)
		eventAttrs := append([]attribute.KeyValue{
			attribute.String("event.name", documentEventName),
			attribute.String("event.domain", documentEventDomain),
			attribute.String("severity_text", severityText),
			attribute.Int("severity_number", severityNumber),
		}, attrs...)
		m.span.AddEvent(observabilityEventMsg, trace.WithAttributes(eventAttrs...))
		switch {
		case err != nil:
			m.span.SetStatus(codes.Error, err.Error())
		case status >= http.StatusInternalServerError:
			m.span.SetStatus(codes.Error, http.StatusText(status))
		case status >= http.StatusBadRequest:
			m.span.SetStatus(codes.Error, m.errorStage)
		default:
			m.span.SetStatus(codes.Ok, "")
		}
		m.span.End()
	}

	if m.logger == nil {
		return
	}
	attrMap := make(map[string]any, len(attrs))
	for _, kv := range attrs {
		attrMap[string(kv.Key)] = kv.Value.AsInterface()
	}
	fields := log.Fields{
		"event.name":      documentEventName,
		"event.domain":    documentEventDomain,
		"severity_text":   severityText,
		"severity_number": severityNumber,
		"attributes":      attrMap,
	}
	if m.span != nil {
		if sc := m.span.SpanContext(); sc.IsValid() {
			fields["trace_id"] = sc.TraceID().String()
			fields["span_id"] = sc.SpanID().String()
		}
	}
	entry := m.logger.WithFields(fields)
	switch severityText {
	case "ERROR":
		entry.Error(observabilityEventMsg)
	case "WARN":
		entry.Warn(observabilityEventMsg)
	default:
		entry.Info(observabilityEventMsg)
	}
}

// severityForStatus maps a response to OpenTelemetry log severity.
func severityForStatus(status int, err error) (string, int) {
	switch {
	case err != nil || status >= http.StatusInternalServerError:
		return "ERROR", 17
	case status >= http.StatusBadRequest:
		return "WARN", 13
	default:
		return "INFO", 9
	}
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
