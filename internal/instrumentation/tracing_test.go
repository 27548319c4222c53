package instrumentation

import (
	"context"
	"errors"
	"testing"

	"github.com/teemow/calview/internal/logging"
)

func TestSpanAttributeBuilder(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithUser("005xx000001Sv6AAAS").
		WithMonth("2025-02").
		WithSource("google").
		WithEventCounts(12, 1).
		Build()

	if len(attrs) != 5 {
		t.Fatalf("expected 5 attributes, got %d", len(attrs))
	}

	attrMap := make(map[string]interface{})
	for _, attr := range attrs {
		attrMap[string(attr.Key)] = attr.Value.AsInterface()
	}

	if attrMap[SpanAttrUserHash] != logging.AnonymizeUser("005xx000001Sv6AAAS") {
		t.Errorf("expected hashed user, got %v", attrMap[SpanAttrUserHash])
	}
	if attrMap[SpanAttrMonth] != "2025-02" {
		t.Errorf("expected month '2025-02', got %v", attrMap[SpanAttrMonth])
	}
	if attrMap[SpanAttrSource] != "google" {
		t.Errorf("expected source 'google', got %v", attrMap[SpanAttrSource])
	}
	if attrMap[SpanAttrEvents] != int64(12) || attrMap[SpanAttrSkipped] != int64(1) {
		t.Errorf("unexpected event counts %v/%v", attrMap[SpanAttrEvents], attrMap[SpanAttrSkipped])
	}
}

func TestSpanAttributeBuilder_EmptyUser(t *testing.T) {
	attrs := NewSpanAttributeBuilder().WithUser("").Build()
	if len(attrs) != 0 {
		t.Errorf("expected empty user to be skipped, got %d attributes", len(attrs))
	}
}

func TestSpans(t *testing.T) {
	ctx := context.Background()

	ctx, span := StartSpan(ctx, "calendar.load")
	SetSpanSuccess(span)
	span.End()

	_, apiSpan := StartGoogleAPISpan(ctx, ServiceCalendar, OperationList)
	SetSpanError(apiSpan, errors.New("quota exceeded"))
	SetSpanError(apiSpan, nil)
	apiSpan.End()

	_, serverSpan := StartServerSpan(ctx, "GET", "/api/calendar")
	serverSpan.End()
}

func TestGetTraceID_NoSpan(t *testing.T) {
	if id := GetTraceID(context.Background()); id != "" {
		t.Errorf("expected empty trace id, got %q", id)
	}
}
