// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestGenerateRequestID(t *testing.T) {
	t.Parallel()

	a := GenerateRequestID()
	b := GenerateRequestID()
	if a == b {
		t.Error("request IDs should be unique")
	}
	if len(a) != 36 {
		t.Errorf("expected UUID length 36, got %d", len(a))
	}
}

func TestRequestIDContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if got := RequestIDFromContext(ctx); got != "" {
		t.Errorf("expected empty request ID, got %q", got)
	}

	ctx = ContextWithRequestID(ctx, "req-123")
	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Errorf("RequestIDFromContext() = %q, want req-123", got)
	}
}

func TestCtx(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), zerolog.New(&buf))
	ctx = ContextWithRequestID(ctx, "req-abc")

	Ctx(ctx).Info().Msg("with request")

	if !strings.Contains(buf.String(), `"request_id":"req-abc"`) {
		t.Errorf("expected request_id in output, got: %s", buf.String())
	}
}

func TestLoggerFromContext_Fallback(t *testing.T) {
	t.Parallel()

	l := LoggerFromContext(context.Background())
	if l.GetLevel() != Logger().GetLevel() {
		t.Error("expected global logger fallback")
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer

	prev := Logger()
	SetLogger(zerolog.New(&buf))
	t.Cleanup(func() { SetLogger(prev) })

	l := WithComponent("ingest")
	l.Info().Msg("hello")

	if !strings.Contains(buf.String(), `"component":"ingest"`) {
		t.Errorf("expected component field, got: %s", buf.String())
	}
}
