package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlogLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := NewDefault(&buf, slog.LevelDebug)
	ctx := context.Background()

	log.Debug(ctx, "dbg")
	log.Info(ctx, "inf", "k", "v")
	log.Warn(ctx, "wrn")
	log.Error(ctx, "err")

	out := buf.String()
	require.Contains(t, out, "level=DEBUG")
	require.Contains(t, out, "msg=inf")
	require.Contains(t, out, "k=v")
	require.Contains(t, out, "level=WARN")
	require.Contains(t, out, "level=ERROR")
}

func TestSlogLogger_With(t *testing.T) {
	var buf bytes.Buffer
	log := NewDefault(&buf, slog.LevelInfo).With("component", "editor")

	log.Info(context.Background(), "hello")
	require.Contains(t, buf.String(), "component=editor")
}

func TestNewDefault_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewDefault(&buf, slog.LevelInfo)

	log.Debug(context.Background(), "hidden")
	require.Empty(t, buf.String())
}
