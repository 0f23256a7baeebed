package helper

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrettyHandler(t *testing.T) {
	t.Run("Create PrettyHandler with default options", func(t *testing.T) {
		var buf bytes.Buffer

		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		require.NotNil(t, handler, "Expected NewPrettyHandler to return a non-nil handler")
		assert.NotNil(t, handler.Handler, "Expected handler to have a non-nil Handler field")
		assert.NotNil(t, handler.l, "Expected handler to have a non-nil logger field")
	})

	t.Run("Level option is respected by Enabled", func(t *testing.T) {
		var buf bytes.Buffer
		opts := PrettyHandlerOptions{SlogOpts: slog.HandlerOptions{Level: slog.LevelWarn}}

		handler := NewPrettyHandler(&buf, opts)

		assert.False(t, handler.Enabled(context.Background(), slog.LevelInfo))
		assert.True(t, handler.Enabled(context.Background(), slog.LevelError))
	})
}

func TestPrettyHandlerHandle(t *testing.T) {
	ctx := context.Background()

	levels := []struct {
		level  slog.Level
		prefix string
	}{
		{slog.LevelDebug, "DEBUG:"},
		{slog.LevelInfo, "INFO:"},
		{slog.LevelWarn, "WARN:"},
		{slog.LevelError, "ERROR:"},
	}
	for _, l := range levels {
		t.Run("Handle "+l.prefix+" record", func(t *testing.T) {
			var buf bytes.Buffer
			handler := NewPrettyHandler(&buf, PrettyHandlerOptions{SlogOpts: slog.HandlerOptions{Level: slog.LevelDebug}})

			record := slog.NewRecord(time.Now(), l.level, "Inserted mentions", 0)
			record.AddAttrs(slog.Int("num_mentions", 3))

			err := handler.Handle(ctx, record)

			assert.NoError(t, err, "Expected Handle to not return an error")
			output := buf.String()
			assert.Contains(t, output, l.prefix, "Expected output to contain the level")
			assert.Contains(t, output, "Inserted mentions", "Expected output to contain the message")
			assert.Contains(t, output, `"num_mentions": 3`, "Expected output to contain the attribute")
		})
	}

	t.Run("Handle record with several attributes", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		record := slog.NewRecord(time.Now(), slog.LevelWarn, "Unknown tags in annotation", 0)
		record.AddAttrs(
			slog.String("title", "Grace Kelly"),
			slog.Bool("embedded", false),
			slog.Float64("score", 0.75),
		)

		err := handler.Handle(ctx, record)

		assert.NoError(t, err)
		output := buf.String()
		assert.Contains(t, output, `"title": "Grace Kelly"`)
		assert.Contains(t, output, `"embedded": false`)
		assert.Contains(t, output, `"score": 0.75`)
	})

	t.Run("Handle record without attributes", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		record := slog.NewRecord(time.Now(), slog.LevelInfo, "Using default pipeline", 0)

		err := handler.Handle(ctx, record)

		assert.NoError(t, err)
		assert.Contains(t, buf.String(), "{}", "Expected empty attribute object")
	})

	t.Run("Time is formatted with milliseconds", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})
		at := time.Date(2026, 1, 2, 15, 4, 5, 123000000, time.UTC)

		err := handler.Handle(ctx, slog.NewRecord(at, slog.LevelInfo, "msg", 0))

		assert.NoError(t, err)
		assert.True(t, strings.HasPrefix(buf.String(), "[15:04:05.123]"), "Expected output to start with the time, got %q", buf.String())
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("Logger writes through the pretty handler", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf, slog.LevelInfo)

		logger.Info("Inserted document", slog.String("document_id", "abc"))

		assert.Contains(t, buf.String(), "Inserted document")
		assert.Contains(t, buf.String(), `"document_id": "abc"`)
	})

	t.Run("Logger drops records below its level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf, slog.LevelWarn)

		logger.Info("not shown")
		logger.Debug("not shown either")

		assert.Empty(t, buf.String())
	})
}
