package notify

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextNotifierCollects(t *testing.T) {
	ctx, c := NewContext(context.Background())
	ContextNotifier{}.Notify(ctx, Success("Budget created successfully!"))

	got, ok := FromContext(ctx)
	require.True(t, ok)
	require.Same(t, c, got)

	items := c.Drain()
	require.Len(t, items, 1)
	assert.Equal(t, LevelSuccess, items[0].Level)
	assert.Equal(t, "Budget created successfully!", items[0].Message)
	assert.Empty(t, c.Drain())
}

func TestContextNotifierLogsWithoutCollector(t *testing.T) {
	var buf bytes.Buffer
	n := ContextNotifier{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	n.Notify(context.Background(), Success("done"))

	assert.True(t, strings.Contains(buf.String(), "message=done"), buf.String())
}

func TestFunc(t *testing.T) {
	var got []Notification
	var n Notifier = Func(func(_ context.Context, note Notification) { got = append(got, note) })
	n.Notify(context.Background(), Notification{Level: LevelInfo, Message: "hi"})
	assert.Equal(t, []Notification{{Level: LevelInfo, Message: "hi"}}, got)
}
