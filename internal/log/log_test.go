package log

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormat_FieldsAndOrphanKey(t *testing.T) {
	ts := time.Date(2026, 10, 18, 10, 45, 0, 0, time.UTC)

	got := format(ts, LevelInfo, CatView, "pass complete", []any{"node", 17, "active", 2, "orphan"})

	require.Equal(t, "2026-10-18T10:45:00 [INFO] [view] pass complete node=17 active=2 orphan=<missing>\n", got)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		err  bool
	}{
		{"debug", LevelDebug, false},
		{"", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"loud", LevelDebug, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestWrite_RespectsMinLevelAndEnabled(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(func() { defaultLogger = nil })

	SetMinLevel(LevelWarn)
	Info(CatCase, "hidden")
	Warn(CatCase, "shown", "path", "case.db")
	ErrorErr(CatCase, "failed", errors.New("boom"))

	SetEnabled(false)
	Error(CatCase, "muted")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.NotContains(t, out, "muted")
	require.Contains(t, out, "[WARN] [case] shown path=case.db")
	require.Contains(t, out, "[ERROR] [case] failed error=boom")
	require.Equal(t, 2, strings.Count(out, "\n"))
}

func TestNewListener_ReceivesEntries(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(func() { defaultLogger = nil })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener := NewListener(ctx)
	require.NotNil(t, listener)

	Debug(CatUI, "tab switched", "index", 3)

	event, ok := listener.Listen()().(LogEvent)
	require.True(t, ok)
	require.Contains(t, event.Payload, "tab switched index=3")
}

func TestNewListener_NilWithoutLogger(t *testing.T) {
	defaultLogger = nil
	require.Nil(t, NewListener(context.Background()))
	require.NotPanics(t, func() { Info(CatUI, "dropped") })
}
