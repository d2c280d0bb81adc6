package app

import (
	"bytes"
	"testing"
	"time"

	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"

	"github.com/zjrosen/caseview/internal/config"
	"github.com/zjrosen/caseview/internal/contentview"
	"github.com/zjrosen/caseview/internal/flags"
)

func waitForOutput(t *testing.T, tm *teatest.TestModel, want string) {
	t.Helper()
	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte(want))
	}, teatest.WithDuration(3*time.Second), teatest.WithCheckInterval(20*time.Millisecond))
}

// TestApp_Program runs the real program loop: selections travel through the
// broker and listeners rather than being fed to Update by the test.
func TestApp_Program(t *testing.T) {
	cfg := config.Defaults()
	cfg.AutoRefresh = false
	busy := NewBusy()
	m := New(Options{
		Config:   cfg,
		Flags:    flags.New(nil),
		Registry: contentview.NewRegistry(testFactories(""), &fakeCase{}, contentview.WithBusy(busy)),
		Loader:   newLoader(),
		Busy:     busy,
		CaseName: "case",
	})
	t.Cleanup(func() { _ = m.Close() })

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 30))
	waitForOutput(t, tm, "Info:case")

	tm.Type("l")
	tm.Type("j")
	waitForOutput(t, tm, "Text:a.txt")

	tm.Type("o")
	waitForOutput(t, tm, "window 2/2")

	tm.Type("q")
	final, ok := tm.FinalModel(t, teatest.WithFinalTimeout(3*time.Second)).(Model)
	if assert.True(t, ok) {
		assert.Equal(t, "a.txt", final.tree.Selected().Name())
		assert.Len(t, final.windows, 2)
	}
}
