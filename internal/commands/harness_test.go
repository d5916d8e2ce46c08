package commands_test

import (
	"testing"

	"instastudio/internal/commands"
	"instastudio/internal/editing"
	"instastudio/internal/media/clip"
	"instastudio/internal/testsupport"
)

type execHarness struct {
	runner   *testsupport.FakeRunner
	executor *commands.Executor
	media    *testsupport.MediaHarness
}

func newExecHarness(t *testing.T) *execHarness {
	t.Helper()
	media := testsupport.NewMediaHarness(t)
	engine := editing.NewEngine(media.Loader, media.Runner, nil)
	return &execHarness{
		runner:   media.Runner,
		executor: commands.NewExecutor(engine, nil),
		media:    media,
	}
}

func (h *execHarness) source(t *testing.T, name string, duration float64, width, height int, audio bool) clip.Clip {
	t.Helper()
	return h.media.Source(t, name, duration, width, height, audio)
}
