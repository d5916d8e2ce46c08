package workflow

import (
	"instastudio/internal/queue"
	"instastudio/internal/stage"
)

// StageSet bundles the concrete workflow handlers the manager orchestrates.
type StageSet struct {
	Translator stage.Handler
	Assembler  stage.Handler
	Publisher  stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}
