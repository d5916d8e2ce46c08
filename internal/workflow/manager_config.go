package workflow

import "instastudio/internal/queue"

// ConfigureStages registers the concrete stage handlers the workflow will run.
func (m *Manager) ConfigureStages(set StageSet) {
	var pipeline []pipelineStage

	if set.Translator != nil {
		pipeline = append(pipeline, pipelineStage{
			name:             "translator",
			handler:          set.Translator,
			startStatus:      queue.StatusPending,
			processingStatus: queue.StatusTranslating,
			doneStatus:       queue.StatusTranslated,
		})
	}
	if set.Assembler != nil {
		pipeline = append(pipeline, pipelineStage{
			name:             "assembler",
			handler:          set.Assembler,
			startStatus:      queue.StatusTranslated,
			processingStatus: queue.StatusAssembling,
			doneStatus:       queue.StatusRendered,
		})
	}
	if set.Publisher != nil {
		pipeline = append(pipeline, pipelineStage{
			name:             "publisher",
			handler:          set.Publisher,
			startStatus:      queue.StatusRendered,
			processingStatus: queue.StatusPublishing,
			doneStatus:       queue.StatusCompleted,
		})
	}

	stageByStart := make(map[queue.Status]pipelineStage, len(pipeline))
	statusOrder := make([]queue.Status, 0, len(pipeline))
	for _, stg := range pipeline {
		stageByStart[stg.startStatus] = stg
		statusOrder = append(statusOrder, stg.startStatus)
	}

	m.mu.Lock()
	m.pipeline = pipeline
	m.stageByStart = stageByStart
	m.statusOrder = statusOrder
	m.mu.Unlock()
}

func (m *Manager) stageForStatus(status queue.Status) (pipelineStage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stg, ok := m.stageByStart[status]
	return stg, ok
}
