package model

import "time"

// PipelineOption defines the interface for pipeline options.
// Stage and run hooks are called from every run of the pipeline and must be safe for concurrent use.
type PipelineOption interface {
	// New initialises the pipeline option.
	New() error

	pipelineStageOption
	pipelineRunOption

	// Finish runs once the pipeline is closed.
	Finish() error
}

// pipelineStageOption defines the interface for stage options at the pipeline level.
type pipelineStageOption interface {
	// PrepareStage runs before the stage is executed.
	PrepareStage(parentStage, stage *StageInfo) error
	// OnStageEnd runs once the stage returned, err is nil on success.
	OnStageEnd(stage *StageInfo, elapsed time.Duration, err error) error
}

// pipelineRunOption defines the interface for run options at the pipeline level.
type pipelineRunOption interface {
	// OnRunEnd runs after a run reached its terminal outcome.
	OnRunEnd(result *Result) error
}
