package measure

import (
	"time"

	"github.com/askiada/go-vectorize/pkg/vectorize/model"
)

type pipelineMeasure struct {
	Measure
}

func (pm *pipelineMeasure) New() error {
	pm.AddMetric(model.StartStage.Name)
	pm.AddMetric(model.EndStage.Name)

	return nil
}

func (pm *pipelineMeasure) PrepareStage(parentStage, stage *model.StageInfo) error {
	pm.AddMetric(stage.Name).AddTransition(parentStage.Name)

	return nil
}

func (pm *pipelineMeasure) OnStageEnd(stage *model.StageInfo, elapsed time.Duration, err error) error {
	mt := pm.AddMetric(stage.Name)
	mt.AddDuration(elapsed)
	if err != nil {
		mt.AddFailure()
	}

	return nil
}

func (pm *pipelineMeasure) OnRunEnd(result *model.Result) error {
	pm.AddOutcome(result.Kind)

	return nil
}

func (pm *pipelineMeasure) Finish() error {
	return nil
}

func PipelineMeasure(measure Measure) model.PipelineOption {
	return &pipelineMeasure{measure}
}
