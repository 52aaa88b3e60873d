package drawer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-vectorize/pkg/vectorize/measure"
	"github.com/askiada/go-vectorize/pkg/vectorize/model"
)

type pipelineDrawer struct {
	Drawer
	m measure.Measure
}

func (pd *pipelineDrawer) New() error {
	err := pd.AddStage(model.StartStage.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add start stage to drawer")
	}
	err = pd.AddStage(model.EndStage.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add end stage to drawer")
	}

	return nil
}

func (pd *pipelineDrawer) PrepareStage(parentStage, stage *model.StageInfo) error {
	err := pd.AddStage(stage.Name)
	if err != nil {
		return err
	}
	err = pd.AddLink(parentStage.Name, stage.Name)
	if err != nil {
		return err
	}

	return nil
}

func (pd *pipelineDrawer) OnStageEnd(stage *model.StageInfo, _ time.Duration, err error) error {
	if err == nil || stage == model.EndStage {
		return nil
	}

	return pd.MarkFailure(stage.Name)
}

func (pd *pipelineDrawer) OnRunEnd(_ *model.Result) error {
	return nil
}

func (pd *pipelineDrawer) Finish() error {
	if pd.m != nil {
		err := pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err := pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw cascade")
	}

	return nil
}

// PipelineDrawer draws the cascade of every run when the pipeline is closed. measure is optional,
// and must be registered as a pipeline option of its own to be filled.
func PipelineDrawer(drawer Drawer, measure measure.Measure) model.PipelineOption {
	return &pipelineDrawer{drawer, measure}
}
