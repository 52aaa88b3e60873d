package drawer_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-vectorize/pkg/vectorize/drawer"
	"github.com/askiada/go-vectorize/pkg/vectorize/measure"
	"github.com/askiada/go-vectorize/pkg/vectorize/model"
)

func TestDOTDrawerIdempotent(t *testing.T) {
	t.Parallel()

	d := drawer.NewDOTDrawer(filepath.Join(t.TempDir(), "cascade.dot"))
	require.NoError(t, d.AddStage("start"))
	require.NoError(t, d.AddStage("start"))
	require.NoError(t, d.AddStage("fast"))
	require.NoError(t, d.AddLink("start", "fast"))
	require.NoError(t, d.AddLink("start", "fast"))
	require.Error(t, d.AddLink("start", "missing"))
	require.Error(t, d.MarkFailure("missing"))

	var sb strings.Builder
	_, err := d.WriteTo(&sb)
	require.NoError(t, err)

	out := sb.String()
	assert.True(t, strings.HasPrefix(out, "strict digraph {"))
	assert.Equal(t, 1, strings.Count(out, `"start" -> "fast"`))
}

func TestPipelineDrawer(t *testing.T) {
	t.Parallel()

	fileName := filepath.Join(t.TempDir(), "cascade.dot")
	m := measure.NewDefaultMeasure()
	d := drawer.NewDOTDrawer(fileName)

	opts := []model.PipelineOption{measure.PipelineMeasure(m), drawer.PipelineDrawer(d, m)}
	for _, opt := range opts {
		require.NoError(t, opt.New())
	}

	decode := &model.StageInfo{Type: model.DecodeStageType, Name: "decode"}
	fast := &model.StageInfo{Type: model.AttemptStageType, Name: "fast"}
	balanced := &model.StageInfo{Type: model.AttemptStageType, Name: "balanced", Index: 1}

	run := func(failFast bool) {
		steps := []struct {
			parent, stage *model.StageInfo
			err           error
		}{
			{model.StartStage, decode, nil},
			{decode, fast, nil},
		}
		last := fast
		if failFast {
			steps[1].err = assert.AnError
			steps = append(steps, struct {
				parent, stage *model.StageInfo
				err           error
			}{fast, balanced, nil})
			last = balanced
		}
		steps = append(steps, struct {
			parent, stage *model.StageInfo
			err           error
		}{last, model.EndStage, nil})

		for _, step := range steps {
			for _, opt := range opts {
				require.NoError(t, opt.PrepareStage(step.parent, step.stage))
				require.NoError(t, opt.OnStageEnd(step.stage, time.Millisecond, step.err))
			}
		}
		for _, opt := range opts {
			require.NoError(t, opt.OnRunEnd(&model.Result{Kind: model.ResultSuccess}))
		}
	}

	run(false)
	run(true)
	run(true)

	for _, opt := range opts {
		require.NoError(t, opt.Finish())
	}

	data, err := os.ReadFile(fileName)
	require.NoError(t, err)
	out := string(data)

	assert.Regexp(t, `"decode" -> "fast" \[ color="#[0-9a-fA-F]+", fontcolor="blue", label="3"`, out)
	assert.Regexp(t, `"fast" -> "balanced" \[ color="#[0-9a-fA-F]+", fontcolor="blue", label="2"`, out)
	assert.Regexp(t, `"fast" -> "end" \[ color="#[0-9a-fA-F]+", fontcolor="blue", label="1"`, out)
	assert.Contains(t, out, `failed: 2`)
	assert.Contains(t, out, `color="red"`)
}
