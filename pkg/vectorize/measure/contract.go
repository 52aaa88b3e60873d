package measure

import (
	"time"

	"github.com/askiada/go-vectorize/pkg/vectorize/model"
)

type Measure interface {
	AddMetric(name string) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
	AddOutcome(kind model.ResultKind)
	Outcomes() map[model.ResultKind]int64
}

type Metric interface {
	AddDuration(elapsed time.Duration)
	AddFailure()
	AddTransition(parentStageName string)
	AVGDuration() time.Duration
	Total() int64
	Failures() int64
	AllTransitions() map[string]int64
}
