package drawer

import (
	"io"

	"github.com/askiada/go-vectorize/pkg/vectorize/measure"
)

// Drawer is an interface that defines the methods for drawing the cascade of a pipeline.
type Drawer interface {
	// AddStage adds a stage to the drawer. Adding a known stage is a no-op.
	AddStage(stageName string) error
	// AddLink adds a link between parent and child stages. Adding a known link is a no-op.
	AddLink(parentStageName, childStageName string) error
	// MarkFailure records that the stage failed once.
	MarkFailure(stageName string) error
	// AddMeasure adds a measure to the drawer.
	AddMeasure(measure measure.Measure) error
	// Draw creates a file with the cascade graph.
	Draw() error
	// WriteTo writes the cascade graph in DOT format.
	WriteTo(w io.Writer) (int64, error)
}
