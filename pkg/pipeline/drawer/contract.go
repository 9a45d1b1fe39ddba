package drawer

import (
	"time"

	"github.com/askiada/pipeline-publish/pkg/pipeline/measure"
)

// Drawer is an interface that defines the methods for drawing a pipeline.
type Drawer interface {
	// AddParameter adds a path parameter vertex.
	AddParameter(name, defaultValue string) error
	// AddStep adds a step vertex.
	AddStep(name, computeTarget string) error
	// AddLink adds a link between a producer (step or parameter) and a consuming step.
	AddLink(producerName, consumerName, label string) error
	// Draw writes the pipeline graph.
	Draw() error
	// SetTotalTime labels the graph with the total run time.
	SetTotalTime(total time.Duration) error
	// AddMeasure adds the control plane calls recorded in measure to the drawing.
	AddMeasure(measure measure.Measure) error
}
