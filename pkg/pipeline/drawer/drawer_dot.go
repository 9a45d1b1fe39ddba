package drawer

import (
	"fmt"
	"html"
	"io"
	"os"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/pipeline-publish/internal/store"
	"github.com/askiada/pipeline-publish/pkg/pipeline/measure"
)

const publishVertex = "control plane"

func parameterVertex(name string) string {
	return "param: " + name
}

func callVertex(name string) string {
	return "call: " + name
}

// DOTDrawer is a drawer that writes the pipeline graph as a Graphviz DOT file.
type DOTDrawer struct {
	graph       graph.Graph[string, string]
	store       *store.OrderedStore[string, string]
	attributes  map[string]string
	dotFileName string
	out         io.Writer
}

// NewDOTDrawer creates a drawer writing to dotFileName.
func NewDOTDrawer(dotFileName string) *DOTDrawer {
	d := newDOTDrawer()
	d.dotFileName = dotFileName

	return d
}

// NewDOTWriterDrawer creates a drawer writing to w.
func NewDOTWriterDrawer(w io.Writer) *DOTDrawer {
	d := newDOTDrawer()
	d.out = w

	return d
}

func newDOTDrawer() *DOTDrawer {
	vertexStore := store.NewOrderedStore[string, string]()

	return &DOTDrawer{
		graph:      graph.NewWithStore(graph.StringHash, vertexStore, graph.Directed()),
		store:      vertexStore,
		attributes: map[string]string{"rankdir": "LR"},
	}
}

// AddParameter adds a path parameter to the pipeline graph.
func (d *DOTDrawer) AddParameter(name, defaultValue string) error {
	err := d.graph.AddVertex(parameterVertex(name),
		graph.VertexAttribute("shape", "parallelogram"),
		graph.VertexAttribute("xlabel", defaultValue),
	)
	if err != nil {
		return errors.Wrap(err, "unable to add vertex")
	}

	return nil
}

// AddStep adds a step to the pipeline graph.
func (d *DOTDrawer) AddStep(name, computeTarget string) error {
	err := d.graph.AddVertex(name,
		graph.VertexAttribute("shape", "box"),
		graph.VertexAttribute("xlabel", computeTarget),
	)
	if err != nil {
		return errors.Wrap(err, "unable to add vertex")
	}

	return nil
}

// AddLink adds a link between a producer and a consuming step.
func (d *DOTDrawer) AddLink(producerName, consumerName, label string) error {
	err := d.graph.AddEdge(producerName, consumerName, graph.EdgeAttribute("label", label))
	if err != nil {
		return errors.Wrapf(err, "unable to add edge from %s to %s", producerName, consumerName)
	}

	return nil
}

// Draw writes the pipeline graph.
func (d *DOTDrawer) Draw() error {
	if d.out != nil {
		return dot(d.store, d.graph, d.out, d.graphAttributes)
	}

	file, err := os.Create(d.dotFileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", d.dotFileName)
	}
	defer file.Close() //nolint:errcheck // close error is reported by the sync below

	err = dot(d.store, d.graph, file, d.graphAttributes)
	if err != nil {
		return errors.Wrapf(err, "unable to create dot file %s", d.dotFileName)
	}

	return errors.Wrapf(file.Sync(), "unable to write dot file %s", d.dotFileName)
}

func (d *DOTDrawer) graphAttributes(desc *description) {
	for k, v := range d.attributes {
		desc.Attributes[k] = v
	}
}

// SetTotalTime labels the graph with the total run time.
func (d *DOTDrawer) SetTotalTime(total time.Duration) error {
	d.attributes["label"] = "total: " + total.String()

	return nil
}

const maxRGB = 240

// AddMeasure appends the recorded control plane calls as a chain of vertices, in the
// order they were first made. Each vertex is labelled with its average latency and
// the edge leading to it is coloured from blue (fastest) to red (slowest).
func (d *DOTDrawer) AddMeasure(msr measure.Measure) error {
	metrics := msr.AllMetrics()

	var names []string
	for _, name := range msr.Names() {
		if metrics[name].Calls() > 0 {
			names = append(names, name)
		}
	}

	if len(names) == 0 {
		return nil
	}

	elapsed := make([]time.Duration, 0, len(names))
	for _, name := range names {
		elapsed = append(elapsed, metrics[name].AVGDuration())
	}

	edgeColours, err := gradient(elapsed)
	if err != nil {
		return err
	}

	err = d.graph.AddVertex(publishVertex, graph.VertexAttribute("shape", "oval"))
	if err != nil {
		return errors.Wrap(err, "unable to add vertex")
	}

	previous := publishVertex
	for i, name := range names {
		mt := metrics[name]
		label := elapsed[i].String()
		if mt.Calls() > 1 {
			label = fmt.Sprintf("%s avg over %d calls", label, mt.Calls())
		}
		if mt.Errors() > 0 {
			label = fmt.Sprintf("%s, %d failed", label, mt.Errors())
		}

		current := callVertex(name)
		err := d.graph.AddVertex(current,
			graph.VertexAttribute("shape", "note"),
			graph.VertexAttribute("xlabel", label),
		)
		if err != nil {
			return errors.Wrap(err, "unable to add vertex")
		}

		err = d.graph.AddEdge(previous, current,
			graph.EdgeAttribute("color", edgeColours[elapsed[i]]),
			graph.EdgeAttribute("fontcolor", "blue"),
		)
		if err != nil {
			return errors.Wrap(err, "unable to add edge")
		}

		previous = current
	}

	return nil
}

// gradient maps every duration to a colour, blue for the fastest and red for the
// slowest.
func gradient(durations []time.Duration) (map[time.Duration]string, error) {
	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] > sorted[j]
	})

	maxValue := sorted[0]
	minValue := sorted[len(sorted)-1]

	res := make(map[time.Duration]string, len(sorted))
	for _, curr := range sorted {
		fraction := 1.0
		if maxValue > minValue {
			fraction = float64(curr-minValue) / float64(maxValue-minValue)
		}

		red := maxRGB * fraction
		blue := maxRGB - red

		colour, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
		if err != nil {
			return nil, errors.Wrap(err, "unable to get colour")
		}

		res[curr] = colour.ToHEX().String()
	}

	return res, nil
}

//nolint:lll //this is a template
const dotTemplate = `strict {{.GraphType}} {
	{{range $k, $v := .Attributes}}
		{{$k}}="{{quote $v}}";
	{{end}}
	{{range $s := .Statements}}
		"{{quote .Source}}" {{if .Target}}{{$.EdgeOperator}} "{{quote .Target}}" [ {{range $k, $v := .EdgeAttributes}}{{$k}}="{{quote $v}}", {{end}} weight={{.EdgeWeight}} ]{{else}}[ {{range $k, $v := .HTMLAttributes}}{{$k}}={{$v}}, {{end}} {{range $k, $v := .SourceAttributes}}{{$k}}="{{quote $v}}", {{end}} weight={{.SourceWeight}} ]{{end}};
	{{end}}
	}
	`

type description struct {
	GraphType    string
	Attributes   map[string]string
	EdgeOperator string
	Statements   []statement
}

type statement struct {
	Source           interface{}
	Target           interface{}
	SourceAttributes map[string]string
	HTMLAttributes   map[string]string
	EdgeAttributes   map[string]string
	SourceWeight     int
	EdgeWeight       int
}

func dot(st *store.OrderedStore[string, string], g graph.Graph[string, string], wrt io.Writer, options ...func(*description)) error {
	desc, err := generateDOT(st, g, options...)
	if err != nil {
		return fmt.Errorf("failed to generate DOT description: %w", err)
	}

	return renderDOT(wrt, desc)
}

// generateDOT lists vertices, then edges, in insertion order so that the same
// pipeline always renders to the same file.
func generateDOT(st *store.OrderedStore[string, string], gra graph.Graph[string, string], options ...func(*description)) (description, error) {
	desc := description{
		GraphType:    "graph",
		Attributes:   make(map[string]string),
		EdgeOperator: "--",
		Statements:   make([]statement, 0),
	}

	for _, option := range options {
		option(&desc)
	}

	if gra.Traits().IsDirected {
		desc.GraphType = "digraph"
		desc.EdgeOperator = "->"
	}

	vertices, err := st.ListVertices()
	if err != nil {
		return desc, errors.Wrap(err, "unable to list vertices")
	}

	for _, vertex := range vertices {
		_, sourceProperties, err := gra.VertexWithProperties(vertex)
		if err != nil {
			return desc, errors.Wrap(err, "unable to get vertex properties")
		}

		htmlAttributes := make(map[string]string)
		sourceAttributes := make(map[string]string, len(sourceProperties.Attributes))

		for k, v := range sourceProperties.Attributes {
			sourceAttributes[k] = v
		}

		if xlabel, ok := sourceAttributes["xlabel"]; ok {
			htmlAttributes["label"] = fmt.Sprintf(`<%s <BR /> <FONT POINT-SIZE="10">%s</FONT>>`,
				html.EscapeString(vertex), html.EscapeString(xlabel))

			delete(sourceAttributes, "xlabel")
		}

		desc.Statements = append(desc.Statements, statement{
			Source:           vertex,
			SourceWeight:     sourceProperties.Weight,
			SourceAttributes: sourceAttributes,
			HTMLAttributes:   htmlAttributes,
		})
	}

	edges, err := st.ListEdges()
	if err != nil {
		return desc, errors.Wrap(err, "unable to list edges")
	}

	for _, edge := range edges {
		desc.Statements = append(desc.Statements, statement{
			Source:         edge.Source,
			Target:         edge.Target,
			EdgeWeight:     edge.Properties.Weight,
			EdgeAttributes: edge.Properties.Attributes,
		})
	}

	return desc, nil
}

func renderDOT(wrt io.Writer, desc description) error {
	tpl, err := template.New("dotTemplate").Funcs(template.FuncMap{"quote": quoteID}).Parse(dotTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	err = tpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

var _ Drawer = (*DOTDrawer)(nil)

// quoteID escapes a value placed inside a double quoted DOT ID.
func quoteID(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
