package drawer

import (
	"bytes"
	"cmp"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"text/template"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/go-vectorize/internal/store"
	"github.com/askiada/go-vectorize/pkg/vectorize/measure"
)

// DOTDrawer is a drawer that creates a DOT file with the cascade graph.
type DOTDrawer struct {
	graph       graph.Graph[string, string]
	store       store.CustomStore[string, string]
	dotFileName string
}

// NewDOTDrawer creates a new DOT drawer.
func NewDOTDrawer(dotFileName string) *DOTDrawer {
	st := store.NewMemoryStore[string, string]()

	return &DOTDrawer{
		dotFileName: dotFileName,
		store:       st,
		graph:       graph.NewWithStore(graph.StringHash, st, graph.Directed()),
	}
}

// AddStage adds a stage to the cascade graph.
func (d *DOTDrawer) AddStage(name string) error {
	err := d.graph.AddVertex(name)
	if err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return errors.Wrap(err, "unable to add vertex")
	}

	return nil
}

// AddLink adds a link between parent and child stages.
func (d *DOTDrawer) AddLink(parentName, childName string) error {
	err := d.graph.AddEdge(parentName, childName)
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childName)
	}

	return nil
}

// MarkFailure records one failure of the stage. Failed stages are drawn in red.
func (d *DOTDrawer) MarkFailure(stageName string) error {
	err := d.store.UpdateVertex(stageName, func(p *graph.VertexProperties) {
		p.Weight++
		p.Attributes["color"] = "red"
	})
	if err != nil {
		return errors.Wrapf(err, "unable to mark failure of %s", stageName)
	}

	return nil
}

// Draw creates a DOT file with the cascade graph.
func (d *DOTDrawer) Draw() error {
	file, err := os.Create(d.dotFileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", d.dotFileName)
	}
	defer file.Close()

	_, err = d.WriteTo(file)
	if err != nil {
		return errors.Wrapf(err, "unable to create dot file %s", d.dotFileName)
	}

	return nil
}

// WriteTo writes the cascade graph in DOT format.
func (d *DOTDrawer) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer

	err := dot(d.graph, &buf)
	if err != nil {
		return 0, err
	}

	return buf.WriteTo(w)
}

const maxRGB = 240

// AddMeasure labels stages with their average duration and failures, and links with the number
// of runs that went through them. Links are coloured from blue (rare) to red (frequent).
func (d *DOTDrawer) AddMeasure(msr measure.Measure) error {
	metrics := msr.AllMetrics()

	var minCount, maxCount int64
	for _, stage := range metrics {
		for _, count := range stage.AllTransitions() {
			if minCount == 0 || count < minCount {
				minCount = count
			}
			maxCount = max(maxCount, count)
		}
	}

	for name, stage := range metrics {
		label := ""
		if avg := stage.AVGDuration(); avg != 0 {
			label = avg.String()
		}
		if failures := stage.Failures(); failures > 0 {
			if label != "" {
				label += ", "
			}
			label += "failed: " + strconv.FormatInt(failures, 10)
		}
		if label != "" {
			err := d.store.UpdateVertex(name, func(p *graph.VertexProperties) {
				p.Attributes["xlabel"] = label
			})
			if err != nil && !errors.Is(err, graph.ErrVertexNotFound) {
				return errors.Wrap(err, "unable to update vertex")
			}
		}

		for parent, count := range stage.AllTransitions() {
			colour, err := heat(count, minCount, maxCount)
			if err != nil {
				return err
			}

			err = d.store.UpdateEdgeProperties(parent, name, func(p *graph.EdgeProperties) {
				p.Attributes["label"] = strconv.FormatInt(count, 10)
				p.Attributes["fontcolor"] = "blue"
				p.Attributes["color"] = colour
			})
			if err != nil && !errors.Is(err, graph.ErrEdgeNotFound) {
				return errors.Wrap(err, "unable to update edge")
			}
		}
	}

	return nil
}

func heat(count, minCount, maxCount int64) (string, error) {
	fraction := 1.0
	if maxCount > minCount {
		fraction = float64(count-minCount) / float64(maxCount-minCount)
	}

	red := maxRGB * fraction
	blue := maxRGB - red

	colour, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
	if err != nil {
		return "", errors.Wrap(err, "unable to get colour")
	}

	return colour.ToHEX().String(), nil
}

//nolint:lll //this is a template
const dotTemplate = `strict {{.GraphType}} {
	{{range $k, $v := .Attributes}}
		{{$k}}="{{$v}}";
	{{end}}
	{{range $s := .Statements}}
		"{{.Source}}" {{if .Target}}{{$.EdgeOperator}} "{{.Target}}" [ {{range $k, $v := .EdgeAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.EdgeWeight}} ]{{else}}[ {{range $k, $v := .HTMLAttributes}}{{$k}}={{$v}}, {{end}} {{range $k, $v := .SourceAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.SourceWeight}} ]{{end}};
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
	Source           string
	Target           string
	SourceAttributes map[string]string
	HTMLAttributes   map[string]string
	EdgeAttributes   map[string]string
	SourceWeight     int
	EdgeWeight       int
}

func dot(g graph.Graph[string, string], wrt io.Writer, options ...func(*description)) error {
	desc, err := generateDOT(g, options...)
	if err != nil {
		return fmt.Errorf("failed to generate DOT description: %w", err)
	}

	return renderDOT(wrt, desc)
}

// GraphAttribute is a functional option for the DOT output.
func GraphAttribute(key, value string) func(*description) {
	return func(d *description) {
		d.Attributes[key] = value
	}
}

// generateDOT lists vertices and edges in name order so the output is stable.
func generateDOT(gra graph.Graph[string, string], options ...func(*description)) (description, error) {
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

	adjacencyMap, err := gra.AdjacencyMap()
	if err != nil {
		return desc, errors.Wrap(err, "unable to get adjacency map")
	}

	vertices := make([]string, 0, len(adjacencyMap))
	for vertex := range adjacencyMap {
		vertices = append(vertices, vertex)
	}
	slices.Sort(vertices)

	for _, vertex := range vertices {
		_, sourceProperties, err := gra.VertexWithProperties(vertex)
		if err != nil {
			return desc, errors.Wrap(err, "unable to get vertex properties")
		}

		htmlAttributes := make(map[string]string)

		if xlabel, ok := sourceProperties.Attributes["xlabel"]; ok {
			htmlAttributes["label"] = fmt.Sprintf(`<%+v <BR /> <FONT POINT-SIZE="12">%s</FONT>>`, vertex, xlabel)

			delete(sourceProperties.Attributes, "xlabel")
		}

		desc.Statements = append(desc.Statements, statement{
			Source:           vertex,
			SourceWeight:     sourceProperties.Weight,
			SourceAttributes: sourceProperties.Attributes,
			HTMLAttributes:   htmlAttributes,
		})

		edges := make([]graph.Edge[string], 0, len(adjacencyMap[vertex]))
		for _, edge := range adjacencyMap[vertex] {
			edges = append(edges, edge)
		}
		slices.SortFunc(edges, func(a, b graph.Edge[string]) int {
			return cmp.Compare(a.Target, b.Target)
		})

		for _, edge := range edges {
			desc.Statements = append(desc.Statements, statement{
				Source:         vertex,
				Target:         edge.Target,
				EdgeWeight:     edge.Properties.Weight,
				EdgeAttributes: edge.Properties.Attributes,
			})
		}
	}

	return desc, nil
}

func renderDOT(wrt io.Writer, desc description) error {
	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
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
