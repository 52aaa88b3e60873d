package store_test

import (
	"sync"
	"testing"

	"github.com/dominikbraun/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-vectorize/internal/store"
)

func TestMemoryStoreWithGraph(t *testing.T) {
	t.Parallel()

	st := store.NewMemoryStore[string, string]()
	g := graph.NewWithStore(graph.StringHash, st, graph.Directed())

	require.NoError(t, g.AddVertex("start"))
	require.NoError(t, g.AddVertex("fast"))
	require.ErrorIs(t, g.AddVertex("fast"), graph.ErrVertexAlreadyExists)
	require.NoError(t, g.AddEdge("start", "fast"))
	require.ErrorIs(t, g.AddEdge("start", "fast"), graph.ErrEdgeAlreadyExists)

	adjacency, err := g.AdjacencyMap()
	require.NoError(t, err)
	assert.Contains(t, adjacency["start"], "fast")

	require.ErrorIs(t, st.RemoveVertex("fast"), graph.ErrVertexHasEdges)
}

func TestUpdateVertex(t *testing.T) {
	t.Parallel()

	st := store.NewMemoryStore[string, string]()
	require.NoError(t, st.AddVertex("fast", "fast", graph.VertexProperties{}))

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, st.UpdateVertex("fast", func(p *graph.VertexProperties) {
				p.Weight++
			}))
		}()
	}
	wg.Wait()

	_, props, err := st.Vertex("fast")
	require.NoError(t, err)
	assert.Equal(t, 20, props.Weight)

	// returned properties are copies
	props.Attributes["color"] = "red"
	_, props, err = st.Vertex("fast")
	require.NoError(t, err)
	assert.NotContains(t, props.Attributes, "color")

	require.ErrorIs(t, st.UpdateVertex("missing"), graph.ErrVertexNotFound)
}

func TestUpdateEdgeProperties(t *testing.T) {
	t.Parallel()

	st := store.NewMemoryStore[string, string]()
	require.NoError(t, st.AddVertex("a", "a", graph.VertexProperties{}))
	require.NoError(t, st.AddVertex("b", "b", graph.VertexProperties{}))
	require.NoError(t, st.AddEdge("a", "b", graph.Edge[string]{Source: "a", Target: "b"}))

	require.NoError(t, st.UpdateEdgeProperties("a", "b", func(p *graph.EdgeProperties) {
		p.Weight = 3
		p.Attributes["label"] = "3"
	}))

	edge, err := st.Edge("a", "b")
	require.NoError(t, err)
	assert.Equal(t, 3, edge.Properties.Weight)
	assert.Equal(t, "3", edge.Properties.Attributes["label"])

	edges, err := st.ListEdges()
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "3", edges[0].Properties.Attributes["label"])

	require.ErrorIs(t, st.UpdateEdgeProperties("b", "a"), graph.ErrEdgeNotFound)

	require.NoError(t, st.RemoveEdge("a", "b"))
	require.NoError(t, st.RemoveVertex("a"))
	count, err := st.VertexCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
