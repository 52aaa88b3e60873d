package vectorize_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gogpu/gg"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-vectorize/pkg/vectorize/engine"
	"github.com/askiada/go-vectorize/pkg/vectorize/model"
	"github.com/askiada/go-vectorize/pkg/vectorize/remote"
)

var errBoom = errors.New("boom")

// linePNG draws black line art on a white canvas.
func linePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	dc := gg.NewContext(width, height)
	defer dc.Close()

	dc.ClearWithColor(gg.White)
	dc.SetRGB(0, 0, 0)
	dc.DrawCircle(float64(width)/3, float64(height)/3, float64(min(width, height))/5)
	require.NoError(t, dc.Fill())
	dc.DrawRectangle(float64(width)/2, float64(height)/2, float64(width)/3, float64(height)/4)
	require.NoError(t, dc.Fill())

	var buf bytes.Buffer
	require.NoError(t, dc.EncodePNG(&buf))

	return buf.Bytes()
}

type behaviour struct {
	initErr error
	tickErr error
	ticks   int
	svg     string
}

type fakeFactory struct {
	mu         sync.Mutex
	behaviours map[string]behaviour
	order      []string
	constructs int
	releases   int
}

func newFakeFactory(behaviours map[string]behaviour) *fakeFactory {
	return &fakeFactory{behaviours: behaviours}
}

func (f *fakeFactory) New(_ *model.BinaryBitmap, profile model.ConverterProfile, _ model.RenderOptions) (engine.Engine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.order = append(f.order, profile.Name)
	f.constructs++

	return &fakeEngine{factory: f, b: f.behaviours[profile.Name]}, nil
}

func (f *fakeFactory) counts() (constructs, releases int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.constructs, f.releases
}

func (f *fakeFactory) attempted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.order...)
}

type fakeEngine struct {
	factory  *fakeFactory
	b        behaviour
	tick     int
	released bool
}

func (e *fakeEngine) Init() error { return e.b.initErr }

func (e *fakeEngine) Tick() (bool, error) {
	e.tick++
	if e.tick <= e.b.ticks {
		return false, nil
	}
	if e.b.tickErr != nil {
		return false, e.b.tickErr
	}

	return true, nil
}

func (e *fakeEngine) Progress() float64 {
	if e.b.ticks == 0 {
		return 0
	}

	return float64(e.tick) / float64(e.b.ticks+1)
}

func (e *fakeEngine) Result() string { return e.b.svg }

func (e *fakeEngine) Release() {
	if e.released {
		return
	}
	e.released = true
	e.factory.mu.Lock()
	e.factory.releases++
	e.factory.mu.Unlock()
}

func failingProfiles() map[string]behaviour {
	return map[string]behaviour{
		"fast":     {initErr: errBoom},
		"balanced": {ticks: 2, tickErr: errors.New("out of memory")},
		"detailed": {initErr: errors.New("unsupported")},
	}
}

// recorder is a Sink collecting events.
type recorder struct {
	mu      sync.Mutex
	events  []model.Event
	onEvent func(ev model.Event)
}

func (r *recorder) sink(ev model.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	onEvent := r.onEvent
	r.mu.Unlock()

	if onEvent != nil {
		onEvent(ev)
	}
}

func (r *recorder) all() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]model.Event(nil), r.events...)
}

func (r *recorder) terminals() []model.Event {
	var out []model.Event
	for _, ev := range r.all() {
		if ev.Type.Terminal() {
			out = append(out, ev)
		}
	}

	return out
}

func (r *recorder) ofType(typ model.EventType) []model.Event {
	var out []model.Event
	for _, ev := range r.all() {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}

	return out
}

// remoteServer is a conversion service stub recording the uploaded files.
type remoteServer struct {
	*httptest.Server
	calls atomic.Int32
	mu    sync.Mutex
	files [][]byte
}

func newRemoteServer(t *testing.T, status int, body string) *remoteServer {
	t.Helper()

	rs := &remoteServer{}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.calls.Add(1)
		if err := r.ParseMultipartForm(1 << 22); err == nil {
			if f, _, err := r.FormFile("file"); err == nil {
				data, _ := io.ReadAll(f)
				f.Close()
				rs.mu.Lock()
				rs.files = append(rs.files, data)
				rs.mu.Unlock()
			}
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(rs.Close)

	return rs
}

func (rs *remoteServer) client(t *testing.T) *remote.Client {
	t.Helper()

	client, err := remote.NewClient(remote.Config{URL: rs.URL})
	require.NoError(t, err)

	return client
}

func (rs *remoteServer) uploaded() [][]byte {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	return append([][]byte(nil), rs.files...)
}

// newBlockingServer returns a client to a service that never answers before release is closed.
func newBlockingServer(t *testing.T, entered chan<- struct{}, release <-chan struct{}) *remote.Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case entered <- struct{}{}:
		default:
		}
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(srv.Close)

	client, err := remote.NewClient(remote.Config{URL: srv.URL})
	require.NoError(t, err)

	return client
}
