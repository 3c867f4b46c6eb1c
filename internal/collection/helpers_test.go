package collection_test

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/UnknownOlympus/roster-console/internal/collection"
	"github.com/UnknownOlympus/roster-console/internal/metrics"
	"github.com/UnknownOlympus/roster-console/internal/models"
	"github.com/stretchr/testify/mock"
)

type row struct {
	ID   string
	Name string
}

func (r row) Key() string { return r.ID }

// fakeServer paginates an in-memory dataset the way the backend does, clamping out-of-range pages.
type fakeServer struct {
	mu       sync.Mutex
	items    []row
	pageSize int
	calls    []collection.Descriptor
	err      error
}

func newFakeServer(total, pageSize int) *fakeServer {
	items := make([]row, 0, total)
	for i := 1; i <= total; i++ {
		items = append(items, row{ID: fmt.Sprintf("e%d", i), Name: fmt.Sprintf("Employee %d", i)})
	}

	return &fakeServer{items: items, pageSize: pageSize}
}

func (f *fakeServer) Fetch(_ context.Context, desc collection.Descriptor) (collection.Page[row], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, desc)
	if f.err != nil {
		return collection.Page[row]{}, f.err
	}

	filtered := make([]row, 0, len(f.items))
	for _, item := range f.items {
		if desc.Name == "" || strings.Contains(strings.ToLower(item.Name), strings.ToLower(desc.Name)) {
			filtered = append(filtered, item)
		}
	}

	lastPage := (len(filtered) + f.pageSize - 1) / f.pageSize
	if lastPage < 1 {
		lastPage = 1
	}
	current := min(max(desc.Page, 1), lastPage)

	start := (current - 1) * f.pageSize
	end := min(start+f.pageSize, len(filtered))

	return collection.Page[row]{
		Rows:       append([]row(nil), filtered[start:end]...),
		Pagination: models.Pagination{CurrentPage: current, LastPage: lastPage},
	}, nil
}

func (f *fakeServer) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeServer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.calls)
}

func (f *fakeServer) lastCall() collection.Descriptor {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[len(f.calls)-1]
}

// gatedSource answers each fetch with the response sent on the channel registered for its name filter.
type gatedSource struct {
	mu      sync.Mutex
	gates   map[string]chan collection.Page[row]
	started chan collection.Descriptor
}

func newGatedSource(names ...string) *gatedSource {
	gates := make(map[string]chan collection.Page[row], len(names))
	for _, name := range names {
		gates[name] = make(chan collection.Page[row], 1)
	}

	return &gatedSource{gates: gates, started: make(chan collection.Descriptor, len(names))}
}

func (g *gatedSource) Fetch(ctx context.Context, desc collection.Descriptor) (collection.Page[row], error) {
	g.mu.Lock()
	gate := g.gates[desc.Name]
	g.mu.Unlock()

	g.started <- desc
	select {
	case page := <-gate:
		return page, nil
	case <-ctx.Done():
		return collection.Page[row]{}, ctx.Err()
	}
}

func (g *gatedSource) release(name string, resp collection.Page[row]) {
	g.mu.Lock()
	gate := g.gates[name]
	g.mu.Unlock()

	gate <- resp
}

type mockMutator struct {
	mock.Mock
}

func (m *mockMutator) Create(ctx context.Context, input models.EmployeeInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *mockMutator) Update(ctx context.Context, id string, input models.EmployeeInput) error {
	args := m.Called(ctx, id, input)
	return args.Error(0)
}

func (m *mockMutator) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestController(source collection.Source[row]) *collection.Controller[row] {
	return collection.NewController[row]("employees", testLogger(), metrics.NewNopMetrics(), source,
		collection.QueryOptions{PageSizes: []int{5, 10, 15}})
}
