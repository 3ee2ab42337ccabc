package agentloop

import (
	"context"
	"errors"
	"sync"

	"gui-agent/internal/application/port/output"
	"gui-agent/internal/domain/entity"
)

type fakeOperator struct {
	mu         sync.Mutex
	shot       *entity.Screenshot
	shotErr    error
	execErr    error
	execResult *entity.ExecutionResult
	shots      int
	executed   []output.ExecuteParams
	execCtxErr []error
}

func newFakeOperator(width, height int, scale float64) *fakeOperator {
	return &fakeOperator{shot: &entity.Screenshot{
		Data:        []byte("png"),
		Format:      "png",
		Width:       width,
		Height:      height,
		ScaleFactor: scale,
	}}
}

func (f *fakeOperator) Screenshot(context.Context) (*entity.Screenshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shots++
	if f.shotErr != nil {
		return nil, f.shotErr
	}
	return f.shot, nil
}

func (f *fakeOperator) Execute(ctx context.Context, p output.ExecuteParams) (*entity.ExecutionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executed = append(f.executed, p)
	f.execCtxErr = append(f.execCtxErr, ctx.Err())
	if f.execErr != nil {
		return nil, f.execErr
	}
	if f.execResult != nil {
		return f.execResult, nil
	}
	return entity.Succeeded(), nil
}

// fakeModel replays predictions in order and repeats the last one.
type fakeModel struct {
	mu          sync.Mutex
	predictions []string
	err         error
	requests    []output.InvokeRequest
	// onInvoke runs before the prediction is returned.
	onInvoke func(ctx context.Context) error
}

func (m *fakeModel) Name() string { return "fake-vlm" }

func (m *fakeModel) Invoke(ctx context.Context, req output.InvokeRequest) (*output.InvokeResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	n := len(m.requests)
	m.mu.Unlock()

	if m.onInvoke != nil {
		if err := m.onInvoke(ctx); err != nil {
			return nil, err
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	if len(m.predictions) == 0 {
		return nil, errors.New("no prediction configured")
	}
	i := n - 1
	if i >= len(m.predictions) {
		i = len(m.predictions) - 1
	}
	return &output.InvokeResponse{Prediction: m.predictions[i]}, nil
}

func (m *fakeModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

type recordingObserver struct {
	mu      sync.Mutex
	rounds  []int
	actions []entity.ActionType
	dropped []error
	results []error
}

func (o *recordingObserver) ShowRound(_ context.Context, round, _ int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rounds = append(o.rounds, round)
}

func (o *recordingObserver) ShowThinking(context.Context, string) {}

func (o *recordingObserver) ShowAction(_ context.Context, a entity.Action) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.actions = append(o.actions, a.Type)
}

func (o *recordingObserver) ShowResult(_ context.Context, _ entity.Action, _ *entity.ExecutionResult, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.results = append(o.results, err)
}

func (o *recordingObserver) ShowDropped(_ context.Context, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dropped = append(o.dropped, err)
}
