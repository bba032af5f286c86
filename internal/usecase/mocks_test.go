// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"research-paper-ai/internal/domain"
	"research-paper-ai/internal/domain/model"
	"research-paper-ai/internal/domain/ports/adapter"
)

// memPaperRepo is a small in-memory implementation used by unit tests.
type memPaperRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.Paper
	saveErr error // used by tests to simulate save failures
}

func newMemPaperRepo() *memPaperRepo {
	return &memPaperRepo{store: make(map[string]*model.Paper)}
}

func (m *memPaperRepo) Save(ctx context.Context, p *model.Paper) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	cp.UpdatedAt = time.Now()
	m.store[p.ID] = &cp
	return nil
}

func (m *memPaperRepo) FindByID(ctx context.Context, id string) (*model.Paper, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrPaperNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPaperRepo) ListAll(ctx context.Context) ([]*model.Paper, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Paper, 0, len(m.store))
	for _, p := range m.store {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memPaperRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, id)
	return nil
}

type memTopicRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Topic
}

func newMemTopicRepo() *memTopicRepo {
	return &memTopicRepo{store: make(map[string]*model.Topic)}
}

func (m *memTopicRepo) Save(ctx context.Context, t *model.Topic) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.store[t.ID] = &cp
	return nil
}

func (m *memTopicRepo) FindByID(ctx context.Context, id string) (*model.Topic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.store[id]
	if !ok {
		return nil, domain.ErrTopicNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTopicRepo) ListAll(ctx context.Context) ([]*model.Topic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Topic, 0, len(m.store))
	for _, t := range m.store {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memTopicRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, id)
	return nil
}

// memStageLog keeps records in append order, like the real table does.
type memStageLog struct {
	mu      sync.Mutex
	records []*model.StageRecord
	seq     int
}

func newMemStageLog() *memStageLog {
	return &memStageLog{}
}

func (m *memStageLog) Append(ctx context.Context, rec *model.StageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	cp := *rec
	cp.ID = fmt.Sprintf("%06d", m.seq)
	cp.CreatedAt = time.Now()
	m.records = append(m.records, &cp)
	return nil
}

func (m *memStageLog) ListByPaper(ctx context.Context, paperID string) ([]*model.StageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.StageRecord
	for _, r := range m.records {
		if r.PaperID == paperID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

// recordingPublisher captures published progress events in order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []model.ProgressEvent
}

func (p *recordingPublisher) Publish(paperID string, ev model.ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) all() []model.ProgressEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.ProgressEvent, len(p.events))
	copy(out, p.events)
	return out
}

// scriptedAI returns canned responses keyed by role; per-role call counters
// let a test vary the answer between review rounds.
type scriptedAI struct {
	mu        sync.Mutex
	responses map[string][]string // role -> responses in call order
	calls     map[string]int
	failRole  string
	failErr   error
}

func newScriptedAI() *scriptedAI {
	return &scriptedAI{
		responses: make(map[string][]string),
		calls:     make(map[string]int),
	}
}

func (a *scriptedAI) on(role string, responses ...string) *scriptedAI {
	a.responses[role] = responses
	return a
}

func (a *scriptedAI) ListModels(ctx context.Context) ([]string, error) {
	return []string{"scripted-model"}, nil
}

func (a *scriptedAI) GetModelInfo(model string) (adapter.ModelInfo, error) {
	return adapter.ModelInfo{Name: "scripted-model"}, nil
}

func (a *scriptedAI) DefaultModel() string { return "scripted-model" }

func (a *scriptedAI) CountTokens(ctx context.Context, text string) (int, error) {
	return len(text) / 4, nil
}

func (a *scriptedAI) Generate(ctx context.Context, role, context_, task string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := a.calls[role]
	a.calls[role] = n + 1
	if role == a.failRole {
		return "", a.failErr
	}
	resps := a.responses[role]
	if len(resps) == 0 {
		return "# " + role + "\n\nDefault scripted output.", nil
	}
	if n >= len(resps) {
		n = len(resps) - 1
	}
	return resps[n], nil
}

// noopNotifier records terminal notifications.
type fakeNotifier struct {
	mu        sync.Mutex
	completed []string
	failed    []string
}

func (n *fakeNotifier) NotifyCompleted(ctx context.Context, paperID, title string, score float64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, paperID)
	return nil
}

func (n *fakeNotifier) NotifyFailed(ctx context.Context, paperID, title string, cause error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, paperID)
	return nil
}
