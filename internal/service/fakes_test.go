package service_test

import (
	"bytes"
	"context"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/config"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/domain"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/geo"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/notify"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/render"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/service"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/workers"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/e"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), &slog.HandlerOptions{Level: slog.LevelError}))
}

func strPtr(s string) *string { return &s }

// --- incidents ---

type memIncidents struct {
	mu       sync.Mutex
	items    map[uuid.UUID]*domain.Incident
	outcomes map[uuid.UUID]domain.AlertOutcome
}

func newMemIncidents(incs ...*domain.Incident) *memIncidents {
	m := &memIncidents{items: map[uuid.UUID]*domain.Incident{}, outcomes: map[uuid.UUID]domain.AlertOutcome{}}
	for _, inc := range incs {
		m.items[inc.ID] = inc
	}
	return m
}

func (m *memIncidents) Create(_ context.Context, inc *domain.Incident) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *inc
	m.items[inc.ID] = &cp
	return nil
}

func (m *memIncidents) Get(_ context.Context, id uuid.UUID) (*domain.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inc, ok := m.items[id]
	if !ok {
		return nil, e.ErrNotFound
	}
	cp := *inc
	return &cp, nil
}

func (m *memIncidents) List(context.Context, domain.ListSOSRequest) ([]*domain.Incident, int64, error) {
	return nil, 0, nil
}

func (m *memIncidents) Pending(context.Context, int) ([]*domain.Incident, error) { return nil, nil }

func (m *memIncidents) Review(_ context.Context, id uuid.UUID, r domain.Review) (*domain.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inc, ok := m.items[id]
	if !ok {
		return nil, e.ErrNotFound
	}
	if inc.Status != domain.StatusPending {
		return nil, e.ErrAlreadyReviewed
	}
	inc.Status = r.Decision
	review := r
	inc.Review = &review
	cp := *inc
	return &cp, nil
}

func (m *memIncidents) SetAlertOutcome(_ context.Context, id uuid.UUID, o domain.AlertOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inc, ok := m.items[id]
	if !ok {
		return e.ErrNotFound
	}
	if inc.Status != domain.StatusApproved {
		return e.ErrInvalidInput
	}
	if inc.AlertOutcome != nil {
		return e.ErrConflict
	}
	m.outcomes[id] = o
	inc.AlertOutcome = &o
	return nil
}

func (m *memIncidents) MergeClassification(_ context.Context, id uuid.UUID, c domain.Classification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inc, ok := m.items[id]
	if !ok {
		return e.ErrNotFound
	}
	if inc.Status != domain.StatusPending {
		return e.ErrAlreadyReviewed
	}
	inc.Classification = &c
	return nil
}

// --- alerts ---

type memAlerts struct {
	mu        sync.Mutex
	items     map[uuid.UUID]*domain.Alert
	createErr error
}

func newMemAlerts() *memAlerts { return &memAlerts{items: map[uuid.UUID]*domain.Alert{}} }

func (m *memAlerts) Create(_ context.Context, a *domain.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.items {
		if existing.IncidentID == a.IncidentID {
			return e.ErrUniqueViolation
		}
	}
	cp := *a
	m.items[a.ID] = &cp
	return nil
}

func (m *memAlerts) Complete(_ context.Context, id uuid.UUID, status domain.AlertStatus, c domain.DeliveryCounts, n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok || a.Status != domain.AlertSending {
		return e.ErrNotFound
	}
	now := time.Now()
	a.Status, a.Counts, a.RecipientCount, a.CompletedAt = status, c, n, &now
	return nil
}

func (m *memAlerts) ListStale(_ context.Context, before time.Time, limit int) ([]*domain.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Alert, 0)
	for _, a := range m.items {
		if a.Status == domain.AlertSending && a.DispatchedAt.Before(before) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DispatchedAt.Before(out[j].DispatchedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memAlerts) put(a *domain.Alert) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.items[a.ID] = &cp
}

func (m *memAlerts) all() []*domain.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Alert, 0, len(m.items))
	for _, a := range m.items {
		cp := *a
		out = append(out, &cp)
	}
	return out
}

// --- users ---

type memUsers struct {
	users []domain.Recipient
}

func (m *memUsers) FindEligible(_ context.Context, lat, lng, radiusM float64, exclude uuid.UUID) ([]domain.Recipient, error) {
	var out []domain.Recipient
	for _, u := range m.users {
		d := geo.HaversineDistanceKm(lat, lng, u.Latitude, u.Longitude) * 1000
		if d > radiusM || u.ID == exclude || !u.Reachable() {
			continue
		}
		u.DistanceM = d
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DistanceM < out[j].DistanceM })
	return out, nil
}

func (m *memUsers) FindInRadius(ctx context.Context, lat, lng, radiusM float64) ([]domain.Recipient, error) {
	return m.FindEligible(ctx, lat, lng, radiusM, uuid.Nil)
}

func (m *memUsers) FindByIDs(_ context.Context, ids []uuid.UUID) ([]domain.Recipient, error) {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []domain.Recipient
	for _, u := range m.users {
		if want[u.ID] && u.Active {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUsers) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	for _, u := range m.users {
		if u.ID == id {
			return true, nil
		}
	}
	return false, nil
}

// --- ledger ---

type memLedger struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newMemLedger() *memLedger { return &memLedger{keys: map[string]bool{}} }

func ledgerKey(inc, rec uuid.UUID, ch domain.Channel) string {
	return inc.String() + "|" + rec.String() + "|" + string(ch)
}

func (m *memLedger) Claim(_ context.Context, inc, rec uuid.UUID, ch domain.Channel) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := ledgerKey(inc, rec, ch)
	if m.keys[k] {
		return false, nil
	}
	m.keys[k] = true
	return true, nil
}

func (m *memLedger) Release(_ context.Context, inc, rec uuid.UUID, ch domain.Channel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, ledgerKey(inc, rec, ch))
	return nil
}

// --- adapters ---

type fakeAdapter struct {
	channel domain.Channel
	fail    map[string]bool
	delay   time.Duration

	mu   sync.Mutex
	sent []string
}

func (a *fakeAdapter) Channel() domain.Channel { return a.channel }

func (a *fakeAdapter) Send(ctx context.Context, to string, p notify.Payload) (notify.Result, error) {
	if err := (notify.Envelope{To: to, Payload: p}).Validate(); err != nil {
		return notify.Result{}, err
	}
	a.mu.Lock()
	a.sent = append(a.sent, to)
	a.mu.Unlock()

	if a.delay > 0 {
		select {
		case <-ctx.Done():
			return notify.Failed("timeout"), nil
		case <-time.After(a.delay):
		}
	}
	if a.fail[to] {
		return notify.Failed("provider rejected " + to), nil
	}
	return notify.Result{Success: true, ProviderMessageID: "msg-" + to}, nil
}

func (a *fakeAdapter) attempts() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := append([]string(nil), a.sent...)
	sort.Strings(out)
	return out
}

type fakeBatchAdapter struct {
	fakeAdapter
	batches int
}

func (a *fakeBatchAdapter) SendBatch(ctx context.Context, envs []notify.Envelope) ([]notify.Result, error) {
	a.mu.Lock()
	a.batches++
	a.mu.Unlock()
	out := make([]notify.Result, len(envs))
	for i, env := range envs {
		out[i], _ = a.Send(ctx, env.To, env.Payload)
	}
	return out, nil
}

type memQueue struct {
	mu    sync.Mutex
	items []domain.EmergencyDispatch
}

func (q *memQueue) Enqueue(_ context.Context, p domain.EmergencyDispatch) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, p)
	return nil
}

func (q *memQueue) BRPop(ctx context.Context, _ time.Duration) (domain.EmergencyDispatch, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return domain.EmergencyDispatch{}, e.ErrEmergencyQueueEmpty
	}
	p := q.items[len(q.items)-1]
	q.items = q.items[:len(q.items)-1]
	return p, nil
}

// --- wiring ---

func alertConfig() config.AlertConfig {
	return config.AlertConfig{
		RadiusM:     1000,
		BatchSize:   10,
		SendTimeout: time.Second,
		AvgSpeedKmh: 40,
	}
}

type harness struct {
	incidents *memIncidents
	alerts    *memAlerts
	users     *memUsers
	ledger    *memLedger
	queue     *memQueue
	push      *fakeAdapter
	whatsapp  *fakeAdapter
	orch      *service.AlertOrchestrator
	workflow  *service.ReviewWorkflow
}

func newHarness(t *testing.T, users []domain.Recipient, incs ...*domain.Incident) *harness {
	t.Helper()

	r, err := render.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	cfg := alertConfig()

	h := &harness{
		incidents: newMemIncidents(incs...),
		alerts:    newMemAlerts(),
		users:     &memUsers{users: users},
		ledger:    newMemLedger(),
		queue:     &memQueue{},
		push:      &fakeAdapter{channel: domain.ChannelPush, fail: map[string]bool{}},
		whatsapp:  &fakeAdapter{channel: domain.ChannelWhatsApp, fail: map[string]bool{}},
	}
	pool := workers.NewFanOut(cfg.BatchSize, 0, cfg.SendTimeout)
	h.orch = service.NewAlertOrchestrator(newTestLogger(), cfg, h.users, h.alerts, h.ledger, r, pool, h.push, h.whatsapp)
	h.workflow = service.NewReviewWorkflow(newTestLogger(), h.incidents, h.orch, h.queue, nil)
	return h
}

const (
	baseLat = 28.70
	baseLng = 77.10
	// roughly 100 m of latitude
	latPer100m = 0.0009
)

func pendingIncident(reporter uuid.UUID) *domain.Incident {
	return &domain.Incident{
		ID:         uuid.New(),
		ReporterID: reporter,
		VideoURL:   "https://cdn.example.com/sos.mp4",
		Message:    "Fire in the market, people trapped",
		Location:   domain.Location{Latitude: baseLat, Longitude: baseLng, Address: "Sector 5, Rohini"},
		Priority:   domain.PriorityHigh,
		Category:   domain.CategoryFire,
		Status:     domain.StatusPending,
		CreatedAt:  time.Now(),
	}
}

func user(metresNorth float64, token, phone string) domain.Recipient {
	r := domain.Recipient{
		ID:        uuid.New(),
		Latitude:  baseLat + metresNorth/100*latPer100m,
		Longitude: baseLng,
		Active:    true,
	}
	if token != "" {
		r.PushToken = strPtr(token)
	}
	if phone != "" {
		r.Phone = strPtr(phone)
	}
	return r
}
