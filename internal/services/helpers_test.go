package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yukikurage/collab-api/internal/models"
	"github.com/yukikurage/collab-api/internal/notify"
	"github.com/yukikurage/collab-api/internal/realtime"
	"github.com/yukikurage/collab-api/internal/repository"
	"github.com/yukikurage/collab-api/internal/testutil"
)

type fakeMailer struct {
	mu      sync.Mutex
	sent    []notify.Message
	failFor map[string]bool
	panics  bool
}

func (m *fakeMailer) Send(_ context.Context, msg notify.Message) error {
	if m.panics {
		panic("smtp client exploded")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[msg.To] {
		return errors.New("connection refused")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	for i, msg := range m.sent {
		out[i] = msg.To
	}
	return out
}

type published struct {
	channel string
	event   realtime.Event
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, channel string, evt realtime.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, published{channel: channel, event: evt})
	return nil
}

func (p *fakePublisher) all() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.events...)
}

type taskEnv struct {
	db         *gorm.DB
	svc        *TaskService
	mailer     *fakeMailer
	fanout     *fakePublisher
	exporter   *fakePublisher
	dispatcher *Dispatcher
}

func newTaskEnv(t *testing.T, opts ...func(*TaskServiceDeps)) *taskEnv {
	t.Helper()

	db := testutil.NewDB(t)
	env := &taskEnv{
		db:         db,
		mailer:     &fakeMailer{failFor: map[string]bool{}},
		fanout:     &fakePublisher{},
		exporter:   &fakePublisher{},
		dispatcher: NewDispatcher(zap.NewNop().Sugar(), 0),
	}

	deps := TaskServiceDeps{
		Tasks:      repository.NewTaskRepository(db),
		Projects:   repository.NewProjectRepository(db),
		Users:      repository.NewUserRepository(db),
		Activity:   repository.NewActivityRepository(db),
		Mailer:     env.mailer,
		Fanout:     env.fanout,
		Exporter:   env.exporter,
		Dispatcher: env.dispatcher,
		Logger:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	env.svc = NewTaskService(deps)
	return env
}

func (e *taskEnv) activity(t *testing.T) []models.ActivityLog {
	t.Helper()
	var logs []models.ActivityLog
	if err := e.db.Order("created_at ASC").Find(&logs).Error; err != nil {
		t.Fatalf("load activity: %v", err)
	}
	return logs
}

type failingTaskRepo struct {
	repository.TaskRepository
	err error
}

func (r failingTaskRepo) Create(context.Context, *models.Task, []string) error {
	return r.err
}

func (r failingTaskRepo) UpdateStatus(context.Context, string, models.TaskStatus) error {
	return r.err
}
