package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/guti2010/corepool/internal/resp"
	"github.com/guti2010/corepool/internal/sched"
	"github.com/guti2010/corepool/internal/util"
)

type Status string

const (
	StatusQueued   Status = "queued"
	StatusRunning  Status = "running"
	StatusDone     Status = "done"
	StatusFailed   Status = "failed"
	StatusTimeout  Status = "timeout"
	StatusCanceled Status = "canceled"
)

// errNotReady is returned by ResultJSON for a job that hasn't finished.
var errNotReady = errors.New("job not finished yet")

type Job struct {
	ID         string            `json:"id"`
	Task       string            `json:"task"`
	Params     map[string]string `json:"params,omitempty"`
	Status     Status            `json:"status"`
	EnqueuedAt time.Time         `json:"enqueued_at"`
	StartedAt  *time.Time        `json:"started_at,omitempty"`
	EndedAt    *time.Time        `json:"ended_at,omitempty"`
	Result     *resp.Result      `json:"result,omitempty"`

	cancel context.CancelFunc
}

// Manager mantiene un registro en memoria de jobs y ejecuta cada job
// en el pool correspondiente de sched.Manager. No hay persistencia: el
// registro vive mientras el proceso vive (ver Non-goals de persistencia).
type Manager struct {
	sched *sched.Manager

	mu   sync.RWMutex
	jobs map[string]*Job

	ttl   time.Duration
	stopC chan struct{}
}

// NewManager crea un Job Manager con TTL de limpieza para jobs finalizados.
func NewManager(s *sched.Manager, ttl time.Duration) *Manager {
	m := &Manager{
		sched: s,
		jobs:  make(map[string]*Job),
		ttl:   ttl,
		stopC: make(chan struct{}),
	}
	go m.gcLoop()
	return m
}

// Close detiene la goroutine de GC.
func (m *Manager) Close() { close(m.stopC) }

func (m *Manager) gcLoop() {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			m.cleanup()
		case <-m.stopC:
			return
		}
	}
}

func terminal(s Status) bool {
	return s == StatusDone || s == StatusFailed || s == StatusTimeout || s == StatusCanceled
}

func (m *Manager) cleanup() {
	cut := time.Now().Add(-m.ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, j := range m.jobs {
		if terminal(j.Status) && j.EndedAt != nil && j.EndedAt.Before(cut) {
			delete(m.jobs, id)
		}
	}
}

// Submit crea un job y lo ejecuta en background. Devuelve el ID.
// Si el pool no existe, no crea el job y retorna vacío.
func (m *Manager) Submit(task string, params map[string]string, execTimeout time.Duration) string {
	if _, ok := m.sched.Pool(task); !ok {
		return ""
	}

	id := util.NewReqID()
	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now()
	job := &Job{
		ID:         id,
		Task:       task,
		Params:     params,
		Status:     StatusQueued,
		EnqueuedAt: now,
		cancel:     cancel,
	}
	m.mu.Lock()
	m.jobs[id] = job
	m.mu.Unlock()

	go func() {
		p, _ := m.sched.Pool(task)

		start := time.Now()
		m.mu.Lock()
		if job.Status == StatusQueued {
			job.StartedAt = &start
			job.Status = StatusRunning
		}
		m.mu.Unlock()

		res, enq := p.SubmitAndWaitCtx(ctx, id, params, execTimeout)
		end := time.Now()

		m.mu.Lock()
		defer m.mu.Unlock()
		job.EndedAt = &end
		job.Result = &res

		if job.Status == StatusCanceled {
			return
		}
		if !enq {
			job.Status = StatusFailed
			return
		}
		if res.Err != nil {
			switch res.Err.Code {
			case "canceled":
				job.Status = StatusCanceled
				return
			case "timeout":
				job.Status = StatusTimeout
				return
			}
		}
		if res.Status >= 200 && res.Status < 300 {
			job.Status = StatusDone
		} else {
			job.Status = StatusFailed
		}
	}()

	return id
}

// Cancel requests cancellation of job id. A queued job is marked canceled
// immediately; a running job's context is canceled and its background
// goroutine settles the final status once the pool actually stops it. A job
// already in a terminal state cannot be canceled.
func (m *Manager) Cancel(id string) (string, bool) {
	m.mu.Lock()
	j, ok := m.jobs[id]
	if !ok {
		m.mu.Unlock()
		return "job not found", false
	}
	if terminal(j.Status) {
		m.mu.Unlock()
		return "job already finished", false
	}

	wasQueued := j.Status == StatusQueued
	if wasQueued {
		now := time.Now()
		j.Status = StatusCanceled
		j.EndedAt = &now
	}
	cancel := j.cancel
	m.mu.Unlock()

	cancel()
	if wasQueued {
		return "canceled", true
	}
	return "cancel requested", true
}

// SnapshotJSON devuelve un JSON con metadatos del job sin mutar el original.
func (m *Manager) SnapshotJSON(id string) (string, bool) {
	m.mu.RLock()
	j, ok := m.jobs[id]
	m.mu.RUnlock()
	if !ok {
		return "", false
	}
	b, _ := json.Marshal(j)
	return string(b), true
}

// ResultJSON returns the job's result JSON once it has finished. It returns
// ok=false if the job is unknown, or err=errNotReady if it is still queued
// or running.
func (m *Manager) ResultJSON(id string) (string, bool, error) {
	m.mu.RLock()
	j, ok := m.jobs[id]
	m.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if !terminal(j.Status) {
		return "", true, errNotReady
	}
	b, _ := json.Marshal(j.Result)
	return string(b), true, nil
}

// ListJSON lista los jobs actuales (activos y finalizados no vencidos).
func (m *Manager) ListJSON() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	type lite struct {
		ID     string `json:"id"`
		Task   string `json:"task"`
		Status Status `json:"status"`
	}
	out := make([]lite, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, lite{ID: j.ID, Task: j.Task, Status: j.Status})
	}
	b, _ := json.Marshal(out)
	return string(b)
}
