package app

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"shearzone/internal/domain/entity"
)

const progressBuffer = 16

// Outcome итог фоновой задачи: значение или ошибка.
type Outcome[T any] struct {
	Value T
	Err   error
}

// Job фоновая задача. Progress закрывается до того, как в Done придёт
// единственный итог; пропущенные значения прогресса не страшны.
type Job[T any] struct {
	id       uuid.UUID
	progress chan int
	done     chan Outcome[T]

	mu     sync.Mutex
	last   int
	closed bool
}

// ID идентификатор задачи для журналов.
func (j *Job[T]) ID() uuid.UUID {
	return j.id
}

// Progress проценты выполнения, неубывающие.
func (j *Job[T]) Progress() <-chan int {
	return j.progress
}

// Done ровно один итог задачи.
func (j *Job[T]) Done() <-chan Outcome[T] {
	return j.done
}

// Wait дожидается итога.
func (j *Job[T]) Wait() (T, error) {
	out := <-j.done
	return out.Value, out.Err
}

func (j *Job[T]) report(percent int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed || percent <= j.last {
		return
	}
	if percent > 100 {
		percent = 100
	}
	j.last = percent
	select {
	case j.progress <- percent:
	default:
	}
}

func (j *Job[T]) closeProgress() {
	j.mu.Lock()
	j.closed = true
	close(j.progress)
	j.mu.Unlock()
}

// startJob запускает fn в отдельной горутине. Паника превращается в ошибку.
func startJob[T any](fn func(progress entity.ProgressFunc) (T, error)) *Job[T] {
	j := &Job[T]{
		id:       uuid.New(),
		progress: make(chan int, progressBuffer),
		done:     make(chan Outcome[T], 1),
		last:     -1,
	}
	go func() {
		value, err := j.call(fn)
		j.closeProgress()
		j.done <- Outcome[T]{Value: value, Err: err}
		close(j.done)
	}()
	return j
}

func (j *Job[T]) call(fn func(progress entity.ProgressFunc) (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			value, err = zero, fmt.Errorf("job panicked: %v", r)
		}
	}()
	return fn(j.report)
}

// JobKind вид фоновой задачи; на сессию допускается одна задача каждого вида.
type JobKind string

const (
	JobAnalysis     JobKind = "analysis"
	JobRegistration JobKind = "registration"
)

type jobKey struct {
	session int64
	kind    JobKind
}

// JobGuard не даёт запустить вторую задачу того же вида для сессии.
type JobGuard struct {
	mu      sync.Mutex
	running map[jobKey]struct{}
}

func NewJobGuard() *JobGuard {
	return &JobGuard{running: make(map[jobKey]struct{})}
}

// Acquire занимает слот или возвращает ErrBusy. release можно вызывать повторно.
func (g *JobGuard) Acquire(sessionID int64, kind JobKind) (release func(), err error) {
	key := jobKey{session: sessionID, kind: kind}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.running[key]; busy {
		return nil, fmt.Errorf("%s: %w", kind, entity.ErrBusy)
	}
	g.running[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.running, key)
			g.mu.Unlock()
		})
	}, nil
}

// Running сообщает, выполняется ли задача.
func (g *JobGuard) Running(sessionID int64, kind JobKind) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.running[jobKey{session: sessionID, kind: kind}]
	return busy
}
