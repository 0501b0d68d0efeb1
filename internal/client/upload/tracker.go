// Package upload tracks the lifecycle of files being sent to the document
// service. Each file gets a Task that moves waiting -> uploading ->
// processing -> complete, or into error when the transfer fails.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/smartdocs/internal/core/domain"
)

type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusUploading  Status = "uploading"
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

type Task struct {
	ID       string
	Path     string
	Filename string
	Size     int64
	Progress int
	Status   Status
	Message  string
	Document *domain.Document
}

// API is the slice of the document-service client the tracker needs.
type API interface {
	UploadDocument(ctx context.Context, filename string, size int64, content io.Reader, progress func(percent int)) (*domain.Document, error)
	GetDocument(ctx context.Context, id string) (*domain.Document, error)
}

type Tracker struct {
	api          API
	pollInterval time.Duration

	mu      sync.Mutex
	tasks   map[string]*Task
	order   []string
	subs    map[int]func(Task)
	nextSub int
}

func NewTracker(uploadAPI API) *Tracker {
	return &Tracker{
		api:          uploadAPI,
		pollInterval: 2 * time.Second,
		tasks:        make(map[string]*Task),
		subs:         make(map[int]func(Task)),
	}
}

// Add validates the file and registers a waiting task for it.
func (t *Tracker) Add(path string) (Task, error) {
	if err := validateFile(path); err != nil {
		return Task{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return Task{}, fmt.Errorf("stat file: %w", err)
	}

	task := &Task{
		ID:       uuid.NewString(),
		Path:     path,
		Filename: filepath.Base(path),
		Size:     info.Size(),
		Status:   StatusWaiting,
	}

	t.mu.Lock()
	t.tasks[task.ID] = task
	t.order = append(t.order, task.ID)
	t.mu.Unlock()

	t.notify(*task)
	return *task, nil
}

// Start runs the upload for a waiting task and follows it through server
// processing. It returns the final task snapshot; an upload failure is
// reported on the task, not as a returned error.
func (t *Tracker) Start(ctx context.Context, taskID string) (Task, error) {
	t.mu.Lock()
	task, ok := t.tasks[taskID]
	if !ok {
		t.mu.Unlock()
		return Task{}, fmt.Errorf("unknown upload task %q", taskID)
	}
	if task.Status != StatusWaiting {
		status := task.Status
		t.mu.Unlock()
		return Task{}, fmt.Errorf("upload task is %s, not waiting", status)
	}
	path := task.Path
	filename := task.Filename
	size := task.Size
	t.mu.Unlock()

	t.update(taskID, func(task *Task) {
		task.Status = StatusUploading
		task.Progress = 0
	})

	file, err := os.Open(path)
	if err != nil {
		return t.fail(taskID, "upload failed"), nil
	}
	defer file.Close()

	doc, err := t.api.UploadDocument(ctx, filename, size, file, func(percent int) {
		t.update(taskID, func(task *Task) { task.Progress = percent })
	})
	if err != nil {
		return t.fail(taskID, "upload failed"), nil
	}

	t.update(taskID, func(task *Task) {
		task.Status = StatusProcessing
		task.Progress = 100
		task.Document = doc
	})

	return t.awaitProcessing(ctx, taskID, doc.ID)
}

// awaitProcessing polls the document status until the server finishes.
func (t *Tracker) awaitProcessing(ctx context.Context, taskID, documentID string) (Task, error) {
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return t.snapshot(taskID), ctx.Err()
		case <-ticker.C:
		}

		doc, err := t.api.GetDocument(ctx, documentID)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return t.snapshot(taskID), err
			}
			// Transient status-poll failures keep the task processing.
			continue
		}

		switch doc.Status {
		case domain.StatusReady:
			t.update(taskID, func(task *Task) {
				task.Status = StatusComplete
				task.Document = doc
			})
			return t.snapshot(taskID), nil
		case domain.StatusFailed:
			message := doc.Error
			if message == "" {
				message = "processing failed"
			}
			return t.fail(taskID, message), nil
		}
	}
}

func (t *Tracker) Remove(taskID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.tasks, taskID)
	for i, id := range t.order {
		if id == taskID {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// Tasks returns snapshots in insertion order.
func (t *Tracker) Tasks() []Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Task, 0, len(t.order))
	for _, id := range t.order {
		if task, ok := t.tasks[id]; ok {
			out = append(out, *task)
		}
	}
	return out
}

// Subscribe registers fn for task changes and returns an unsubscribe
// function.
func (t *Tracker) Subscribe(fn func(Task)) func() {
	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()
	}
}

func (t *Tracker) update(taskID string, mutate func(*Task)) {
	t.mu.Lock()
	task, ok := t.tasks[taskID]
	if !ok {
		t.mu.Unlock()
		return
	}
	mutate(task)
	snapshot := *task
	t.mu.Unlock()

	t.notify(snapshot)
}

func (t *Tracker) fail(taskID, message string) Task {
	t.update(taskID, func(task *Task) {
		task.Status = StatusError
		task.Message = message
	})
	return t.snapshot(taskID)
}

func (t *Tracker) snapshot(taskID string) Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	if task, ok := t.tasks[taskID]; ok {
		return *task
	}
	return Task{}
}

func (t *Tracker) notify(snapshot Task) {
	t.mu.Lock()
	subs := make([]func(Task), 0, len(t.subs))
	for _, fn := range t.subs {
		subs = append(subs, fn)
	}
	t.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}
