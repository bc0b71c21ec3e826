// Package jobs runs conversions in the background for the JSON API.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"

	"github.com/cobol-converter/backend/internal/convert"
	"github.com/cobol-converter/backend/internal/models"
	"github.com/cobol-converter/backend/internal/records"
)

// Status represents the conversion job status.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusConverting Status = "converting"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// Job represents an async conversion job.
type Job struct {
	ID           string     `json:"id"`
	FileID       string     `json:"fileId"`
	FileName     string     `json:"fileName"`
	Status       Status     `json:"status"`
	ConversionID string     `json:"conversionId,omitempty"`
	Error        string     `json:"error,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// Done reports whether the job has finished, successfully or not.
func (j *Job) Done() bool {
	return j.Status == StatusComplete || j.Status == StatusError
}

// FileStore is the part of the upload store jobs need.
type FileStore interface {
	ReadFile(id string) ([]byte, error)
	SetStatus(id string, status models.FileStatus) error
}

// Manager handles async conversions.
type Manager struct {
	jobs      map[string]*Job
	mu        sync.RWMutex
	files     FileStore
	records   records.Store
	converter *convert.Converter
	sem       chan struct{}
	timeout   time.Duration
	wg        sync.WaitGroup
}

// NewManager creates a job manager running at most maxConcurrent conversions
// at once. timeout bounds a single conversion; zero means no limit.
func NewManager(files FileStore, recs records.Store, converter *convert.Converter, maxConcurrent int, timeout time.Duration) *Manager {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Manager{
		jobs:      make(map[string]*Job),
		files:     files,
		records:   recs,
		converter: converter,
		sem:       make(chan struct{}, maxConcurrent),
		timeout:   timeout,
	}
}

// Start queues a conversion of an uploaded file and returns a snapshot of
// the new job.
func (m *Manager) Start(info *models.FileInfo) *Job {
	job := &Job{
		ID:        uuid.New().String(),
		FileID:    info.ID,
		FileName:  info.Name,
		Status:    StatusQueued,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	snapshot := *job
	m.mu.Unlock()

	m.wg.Add(1)
	go m.run(job, *info)

	return &snapshot
}

// Get returns a snapshot of a job by ID.
func (m *Manager) Get(id string) (*Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, false
	}
	cp := *job
	return &cp, true
}

// Wait blocks until every started job has finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) run(job *Job, info models.FileInfo) {
	defer m.wg.Done()

	m.sem <- struct{}{}
	defer func() { <-m.sem }()

	m.setStatus(job, StatusConverting)
	log.Infof("[Jobs %s] Converting %s", shortID(job.ID), job.FileName)

	ctx := context.Background()
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	conv, err := m.process(ctx, &info)
	if err != nil {
		m.fail(job, err.Error())
		return
	}

	m.mu.Lock()
	job.Status = StatusComplete
	job.ConversionID = conv.ID
	now := time.Now()
	job.CompletedAt = &now
	m.mu.Unlock()

	log.Infof("[Jobs %s] Complete: conversion %s (%s)", shortID(job.ID), conv.ID, conv.Method)
}

// Convert runs one conversion synchronously. It shares the concurrency limit
// with background jobs and gives up if ctx ends while waiting for a slot.
func (m *Manager) Convert(ctx context.Context, info *models.FileInfo) (*models.Conversion, error) {
	select {
	case m.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-m.sem }()

	return m.process(ctx, info)
}

// process reads the uploaded file, converts it, records the result and
// updates the file status.
func (m *Manager) process(ctx context.Context, info *models.FileInfo) (*models.Conversion, error) {
	conv, err := m.convert(ctx, info)
	status := models.FileStatusConverted
	if err != nil {
		status = models.FileStatusError
	}
	if serr := m.files.SetStatus(info.ID, status); serr != nil {
		log.Warnf("[Jobs] Could not update status of %s: %v", info.ID, serr)
	}
	return conv, err
}

func (m *Manager) convert(ctx context.Context, info *models.FileInfo) (*models.Conversion, error) {
	source, err := m.files.ReadFile(info.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	res, err := m.converter.Convert(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("conversion failed: %w", err)
	}

	conv := &models.Conversion{
		FileID:     info.ID,
		FileName:   info.Name,
		UploadedAt: info.UploadedAt,
		Method:     res.Method,
		CobolCode:  string(source),
		JavaCode:   res.JavaCode,
		Logs:       res.Logs,
	}
	if err := m.records.Insert(ctx, conv); err != nil {
		return nil, fmt.Errorf("failed to save conversion: %w", err)
	}
	return conv, nil
}

func (m *Manager) setStatus(job *Job, status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job.Status = status
}

// fail marks job as failed (thread-safe).
func (m *Manager) fail(job *Job, errMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job.Status = StatusError
	job.Error = errMsg
	now := time.Now()
	job.CompletedAt = &now
	log.Errorf("[Jobs %s] Error: %s", shortID(job.ID), errMsg)
}

// Cleanup removes finished jobs older than maxAge and returns how many were
// removed.
func (m *Manager) Cleanup(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, job := range m.jobs {
		if job.Done() && job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, id)
			removed++
		}
	}
	return removed
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
