package core

import (
	"context"
	"log"
	"sync"

	"github.com/Archith7/MediSaarthi/internal/models"
	"github.com/Archith7/MediSaarthi/internal/transport"
)

const (
	uploadPath           = "/api/ocr/upload"
	uploadField          = "file"
	defaultUploadMessage = "Uploaded successfully"
	defaultUploadFailure = "Upload failed"
)

// Uploader sends one file to the ingest endpoint
type Uploader interface {
	Upload(ctx context.Context, path, field, fileName string, content []byte) (*transport.Response, error)
}

// UploadPipeline uploads a batch of images one at a time and aggregates
// per-file outcomes. Files are never retried and a failure never aborts
// the batch.
type UploadPipeline struct {
	mu       sync.Mutex
	api      Uploader
	state    models.UploadState
	batch    []models.SelectedFile
	current  string
	progress models.UploadProgress
	outcomes []models.UploadOutcome
	version  uint64
	publish  publisher[models.UploadSnapshot]
}

func NewUploadPipeline(api Uploader) *UploadPipeline {
	return &UploadPipeline{
		api:   api,
		state: models.UploadIdle,
	}
}

// OnChange registers the observer notified after every state change
func (p *UploadPipeline) OnChange(fn func(models.UploadSnapshot)) {
	p.publish.set(fn)
}

// SelectFiles replaces the batch with the image files among files and
// returns how many were kept.
func (p *UploadPipeline) SelectFiles(files []models.SelectedFile) (int, error) {
	var kept []models.SelectedFile
	for _, f := range files {
		if IsImage(f) {
			kept = append(kept, f)
		}
	}

	p.mu.Lock()
	if p.state == models.UploadUploading {
		p.mu.Unlock()
		return 0, ErrUploadInProgress
	}

	p.batch = kept
	if len(kept) == 0 {
		if p.state == models.UploadPreviewing {
			p.state = models.UploadIdle
		}
	} else {
		p.state = models.UploadPreviewing
		p.outcomes = nil
		p.progress = models.UploadProgress{}
	}
	snap, notify := p.publishLocked()
	p.mu.Unlock()

	notify(snap)
	return len(kept), nil
}

// RemoveFile drops the file at index from the pending batch
func (p *UploadPipeline) RemoveFile(index int) error {
	p.mu.Lock()
	if p.state != models.UploadPreviewing {
		p.mu.Unlock()
		return ErrInvalidState
	}
	if index < 0 || index >= len(p.batch) {
		p.mu.Unlock()
		return nil
	}

	p.batch = append(p.batch[:index:index], p.batch[index+1:]...)
	if len(p.batch) == 0 {
		p.state = models.UploadIdle
	}
	snap, notify := p.publishLocked()
	p.mu.Unlock()

	notify(snap)
	return nil
}

// Upload sends the batch in selection order. Request i+1 is issued only
// after outcome i is recorded. The returned outcomes are in file order.
func (p *UploadPipeline) Upload(ctx context.Context) ([]models.UploadOutcome, error) {
	p.mu.Lock()
	switch {
	case p.state == models.UploadUploading:
		p.mu.Unlock()
		return nil, ErrUploadInProgress
	case p.state != models.UploadPreviewing || len(p.batch) == 0:
		p.mu.Unlock()
		return nil, ErrNothingToUpload
	}

	batch := p.batch
	p.state = models.UploadUploading
	p.progress = models.UploadProgress{Completed: 0, Total: len(batch)}
	p.outcomes = make([]models.UploadOutcome, 0, len(batch))
	snap, notify := p.publishLocked()
	p.mu.Unlock()
	notify(snap)

	for _, file := range batch {
		p.mu.Lock()
		p.current = file.Name
		snap, notify = p.publishLocked()
		p.mu.Unlock()
		notify(snap)

		outcome := p.uploadOne(ctx, file)

		p.mu.Lock()
		p.outcomes = append(p.outcomes, outcome)
		p.progress.Completed++
		p.current = ""
		snap, notify = p.publishLocked()
		p.mu.Unlock()
		notify(snap)
	}

	p.mu.Lock()
	p.state = models.UploadCompleted
	p.batch = nil
	result := make([]models.UploadOutcome, len(p.outcomes))
	copy(result, p.outcomes)
	snap, notify = p.publishLocked()
	p.mu.Unlock()
	notify(snap)

	return result, nil
}

func (p *UploadPipeline) uploadOne(ctx context.Context, file models.SelectedFile) models.UploadOutcome {
	outcome := models.UploadOutcome{FileName: file.Name}

	resp, err := p.api.Upload(ctx, uploadPath, uploadField, file.Name, file.Content)
	if err != nil {
		log.Printf("upload %s failed: %v", file.Name, err)
		outcome.Message = err.Error()
		return outcome
	}

	env := resp.Envelope()
	if !env.Succeeded() {
		outcome.Message = models.FirstNonEmpty(env.Reason(), defaultUploadFailure)
		return outcome
	}

	outcome.Succeeded = true
	outcome.Message = models.FirstNonEmpty(env.Reason(), defaultUploadMessage)
	return outcome
}

// Cancel discards the pending batch or the completed results
func (p *UploadPipeline) Cancel() error {
	p.mu.Lock()
	switch p.state {
	case models.UploadUploading:
		p.mu.Unlock()
		return ErrUploadInProgress
	case models.UploadIdle, models.UploadCancelled:
		p.mu.Unlock()
		return nil
	}

	p.state = models.UploadCancelled
	p.batch = nil
	p.outcomes = nil
	p.progress = models.UploadProgress{}
	snap, notify := p.publishLocked()
	p.mu.Unlock()

	notify(snap)
	return nil
}

// Snapshot returns a copy of the current pipeline state
func (p *UploadPipeline) Snapshot() models.UploadSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Outcomes returns the outcomes recorded for the latest batch
func (p *UploadPipeline) Outcomes() []models.UploadOutcome {
	return p.Snapshot().Outcomes
}

func (p *UploadPipeline) snapshotLocked() models.UploadSnapshot {
	names := make([]string, len(p.batch))
	for i, f := range p.batch {
		names[i] = f.Name
	}
	outcomes := make([]models.UploadOutcome, len(p.outcomes))
	copy(outcomes, p.outcomes)

	return models.UploadSnapshot{
		State:    p.state,
		Files:    names,
		Current:  p.current,
		Progress: p.progress,
		Outcomes: outcomes,
		Version:  p.version,
	}
}

// publishLocked records a state change. The returned func must be called
// once p.mu is released.
func (p *UploadPipeline) publishLocked() (models.UploadSnapshot, func(models.UploadSnapshot)) {
	p.version++
	snap := p.snapshotLocked()
	return snap, p.publish.begin()
}
