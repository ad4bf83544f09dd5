package core

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Archith7/MediSaarthi/internal/models"
	"github.com/Archith7/MediSaarthi/internal/testutil"
	"github.com/Archith7/MediSaarthi/internal/transport"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func pngFile(name string) models.SelectedFile {
	return models.SelectedFile{Name: name, ContentType: "image/png", Content: pngHeader}
}

func newTestClient(t *testing.T, api *testutil.FakeAPI) *transport.Client {
	t.Helper()
	client, err := transport.NewClient(api.URL(), nil)
	require.NoError(t, err)
	return client
}

// recorder collects every snapshot published by the pipeline
type recorder struct {
	mu    sync.Mutex
	snaps []models.UploadSnapshot
}

func (r *recorder) add(s models.UploadSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) percentsAfterOutcomes() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []int
	last := 0
	for _, s := range r.snaps {
		if s.State == models.UploadUploading && len(s.Outcomes) > last {
			last = len(s.Outcomes)
			out = append(out, s.Progress.Percent())
		}
	}
	return out
}

func TestUploadPipeline_SelectFiltersNonImages(t *testing.T) {
	p := NewUploadPipeline(nil)

	kept, err := p.SelectFiles([]models.SelectedFile{
		pngFile("a.png"),
		{Name: "notes.txt", Content: []byte("hello")},
		{Name: "scan.jpg"},
		{Name: "blob", Content: pngHeader},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, kept)

	snap := p.Snapshot()
	assert.Equal(t, models.UploadPreviewing, snap.State)
	assert.Equal(t, []string{"a.png", "scan.jpg", "blob"}, snap.Files)
}

func TestUploadPipeline_SelectOnlyNonImagesStaysIdle(t *testing.T) {
	p := NewUploadPipeline(nil)

	kept, err := p.SelectFiles([]models.SelectedFile{{Name: "report.pdf", ContentType: "application/pdf"}})
	require.NoError(t, err)
	assert.Equal(t, 0, kept)
	assert.Equal(t, models.UploadIdle, p.Snapshot().State)
	assert.Empty(t, p.Snapshot().Files)
}

func TestUploadPipeline_SelectReplacesBatch(t *testing.T) {
	p := NewUploadPipeline(nil)

	_, err := p.SelectFiles([]models.SelectedFile{pngFile("a.png"), pngFile("b.png")})
	require.NoError(t, err)
	_, err = p.SelectFiles([]models.SelectedFile{pngFile("c.png")})
	require.NoError(t, err)

	assert.Equal(t, []string{"c.png"}, p.Snapshot().Files)

	_, err = p.SelectFiles(nil)
	require.NoError(t, err)
	assert.Equal(t, models.UploadIdle, p.Snapshot().State)
}

func TestUploadPipeline_RemoveFile(t *testing.T) {
	p := NewUploadPipeline(nil)
	assert.ErrorIs(t, p.RemoveFile(0), ErrInvalidState)

	_, err := p.SelectFiles([]models.SelectedFile{pngFile("a.png"), pngFile("b.png"), pngFile("c.png")})
	require.NoError(t, err)

	require.NoError(t, p.RemoveFile(1))
	assert.Equal(t, []string{"a.png", "c.png"}, p.Snapshot().Files)

	require.NoError(t, p.RemoveFile(7))
	require.NoError(t, p.RemoveFile(-1))
	assert.Equal(t, []string{"a.png", "c.png"}, p.Snapshot().Files)

	require.NoError(t, p.RemoveFile(0))
	require.NoError(t, p.RemoveFile(0))
	assert.Equal(t, models.UploadIdle, p.Snapshot().State)
}

func TestUploadPipeline_UploadSequentialInOrder(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	p := NewUploadPipeline(newTestClient(t, api))
	rec := &recorder{}
	p.OnChange(rec.add)

	names := []string{"one.png", "two.png", "three.png", "four.png"}
	var files []models.SelectedFile
	for _, n := range names {
		files = append(files, pngFile(n))
	}
	_, err := p.SelectFiles(files)
	require.NoError(t, err)

	outcomes, err := p.Upload(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, len(names))

	reqs := api.RequestsTo("/api/ocr/upload")
	require.Len(t, reqs, len(names))
	for i, n := range names {
		assert.Equal(t, n, reqs[i].FileName)
		assert.Equal(t, n, outcomes[i].FileName)
		assert.True(t, outcomes[i].Succeeded)
		assert.Equal(t, "Extracted lab report from "+n, outcomes[i].Message)
	}

	assert.Equal(t, []int{25, 50, 75, 100}, rec.percentsAfterOutcomes())

	snap := p.Snapshot()
	assert.Equal(t, models.UploadCompleted, snap.State)
	assert.Empty(t, snap.Files)
	assert.Equal(t, 100, snap.Progress.Percent())
	assert.Len(t, snap.Outcomes, len(names))
}

func TestUploadPipeline_PartialFailure(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.HandleSequence(http.MethodPost, "/api/ocr/upload",
		testutil.JSON(http.StatusOK, map[string]any{"success": true}),
		testutil.DropConnection,
	)
	p := NewUploadPipeline(newTestClient(t, api))
	rec := &recorder{}
	p.OnChange(rec.add)

	_, err := p.SelectFiles([]models.SelectedFile{pngFile("first.png"), pngFile("second.png")})
	require.NoError(t, err)

	outcomes, err := p.Upload(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.True(t, outcomes[0].Succeeded)
	assert.Equal(t, "Uploaded successfully", outcomes[0].Message)
	assert.False(t, outcomes[1].Succeeded)
	assert.NotEmpty(t, outcomes[1].Message)

	assert.Equal(t, []int{50, 100}, rec.percentsAfterOutcomes())
}

func TestUploadPipeline_ApplicationFailureContinues(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.HandleSequence(http.MethodPost, "/api/ocr/upload",
		testutil.JSON(http.StatusBadRequest, map[string]any{"detail": "Invalid file type"}),
		testutil.JSON(http.StatusOK, map[string]any{"success": false}),
		testutil.JSON(http.StatusOK, map[string]any{"success": true, "message": "saved"}),
	)
	p := NewUploadPipeline(newTestClient(t, api))

	_, err := p.SelectFiles([]models.SelectedFile{pngFile("a.png"), pngFile("b.png"), pngFile("c.png")})
	require.NoError(t, err)

	outcomes, err := p.Upload(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []models.UploadOutcome{
		{FileName: "a.png", Succeeded: false, Message: "Invalid file type"},
		{FileName: "b.png", Succeeded: false, Message: "Upload failed"},
		{FileName: "c.png", Succeeded: true, Message: "saved"},
	}, outcomes)
}

func TestUploadPipeline_UploadRequiresPreview(t *testing.T) {
	p := NewUploadPipeline(nil)

	_, err := p.Upload(context.Background())
	assert.ErrorIs(t, err, ErrNothingToUpload)
}

func TestUploadPipeline_BusyWhileUploading(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	release := make(chan struct{})
	api.Handle(http.MethodPost, "/api/ocr/upload", testutil.Block(release, testutil.JSON(http.StatusOK, map[string]any{"success": true})))
	p := NewUploadPipeline(newTestClient(t, api))

	started := make(chan struct{})
	var once sync.Once
	p.OnChange(func(s models.UploadSnapshot) {
		if s.Current != "" {
			once.Do(func() { close(started) })
		}
	})

	_, err := p.SelectFiles([]models.SelectedFile{pngFile("a.png")})
	require.NoError(t, err)

	done := make(chan []models.UploadOutcome)
	go func() {
		outcomes, _ := p.Upload(context.Background())
		done <- outcomes
	}()
	<-started

	_, err = p.SelectFiles([]models.SelectedFile{pngFile("b.png")})
	assert.ErrorIs(t, err, ErrUploadInProgress)
	assert.ErrorIs(t, p.Cancel(), ErrUploadInProgress)
	_, err = p.Upload(context.Background())
	assert.ErrorIs(t, err, ErrUploadInProgress)

	close(release)
	outcomes := <-done
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Succeeded)
}

func TestUploadPipeline_Cancel(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	p := NewUploadPipeline(newTestClient(t, api))

	require.NoError(t, p.Cancel())
	assert.Equal(t, models.UploadIdle, p.Snapshot().State)

	_, err := p.SelectFiles([]models.SelectedFile{pngFile("a.png")})
	require.NoError(t, err)
	require.NoError(t, p.Cancel())
	assert.Equal(t, models.UploadCancelled, p.Snapshot().State)
	assert.Empty(t, p.Snapshot().Files)

	_, err = p.SelectFiles([]models.SelectedFile{pngFile("a.png")})
	require.NoError(t, err)
	_, err = p.Upload(context.Background())
	require.NoError(t, err)
	require.NoError(t, p.Cancel())

	snap := p.Snapshot()
	assert.Equal(t, models.UploadCancelled, snap.State)
	assert.Empty(t, snap.Outcomes)
	assert.Len(t, api.Requests(), 1)
}

func TestUploadPipeline_CancelPublishesAfterCompletion(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	p := NewUploadPipeline(newTestClient(t, api))
	_, err := p.SelectFiles([]models.SelectedFile{pngFile("a.png")})
	require.NoError(t, err)

	gate := make(chan struct{})
	completed := make(chan struct{})
	rec := &recorder{}
	p.OnChange(func(s models.UploadSnapshot) {
		if s.State == models.UploadCompleted {
			close(completed)
			<-gate
		}
		rec.add(s)
	})

	done := make(chan error, 1)
	go func() {
		_, err := p.Upload(context.Background())
		done <- err
	}()
	<-completed

	cancelled := make(chan error, 1)
	go func() { cancelled <- p.Cancel() }()
	assert.Never(t, func() bool { return len(cancelled) > 0 }, 50*time.Millisecond, 5*time.Millisecond)

	close(gate)
	require.NoError(t, <-done)
	require.NoError(t, <-cancelled)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.GreaterOrEqual(t, len(rec.snaps), 2)
	last := rec.snaps[len(rec.snaps)-1]
	assert.Equal(t, models.UploadCompleted, rec.snaps[len(rec.snaps)-2].State)
	assert.Equal(t, models.UploadCancelled, last.State)
	for i := 1; i < len(rec.snaps); i++ {
		assert.Greater(t, rec.snaps[i].Version, rec.snaps[i-1].Version)
	}
	assert.Equal(t, last, p.Snapshot())
}

func TestUploadProgress_Percent(t *testing.T) {
	tests := []struct {
		progress models.UploadProgress
		want     int
	}{
		{models.UploadProgress{Completed: 0, Total: 0}, 0},
		{models.UploadProgress{Completed: 1, Total: 3}, 33},
		{models.UploadProgress{Completed: 2, Total: 3}, 67},
		{models.UploadProgress{Completed: 3, Total: 3}, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.progress.Percent())
	}
}
