package models

import "math"

type UploadState int

const (
	UploadIdle UploadState = iota
	UploadPreviewing
	UploadUploading
	UploadCompleted
	UploadCancelled
)

func (s UploadState) String() string {
	switch s {
	case UploadIdle:
		return "idle"
	case UploadPreviewing:
		return "previewing"
	case UploadUploading:
		return "uploading"
	case UploadCompleted:
		return "completed"
	case UploadCancelled:
		return "cancelled"
	}
	return "unknown"
}

// SelectedFile is a locally chosen file awaiting upload
type SelectedFile struct {
	Name        string
	ContentType string
	Content     []byte
}

// UploadOutcome is the recorded result of one file in a batch
type UploadOutcome struct {
	FileName  string `json:"file_name" yaml:"file_name"`
	Succeeded bool   `json:"succeeded" yaml:"succeeded"`
	Message   string `json:"message" yaml:"message"`
}

type UploadProgress struct {
	Completed int `json:"completed" yaml:"completed"`
	Total     int `json:"total" yaml:"total"`
}

// Percent is round(completed/total*100), 0 for an empty batch
func (p UploadProgress) Percent() int {
	if p.Total <= 0 {
		return 0
	}
	return int(math.Round(float64(p.Completed) / float64(p.Total) * 100))
}

// UploadSnapshot is a copy of the pipeline state handed to renderers
type UploadSnapshot struct {
	State    UploadState
	Files    []string // names of the pending batch, in selection order
	Current  string   // file being uploaded right now
	Progress UploadProgress
	Outcomes []UploadOutcome
	Version  uint64 // increases with every published change
}

// Failed counts unsuccessful outcomes
func (s UploadSnapshot) Failed() int {
	n := 0
	for _, o := range s.Outcomes {
		if !o.Succeeded {
			n++
		}
	}
	return n
}
