package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

type Document struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	Filename      string         `json:"filename"`
	Title         string         `json:"title"`
	MimeType      string         `json:"mime_type"`
	StoragePath   string         `json:"storage_path"`
	Category      string         `json:"category,omitempty"`
	Tags          []string       `json:"tags,omitempty"`
	Collaborators []string       `json:"collaborators,omitempty"`
	Confidence    float64        `json:"confidence_score,omitempty"`
	Summary       string         `json:"summary,omitempty"`
	Status        DocumentStatus `json:"status"`
	Error         string         `json:"error,omitempty"`
	Size          int64          `json:"size"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// AccessibleBy reports whether the user may read or edit the document,
// either as its owner or as a collaborator it was shared with.
func (d *Document) AccessibleBy(userID string) bool {
	if d.UserID == userID {
		return true
	}
	for _, c := range d.Collaborators {
		if c == userID {
			return true
		}
	}
	return false
}

// Classification is what the external analysis service returns for a document.
type Classification struct {
	Category   string   `json:"category"`
	Tags       []string `json:"tags"`
	Confidence float64  `json:"confidence"`
	Summary    string   `json:"summary"`
}

// DocumentUpdate carries a partial metadata edit. Nil fields are left
// untouched.
type DocumentUpdate struct {
	Title    *string  `json:"title,omitempty"`
	Category *string  `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

func (u DocumentUpdate) IsEmpty() bool {
	return u.Title == nil && u.Category == nil && u.Tags == nil
}

// DocumentFilter narrows list queries. Zero values mean "no constraint".
type DocumentFilter struct {
	Category string
	Search   string
}
