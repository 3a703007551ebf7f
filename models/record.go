package models

import "time"

// AnalysisRecord is one classification result with its source image
// references. URLs stay empty placeholders until the corresponding blob
// upload returns.
type AnalysisRecord struct {
	RecordID   string  `json:"record_id"`
	PatientRef string  `json:"patient_ref"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`

	T1ImageURL string `json:"t1_image_url,omitempty"`
	T2ImageURL string `json:"t2_image_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RemoteRecord is an analysis record as reported by the server. UpdatedAt is
// the remote timestamp and wins conflicts against local drafts.
type RemoteRecord struct {
	AnalysisRecord

	// Cursor positions this record in the server's change feed.
	Cursor string `json:"cursor"`
}
