package models

import (
	"time"

	"gorm.io/datatypes"
)

// SyncBatch records one offline replay from a mobile device. Summary holds
// the per-item outcome (SyncSummary) for later inspection.
type SyncBatch struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	DeviceID   string         `json:"device_id" gorm:"not null;size:100;index"`
	SurveyorID uint           `json:"surveyor_id" gorm:"not null;index"`
	ItemCount  int            `json:"item_count"`
	Summary    datatypes.JSON `json:"summary" gorm:"type:jsonb"`

	ReceivedAt time.Time `json:"received_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// SyncItemResult is the outcome for a single replayed response.
type SyncItemResult struct {
	ClientRef  string `json:"client_ref"`
	ResponseID uint   `json:"response_id,omitempty"`
	Status     string `json:"status"` // "created", "duplicate", "error"
	Error      string `json:"error,omitempty"`
}

type SyncSummary struct {
	Total      int              `json:"total"`
	Created    int              `json:"created"`
	Duplicates int              `json:"duplicates"`
	Errors     int              `json:"errors"`
	Items      []SyncItemResult `json:"items"`
	Elapsed    time.Duration    `json:"elapsed"`
}

func (SyncBatch) TableName() string {
	return "sync_batches"
}
