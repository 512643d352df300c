package jobs

import "time"

// Job types handled by the worker.
const (
	// TypeWelcomeEmail delivers the post-registration email. Payload: {"user_id": N}.
	TypeWelcomeEmail = "EMAIL_WELCOME"

	// TypeSharePurge removes an expired share row. Enqueued at share creation
	// with run_at = expires_at; expiry is still enforced at access time, this
	// is only garbage collection. Payload: {"share_id": N}.
	TypeSharePurge = "SHARE_PURGE"
)

const (
	StatusPending   = "PENDING"
	StatusRunning   = "RUNNING"
	StatusDone      = "DONE"
	StatusFailed    = "FAILED"
	StatusCancelled = "CANCELLED"
)

type Job struct {
	ID     uint64 `gorm:"primaryKey"`
	UserID uint64 `gorm:"index;not null"`

	Type    string `gorm:"type:text;not null"`
	Payload []byte `gorm:"type:jsonb;not null;default:'{}'::jsonb"`

	RunAt  time.Time `gorm:"index;not null"`
	Status string    `gorm:"index;not null;default:'PENDING'"`

	Attempts    int `gorm:"not null;default:0"`
	MaxAttempts int `gorm:"not null;default:8"`

	LockedBy *string    `gorm:"type:text"`
	LockedAt *time.Time `gorm:"type:timestamptz"`

	LastError *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}
