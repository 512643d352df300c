package jobs

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"time"

	"gorm.io/gorm"

	"secondbrain/internal/mail"
)

type Worker struct {
	ID     string
	Repo   *Repo
	DB     *gorm.DB
	Mailer mail.Mailer
}

// userRow avoids importing the auth package from the worker.
type userRow struct {
	ID    uint64 `gorm:"column:id"`
	Name  string `gorm:"column:name"`
	Email string `gorm:"column:email"`
}

func (userRow) TableName() string { return "users" }

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(800 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce claims and handles at most one due job, reporting whether one was
// processed.
func (w *Worker) RunOnce(ctx context.Context) bool {
	job, err := w.Repo.Claim(w.ID)
	if err != nil {
		log.Printf("worker claim error: %v\n", err)
		return false
	}
	if job == nil {
		return false
	}
	w.handle(ctx, job)
	return true
}

func (w *Worker) handle(ctx context.Context, job *Job) {
	switch job.Type {
	case TypeWelcomeEmail:
		w.handleWelcomeEmail(ctx, job)
	case TypeSharePurge:
		w.handleSharePurge(job)
	default:
		_ = w.Repo.MarkFailed(job.ID, "unknown job type")
	}
}

func (w *Worker) handleWelcomeEmail(ctx context.Context, job *Job) {
	type payload struct {
		UserID uint64 `json:"user_id"`
	}
	var p payload
	if err := json.Unmarshal(job.Payload, &p); err != nil {
		_ = w.Repo.MarkFailed(job.ID, "bad payload")
		return
	}
	if p.UserID == 0 {
		p.UserID = job.UserID
	}

	var u userRow
	if err := w.DB.Where("id = ?", p.UserID).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			_ = w.Repo.MarkDone(job.ID)
			return
		}
		w.retry(job, "db read error")
		return
	}

	subject, body := mail.Welcome(u.Name)
	if err := w.Mailer.Send(ctx, u.Email, subject, body); err != nil {
		w.retry(job, "send failed: "+err.Error())
		return
	}

	log.Printf("[MAIL] welcome sent user=%d\n", u.ID)
	_ = w.Repo.MarkDone(job.ID)
}

func (w *Worker) handleSharePurge(job *Job) {
	type payload struct {
		ShareID uint64 `json:"share_id"`
	}
	var p payload
	if err := json.Unmarshal(job.Payload, &p); err != nil {
		_ = w.Repo.MarkFailed(job.ID, "bad payload")
		return
	}

	// Only remove if actually past expiry: the share's expiry may have been
	// pushed out after this job was enqueued. Share and viewer rows go in
	// one transaction so a failed viewer delete can never strand orphans
	// behind an already-purged share.
	var purged int64
	err := w.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(`
			delete from shares
			where id = ? and expires_at is not null and expires_at <= now()
		`, p.ShareID)
		if res.Error != nil {
			return res.Error
		}
		purged = res.RowsAffected
		if purged > 0 {
			return tx.Exec(`delete from share_viewers where share_id = ?`, p.ShareID).Error
		}
		return nil
	})
	if err != nil {
		w.retry(job, "purge failed")
		return
	}

	if purged > 0 {
		log.Printf("[SHARE] purged expired share=%d\n", p.ShareID)
	}
	_ = w.Repo.MarkDone(job.ID)
}

func (w *Worker) retry(job *Job, errMsg string) {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		_ = w.Repo.MarkFailed(job.ID, errMsg)
		return
	}

	sec := math.Min(math.Pow(2, float64(attempts)), 600)
	next := time.Now().Add(time.Duration(sec) * time.Second)

	_ = w.Repo.RetryLater(job.ID, attempts, next, errMsg)
}
