package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/apexquest/apexquest/internal/model"
	"github.com/apexquest/apexquest/pkg/logger"
)

type announceJob struct {
	userID  string
	typ     model.NotificationType
	title   string
	message string
	enqAt   time.Time
}

// Announcer delivers platform-wide notifications asynchronously so a
// message to every user does not block the staff request on N inserts.
type Announcer struct {
	notifier NotificationService
	ch       chan announceJob
}

func NewAnnouncer(notifier NotificationService, queueSize int) *Announcer {
	if queueSize <= 0 {
		queueSize = 10000
	}
	return &Announcer{notifier: notifier, ch: make(chan announceJob, queueSize)}
}

// Start launches the worker pool; the returned function stops it after
// letting the queue drain briefly.
func (a *Announcer) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 4
	}
	stopCh := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			for {
				select {
				case job := <-a.ch:
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					if err := a.notifier.Notify(ctx, job.userID, job.typ, job.title, job.message); err != nil {
						logger.Warn("announce delivery failed",
							zap.String("user", job.userID), zap.Error(err))
					}
					cancel()
				case <-stopCh:
					return
				}
			}
		}()
	}
	return func(ctx context.Context) error {
		close(stopCh)
		timeout := time.After(2 * time.Second)
		for {
			select {
			case <-timeout:
				return nil
			default:
				if len(a.ch) == 0 {
					return nil
				}
				time.Sleep(50 * time.Millisecond)
			}
		}
	}
}

func (a *Announcer) Enqueue(userID string, typ model.NotificationType, title, message string) {
	select {
	case a.ch <- announceJob{userID: userID, typ: typ, title: title, message: message, enqAt: time.Now()}:
	default:
		logger.Warn("announcer queue full, drop", zap.String("user", userID))
	}
}

// QueueLen returns the current queue length (sampled).
func (a *Announcer) QueueLen() int { return len(a.ch) }
