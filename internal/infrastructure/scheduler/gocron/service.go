package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/ArkLabsHQ/settler/internal/core/ports"
	"github.com/go-co-op/gocron"
)

type service struct {
	scheduler *gocron.Scheduler
	job       *gocron.Job
	mu        *sync.Mutex
}

func NewScheduler() ports.SchedulerService {
	svc := gocron.NewScheduler(time.UTC)
	return &service{svc, nil, &sync.Mutex{}}
}

func (s *service) Start() {
	s.scheduler.StartAsync()
}

func (s *service) Stop() {
	s.scheduler.Stop()
}

// ScheduleSettlements runs settleFunc every interval, replacing any
// previously scheduled settlement. A run never overlaps with the previous
// one: if it lasts longer than the interval the next one is skipped.
func (s *service) ScheduleSettlements(every time.Duration, settleFunc func()) error {
	if every <= 0 {
		return fmt.Errorf("invalid settlement interval: %s", every)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.job != nil {
		s.scheduler.RemoveByReference(s.job)
		s.job = nil
	}

	job, err := s.scheduler.Every(every).WaitForSchedule().SingletonMode().Do(settleFunc)
	if err != nil {
		return err
	}

	s.job = job
	return nil
}

// WhenNextSettlement returns the next scheduled settlement time
func (s *service) WhenNextSettlement() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.job == nil {
		return time.Time{}
	}

	return s.job.NextRun()
}
