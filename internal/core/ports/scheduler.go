package ports

import (
	"time"
)

type SchedulerService interface {
	Start()
	Stop()
	ScheduleSettlements(every time.Duration, settleFunc func()) error
	WhenNextSettlement() time.Time
}
