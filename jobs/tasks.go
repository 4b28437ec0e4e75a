package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportRefresh recomputes and caches report bundles for every
	// segment of one report kind.
	TaskReportRefresh = "reports:refresh"
	// TaskOverdueSweep flips lapsed pending payments to overdue across
	// all segments without recomputing reports.
	TaskOverdueSweep = "payments:overdue_sweep"
)

// ReportRefreshPayload configures the scope of a report refresh run.
// Period and Year of zero mean the period just completed.
type ReportRefreshPayload struct {
	Kind   string `json:"kind"`
	Period int    `json:"period,omitempty"`
	Year   int    `json:"year,omitempty"`
}

// NewReportRefreshTask constructs an Asynq task for a report refresh.
func NewReportRefreshTask(payload ReportRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportRefresh, data, asynq.Queue(QueueDefault)), nil
}

// NewOverdueSweepTask constructs an Asynq task for the overdue sweep.
func NewOverdueSweepTask() *asynq.Task {
	return asynq.NewTask(TaskOverdueSweep, nil, asynq.Queue(QueueDefault))
}
