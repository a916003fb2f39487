package services

import (
	"github.com/sjperalta/fintera-obligations/internal/jobs"
)

// JobStatus is the snapshot served by GET /jobs/status
type JobStatus struct {
	jobs.WorkerStats
	Idle      bool                `json:"idle"`
	Schedules []jobs.ScheduleInfo `json:"schedules"`
}

// JobService exposes the background worker that runs sweeps and extensions
type JobService struct {
	worker *jobs.Worker
}

func NewJobService(worker *jobs.Worker) *JobService {
	return &JobService{worker: worker}
}

func (s *JobService) Status() JobStatus {
	stats := s.worker.GetStats()
	schedules := s.worker.Schedules()
	if schedules == nil {
		schedules = []jobs.ScheduleInfo{}
	}
	return JobStatus{
		WorkerStats: stats,
		Idle:        stats.ActiveJobs == 0 && stats.QueueLength == 0,
		Schedules:   schedules,
	}
}
