package background

import (
	"context"
	"log"
	"sync"
	"time"

	"estoquehub/internal/jobs"
	"estoquehub/internal/services"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler manages the periodic background jobs.
type JobScheduler struct {
	scheduler   gocron.Scheduler
	maletaSvc   services.MaletaService
	lowStockSvc *jobs.LowStockAlertService
	jobJobs     map[string]gocron.Job
	mu          sync.RWMutex
}

func NewJobScheduler(maletaSvc services.MaletaService, lowStockSvc *jobs.LowStockAlertService) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:   scheduler,
		maletaSvc:   maletaSvc,
		lowStockSvc: lowStockSvc,
		jobJobs:     make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	// Overdue sweep - every 5 minutes. Reads also sweep lazily, this keeps
	// statuses fresh even when nobody is looking.
	overdueJob, err := js.scheduler.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(js.sweepOverdueMaletas, context.Background()),
		gocron.WithName("overdue-maletas-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create overdue sweep job: %v", err)
	} else {
		js.jobJobs["overdue-sweep"] = overdueJob
	}

	// Low stock alerts - every 30 minutes
	alertsJob, err := js.scheduler.NewJob(
		gocron.DurationJob(30*time.Minute),
		gocron.NewTask(js.lowStockSvc.ScheduledLowStockCheck, context.Background()),
		gocron.WithName("low-stock-alerts"),
	)
	if err != nil {
		log.Printf("Failed to create low stock alerts job: %v", err)
	} else {
		js.jobJobs["low-stock-alerts"] = alertsJob
	}

	log.Printf("Registered %d background jobs", len(js.jobJobs))
}

func (js *JobScheduler) sweepOverdueMaletas(ctx context.Context) error {
	updated, err := js.maletaSvc.SweepOverdue(ctx)
	if err != nil {
		log.Printf("Overdue sweep failed: %v", err)
		return err
	}
	if updated > 0 {
		log.Printf("Overdue sweep marked %d maletas atrasadas", updated)
	}
	return nil
}

// AddJob adds a custom job to the scheduler.
func (js *JobScheduler) AddJob(name string, interval time.Duration, taskFn interface{}, params ...interface{}) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(taskFn, params...),
		gocron.WithName(name),
	)
	if err != nil {
		return err
	}

	js.jobJobs[name] = job
	log.Printf("Added custom job: %s", name)
	return nil
}

// GetJobStatus returns information about scheduled jobs.
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	status := make(map[string]interface{})
	status["total_jobs"] = len(js.jobJobs)
	names := make([]string, 0, len(js.jobJobs))
	for name := range js.jobJobs {
		names = append(names, name)
	}
	status["jobs"] = names

	return status
}
