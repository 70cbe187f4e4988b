package scheduler

import (
	"github.com/robfig/cron/v3"

	"smart-feeding/internal/platform/logger"
)

// Job es una tarea periódica.
type Job interface {
	Run() error
	Name() string
}

// Scheduler corre jobs con expresiones cron estándar (5 campos) o descriptores
// como "@daily" y "@every 1h".
type Scheduler struct {
	cron *cron.Cron
	log  logger.Logger
}

func New(log logger.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		log:  log.With(map[string]any{"component": "scheduler"}),
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", nil)
}

// Stop espera a que terminen los jobs en curso.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped", nil)
}

func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		if err := s.RunNow(job); err != nil {
			s.log.Error("job failed", map[string]any{"job": job.Name(), "error": err})
		}
	})
	if err != nil {
		return err
	}

	s.log.Info("job registered", map[string]any{"job": job.Name(), "schedule": schedule})
	return nil
}

// RunNow ejecuta el job fuera de agenda.
func (s *Scheduler) RunNow(job Job) error {
	s.log.Debug("running job", map[string]any{"job": job.Name()})
	if err := job.Run(); err != nil {
		return err
	}
	s.log.Debug("job completed", map[string]any{"job": job.Name()})
	return nil
}

// Entries devuelve la cantidad de jobs registrados.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
