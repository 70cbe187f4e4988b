package admin

import (
	"context"
	"time"
)

// BackupObserver recibe el resultado de cada respaldo (métricas).
type BackupObserver interface {
	ObserveBackup(err error)
}

// BackupJob adapta Service.Backup al scheduler.
type BackupJob struct {
	svc     *Service
	obs     BackupObserver
	timeout time.Duration
}

func NewBackupJob(svc *Service, obs BackupObserver) *BackupJob {
	return &BackupJob{svc: svc, obs: obs, timeout: 2 * time.Minute}
}

func (j *BackupJob) Name() string { return "backup" }

func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	_, err := j.svc.Backup(ctx)
	if j.obs != nil {
		j.obs.ObserveBackup(err)
	}
	return err
}
