package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/vitrine-labs/signage-backend/pkg/logger"
)

const defaultOfflineAfter = 2 * time.Minute

type staleDeviceMarker interface {
	MarkStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// DeviceStatusJobParams configure the device status sweep.
type DeviceStatusJobParams struct {
	Logger       *logger.Logger
	Devices      staleDeviceMarker
	OfflineAfter time.Duration
}

// NewDeviceStatusJob builds the job that flips silent devices to offline.
func NewDeviceStatusJob(params DeviceStatusJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Devices == nil {
		return nil, fmt.Errorf("device repository required")
	}
	offlineAfter := params.OfflineAfter
	if offlineAfter <= 0 {
		offlineAfter = defaultOfflineAfter
	}
	return &deviceStatusJob{
		logg:         params.Logger,
		devices:      params.Devices,
		offlineAfter: offlineAfter,
		now:          time.Now,
	}, nil
}

type deviceStatusJob struct {
	logg         *logger.Logger
	devices      staleDeviceMarker
	offlineAfter time.Duration
	now          func() time.Time
}

func (j *deviceStatusJob) Name() string { return "device-status-sweep" }

func (j *deviceStatusJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.offlineAfter)
	marked, err := j.devices.MarkStale(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("device status sweep: %w", err)
	}
	if marked > 0 {
		logCtx := j.logg.WithFields(ctx, map[string]any{
			"cutoff":         cutoff,
			"marked_offline": marked,
		})
		j.logg.Info(logCtx, "stale devices marked offline")
	}
	return nil
}
