package dashboard

import (
	"context"

	"github.com/vitrine-labs/signage-backend/pkg/enums"
	pkgerrors "github.com/vitrine-labs/signage-backend/pkg/errors"
)

// StatsDTO is the admin dashboard summary.
type StatsDTO struct {
	Devices       int64 `json:"devices"`
	DevicesOnline int64 `json:"devices_online"`
	MediaFiles    int64 `json:"media_files"`
	Images        int64 `json:"images"`
	Videos        int64 `json:"videos"`
	Links         int64 `json:"links"`
	Playlists     int64 `json:"playlists"`
}

// Service aggregates entity counts for the dashboard.
type Service interface {
	Stats(ctx context.Context) (*StatsDTO, error)
}

type deviceCounter interface {
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status enums.DeviceStatus) (int64, error)
}

type mediaCounter interface {
	Count(ctx context.Context) (int64, error)
	CountByType(ctx context.Context, mediaType enums.MediaType) (int64, error)
}

type counter interface {
	Count(ctx context.Context) (int64, error)
}

// ServiceParams groups dependencies for the dashboard service.
type ServiceParams struct {
	DeviceRepo   deviceCounter
	MediaRepo    mediaCounter
	LinkRepo     counter
	PlaylistRepo counter
}

type service struct {
	devices   deviceCounter
	media     mediaCounter
	links     counter
	playlists counter
}

// NewService builds a dashboard service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DeviceRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "device repo is required")
	}
	if params.MediaRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "media repo is required")
	}
	if params.LinkRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "link repo is required")
	}
	if params.PlaylistRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "playlist repo is required")
	}
	return &service{
		devices:   params.DeviceRepo,
		media:     params.MediaRepo,
		links:     params.LinkRepo,
		playlists: params.PlaylistRepo,
	}, nil
}

// Stats collects the current entity counts.
func (s *service) Stats(ctx context.Context) (*StatsDTO, error) {
	stats := &StatsDTO{}
	var err error

	if stats.Devices, err = s.devices.Count(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count devices")
	}
	if stats.DevicesOnline, err = s.devices.CountByStatus(ctx, enums.DeviceStatusOnline); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count online devices")
	}
	if stats.MediaFiles, err = s.media.Count(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count media files")
	}
	if stats.Images, err = s.media.CountByType(ctx, enums.MediaTypeImage); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count images")
	}
	if stats.Videos, err = s.media.CountByType(ctx, enums.MediaTypeVideo); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count videos")
	}
	if stats.Links, err = s.links.Count(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count links")
	}
	if stats.Playlists, err = s.playlists.Count(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count playlists")
	}
	return stats, nil
}
