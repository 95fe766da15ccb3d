package thermo

import (
	"context"
	"time"

	"thermotel/pkg/db"
	"thermotel/pkg/models"
)

type ICredential interface {
	RegisterDevice(ownerID, serial, name string) (*models.IssuedCredential, error)
	RotateCredential(serial string) (*models.IssuedCredential, error)
	RevokeCredential(serial string, credentialID uint) error
	VerifyCredential(presented string) (*models.Device, error)
}

type ITelemetry interface {
	AppendSample(serial string, input *models.TelemetrySample) (*models.TelemetrySample, error)
	RangeSamples(serial string, start, end time.Time) ([]models.TelemetrySample, error)
	RecentSamples(serial string, limit int) ([]models.TelemetrySample, error)
}

type IQuota interface {
	CheckQuota(ownerID string) (*models.StorageProfile, error)
	AddUsage(ownerID string, delta int64) error
	RecomputeUsage(ownerID string) (int64, error)
	GetProfile(ownerID string) (*models.StorageProfile, error)
}

type IAlert interface {
	EvaluateSample(serial string, sample *models.TelemetrySample) error
	GetDeviceAlerts(serial string) ([]models.AlertEvent, error)
}

type ISettings interface {
	UpsertSettings(serial string, input *models.AlertSettings) error
	GetSettings(serial string) (*models.AlertSettings, error)
}

type Notifier interface {
	Notify(ctx context.Context, notice *models.AlertNotice) error
}

type Thermo struct {
	Db         db.DB
	Credential ICredential
	Telemetry  ITelemetry
	Quota      IQuota
	Alert      IAlert
	Settings   ISettings
	Notifier   Notifier

	IngestLimiter *WindowLimiterStore
	RotateLimiter *WindowLimiterStore

	// Clock overrides the wall clock. Leave nil outside tests.
	Clock func() time.Time

	alertLocks keyedMutex
}

func (t *Thermo) now() time.Time {
	if t.Clock != nil {
		return t.Clock()
	}
	return time.Now()
}

type ServiceOpts struct {
	Credential ICredential
	Telemetry  ITelemetry
	Quota      IQuota
	Alert      IAlert
	Settings   ISettings
	Notifier   Notifier
}

func (t *Thermo) WithServices(opts ServiceOpts) *Thermo {
	if opts.Credential != nil {
		t.Credential = opts.Credential
	}
	if opts.Telemetry != nil {
		t.Telemetry = opts.Telemetry
	}
	if opts.Quota != nil {
		t.Quota = opts.Quota
	}
	if opts.Alert != nil {
		t.Alert = opts.Alert
	}
	if opts.Settings != nil {
		t.Settings = opts.Settings
	}
	if opts.Notifier != nil {
		t.Notifier = opts.Notifier
	}
	return t
}
