package thermo

import (
	"context"

	"go.uber.org/zap"
	"thermotel/pkg/common"
	"thermotel/pkg/models"
)

// PipelineContext carries one ingestion attempt through the gate
// chain. Gates fill in the fields they resolve so later gates can use
// them.
type PipelineContext struct {
	Ctx        context.Context
	Credential string
	RemoteIP   string
	Sample     *models.TelemetrySample

	Device  *models.Device
	Profile *models.StorageProfile
	Stored  *models.TelemetrySample
}

// Gate is one stage of the ingestion pipeline. A non-nil error aborts
// the attempt; gates before the store must not leave side effects
// behind on failure.
type Gate func(pc *PipelineContext) error

func (t *Thermo) authGate(pc *PipelineContext) error {
	device, err := t.Credential.VerifyCredential(pc.Credential)
	if err != nil {
		return err
	}
	pc.Device = device
	return nil
}

func (t *Thermo) rateGate(pc *PipelineContext) error {
	if t.IngestLimiter == nil {
		return nil
	}
	if !t.IngestLimiter.AllowOrFailOpen(pc.Ctx, pc.Device.Serial) {
		return ErrRateLimited
	}
	return nil
}

func (t *Thermo) quotaGate(pc *PipelineContext) error {
	profile, err := t.Quota.CheckQuota(pc.Device.OwnerID)
	if err != nil {
		return err
	}
	pc.Profile = profile
	return nil
}

func (t *Thermo) storeGate(pc *PipelineContext) error {
	stored, err := t.Telemetry.AppendSample(pc.Device.Serial, pc.Sample)
	if err != nil {
		return err
	}
	pc.Stored = stored

	logger := common.GetLoggerWith(
		common.LoggerNameThermoCore,
		zap.String(common.LoggerFieldThermoCategory, common.LoggerCategoryThermoQuota),
	)

	delta := estimateSampleBytes(len(stored.RawPayload))
	if err := t.Quota.AddUsage(pc.Device.OwnerID, delta); err != nil {
		logger.Error("Usage bump failed",
			zap.String("owner_id", pc.Device.OwnerID),
			zap.Error(err))
	}

	t.touchDevice(pc)
	return nil
}

func (t *Thermo) touchDevice(pc *PipelineContext) {
	updates := map[string]any{"last_seen_at": pc.Stored.ReceivedAt}
	if pc.RemoteIP != "" {
		updates["last_seen_ip"] = pc.RemoteIP
	}
	result := t.Db.Conn.Model(&models.Device{}).
		Where("serial = ?", pc.Device.Serial).
		Updates(updates)
	if result.Error != nil {
		common.GetLoggerWith(
			common.LoggerNameThermoCore,
			zap.String(common.LoggerFieldThermoCategory, common.LoggerCategoryThermoTelemetry),
		).Error("Device last-seen update failed",
			zap.String("serial", pc.Device.Serial),
			zap.Error(result.Error))
	}
}

func (t *Thermo) alertGate(pc *PipelineContext) error {
	if t.Alert == nil {
		return nil
	}
	if err := t.Alert.EvaluateSample(pc.Device.Serial, pc.Stored); err != nil {
		common.GetLoggerWith(
			common.LoggerNameThermoCore,
			zap.String(common.LoggerFieldThermoCategory, common.LoggerCategoryThermoAlert),
		).Error("Alert evaluation failed",
			zap.String("serial", pc.Device.Serial),
			zap.Error(err))
	}
	return nil
}

// Ingest runs one telemetry submission through the gate chain:
// credential check, rate limit, quota check, durable store, alert
// evaluation. The first failing gate aborts the attempt and its error
// is returned as-is for the transport layer to classify. The sample
// is only ever persisted after every admission gate has passed.
func (t *Thermo) Ingest(pc *PipelineContext) (*models.TelemetrySample, error) {
	if pc.Ctx == nil {
		pc.Ctx = context.Background()
	}

	gates := []Gate{
		t.authGate,
		t.rateGate,
		t.quotaGate,
		t.storeGate,
		t.alertGate,
	}
	for _, gate := range gates {
		if err := gate(pc); err != nil {
			return nil, err
		}
	}
	return pc.Stored, nil
}
