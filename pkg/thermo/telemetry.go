package thermo

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"thermotel/pkg/common"
	"thermotel/pkg/models"
)

// DefaultHysteresisC fills in for payloads that omit hysteresis_c.
const DefaultHysteresisC = 0.5

const (
	rangeQueryMaxRows  = 10000
	recentDefaultLimit = 20
	recentMaxLimit     = 1000
)

// appendSample persists the sample verbatim. Receipt time is assigned
// here, at the moment of the durable write, never earlier.
func (t *Thermo) appendSample(serial string, input *models.TelemetrySample) (*models.TelemetrySample, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameThermoCore,
		zap.String(common.LoggerFieldThermoCategory, common.LoggerCategoryThermoTelemetry),
	)

	sample := models.TelemetrySample{
		DeviceSerial: serial,
		Mode:         input.Mode,
		SetpointC:    input.SetpointC,
		TempInsideC:  input.TempInsideC,
		TempOutsideC: input.TempOutsideC,
		HumidityPct:  input.HumidityPct,
		HysteresisC:  input.HysteresisC,
		Output:       input.Output,
		DeviceTS:     input.DeviceTS,
		ReceivedAt:   t.now().UTC(),
		RawPayload:   input.RawPayload,
	}

	if err := t.Db.Conn.Create(&sample).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	logger.Info("Stored telemetry sample for device",
		zap.String("serial", serial),
		zap.Uint("sample_id", sample.ID),
		zap.Float64("temp_inside_c", sample.TempInsideC))

	return &sample, nil
}

// rangeSamples returns samples with receipt time in [start, end),
// oldest first, capped to rangeQueryMaxRows.
func (t *Thermo) rangeSamples(serial string, start, end time.Time) ([]models.TelemetrySample, error) {
	var samples []models.TelemetrySample
	err := t.Db.Conn.
		Where("device_serial = ? AND received_at >= ? AND received_at < ?", serial, start, end).
		Order("received_at asc, id asc").
		Limit(rangeQueryMaxRows).
		Find(&samples).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return samples, nil
}

// recentSamples returns the newest samples first. A non-positive limit
// falls back to the default and oversized limits are clamped.
func (t *Thermo) recentSamples(serial string, limit int) ([]models.TelemetrySample, error) {
	if limit <= 0 {
		limit = recentDefaultLimit
	}
	if limit > recentMaxLimit {
		limit = recentMaxLimit
	}

	var samples []models.TelemetrySample
	err := t.Db.Conn.
		Where("device_serial = ?", serial).
		Order("received_at desc, id desc").
		Limit(limit).
		Find(&samples).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return samples, nil
}

type ITelemetryImpl struct {
	thermo *Thermo
}

func (it *ITelemetryImpl) AppendSample(serial string, input *models.TelemetrySample) (*models.TelemetrySample, error) {
	return it.thermo.appendSample(serial, input)
}

func (it *ITelemetryImpl) RangeSamples(serial string, start, end time.Time) ([]models.TelemetrySample, error) {
	return it.thermo.rangeSamples(serial, start, end)
}

func (it *ITelemetryImpl) RecentSamples(serial string, limit int) ([]models.TelemetrySample, error) {
	return it.thermo.recentSamples(serial, limit)
}

func (t *Thermo) GetITelemetry() ITelemetry {
	return &ITelemetryImpl{thermo: t}
}
