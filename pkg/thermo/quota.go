package thermo

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
	"thermotel/pkg/common"
	"thermotel/pkg/models"
)

// Row size constants for the cached usage figure. The per-ingest bump
// is a cheap estimate; RecomputeUsage replaces it with a measured one.
const (
	estimatedRowOverheadBytes = 300
	estimatedRowDefaultBytes  = 400
	measuredRowBaseBytes      = 200
	measuredRowIndexBytes     = 100
	usageSampleRows           = 100
)

func estimateSampleBytes(rawLen int) int64 {
	if rawLen <= 0 {
		return estimatedRowDefaultBytes
	}
	return estimatedRowOverheadBytes + int64(rawLen)
}

func (t *Thermo) getProfile(ownerID string) (*models.StorageProfile, error) {
	var profile models.StorageProfile
	err := t.Db.Conn.
		Where(models.StorageProfile{OwnerID: ownerID}).
		Attrs(models.StorageProfile{Plan: models.PlanFree}).
		FirstOrCreate(&profile).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return &profile, nil
}

func (t *Thermo) checkQuota(ownerID string) (*models.StorageProfile, error) {
	profile, err := t.getProfile(ownerID)
	if err != nil {
		return nil, err
	}
	if profile.CachedUsageBytes >= profile.Plan.LimitBytes() {
		return nil, ErrQuotaExceeded
	}
	return profile, nil
}

func (t *Thermo) addUsage(ownerID string, delta int64) error {
	err := t.Db.Conn.Model(&models.StorageProfile{}).
		Where("owner_id = ?", ownerID).
		UpdateColumn("cached_usage_bytes", gorm.Expr("cached_usage_bytes + ?", delta)).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// recomputeUsage measures the owner's stored telemetry and replaces the
// cached figure. Row size is the fixed base plus the average payload of
// the newest rows plus index overhead, per device.
func (t *Thermo) recomputeUsage(ownerID string) (int64, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameThermoCore,
		zap.String(common.LoggerFieldThermoCategory, common.LoggerCategoryThermoQuota),
	)

	if _, err := t.getProfile(ownerID); err != nil {
		return 0, err
	}

	var serials []string
	if err := t.Db.Conn.Model(&models.Device{}).
		Where("owner_id = ?", ownerID).
		Pluck("serial", &serials).Error; err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	var total int64
	for _, serial := range serials {
		var count int64
		if err := t.Db.Conn.Model(&models.TelemetrySample{}).
			Where("device_serial = ?", serial).
			Count(&count).Error; err != nil {
			return 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		if count == 0 {
			continue
		}

		var recent []models.TelemetrySample
		if err := t.Db.Conn.
			Select("raw_payload").
			Where("device_serial = ?", serial).
			Order("id desc").
			Limit(usageSampleRows).
			Find(&recent).Error; err != nil {
			return 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}

		payloadBytes := common.Reducer(recent, func(acc int64, s models.TelemetrySample) int64 {
			return acc + int64(len(s.RawPayload))
		}, int64(0))
		avgPayload := payloadBytes / int64(len(recent))

		total += count * (measuredRowBaseBytes + avgPayload + measuredRowIndexBytes)
	}

	now := t.now()
	err := t.Db.Conn.Model(&models.StorageProfile{}).
		Where("owner_id = ?", ownerID).
		UpdateColumns(map[string]any{
			"cached_usage_bytes": total,
			"usage_computed_at":  now,
		}).Error
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	logger.Info("Recomputed storage usage for owner",
		zap.String("owner_id", ownerID),
		zap.Int64("usage_bytes", total))

	return total, nil
}

// SweepUsage recomputes the cached usage of every storage profile,
// paced by the given limiter.
func (t *Thermo) SweepUsage(ctx context.Context, pace *rate.Limiter) error {
	logger := common.GetLoggerWith(
		common.LoggerNameThermoCore,
		zap.String(common.LoggerFieldThermoCategory, common.LoggerCategoryThermoQuota),
	)

	var owners []string
	if err := t.Db.Conn.Model(&models.StorageProfile{}).
		Pluck("owner_id", &owners).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	for _, ownerID := range owners {
		if pace != nil {
			if err := pace.Wait(ctx); err != nil {
				return err
			}
		}
		if _, err := t.Quota.RecomputeUsage(ownerID); err != nil {
			logger.Error("Usage recompute failed for owner",
				zap.String("owner_id", ownerID),
				zap.Error(err))
		}
	}
	return nil
}

type IQuotaImpl struct {
	thermo *Thermo
}

func (iq *IQuotaImpl) CheckQuota(ownerID string) (*models.StorageProfile, error) {
	return iq.thermo.checkQuota(ownerID)
}

func (iq *IQuotaImpl) AddUsage(ownerID string, delta int64) error {
	return iq.thermo.addUsage(ownerID, delta)
}

func (iq *IQuotaImpl) RecomputeUsage(ownerID string) (int64, error) {
	return iq.thermo.recomputeUsage(ownerID)
}

func (iq *IQuotaImpl) GetProfile(ownerID string) (*models.StorageProfile, error) {
	return iq.thermo.getProfile(ownerID)
}

func (t *Thermo) GetIQuota() IQuota {
	return &IQuotaImpl{thermo: t}
}
