package thermo

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"thermotel/pkg/common"
	"thermotel/pkg/models"
)

// keyedMutex hands out one mutex per key so read-modify-write on a
// device's alert state stays atomic per (device, direction).
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	lock, exists := k.locks[key]
	if !exists {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// evaluateSample checks the sample against the device's alert settings.
// High and low directions are evaluated independently, each with its
// own cooldown clock.
func (t *Thermo) evaluateSample(serial string, sample *models.TelemetrySample) error {
	var settings models.AlertSettings
	if err := t.Db.Conn.First(&settings, "device_serial = ?", serial).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// no settings row, nothing to evaluate
			return nil
		}
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if !settings.Enabled {
		return nil
	}

	if settings.HighEnabled && sample.TempInsideC >= settings.HighThresholdC {
		if err := t.fireAlert(serial, models.DirectionHigh, &settings, sample); err != nil {
			return err
		}
	}

	if settings.LowEnabled && sample.TempInsideC <= settings.LowThresholdC {
		if err := t.fireAlert(serial, models.DirectionLow, &settings, sample); err != nil {
			return err
		}
	}

	return nil
}

// fireAlert records the breach and dispatches a notification unless the
// direction is still cooling down. Rearming is implicit: once the
// cooldown has elapsed the next breach fires again.
func (t *Thermo) fireAlert(serial string, direction models.AlertDirection, settings *models.AlertSettings, sample *models.TelemetrySample) error {
	logger := common.GetLoggerWith(
		common.LoggerNameThermoCore,
		zap.String(common.LoggerFieldThermoCategory, common.LoggerCategoryThermoAlert),
	)

	unlock := t.alertLocks.Lock(serial + ":" + string(direction))
	defer unlock()

	now := t.now()
	cooldown := time.Duration(settings.CooldownMinutes) * time.Minute

	var state models.AlertState
	err := t.Db.Conn.First(&state, "device_serial = ? AND direction = ?", serial, direction).Error
	if err == nil && now.Sub(state.LastFiredAt) < cooldown {
		logger.Debug("Alert absorbed by cooldown",
			zap.String("serial", serial),
			zap.String("direction", string(direction)))
		return nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	threshold := settings.HighThresholdC
	message := fmt.Sprintf("Temperature %.2f exceeded high threshold %.2f", sample.TempInsideC, threshold)
	if direction == models.DirectionLow {
		threshold = settings.LowThresholdC
		message = fmt.Sprintf("Temperature %.2f below low threshold %.2f", sample.TempInsideC, threshold)
	}

	state = models.AlertState{DeviceSerial: serial, Direction: direction, LastFiredAt: now}
	err = t.Db.Conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_serial"}, {Name: "direction"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_fired_at"}),
	}).Create(&state).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	event := models.AlertEvent{
		DeviceSerial: serial,
		Direction:    direction,
		FiredAt:      now,
		TempInsideC:  sample.TempInsideC,
		ThresholdC:   threshold,
		Message:      message,
	}

	logger.Info("Alert found", zap.Reflect("alert", event))

	if err := t.Db.Conn.Create(&event).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	logger.Info("Alert saved", zap.Reflect("alert", event))

	var device models.Device
	if err := t.Db.Conn.First(&device, "serial = ?", serial).Error; err != nil {
		logger.Error("Device lookup failed for notification",
			zap.String("serial", serial),
			zap.Error(err))
		return nil
	}

	t.dispatchNotice(&models.AlertNotice{
		Device:      &device,
		Direction:   direction,
		TempInsideC: sample.TempInsideC,
		ThresholdC:  threshold,
		Contact:     settings.Contact,
		FiredAt:     now,
		Message:     message,
	})

	return nil
}

func (t *Thermo) getDeviceAlerts(serial string) ([]models.AlertEvent, error) {
	var events []models.AlertEvent
	err := t.Db.Conn.
		Where("device_serial = ?", serial).
		Order("fired_at desc").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return events, nil
}

type IAlertImpl struct {
	thermo *Thermo
}

func (ia *IAlertImpl) EvaluateSample(serial string, sample *models.TelemetrySample) error {
	return ia.thermo.evaluateSample(serial, sample)
}

func (ia *IAlertImpl) GetDeviceAlerts(serial string) ([]models.AlertEvent, error) {
	return ia.thermo.getDeviceAlerts(serial)
}

func (t *Thermo) GetIAlert() IAlert {
	return &IAlertImpl{thermo: t}
}
