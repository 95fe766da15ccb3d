package thermo

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"thermotel/pkg/common"
	"thermotel/pkg/models"
)

const (
	thresholdMinC      = -40.0
	thresholdMaxC      = 85.0
	cooldownMinMinutes = 1
	cooldownMaxMinutes = 1440
)

func defaultAlertSettings(serial string) models.AlertSettings {
	return models.AlertSettings{
		DeviceSerial:    serial,
		Enabled:         false,
		HighEnabled:     false,
		HighThresholdC:  30.0,
		LowEnabled:      false,
		LowThresholdC:   10.0,
		CooldownMinutes: 30,
	}
}

func validateAlertSettings(input *models.AlertSettings) error {
	if input.HighThresholdC < thresholdMinC || input.HighThresholdC > thresholdMaxC {
		return fmt.Errorf("%w: high threshold out of range", ErrValidation)
	}
	if input.LowThresholdC < thresholdMinC || input.LowThresholdC > thresholdMaxC {
		return fmt.Errorf("%w: low threshold out of range", ErrValidation)
	}
	if input.HighEnabled && input.LowEnabled && input.HighThresholdC <= input.LowThresholdC {
		return fmt.Errorf("%w: high threshold must be above low threshold", ErrValidation)
	}
	if input.CooldownMinutes < cooldownMinMinutes || input.CooldownMinutes > cooldownMaxMinutes {
		return fmt.Errorf("%w: cooldown out of range", ErrValidation)
	}
	return nil
}

func (t *Thermo) upsertSettings(serial string, input *models.AlertSettings) error {
	logger := common.GetLoggerWith(
		common.LoggerNameThermoCore,
		zap.String(common.LoggerFieldThermoCategory, common.LoggerCategoryThermoSettings),
	)

	if err := validateAlertSettings(input); err != nil {
		return err
	}

	var device models.Device
	if err := t.Db.Conn.First(&device, "serial = ?", serial).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDeviceNotFound
		}
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	settings := models.AlertSettings{
		DeviceSerial:    serial,
		Enabled:         input.Enabled,
		HighEnabled:     input.HighEnabled,
		HighThresholdC:  input.HighThresholdC,
		LowEnabled:      input.LowEnabled,
		LowThresholdC:   input.LowThresholdC,
		CooldownMinutes: input.CooldownMinutes,
		Contact:         input.Contact,
	}

	logger.Info("Received alert settings for device", zap.Reflect("settings", settings))

	err := t.Db.Conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_serial"}},
		UpdateAll: true,
	}).Create(&settings).Error

	if err == nil {
		logger.Info("Upserted alert settings for device", zap.Reflect("settings", settings))
		return nil
	}

	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}

// getSettings returns the stored settings, creating a disabled default
// row the first time a device's settings are asked for.
func (t *Thermo) getSettings(serial string) (*models.AlertSettings, error) {
	var device models.Device
	if err := t.Db.Conn.First(&device, "serial = ?", serial).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	settings := defaultAlertSettings(serial)
	err := t.Db.Conn.
		Where(models.AlertSettings{DeviceSerial: serial}).
		Attrs(settings).
		FirstOrCreate(&settings).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return &settings, nil
}

type ISettingsImpl struct {
	thermo *Thermo
}

func (is *ISettingsImpl) UpsertSettings(serial string, input *models.AlertSettings) error {
	return is.thermo.upsertSettings(serial, input)
}

func (is *ISettingsImpl) GetSettings(serial string) (*models.AlertSettings, error) {
	return is.thermo.getSettings(serial)
}

func (t *Thermo) GetISettings() ISettings {
	return &ISettingsImpl{thermo: t}
}
