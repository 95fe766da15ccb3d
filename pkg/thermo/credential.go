package thermo

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"thermotel/pkg/common"
	"thermotel/pkg/models"
)

const credentialTTL = 365 * 24 * time.Hour

// decoy digest compared against whenever a serial has no usable
// credential, so unknown and known serials do the same hashing work
var (
	decoySalt   = newSalt()
	decoyDigest = hashSecret(decoySalt, newSecret())
)

func newSalt() []byte {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		panic(err)
	}
	return salt
}

func newSecret() string {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

func hashSecret(salt []byte, secret string) []byte {
	h := sha256.New()
	h.Write(salt)
	h.Write([]byte(secret))
	return h.Sum(nil)
}

func compareDecoy(secret string) {
	subtle.ConstantTimeCompare(hashSecret(decoySalt, secret), decoyDigest)
}

func (t *Thermo) verifyCredential(presented string) (*models.Device, error) {
	serial, secret, found := strings.Cut(presented, ":")
	serial = strings.TrimSpace(serial)
	secret = strings.TrimSpace(secret)
	if !found || serial == "" || secret == "" {
		return nil, ErrAuthenticationFailed
	}

	var cred models.DeviceCredential
	err := t.Db.Conn.
		Where("device_serial = ? AND active = ?", serial, true).
		Order("id desc").
		First(&cred).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		compareDecoy(secret)
		return nil, ErrAuthenticationFailed
	}

	if cred.ExpiresAt != nil && t.now().After(*cred.ExpiresAt) {
		compareDecoy(secret)
		return nil, ErrAuthenticationFailed
	}

	if subtle.ConstantTimeCompare(hashSecret(cred.Salt, secret), cred.SecretHash) != 1 {
		return nil, ErrAuthenticationFailed
	}

	var device models.Device
	if err := t.Db.Conn.First(&device, "serial = ?", serial).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuthenticationFailed
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	return &device, nil
}

func (t *Thermo) registerDevice(ownerID, serial, name string) (*models.IssuedCredential, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameThermoCore,
		zap.String(common.LoggerFieldThermoCategory, common.LoggerCategoryThermoCredential),
	)

	var device models.Device
	err := t.Db.Conn.First(&device, "serial = ?", serial).Error
	switch {
	case err == nil:
		if device.OwnerID != ownerID {
			return nil, ErrSerialTaken
		}
		if name != "" && name != device.Name {
			if err := t.Db.Conn.Model(&device).Update("name", name).Error; err != nil {
				return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
			}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		device = models.Device{Serial: serial, OwnerID: ownerID, Name: name}
		if err := t.Db.Conn.Create(&device).Error; err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	issued, err := t.issueCredential(&device)
	if err != nil {
		return nil, err
	}

	logger.Info("Registered device",
		zap.String("serial", serial),
		zap.String("owner_id", ownerID),
		zap.Uint("credential_id", issued.CredentialID))

	return issued, nil
}

// issueCredential deactivates every credential the device holds and
// mints a fresh one in the same transaction.
func (t *Thermo) issueCredential(device *models.Device) (*models.IssuedCredential, error) {
	secret := newSecret()
	salt := newSalt()
	expiresAt := t.now().Add(credentialTTL)

	cred := models.DeviceCredential{
		DeviceSerial: device.Serial,
		Salt:         salt,
		SecretHash:   hashSecret(salt, secret),
		ExpiresAt:    &expiresAt,
		Active:       true,
	}

	err := t.Db.Conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.DeviceCredential{}).
			Where("device_serial = ? AND active = ?", device.Serial, true).
			Update("active", false).Error; err != nil {
			return err
		}
		return tx.Create(&cred).Error
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	return &models.IssuedCredential{
		Device:       device,
		CredentialID: cred.ID,
		Secret:       secret,
		ExpiresAt:    expiresAt,
	}, nil
}

func (t *Thermo) rotateCredential(serial string) (*models.IssuedCredential, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameThermoCore,
		zap.String(common.LoggerFieldThermoCategory, common.LoggerCategoryThermoCredential),
	)

	var device models.Device
	if err := t.Db.Conn.First(&device, "serial = ?", serial).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	issued, err := t.issueCredential(&device)
	if err != nil {
		return nil, err
	}

	logger.Info("Rotated credential for device",
		zap.String("serial", serial),
		zap.Uint("credential_id", issued.CredentialID))

	return issued, nil
}

func (t *Thermo) revokeCredential(serial string, credentialID uint) error {
	logger := common.GetLoggerWith(
		common.LoggerNameThermoCore,
		zap.String(common.LoggerFieldThermoCategory, common.LoggerCategoryThermoCredential),
	)

	result := t.Db.Conn.Model(&models.DeviceCredential{}).
		Where("id = ? AND device_serial = ?", credentialID, serial).
		Update("active", false)
	if result.Error != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCredentialNotFound
	}

	logger.Info("Revoked credential for device",
		zap.String("serial", serial),
		zap.Uint("credential_id", credentialID))

	return nil
}

type ICredentialImpl struct {
	thermo *Thermo
}

func (ic *ICredentialImpl) RegisterDevice(ownerID, serial, name string) (*models.IssuedCredential, error) {
	return ic.thermo.registerDevice(ownerID, serial, name)
}

func (ic *ICredentialImpl) RotateCredential(serial string) (*models.IssuedCredential, error) {
	return ic.thermo.rotateCredential(serial)
}

func (ic *ICredentialImpl) RevokeCredential(serial string, credentialID uint) error {
	return ic.thermo.revokeCredential(serial, credentialID)
}

func (ic *ICredentialImpl) VerifyCredential(presented string) (*models.Device, error) {
	return ic.thermo.verifyCredential(presented)
}

func (t *Thermo) GetICredential() ICredential {
	return &ICredentialImpl{thermo: t}
}
