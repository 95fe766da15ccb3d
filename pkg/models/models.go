package models

import "time"

type Mode string

const (
	ModeOff  Mode = "OFF"
	ModeHeat Mode = "HEAT"
	ModeCool Mode = "COOL"
	ModeAuto Mode = "AUTO"
)

type OutputState string

const (
	OutputOff    OutputState = "OFF"
	OutputHeatOn OutputState = "HEAT_ON"
	OutputCoolOn OutputState = "COOL_ON"
)

type AlertDirection string

const (
	DirectionHigh AlertDirection = "HIGH"
	DirectionLow  AlertDirection = "LOW"
)

type PlanTier string

const (
	PlanFree     PlanTier = "free"
	PlanStandard PlanTier = "standard"
	PlanPremium  PlanTier = "premium"
)

func (p PlanTier) LimitBytes() int64 {
	switch p {
	case PlanStandard:
		return 10 << 30
	case PlanPremium:
		return 1 << 40
	default:
		return 2 << 30
	}
}

type Device struct {
	ID         uint   `gorm:"primaryKey"`
	Serial     string `gorm:"uniqueIndex;size:64"`
	OwnerID    string `gorm:"index;size:64"`
	Name       string `gorm:"size:100"`
	CreatedAt  time.Time
	LastSeenAt *time.Time
	LastSeenIP string `gorm:"size:45"`

	Credentials []DeviceCredential `gorm:"foreignKey:DeviceSerial;references:Serial"`
	Samples     []TelemetrySample  `gorm:"foreignKey:DeviceSerial;references:Serial"`
}

type DeviceCredential struct {
	ID           uint   `gorm:"primaryKey"`
	DeviceSerial string `gorm:"index:idx_credential_active;size:64"`
	Salt         []byte
	SecretHash   []byte
	CreatedAt    time.Time
	ExpiresAt    *time.Time
	Active       bool `gorm:"index:idx_credential_active"`
}

type TelemetrySample struct {
	ID           uint   `gorm:"primaryKey"`
	DeviceSerial string `gorm:"index:idx_sample_receipt;size:64"`
	Mode         Mode   `gorm:"type:varchar(8);check:mode IN ('OFF','HEAT','COOL','AUTO')"`
	SetpointC    float64
	TempInsideC  float64
	TempOutsideC *float64
	HumidityPct  *float64
	HysteresisC  float64
	Output       OutputState `gorm:"type:varchar(8);check:output IN ('OFF','HEAT_ON','COOL_ON')"`
	DeviceTS     *time.Time
	ReceivedAt   time.Time `gorm:"index:idx_sample_receipt"`
	RawPayload   []byte
}

type StorageProfile struct {
	OwnerID          string   `gorm:"primaryKey;size:64"`
	Plan             PlanTier `gorm:"type:varchar(16);check:plan IN ('free','standard','premium')"`
	CachedUsageBytes int64
	UsageComputedAt  *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type AlertSettings struct {
	DeviceSerial    string `gorm:"primaryKey;size:64"`
	Enabled         bool
	HighEnabled     bool
	HighThresholdC  float64
	LowEnabled      bool
	LowThresholdC   float64
	CooldownMinutes int
	Contact         string `gorm:"size:254"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type AlertState struct {
	ID           uint           `gorm:"primaryKey"`
	DeviceSerial string         `gorm:"uniqueIndex:uniq_alert_state;size:64"`
	Direction    AlertDirection `gorm:"type:varchar(8);uniqueIndex:uniq_alert_state;check:direction IN ('HIGH','LOW')"`
	LastFiredAt  time.Time
}

type AlertEvent struct {
	ID           uint           `gorm:"primaryKey"`
	DeviceSerial string         `gorm:"index;size:64"`
	Direction    AlertDirection `gorm:"type:varchar(8)"`
	FiredAt      time.Time
	TempInsideC  float64
	ThresholdC   float64
	Message      string
}

// IssuedCredential is returned from registration and rotation. The
// plaintext secret appears here once and is never stored.
type IssuedCredential struct {
	Device       *Device
	CredentialID uint
	Secret       string
	ExpiresAt    time.Time
}

// AlertNotice is the snapshot handed to a notifier when an alert
// fires.
type AlertNotice struct {
	Device      *Device
	Direction   AlertDirection
	TempInsideC float64
	ThresholdC  float64
	Contact     string
	FiredAt     time.Time
	Message     string
}
