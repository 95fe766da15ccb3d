package thermo

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zapcore"

	"thermotel/pkg/common"
	"thermotel/pkg/models"
	_ "thermotel/pkg/testing"
)

func TestIngestHappyPathEndToEnd(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, thermoObj, _, _, _, _, _, _ := GetMockThermoWithMemorySqliteDialector(t, UseMocks{})
	defer ctrl.Finish()

	base := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)
	thermoObj.Clock = func() time.Time { return base }
	thermoObj.IngestLimiter = NewWindowLimiterStore(NewMemoryWindowCounter(), "ingest", WindowConfig{Capacity: 60, Window: time.Minute})

	serial := uuid.NewString()
	ownerID := uuid.NewString()

	issued, err := thermoObj.Credential.RegisterDevice(ownerID, serial, "hall")
	assert.NoError(t, err)

	raw := bytes.Repeat([]byte("p"), 100)
	stored, err := thermoObj.Ingest(&PipelineContext{
		Credential: serial + ":" + issued.Secret,
		RemoteIP:   "203.0.113.9",
		Sample: &models.TelemetrySample{
			Mode:        models.ModeHeat,
			SetpointC:   21,
			TempInsideC: 19,
			HysteresisC: 0.5,
			Output:      models.OutputHeatOn,
			RawPayload:  raw,
		},
	})
	assert.NoError(t, err)
	assert.NotZero(t, stored.ID)
	assert.True(t, stored.ReceivedAt.Equal(base))

	samples, err := thermoObj.Telemetry.RecentSamples(serial, 1)
	assert.NoError(t, err)
	assert.Len(t, samples, 1)

	// Usage bump is the overhead estimate plus the payload length.
	profile, err := thermoObj.Quota.GetProfile(ownerID)
	assert.NoError(t, err)
	assert.EqualValues(t, 400, profile.CachedUsageBytes)

	var device models.Device
	err = thermoObj.Db.Conn.First(&device, "serial = ?", serial).Error
	assert.NoError(t, err)
	assert.NotNil(t, device.LastSeenAt)
	assert.True(t, device.LastSeenAt.Equal(base))
	assert.Equal(t, "203.0.113.9", device.LastSeenIP)
}

func TestIngestAuthFailureShortCircuits(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, thermoObj, _, _, _, _, _, _ := GetMockThermoWithMemorySqliteDialector(t, UseMocks{Telemetry: true, Quota: true, Alert: true})
	defer ctrl.Finish()

	// No expectations on the mocks: a failed credential check must stop
	// the pipeline before any of them is touched.
	stored, err := thermoObj.Ingest(&PipelineContext{
		Ctx:        context.Background(),
		Credential: uuid.NewString() + ":bogus",
		Sample:     &models.TelemetrySample{TempInsideC: 20},
	})
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.Nil(t, stored)
}

func TestIngestRateLimitedStopsBeforeQuota(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, thermoObj, _, _, _, _, _, _ := GetMockThermoWithMemorySqliteDialector(t, UseMocks{Telemetry: true, Quota: true, Alert: true})
	defer ctrl.Finish()

	thermoObj.IngestLimiter = NewWindowLimiterStore(NewMemoryWindowCounter(), "ingest", WindowConfig{Capacity: 0, Window: time.Minute})

	serial := uuid.NewString()
	issued, err := thermoObj.Credential.RegisterDevice(uuid.NewString(), serial, "")
	assert.NoError(t, err)

	_, err = thermoObj.Ingest(&PipelineContext{
		Ctx:        context.Background(),
		Credential: serial + ":" + issued.Secret,
		Sample:     &models.TelemetrySample{TempInsideC: 20},
	})
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestIngestQuotaExceededNothingStored(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, thermoObj, _, _, _, _, _, _ := GetMockThermoWithMemorySqliteDialector(t, UseMocks{})
	defer ctrl.Finish()

	serial := uuid.NewString()
	ownerID := uuid.NewString()
	issued, err := thermoObj.Credential.RegisterDevice(ownerID, serial, "")
	assert.NoError(t, err)

	_, err = thermoObj.Quota.GetProfile(ownerID)
	assert.NoError(t, err)
	err = thermoObj.Db.Conn.Model(&models.StorageProfile{}).
		Where("owner_id = ?", ownerID).
		UpdateColumn("cached_usage_bytes", models.PlanFree.LimitBytes()).Error
	assert.NoError(t, err)

	_, err = thermoObj.Ingest(&PipelineContext{
		Credential: serial + ":" + issued.Secret,
		Sample: &models.TelemetrySample{
			Mode:        models.ModeOff,
			SetpointC:   20,
			TempInsideC: 20,
			HysteresisC: 0.5,
			Output:      models.OutputOff,
		},
	})
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	// Rejected before the store: no sample row, no device touch.
	samples, err := thermoObj.Telemetry.RecentSamples(serial, 10)
	assert.NoError(t, err)
	assert.Empty(t, samples)

	var device models.Device
	err = thermoObj.Db.Conn.First(&device, "serial = ?", serial).Error
	assert.NoError(t, err)
	assert.Nil(t, device.LastSeenAt)
}

func TestIngestGateOrder(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, thermoObj, mockCredential, mockTelemetry, mockQuota, mockAlert, _, _ := GetMockThermoWithMemorySqliteDialector(t, UseMocks{Credential: true, Telemetry: true, Quota: true, Alert: true})
	defer ctrl.Finish()

	serial := uuid.NewString()
	ownerID := uuid.NewString()
	device := &models.Device{Serial: serial, OwnerID: ownerID}
	sample := &models.TelemetrySample{TempInsideC: 22}
	storedSample := &models.TelemetrySample{DeviceSerial: serial, TempInsideC: 22, RawPayload: []byte("0123456789")}

	var calls []string

	mockCredential.EXPECT().VerifyCredential(serial+":sec").DoAndReturn(func(string) (*models.Device, error) {
		calls = append(calls, "verify")
		return device, nil
	})
	mockQuota.EXPECT().CheckQuota(ownerID).DoAndReturn(func(string) (*models.StorageProfile, error) {
		calls = append(calls, "quota")
		return &models.StorageProfile{OwnerID: ownerID, Plan: models.PlanFree}, nil
	})
	mockTelemetry.EXPECT().AppendSample(serial, sample).DoAndReturn(func(string, *models.TelemetrySample) (*models.TelemetrySample, error) {
		calls = append(calls, "store")
		return storedSample, nil
	})
	mockQuota.EXPECT().AddUsage(ownerID, int64(310)).DoAndReturn(func(string, int64) error {
		calls = append(calls, "usage")
		return nil
	})
	mockAlert.EXPECT().EvaluateSample(serial, storedSample).DoAndReturn(func(string, *models.TelemetrySample) error {
		calls = append(calls, "alert")
		return nil
	})

	stored, err := thermoObj.Ingest(&PipelineContext{
		Ctx:        context.Background(),
		Credential: serial + ":sec",
		Sample:     sample,
	})
	assert.NoError(t, err)
	assert.Equal(t, storedSample, stored)
	assert.Equal(t, []string{"verify", "quota", "store", "usage", "alert"}, calls)
}

func TestIngestStoreFailureSurfaces(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, thermoObj, _, mockTelemetry, mockQuota, _, _, _ := GetMockThermoWithMemorySqliteDialector(t, UseMocks{Telemetry: true, Quota: true, Alert: true})
	defer ctrl.Finish()

	serial := uuid.NewString()
	ownerID := uuid.NewString()
	issued, err := thermoObj.Credential.RegisterDevice(ownerID, serial, "")
	assert.NoError(t, err)

	mockQuota.EXPECT().CheckQuota(ownerID).Return(&models.StorageProfile{OwnerID: ownerID, Plan: models.PlanFree}, nil)
	mockTelemetry.EXPECT().AppendSample(serial, gomock.Any()).Return(nil, ErrStorageUnavailable)

	// AddUsage and EvaluateSample must not run after a failed store.
	stored, err := thermoObj.Ingest(&PipelineContext{
		Ctx:        context.Background(),
		Credential: serial + ":" + issued.Secret,
		Sample:     &models.TelemetrySample{TempInsideC: 20},
	})
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Nil(t, stored)
}

func TestIngestAlertFailureDoesNotFailIngest(t *testing.T) {
	var buf = &bytes.Buffer{}
	common.SetTestCaptureLogger(buf, zapcore.InfoLevel)

	ctrl, thermoObj, _, _, _, mockAlert, _, _ := GetMockThermoWithMemorySqliteDialector(t, UseMocks{Alert: true})
	defer ctrl.Finish()

	serial := uuid.NewString()
	issued, err := thermoObj.Credential.RegisterDevice(uuid.NewString(), serial, "")
	assert.NoError(t, err)

	mockAlert.EXPECT().EvaluateSample(serial, gomock.Any()).Return(ErrStorageUnavailable)

	stored, err := thermoObj.Ingest(&PipelineContext{
		Credential: serial + ":" + issued.Secret,
		Sample: &models.TelemetrySample{
			Mode:        models.ModeAuto,
			SetpointC:   22,
			TempInsideC: 21,
			HysteresisC: 0.5,
			Output:      models.OutputOff,
		},
	})
	assert.NoError(t, err)
	assert.NotZero(t, stored.ID)

	logs := ParseLogs(buf)

	{
		found := false
		for _, log := range logs {
			lobj := log.(map[string]any)
			if lobj["category"] == "alert" &&
				lobj["logger"] == "thermo_core" &&
				lobj["msg"] == "Alert evaluation failed" &&
				lobj["serial"] == serial {
				found = true
			}
		}
		assert.True(t, found)
	}
}
