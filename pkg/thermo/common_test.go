package thermo

import (
	"bufio"
	"encoding/json"
	"io"
	"testing"

	"go.uber.org/mock/gomock"
	"thermotel/pkg/db"
	"thermotel/pkg/thermo/mocks"
)

// UseMocks selects which services the harness swaps out. The zero
// value wires every real implementation and leaves Notifier nil.
type UseMocks struct {
	Credential bool
	Telemetry  bool
	Quota      bool
	Alert      bool
	Settings   bool
	Notifier   bool
}

func GetMockThermoWithMemorySqliteDialector(t *testing.T, use UseMocks) (
	*gomock.Controller,
	*Thermo,
	*mocks.MockICredential,
	*mocks.MockITelemetry,
	*mocks.MockIQuota,
	*mocks.MockIAlert,
	*mocks.MockISettings,
	*mocks.MockNotifier,
) {
	ctrl := gomock.NewController(t)

	mockCredential := mocks.NewMockICredential(ctrl)
	mockTelemetry := mocks.NewMockITelemetry(ctrl)
	mockQuota := mocks.NewMockIQuota(ctrl)
	mockAlert := mocks.NewMockIAlert(ctrl)
	mockSettings := mocks.NewMockISettings(ctrl)
	mockNotifier := mocks.NewMockNotifier(ctrl)
	dialector := db.UseMemorySqliteDialector()
	dbInstance := db.GetInstance(dialector) // ensure migrations
	thermoInstance := (&Thermo{Db: *dbInstance})

	credentialService := thermoInstance.GetICredential()
	if use.Credential {
		credentialService = mockCredential
	}

	telemetryService := thermoInstance.GetITelemetry()
	if use.Telemetry {
		telemetryService = mockTelemetry
	}

	quotaService := thermoInstance.GetIQuota()
	if use.Quota {
		quotaService = mockQuota
	}

	alertService := thermoInstance.GetIAlert()
	if use.Alert {
		alertService = mockAlert
	}

	settingsService := thermoInstance.GetISettings()
	if use.Settings {
		settingsService = mockSettings
	}

	var notifierService Notifier
	if use.Notifier {
		notifierService = mockNotifier
	}

	thermoInstance.WithServices(ServiceOpts{
		Credential: credentialService,
		Telemetry:  telemetryService,
		Quota:      quotaService,
		Alert:      alertService,
		Settings:   settingsService,
		Notifier:   notifierService,
	})

	return ctrl, thermoInstance, mockCredential, mockTelemetry, mockQuota, mockAlert, mockSettings, mockNotifier
}

func ParseLogs(r io.Reader) []any {
	scanner := bufio.NewScanner(r)
	var logs []any

	for scanner.Scan() {
		line := scanner.Text()
		var j any
		if err := json.Unmarshal([]byte(line), &j); err == nil {
			logs = append(logs, j)
		}
	}
	return logs
}
