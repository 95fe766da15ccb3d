package common

const (
	EnvKeyGoEnv string = "GO_ENV"

	EnvKeyRunIntegrationTests string = "RUN_INTEGRATION_TESTS"

	EnvKeyThermoDBType string = "THERMO_DB_TYPE"
	EnvKeyThermoDbPath string = "THERMO_DB_PATH"
	EnvKeyThermoDbDSN  string = "THERMO_DB_DSN"

	EnvKeyThermoHttpHostPort string = "THERMO_HTTP_HOST_PORT"

	EnvKeyThermoIngestWindowSecs string = "THERMO_INGEST_WINDOW_SECS"
	EnvKeyThermoIngestWindowCap  string = "THERMO_INGEST_WINDOW_CAP"

	EnvKeyThermoRegisterWindowCap string = "THERMO_REGISTER_WINDOW_CAP"

	EnvKeyThermoCounterBackend string = "THERMO_COUNTER_BACKEND"
	EnvKeyThermoRedisAddr      string = "THERMO_REDIS_ADDR"
	EnvKeyThermoRedisPassword  string = "THERMO_REDIS_PASSWORD"
	EnvKeyThermoRedisDB        string = "THERMO_REDIS_DB"

	EnvKeyThermoNotifier     string = "THERMO_NOTIFIER"
	EnvKeyThermoSmtpAddr     string = "THERMO_SMTP_ADDR"
	EnvKeyThermoSmtpFrom     string = "THERMO_SMTP_FROM"
	EnvKeyThermoSmtpUsername string = "THERMO_SMTP_USERNAME"
	EnvKeyThermoSmtpPassword string = "THERMO_SMTP_PASSWORD"

	EnvKeyThermoMqttBroker      string = "THERMO_MQTT_BROKER"
	EnvKeyThermoMqttClientID    string = "THERMO_MQTT_CLIENT_ID"
	EnvKeyThermoMqttUsername    string = "THERMO_MQTT_USERNAME"
	EnvKeyThermoMqttPassword    string = "THERMO_MQTT_PASSWORD"
	EnvKeyThermoMqttTopicPrefix string = "THERMO_MQTT_TOPIC_PREFIX"

	EnvKeyThermoSweepInterval string = "THERMO_USAGE_SWEEP_INTERVAL"
	EnvKeyThermoSweepPerSec   string = "THERMO_USAGE_SWEEP_PER_SEC"

	LoggerNameThermoCore    string = "thermo_core"
	LoggerNameRestfulServer string = "restful_server"
	LoggerNameUsageSweeper  string = "usage_sweeper"

	LoggerFieldThermoCategory      string = "category"
	LoggerCategoryThermoCredential string = "credential"
	LoggerCategoryThermoLimiter    string = "limiter"
	LoggerCategoryThermoQuota      string = "quota"
	LoggerCategoryThermoTelemetry  string = "telemetry"
	LoggerCategoryThermoAlert      string = "alert"
	LoggerCategoryThermoNotifier   string = "notifier"
	LoggerCategoryThermoSettings   string = "settings"
)
