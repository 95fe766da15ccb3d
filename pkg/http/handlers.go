package http

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"thermotel/pkg/common"
	"thermotel/pkg/models"
	"thermotel/pkg/thermo"

	"github.com/gin-gonic/gin"
	"github.com/relvacode/iso8601"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
)

// statusForError maps pipeline errors to status codes and response
// bodies in one place. Bodies carry the error class only; validation
// detail is the one class allowed through verbatim.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, thermo.ErrAuthenticationFailed):
		return http.StatusUnauthorized, "authentication failed"
	case errors.Is(err, thermo.ErrRateLimited):
		return http.StatusTooManyRequests, "rate limit exceeded"
	case errors.Is(err, thermo.ErrQuotaExceeded):
		return http.StatusRequestEntityTooLarge, "storage quota exceeded"
	case errors.Is(err, thermo.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, thermo.ErrDeviceNotFound):
		return http.StatusNotFound, "device not found"
	case errors.Is(err, thermo.ErrCredentialNotFound):
		return http.StatusNotFound, "credential not found"
	case errors.Is(err, thermo.ErrSerialTaken):
		return http.StatusConflict, "serial already registered"
	case errors.Is(err, thermo.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "storage unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func respondError(c *gin.Context, err error) {
	status, message := statusForError(err)
	c.JSON(status, gin.H{"error": message})
}

type IngestRequest struct {
	Mode            string   `json:"mode"`
	SetpointC       float64  `json:"setpoint_c"`
	TempInsideC     float64  `json:"temp_inside_c"`
	TempOutsideC    *float64 `json:"temp_outside_c"`
	HumidityPercent *float64 `json:"humidity_percent"`
	HysteresisC     *float64 `json:"hysteresis_c"`
	Output          string   `json:"output"`
	DeviceIp        *string  `json:"device_ip"`
	Timestamp       string   `json:"timestamp"`
}

var ingestRequestSchema = z.Struct(z.Shape{
	"Mode":            z.String().OneOf([]string{"OFF", "HEAT", "COOL", "AUTO"}).Required(),
	"SetpointC":       z.Float64().GTE(5).LTE(35).Required(),
	"TempInsideC":     z.Float64().GTE(-40).LTE(85).Required(),
	"TempOutsideC":    z.Ptr(z.Float64().GTE(-90).LTE(60)),
	"HumidityPercent": z.Ptr(z.Float64().GTE(0).LTE(100)),
	"HysteresisC":     z.Ptr(z.Float64().GTE(0.1).LTE(5)),
	"Output":          z.String().OneOf([]string{"OFF", "HEAT_ON", "COOL_ON"}).Required(),
	"DeviceIp":        z.Ptr(z.String()),
	// Device clock, ISO-8601. Parsed after schema validation.
	"Timestamp": z.String().Required(),
})

func sampleFromRequest(req *IngestRequest) (*models.TelemetrySample, error) {
	deviceTS, err := iso8601.ParseString(req.Timestamp)
	if err != nil {
		return nil, err
	}

	hysteresis := thermo.DefaultHysteresisC
	if req.HysteresisC != nil {
		hysteresis = *req.HysteresisC
	}

	return &models.TelemetrySample{
		Mode:         models.Mode(req.Mode),
		SetpointC:    req.SetpointC,
		TempInsideC:  req.TempInsideC,
		TempOutsideC: req.TempOutsideC,
		HumidityPct:  req.HumidityPercent,
		HysteresisC:  hysteresis,
		Output:       models.OutputState(req.Output),
		DeviceTS:     &deviceTS,
	}, nil
}

func (rs *RestfulServer) PostIngest(c *gin.Context) {
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Device ")
	if !ok {
		respondError(c, thermo.ErrAuthenticationFailed)
		return
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable request body"})
		return
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))

	var req IngestRequest
	if err := ingestRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	sample, err := sampleFromRequest(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "timestamp is not ISO-8601"})
		return
	}
	sample.RawPayload = raw

	remoteIP := c.ClientIP()
	if req.DeviceIp != nil && *req.DeviceIp != "" {
		remoteIP = *req.DeviceIp
	}

	stored, err := rs.Core.Ingest(&thermo.PipelineContext{
		Ctx:        c.Request.Context(),
		Credential: token,
		RemoteIP:   remoteIP,
		Sample:     sample,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "id": stored.ID})
}

type SampleResponse struct {
	ID              uint       `json:"id"`
	Mode            string     `json:"mode"`
	SetpointC       float64    `json:"setpoint_c"`
	TempInsideC     float64    `json:"temp_inside_c"`
	TempOutsideC    *float64   `json:"temp_outside_c,omitempty"`
	HumidityPercent *float64   `json:"humidity_percent,omitempty"`
	HysteresisC     float64    `json:"hysteresis_c"`
	Output          string     `json:"output"`
	Timestamp       *time.Time `json:"timestamp,omitempty"`
	ReceivedAt      time.Time  `json:"received_at"`
}

func sampleResponseFrom(sample models.TelemetrySample) SampleResponse {
	return SampleResponse{
		ID:              sample.ID,
		Mode:            string(sample.Mode),
		SetpointC:       sample.SetpointC,
		TempInsideC:     sample.TempInsideC,
		TempOutsideC:    sample.TempOutsideC,
		HumidityPercent: sample.HumidityPct,
		HysteresisC:     sample.HysteresisC,
		Output:          string(sample.Output),
		Timestamp:       sample.DeviceTS,
		ReceivedAt:      sample.ReceivedAt,
	}
}

func (rs *RestfulServer) GetTelemetryRange(c *gin.Context) {
	serial := c.Param("serial")

	end := time.Now().UTC()
	if v := c.Query("end"); v != "" {
		parsed, err := iso8601.ParseString(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end is not ISO-8601"})
			return
		}
		end = parsed
	}

	start := end.Add(-24 * time.Hour)
	if v := c.Query("start"); v != "" {
		parsed, err := iso8601.ParseString(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start is not ISO-8601"})
			return
		}
		start = parsed
	}

	if !end.After(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must be after start"})
		return
	}

	samples, err := rs.Core.Telemetry.RangeSamples(serial, start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.Mapper(samples, sampleResponseFrom))
}

func (rs *RestfulServer) GetTelemetryRecent(c *gin.Context) {
	serial := c.Param("serial")

	limit := 0
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	samples, err := rs.Core.Telemetry.RecentSamples(serial, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.Mapper(samples, sampleResponseFrom))
}

type AlertResponse struct {
	ID          uint      `json:"id"`
	Direction   string    `json:"direction"`
	FiredAt     time.Time `json:"fired_at"`
	TempInsideC float64   `json:"temp_inside_c"`
	ThresholdC  float64   `json:"threshold_c"`
	Message     string    `json:"message"`
}

func alertResponseFrom(event models.AlertEvent) AlertResponse {
	return AlertResponse{
		ID:          event.ID,
		Direction:   string(event.Direction),
		FiredAt:     event.FiredAt,
		TempInsideC: event.TempInsideC,
		ThresholdC:  event.ThresholdC,
		Message:     event.Message,
	}
}

func (rs *RestfulServer) GetAlerts(c *gin.Context) {
	serial := c.Param("serial")

	events, err := rs.Core.Alert.GetDeviceAlerts(serial)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, common.Mapper(events, alertResponseFrom))
}

type AlertSettingsResponse struct {
	DeviceSerial    string  `json:"device_serial"`
	Enabled         bool    `json:"enabled"`
	HighEnabled     bool    `json:"high_enabled"`
	HighThresholdC  float64 `json:"high_threshold_c"`
	LowEnabled      bool    `json:"low_enabled"`
	LowThresholdC   float64 `json:"low_threshold_c"`
	CooldownMinutes int     `json:"cooldown_minutes"`
	Contact         string  `json:"contact"`
}

func alertSettingsResponseFrom(settings *models.AlertSettings) AlertSettingsResponse {
	return AlertSettingsResponse{
		DeviceSerial:    settings.DeviceSerial,
		Enabled:         settings.Enabled,
		HighEnabled:     settings.HighEnabled,
		HighThresholdC:  settings.HighThresholdC,
		LowEnabled:      settings.LowEnabled,
		LowThresholdC:   settings.LowThresholdC,
		CooldownMinutes: settings.CooldownMinutes,
		Contact:         settings.Contact,
	}
}

func (rs *RestfulServer) GetAlertSettings(c *gin.Context) {
	serial := c.Param("serial")

	settings, err := rs.Core.Settings.GetSettings(serial)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, alertSettingsResponseFrom(settings))
}

type AlertSettingsRequest struct {
	Enabled         bool    `json:"enabled"`
	HighEnabled     bool    `json:"high_enabled"`
	HighThresholdC  float64 `json:"high_threshold_c"`
	LowEnabled      bool    `json:"low_enabled"`
	LowThresholdC   float64 `json:"low_threshold_c"`
	CooldownMinutes int     `json:"cooldown_minutes"`
	Contact         string  `json:"contact"`
}

var alertSettingsRequestSchema = z.Struct(z.Shape{
	"Enabled":         z.Bool(),
	"HighEnabled":     z.Bool(),
	"HighThresholdC":  z.Float64().GTE(-40).LTE(85).Required(),
	"LowEnabled":      z.Bool(),
	"LowThresholdC":   z.Float64().GTE(-40).LTE(85).Required(),
	"CooldownMinutes": z.Int().GTE(1).LTE(1440).Required(),
	"Contact":         z.String(),
})

func (rs *RestfulServer) PutAlertSettings(c *gin.Context) {
	serial := c.Param("serial")

	var req AlertSettingsRequest
	if err := alertSettingsRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	settings := &models.AlertSettings{
		Enabled:         req.Enabled,
		HighEnabled:     req.HighEnabled,
		HighThresholdC:  req.HighThresholdC,
		LowEnabled:      req.LowEnabled,
		LowThresholdC:   req.LowThresholdC,
		CooldownMinutes: req.CooldownMinutes,
		Contact:         req.Contact,
	}
	if err := rs.Core.Settings.UpsertSettings(serial, settings); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

type RegisterRequest struct {
	OwnerId string `json:"owner_id"`
	Serial  string `json:"serial"`
	Name    string `json:"name"`
}

var registerRequestSchema = z.Struct(z.Shape{
	"OwnerId": z.String().Min(1).Max(64).Required(),
	"Serial":  z.String().Min(1).Max(64).Required(),
	"Name":    z.String().Max(100),
})

type CredentialResponse struct {
	Serial       string    `json:"serial"`
	CredentialID uint      `json:"credential_id"`
	Secret       string    `json:"secret"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func credentialResponseFrom(issued *models.IssuedCredential) CredentialResponse {
	return CredentialResponse{
		Serial:       issued.Device.Serial,
		CredentialID: issued.CredentialID,
		Secret:       issued.Secret,
		ExpiresAt:    issued.ExpiresAt,
	}
}

func (rs *RestfulServer) RegisterDevice(c *gin.Context) {
	if !rs.CheckRegisterLimiter(c) {
		respondError(c, thermo.ErrRateLimited)
		return
	}

	var req RegisterRequest
	if err := registerRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	issued, err := rs.Core.Credential.RegisterDevice(req.OwnerId, req.Serial, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, credentialResponseFrom(issued))
}

func (rs *RestfulServer) RotateCredential(c *gin.Context) {
	serial := c.Param("serial")

	if !rs.CheckRotateLimiter(c, serial) {
		respondError(c, thermo.ErrRateLimited)
		return
	}

	issued, err := rs.Core.Credential.RotateCredential(serial)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, credentialResponseFrom(issued))
}

func (rs *RestfulServer) RevokeCredential(c *gin.Context) {
	serial := c.Param("serial")

	credentialID, err := strconv.ParseUint(c.Param("credential_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "credential_id must be an integer"})
		return
	}

	if err := rs.Core.Credential.RevokeCredential(serial, uint(credentialID)); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

type StorageResponse struct {
	OwnerID    string     `json:"owner_id"`
	Plan       string     `json:"plan"`
	LimitBytes int64      `json:"limit_bytes"`
	UsedBytes  int64      `json:"used_bytes"`
	ComputedAt *time.Time `json:"computed_at,omitempty"`
}

func storageResponseFrom(profile *models.StorageProfile) StorageResponse {
	return StorageResponse{
		OwnerID:    profile.OwnerID,
		Plan:       string(profile.Plan),
		LimitBytes: profile.Plan.LimitBytes(),
		UsedBytes:  profile.CachedUsageBytes,
		ComputedAt: profile.UsageComputedAt,
	}
}

func (rs *RestfulServer) GetStorageProfile(c *gin.Context) {
	ownerID := c.Param("owner_id")

	profile, err := rs.Core.Quota.GetProfile(ownerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, storageResponseFrom(profile))
}

func (rs *RestfulServer) RecomputeStorage(c *gin.Context) {
	ownerID := c.Param("owner_id")

	total, err := rs.Core.Quota.RecomputeUsage(ownerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"owner_id": ownerID, "used_bytes": total})
}

type LimitsRequest struct {
	Capacity   int `json:"capacity"`
	WindowSecs int `json:"window_secs"`
}

var limitsRequestSchema = z.Struct(z.Shape{
	"Capacity":   z.Int().GTE(1).Required(),
	"WindowSecs": z.Int().GTE(1).Required(),
})

func (rs *RestfulServer) PutLimits(c *gin.Context) {
	serial := c.Param("serial")

	var req LimitsRequest
	if err := limitsRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	rs.SetIngestWindow(serial, req.Capacity, time.Duration(req.WindowSecs)*time.Second)

	c.Status(http.StatusOK)
}

func (rs *RestfulServer) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
