package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"thermotel/pkg/thermo"
)

type RestfulServer struct {
	Server *gin.Engine
	Core   *thermo.Thermo

	// RegisterLimiter throttles registration attempts per client IP.
	RegisterLimiter *thermo.WindowLimiterStore
}

func (rs *RestfulServer) CheckRegisterLimiter(c *gin.Context) bool {
	if rs.RegisterLimiter == nil {
		return true
	}
	return rs.RegisterLimiter.AllowOrFailOpen(c.Request.Context(), c.ClientIP())
}

func (rs *RestfulServer) CheckRotateLimiter(c *gin.Context, serial string) bool {
	if rs.Core.RotateLimiter == nil {
		return true
	}
	return rs.Core.RotateLimiter.AllowOrFailOpen(c.Request.Context(), serial)
}

func (rs *RestfulServer) SetIngestWindow(serial string, capacity int, window time.Duration) {
	if rs.Core.IngestLimiter == nil {
		return
	}
	rs.Core.IngestLimiter.SetWindow(serial, thermo.WindowConfig{Capacity: capacity, Window: window})
}

func (rs *RestfulServer) Setup() {
	rs.Server.GET("/healthz", rs.HealthCheck)

	rs.Server.POST("/telemetry/ingest", rs.PostIngest)

	devices := rs.Server.Group("/devices")
	{
		devices.POST("/register", rs.RegisterDevice)

		device := devices.Group("/:serial")
		{
			device.GET("/telemetry", rs.GetTelemetryRange)
			device.GET("/telemetry/recent", rs.GetTelemetryRecent)
			device.GET("/alerts", rs.GetAlerts)
			device.GET("/alerts/settings", rs.GetAlertSettings)
			device.PUT("/alerts/settings", rs.PutAlertSettings)
			device.PUT("/limits", rs.PutLimits)
			device.POST("/credentials/rotate", rs.RotateCredential)
			device.POST("/credentials/:credential_id/revoke", rs.RevokeCredential)
		}
	}

	owners := rs.Server.Group("/owners/:owner_id")
	{
		owners.GET("/storage", rs.GetStorageProfile)
		owners.POST("/storage/recompute", rs.RecomputeStorage)
	}
}
