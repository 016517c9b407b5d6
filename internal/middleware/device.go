package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"lms-service/internal/apperr"
	"lms-service/internal/response"

	"github.com/gin-gonic/gin"
)

// DeviceInfo is the client fingerprint expected on guarded requests.
type DeviceInfo struct {
	Platform         string `json:"platform"`
	ScreenResolution string `json:"screenResolution"`
	Timezone         string `json:"timezone"`
}

type deviceEnvelope struct {
	DeviceInfo json.RawMessage `json:"deviceInfo"`
}

// RequireDeviceFingerprint rejects requests whose JSON body lacks a valid
// deviceInfo block. The body is restored afterwards so handlers can bind it.
func RequireDeviceFingerprint() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.AbortError(c, apperr.WithCode(http.StatusBadRequest, "INVALID_DEVICE_INFO",
				"Invalid device information format. Please refresh the page and try again."))
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))

		var envelope deviceEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil ||
			len(envelope.DeviceInfo) == 0 || string(envelope.DeviceInfo) == "null" {
			response.AbortError(c, apperr.WithCode(http.StatusBadRequest, "DEVICE_INFO_MISSING",
				"Device information is required for security purposes. Please enable JavaScript and try again."))
			return
		}

		// deviceInfo may arrive as an object or a stringified JSON object
		// (multipart forms stringify it).
		payload := envelope.DeviceInfo
		var asString string
		if err := json.Unmarshal(payload, &asString); err == nil {
			payload = json.RawMessage(asString)
		}

		var info DeviceInfo
		if err := json.Unmarshal(payload, &info); err != nil ||
			info.Platform == "" || info.ScreenResolution == "" || info.Timezone == "" {
			response.AbortError(c, apperr.WithCode(http.StatusBadRequest, "INVALID_DEVICE_INFO",
				"Invalid device information format. Please refresh the page and try again."))
			return
		}

		c.Next()
	}
}
