package utility

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// GetRealIP is a helper function to get the caller's real IP address.
// It checks proxy headers (the mobile app reaches us through the backend and ngrok) first.
func GetRealIP(c echo.Context) string {
	// This header can be a list: "client, proxy1, proxy2"
	xForwardedFor := c.Request().Header.Get("X-Forwarded-For")
	if xForwardedFor != "" {
		ips := strings.Split(xForwardedFor, ",")
		return strings.TrimSpace(ips[0])
	}

	xRealIP := c.Request().Header.Get("X-Real-IP")
	if xRealIP != "" {
		return xRealIP
	}

	return c.RealIP()
}

// BearerToken returns the credential from an "Authorization: Bearer <token>"
// header. A missing or non-bearer header yields "", which callers forward as
// an unauthenticated request.
func BearerToken(c echo.Context) string {
	authHeader := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// StringPtr returns nil for an empty string so optional JSON fields are omitted.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
