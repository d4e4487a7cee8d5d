package utils

import (
	"strings"

	ua "github.com/mssola/user_agent"
)

// DeviceInfo holds what we care to record about the client device when a
// refresh token is issued.
type DeviceInfo struct {
	DeviceType string // "mobile", "tablet", "desktop", "unknown"
	OS         string
	Browser    string
}

// ParseUserAgent extracts device information from a User-Agent string
func ParseUserAgent(userAgent string) DeviceInfo {
	if userAgent == "" || userAgent == "Unknown" {
		return DeviceInfo{DeviceType: "unknown", OS: "unknown", Browser: "unknown"}
	}

	parser := ua.New(userAgent)

	browser, _ := parser.Browser()
	if browser == "" {
		browser = "unknown"
	}

	os := parser.OS()
	if os == "" {
		os = "unknown"
	}

	return DeviceInfo{
		DeviceType: deviceType(parser, userAgent),
		OS:         os,
		Browser:    browser,
	}
}

func deviceType(parser *ua.UserAgent, raw string) string {
	if parser.Mobile() {
		if isTablet(raw) {
			return "tablet"
		}
		return "mobile"
	}
	if isTablet(raw) {
		return "tablet"
	}
	if parser.Bot() {
		return "unknown"
	}
	return "desktop"
}

func isTablet(userAgent string) bool {
	lower := strings.ToLower(userAgent)
	for _, marker := range []string{"ipad", "tablet", "kindle", "silk"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
