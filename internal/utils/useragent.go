package utils

import (
	"strings"

	ua "github.com/mssola/user_agent"
)

// Device types recorded with search analytics
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	DeviceBot     = "bot"
	DeviceUnknown = "unknown"
)

// DeviceInfo holds parsed information from a User-Agent string
type DeviceInfo struct {
	DeviceType string `json:"device_type"` // mobile, tablet, desktop, bot
	Platform   string `json:"platform"`    // android, ios, windows, mac, linux
	Browser    string `json:"browser"`
	IsBot      bool   `json:"is_bot"`
}

var tabletIndicators = []string{
	"ipad",
	"tablet",
	"kindle",
	"playbook",
	"nexus 7",
	"nexus 9",
	"nexus 10",
	"xoom",
	"sm-t", // Samsung tablets
}

// ParseUserAgent parses a User-Agent string and extracts device information
func ParseUserAgent(userAgent string) DeviceInfo {
	if userAgent == "" || userAgent == "Unknown" {
		return DeviceInfo{
			DeviceType: DeviceUnknown,
			Platform:   "unknown",
			Browser:    "Unknown",
		}
	}

	parser := ua.New(userAgent)
	browser, _ := parser.Browser()
	if browser == "" {
		browser = "Unknown"
	}

	return DeviceInfo{
		DeviceType: deviceType(parser),
		Platform:   platform(parser),
		Browser:    browser,
		IsBot:      parser.Bot(),
	}
}

func deviceType(parser *ua.UserAgent) string {
	switch {
	case parser.Bot():
		return DeviceBot
	case parser.Mobile():
		if isTablet(parser.UA()) {
			return DeviceTablet
		}
		return DeviceMobile
	default:
		return DeviceDesktop
	}
}

func isTablet(userAgent string) bool {
	userAgentLower := strings.ToLower(userAgent)
	for _, indicator := range tabletIndicators {
		if strings.Contains(userAgentLower, indicator) {
			return true
		}
	}
	return false
}

// platform maps the OS name to a short platform identifier
func platform(parser *ua.UserAgent) string {
	osName := strings.ToLower(parser.OSInfo().Name)

	// first match wins
	platforms := []struct{ key, platform string }{
		{"android", "android"},
		{"iphone os", "ios"},
		{"ios", "ios"},
		{"windows", "windows"},
		{"mac os x", "mac"},
		{"macos", "mac"},
		{"chrome os", "chromeos"},
		{"ubuntu", "linux"},
		{"linux", "linux"},
	}

	for _, p := range platforms {
		if strings.Contains(osName, p.key) {
			return p.platform
		}
	}
	return "unknown"
}
