package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// fingerprintLength is the number of hex characters kept from the visitor hash.
const fingerprintLength = 32

// DeviceType classifies the visitor's device from its user agent.
type DeviceType string

const (
	DeviceDesktop DeviceType = "desktop"
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
	DeviceUnknown DeviceType = "unknown"
)

// ClickEvent is one redirect hit on a tracking link. Events are write-once
// and append-only; repeats from the same visitor are all recorded.
type ClickEvent struct {
	ID          int64      `db:"id"          json:"id"`
	LinkCode    string     `db:"link_code"   json:"link_code"`
	Fingerprint string     `db:"fingerprint" json:"fingerprint"`
	Referrer    string     `db:"referrer"    json:"referrer,omitempty"`
	DeviceType  DeviceType `db:"device_type" json:"device_type"`
	ClickedAt   time.Time  `db:"clicked_at"  json:"clicked_at"`
}

// Fingerprint hashes the visitor's IP and user agent into an opaque
// correlation key. Raw IP and UA are never stored.
func Fingerprint(ip, userAgent string) string {
	h := sha256.Sum256([]byte(ip + "\x00" + userAgent))
	return hex.EncodeToString(h[:])[:fingerprintLength]
}

// mobilePatterns and tabletPatterns are lowercase user-agent substrings.
// Tablets are checked first: an iPad UA also matches "mobile".
var (
	tabletPatterns = []string{"ipad", "tablet", "kindle"}
	mobilePatterns = []string{
		"mobile", "android", "iphone", "ipod", "blackberry",
		"windows phone", "palm", "symbian",
	}
)

// DetectDevice classifies a user agent into a DeviceType.
func DetectDevice(userAgent string) DeviceType {
	if userAgent == "" {
		return DeviceUnknown
	}

	ua := strings.ToLower(userAgent)
	for _, p := range tabletPatterns {
		if strings.Contains(ua, p) {
			return DeviceTablet
		}
	}
	for _, p := range mobilePatterns {
		if strings.Contains(ua, p) {
			return DeviceMobile
		}
	}
	return DeviceDesktop
}
