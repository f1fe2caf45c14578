package analytics

import "strings"

// DeviceType categorizes the client that followed a short link.
type DeviceType string

const (
	DeviceDesktop DeviceType = "desktop"
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
	DeviceBot     DeviceType = "bot"
)

// BrowserUnknown is reported when no browser signature matches.
const BrowserUnknown = "Unknown"

// deviceRules are evaluated in order, first match wins. The order is part of
// the contract: bot signatures must be checked before tablet and mobile ones
// because crawler user-agents often impersonate device tokens, and tablet
// before mobile because tablet strings usually also carry mobile tokens.
var deviceRules = []struct {
	device DeviceType
	tokens []string
}{
	{DeviceBot, []string{"bot", "crawler", "spider", "slurp", "curl", "wget", "python-requests"}},
	{DeviceTablet, []string{"ipad", "tablet", "kindle", "silk", "playbook"}},
	{DeviceMobile, []string{"mobi", "iphone", "ipod", "android", "blackberry", "windows phone", "opera mini"}},
}

// browserRules are evaluated in order, first match wins. Edge and Opera must
// precede Chrome, and Chrome must precede Safari, because each later browser
// token also appears in the earlier user-agent strings.
var browserRules = []struct {
	browser string
	tokens  []string
}{
	{"Edge", []string{"edg/", "edge/", "edga/", "edgios/"}},
	{"Opera", []string{"opr/", "opera"}},
	{"Chrome", []string{"chrome/", "crios/", "chromium/"}},
	{"Firefox", []string{"firefox/", "fxios/"}},
	{"Safari", []string{"safari/"}},
	{"Internet Explorer", []string{"msie", "trident/"}},
}

// ClassifyDevice maps a raw user-agent to a device type. Anything without a
// signature token, including an absent user-agent, counts as desktop.
func ClassifyDevice(userAgent string) DeviceType {
	ua := strings.ToLower(userAgent)

	for _, rule := range deviceRules {
		for _, token := range rule.tokens {
			if strings.Contains(ua, token) {
				return rule.device
			}
		}
	}

	return DeviceDesktop
}

// ClassifyBrowser maps a raw user-agent to a browser name.
func ClassifyBrowser(userAgent string) string {
	ua := strings.ToLower(userAgent)

	for _, rule := range browserRules {
		for _, token := range rule.tokens {
			if strings.Contains(ua, token) {
				return rule.browser
			}
		}
	}

	return BrowserUnknown
}
