package session

import "strings"

const (
	UnknownBrowser = "Unknown Browser"
	UnknownOS      = "Unknown OS"
)

type uaSignature struct {
	token string
	name  string
}

// Signature order matters: Edge, Opera and Samsung UAs all contain
// "Chrome/", and every Chrome UA contains "Safari/", so the more
// specific tokens are probed first. Same for Android before Linux and
// the iOS devices before "Mac OS X".
var browserSignatures = []uaSignature{
	{token: "Edg/", name: "Microsoft Edge"},
	{token: "OPR/", name: "Opera"},
	{token: "SamsungBrowser/", name: "Samsung Internet"},
	{token: "Firefox/", name: "Firefox"},
	{token: "Chrome/", name: "Chrome"},
	{token: "Safari/", name: "Safari"},
}

var osSignatures = []uaSignature{
	{token: "Windows", name: "Windows"},
	{token: "Android", name: "Android"},
	{token: "iPhone", name: "iOS"},
	{token: "iPad", name: "iOS"},
	{token: "Mac OS X", name: "macOS"},
	{token: "CrOS", name: "ChromeOS"},
	{token: "Linux", name: "Linux"},
}

// ParseUserAgent extracts a browser and OS name from a User-Agent
// string by substring probing, first match wins. Unrecognized agents
// map to the Unknown constants rather than an error.
func ParseUserAgent(userAgent string) (browser string, os string) {
	browser = UnknownBrowser
	for _, sig := range browserSignatures {
		if strings.Contains(userAgent, sig.token) {
			browser = sig.name
			break
		}
	}
	os = UnknownOS
	for _, sig := range osSignatures {
		if strings.Contains(userAgent, sig.token) {
			os = sig.name
			break
		}
	}
	return browser, os
}
