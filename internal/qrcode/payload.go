package qrcode

import (
	"fmt"
	"strconv"
	"strings"
)

// GeoURI encodes a location as an RFC 5870 geo URI.
func GeoURI(lat, lng float64) (string, error) {
	if lat < -90 || lat > 90 {
		return "", fmt.Errorf("latitude %v out of range", lat)
	}
	if lng < -180 || lng > 180 {
		return "", fmt.Errorf("longitude %v out of range", lng)
	}
	return "geo:" + strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64), nil
}

var wifiEscaper = strings.NewReplacer(`\`, `\\`, `;`, `\;`, `,`, `\,`, `:`, `\:`, `"`, `\"`)

// WiFi encodes network credentials in the MECARD-like WIFI: format.
// security is WPA, WEP or nopass; blank means nopass.
func WiFi(ssid, password, security string) (string, error) {
	if ssid == "" {
		return "", fmt.Errorf("ssid is required")
	}
	security = strings.ToUpper(strings.TrimSpace(security))
	switch security {
	case "", "NOPASS":
		security = "nopass"
	case "WPA", "WPA2", "WEP":
	default:
		return "", fmt.Errorf("unsupported wifi security %q", security)
	}

	var b strings.Builder
	b.WriteString("WIFI:T:")
	b.WriteString(security)
	b.WriteString(";S:")
	b.WriteString(wifiEscaper.Replace(ssid))
	b.WriteString(";")
	if security != "nopass" && password != "" {
		b.WriteString("P:")
		b.WriteString(wifiEscaper.Replace(password))
		b.WriteString(";")
	}
	b.WriteString(";")
	return b.String(), nil
}

var vcardEscaper = strings.NewReplacer(`\`, `\\`, `,`, `\,`, `;`, `\;`, "\r\n", `\n`, "\n", `\n`, "\r", `\n`)

// VCard encodes a minimal vCard 3.0. name is the structured N value
// ("Family;Given"), displayName the formatted FN value.
func VCard(name, displayName string, emails, urls []string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("name is required")
	}
	// N keeps ';' as its component separator, so it is not escaped; a line
	// break would start a new property.
	if strings.ContainsAny(name, "\r\n") {
		return "", fmt.Errorf("name must not contain line breaks")
	}
	if strings.TrimSpace(displayName) == "" {
		return "", fmt.Errorf("display name is required")
	}

	lines := []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		"N:" + name,
		"FN:" + vcardEscaper.Replace(displayName),
	}
	for _, email := range emails {
		lines = append(lines, "EMAIL:"+vcardEscaper.Replace(email))
	}
	for _, u := range urls {
		lines = append(lines, "URL:"+vcardEscaper.Replace(u))
	}
	lines = append(lines, "END:VCARD")
	return strings.Join(lines, "\r\n"), nil
}
