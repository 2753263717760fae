package config

import (
	"time"
)

// Layouts accepted for wall-clock timestamps without an explicit offset
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// AppLocation is the timezone used for naive timestamps and for console output
var AppLocation = time.UTC

// InitializeTimezone sets up the application timezone
func InitializeTimezone(name string) error {
	if name == "" {
		name = "UTC"
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		return err
	}
	AppLocation = location
	return nil
}

// GetCurrentTime returns current time in the application timezone
func GetCurrentTime() time.Time {
	return time.Now().In(AppLocation)
}

// ParseTimeInTimezone parses an RFC3339 timestamp, or a naive wall-clock timestamp
// interpreted in the application timezone
func ParseTimeInTimezone(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	var lastErr error
	for _, layout := range localLayouts {
		t, err := time.ParseInLocation(layout, value, AppLocation)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// FormatTimeInTimezone formats a time in the application timezone
func FormatTimeInTimezone(t time.Time, layout string) string {
	return t.In(AppLocation).Format(layout)
}
