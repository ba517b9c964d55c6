// Package humanize formats byte counts and transfer speeds for log lines
// and progress callbacks, grounded on original_source/common/utils.py's
// format_size and calculate_transfer_speed helpers.
package humanize

import "fmt"

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// Size formats a byte count as a human-readable string, e.g. "4.50 MB".
func Size(bytes int64) string {
	if bytes < 0 {
		return fmt.Sprintf("-%s", Size(-bytes))
	}

	value := float64(bytes)
	unit := sizeUnits[0]
	for _, u := range sizeUnits {
		unit = u
		if value < 1024 {
			break
		}
		value /= 1024
	}

	if unit == "B" {
		return fmt.Sprintf("%d %s", bytes, unit)
	}
	return fmt.Sprintf("%.2f %s", value, unit)
}

// Speed formats bytesTransferred over elapsedSeconds as a human-readable
// rate, e.g. "1.25 MB/s". An elapsed duration of zero or less reports the
// rate as unknown rather than dividing by zero.
func Speed(bytesTransferred int64, elapsedSeconds float64) string {
	if elapsedSeconds <= 0 {
		return "-- B/s"
	}
	bytesPerSecond := float64(bytesTransferred) / elapsedSeconds
	return Size(int64(bytesPerSecond)) + "/s"
}

// ETA estimates remaining transfer time in seconds from bytes transferred
// so far, total bytes, and elapsed time. Returns -1 when total or elapsed
// is unknown (<=0) or transfer rate is zero.
func ETA(transferred, total int64, elapsedSeconds float64) float64 {
	if total <= 0 || elapsedSeconds <= 0 || transferred <= 0 {
		return -1
	}
	rate := float64(transferred) / elapsedSeconds
	if rate <= 0 {
		return -1
	}
	remaining := total - transferred
	if remaining <= 0 {
		return 0
	}
	return float64(remaining) / rate
}
