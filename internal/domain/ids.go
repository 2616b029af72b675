package domain

import "time"

const idLayout = "20060102_150405"

// TimestampID builds a second-resolution identifier such as upload_20250102_030405.
// Two IDs with the same prefix taken within one second collide.
func TimestampID(prefix string, at time.Time) string {
	return prefix + "_" + at.Format(idLayout)
}
