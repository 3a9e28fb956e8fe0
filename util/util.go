package util

import (
	"os"
)

// TimeFormat stores a correctly formatted timestamp
const TimeFormat string = "2006-01-02-T15:04:05-0700"

// DisplayTimeFormat is the layout of timestamps written to scan logs and reports
const DisplayTimeFormat string = "2006-01-02 15:04:05.000000"

// Exists returns true if file or directory exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	if err == nil {
		return true
	}
	if os.IsNotExist(err) {
		return false
	}
	return true
}

// IsDir returns true if argument is a directory
func IsDir(path string) bool {
	file, err := os.Stat(path)
	if err != nil {
		return false
	}
	if file.IsDir() {
		return true
	}
	return false
}

// EnsureDir creates path and its parents if they are missing
func EnsureDir(path string) error {
	if path == "" || path == "." || IsDir(path) {
		return nil
	}
	return os.MkdirAll(path, 0755)
}
