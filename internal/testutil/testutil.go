package testutil

import "os"

// WriteStringToTempFile writes content to a fresh temp file and returns its
// path plus a cleanup func.
func WriteStringToTempFile(content string) (string, func(), error) {
	tempFile, err := os.CreateTemp("", "edgequery-test-*")
	if err != nil {
		return "", nil, err
	}

	if _, err := tempFile.WriteString(content); err != nil {
		tempFile.Close()
		os.Remove(tempFile.Name())
		return "", nil, err
	}

	tempFile.Close()

	cleanup := func() {
		os.Remove(tempFile.Name())
	}

	return tempFile.Name(), cleanup, nil
}
