package utils_test

import (
	"testing"

	"github.com/temirov/ghtree/internal/utils"
)

func TestFormatFileSize(t *testing.T) {
	testCases := []struct {
		name     string
		bytes    int64
		expected string
	}{
		{name: "negative", bytes: -1, expected: "—"},
		{name: "zero", bytes: 0, expected: "—"},
		{name: "bytes", bytes: 512, expected: "512 B"},
		{name: "just under a kilobyte", bytes: 1023, expected: "1023 B"},
		{name: "two kilobytes", bytes: 2048, expected: "2 KB"},
		{name: "fractional kilobyte", bytes: 1536, expected: "1.5 KB"},
		{name: "ten mebibytes", bytes: 10 * 1024 * 1024, expected: "10 MB"},
		{name: "ten million bytes", bytes: 10_000_000, expected: "9.5 MB"},
		{name: "large kilobytes", bytes: 20 * 1024, expected: "20 KB"},
		{name: "gigabytes cap", bytes: 5 * 1024 * 1024 * 1024 * 1024, expected: "5120 GB"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			result := utils.FormatFileSize(testCase.bytes)
			if result != testCase.expected {
				t.Fatalf("expected %s, got %s", testCase.expected, result)
			}
		})
	}
}
