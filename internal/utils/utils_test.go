package utils_test

import (
	"reflect"
	"testing"

	"github.com/temirov/ghtree/internal/utils"
)

func TestDeduplicatePatterns(t *testing.T) {
	actual := utils.DeduplicatePatterns([]string{"vendor/", "*.lock", "vendor/", "dist"})
	expected := []string{"vendor/", "*.lock", "dist"}
	if !reflect.DeepEqual(actual, expected) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

func TestNormalizeQuery(t *testing.T) {
	if actual := utils.NormalizeQuery("  ReadMe "); actual != "readme" {
		t.Fatalf("expected readme, got %q", actual)
	}
}

func TestParseRepositorySlug(t *testing.T) {
	testCases := []struct {
		name          string
		input         string
		expectedOwner string
		expectedRepo  string
		expectError   bool
	}{
		{name: "slug", input: "9jaboii/aiwebsite", expectedOwner: "9jaboii", expectedRepo: "aiwebsite"},
		{name: "https url", input: "https://github.com/charmbracelet/bubbles", expectedOwner: "charmbracelet", expectedRepo: "bubbles"},
		{name: "clone url", input: "https://github.com/charmbracelet/bubbles.git", expectedOwner: "charmbracelet", expectedRepo: "bubbles"},
		{name: "url with tree path", input: "https://github.com/charmbracelet/bubbles/tree/master/internal", expectedOwner: "charmbracelet", expectedRepo: "bubbles"},
		{name: "host prefix", input: "github.com/charmbracelet/bubbles", expectedOwner: "charmbracelet", expectedRepo: "bubbles"},
		{name: "empty", input: "  ", expectError: true},
		{name: "owner only", input: "temirov", expectError: true},
		{name: "foreign host", input: "https://gitlab.com/a/b", expectError: true},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			owner, repository, err := utils.ParseRepositorySlug(testCase.input)
			if testCase.expectError {
				if err == nil {
					t.Fatalf("expected error for %q", testCase.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if owner != testCase.expectedOwner || repository != testCase.expectedRepo {
				t.Fatalf("expected %s/%s, got %s/%s", testCase.expectedOwner, testCase.expectedRepo, owner, repository)
			}
		})
	}
}
