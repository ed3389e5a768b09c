package clipboard

import (
	"errors"
	"testing"

	"github.com/atotto/clipboard"
)

func TestCopierFuncForwardsTextAndErrors(t *testing.T) {
	failure := errors.New("write failed")
	testCases := []struct {
		name        string
		returnErr   error
		expectedErr error
	}{
		{name: "success"},
		{name: "failure", returnErr: failure, expectedErr: failure},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			var received string
			copier := CopierFunc(func(text string) error {
				received = text
				return testCase.returnErr
			})
			copyErr := copier.Copy("octo/hello@main\n")
			if !errors.Is(copyErr, testCase.expectedErr) || (testCase.expectedErr == nil && copyErr != nil) {
				t.Fatalf("expected error %v, got %v", testCase.expectedErr, copyErr)
			}
			if received != "octo/hello@main\n" {
				t.Fatalf("unexpected text %q", received)
			}
		})
	}
}

func TestServiceReportsMissingClipboardUtility(t *testing.T) {
	previous := clipboard.Unsupported
	clipboard.Unsupported = true
	t.Cleanup(func() { clipboard.Unsupported = previous })

	copyErr := NewService().Copy("text")
	if !errors.Is(copyErr, errUnsupported) {
		t.Fatalf("expected unsupported error, got %v", copyErr)
	}
	if copyErr.Error() != "copy to clipboard: no clipboard utility available" {
		t.Fatalf("unexpected message %q", copyErr.Error())
	}
}
