// Package clipboard copies rendered output to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

const copyFailedFormat = "copy to clipboard: %w"

var errUnsupported = errors.New("no clipboard utility available")

// Copier copies textual data to a clipboard.
type Copier interface {
	Copy(text string) error
}

// CopierFunc adapts a function into a Copier.
type CopierFunc func(text string) error

// Copy invokes the underlying function.
func (copier CopierFunc) Copy(text string) error {
	return copier(text)
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Copy writes text to the system clipboard. It fails on systems without a
// clipboard utility such as xclip, xsel or wl-copy.
func (service *Service) Copy(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf(copyFailedFormat, errUnsupported)
	}
	if writeErr := clipboard.WriteAll(text); writeErr != nil {
		return fmt.Errorf(copyFailedFormat, writeErr)
	}
	return nil
}

var (
	_ Copier = (*Service)(nil)
	_ Copier = CopierFunc(nil)
)
