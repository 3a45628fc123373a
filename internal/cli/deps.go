package cli

import (
	"context"

	"github.com/lucasnoah/deliverynote/internal/browser"
)

// scanner is the part of browser.Scanner the scan command uses.
type scanner interface {
	Scan(ctx context.Context, url string) (*browser.Scan, error)
}
