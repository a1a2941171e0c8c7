package engine

import (
	"context"
	"time"
)

// RenderRequest describes one page render
type RenderRequest struct {
	// URL to navigate to
	URL string
	// WaitSelector is the content marker that signals results have loaded
	WaitSelector string
	// Timeout bounds session acquisition, navigation and the marker wait together
	Timeout time.Duration
}

// Renderer is the interface that all page rendering backends must implement
type Renderer interface {
	// Render navigates to req.URL in an isolated browser session, waits for
	// req.WaitSelector and returns the rendered document HTML.
	// A deadline miss yields an error matching ErrRenderTimeout.
	Render(ctx context.Context, req RenderRequest) (string, error)

	// Name returns the name of the renderer implementation
	Name() string

	// Close releases browser processes owned by the renderer
	Close() error
}
