// Package printing renders invoices to PDF: an embedded html/template produces
// the document and headless Chrome (chromedp) prints it to A4.
package printing

import (
	"context"
	"errors"
	"time"
)

// PDFRenderer turns a complete HTML document into PDF bytes.
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

type RenderRequest struct {
	HTML  string
	Title string
	// Margins in millimetres; zero uses 10mm on every side.
	MarginMM   float64
	Landscape  bool
	FooterHTML string
	Timeout    time.Duration
}

type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

const (
	ErrCodeRenderTimeout = "RENDER_TIMEOUT"
	ErrCodeRenderFailed  = "RENDER_FAILED"
	ErrCodeInvalidHTML   = "INVALID_HTML"
	ErrCodeBusy          = "RENDERER_BUSY"
)

// ErrDisabled is returned when printing is switched off in configuration.
var ErrDisabled = errors.New("pdf rendering is disabled")

type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}

// DisabledRenderer is wired when printing.enabled is false.
type DisabledRenderer struct{}

func (DisabledRenderer) Render(context.Context, *RenderRequest) (*RenderResult, error) {
	return nil, ErrDisabled
}

func (DisabledRenderer) Close() error { return nil }
