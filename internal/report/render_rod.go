package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// A4 with 20mm margins, in inches.
const (
	a4Width  = 8.27
	a4Height = 11.69
	margin   = 0.787
)

var ErrRendererClosed = errors.New("report: renderer closed")

// PDFRenderer turns a standalone HTML document into PDF bytes.
type PDFRenderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

// RodRenderer prints HTML through a headless Chromium driven over CDP.
// The browser is started on first use and reused across renders.
type RodRenderer struct {
	debuggerURL string
	bin         string
	log         *zap.Logger

	mu      sync.Mutex
	browser *rod.Browser
	closed  bool
}

// NewRodRenderer connects to debuggerURL when set, otherwise launches bin
// (or rod's managed Chromium when bin is empty).
func NewRodRenderer(debuggerURL, bin string, log *zap.Logger) *RodRenderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &RodRenderer{debuggerURL: debuggerURL, bin: bin, log: log}
}

func (r *RodRenderer) start() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrRendererClosed
	}
	if r.browser != nil {
		if _, err := r.browser.Version(); err == nil {
			return r.browser, nil
		}
		r.log.Warn("stale browser connection, reconnecting")
		_ = r.browser.Close()
		r.browser = nil
	}

	controlURL := r.debuggerURL
	if controlURL == "" {
		l := launcher.New().Headless(true).NoSandbox(true)
		if r.bin != "" {
			l = l.Bin(r.bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("report: launch chrome: %w", err)
		}
		controlURL = u
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("report: connect to chrome: %w", err)
	}
	r.browser = b
	r.log.Info("chrome connected", zap.String("control_url", controlURL))
	return b, nil
}

func (r *RodRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	b, err := r.start()
	if err != nil {
		return nil, err
	}
	page, err := b.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("report: open page: %w", err)
	}
	defer func() { _ = page.Close() }()

	if err := page.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("report: set content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("report: wait load: %w", err)
	}
	stream, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground: true,
		PaperWidth:      inches(a4Width),
		PaperHeight:     inches(a4Height),
		MarginTop:       inches(margin),
		MarginBottom:    inches(margin),
		MarginLeft:      inches(margin),
		MarginRight:     inches(margin),
	})
	if err != nil {
		return nil, fmt.Errorf("report: print pdf: %w", err)
	}
	out, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("report: read pdf: %w", err)
	}
	return out, nil
}

// Close shuts the browser down. Later renders fail with ErrRendererClosed.
func (r *RodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.browser = nil
	return err
}

func inches(v float64) *float64 { return &v }
