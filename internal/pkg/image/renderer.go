// Package image converts an HTML chart page into a PNG screenshot.
package image

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/device"
)

// Renderer takes a screenshot of an HTML document and writes it as PNG.
type Renderer struct {
	options
}

// New builds an image [Renderer].
func New(opts ...Option) *Renderer {
	return &Renderer{
		options: optionsWithDefaults(opts),
	}
}

// Render screenshots the HTML document in a headless browser and writes the
// PNG to dest. The context bounds the whole browser session.
func (r *Renderer) Render(ctx context.Context, dest io.Writer, html []byte) error {
	screenshot, err := r.screenshot(ctx, html)
	if err != nil {
		return fmt.Errorf("taking screenshot: %w", err)
	}

	_, err = dest.Write(screenshot)
	if err != nil {
		return fmt.Errorf("writing screenshot: %w", err)
	}

	return nil
}

func (r *Renderer) screenshot(ctx context.Context, html []byte) ([]byte, error) {
	browserCtx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	// base64 keeps '#' in chart colors from being parsed as a URL fragment
	pageURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)

	const qualityPNG = 100 // 100 forces PNG

	var screenshot []byte
	err := chromedp.Run(browserCtx,
		chromedp.Emulate(device.Info{
			Height:    r.Height,
			Width:     r.Width,
			Landscape: true,
		}),
		chromedp.Navigate(pageURL),
		chromedp.Sleep(r.SleepDuration), // let the chart scripts draw before capturing
		chromedp.FullScreenshot(&screenshot, qualityPNG),
	)
	if err != nil {
		return nil, err
	}

	return screenshot, nil
}
