// Package browser drives an externally-launched Chrome instance over the
// DevTools protocol. The process never starts its own browser; it attaches
// to the debug endpoint so a human can watch searches and solve challenges
// in the same window.
package browser

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/pmilano1/genealogy-extractors/internal/models"
)

const (
	navigationTimeout = 30 * time.Second
	selectorTimeout   = 20 * time.Second
	settleDelay       = 2 * time.Second
	sweepInterval     = 60 * time.Second
)

// Client is the shared CDP session. A semaphore caps concurrent tabs so
// parallel workers cannot overwhelm the one real browser.
type Client struct {
	browserCtx  context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	logger      arbor.ILogger

	tabs     chan struct{}
	inFlight atomic.Int64

	sweepStop chan struct{}
	sweepOnce sync.Once
}

// NewClient attaches to the browser's first available context at debugURL.
// maxTabs bounds concurrent fetches.
func NewClient(debugURL string, maxTabs int, logger arbor.ILogger) (*Client, error) {
	if maxTabs <= 0 {
		maxTabs = 2
	}

	allocCtx, allocCancel := chromedp.NewRemoteAllocator(context.Background(), debugURL)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	// Verify the endpoint is actually reachable before workers start.
	probeCtx, probeCancel := context.WithTimeout(browserCtx, 10*time.Second)
	defer probeCancel()
	if _, err := chromedp.Targets(probeCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to attach to browser at %s: %w", debugURL, err)
	}

	c := &Client{
		browserCtx:  browserCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
		logger:      logger,
		tabs:        make(chan struct{}, maxTabs),
		sweepStop:   make(chan struct{}),
	}

	go c.sweepStaleTabs()

	logger.Info().
		Str("endpoint", debugURL).
		Int("max_tabs", maxTabs).
		Msg("Attached to browser")
	return c, nil
}

// acquireTab reserves a concurrency slot and opens a fresh tab.
func (c *Client) acquireTab(ctx context.Context) (context.Context, func(), error) {
	select {
	case c.tabs <- struct{}{}:
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
	c.inFlight.Add(1)

	tabCtx, tabCancel := chromedp.NewContext(c.browserCtx)

	// Accept any dialog so a stray confirm() cannot hang the fetch.
	chromedp.ListenTarget(tabCtx, func(ev any) {
		if _, ok := ev.(*page.EventJavascriptDialogOpening); ok {
			go func() {
				_ = chromedp.Run(tabCtx, page.HandleJavaScriptDialog(true))
			}()
		}
	})

	release := func() {
		tabCancel()
		c.inFlight.Add(-1)
		<-c.tabs
	}
	return tabCtx, release, nil
}

// FetchRendered navigates a fresh tab to url, waits for waitSelector (when
// set) and a short settle delay, and returns the rendered HTML. Bot checks
// and daily-limit notices come back as typed errors; on a bot check the tab
// stays open for manual solving.
func (c *Client) FetchRendered(ctx context.Context, sourceKey, url, waitSelector string) (*models.Payload, error) {
	tabCtx, release, err := c.acquireTab(ctx)
	if err != nil {
		return nil, err
	}

	keepTabOpen := false
	defer func() {
		if !keepTabOpen {
			release()
		}
	}()

	start := time.Now()

	navCtx, navCancel := context.WithTimeout(tabCtx, navigationTimeout)
	defer navCancel()
	if err := chromedp.Run(navCtx, chromedp.Navigate(url)); err != nil {
		return nil, fmt.Errorf("navigation failed for %s: %w", url, err)
	}

	if waitSelector != "" {
		selCtx, selCancel := context.WithTimeout(tabCtx, selectorTimeout)
		if err := chromedp.Run(selCtx, chromedp.WaitReady(waitSelector, chromedp.ByQuery)); err != nil {
			c.logger.Debug().
				Str("source", sourceKey).
				Str("selector", waitSelector).
				Msg("Wait selector never appeared, extracting anyway")
		}
		selCancel()
	}

	if err := chromedp.Run(tabCtx, chromedp.Sleep(settleDelay)); err != nil {
		return nil, fmt.Errorf("settle wait failed: %w", err)
	}

	if present, perr := detectBotCheck(tabCtx); perr == nil && present {
		if !tryDismissBotCheck(tabCtx) {
			// Leave the tab for the human; only give back the slot.
			keepTabOpen = true
			c.inFlight.Add(-1)
			<-c.tabs
			c.logger.Warn().
				Str("source", sourceKey).
				Str("url", url).
				Msg("Bot check requires manual intervention, tab left open")
			return nil, &BotCheckError{Source: sourceKey, URL: url}
		}
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("failed to extract page html: %w", err)
	}

	if hasDailyLimitNotice(html) {
		return nil, &DailyLimitError{Source: sourceKey}
	}

	c.logger.Debug().
		Str("source", sourceKey).
		Str("url", url).
		Dur("elapsed", time.Since(start)).
		Int("bytes", len(html)).
		Msg("Fetched rendered page")
	return models.HTMLPayload(url, html), nil
}

// sweepStaleTabs periodically closes leftover about:blank tabs. It never
// runs while fetches are in flight and always keeps one tab so the browser
// window survives.
func (c *Client) sweepStaleTabs() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.sweepStop:
			return
		case <-ticker.C:
			if c.inFlight.Load() > 0 {
				continue
			}
			infos, err := chromedp.Targets(c.browserCtx)
			if err != nil {
				continue
			}
			var blank []*target.Info
			pages := 0
			for _, info := range infos {
				if info.Type != "page" {
					continue
				}
				pages++
				if info.URL == "about:blank" {
					blank = append(blank, info)
				}
			}
			for _, info := range blank {
				if pages <= 1 {
					break
				}
				if err := chromedp.Run(c.browserCtx, target.CloseTarget(info.TargetID)); err == nil {
					pages--
					c.logger.Debug().Str("target", string(info.TargetID)).Msg("Closed stale tab")
				}
			}
		}
	}
}

// Close stops the sweeper and detaches. The external browser keeps running.
func (c *Client) Close() {
	c.sweepOnce.Do(func() { close(c.sweepStop) })
	c.cancel()
	c.allocCancel()
}
