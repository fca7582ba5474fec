package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/pmilano1/genealogy-extractors/internal/models"
)

// FormField is one input to fill before submitting.
type FormField struct {
	Selector string
	Value    string
}

// FormSearch describes a search performed by filling and submitting a form
// instead of formatting a URL. Used by sources whose search surface has no
// stable query-string scheme.
type FormSearch struct {
	URL            string
	Checks         []string
	Fields         []FormField
	SubmitSelector string
	WaitSelector   string
}

// SubmitForm opens a fresh tab, fills the form, submits it and returns the
// rendered result page. Detection semantics match FetchRendered.
func (c *Client) SubmitForm(ctx context.Context, sourceKey string, form FormSearch, logger arbor.ILogger) (*models.Payload, error) {
	tabCtx, release, err := c.acquireTab(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	navCtx, navCancel := context.WithTimeout(tabCtx, navigationTimeout)
	defer navCancel()
	if err := chromedp.Run(navCtx, chromedp.Navigate(form.URL)); err != nil {
		return nil, fmt.Errorf("navigation failed for %s: %w", form.URL, err)
	}

	actions := make([]chromedp.Action, 0, len(form.Checks)+len(form.Fields)+1)
	for _, check := range form.Checks {
		actions = append(actions, chromedp.Click(check, chromedp.ByQuery))
	}
	for _, field := range form.Fields {
		if field.Value == "" {
			continue
		}
		actions = append(actions,
			chromedp.SetValue(field.Selector, field.Value, chromedp.ByQuery))
	}
	actions = append(actions, chromedp.Click(form.SubmitSelector, chromedp.ByQuery))

	fillCtx, fillCancel := context.WithTimeout(tabCtx, selectorTimeout)
	defer fillCancel()
	if err := chromedp.Run(fillCtx, actions...); err != nil {
		return nil, fmt.Errorf("form submission failed: %w", err)
	}

	if form.WaitSelector != "" {
		selCtx, selCancel := context.WithTimeout(tabCtx, selectorTimeout)
		if err := chromedp.Run(selCtx, chromedp.WaitReady(form.WaitSelector, chromedp.ByQuery)); err != nil {
			logger.Debug().
				Str("source", sourceKey).
				Str("selector", form.WaitSelector).
				Msg("Result selector never appeared, extracting anyway")
		}
		selCancel()
	}

	if err := chromedp.Run(tabCtx, chromedp.Sleep(settleDelay)); err != nil {
		return nil, fmt.Errorf("settle wait failed: %w", err)
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("failed to extract result page: %w", err)
	}

	if hasDailyLimitNotice(html) {
		return nil, &DailyLimitError{Source: sourceKey}
	}

	var currentURL string
	_ = chromedp.Run(tabCtx, chromedp.Location(&currentURL))

	return models.HTMLPayload(currentURL, html), nil
}
