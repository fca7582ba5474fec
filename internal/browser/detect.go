package browser

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// botCheckScript reports whether the page currently shows an anti-bot
// challenge: known overlay selectors, or a visible captcha iframe larger
// than 200x100.
const botCheckScript = `(function() {
	var selectors = [
		'#challenge-running',
		'#challenge-form',
		'#cf-wrapper',
		'div.captcha-overlay',
		'div.robot-check-overlay'
	];
	for (var i = 0; i < selectors.length; i++) {
		if (document.querySelector(selectors[i])) { return true; }
	}
	var frames = document.querySelectorAll('iframe');
	for (var j = 0; j < frames.length; j++) {
		var f = frames[j];
		var src = f.src || '';
		if (src.indexOf('challenges.cloudflare.com') !== -1 ||
			src.indexOf('hcaptcha.com/captcha') !== -1) {
			if (f.offsetWidth > 200 && f.offsetHeight > 100) { return true; }
		}
	}
	return false;
})()`

// clickCheckboxScript clicks a visible captcha checkbox when one exists,
// returning whether a click happened.
const clickCheckboxScript = `(function() {
	var selectors = ['.recaptcha-checkbox', '#recaptcha-anchor'];
	for (var i = 0; i < selectors.length; i++) {
		var el = document.querySelector(selectors[i]);
		if (el && el.offsetWidth > 0) { el.click(); return true; }
	}
	return false;
})()`

const botCheckAttempts = 3

// dailyLimitPhrases are quota messages sources render instead of results.
var dailyLimitPhrases = []string{
	"daily limit",
	"reached your limit",
	"limit reached",
	"search limit",
	"too many searches",
	"come back tomorrow",
}

// detectBotCheck evaluates the challenge probe in the tab.
func detectBotCheck(ctx context.Context) (bool, error) {
	var present bool
	err := chromedp.Run(ctx, chromedp.Evaluate(botCheckScript, &present))
	return present, err
}

// tryDismissBotCheck attempts the automated checkbox click a few times,
// re-probing after each attempt. Returns true when the challenge cleared.
func tryDismissBotCheck(ctx context.Context) bool {
	for attempt := 0; attempt < botCheckAttempts; attempt++ {
		var clicked bool
		if err := chromedp.Run(ctx, chromedp.Evaluate(clickCheckboxScript, &clicked)); err != nil {
			return false
		}
		if err := chromedp.Run(ctx, chromedp.Sleep(2*time.Second)); err != nil {
			return false
		}
		present, err := detectBotCheck(ctx)
		if err == nil && !present {
			return true
		}
	}
	return false
}

// hasDailyLimitNotice scans rendered page text for quota phrases.
func hasDailyLimitNotice(html string) bool {
	lower := strings.ToLower(html)
	for _, phrase := range dailyLimitPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
