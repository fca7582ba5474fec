package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasDailyLimitNotice(t *testing.T) {
	tests := []struct {
		name string
		html string
		want bool
	}{
		{"daily limit", "<p>You have reached your daily limit of searches.</p>", true},
		{"come back tomorrow", "<div>Please come back tomorrow to continue.</div>", true},
		{"case insensitive", "<p>SEARCH LIMIT exceeded</p>", true},
		{"normal results page", "<div>37 results for Smith</div>", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasDailyLimitNotice(tt.html))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	botErr := &BotCheckError{Source: "ancestry", URL: "https://example.org"}
	assert.Contains(t, botErr.Error(), "ancestry")

	limitErr := &DailyLimitError{Source: "myheritage"}
	assert.Contains(t, limitErr.Error(), "myheritage")
}
