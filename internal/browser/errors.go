package browser

import "fmt"

// BotCheckError means the page showed an anti-bot challenge that survived
// the automated click attempts. The tab is left open so a human can solve
// it in the shared browser window.
type BotCheckError struct {
	Source string
	URL    string
}

func (e *BotCheckError) Error() string {
	return fmt.Sprintf("bot check encountered on %s", e.Source)
}

// DailyLimitError means the source reported its daily search quota was
// reached. The source should be skipped for the rest of the session.
type DailyLimitError struct {
	Source string
}

func (e *DailyLimitError) Error() string {
	return fmt.Sprintf("daily search limit reached on %s", e.Source)
}
