package quiz

import "time"

// quizStartedMsg is sent when the question set has loaded or failed.
type quizStartedMsg struct {
	Err error
}

// spinnerTickMsg animates the loading spinner.
type spinnerTickMsg time.Time
