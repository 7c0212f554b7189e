package verifier

import "mailscout/internal/model"

// scoreAndStatus computes a verdict's score and status from its checks.
// Every adjustment and threshold here is load-bearing; do not tune one
// in isolation without checking its effect on the others.
func scoreAndStatus(c model.Checks) (int, model.VerdictStatus) {
	if !c.Syntax {
		return 0, model.VerdictInvalid
	}

	score := 30
	if c.Disposable {
		score = min(score, 10)
	}
	if len(c.MXHosts) > 0 {
		score += 30
	}
	if c.SMTPAccept != nil {
		if *c.SMTPAccept {
			score += 30
		} else {
			score = min(score, 20)
		}
	}
	if c.CatchAll {
		score = max(10, score-20)
	}
	if c.Provider == "gmail" {
		score = min(100, score+5)
	}
	score = min(max(score, 0), 100)

	var status model.VerdictStatus
	switch {
	case score >= 75:
		status = model.VerdictValid
	case score <= 20:
		status = model.VerdictInvalid
	default:
		status = model.VerdictRisky
	}
	return score, status
}
