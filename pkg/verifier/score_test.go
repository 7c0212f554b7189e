package verifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mailscout/internal/model"
)

func accept(v bool) *bool { return &v }

func TestScoreAndStatus(t *testing.T) {
	tests := []struct {
		name       string
		checks     model.Checks
		wantScore  int
		wantStatus model.VerdictStatus
	}{
		{
			name:       "bad syntax is always invalid at zero",
			checks:     model.Checks{Syntax: false},
			wantScore:  0,
			wantStatus: model.VerdictInvalid,
		},
		{
			name:       "syntax only with no MX is risky",
			checks:     model.Checks{Syntax: true},
			wantScore:  30,
			wantStatus: model.VerdictRisky,
		},
		{
			name:       "MX present with no SMTP signal",
			checks:     model.Checks{Syntax: true, MXHosts: []string{"mx1"}},
			wantScore:  60,
			wantStatus: model.VerdictRisky,
		},
		{
			name:       "SMTP accept pushes to valid",
			checks:     model.Checks{Syntax: true, MXHosts: []string{"mx1"}, SMTPAccept: accept(true)},
			wantScore:  90,
			wantStatus: model.VerdictValid,
		},
		{
			name:       "gmail provider adds a small bonus",
			checks:     model.Checks{Syntax: true, MXHosts: []string{"mx1"}, SMTPAccept: accept(true), Provider: "gmail"},
			wantScore:  95,
			wantStatus: model.VerdictValid,
		},
		{
			name:       "SMTP reject caps score low",
			checks:     model.Checks{Syntax: true, MXHosts: []string{"mx1"}, SMTPAccept: accept(false)},
			wantScore:  20,
			wantStatus: model.VerdictInvalid,
		},
		{
			name:       "disposable cap applies before the MX bonus",
			checks:     model.Checks{Syntax: true, Disposable: true, MXHosts: []string{"mx1"}},
			wantScore:  40,
			wantStatus: model.VerdictRisky,
		},
		{
			name:       "catch-all pulls an otherwise-valid score down to risky",
			checks:     model.Checks{Syntax: true, MXHosts: []string{"mx1"}, SMTPAccept: accept(true), CatchAll: true},
			wantScore:  70,
			wantStatus: model.VerdictRisky,
		},
		{
			name:       "catch-all floor applies when score would go negative",
			checks:     model.Checks{Syntax: true, Disposable: true, CatchAll: true},
			wantScore:  10,
			wantStatus: model.VerdictInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, status := scoreAndStatus(tt.checks)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}
