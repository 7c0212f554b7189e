package verifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailscout/internal/model"
)

type fakeProbe struct {
	mx         map[string][]string
	rcptResult *bool
	catchAll   bool
}

func (p *fakeProbe) ResolveMX(_ context.Context, domain string) []string {
	return p.mx[domain]
}

func (p *fakeProbe) ProbeRCPT(_ context.Context, _, _, _ string) *bool {
	return p.rcptResult
}

func (p *fakeProbe) IsCatchAll(_ context.Context, _ string, _ []string) bool {
	return p.catchAll
}

func TestKernelVerify_InvalidSyntaxShortCircuits(t *testing.T) {
	k := NewKernel(&fakeProbe{})

	got := k.Verify(context.Background(), "not-an-email")

	assert.Equal(t, model.VerdictInvalid, got.Status)
	assert.Equal(t, 0, got.Score)
	assert.False(t, got.Checks.Syntax)
	assert.Empty(t, got.Checks.Domain, "should not resolve MX for syntactically invalid addresses")
}

func TestKernelVerify_HappyPathAcceptsGmail(t *testing.T) {
	accepted := true
	probe := &fakeProbe{
		mx:         map[string][]string{"gmail.com": {"gmail-smtp-in.l.google.com"}},
		rcptResult: &accepted,
	}
	k := NewKernel(probe)

	got := k.Verify(context.Background(), "  Someone@Gmail.com  ")

	require.Equal(t, "someone@gmail.com", got.Normalized)
	assert.Equal(t, model.VerdictValid, got.Status)
	assert.Equal(t, "gmail", got.Checks.Provider)
	assert.True(t, got.Checks.HasMX)
	require.NotNil(t, got.Checks.SMTPAccept)
	assert.True(t, *got.Checks.SMTPAccept)
}

func TestKernelVerify_NoMXSkipsSMTPAndCatchAll(t *testing.T) {
	probe := &fakeProbe{mx: map[string][]string{}}
	k := NewKernel(probe)

	got := k.Verify(context.Background(), "user@nowhere.test")

	assert.False(t, got.Checks.HasMX)
	assert.Nil(t, got.Checks.SMTPAccept)
	assert.False(t, got.Checks.CatchAll)
}

func TestKernelVerify_DisposableDomainIsFlagged(t *testing.T) {
	probe := &fakeProbe{mx: map[string][]string{}}
	k := NewKernel(probe)

	got := k.Verify(context.Background(), "user@mailinator.com")

	assert.True(t, got.Checks.Disposable)
	assert.LessOrEqual(t, got.Score, 20)
	assert.Equal(t, model.VerdictInvalid, got.Status)
}

func TestKernelVerify_CatchAllDomainDowngradesStatus(t *testing.T) {
	accepted := true
	probe := &fakeProbe{
		mx:         map[string][]string{"example.com": {"mx1.example.com"}},
		rcptResult: &accepted,
		catchAll:   true,
	}
	k := NewKernel(probe)

	got := k.Verify(context.Background(), "user@example.com")

	assert.True(t, got.Checks.CatchAll)
	assert.NotEqual(t, model.VerdictValid, got.Status)
}

func TestKernelVerify_RoleBasedIsInformationalOnly(t *testing.T) {
	probe := &fakeProbe{mx: map[string][]string{}}
	k := NewKernel(probe)

	got := k.Verify(context.Background(), "support@example.com")

	assert.True(t, got.Checks.RoleBased)
}

func TestKernelVerify_AliasIsInformationalOnly(t *testing.T) {
	probe := &fakeProbe{mx: map[string][]string{}}
	k := NewKernel(probe)

	got := k.Verify(context.Background(), "someone+tag@gmail.com")

	assert.Equal(t, "someone@gmail.com", got.Checks.AliasOf)
}
