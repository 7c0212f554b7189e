package governor

import (
	"context"
	"crypto/tls"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"mailscout/pkg/monitoring"
)

// SMTPDialer performs one non-intrusive RCPT probe against mxHost. It
// returns the SMTP reply code from RCPT TO, or an error if the session
// could not be completed (connect failure, timeout, protocol error).
type SMTPDialer interface {
	ProbeRCPT(ctx context.Context, mxHost, mailFrom, rcptTo string) (code int, err error)
}

type liveDialer struct {
	connectTimeout time.Duration
	sessionTimeout time.Duration
	ehloHostname   string
}

// ProbeRCPT connects to mxHost:25 and runs EHLO -> MAIL FROM -> RCPT TO
// -> QUIT, returning the code from RCPT TO without delivering mail.
func (d liveDialer) ProbeRCPT(ctx context.Context, mxHost, mailFrom, rcptTo string) (int, error) {
	dialer := net.Dialer{Timeout: d.connectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(mxHost, "25"))
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(d.sessionTimeout))

	client, err := smtp.NewClient(conn, mxHost)
	if err != nil {
		return 0, err
	}
	defer client.Close()

	if err := client.Hello(d.ehloHostname); err != nil {
		return 0, err
	}

	if ok, _ := client.Extension("STARTTLS"); ok {
		_ = client.StartTLS(&tls.Config{ServerName: mxHost, InsecureSkipVerify: true})
	}

	if err := client.Mail(mailFrom); err != nil {
		_ = client.Quit()
		return 0, err
	}

	err = client.Rcpt(rcptTo)
	_ = client.Quit()
	if err == nil {
		return 250, nil
	}
	if code, ok := smtpErrorCode(err); ok {
		return code, nil
	}
	return 0, err
}

// smtpErrorCode extracts the three-digit reply code from a
// *textproto.Error-shaped SMTP error, as returned by net/smtp.
func smtpErrorCode(err error) (int, bool) {
	type codeError interface{ Code() int }
	if ce, ok := err.(codeError); ok {
		return ce.Code(), true
	}
	msg := err.Error()
	if len(msg) >= 3 {
		if code, convErr := strconv.Atoi(msg[:3]); convErr == nil && code >= 100 && code < 600 {
			return code, true
		}
	}
	return 0, false
}

// ProbeRCPT runs an RCPT probe against mxHost under the SMTP and
// per-MX-host semaphores. It returns nil on any inconclusive outcome
// (connection failure, timeout, protocol error) since the worker must
// not treat "could not tell" as a negative signal; it returns a
// pointer to true on a 2xx/3xx accept and false on any 4xx or 5xx
// reply, since a 4xx is still a definitive refusal of that recipient.
func (g *Governor) ProbeRCPT(ctx context.Context, mxHost, mailFrom, rcptTo string) *bool {
	if err := g.smtp.acquire(ctx); err != nil {
		return nil
	}
	defer g.smtp.release()

	hostSem := g.perMXSemaphore(mxHost)
	if err := hostSem.acquire(ctx); err != nil {
		return nil
	}
	defer hostSem.release()

	probeStart := time.Now()
	code, err := g.dialer.ProbeRCPT(ctx, mxHost, mailFrom, rcptTo)
	monitoring.RecordSMTPProbe(time.Since(probeStart))
	if err != nil {
		return nil
	}
	return classifyRCPT(code)
}

func classifyRCPT(code int) *bool {
	accept := code >= 200 && code < 400
	reject := code >= 400 && code < 600
	switch {
	case accept:
		return boolPtr(true)
	case reject:
		return boolPtr(false)
	default:
		return nil
	}
}

func boolPtr(b bool) *bool { return &b }
