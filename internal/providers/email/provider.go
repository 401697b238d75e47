package email

import "context"

// Provider delivers operational mail. Delivery is best-effort; callers
// must not fail their own flow on a send error.
type Provider interface {
	Send(ctx context.Context, to []string, subject string, htmlBody string) error
}

type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	return nil
}
