package inbound

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/vendor-outreach/internal/mail"
	"github.com/jonathan/vendor-outreach/internal/types"
)

// Account pairs an inbox with the transport that reads it
type Account struct {
	ID        string
	Transport mail.Transport
}

// Poller drains unread vendor replies from every configured account
type Poller struct {
	accounts []Account
	handle   func(ctx context.Context, email *types.InboundEmail) error
}

// NewPoller creates a poller feeding the given pipeline
func NewPoller(accounts []Account, pipeline *Pipeline) *Poller {
	return &Poller{accounts: accounts, handle: pipeline.HandleInbound}
}

// Poll reads unread messages from all accounts in parallel. One account's
// failure is reported and skipped; it never stops the others or the poll
// loop. Only context cancellation propagates.
func (p *Poller) Poll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, account := range p.accounts {
		account := account
		g.Go(func() error {
			emails, err := account.Transport.ListUnread(ctx, "")
			if err != nil {
				fmt.Printf("Warning: poll failed for account %s: %v\n", account.ID, err)
				return nil
			}
			for i := range emails {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if err := p.handle(ctx, &emails[i]); err != nil {
					fmt.Printf("Warning: failed to process message %s (account %s): %v\n",
						emails[i].ProviderMessageID, account.ID, err)
				}
			}
			return nil
		})
	}

	return g.Wait()
}
