package mail

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/jonathan/vendor-outreach/internal/types"
)

// GmailTransport implements Transport against one Gmail account
type GmailTransport struct {
	service   *gmail.Service
	accountID string // the account's own address, used as the sender
}

// NewGmailTransport creates a transport for one Gmail account using the
// given client options (credentials file, token source, ...)
func NewGmailTransport(ctx context.Context, accountID string, opts ...option.ClientOption) (*GmailTransport, error) {
	service, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service for %s: %w", accountID, err)
	}
	return &GmailTransport{service: service, accountID: accountID}, nil
}

// AccountID returns the account address this transport sends from
func (g *GmailTransport) AccountID() string {
	return g.accountID
}

// Send delivers a message, threading it onto an existing Gmail conversation
// when a provider thread id is given
func (g *GmailTransport) Send(ctx context.Context, req SendRequest) (*SendResult, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", g.accountID))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", req.To))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", req.Subject))
	sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(req.Body)

	msg := &gmail.Message{
		Raw:      base64.URLEncoding.EncodeToString([]byte(sb.String())),
		ThreadId: req.ProviderThreadID,
	}

	sent, err := g.service.Users.Messages.Send("me", msg).Context(ctx).Do()
	if err != nil {
		if gerr, ok := err.(*googleapi.Error); ok && gerr.Code == http.StatusBadRequest {
			// Bad request means the message itself is unsendable (e.g. an
			// invalid recipient); retrying cannot help.
			return nil, &PermanentError{Reason: "message rejected by Gmail", Cause: err}
		}
		return nil, fmt.Errorf("failed to send message to %s: %w", req.To, err)
	}

	return &SendResult{
		MessageID:        sent.Id,
		ProviderThreadID: sent.ThreadId,
	}, nil
}

// ListUnread returns unread inbound messages matching the query, leaving
// them unread; callers decide what to do with unmatched mail
func (g *GmailTransport) ListUnread(ctx context.Context, query string) ([]types.InboundEmail, error) {
	q := "is:unread"
	if query != "" {
		q += " " + query
	}

	list, err := g.service.Users.Messages.List("me").Q(q).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list unread messages for %s: %w", g.accountID, err)
	}

	var emails []types.InboundEmail
	for _, ref := range list.Messages {
		full, err := g.service.Users.Messages.Get("me", ref.Id).Format("full").Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to fetch message %s: %w", ref.Id, err)
		}
		emails = append(emails, g.toInbound(full))
	}

	return emails, nil
}

// toInbound converts a Gmail message to the transport-neutral inbound shape
func (g *GmailTransport) toInbound(msg *gmail.Message) types.InboundEmail {
	email := types.InboundEmail{
		ProviderMessageID: msg.Id,
		ProviderThreadID:  msg.ThreadId,
		ReceivedAt:        time.UnixMilli(msg.InternalDate).UTC(),
	}

	if msg.Payload == nil {
		return email
	}

	for _, h := range msg.Payload.Headers {
		switch strings.ToLower(h.Name) {
		case "from":
			email.From = extractAddress(h.Value)
		case "to":
			email.To = extractAddress(h.Value)
		case "subject":
			email.Subject = h.Value
		}
	}

	body, html := extractBody(msg.Payload)
	email.Body = body
	email.HTML = html
	if email.HTML {
		email.Body = StripHTML(email.Body)
		email.HTML = false
	}

	return email
}

// extractBody walks the MIME tree preferring text/plain over text/html
func extractBody(part *gmail.MessagePart) (body string, html bool) {
	if part.Body != nil && part.Body.Data != "" {
		decoded, err := base64.URLEncoding.DecodeString(part.Body.Data)
		if err == nil {
			switch part.MimeType {
			case "text/plain":
				return string(decoded), false
			case "text/html":
				body, html = string(decoded), true
			}
		}
	}

	for _, child := range part.Parts {
		childBody, childHTML := extractBody(child)
		if childBody == "" {
			continue
		}
		if !childHTML {
			return childBody, false
		}
		if body == "" {
			body, html = childBody, true
		}
	}

	return body, html
}

// extractAddress pulls the bare address out of a "Name <addr>" header value
func extractAddress(header string) string {
	if start := strings.LastIndex(header, "<"); start >= 0 {
		if end := strings.LastIndex(header, ">"); end > start {
			return strings.TrimSpace(header[start+1 : end])
		}
	}
	return strings.TrimSpace(header)
}
