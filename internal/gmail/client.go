package gmail

import (
	"context"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/inboxchat/internal/google"
)

// maxPageSize is the largest page the Gmail list endpoint returns.
const maxPageSize = 100

// Client wraps the Gmail users service of one account.
type Client struct {
	svc     *gmail.UsersService
	account string
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// NewClient creates a Gmail client for account using tokens from provider.
// Extra options are passed to the Gmail service, after the authenticated
// HTTP client.
func NewClient(ctx context.Context, provider google.TokenProvider, account string, opts ...option.ClientOption) (*Client, error) {
	if !provider.HasTokenForAccount(account) {
		return nil, fmt.Errorf("%s", google.GetAuthenticationErrorMessage(account))
	}

	httpClient, err := provider.HTTPClient(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w", account, err)
	}

	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return NewClientWithService(svc, account), nil
}

// NewClientWithService wraps an existing Gmail service.
func NewClientWithService(svc *gmail.Service, account string) *Client {
	return &Client{svc: svc.Users, account: account}
}

// ListMessageIDs returns the ids of up to maxResults messages matching q,
// newest first, following page tokens as needed.
func (c *Client) ListMessageIDs(ctx context.Context, q string, maxResults int64) ([]string, error) {
	var ids []string
	pageToken := ""

	for {
		remaining := maxResults - int64(len(ids))
		if remaining <= 0 {
			break
		}

		pageSize := remaining
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}

		req := c.svc.Messages.List("me").MaxResults(pageSize).Context(ctx)
		if q != "" {
			req = req.Q(q)
		}
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		res, err := req.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list messages for %s: %w", c.account, err)
		}

		for _, m := range res.Messages {
			ids = append(ids, m.Id)
		}

		if res.NextPageToken == "" {
			break
		}
		pageToken = res.NextPageToken
	}

	if int64(len(ids)) > maxResults {
		ids = ids[:maxResults]
	}
	return ids, nil
}

// GetMessageMetadata fetches labels, snippet and the headers the
// assistant shows for one message.
func (c *Client) GetMessageMetadata(ctx context.Context, id string) (*gmail.Message, error) {
	msg, err := c.svc.Messages.Get("me", id).
		Format("metadata").
		MetadataHeaders("From", "Subject", "Date").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}
	return msg, nil
}
