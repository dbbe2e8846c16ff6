// Package mollom provides a client for the Mollom content moderation service.
// Requests are signed with the site's private key and sent over XML-RPC to
// one of several Mollom servers, failing over to the next server when one
// times out or reports that it is busy.
//
// Example usage:
//
//	cfg := mollom.NewConfig().WithKeys(publicKey, privateKey)
//	c, err := mollom.NewClient(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer c.Close()
//
//	if _, err := c.Bootstrap(ctx); err != nil {
//		log.Fatal(err)
//	}
//	res, err := c.CheckContent(ctx, mollom.ContentRequest{PostBody: body})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Spam: %s, quality: %.2f\n", res.Spam, res.Quality)
package mollom

import (
	"context"

	"github.com/mollom/mollomclient-go/client"
	"github.com/mollom/mollomclient-go/config"
	"github.com/mollom/mollomclient-go/protocol"
)

// Re-export commonly used types and functions
type (
	Config         = config.Config
	Client         = client.Client
	Option         = client.Option
	ContentRequest = client.ContentRequest
	ServerList     = client.ServerList
	ContentCheck   = protocol.ContentCheck
	Captcha        = protocol.Captcha
	SpamStatus     = protocol.SpamStatus
	StatisticsType = protocol.StatisticsType
	Feedback       = protocol.Feedback
)

// Re-export constructors
var (
	NewConfig     = config.NewConfig
	LoadConfig    = config.Load
	NewClient     = client.NewClient
	WithLogger    = client.WithLogger
	WithTransport = client.WithTransport
	AuthorIP      = client.AuthorIP
)

// Re-export spam classifications
const (
	SpamUnknown = protocol.SpamUnknown
	SpamHam     = protocol.SpamHam
	SpamSpam    = protocol.SpamSpam
	SpamUnsure  = protocol.SpamUnsure
)

// withClient runs fn with a client built from cfg. The server list is
// bootstrapped when cfg names no servers.
func withClient(ctx context.Context, cfg *Config, fn func(*Client) error) error {
	c, err := NewClient(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	if len(c.Servers()) == 0 {
		if _, err := c.Bootstrap(ctx); err != nil {
			return err
		}
	}
	return fn(c)
}

// CheckContent checks content with a one-off client.
//
// Example:
//
//	cfg := NewConfig().WithKeys(publicKey, privateKey)
//	res, err := CheckContent(ctx, cfg, ContentRequest{PostBody: "Buy cheap pills"})
//	if err != nil {
//		return err
//	}
//	if res.Spam == SpamSpam {
//		reject()
//	}
func CheckContent(ctx context.Context, cfg *Config, req ContentRequest) (*ContentCheck, error) {
	var out *ContentCheck
	err := withClient(ctx, cfg, func(c *Client) error {
		var err error
		out, err = c.CheckContent(ctx, req)
		return err
	})
	return out, err
}

// VerifyKey checks the configured keys with a one-off client
func VerifyKey(ctx context.Context, cfg *Config) (bool, error) {
	var ok bool
	err := withClient(ctx, cfg, func(c *Client) error {
		var err error
		ok, err = c.VerifyKey(ctx)
		return err
	})
	return ok, err
}

// SendFeedback reports a moderator verdict with a one-off client
func SendFeedback(ctx context.Context, cfg *Config, sessionID string, feedback Feedback) (bool, error) {
	var ok bool
	err := withClient(ctx, cfg, func(c *Client) error {
		var err error
		ok, err = c.SendFeedback(ctx, sessionID, feedback)
		return err
	})
	return ok, err
}
