package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/mollom/mollomclient-go/errors"
	"github.com/mollom/mollomclient-go/protocol"
)

// Bootstrap fetches the server list from the bootstrap host and replaces the
// pool with it. Timeouts are retried with exponential backoff up to
// Config.BootstrapRetries extra times.
func (c *Client) Bootstrap(ctx context.Context) (ServerList, error) {
	if !c.config.HasCredentials() {
		return nil, errors.NewConfigError("public and private key must be set").WithMethod(string(protocol.GetServerList))
	}

	var servers []string
	op := func() error {
		v, err := c.CallHost(ctx, c.config.BootstrapHost, protocol.GetServerList, protocol.Struct())
		if err != nil {
			if errors.IsType(err, errors.ExhaustedServersError) {
				return err
			}
			return backoff.Permanent(err)
		}
		servers, err = protocol.ExpectStringArray(string(protocol.GetServerList), v)
		if err != nil {
			return backoff.Permanent(decodeError(protocol.GetServerList, err))
		}
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.config.BootstrapRetries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		if _, ok := errors.AsMollomError(err); !ok {
			// backoff reports a cancelled wait with the bare context error
			return nil, errors.NewReadError(c.config.BootstrapHost, err).WithMethod(string(protocol.GetServerList))
		}
		return nil, err
	}

	list := normalizeHosts(servers)
	if len(list) == 0 {
		return nil, errors.NewMalformedResponseError("server list is empty", nil).WithMethod(string(protocol.GetServerList))
	}
	c.pool.Replace(list)
	c.logger.Info("server list updated", zap.Strings("servers", list))
	return c.pool.Snapshot(), nil
}

// VerifyKey reports whether the configured keys are enabled
func (c *Client) VerifyKey(ctx context.Context) (bool, error) {
	v, err := c.Call(ctx, protocol.VerifyKey, protocol.Struct())
	if err != nil {
		return false, err
	}
	ok, err := protocol.ExpectBool(string(protocol.VerifyKey), v)
	if err != nil {
		return false, decodeError(protocol.VerifyKey, err)
	}
	return ok, nil
}

// ContentRequest holds the data submitted to checkContent. Empty fields are
// not sent; at least one must be set.
type ContentRequest struct {
	// Mollom session id from a previous call, not an HTTP session
	SessionID    string
	PostTitle    string
	PostBody     string
	AuthorName   string
	AuthorURL    string
	AuthorEmail  string
	AuthorOpenID string
	AuthorID     string
	AuthorIP     string
}

func (r *ContentRequest) params() (protocol.Value, error) {
	var members []protocol.Member
	add := func(name, value string) {
		if value != "" {
			members = append(members, protocol.Member{Name: name, Value: protocol.String(value)})
		}
	}
	add("session_id", r.SessionID)
	add("post_title", r.PostTitle)
	add("post_body", r.PostBody)
	add("author_name", r.AuthorName)
	add("author_url", r.AuthorURL)
	add("author_mail", r.AuthorEmail)
	add("author_openid", r.AuthorOpenID)
	add("author_id", r.AuthorID)
	if len(members) == 0 {
		return protocol.Value{}, errors.NewInvalidArgumentError("specify at least one content field").
			WithMethod(string(protocol.CheckContent))
	}
	add("author_ip", r.AuthorIP)
	return protocol.Struct(members...), nil
}

// CheckContent classifies content and assesses its quality
func (c *Client) CheckContent(ctx context.Context, req ContentRequest) (*protocol.ContentCheck, error) {
	params, err := req.params()
	if err != nil {
		return nil, err
	}
	v, err := c.Call(ctx, protocol.CheckContent, params)
	if err != nil {
		return nil, err
	}
	out, err := protocol.DecodeContentCheck(v)
	if err != nil {
		return nil, decodeError(protocol.CheckContent, err)
	}
	return out, nil
}

// CheckCaptcha validates a CAPTCHA answer for the given Mollom session
func (c *Client) CheckCaptcha(ctx context.Context, sessionID, solution, authorIP string) (bool, error) {
	members := []protocol.Member{
		{Name: "session_id", Value: protocol.String(sessionID)},
		{Name: "solution", Value: protocol.String(solution)},
	}
	if authorIP != "" {
		members = append(members, protocol.Member{Name: "author_ip", Value: protocol.String(authorIP)})
	}
	v, err := c.Call(ctx, protocol.CheckCaptcha, protocol.Struct(members...))
	if err != nil {
		return false, err
	}
	ok, err := protocol.ExpectBool(string(protocol.CheckCaptcha), v)
	if err != nil {
		return false, decodeError(protocol.CheckCaptcha, err)
	}
	return ok, nil
}

// GetImageCaptcha requests an image CAPTCHA. Pass the current session id
// when asking for a new CAPTCHA after a failed answer.
func (c *Client) GetImageCaptcha(ctx context.Context, sessionID, authorIP string) (*protocol.Captcha, error) {
	return c.getCaptcha(ctx, protocol.ImageCaptcha, sessionID, authorIP)
}

// GetAudioCaptcha requests an mp3 CAPTCHA
func (c *Client) GetAudioCaptcha(ctx context.Context, sessionID, authorIP string) (*protocol.Captcha, error) {
	return c.getCaptcha(ctx, protocol.AudioCaptcha, sessionID, authorIP)
}

func (c *Client) getCaptcha(ctx context.Context, kind protocol.CaptchaKind, sessionID, authorIP string) (*protocol.Captcha, error) {
	method := protocol.GetImageCaptcha
	if kind == protocol.AudioCaptcha {
		method = protocol.GetAudioCaptcha
	}
	var members []protocol.Member
	if sessionID != "" {
		members = append(members, protocol.Member{Name: "session_id", Value: protocol.String(sessionID)})
	}
	if authorIP != "" {
		members = append(members, protocol.Member{Name: "author_ip", Value: protocol.String(authorIP)})
	}
	v, err := c.Call(ctx, method, protocol.Struct(members...))
	if err != nil {
		return nil, err
	}
	out, err := protocol.DecodeCaptcha(kind, v)
	if err != nil {
		return nil, decodeError(method, err)
	}
	return out, nil
}

// GetStatistics returns one usage counter
func (c *Client) GetStatistics(ctx context.Context, typ protocol.StatisticsType) (int64, error) {
	if !typ.Valid() {
		return 0, errors.NewInvalidArgumentError(fmt.Sprintf("invalid type %q, only %s are possible types",
			typ, joinStatisticsTypes())).WithMethod(string(protocol.GetStatistics))
	}
	v, err := c.Call(ctx, protocol.GetStatistics, protocol.Struct(
		protocol.Member{Name: "type", Value: protocol.String(string(typ))},
	))
	if err != nil {
		return 0, err
	}
	n, err := protocol.ExpectInt(string(protocol.GetStatistics), v)
	if err != nil {
		return 0, decodeError(protocol.GetStatistics, err)
	}
	return n, nil
}

// SendFeedback reports a moderator verdict for a Mollom session
func (c *Client) SendFeedback(ctx context.Context, sessionID string, feedback protocol.Feedback) (bool, error) {
	if !feedback.Valid() {
		names := make([]string, len(protocol.Feedbacks))
		for i, f := range protocol.Feedbacks {
			names[i] = string(f)
		}
		return false, errors.NewInvalidArgumentError(fmt.Sprintf("invalid feedback %q, only %s are possible",
			feedback, strings.Join(names, ", "))).WithMethod(string(protocol.SendFeedback))
	}
	v, err := c.Call(ctx, protocol.SendFeedback, protocol.Struct(
		protocol.Member{Name: "session_id", Value: protocol.String(sessionID)},
		protocol.Member{Name: "feedback", Value: protocol.String(string(feedback))},
	))
	if err != nil {
		return false, err
	}
	ok, err := protocol.ExpectBool(string(protocol.SendFeedback), v)
	if err != nil {
		return false, decodeError(protocol.SendFeedback, err)
	}
	return ok, nil
}

func decodeError(method protocol.Method, err error) error {
	return errors.NewMalformedResponseError(err.Error(), err).WithMethod(string(method))
}

func joinStatisticsTypes() string {
	names := make([]string, len(protocol.StatisticsTypes))
	for i, t := range protocol.StatisticsTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
