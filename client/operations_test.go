package client

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mollom/mollomclient-go/config"
	"github.com/mollom/mollomclient-go/errors"
	"github.com/mollom/mollomclient-go/protocol"
)

func contentResponse(spam int) string {
	return resultResponse(`<struct>` +
		`<member><name>spam</name><value><int>` + strconv.Itoa(spam) + `</int></value></member>` +
		`<member><name>quality</name><value><double>0.9</double></value></member>` +
		`<member><name>session_id</name><value><string>s42</string></value></member>` +
		`</struct>`)
}

func answer(body string) *fakeTransport {
	return &fakeTransport{handle: func(string, int) (string, error) { return body, nil }}
}

func TestCheckContent(t *testing.T) {
	testCases := []struct {
		code int
		want protocol.SpamStatus
	}{
		{1, protocol.SpamHam},
		{2, protocol.SpamSpam},
		{3, protocol.SpamUnsure},
	}
	for _, tc := range testCases {
		t.Run(tc.want.String(), func(t *testing.T) {
			tr := answer(contentResponse(tc.code))
			c := newTestClient(t, testConfig("a.example"), tr)

			res, err := c.CheckContent(context.Background(), ContentRequest{PostTitle: "Hi", PostBody: "Buy now"})
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.Spam)
			assert.Equal(t, 0.9, res.Quality)
			assert.Equal(t, "s42", res.SessionID)
		})
	}
}

func TestCheckContentParams(t *testing.T) {
	tr := answer(contentResponse(1))
	c := newTestClient(t, testConfig("a.example"), tr)

	_, err := c.CheckContent(context.Background(), ContentRequest{
		SessionID:   "s1",
		PostBody:    "body",
		AuthorName:  "Dries",
		AuthorURL:   "http://buytaert.net",
		AuthorEmail: "dries@example.com",
		AuthorIP:    "192.0.2.1",
	})
	require.NoError(t, err)

	method, params := decodeCall(t, tr.bodies[0])
	assert.Equal(t, "mollom.checkContent", method)
	assert.Equal(t, "s1", memberString(t, params, "session_id"))
	assert.Equal(t, "body", memberString(t, params, "post_body"))
	assert.Equal(t, "Dries", memberString(t, params, "author_name"))
	assert.Equal(t, "http://buytaert.net", memberString(t, params, "author_url"))
	assert.Equal(t, "dries@example.com", memberString(t, params, "author_mail"))
	assert.Equal(t, "192.0.2.1", memberString(t, params, "author_ip"))

	_, ok := params.Member("post_title")
	assert.False(t, ok, "empty fields are not sent")
}

func TestCheckContentRequiresContent(t *testing.T) {
	tr := answer(contentResponse(1))
	c := newTestClient(t, testConfig("a.example"), tr)

	_, err := c.CheckContent(context.Background(), ContentRequest{AuthorIP: "192.0.2.1"})
	assert.True(t, errors.IsType(err, errors.InvalidArgumentError))
	assert.Empty(t, tr.calls())
}

func TestCheckContentBadResult(t *testing.T) {
	tr := answer(resultResponse(`<struct><member><name>spam</name><value><string>2</string></value></member></struct>`))
	c := newTestClient(t, testConfig("a.example"), tr)

	_, err := c.CheckContent(context.Background(), ContentRequest{PostBody: "x"})
	me, ok := errors.AsMollomError(err)
	require.True(t, ok)
	assert.Equal(t, errors.MalformedResponseError, me.Type)
	assert.Equal(t, string(protocol.CheckContent), me.Method)
}

func TestCheckCaptcha(t *testing.T) {
	tr := answer(boolResponse(true))
	c := newTestClient(t, testConfig("a.example"), tr)

	ok, err := c.CheckCaptcha(context.Background(), "s1", "correct", "")
	require.NoError(t, err)
	assert.True(t, ok)

	method, params := decodeCall(t, tr.bodies[0])
	assert.Equal(t, "mollom.checkCaptcha", method)
	assert.Equal(t, "s1", memberString(t, params, "session_id"))
	assert.Equal(t, "correct", memberString(t, params, "solution"))
	_, found := params.Member("author_ip")
	assert.False(t, found)
}

func TestGetCaptcha(t *testing.T) {
	tr := answer(resultResponse(`<struct>` +
		`<member><name>session_id</name><value><string>s9</string></value></member>` +
		`<member><name>url</name><value><string>http://xmlrpc1.mollom.com/s9.png</string></value></member>` +
		`</struct>`))
	c := newTestClient(t, testConfig("a.example"), tr)

	img, err := c.GetImageCaptcha(context.Background(), "", "192.0.2.1")
	require.NoError(t, err)
	assert.Equal(t, protocol.ImageCaptcha, img.Kind)
	assert.Equal(t, "s9", img.SessionID)
	assert.Equal(t, "http://xmlrpc1.mollom.com/s9.png", img.URL)

	audio, err := c.GetAudioCaptcha(context.Background(), "s9", "")
	require.NoError(t, err)
	assert.Equal(t, protocol.AudioCaptcha, audio.Kind)

	method, params := decodeCall(t, tr.bodies[0])
	assert.Equal(t, "mollom.getImageCaptcha", method)
	assert.Equal(t, "192.0.2.1", memberString(t, params, "author_ip"))
	_, found := params.Member("session_id")
	assert.False(t, found)

	method, params = decodeCall(t, tr.bodies[1])
	assert.Equal(t, "mollom.getAudioCaptcha", method)
	assert.Equal(t, "s9", memberString(t, params, "session_id"))
}

func TestGetStatistics(t *testing.T) {
	tr := answer(resultResponse("<int>1234</int>"))
	c := newTestClient(t, testConfig("a.example"), tr)

	n, err := c.GetStatistics(context.Background(), protocol.TotalAccepted)
	require.NoError(t, err)
	assert.Equal(t, int64(1234), n)

	_, params := decodeCall(t, tr.bodies[0])
	assert.Equal(t, "total_accepted", memberString(t, params, "type"))

	_, err = c.GetStatistics(context.Background(), "forever")
	assert.True(t, errors.IsType(err, errors.InvalidArgumentError))
	assert.ErrorContains(t, err, "today_rejected")
	assert.Len(t, tr.calls(), 1)
}

func TestSendFeedback(t *testing.T) {
	tr := answer(boolResponse(true))
	c := newTestClient(t, testConfig("a.example"), tr)

	ok, err := c.SendFeedback(context.Background(), "s1", protocol.FeedbackProfanity)
	require.NoError(t, err)
	assert.True(t, ok)

	_, params := decodeCall(t, tr.bodies[0])
	assert.Equal(t, "profanity", memberString(t, params, "feedback"))

	_, err = c.SendFeedback(context.Background(), "s1", "rude")
	assert.True(t, errors.IsType(err, errors.InvalidArgumentError))
	assert.Len(t, tr.calls(), 1)
}

const serverListResponse = `<?xml version="1.0"?><methodResponse><params><param><value><array><data>` +
	`<value><string>http://xmlrpc1.mollom.com</string></value>` +
	`<value><string>http://xmlrpc2.mollom.com/</string></value>` +
	`</data></array></value></param></params></methodResponse>`

func TestBootstrap(t *testing.T) {
	tr := answer(serverListResponse)
	c := newTestClient(t, testConfig("stale.example"), tr)

	servers, err := c.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ServerList{"xmlrpc1.mollom.com", "xmlrpc2.mollom.com"}, servers)
	assert.Equal(t, servers, c.Servers())
	assert.Equal(t, []string{config.DefaultBootstrapHost}, tr.calls())

	method, _ := decodeCall(t, tr.bodies[0])
	assert.Equal(t, "mollom.getServerList", method)
}

func TestBootstrapRetriesTimeouts(t *testing.T) {
	tr := &fakeTransport{handle: func(host string, attempt int) (string, error) {
		if attempt < 3 {
			return "", timeout(host)
		}
		return serverListResponse, nil
	}}
	c := newTestClient(t, testConfig().WithBootstrapRetries(2), tr)

	servers, err := c.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.Len(t, servers, 2)
	assert.Len(t, tr.calls(), 3)
}

func TestBootstrapGivesUp(t *testing.T) {
	tr := &fakeTransport{handle: func(host string, _ int) (string, error) { return "", timeout(host) }}
	c := newTestClient(t, testConfig("a.example").WithBootstrapRetries(1), tr)

	_, err := c.Bootstrap(context.Background())
	assert.True(t, errors.IsType(err, errors.ExhaustedServersError), "got %v", err)
	assert.Len(t, tr.calls(), 2)
	assert.Equal(t, ServerList{"a.example"}, c.Servers())
}

func TestBootstrapFaultIsNotRetried(t *testing.T) {
	tr := answer(faultResponse(protocol.FaultInternal, "Internal error"))
	c := newTestClient(t, testConfig().WithBootstrapRetries(3), tr)

	_, err := c.Bootstrap(context.Background())
	assert.True(t, errors.IsType(err, errors.ServiceFaultError))
	assert.Len(t, tr.calls(), 1)
}

func TestBootstrapEmptyList(t *testing.T) {
	tr := answer(resultResponse("<array><data></data></array>"))
	c := newTestClient(t, testConfig("a.example"), tr)

	_, err := c.Bootstrap(context.Background())
	assert.True(t, errors.IsType(err, errors.MalformedResponseError))
	assert.Equal(t, ServerList{"a.example"}, c.Servers())
}

func TestBootstrapCustomHost(t *testing.T) {
	tr := answer(serverListResponse)
	c := newTestClient(t, testConfig().WithBootstrapHost("http://bootstrap.example/"), tr)

	_, err := c.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"bootstrap.example"}, tr.calls())
}

func TestBootstrapCanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr := &fakeTransport{handle: func(host string, _ int) (string, error) {
		cancel()
		return "", timeout(host)
	}}
	c := newTestClient(t, testConfig("a.example").WithBootstrapRetries(3), tr)

	_, err := c.Bootstrap(ctx)
	me, ok := errors.AsMollomError(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, errors.ReadError, me.Type)
	assert.Equal(t, string(protocol.GetServerList), me.Method)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, tr.calls(), 1)
	assert.Equal(t, ServerList{"a.example"}, c.Servers())
}
