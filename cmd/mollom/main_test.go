package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder keeps the method names a test server received
type recorder struct {
	mu      sync.Mutex
	methods []string
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.methods...)
}

func newServer(t *testing.T) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		start := strings.Index(string(body), "<methodName>") + len("<methodName>")
		end := strings.Index(string(body), "</methodName>")
		method := string(body[start:end])
		rec.mu.Lock()
		rec.methods = append(rec.methods, method)
		rec.mu.Unlock()
		value := `<boolean>1</boolean>`
		if method == "mollom.getServerList" {
			value = `<array><data><value><string>http://` + r.Host + `</string></value></data></array>`
		}
		_, _ = w.Write([]byte(`<?xml version="1.0"?><methodResponse><params><param>` +
			`<value>` + value + `</value></param></params></methodResponse>`))
	}))
	t.Cleanup(server.Close)
	return server, rec
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	opts.servers = nil
	rootCmd.SetArgs(args)
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	return rootCmd.Execute()
}

func TestVerifyKeyCommand(t *testing.T) {
	t.Setenv("MOLLOM_PUBLIC_KEY", "public")
	t.Setenv("MOLLOM_PRIVATE_KEY", "private")
	server, rec := newServer(t)

	require.NoError(t, execute(t, "--server", server.URL, "verify-key"))
	assert.Equal(t, []string{"mollom.verifyKey"}, rec.get())
}

func TestServersCommandBootstrapsOnce(t *testing.T) {
	t.Setenv("MOLLOM_PUBLIC_KEY", "public")
	t.Setenv("MOLLOM_PRIVATE_KEY", "private")
	server, rec := newServer(t)
	t.Setenv("MOLLOM_BOOTSTRAP_HOST", server.URL)

	require.NoError(t, execute(t, "servers"))
	assert.Equal(t, []string{"mollom.getServerList"}, rec.get())
}

func TestVerifyKeyCommandBootstraps(t *testing.T) {
	t.Setenv("MOLLOM_PUBLIC_KEY", "public")
	t.Setenv("MOLLOM_PRIVATE_KEY", "private")
	server, rec := newServer(t)
	t.Setenv("MOLLOM_BOOTSTRAP_HOST", server.URL)

	require.NoError(t, execute(t, "verify-key"))
	assert.Equal(t, []string{"mollom.getServerList", "mollom.verifyKey"}, rec.get())
}

func TestFeedbackCommandRejectsUnknownVerdict(t *testing.T) {
	t.Setenv("MOLLOM_PUBLIC_KEY", "public")
	t.Setenv("MOLLOM_PRIVATE_KEY", "private")
	server, rec := newServer(t)

	err := execute(t, "--server", server.URL, "feedback", "s1", "rude")
	assert.ErrorContains(t, err, "invalid feedback")
	assert.Empty(t, rec.get())
}

func TestCaptchaCommandValidatesKind(t *testing.T) {
	err := execute(t, "captcha", "video")
	assert.Error(t, err)
}

func TestMissingKeys(t *testing.T) {
	t.Setenv("MOLLOM_PUBLIC_KEY", "")
	t.Setenv("MOLLOM_PRIVATE_KEY", "")
	server, rec := newServer(t)

	err := execute(t, "--server", server.URL, "verify-key")
	assert.Error(t, err)
	assert.Empty(t, rec.get())
}

func TestStatisticsTypeList(t *testing.T) {
	assert.True(t, strings.HasPrefix(statisticsTypeList(), "total_days, total_accepted"))
}
