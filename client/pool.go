package client

import (
	"strings"
	"sync"

	"github.com/mollom/mollomclient-go/errors"
)

// ServerList is an immutable, ordered snapshot of candidate hosts
type ServerList []string

// Next returns the host for the given attempt counter
func (l ServerList) Next(counter int) (string, error) {
	if counter < 0 || counter >= len(l) {
		return "", errors.NewExhaustedServersError(counter, nil)
	}
	return l[counter], nil
}

// ServerPool holds the current server list. Mutations replace the list so
// that snapshots handed to in-flight calls never change.
type ServerPool struct {
	mu    sync.RWMutex
	hosts ServerList
}

// NewServerPool creates a pool with the given hosts
func NewServerPool(hosts ...string) *ServerPool {
	return &ServerPool{hosts: normalizeHosts(hosts)}
}

// Snapshot returns the current list
func (p *ServerPool) Snapshot() ServerList {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.hosts
}

// Len returns the number of hosts in the pool
func (p *ServerPool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.hosts)
}

// Append adds hosts after the existing ones
func (p *ServerPool) Append(hosts ...string) {
	add := normalizeHosts(hosts)
	p.mu.Lock()
	defer p.mu.Unlock()
	next := make(ServerList, 0, len(p.hosts)+len(add))
	next = append(next, p.hosts...)
	p.hosts = append(next, add...)
}

// Replace swaps the whole list
func (p *ServerPool) Replace(hosts []string) {
	next := normalizeHosts(hosts)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hosts = next
}

// normalizeHost strips the scheme and trailing slashes the service sometimes
// includes in its server list.
func normalizeHost(host string) string {
	host = strings.TrimSpace(host)
	host = strings.TrimPrefix(host, "http://")
	host = strings.TrimPrefix(host, "https://")
	return strings.TrimRight(host, "/")
}

func normalizeHosts(hosts []string) ServerList {
	out := make(ServerList, 0, len(hosts))
	for _, h := range hosts {
		if h = normalizeHost(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}
