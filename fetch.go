// Share-link fetching. Chat share pages sit behind bot detection, so HTTPS
// requests go out with a browser TLS fingerprint (uTLS) and are routed to
// HTTP/1.1 or HTTP/2 based on ALPN.
package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

const defaultUA = "Mozilla/5.0 (X11; Linux x86_64; rv:133.0) Gecko/20100101 Firefox/133.0"

// maxResponseBytes caps how much of any HTTP response body is read.
// 0 means unlimited.
var maxResponseBytes int64 = 64 * 1024 * 1024

// fetchProxyURL routes all requests through an HTTP proxy when non-empty.
// Proxied requests use standard TLS; uTLS cannot negotiate CONNECT tunnels.
var fetchProxyURL string

func humanSize(n int64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	f := float64(n)
	for _, u := range units {
		if math.Abs(f) < 1024 {
			return fmt.Sprintf("%.1f%s", f, u)
		}
		f /= 1024
	}
	return fmt.Sprintf("%.1f%s", f, units[len(units)-1])
}

// readLimited reads up to limit bytes from r, erroring if the body is
// larger. limit <= 0 reads everything.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("response body exceeds maximum allowed size (%s)", humanSize(limit))
	}
	return data, nil
}

// newPlainClient creates a standard-TLS client, optionally proxied.
func newPlainClient(proxyAddr string, timeout time.Duration) *http.Client {
	transport := &http.Transport{
		DialContext: safeDialContext(&net.Dialer{Timeout: timeout}),
	}
	if proxyAddr != "" {
		if proxyURL, err := url.Parse(proxyAddr); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// utlsConn adapts a utls.UConn to the ConnectionState interface net/http2
// expects from a net.Conn.
type utlsConn struct {
	*utls.UConn
}

func (c *utlsConn) ConnectionState() tls.ConnectionState {
	cs := c.UConn.ConnectionState()
	return tls.ConnectionState{
		Version:                    cs.Version,
		HandshakeComplete:          cs.HandshakeComplete,
		CipherSuite:                cs.CipherSuite,
		NegotiatedProtocol:         cs.NegotiatedProtocol,
		NegotiatedProtocolIsMutual: cs.NegotiatedProtocolIsMutual,
		ServerName:                 cs.ServerName,
		PeerCertificates:           cs.PeerCertificates,
		VerifiedChains:             cs.VerifiedChains,
		OCSPResponse:               cs.OCSPResponse,
		TLSUnique:                  cs.TLSUnique,
	}
}

// fingerprintTransport dials with uTLS and routes each request to an
// HTTP/1.1 or HTTP/2 transport based on the negotiated ALPN protocol.
type fingerprintTransport struct {
	dialer *net.Dialer
	h1     *http.Transport
	h2     *http2.Transport
}

// newBrowserClient creates an HTTP client presenting a Firefox TLS
// fingerprint.
func newBrowserClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: timeout}
	rt := &fingerprintTransport{
		dialer: dialer,
		h1:     &http.Transport{DialContext: safeDialContext(dialer)},
		h2:     &http2.Transport{},
	}
	return &http.Client{Timeout: timeout, Transport: rt}
}

func (ft *fingerprintTransport) dialUTLS(ctx context.Context, network, addr string) (net.Conn, string, error) {
	conn, err := safeDialContext(ft.dialer)(ctx, network, addr)
	if err != nil {
		return nil, "", err
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	tlsConn := utls.UClient(conn, &utls.Config{ServerName: host}, utls.HelloFirefox_120)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, "", err
	}

	return &utlsConn{tlsConn}, tlsConn.ConnectionState().NegotiatedProtocol, nil
}

func (ft *fingerprintTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		return ft.h1.RoundTrip(req)
	}

	addr := req.URL.Host
	if !hasPort(addr) {
		addr += ":443"
	}

	conn, alpn, err := ft.dialUTLS(req.Context(), "tcp", addr)
	if err != nil {
		return nil, err
	}

	if alpn == "h2" {
		h2conn, err := ft.h2.NewClientConn(conn)
		if err != nil {
			conn.Close()
			return nil, err
		}
		return h2conn.RoundTrip(req)
	}

	// HTTP/1.1: hand the established TLS conn to a one-shot transport.
	oneShot := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return conn, nil
		},
	}
	return oneShot.RoundTrip(req)
}

func hasPort(host string) bool {
	_, _, err := net.SplitHostPort(host)
	return err == nil
}

// fetchHTML downloads a share URL and returns the HTML body and parsed URL.
func fetchHTML(rawURL string, timeout time.Duration, userAgent string) ([]byte, *url.URL, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	var client *http.Client
	switch {
	case fetchProxyURL != "":
		client = newPlainClient(fetchProxyURL, timeout)
	case parsed.Scheme == "https":
		client = newBrowserClient(timeout)
	default:
		client = newPlainClient("", timeout)
	}

	req, err := http.NewRequest("GET", rawURL, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, rawURL)
	}

	body, err := readLimited(resp.Body, maxResponseBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("reading response: %w", err)
	}

	fmt.Fprintf(logOut, "Fetched %s (%s)\n", rawURL, humanSize(int64(len(body))))
	return body, parsed, nil
}
