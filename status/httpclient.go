package status

import (
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	statusHTTPClientTimeout         = 10 * time.Second
	statusHTTPDialTimeout           = 5 * time.Second
	statusHTTPKeepAlive             = 30 * time.Second
	statusHTTPTLSHandshakeTimeout   = 5 * time.Second
	statusHTTPResponseHeaderTimeout = 10 * time.Second
	statusHTTPExpectContinueTimeout = 1 * time.Second
	statusHTTPIdleConnTimeout       = 90 * time.Second
)

var statusHTTPTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   statusHTTPDialTimeout,
		KeepAlive: statusHTTPKeepAlive,
	}).DialContext,
	TLSHandshakeTimeout:   statusHTTPTLSHandshakeTimeout,
	ResponseHeaderTimeout: statusHTTPResponseHeaderTimeout,
	ExpectContinueTimeout: statusHTTPExpectContinueTimeout,
	IdleConnTimeout:       statusHTTPIdleConnTimeout,
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout:   statusHTTPClientTimeout,
		Transport: statusHTTPTransport,
	}
}

func newRetryableHTTPClient(retryMax int) *http.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = retryMax
	retryClient.Logger = nil
	retryClient.HTTPClient = newHTTPClient()

	return retryClient.StandardClient()
}
