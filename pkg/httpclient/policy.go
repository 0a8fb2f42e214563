package httpclient

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// maxRedirects matches net/http's default limit when redirects are followed.
const maxRedirects = 10

// RequestPolicy is the immutable per-request policy applied by a Client.
type RequestPolicy struct {
	ConnectTimeout           time.Duration `json:"connect_timeout"`
	ReadTimeout              time.Duration `json:"read_timeout"`
	PoolAcquireTimeout       time.Duration `json:"pool_acquire_timeout"`
	RedirectsEnabled         bool          `json:"redirects_enabled"`
	RelativeRedirectsAllowed bool          `json:"relative_redirects_allowed"`
}

// checkRedirect is installed as http.Client.CheckRedirect. Returning
// http.ErrUseLastResponse hands the 3xx response to the caller unread.
func (p RequestPolicy) checkRedirect(req *http.Request, via []*http.Request) error {
	if !p.RedirectsEnabled {
		return http.ErrUseLastResponse
	}

	if !p.RelativeRedirectsAllowed && req.Response != nil {
		if isRelativeLocation(req.Response.Header.Get("Location")) {
			return http.ErrUseLastResponse
		}
	}

	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	return nil
}

func isRelativeLocation(location string) bool {
	if location == "" {
		return false
	}
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return !u.IsAbs()
}
