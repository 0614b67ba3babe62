package probe

import "net/url"

// hostPortFromURL extracts a dialable "host:port" from rawURL, defaulting
// to 443 for https and 80 for http (or any other/no scheme) when no port
// is explicit.
func hostPortFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	if u.Port() != "" {
		return u.Hostname() + ":" + u.Port()
	}
	if u.Scheme == "https" {
		return u.Hostname() + ":443"
	}
	return u.Hostname() + ":80"
}
