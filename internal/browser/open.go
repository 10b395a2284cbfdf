// Package browser hands URLs to the operating system's default browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

var start = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Open opens the specified URL in the user's default browser.
func Open(rawURL string) error {
	switch runtime.GOOS {
	case "darwin":
		return start("open", rawURL)
	case "linux", "freebsd", "openbsd":
		return start("xdg-open", rawURL)
	case "windows":
		return start("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
}

// EndpointURL joins an API base URL and a distribution path such as
// /feeds/{name} or /taxii2/api1/collections/. path must already be escaped.
func EndpointURL(base, path string) (string, error) {
	if !strings.HasPrefix(path, "/") {
		return "", fmt.Errorf("browser.EndpointURL: path %q must start with /", path)
	}
	target := strings.TrimRight(base, "/") + path
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("browser.EndpointURL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("browser.EndpointURL: %q is not an http(s) URL", base)
	}
	return u.String(), nil
}

// OpenEndpoint opens a distribution endpoint of the backend at base.
func OpenEndpoint(base, path string) (string, error) {
	target, err := EndpointURL(base, path)
	if err != nil {
		return "", err
	}
	return target, Open(target)
}
