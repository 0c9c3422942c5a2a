// Package browser launches the platform's web portal in the local default
// browser.
package browser

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Open opens url in the user's default browser. A BROWSER environment
// variable takes precedence over the platform launcher.
func Open(url string) error {
	if launcher := os.Getenv("BROWSER"); launcher != "" {
		return exec.Command(launcher, url).Start()
	}
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", url).Start()
	default:
		return fmt.Errorf("no browser launcher for %s", runtime.GOOS)
	}
}
