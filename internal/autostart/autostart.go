// Package autostart starts the gesture service at login.
package autostart

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

// Label identifies the service to the OS launcher.
const Label = "com.trackpad.server"

// ErrUnsupported is returned on platforms without a login launcher.
var ErrUnsupported = errors.New("autostart is not supported on this platform")

var plistTemplate = template.Must(template.New("plist").Parse(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>{{.Label}}</string>
    <key>ProgramArguments</key>
    <array>
        <string>{{.ExecutablePath}}</string>
{{- range .Args}}
        <string>{{.}}</string>
{{- end}}
    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <false/>
</dict>
</plist>
`))

// renderPlist returns the LaunchAgent for the executable at path.
func renderPlist(path string, args []string) ([]byte, error) {
	var buf bytes.Buffer
	err := plistTemplate.Execute(&buf, struct {
		Label          string
		ExecutablePath string
		Args           []string
	}{Label, path, args})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// commandLine quotes path for the Windows Run key.
func commandLine(path string, args []string) string {
	line := `"` + path + `"`
	for _, a := range args {
		line += " " + a
	}
	return line
}

func plistPath(home string) string {
	return filepath.Join(home, "Library", "LaunchAgents", Label+".plist")
}

func executable() (string, error) {
	path, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	return path, nil
}
