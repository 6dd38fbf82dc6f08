// Package version exposes build metadata for the gochip8 executable.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

// Set at build time, for example:
//
//	go build -ldflags "-X gochip8/internal/version.Version=v1.2.0"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info is the resolved build metadata
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Current resolves build metadata, preferring ldflags values and falling
// back to the VCS stamps Go embeds in module builds
func Current() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}

	if build, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range build.Settings {
			switch setting.Key {
			case "vcs.revision":
				if info.Commit == "unknown" {
					info.Commit = setting.Value
				}
			case "vcs.time":
				if info.Date == "unknown" {
					info.Date = setting.Value
				}
			}
		}
	}

	return info
}

// Short returns a compact version string for window titles and logs
func (i Info) Short() string {
	if i.Version == "dev" && i.Commit != "unknown" && len(i.Commit) >= 7 {
		return fmt.Sprintf("dev-%s", i.Commit[:7])
	}
	return i.Version
}

// String formats the metadata as a single line
func (i Info) String() string {
	s := fmt.Sprintf("gochip8 %s", i.Short())
	if i.Date != "unknown" {
		if t, err := time.Parse(time.RFC3339, i.Date); err == nil {
			s += fmt.Sprintf(" built %s", t.Format("2006-01-02"))
		} else {
			s += fmt.Sprintf(" built %s", i.Date)
		}
	}
	return s + fmt.Sprintf(" %s %s", i.GoVersion, i.Platform)
}

// PrintBuildInfo prints the formatted build metadata block
func PrintBuildInfo() {
	info := Current()

	fmt.Println("gochip8 - Go CHIP-8 Emulator")
	fmt.Printf("Version:    %s\n", info.Short())
	fmt.Printf("Commit:     %s\n", info.Commit)
	fmt.Printf("Built:      %s\n", info.Date)
	fmt.Printf("Go Version: %s\n", info.GoVersion)
	fmt.Printf("Platform:   %s\n", info.Platform)
}
