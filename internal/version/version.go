package version

import (
	"fmt"
	"runtime"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// AppInfo: ответ команды get_app_version.
type AppInfo struct {
	Version string `json:"version"`
	OS      string `json:"os"`
	Arch    string `json:"arch"`
}

// App возвращает версию сборки и платформу, на которой запущен процесс.
func App() AppInfo {
	return AppInfo{
		Version: version,
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}
}

// Info returns version information populated via -ldflags.
func Info() (v, c, d string) { return version, commit, date }

// Version возвращает только номер версии.
func Version() string { return version }

func String() string {
	return fmt.Sprintf("version=%s commit=%s date=%s os=%s arch=%s", version, commit, date, runtime.GOOS, runtime.GOARCH)
}
