package util

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

// StatusURL serve 命令的状态页地址
func StatusURL(port int) string {
	return fmt.Sprintf("http://localhost:%d/api/status", port)
}

// OpenStatusPage 在浏览器中打开状态页，返回打开的地址
func OpenStatusPage(port int) (string, error) {
	url := StatusURL(port)
	return url, openWith(launchers(runtime.GOOS, url), start)
}

// launchers 按优先级返回各平台打开地址的命令
func launchers(goos, url string) [][]string {
	switch goos {
	case "windows":
		// rundll32 在 Windows 7 上比 cmd /c start 稳定
		return [][]string{
			{"rundll32", "url.dll,FileProtocolHandler", url},
			{"explorer", url},
		}
	case "darwin":
		return [][]string{{"open", url}}
	default:
		cmds := [][]string{{"xdg-open", url}}
		for _, browser := range []string{"google-chrome", "firefox", "chromium-browser", "sensible-browser"} {
			cmds = append(cmds, []string{browser, url})
		}
		return cmds
	}
}

// openWith 依次尝试命令，直到有一个启动成功
func openWith(cmds [][]string, run func(args []string) error) error {
	var errs []error
	for _, args := range cmds {
		err := run(args)
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", args[0], err))
	}
	if len(errs) == 0 {
		return errors.New("no browser launcher for this platform")
	}
	return fmt.Errorf("failed to open browser: %w", errors.Join(errs...))
}

func start(args []string) error {
	return exec.Command(args[0], args[1:]...).Start()
}
