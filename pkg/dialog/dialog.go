// pkg/dialog/dialog.go - native yes/no and message dialogs.
//
// The installer is usually invoked from a file manager with no terminal
// attached, so prompts go through whichever GUI dialog tool the system
// has. The backend is probed once at startup: zenity first, kdialog
// second, terminal prompts as the last resort.

package dialog

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/linuxadmins/appman/pkg/logging"
)

// Dialogs is the prompt surface the installer depends on.
type Dialogs interface {
	// AskYesNo poses a yes/no question and reports the user's choice.
	AskYesNo(title, message string) bool
	// ShowInfo displays an informational message.
	ShowInfo(title, message string)
	// ShowError displays an error message.
	ShowError(title, message string)
}

// Detect probes the system for an available dialog backend.
func Detect() Dialogs {
	if path, err := exec.LookPath("zenity"); err == nil {
		logging.Debug("Using zenity dialogs", "path", path)
		return &zenityDialogs{bin: path}
	}
	if path, err := exec.LookPath("kdialog"); err == nil {
		logging.Debug("Using kdialog dialogs", "path", path)
		return &kdialogDialogs{bin: path}
	}
	logging.Debug("No GUI dialog tool found, using terminal prompts")
	return &consoleDialogs{}
}

type zenityDialogs struct {
	bin string
}

func (z *zenityDialogs) AskYesNo(title, message string) bool {
	cmd := exec.Command(z.bin, "--question",
		"--title", title,
		"--text", message,
		"--width", "400")
	// zenity exits 0 for yes, 1 for no.
	return cmd.Run() == nil
}

func (z *zenityDialogs) ShowInfo(title, message string) {
	if err := exec.Command(z.bin, "--info",
		"--title", title,
		"--text", message,
		"--width", "400").Run(); err != nil {
		logging.Debug("zenity info dialog failed", "error", err)
	}
}

func (z *zenityDialogs) ShowError(title, message string) {
	if err := exec.Command(z.bin, "--error",
		"--title", title,
		"--text", message,
		"--width", "400").Run(); err != nil {
		logging.Debug("zenity error dialog failed", "error", err)
	}
}

type kdialogDialogs struct {
	bin string
}

func (k *kdialogDialogs) AskYesNo(title, message string) bool {
	cmd := exec.Command(k.bin, "--title", title, "--yesno", message)
	return cmd.Run() == nil
}

func (k *kdialogDialogs) ShowInfo(title, message string) {
	if err := exec.Command(k.bin, "--title", title, "--msgbox", message).Run(); err != nil {
		logging.Debug("kdialog info dialog failed", "error", err)
	}
}

func (k *kdialogDialogs) ShowError(title, message string) {
	if err := exec.Command(k.bin, "--title", title, "--error", message).Run(); err != nil {
		logging.Debug("kdialog error dialog failed", "error", err)
	}
}

// consoleDialogs is the terminal fallback when no GUI tool exists.
type consoleDialogs struct{}

func (c *consoleDialogs) AskYesNo(title, message string) bool {
	fmt.Printf("%s\n%s\n[y/N]: ", title, message)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func (c *consoleDialogs) ShowInfo(title, message string) {
	fmt.Printf("%s\n%s\n", title, message)
}

func (c *consoleDialogs) ShowError(title, message string) {
	fmt.Fprintf(os.Stderr, "%s\n%s\n", title, message)
}
