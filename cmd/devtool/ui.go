package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true).MarginTop(1)
)

func printStyled(style lipgloss.Style, symbol, format string, a ...interface{}) {
	fmt.Println(style.Render(symbol + " " + fmt.Sprintf(format, a...)))
}

func PrintInfo(format string, a ...interface{})    { printStyled(infoStyle, "ℹ", format, a...) }
func PrintSuccess(format string, a ...interface{}) { printStyled(successStyle, "✓", format, a...) }
func PrintWarning(format string, a ...interface{}) { printStyled(warningStyle, "⚠", format, a...) }
func PrintError(format string, a ...interface{})   { printStyled(errorStyle, "✗", format, a...) }

func PrintHeader(title string) {
	fmt.Println(headerStyle.Render("=== " + title + " ==="))
}

// blockedPatterns split or redirect commands if an argument ever reaches a shell.
// '&' and ';' stay allowed so URLs and SQL pass through.
var blockedPatterns = []string{"|", "`", "$(", "&&", "||", ">", "<"}

// checkHostile rejects arguments carrying shell injection patterns.
func checkHostile(inputs ...string) error {
	for _, s := range inputs {
		if strings.ContainsAny(s, "\n\r") {
			return fmt.Errorf("hostile input detected: newlines or carriage returns")
		}
		if strings.Contains(s, "\x00") {
			return fmt.Errorf("hostile input detected: null byte")
		}
		for _, p := range blockedPatterns {
			if strings.Contains(s, p) {
				return fmt.Errorf("hostile input detected: pattern %q in %q", p, s)
			}
		}
	}
	return nil
}

func command(name string, args ...string) (*exec.Cmd, error) {
	if err := checkHostile(append([]string{name}, args...)...); err != nil {
		return nil, err
	}
	// #nosec G204 - arguments are checked above
	return exec.Command(name, args...), nil
}

func getCommandOutput(name string, args ...string) (string, error) {
	cmd, err := command(name, args...)
	if err != nil {
		return "", err
	}
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// runCommandVerbose streams the command's output to the terminal.
func runCommandVerbose(name string, args ...string) error {
	cmd, err := command(name, args...)
	if err != nil {
		return err
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
