package color

import (
	"github.com/fatih/color"
)

var (
	promptColor  = color.New(color.FgCyan, color.Bold)
	infoColor    = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed, color.Bold)
	titleColor   = color.New(color.FgHiYellow, color.Bold)
	scriptColor  = color.New(color.FgHiWhite)
	successColor = color.New(color.FgGreen, color.Bold)
)

func ColorPrompt(s string) string {
	return promptColor.Sprint(s)
}

func ColorInfo(s string) string {
	return infoColor.Sprint(s)
}

func ColorError(s string) string {
	return errorColor.Sprint(s)
}

func ColorTitle(s string) string {
	return titleColor.Sprint(s)
}

func ColorScript(s string) string {
	return scriptColor.Sprint(s)
}

func ColorSuccess(s string) string {
	return successColor.Sprint(s)
}
