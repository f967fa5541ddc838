package pipeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/femnad/pfsync/entity"
)

const bannerWidth = 50

type console struct {
	w       io.Writer
	title   cases.Caser
	heading *color.Color
	good    *color.Color
	bad     *color.Color
	caution *color.Color
	muted   *color.Color
}

func newConsole(w io.Writer) console {
	return console{
		w:       w,
		title:   cases.Title(language.English),
		heading: color.New(color.FgCyan, color.Bold),
		good:    color.New(color.FgGreen),
		bad:     color.New(color.FgRed, color.Bold),
		caution: color.New(color.FgYellow),
		muted:   color.New(color.Faint),
	}
}

func (c console) banner(stage string) {
	name := c.title.String(stage)
	c.heading.Fprintf(c.w, "\n== %s %s\n", name, strings.Repeat("=", max(0, bannerWidth-len(name)-4)))
}

func (c console) notice(msg string) {
	c.caution.Fprintln(c.w, msg)
}

func (c console) skipped(reason string) {
	c.muted.Fprintf(c.w, "- skipped: %s\n", reason)
}

func (c console) ok(output string) {
	line := "✓ done"
	if output != "" {
		line = fmt.Sprintf("%s: %s", line, firstLine(output))
	}
	c.good.Fprintln(c.w, line)
}

func (c console) warn(err error) {
	c.caution.Fprintf(c.w, "! failed, continuing: %v\n", err)
}

func (c console) failed(err error) {
	c.bad.Fprintf(c.w, "✗ failed: %v\n", err)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}

func (c console) summary(stats entity.SyncStats, failedStage string) {
	c.banner("summary")
	rows := [][2]string{
		{"Files downloaded", fmt.Sprint(stats.FilesDownloaded)},
		{"Files synced", fmt.Sprint(stats.FilesSynced)},
		{"Tests run", fmt.Sprint(stats.TestsRun)},
		{"Warnings", fmt.Sprint(len(stats.Warnings))},
		{"Errors", fmt.Sprint(len(stats.Errors))},
	}
	for _, row := range rows {
		fmt.Fprintf(c.w, "%-18s %s\n", row[0]+":", row[1])
	}

	for _, warning := range stats.Warnings {
		c.caution.Fprintf(c.w, "  warning: %s\n", warning)
	}
	errLines := lo.Map(stats.Errors, func(e entity.SyncError, _ int) string {
		return e.String()
	})
	for _, line := range errLines {
		c.bad.Fprintf(c.w, "  error: %s\n", line)
	}

	switch {
	case failedStage != "":
		c.bad.Fprintf(c.w, "\nSync failed at stage %s\n", failedStage)
	case stats.HasErrors():
		c.caution.Fprintf(c.w, "\nSync completed with %d errors\n", len(stats.Errors))
	default:
		c.good.Fprintln(c.w, "\nSync completed successfully")
	}
}
