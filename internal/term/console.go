package term

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mazznoer/colorgrad"

	"github.com/joelfuller2016/deepseek-engineer/internal/engine"
	"github.com/joelfuller2016/deepseek-engineer/internal/fileops"
)

// Console renders the conversation to a terminal and reads user input. It
// implements engine.UI and fileops.Notifier.
type Console struct {
	out io.Writer
	in  *bufio.Reader

	reasoningOpen bool
}

func NewConsole(out io.Writer, in io.Reader) *Console {
	return &Console{
		out: out,
		in:  bufio.NewReader(in),
	}
}

// ReadLine prompts and returns one line of user input. The second return is
// false on EOF or interrupt.
func (c *Console) ReadLine() (string, bool) {
	fmt.Fprint(c.out, promptStyle.Render("🔵 You> "))
	line, err := c.in.ReadString('\n')
	if err != nil {
		if len(line) == 0 {
			return "", false
		}
	}
	return strings.TrimSpace(line), true
}

// Banner renders the gradient startup banner.
func (c *Console) Banner(version string) {
	banner := `
 ____                       ____                  _
|  _ \   ___   ___  _ __   / ___|   ___   ___  | | __
| | | | / _ \ / _ \| '_ \  \___ \  / _ \ / _ \ | |/ /
| |_| ||  __/|  __/| |_) |  ___) ||  __/|  __/ |   <
|____/  \___| \___|| .__/  |____/  \___| \___| |_|\_\
 e n g i n e e r   |_|     function calling  [v` + version + `]
`
	grad, _ := colorgrad.NewGradient().
		HtmlColors("#1115f0ff", "#fdfdfdff").
		Build()

	lines := strings.Split(banner, "\n")

	maxLen := 0
	for _, line := range lines {
		if len(line) > maxLen {
			maxLen = len(line)
		}
	}

	colors := grad.Colors(uint(maxLen))
	var colored strings.Builder

	for _, line := range lines {
		for i, ch := range line {
			r, g, b, _ := colors[i].RGBA255()
			colored.WriteString(fmt.Sprintf("\x1b[38;2;%d;%d;%dm%c", r, g, b, ch))
		}
		colored.WriteString("\x1b[0m\n")
	}

	fmt.Fprint(c.out, colored.String())
}

// Welcome renders the instruction panel shown at startup.
func (c *Console) Welcome(maxContext, maxFileTokens, maxFiles int) {
	body := strings.Join([]string{
		headerStyle.Render("📁 File Operations:"),
		"  • " + pathStyle.Render("/add path/to/file") + " - include a single file in the conversation",
		"  • " + pathStyle.Render("/add path/to/folder") + fmt.Sprintf(" - include files from a folder (max %d files)", maxFiles),
		dimStyle.Render("  the assistant can also read and create files via function calls"),
		"",
		headerStyle.Render("🎯 Commands:"),
		"  • " + pathStyle.Render("/tokens") + " - show current token usage",
		"  • " + pathStyle.Render("/clear") + " - reset the conversation",
		"  • " + pathStyle.Render("exit") + " or " + pathStyle.Render("quit") + " - end the session",
		"",
		noticeStyle.Render("⚠ Token limits: ") +
			fmt.Sprintf("%d context / %d per file", maxContext, maxFileTokens),
	}, "\n")

	fmt.Fprintln(c.out, panelStyle.Render(body))
}

// StreamStarted marks the beginning of a model invocation.
func (c *Console) StreamStarted(followUp bool) {
	c.reasoningOpen = false
	if followUp {
		fmt.Fprintln(c.out, "\n"+titleStyle.Render("🔄 Processing results..."))
		return
	}
	fmt.Fprintln(c.out, "\n"+titleStyle.Render("🐋 Seeking..."))
}

// Reasoning streams chain-of-thought fragments, dimmed, under their own
// header.
func (c *Console) Reasoning(chunk string) {
	if !c.reasoningOpen {
		fmt.Fprintln(c.out, "\n"+headerStyle.Render("💭 Reasoning:"))
		c.reasoningOpen = true
	}
	fmt.Fprint(c.out, reasoningStyle.Render(chunk))
}

// Content streams answer fragments, closing the reasoning block if open.
func (c *Console) Content(chunk string) {
	if c.reasoningOpen {
		fmt.Fprint(c.out, "\n\n"+titleStyle.Render("🤖 Assistant> "))
		c.reasoningOpen = false
	}
	fmt.Fprint(c.out, chunk)
}

func (c *Console) ToolBatchStarted(count int) {
	fmt.Fprintln(c.out, "\n"+headerStyle.Render(fmt.Sprintf("⚡ Executing %d function call(s)...", count)))
}

func (c *Console) ToolCallStarted(name string) {
	fmt.Fprintln(c.out, pathStyle.Render("→ "+name))
}

func (c *Console) Notice(text string) {
	fmt.Fprintln(c.out, noticeStyle.Render(text))
}

func (c *Console) Error(err error) {
	fmt.Fprintln(c.out, errorStyle.Render("❌ "+err.Error()))
}

// EditProposed renders the before/after table for a pending edit.
func (c *Console) EditProposed(edit fileops.EditSpec) {
	fmt.Fprintln(c.out, "\n"+headerStyle.Render("📝 Proposed Edit: ")+pathStyle.Render(edit.Path))
	table := lipgloss.JoinHorizontal(
		lipgloss.Top,
		diffOldStyle.Render(edit.OriginalSnippet),
		diffNewStyle.Render(edit.NewSnippet),
	)
	fmt.Fprintln(c.out, table)
}

// EditFailed renders the rejection with the expected snippet next to the
// actual file content.
func (c *Console) EditFailed(edit fileops.EditSpec, actual string, err error) {
	fmt.Fprintln(c.out, noticeStyle.Render(fmt.Sprintf("⚠ %v. No changes made.", err)))
	if actual == "" {
		return
	}
	fmt.Fprintln(c.out, headerStyle.Render("Expected snippet:"))
	fmt.Fprintln(c.out, diffCellStyle.Render(edit.OriginalSnippet))
	fmt.Fprintln(c.out, headerStyle.Render("Actual file content:"))
	fmt.Fprintln(c.out, diffCellStyle.Render(clip(actual, 2000)))
}

func (c *Console) EditApplied(path string) {
	fmt.Fprintln(c.out, okStyle.Render("✓")+" Applied diff edit to "+pathStyle.Render(path))
}

// TokenUsage renders the /tokens report.
func (c *Console) TokenUsage(usage engine.Usage) {
	percent := 0.0
	if usage.Max > 0 {
		percent = float64(usage.Current) / float64(usage.Max) * 100
	}
	body := strings.Join([]string{
		headerStyle.Render("📊 Token Usage:"),
		fmt.Sprintf("Current: %d / %d (%.1f%%)", usage.Current, usage.Max, percent),
		fmt.Sprintf("Available: %d tokens", usage.Max-usage.Current),
		fmt.Sprintf("Messages in history: %d", usage.Messages),
	}, "\n")
	fmt.Fprintln(c.out, panelStyle.Render(body))
}

// AddReport renders the outcome of an /add directive.
func (c *Console) AddReport(report *engine.AddReport) {
	if report.IsDir {
		fmt.Fprintln(c.out, okStyle.Render("✓")+fmt.Sprintf(" Added %d files from ", len(report.Added))+pathStyle.Render(report.Path))
		shown := report.Added
		if len(shown) > 10 {
			shown = shown[:10]
		}
		for _, f := range shown {
			fmt.Fprintln(c.out, pathStyle.Render("  📄 "+f))
		}
		if len(report.Added) > 10 {
			fmt.Fprintln(c.out, dimStyle.Render(fmt.Sprintf("  ... and %d more", len(report.Added)-10)))
		}
		if len(report.Skipped) > 0 {
			fmt.Fprintln(c.out, dimStyle.Render(fmt.Sprintf("Skipped %d files (binary/excluded/large)", len(report.Skipped))))
		}
		if report.Truncated {
			fmt.Fprintln(c.out, noticeStyle.Render("⚠ Ingestion stopped early: token budget reached"))
		}
	} else {
		fmt.Fprintln(c.out, okStyle.Render("✓")+" Added file "+pathStyle.Render(report.Path)+" to conversation")
		if report.Truncated {
			fmt.Fprintln(c.out, noticeStyle.Render("⚠ File was large and has been truncated"))
		}
	}
	fmt.Fprintln(c.out, dimStyle.Render(fmt.Sprintf("Tokens added: %d", report.TokensAdded)))
}

func (c *Console) Goodbye() {
	fmt.Fprintln(c.out, titleStyle.Render("✨ Session finished. Happy coding!"))
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
