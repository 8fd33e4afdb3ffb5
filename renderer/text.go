package renderer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ChainSafe/mips-vm/analyzer"
	"github.com/ChainSafe/mips-vm/profile"
	"github.com/samber/lo"
)

// TextRenderer formats the analysis report in a structured text format.
type TextRenderer struct {
	profile *profile.VMProfile
}

// NewTextRenderer creates a new instance of TextRenderer.
func NewTextRenderer(profile *profile.VMProfile) *TextRenderer {
	return &TextRenderer{profile: profile}
}

// Render formats and writes the analysis report to the command line.
func (r *TextRenderer) Render(issues []*analyzer.Issue, output io.Writer) error {
	if len(issues) == 0 {
		return nil
	}

	timestamp := time.Now().UTC().Format("2006-01-02 15:04:05 UTC")

	// Group issues by message
	groupedIssues := lo.GroupBy(issues, func(issue *analyzer.Issue) string { return issue.Message })
	totalIssues := len(groupedIssues)
	numOfCriticalIssues := lo.CountBy(lo.Values(groupedIssues), func(group []*analyzer.Issue) bool {
		return group[0].Severity == analyzer.IssueSeverityCritical
	})

	// Sort issue messages for consistent output
	sortedMessages := lo.Keys(groupedIssues)
	sort.Strings(sortedMessages)

	var report strings.Builder

	// Header Section
	report.WriteString("==============================\n")
	report.WriteString("🔍 MIPS Compatibility Analysis Report\n")
	report.WriteString("==============================\n\n")
	report.WriteString(fmt.Sprintf("🖥 VM Profile: %s\n", r.profile.Name))
	if r.profile.MaxSteps > 0 {
		report.WriteString(fmt.Sprintf("⏱ Max Steps: %d\n", r.profile.MaxSteps))
	}
	report.WriteString(fmt.Sprintf("💾 Memory Limit: %d bytes\n", r.profile.MemoryLimit))
	report.WriteString(fmt.Sprintf("📅 Timestamp: %s\n", timestamp))
	report.WriteString("🔢 Analyzer Version: 1.0.0\n\n")
	report.WriteString("------------------------------\n")
	report.WriteString("🚨 Summary of Issues\n")
	report.WriteString("------------------------------\n")
	report.WriteString(fmt.Sprintf(" ❗ Critical Issues: %d\n", numOfCriticalIssues))
	report.WriteString(fmt.Sprintf("⚠️ Warnings: %d\n", totalIssues-numOfCriticalIssues))
	report.WriteString(fmt.Sprintf("ℹ️ Total Issues: %d\n\n", totalIssues))
	report.WriteString("------------------------------\n")
	report.WriteString("📌 Detailed Issues\n")
	report.WriteString("------------------------------\n\n")

	// Issues Section
	for n, msg := range sortedMessages {
		groupedIssue := groupedIssues[msg]
		report.WriteString(fmt.Sprintf("%d. [%s] %s\n", n+1, groupedIssue[0].Severity, msg))
		if len(groupedIssue[0].Impact) > 0 {
			report.WriteString(fmt.Sprintf("   - Impact: %s \n", groupedIssue[0].Impact))
		}
		if len(groupedIssue[0].Reference) > 0 {
			report.WriteString(fmt.Sprintf("   - Reference: %s \n", groupedIssue[0].Reference))
		}
		report.WriteString("   - CallStack:")

		for _, issue := range groupedIssue {
			report.WriteString(fmt.Sprintf("%s\n", buildCallStack(output, issue.CallStack, "")))
		}
	}

	// Recommendations Section
	report.WriteString("------------------------------\n")
	report.WriteString("✅ Recommendations\n")
	report.WriteString("------------------------------\n")
	report.WriteString("- Verify compatibility with the target runtime.\n")
	report.WriteString("🔚 End of Report\n")

	// Print the complete report at once
	_, err := output.Write([]byte(report.String()))
	return err
}

// BuildCallStack renders a call stack one frame per line.
func BuildCallStack(output io.Writer, source *analyzer.CallStack) string {
	return buildCallStack(output, source, "")
}

func buildCallStack(output io.Writer, source *analyzer.CallStack, str string) string {
	if source == nil {
		return str
	}
	var fileInfo string
	if output == os.Stdout {
		fileInfo = fmt.Sprintf(
			" \033[94m\033]8;;file://%s:%d\033\\%s:%d\033]8;;\033\\\033[0m",
			source.AbsPath, source.Line, source.File, source.Line,
		)
	} else {
		fileInfo = fmt.Sprintf("%s:%d (%s)", source.File, source.Line, source.AbsPath)
	}

	str = strings.Join(
		[]string{
			str,
			fmt.Sprintf("-> %s : (%s @ 0x%08x)", fileInfo, source.Label, source.Address)},
		"\n       ")
	if source.CallStack != nil {
		return buildCallStack(output, source.CallStack, str)
	}
	return str
}

// Format returns the format type.
func (r *TextRenderer) Format() string {
	return "text"
}
