package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rgehrsitz/flipcalc/internal/domain"
)

// Formatter renders an analysis report.
type Formatter interface {
	Name() string
	Format(report *domain.AnalysisReport) ([]byte, error)
}

// FormatterFunc adapts a function to the Formatter interface.
type FormatterFunc struct {
	ID string
	F  func(report *domain.AnalysisReport) ([]byte, error)
}

func (f FormatterFunc) Name() string { return f.ID }

func (f FormatterFunc) Format(report *domain.AnalysisReport) ([]byte, error) {
	return f.F(report)
}

var formatters = map[string]Formatter{
	"console": ConsoleFormatter{},
	"json":    JSONFormatter{},
	"csv":     SpreadsheetCSV{},
	"html":    HTMLFormatter{},
	"pdf":     PDFFormatter{},
}

var formatAliases = map[string]string{
	"text":        "console",
	"txt":         "console",
	"xlsx":        "csv",
	"spreadsheet": "csv",
}

// extensions maps formatter names to file extensions.
var extensions = map[string]string{
	"console": "txt",
}

// GetFormatterByName returns the formatter registered under name or alias,
// or nil when there is none.
func GetFormatterByName(name string) Formatter {
	key := strings.ToLower(strings.TrimSpace(name))
	if target, ok := formatAliases[key]; ok {
		key = target
	}
	return formatters[key]
}

// AvailableFormatterNames returns the registered formatter names, sorted.
func AvailableFormatterNames() []string {
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AvailableFormatAliases returns the accepted aliases, sorted.
func AvailableFormatAliases() []string {
	aliases := make([]string, 0, len(formatAliases))
	for alias := range formatAliases {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases
}

// FileExtension returns the extension used when writing f's output.
func FileExtension(f Formatter) string {
	if ext, ok := extensions[f.Name()]; ok {
		return ext
	}
	return f.Name()
}

// WriteFormatted renders report with f and writes it to dir as
// <slug>_<timestamp>.<ext>. It returns the written path.
func WriteFormatted(f Formatter, report *domain.AnalysisReport, dir string) (string, error) {
	data, err := f.Format(report)
	if err != nil {
		return "", err
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s.%s", Slugify(report.AnalysisName), report.GeneratedAt.Format("20060102_150405"), FileExtension(f))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Slugify lowercases s and replaces every run of characters other than
// ASCII letters and digits with a single underscore.
func Slugify(s string) string {
	var sb strings.Builder
	pending := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && sb.Len() > 0 {
				sb.WriteByte('_')
			}
			pending = false
			sb.WriteRune(r)
			continue
		}
		pending = true
	}
	if sb.Len() == 0 {
		return "flip_report"
	}
	return sb.String()
}
