package logging

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// maxLineSize bounds a single log line read by the viewer.
const maxLineSize = 1024 * 1024

// LogEntry represents a parsed log line in either record format.
type LogEntry struct {
	Time      time.Time
	Level     string
	Msg       string
	RunID     string
	Component string
	Source    string         // Base name of the file the line came from
	Attrs     map[string]any // Remaining attributes
	Raw       string         // Original line
	IsValid   bool           // Whether the line parsed as a record
}

// ViewerConfig configures the log viewer.
type ViewerConfig struct {
	Level      string         // Minimum level (debug, info, warn, error)
	Pattern    *regexp.Regexp // Raw-line pattern
	RunID      string         // Only records from this run (prefix match)
	NoColor    bool           // Disable colors
	ShowSource bool           // Show source file label in output
}

// Viewer reads, filters and formats log files.
type Viewer struct {
	config ViewerConfig
	out    io.Writer
	styles viewerStyles
}

type viewerStyles struct {
	enabled                             bool
	debug, info, warn, err, source, dim lipgloss.Style
}

func newViewerStyles(noColor bool) viewerStyles {
	return viewerStyles{
		enabled: !noColor,
		debug:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		info:    lipgloss.NewStyle().Foreground(lipgloss.Color("154")),
		warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		err:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		source:  lipgloss.NewStyle().Foreground(lipgloss.Color("81")),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	}
}

func (s viewerStyles) paint(style lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return style.Render(text)
}

// NewViewer creates a new log viewer.
func NewViewer(cfg ViewerConfig, out io.Writer) *Viewer {
	return &Viewer{
		config: cfg,
		out:    out,
		styles: newViewerStyles(cfg.NoColor),
	}
}

// ColorEnabled reports whether colored output should be written to f:
// f must be a terminal and NO_COLOR must be unset.
func ColorEnabled(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Tail reads the last n lines from a log file and returns matching entries.
func (v *Viewer) Tail(path string, n int) ([]LogEntry, error) {
	lines, err := lastLines(path, n)
	if err != nil {
		return nil, err
	}

	source := filepath.Base(path)
	var entries []LogEntry
	for _, line := range lines {
		entry := v.parseLineWithSource(line, source)
		if v.matchesFilter(entry) {
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

// TailMultiple reads the last n lines of every file and returns the last n
// matching entries of the merged, time-ordered result.
func (v *Viewer) TailMultiple(paths []string, n int) ([]LogEntry, error) {
	var all []LogEntry

	for _, path := range paths {
		entries, err := v.Tail(path, n)
		if err != nil {
			// Skip files that can't be read, continue with others
			continue
		}
		all = append(all, entries...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Time.Before(all[j].Time)
	})

	if len(all) > n {
		all = all[len(all)-n:]
	}

	return all, nil
}

// lastLines returns at most n trailing lines of path.
func lastLines(path string, n int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if n <= 0 {
		return nil, nil
	}

	ring := make([]string, 0, n)
	next := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		if len(ring) < n {
			ring = append(ring, scanner.Text())
			continue
		}
		ring[next] = scanner.Text()
		next = (next + 1) % n
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	if len(ring) < n {
		return ring, nil
	}
	return append(ring[next:], ring[:next]...), nil
}

// FormatEntry formats a log entry for display.
func (v *Viewer) FormatEntry(entry LogEntry) string {
	if !entry.IsValid {
		return entry.Raw
	}

	var sb strings.Builder
	sb.WriteString(entry.Time.Format("15:04:05.000"))
	sb.WriteByte(' ')
	sb.WriteString(v.formatLevel(entry.Level))
	sb.WriteByte(' ')

	if v.config.ShowSource && entry.Source != "" {
		sb.WriteString(v.formatSource(entry.Source))
		sb.WriteByte(' ')
	}
	if entry.Component != "" {
		sb.WriteString(entry.Component)
		sb.WriteString(": ")
	}

	sb.WriteString(entry.Msg)

	keys := make([]string, 0, len(entry.Attrs))
	for k := range entry.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteByte(' ')
		sb.WriteString(v.styles.paint(v.styles.dim, fmt.Sprintf("%s=%v", k, entry.Attrs[k])))
	}

	return sb.String()
}

// Print prints entries to the output.
func (v *Viewer) Print(entries []LogEntry) {
	for _, entry := range entries {
		_, _ = fmt.Fprintln(v.out, v.FormatEntry(entry))
	}
}

func (v *Viewer) formatSource(source string) string {
	return v.styles.paint(v.styles.source, "["+source+"]")
}

func (v *Viewer) formatLevel(level string) string {
	levelStr := strings.ToUpper(level)
	if len(levelStr) > 5 {
		levelStr = levelStr[:5]
	}
	levelStr = fmt.Sprintf("%-5s", levelStr)

	switch strings.ToLower(level) {
	case "debug":
		return v.styles.paint(v.styles.debug, levelStr)
	case "info":
		return v.styles.paint(v.styles.info, levelStr)
	case "warn", "warning":
		return v.styles.paint(v.styles.warn, levelStr)
	case "error":
		return v.styles.paint(v.styles.err, levelStr)
	default:
		return levelStr
	}
}

func (v *Viewer) parseLineWithSource(line, source string) LogEntry {
	entry := v.parseLine(line)
	entry.Source = source
	return entry
}

// parseLine parses a JSON or text record into a LogEntry.
func (v *Viewer) parseLine(line string) LogEntry {
	if strings.HasPrefix(strings.TrimSpace(line), "{") {
		return parseJSONLine(line)
	}
	return parseTextLine(line)
}

func parseJSONLine(line string) LogEntry {
	entry := LogEntry{Raw: line}

	var data map[string]any
	if err := json.Unmarshal([]byte(line), &data); err != nil {
		return entry
	}

	entry.IsValid = true

	if t, ok := data["time"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			entry.Time = parsed
		}
	}
	if l, ok := data["level"].(string); ok {
		entry.Level = l
	}
	if m, ok := data["msg"].(string); ok {
		entry.Msg = m
	}
	if r, ok := data[RunIDKey].(string); ok {
		entry.RunID = r
	}
	if c, ok := data[ComponentKey].(string); ok {
		entry.Component = c
	}

	entry.Attrs = make(map[string]any)
	for k, val := range data {
		switch k {
		case "time", "level", "msg", RunIDKey, ComponentKey:
		default:
			entry.Attrs[k] = val
		}
	}

	return entry
}

// parseTextLine parses "<time> - <LEVEL> - <message>\t<k=v ...>".
func parseTextLine(line string) LogEntry {
	entry := LogEntry{Raw: line}

	ts, rest, ok := strings.Cut(line, textSeparator)
	if !ok {
		return entry
	}
	parsed, err := time.ParseInLocation(TextTimeLayout, ts, time.Local)
	if err != nil {
		return entry
	}
	level, rest, ok := strings.Cut(rest, textSeparator)
	if !ok {
		// "<time> - <LEVEL> - " with an empty message
		level, ok = strings.CutSuffix(rest, " -")
		if !ok {
			return entry
		}
		rest = ""
	}

	msg, attrText, _ := strings.Cut(rest, "\t")

	entry.IsValid = true
	entry.Time = parsed
	entry.Level = level
	entry.Msg = unescapeMessage(msg)
	entry.Attrs = make(map[string]any)

	for key, val := range parseTextAttrs(attrText) {
		switch key {
		case RunIDKey:
			entry.RunID = val
		case ComponentKey:
			entry.Component = val
		default:
			entry.Attrs[key] = val
		}
	}

	return entry
}

// parseTextAttrs splits space-separated key=value pairs; values may be Go-quoted.
func parseTextAttrs(s string) map[string]string {
	attrs := make(map[string]string)
	for s != "" {
		s = strings.TrimLeft(s, " ")
		key, rest, ok := strings.Cut(s, "=")
		if !ok || key == "" {
			break
		}
		var val string
		if strings.HasPrefix(rest, `"`) {
			quoted, err := strconv.QuotedPrefix(rest)
			if err != nil {
				break
			}
			val, _ = strconv.Unquote(quoted)
			rest = rest[len(quoted):]
		} else {
			val, rest, _ = strings.Cut(rest, " ")
			rest = " " + rest
		}
		attrs[key] = val
		s = strings.TrimLeft(rest, " ")
	}
	return attrs
}

// matchesFilter checks if an entry matches the configured filters.
func (v *Viewer) matchesFilter(entry LogEntry) bool {
	if v.config.Level != "" {
		if LevelFromString(entry.Level) < LevelFromString(v.config.Level) {
			return false
		}
	}

	if v.config.RunID != "" && !strings.HasPrefix(entry.RunID, v.config.RunID) {
		return false
	}

	if v.config.Pattern != nil && !v.config.Pattern.MatchString(entry.Raw) {
		return false
	}

	return true
}
