package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"gopkg.in/yaml.v3"
)

// Issue is a recoverable problem recorded while building or analyzing the
// dependency graph. Issues never abort a run.
type Issue struct {
	Timestamp time.Time
	Source    string
	Message   string
	Severity  Severity
}

// NewIssue creates an Issue stamped with the current time.
func NewIssue(source, message string, severity Severity) Issue {
	return Issue{
		Timestamp: time.Now().UTC(),
		Source:    source,
		Message:   message,
		Severity:  severity,
	}
}

// CreateAndLogIssue creates an Issue and logs its message at a level
// aligned with the severity.
func CreateAndLogIssue(log logr.Logger, source, message string, severity Severity) Issue {
	switch severity {
	case SeverityError:
		log.Error(nil, message, "source", source)
	case SeverityWarning:
		log.Info(message, "source", source, "severity", severity.String())
	default:
		log.V(1).Info(message, "source", source, "severity", severity.String())
	}
	return NewIssue(source, message, severity)
}

// Equal reports whether two issues describe the same event. Timestamps are
// compared as instants.
func (i Issue) Equal(other Issue) bool {
	return i.Timestamp.Equal(other.Timestamp) &&
		i.Source == other.Source &&
		i.Message == other.Message &&
		i.Severity == other.Severity
}

func (i Issue) String() string {
	ts := "Unknown time"
	if !i.Timestamp.IsZero() && i.Timestamp.Unix() != 0 {
		ts = i.Timestamp.UTC().Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("%s [%s]: %s - %s", ts, i.Severity, i.Source, i.Message)
}

type issueKey struct {
	sec      int64
	nsec     int
	source   string
	message  string
	severity Severity
}

func (i Issue) key() issueKey {
	return issueKey{
		sec:      i.Timestamp.Unix(),
		nsec:     i.Timestamp.Nanosecond(),
		source:   i.Source,
		message:  i.Message,
		severity: i.Severity,
	}
}

// issueSet is an insertion-ordered set of issues keyed by value.
type issueSet struct {
	seen  map[issueKey]bool
	items []Issue
}

func (s *issueSet) add(issues ...Issue) {
	if s.seen == nil {
		s.seen = make(map[issueKey]bool)
	}
	for _, issue := range issues {
		k := issue.key()
		if s.seen[k] {
			continue
		}
		s.seen[k] = true
		s.items = append(s.items, issue)
	}
}

// DedupIssues returns issues with value-duplicates removed, keeping the
// first occurrence of each.
func DedupIssues(issues []Issue) []Issue {
	var s issueSet
	s.add(issues...)
	return s.items
}

// issueDoc is the persisted shape of an Issue.
type issueDoc struct {
	Timestamp string    `json:"timestamp"          yaml:"timestamp"`
	Source    string    `json:"source"             yaml:"source"`
	Message   string    `json:"message"            yaml:"message"`
	Severity  *Severity `json:"severity,omitempty" yaml:"severity,omitempty"`
}

func (i Issue) toDoc() issueDoc {
	sev := i.Severity
	return issueDoc{
		Timestamp: i.Timestamp.UTC().Format(time.RFC3339Nano),
		Source:    i.Source,
		Message:   normalizeLineBreaks(i.Message),
		Severity:  &sev,
	}
}

func (d issueDoc) toIssue() (Issue, error) {
	ts, err := time.Parse(time.RFC3339Nano, d.Timestamp)
	if err != nil {
		return Issue{}, fmt.Errorf("parsing issue timestamp: %w", err)
	}
	// Documents written before severities existed carry none.
	sev := SeverityError
	if d.Severity != nil {
		sev = *d.Severity
	}
	return Issue{Timestamp: ts.UTC(), Source: d.Source, Message: d.Message, Severity: sev}, nil
}

func (i Issue) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.toDoc())
}

func (i *Issue) UnmarshalJSON(data []byte) error {
	var d issueDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	parsed, err := d.toIssue()
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

func (i Issue) MarshalYAML() (interface{}, error) {
	return i.toDoc(), nil
}

func (i *Issue) UnmarshalYAML(node *yaml.Node) error {
	var d issueDoc
	if err := node.Decode(&d); err != nil {
		return err
	}
	parsed, err := d.toIssue()
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

func normalizeLineBreaks(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
