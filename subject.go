package coursechat

import (
	"fmt"
	"strings"
)

// Subject is a topic filter narrowing which course material the backend
// retrieves from. The zero value means no filter.
type Subject string

// Known subjects.
const (
	AllSubjects Subject = ""
	DataMining  Subject = "DataMining"
	Network     Subject = "Network"
	Distributed Subject = "Distributed"
)

// allSubjectsLabel is how the unfiltered choice is presented to users.
const allSubjectsLabel = "All Subjects"

// Subjects returns the selectable subjects, starting with AllSubjects.
func Subjects() []Subject {
	return []Subject{AllSubjects, DataMining, Network, Distributed}
}

// Label returns the human-readable name of the subject.
func (s Subject) Label() string {
	switch s {
	case AllSubjects:
		return allSubjectsLabel
	case DataMining:
		return "Data Mining"
	case Network:
		return "Network Systems"
	case Distributed:
		return "Distributed Computing"
	default:
		return string(s)
	}
}

// Next cycles to the following subject in Subjects order. Unknown subjects
// cycle back to AllSubjects.
func (s Subject) Next() Subject {
	all := Subjects()
	for i, v := range all {
		if v == s {
			return all[(i+1)%len(all)]
		}
	}
	return AllSubjects
}

// ParseSubject converts user input to a Subject. Matching is case-insensitive
// against both identifiers and labels; "" and "All Subjects" select no filter.
func ParseSubject(v string) (Subject, error) {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, allSubjectsLabel) {
		return AllSubjects, nil
	}
	for _, s := range Subjects()[1:] {
		if strings.EqualFold(v, string(s)) || strings.EqualFold(v, s.Label()) {
			return s, nil
		}
	}
	return AllSubjects, fmt.Errorf("unknown subject %q: %w", v, ErrValidation)
}
