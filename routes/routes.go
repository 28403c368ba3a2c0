package routes

import (
	"strings"
)

type Class string

const (
	ClassStrict Class = "strict"
	ClassMedium Class = "medium"
	ClassLight  Class = "light"
)

type entry struct {
	prefix string
	class  Class
}

// Table maps endpoints to rate-limit classes by longest-prefix match.
// The list is static and ordered: strict prefixes are checked before medium,
// anything unmatched is light.
type Table struct {
	entries []entry
}

func NewTable() *Table {
	return &Table{
		entries: []entry{
			{prefix: "/api/auth/", class: ClassStrict},
			{prefix: "/api/speech/", class: ClassStrict},
			{prefix: "/api/upload/sign", class: ClassStrict},
			{prefix: "/api/candidate/", class: ClassMedium},
			{prefix: "/api/recruiter/", class: ClassMedium},
			{prefix: "/api/job/", class: ClassMedium},
			{prefix: "/api/application/", class: ClassMedium},
			{prefix: "/api/interview/", class: ClassMedium},
		},
	}
}

func (t *Table) ClassOf(endpoint string) Class {
	matched := ClassLight
	matchedLen := 0
	for _, e := range t.entries {
		if len(e.prefix) <= matchedLen {
			continue
		}
		if strings.HasPrefix(endpoint, e.prefix) {
			matched = e.class
			matchedLen = len(e.prefix)
		}
	}
	return matched
}
