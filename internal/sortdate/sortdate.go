// Package sortdate resolves the date a post is ordered by.
//
// Resolution is an explicit sequence of attempts, each returning (date, ok):
// the header's date field, then a date embedded in the filename, then the
// file's modification time. A failed attempt never aborts resolution; it only
// moves on to the next one.
package sortdate

import (
	"regexp"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitekeeper/internal/frontmatter"
)

// Source records which attempt produced a sort date.
type Source int

const (
	SourceHeader Source = iota
	SourceFilename
	SourceModTime
)

func (s Source) String() string {
	switch s {
	case SourceHeader:
		return "header"
	case SourceFilename:
		return "filename"
	case SourceModTime:
		return "modtime"
	default:
		return "unknown"
	}
}

// DateLayout is the calendar date form every attempt normalizes to.
const DateLayout = "2006-01-02"

// HeaderKey is the header field consulted for the date.
const HeaderKey = "date"

var filenameDate = regexp.MustCompile(`\d{4}[-/]\d{2}[-/]\d{2}`)

// Input is everything resolution looks at for one post.
type Input struct {
	Name    string    // filename including extension
	Content []byte    // file contents, ignored when ReadErr is set
	ReadErr error     // failure reading the file, if any
	ModTime time.Time // last modification time
}

// Resolved is the outcome of resolution.
type Resolved struct {
	Date   time.Time
	Source Source
}

type attempt struct {
	source Source
	try    func(Input) (time.Time, bool)
}

var attempts = []attempt{
	{SourceHeader, func(in Input) (time.Time, bool) {
		if in.ReadErr != nil {
			return time.Time{}, false
		}
		return FromHeader(in.Content)
	}},
	{SourceFilename, func(in Input) (time.Time, bool) { return FromFilename(in.Name) }},
	{SourceModTime, func(in Input) (time.Time, bool) { return in.ModTime, true }},
}

// Resolve walks the attempts in order and returns the first that succeeds.
// The modification time attempt always succeeds.
func Resolve(in Input) Resolved {
	for _, a := range attempts {
		if date, ok := a.try(in); ok {
			return Resolved{Date: date, Source: a.source}
		}
	}
	return Resolved{Date: in.ModTime, Source: SourceModTime}
}

// FromHeader reads the date field of a post's header.
// It reports false for a missing or unterminated header, a missing field,
// or a value that is not a calendar date.
func FromHeader(content []byte) (time.Time, bool) {
	fm, _, had, _, err := frontmatter.Split(content)
	if err != nil || !had {
		return time.Time{}, false
	}
	raw, ok := frontmatter.Lookup(fm, HeaderKey)
	if !ok {
		return time.Time{}, false
	}
	return ParseHeaderDate(raw)
}

// ParseHeaderDate accepts an ISO-like date, optionally followed by a time
// component, and keeps only the calendar date. Slashes count as dashes.
func ParseHeaderDate(raw string) (time.Time, bool) {
	date, _, _ := strings.Cut(strings.TrimSpace(raw), "T")
	date, _, _ = strings.Cut(date, " ")
	return parseDate(strings.ReplaceAll(date, "/", "-"))
}

// FromFilename finds the first YYYY-MM-DD or YYYY/MM/DD pattern in the
// filename without its extension.
func FromFilename(name string) (time.Time, bool) {
	stem := name
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		stem = name[:i]
	}
	match := filenameDate.FindString(stem)
	if match == "" {
		return time.Time{}, false
	}
	return parseDate(strings.ReplaceAll(match, "/", "-"))
}

// parseDate interprets a calendar date as local midnight so it orders
// consistently against modification times.
func parseDate(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
