package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	foundation "git.home.luguber.info/inful/sitekeeper/internal/foundation/errors"
	"git.home.luguber.info/inful/sitekeeper/internal/frontmatter"
	"git.home.luguber.info/inful/sitekeeper/internal/sortdate"
)

// InspectCmd implements the 'inspect' command.
type InspectCmd struct {
	File string `arg:"" help:"Post file to inspect"`
}

func (i *InspectCmd) Run(g *Global) error {
	info, err := os.Stat(i.File)
	if errors.Is(err, fs.ErrNotExist) {
		return foundation.WrapError(err, foundation.CategoryNotFound, "post file not found: "+i.File).
			WithContext("path", i.File).
			Build()
	}
	if err != nil {
		return foundation.WrapError(err, foundation.CategoryFileSystem, "failed to stat post file").
			WithContext("path", i.File).
			Build()
	}
	if info.IsDir() {
		return foundation.ValidationError("not a post file: " + i.File).
			WithContext("path", i.File).
			Build()
	}

	// #nosec G304 - user supplied path is the point of this command
	content, readErr := os.ReadFile(i.File)
	resolved := sortdate.Resolve(sortdate.Input{
		Name:    filepath.Base(i.File),
		Content: content,
		ReadErr: readErr,
		ModTime: info.ModTime(),
	})

	out := g.Stdout
	_, _ = fmt.Fprintf(out, "File: %s\n", i.File)
	_, _ = fmt.Fprintf(out, "Sort date: %s (%s)\n", resolved.Date.Format(sortdate.DateLayout), resolved.Source)
	if readErr != nil {
		_, _ = fmt.Fprintf(out, "Header: unreadable (%v)\n", readErr)
		return nil
	}

	fm, _, had, _, err := frontmatter.Split(content)
	switch {
	case errors.Is(err, frontmatter.ErrMissingClosingDelimiter):
		_, _ = fmt.Fprintln(out, "Header: missing closing ---")
		return nil
	case !had:
		_, _ = fmt.Fprintln(out, "Header: none")
		return nil
	}

	fields, err := frontmatter.ParseYAML(fm)
	if err != nil {
		_, _ = fmt.Fprintf(out, "Header: not valid YAML (%v)\n", err)
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	_, _ = fmt.Fprintf(out, "Header fields: %d\n", len(keys))
	for _, k := range keys {
		_, _ = fmt.Fprintf(out, "  %s: %v\n", k, fields[k])
	}
	return nil
}
