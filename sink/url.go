package sink

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vsamtuc/tables/errs"
	"github.com/vsamtuc/tables/format"
	"github.com/vsamtuc/tables/table"
)

// Sink URLs have the form
//
//	scheme:path?key=value,key=value
//
// where scheme is an identifier, path is a filesystem-style path of
// components drawn from [a-zA-Z0-9_.:\-$' ] separated by '/', optionally
// leading-slashed, and the query options are comma-separated.
const (
	reFname = `[a-zA-Z0-9 _:'.\-$]+`
	rePath  = `(/?(?:` + reFname + `/)*(?:` + reFname + `))`
	reID    = `[a-zA-Z_][a-zA-Z0-9_]*`
	reVar   = reID + `=` + rePath
	reVars  = reVar + `(?:,` + reVar + `)*`
)

var (
	urlRegexp = regexp.MustCompile(`^(` + reID + `):` + rePath + `(?:\?(` + reVars + `))?$`)
	varRegexp = regexp.MustCompile(`^(` + reID + `)=` + rePath + `$`)
)

// ParseURL splits a sink URL into scheme, path and option map.
func ParseURL(url string) (scheme, path string, vars map[string]string, err error) {
	m := urlRegexp.FindStringSubmatch(url)
	if m == nil {
		return "", "", nil, fmt.Errorf("%w: %q", errs.ErrMalformedURL, url)
	}

	scheme, path = m[1], m[2]
	vars = make(map[string]string)
	if m[3] != "" {
		for _, kv := range strings.Split(m[3], ",") {
			vm := varRegexp.FindStringSubmatch(kv)
			if vm == nil {
				return "", "", nil, fmt.Errorf("%w: bad option %q", errs.ErrMalformedURL, kv)
			}
			vars[vm[1]] = vm[2]
		}
	}

	return scheme, path, vars, nil
}

var openModes = map[string]format.OpenMode{
	"truncate": format.Truncate,
	"append":   format.Append,
}

var textFormats = map[string]format.TextFormat{
	"csvtab": format.CSVTab,
	"csvrel": format.CSVRel,
}

// pickOption resolves a named enum option, falling back to a default when
// absent. Unknown option values fail; unknown option names are ignored.
func pickOption[T any](vars map[string]string, name string, values map[string]T, def T) (T, error) {
	val, ok := vars[name]
	if !ok {
		return def, nil
	}
	v, ok := values[val]
	if !ok {
		return def, fmt.Errorf("%w: %s=%s", errs.ErrBadOption, name, val)
	}

	return v, nil
}

// Open constructs a sink from a URL.
//
// Recognized schemes: "file" (text sink on a file), "hdf5" (binary container
// sink), "stdout" and "stderr" (shared text sinks on the standard streams;
// the path is ignored). Recognized options: open_mode (truncate|append,
// default truncate) and format (csvtab|csvrel, default csvrel).
func Open(url string) (table.Sink, error) {
	scheme, path, vars, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	mode, err := pickOption(vars, "open_mode", openModes, format.DefaultOpenMode)
	if err != nil {
		return nil, err
	}
	textFormat, err := pickOption(vars, "format", textFormats, format.DefaultTextFormat)
	if err != nil {
		return nil, err
	}

	switch scheme {
	case "file":
		return OpenText(path, mode, WithTextFormat(textFormat))
	case "hdf5":
		return OpenBinary(path, WithOpenMode(mode))
	case "stdout":
		return Stdout(), nil
	case "stderr":
		return Stderr(), nil
	default:
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownScheme, scheme)
	}
}
