package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"github.com/alecthomas/kong"
	"github.com/epithet-ssh/lpframe/pkg/config"
)

// configLoader reads a config file for kong. Files opened from disk go
// through config.LoadValue so .cue files work; anything else is read as
// YAML or JSON.
func configLoader(r io.Reader) (kong.Resolver, error) {
	var (
		v   cue.Value
		err error
	)
	if f, ok := r.(*os.File); ok {
		v, err = config.LoadValue(f.Name())
	} else {
		v, err = config.LoadValueFromReader(r)
	}
	if err != nil {
		return nil, err
	}
	if _, err := config.DecodeSettings(v); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cueResolver(v), nil
}

// cueResolver resolves flags from v. A flag named "max-length" on the
// serve command is looked up as serve.max_length, then max_length.
func cueResolver(v cue.Value) kong.Resolver {
	return kong.ResolverFunc(func(_ *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		key := strings.ReplaceAll(flag.Name, "-", "_")

		var paths []string
		if parent != nil {
			if prefix := commandPath(parent.Node()); prefix != "" {
				paths = append(paths, prefix+"."+key)
			}
		}
		paths = append(paths, key)

		for _, p := range paths {
			fv := v.LookupPath(cue.ParsePath(p))
			if !fv.Exists() {
				continue
			}
			return flagValue(fv)
		}
		return nil, nil
	})
}

// commandPath returns the dotted command names leading to node, e.g.
// "serve". The application node itself contributes nothing.
func commandPath(node *kong.Node) string {
	var names []string
	for n := node; n != nil; n = n.Parent {
		if n.Type == kong.CommandNode {
			names = append([]string{strings.ReplaceAll(n.Name, "-", "_")}, names...)
		}
	}
	return strings.Join(names, ".")
}

// flagValue converts v into something kong's mappers accept.
func flagValue(v cue.Value) (any, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		return v.String()
	case cue.BoolKind:
		return v.Bool()
	case cue.IntKind:
		// kong's numeric and counter mappers all parse strings
		n, err := v.Int64()
		if err != nil {
			return nil, err
		}
		return strconv.FormatInt(n, 10), nil
	case cue.FloatKind, cue.NumberKind:
		n, err := v.Float64()
		if err != nil {
			return nil, err
		}
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	case cue.ListKind:
		var items []string
		list, err := v.List()
		if err != nil {
			return nil, err
		}
		for list.Next() {
			s, err := flagValue(list.Value())
			if err != nil {
				return nil, err
			}
			items = append(items, fmt.Sprint(s))
		}
		return strings.Join(items, ","), nil
	default:
		return nil, fmt.Errorf("unsupported config value at %s: %v", v.Path(), v.IncompleteKind())
	}
}
