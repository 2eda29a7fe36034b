package main

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fyrsmithlabs/notionctl/internal/tools"
)

// toolLogLevel keeps tool runs quiet on stderr unless --log-level is set.
const toolLogLevel = "error"

// newToolCmds creates one subcommand per registered tool.
func newToolCmds(c *cli) []*cobra.Command {
	all := tools.All()
	cmds := make([]*cobra.Command, 0, len(all))
	for _, d := range all {
		cmds = append(cmds, newToolCmd(c, d))
	}
	return cmds
}

// newToolCmd derives a subcommand from a descriptor. Positional fields
// become arguments in declaration order; every other field becomes a
// kebab-case flag.
func newToolCmd(c *cli, d tools.Descriptor) *cobra.Command {
	var positionals []tools.Field
	use := []string{d.Name}
	for _, f := range d.Fields {
		if !f.Positional {
			continue
		}
		positionals = append(positionals, f)
		if f.Required {
			use = append(use, "<"+f.Name+">")
		} else {
			use = append(use, "["+f.Name+"]")
		}
	}

	cmd := &cobra.Command{
		Use:   strings.Join(use, " "),
		Short: d.Description,
		Args:  maxArgs(len(positionals)),
	}

	for _, f := range d.Fields {
		if f.Positional {
			continue
		}
		addFieldFlag(cmd.Flags(), f)
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		toolArgs, err := collectArgs(cmd.Flags(), d, positionals, args)
		if err != nil {
			return err
		}
		rt, err := c.runtime(cmd, toolLogLevel)
		if err != nil {
			return err
		}
		env := rt.dispatcher.Dispatch(cmd.Context(), d.Name, toolArgs)
		return emit(cmd.OutOrStdout(), cmd.ErrOrStderr(), c.opts.output, env)
	}
	return cmd
}

// maxArgs is cobra.MaximumNArgs reported as an argument error.
func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MaximumNArgs(n)(cmd, args); err != nil {
			return argumentError("%v", err)
		}
		return nil
	}
}

func flagName(f tools.Field) string {
	return strcase.ToKebab(f.Name)
}

func flagUsage(f tools.Field) string {
	usage := f.Description
	if len(f.Enum) > 0 {
		usage += " (" + strings.Join(f.Enum, ", ") + ")"
	}
	if f.Default != nil {
		usage += fmt.Sprintf(" [default %v]", f.Default)
	}
	if f.Required {
		usage += " (required)"
	}
	return usage
}

// addFieldFlag registers a flag without a cobra default: defaults belong
// to the registry, and only flags the user set are forwarded.
func addFieldFlag(fs *pflag.FlagSet, f tools.Field) {
	name, usage := flagName(f), flagUsage(f)
	switch f.Kind {
	case tools.KindInteger:
		fs.Int(name, 0, usage)
	case tools.KindBoolean:
		fs.Bool(name, false, usage)
	default:
		fs.String(name, "", usage)
	}
}

// collectArgs builds the argument map from positional args and the flags
// that were explicitly set.
func collectArgs(fs *pflag.FlagSet, d tools.Descriptor, positionals []tools.Field, args []string) (map[string]any, error) {
	out := make(map[string]any, len(d.Fields))
	for i, arg := range args {
		out[positionals[i].Name] = arg
	}

	for _, f := range d.Fields {
		if f.Positional {
			continue
		}
		name := flagName(f)
		if !fs.Changed(name) {
			continue
		}

		var (
			v   any
			err error
		)
		switch f.Kind {
		case tools.KindInteger:
			v, err = fs.GetInt(name)
		case tools.KindBoolean:
			v, err = fs.GetBool(name)
		default:
			v, err = fs.GetString(name)
		}
		if err != nil {
			return nil, argumentError("invalid --%s: %v", name, err)
		}
		out[f.Name] = v
	}
	return out, nil
}
