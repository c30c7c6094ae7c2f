package main

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rawbytedev/partinit/internal/layout"
	"github.com/rawbytedev/partinit/internal/wire"
)

type memberInfo struct {
	Name     string       `yaml:"name" json:"name"`
	Kind     string       `yaml:"kind" json:"kind"`
	Offset   uint64       `yaml:"offset" json:"offset"`
	Size     uint64       `yaml:"size" json:"size"`
	Align    uint64       `yaml:"align" json:"align"`
	Wire     int          `yaml:"wire,omitempty" json:"wire,omitempty"`
	Exported bool         `yaml:"exported" json:"exported"`
	Members  []memberInfo `yaml:"members,omitempty" json:"members,omitempty"`
}

type typeInfo struct {
	Type        string       `yaml:"type" json:"type"`
	Size        uint64       `yaml:"size" json:"size"`
	Align       uint64       `yaml:"align" json:"align"`
	PointerFree bool         `yaml:"pointer_free" json:"pointer_free"`
	Members     []memberInfo `yaml:"members" json:"members"`
	Leaves      []string     `yaml:"leaves" json:"leaves"`
}

func newLayoutCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:       "layout <type>",
		Short:     "Print the member layout of a demo type",
		Long:      "Print the member layout of one of: " + strings.Join(demoNames(), ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: demoNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, ok := demoTypes[args[0]]
			if !ok {
				return fmt.Errorf("unknown type %q (want one of %s)", args[0], strings.Join(demoNames(), ", "))
			}
			info, err := describe(t)
			if err != nil {
				return err
			}
			a.logger.Debug("layout described", "type", info.Type, "members", len(info.Members))
			return writeInfo(cmd.OutOrStdout(), format, info)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format: yaml or json")
	return cmd
}

func describe(t reflect.Type) (typeInfo, error) {
	plan, err := layout.Of(t)
	if err != nil {
		return typeInfo{}, err
	}
	members, err := describeMembers(plan)
	if err != nil {
		return typeInfo{}, err
	}
	info := typeInfo{
		Type:        t.String(),
		Size:        uint64(plan.Size),
		Align:       uint64(plan.Align),
		PointerFree: layout.PointerFree(t),
		Members:     members,
	}
	for _, l := range layout.Leaves(t) {
		info.Leaves = append(info.Leaves, fmt.Sprintf("%s@%d+%d", l.Name, l.Offset, l.Size))
	}
	return info, nil
}

// describeMembers expands nested structs; arrays are reported as a single
// member.
func describeMembers(plan *layout.Plan) ([]memberInfo, error) {
	var out []memberInfo
	for _, m := range plan.Members {
		mi := memberInfo{
			Name:     m.Name,
			Kind:     m.Type.Kind().String(),
			Offset:   uint64(m.Offset),
			Size:     uint64(m.Size),
			Align:    uint64(layout.Alignment(m.Type)),
			Exported: m.Exported,
		}
		if k := m.Type.Kind(); wire.IsFixedKind(k) {
			mi.Wire = wire.FixedSize(k)
		}
		if m.Type.Kind() == reflect.Struct {
			sub, err := layout.Of(m.Type)
			if err != nil {
				return nil, err
			}
			if mi.Members, err = describeMembers(sub); err != nil {
				return nil, err
			}
		}
		out = append(out, mi)
	}
	return out, nil
}

func writeInfo(w io.Writer, format string, info typeInfo) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(info); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	default:
		return fmt.Errorf("unknown format %q (want yaml or json)", format)
	}
}
