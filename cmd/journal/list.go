package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pbaille/journal/internal/recorder"
)

func listCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all reflections, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := getStore(cliLogger())
			out := cmd.OutOrStdout()

			switch format {
			case "text":
				recorder.New(st, cmd.InOrStdin(), out).View()
				return nil
			case "json":
				b, err := json.MarshalIndent(st.Load(), "", "  ")
				if err != nil {
					return fmt.Errorf("encode reflections: %w", err)
				}
				fmt.Fprintln(out, string(b))
				return nil
			case "yaml":
				var docs []any
				for _, raw := range st.Load() {
					var v any
					if err := json.Unmarshal(raw, &v); err != nil {
						return fmt.Errorf("decode reflection: %w", err)
					}
					docs = append(docs, v)
				}
				b, err := yaml.Marshal(docs)
				if err != nil {
					return fmt.Errorf("encode reflections: %w", err)
				}
				fmt.Fprint(out, string(b))
				return nil
			default:
				return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json or yaml")
	return cmd
}
