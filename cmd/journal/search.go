package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pbaille/journal/internal/recorder"
	"github.com/pbaille/journal/internal/store"
)

func rebuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the search index from the reflections file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := rebuildIndex()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d reflections into %s\n", n, cfg.IndexDB)
			return nil
		},
	}
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search reflections by title, content, category or learning",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if indexStale(cfg.DataFile, cfg.IndexDB) {
				if _, err := rebuildIndex(); err != nil {
					return err
				}
			}

			idx, err := store.OpenIndex(cfg.IndexDB)
			if err != nil {
				return err
			}
			defer idx.Close()

			entries, err := idx.Search(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No matching reflections found.")
				return nil
			}
			for i, e := range entries {
				recorder.WriteEntry(out, i+1, e)
			}
			return nil
		},
	}
}

func rebuildIndex() (int, error) {
	records, err := getStore(cliLogger()).Read()
	if err != nil {
		return 0, err
	}

	idx, err := store.OpenIndex(cfg.IndexDB)
	if err != nil {
		return 0, err
	}
	defer idx.Close()

	return idx.Rebuild(records)
}

// indexStale reports whether the index is missing or older than the data file
func indexStale(dataPath, indexPath string) bool {
	idx, err := os.Stat(indexPath)
	if err != nil {
		return true
	}
	data, err := os.Stat(dataPath)
	if errors.Is(err, os.ErrNotExist) {
		return false
	}
	if err != nil {
		return true
	}
	return data.ModTime().After(idx.ModTime())
}
