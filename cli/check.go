package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"prism-todo/codec"
	"prism-todo/config"
	"prism-todo/domain"
)

func newCheckCmd() *cobra.Command {
	var permissive bool
	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Validate a todo document and print its tasks by category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			decoder := cfg.Decoder()
			if cmd.Flags().Changed("permissive") {
				decoder.Permissive = permissive
			}
			tasks, err := checkFile(args[0], decoder)
			if err != nil {
				var ie *codec.ImportError
				if errors.As(err, &ie) {
					for _, p := range ie.Problems {
						fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", p)
					}
					return errors.New(ie.Message())
				}
				return err
			}
			printSummary(cmd.OutOrStdout(), tasks)
			return nil
		},
	}
	cmd.Flags().BoolVar(&permissive, "permissive", false, "skip schema validation")
	return cmd
}

func checkFile(path string, decoder codec.Decoder) (domain.Collection, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if err := codec.CheckSize(info.Size()); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decoder.ImportReader(f)
}

func printSummary(w io.Writer, tasks domain.Collection) {
	fmt.Fprintf(w, "%d tasks\n", len(tasks))
	shown := 0
	for _, g := range domain.GroupByCategory(tasks) {
		fmt.Fprintf(w, "%s (%d)\n", g.Category.DisplayName(), len(g.Items))
		for _, t := range g.Items {
			fmt.Fprintf(w, "  - %s\n", t.Title)
		}
		shown += len(g.Items)
	}
	if hidden := len(tasks) - shown; hidden > 0 {
		fmt.Fprintf(w, "%d tasks with an unknown category are not shown\n", hidden)
	}
}
