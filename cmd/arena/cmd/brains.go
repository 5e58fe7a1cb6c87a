package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/picogrid/tank-arena/pkg/brain"
)

var brainsCmd = &cobra.Command{
	Use:   "brains [sample]",
	Short: "List built-in strategies and sample scripts",
	Long: `List the built-in strategies usable as "builtin:<name>" brain code
and the sample JavaScript brains. With a sample name, print its source.`,
	Args: cobra.MaximumNArgs(1),
	RunE: listBrains,
}

func listBrains(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		source, ok := brain.Samples()[args[0]]
		if !ok {
			return fmt.Errorf("unknown sample %q", args[0])
		}
		fmt.Print(source)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tKIND\tDESCRIPTION")
	_, _ = fmt.Fprintln(w, "----\t----\t-----------")

	for _, info := range brain.DefaultRegistry.List() {
		_, _ = fmt.Fprintf(w, "%s\tbuiltin\t%s\n", info.Name, info.Description)
	}
	for _, name := range brain.SampleNames() {
		_, _ = fmt.Fprintf(w, "%s\tsample\tJavaScript, see \"brains %s\"\n", name, name)
	}

	return w.Flush()
}
