package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

func newPreviewCommand(workDir string, stdout io.Writer) *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "preview target.md",
		Short: "Render a markdown document to the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(resolvePath(workDir, args[0]))
			if err != nil {
				return err
			}
			renderer, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(width),
			)
			if err != nil {
				return err
			}
			out, err := renderer.Render(string(buf))
			if err != nil {
				return fmt.Errorf("render %s: %w", args[0], err)
			}
			_, err = io.WriteString(stdout, out)
			return err
		},
	}
	cmd.Flags().IntVar(&width, "width", 80, "wrap rendered output at this column")
	return cmd
}
