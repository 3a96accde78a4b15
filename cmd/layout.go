package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/note-leads/internal/layout"
)

var (
	layoutFrom  string
	layoutSheet string
	layoutSave  string
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Show, import or save a fixed-width layout",
	Long: "Loads the built-in layout, a YAML layout or a layout sheet from an .xlsx workbook, " +
		"validates it, and prints it as YAML or writes it with --save.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		l, err := layout.Load(layoutFrom, layoutSheet)
		if err != nil {
			return err
		}
		if err := l.Validate(); err != nil {
			return err
		}

		if layoutSave != "" {
			if err := l.Save(layoutSave); err != nil {
				return err
			}
			zap.L().Info("layout saved",
				zap.String("path", layoutSave),
				zap.Int("fields", len(l.Fields)),
				zap.Int("line_length", l.MaxEnd()),
			)
			return nil
		}

		data, err := yaml.Marshal(l)
		if err != nil {
			return eris.Wrap(err, "layout: marshal yaml")
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), strings.TrimRight(string(data), "\n")+"\n")
		return err
	},
}

func init() {
	layoutCmd.Flags().StringVar(&layoutFrom, "from", "", "layout source (.yaml or .xlsx); default is the built-in layout")
	layoutCmd.Flags().StringVar(&layoutSheet, "sheet", "", "sheet name for .xlsx sources (default \"Property\")")
	layoutCmd.Flags().StringVar(&layoutSave, "save", "", "write the layout as YAML to this path")
	rootCmd.AddCommand(layoutCmd)
}
