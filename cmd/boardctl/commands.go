package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kirillkom/oracion-board/internal/core/domain"
	"github.com/kirillkom/oracion-board/internal/core/jsonspan"
	"github.com/kirillkom/oracion-board/internal/core/liturgy"
	"github.com/kirillkom/oracion-board/internal/core/verdict"
)

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "boardctl",
		Short:         "Offline tools for the oracion board",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)

	root.AddCommand(
		newClassifyCmd(),
		newExtractCmd(),
		newVerdictCmd(),
		newAngleCmd(),
	)
	return root
}

func newClassifyCmd() *cobra.Command {
	var meditations string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "classify <hex>...",
		Short: "Classify colours into liturgical categories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table := liturgy.DefaultTable()
			if meditations != "" {
				loaded, err := liturgy.LoadTableFile(meditations)
				if err != nil {
					return err
				}
				table = loaded
			}

			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			for _, hex := range args {
				category := liturgy.Classify(hex)
				med := table.Lookup(category)
				if asJSON {
					if err := enc.Encode(classifyLine{Color: hex, Category: category, Meditation: med}); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", hex, category, med.Display)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&meditations, "meditations", "", "YAML or JSON meditation table to use instead of the built-in one")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON object per colour")
	return cmd
}

type classifyLine struct {
	Color      string            `json:"color"`
	Category   domain.Category   `json:"category"`
	Meditation domain.Meditation `json:"meditation"`
}

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract [file|-]",
		Short: "Print the first balanced JSON object found in the input",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			span, ok := jsonspan.FirstSpan(text)
			if !ok {
				return domain.ErrNoJSONObject
			}
			fmt.Fprintln(cmd.OutOrStdout(), span)
			return nil
		},
	}
}

func newVerdictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verdict [file|-]",
		Short: "Parse a model response into a verdict",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(verdict.Parse(text))
		},
	}
}

func newAngleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "angle <label>",
		Short: "Print the servo angle for a confidence label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			label := verdict.NormalizeLabel(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", label, verdict.MapAngle(label))
			return nil
		},
	}
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}
