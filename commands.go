package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nconklindev/tidysheet/internal/config"
	"github.com/nconklindev/tidysheet/internal/converter"
	"github.com/nconklindev/tidysheet/internal/logger"
	"github.com/nconklindev/tidysheet/internal/profile"
	"github.com/nconklindev/tidysheet/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var stdoutIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3B82F6"))

type globalFlags struct {
	envFile string
	verbose bool
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   "tidysheet",
		Short: "Normalize spreadsheet headers and export clean CSV",
		Long: `tidysheet reads the first sheet of an Excel workbook (.xlsx or .xls),
rewrites its header row into lowercase snake_case names and exports the
result as CSV.

Run without arguments to open the interactive file picker.

Examples:
  tidysheet convert "Relatório de Vendas.xlsx"
  tidysheet convert legacy.xls -o ./out
  tidysheet inspect vendas.xlsx -n 5`,
		Version:       fmt.Sprintf("%s\ncommit: %s\nbuilt: %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(flags)
		},
	}
	cmd.SetVersionTemplate("tidysheet {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "Env file with TIDYSHEET_* settings")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "V", false, "Write logs to stderr")

	cmd.AddCommand(
		newConvertCmd(&flags),
		newInspectCmd(&flags),
	)

	return cmd
}

func newConvertCmd(flags *globalFlags) *cobra.Command {
	var outputDir string
	var keepDuplicates bool

	cmd := &cobra.Command{
		Use:   "convert FILE",
		Short: "Write FILE's first sheet as <name>_normalized.csv",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(*flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer log.Close()

			if cmd.Flags().Changed("output") {
				cfg.OutputDir = outputDir
			}
			if cmd.Flags().Changed("keep-duplicates") {
				cfg.KeepDuplicates = keepDuplicates
			}

			conv := newConverter(cfg, log)
			result, err := conv.Convert(args[0], cfg.OutputDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s\n", result.OutputFile)
			fmt.Fprintf(out, "%d columns, %d rows\n", len(result.Headers), result.RowsWritten)
			fmt.Fprintf(out, "Headers: %s\n", strings.Join(result.Headers, ", "))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (default: next to FILE)")
	cmd.Flags().BoolVar(&keepDuplicates, "keep-duplicates", false, "Keep repeated header names instead of suffixing _2, _3...")

	return cmd
}

func newInspectCmd(flags *globalFlags) *cobra.Command {
	var rows int

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Show normalized headers, a column profile and a row preview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(*flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer log.Close()

			if cmd.Flags().Changed("rows") {
				if rows < 0 {
					return fmt.Errorf("--rows must be zero or more, got %d", rows)
				}
				cfg.PreviewRows = rows
			}

			ds, err := newConverter(cfg, log).Load(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.Render("Columns"))

			profiles := ltable.New().
				Border(lipgloss.NormalBorder()).
				Headers("#", "header", "profile")
			for _, p := range profile.Summarize(ds) {
				profiles.Row(fmt.Sprint(p.Index+1), p.Header, p.Describe())
			}
			fmt.Fprintln(out, profiles.String())

			preview := ds.Preview(cfg.PreviewRows)
			if len(preview) > 0 {
				fmt.Fprintln(out, headerStyle.Render("Preview"))

				grid := ltable.New().
					Border(lipgloss.NormalBorder()).
					Headers(ds.Headers...)
				for _, row := range preview {
					cells := make([]string, len(ds.Headers))
					for i := range cells {
						cells[i] = row.At(i).String()
					}
					grid.Row(cells...)
				}
				fmt.Fprintln(out, grid.String())
			}

			if extra := ds.Width() - len(ds.Headers); extra > 0 {
				fmt.Fprintf(out, "Warning: %d column(s) past the header row will be exported with blank names\n", extra)
			}
			fmt.Fprintf(out, "Showing %d of %d rows\n", len(preview), len(ds.Rows))
			if hidden := ds.Hidden(cfg.PreviewRows); hidden > 0 {
				fmt.Fprintf(out, "... and %d more rows hidden\n", hidden)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&rows, "rows", "n", config.DefaultPreviewRows, "Number of rows to preview")

	return cmd
}

func runTUI(flags globalFlags) error {
	if !stdoutIsTerminal() {
		return errors.New("interactive mode needs a terminal; use 'tidysheet convert FILE' instead")
	}

	// Bubble Tea owns the screen, so logs only go to a file.
	flags.verbose = false
	cfg, log, err := setup(flags, nil)
	if err != nil {
		return err
	}
	defer log.Close()

	log.Info("Starting interactive mode", "version", version)

	p := tea.NewProgram(
		ui.InitialModel(cfg, newConverter(cfg, log), log),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err = p.Run()
	return err
}

func setup(flags globalFlags, stderr io.Writer) (*config.Config, logger.Logger, error) {
	cfg, err := config.LoadFile(flags.envFile)
	if err != nil {
		return nil, nil, err
	}

	opts := logger.Options{File: cfg.LogFile, JSON: cfg.LogJSON}
	if flags.verbose {
		opts.Fallback = stderr
	}
	log, err := logger.New(opts)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func newConverter(cfg *config.Config, log logger.Logger) *converter.Converter {
	return converter.New(
		converter.WithKeepDuplicates(cfg.KeepDuplicates),
		converter.WithLogger(log),
	)
}
