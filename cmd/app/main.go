package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/caustin-usgs/lcmap-gaia/internal/domain/chip"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Fatalf("gaia stopped with error: %v", err)
	}
}

// generator is the subset of chip.Service the generate command needs.
type generator interface {
	Generate(ctx context.Context, req chip.Request) (chip.Result, error)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gaia",
		Short:         "Annual land cover product generation",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE:  runServe,
		},
		newGenerateCmd(func() (generator, func(), error) {
			return initializeGenerator()
		}),
	)
	return root
}

func runServe(cmd *cobra.Command, _ []string) error {
	app, cleanup, err := initializeApp()
	if err != nil {
		return fmt.Errorf("wire application: %w", err)
	}
	defer cleanup()
	return app.Run(cmd.Context())
}

type generateFlags struct {
	cx    int64
	cy    int64
	dates []string
	years []int
}

func (f generateFlags) request() chip.Request {
	return chip.Request{Cx: f.cx, Cy: f.cy, Dates: f.dates, Years: f.years}
}

func newGenerateCmd(build func() (generator, func(), error)) *cobra.Command {
	var flags generateFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate and persist the products of one chip",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, cleanup, err := build()
			if err != nil {
				return fmt.Errorf("wire generator: %w", err)
			}
			defer cleanup()
			result, err := svc.Generate(cmd.Context(), flags.request())
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().Int64Var(&flags.cx, "cx", 0, "chip x coordinate")
	cmd.Flags().Int64Var(&flags.cy, "cy", 0, "chip y coordinate")
	cmd.Flags().StringSliceVar(&flags.dates, "date", nil, "query date YYYY-MM-DD, repeatable")
	cmd.Flags().IntSliceVar(&flags.years, "year", nil, "query year, repeatable")
	_ = cmd.MarkFlagRequired("cx")
	_ = cmd.MarkFlagRequired("cy")
	return cmd
}

func writeResult(w io.Writer, result chip.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
