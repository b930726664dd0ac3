package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fieldgraph/varspec/fuzz"
	"github.com/fieldgraph/varspec/fuzz/profile"
	"github.com/fieldgraph/varspec/specializer"
)

func newSpecializeCmd() *cobra.Command {
	var (
		schemaFile  string
		profileFile string
		counterMax  float64
		snapshotFile string
	)

	cmd := &cobra.Command{
		Use:   "specialize",
		Short: "Produce specialized messages from a schema document",
		RunE: func(cmd *cobra.Command, args []string) error {
			if schemaFile == "" {
				return fail(exitInvalidArguments, "specialize: --schema is required")
			}
			sym, err := loadSymbol(schemaFile)
			if err != nil {
				return err
			}

			fz, err := loadFuzz(profileFile, counterMax, cmd)
			if err != nil {
				return err
			}

			session, err := openSession(snapshotFile)
			if err != nil {
				return err
			}

			sp := specializer.New(sym)
			count := 0
			for b, err := range sp.Specialize(session, fz) {
				if err != nil {
					return fail(exitSpecializeError, "specialize: %w", err)
				}
				count++
				fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(b))
			}
			if count == 0 {
				return fail(exitSpecializeError, "specialize: counter exhausted before producing any message")
			}
			return saveSession(snapshotFile, session)
		},
	}

	cmd.Flags().StringVar(&schemaFile, "schema", "", "path to a declarative schema document")
	cmd.Flags().StringVar(&profileFile, "profile", "", "path to a YAML fuzz profile (overrides --counter-max)")
	cmd.Flags().Float64Var(&counterMax, "counter-max", 0, "global mutation ceiling, absolute (>=1) or a domain-size ratio in (0,1); 0 keeps the engine default")
	cmd.Flags().StringVar(&snapshotFile, "snapshot", "", "memsnap file to load session-scoped memory from (written back on success)")

	return cmd
}

func loadFuzz(profileFile string, counterMax float64, cmd *cobra.Command) (*fuzz.Fuzz, error) {
	if profileFile != "" {
		raw, err := os.ReadFile(profileFile)
		if err != nil {
			return nil, fail(exitIOError, "reading fuzz profile %s: %w", profileFile, err)
		}
		fz, err := profile.Load(raw)
		if err != nil {
			return nil, fail(exitSchemaError, "loading fuzz profile %s: %w", profileFile, err)
		}
		return fz, nil
	}
	var opts []fuzz.Option
	if counterMax > 0 {
		opts = append(opts, fuzz.WithCounterMax(counterMax))
	}
	return fuzz.New(opts...), nil
}
