package main

import (
	"encoding/hex"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/fieldgraph/varspec/bitstream"
	"github.com/fieldgraph/varspec/flow"
	"github.com/fieldgraph/varspec/memory"
	"github.com/fieldgraph/varspec/memsnap"
	"github.com/fieldgraph/varspec/parser"
	"github.com/fieldgraph/varspec/vartree"
)

func newParseCmd() *cobra.Command {
	var (
		schemaFiles           []string
		inputFile             string
		mustConsumeEverything bool
		snapshotFile          string
	)

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse a message against one or more schema documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(schemaFiles) == 0 {
				return fail(exitInvalidArguments, "parse: at least one --schema is required")
			}

			syms := make([]*vartree.Symbol, 0, len(schemaFiles))
			for _, sf := range schemaFiles {
				sym, err := loadSymbol(sf)
				if err != nil {
					return err
				}
				syms = append(syms, sym)
			}

			data, err := os.ReadFile(inputFile)
			if err != nil {
				return fail(exitIOError, "reading input %s: %w", inputFile, err)
			}

			session, err := openSession(snapshotFile)
			if err != nil {
				return err
			}

			if len(syms) > 1 {
				return runFlowParse(cmd, syms, data, session, snapshotFile)
			}
			return runSingleParse(cmd, syms[0], data, session, mustConsumeEverything, snapshotFile)
		},
	}

	cmd.Flags().StringArrayVar(&schemaFiles, "schema", nil, "path to a declarative schema document (repeatable; more than one enables flow segmentation)")
	cmd.Flags().StringVar(&inputFile, "input", "", "path to the message bytes to parse")
	cmd.Flags().BoolVar(&mustConsumeEverything, "must-consume-everything", true, "require a successful parse to consume the entire input (single-schema mode only)")
	cmd.Flags().StringVar(&snapshotFile, "snapshot", "", "memsnap file to load session-scoped memory from (written back on success)")
	cmd.MarkFlagRequired("input")

	return cmd
}

func openSession(snapshotFile string) (*memory.Session, error) {
	if snapshotFile == "" {
		return memory.NewSession(), nil
	}
	f, err := os.Open(snapshotFile)
	if os.IsNotExist(err) {
		return memory.NewSession(), nil
	}
	if err != nil {
		return nil, fail(exitIOError, "opening snapshot %s: %w", snapshotFile, err)
	}
	defer f.Close()
	session, err := memsnap.Read(f)
	if err != nil {
		return nil, fail(exitIOError, "reading snapshot %s: %w", snapshotFile, err)
	}
	return session, nil
}

func saveSession(snapshotFile string, session *memory.Session) error {
	if snapshotFile == "" {
		return nil
	}
	f, err := os.Create(snapshotFile)
	if err != nil {
		return fail(exitIOError, "writing snapshot %s: %w", snapshotFile, err)
	}
	defer f.Close()
	if err := memsnap.Write(f, session); err != nil {
		return fail(exitIOError, "writing snapshot %s: %w", snapshotFile, err)
	}
	return nil
}

func runSingleParse(cmd *cobra.Command, sym *vartree.Symbol, data []byte, session *memory.Session, mustConsumeEverything bool, snapshotFile string) error {
	mp := parser.New(symbolRootForCmd(sym))
	mem := session.Begin()
	labels := labelsOf(sym)
	bits := bitstream.FromBytes(data, bitstream.BigEndian)

	found := 0
	for p, err := range mp.ParseBits(bits, mem, parser.WithMustConsumeEverything(mustConsumeEverything)) {
		if err != nil {
			return fail(exitParseError, "parse: %w", err)
		}
		found++
		printAssignments(cmd, p, labels)
		mem = p.Memory
	}
	if found == 0 {
		return fail(exitParseError, "parse: no successful path found")
	}
	mem.Commit()
	return saveSession(snapshotFile, session)
}

func runFlowParse(cmd *cobra.Command, syms []*vartree.Symbol, data []byte, session *memory.Session, snapshotFile string) error {
	fp := flow.NewFlowParser(syms)
	found := 0
	for segs, err := range fp.ParseFlow(data, session) {
		if err != nil {
			return fail(exitParseError, "parse: %w", err)
		}
		found++
		printSegments(cmd, segs)
		break // report the first successful segmentation; ties within it are already broken by schema order
	}
	if found == 0 {
		return fail(exitParseError, "parse: no segmentation of the input matched")
	}
	return saveSession(snapshotFile, session)
}

func printAssignments(cmd *cobra.Command, p *parser.ParsingPath, labels map[vartree.VarId]string) {
	assignments := make(map[string]string, len(labels))
	for id, name := range labels {
		if v, ok := p.Assignments.Get(uint64(id)); ok {
			assignments[name] = hex.EncodeToString(v.Bytes())
		}
	}
	out := struct {
		RemainingBits int               `json:"remaining_bits"`
		Assignments   map[string]string `json:"assignments"`
	}{RemainingBits: p.Cursor.Len(), Assignments: assignments}
	json.NewEncoder(cmd.OutOrStdout()).Encode(out)
}

func printSegments(cmd *cobra.Command, segs []flow.Segment) {
	type seg struct {
		Symbol string `json:"symbol"`
		Hex    string `json:"hex"`
	}
	out := make([]seg, len(segs))
	for i, s := range segs {
		out[i] = seg{Symbol: s.Symbol.Name, Hex: hex.EncodeToString(s.Bits.Bytes())}
	}
	json.NewEncoder(cmd.OutOrStdout()).Encode(out)
}

func symbolRootForCmd(sym *vartree.Symbol) *vartree.Variable {
	if len(sym.Fields) == 1 {
		return sym.Fields[0].Domain
	}
	domains := make([]*vartree.Variable, len(sym.Fields))
	for i, f := range sym.Fields {
		domains[i] = f.Domain
	}
	return vartree.Agg(domains...)
}
