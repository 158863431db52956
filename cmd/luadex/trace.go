package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luadex/luadex/mount"
	"github.com/luadex/luadex/tuning"
)

var (
	traceScripts string
	traceIndex   string
	tracePrefix  string
	traceJSON    bool
)

var traceCmd = &cobra.Command{
	Use:   "trace [key-or-expr]",
	Short: "Explain how a tuning constant resolves",
	Long: `Trace resolves a tuning key or expression against the scripts'
tuning source and prints the resolution chain. With --index it queries
a stored trace index instead (keys follow the item:/cooking:/craft:
conventions and are prefix-queryable via --prefix).

Examples:
  luadex trace --scripts ./scripts TUNING.CALORIES_MED
  luadex trace --scripts ./scripts "TUNING.CALORIES_SMALL * 2 + 1"
  luadex trace --index out/tuning_trace.json --prefix item:spear:`,
	RunE: runTrace,
}

func init() {
	traceCmd.Flags().StringVar(&traceScripts, "scripts", "", "Scripts directory (defaults to config paths.scripts_dir)")
	traceCmd.Flags().StringVar(&traceIndex, "index", "", "Stored trace index JSON")
	traceCmd.Flags().StringVar(&tracePrefix, "prefix", "", "Prefix query against the stored index")
	traceCmd.Flags().BoolVarP(&traceJSON, "json", "j", false, "Output as JSON")
	rootCmd.AddCommand(traceCmd)
}

func runTrace(cmd *cobra.Command, args []string) error {
	if traceIndex != "" {
		return runTraceIndex(args)
	}

	if len(args) != 1 {
		return fmt.Errorf("expected exactly one key or expression")
	}
	scripts := traceScripts
	if scripts == "" {
		scripts = cfg.Paths.ScriptsDir
	}

	m, err := mount.OpenDir(scripts)
	if err != nil {
		return err
	}
	src, ok := m.Read("scripts/tuning.lua")
	if !ok {
		return fmt.Errorf("tuning source not found in %s", scripts)
	}
	res := tuning.NewResolver(src)

	query := args[0]
	if strings.ContainsAny(query, "+-*/() ") {
		tr := res.TraceExpr(query)
		if traceJSON {
			return outputJSON(tr)
		}
		fmt.Printf("expr:     %s\n", tr.Expr)
		fmt.Printf("resolved: %s\n", tr.ExprResolved)
		if tr.Value != nil {
			fmt.Printf("value:    %g\n", *tr.Value)
		} else {
			fmt.Println("value:    (unresolvable)")
		}
		if tr.ExprChain != "" {
			fmt.Printf("chains:   %s\n", tr.ExprChain)
		}
		return nil
	}

	tr := res.TraceKey(query)
	if traceJSON {
		return outputJSON(tr)
	}
	fmt.Println(tr.Chain)
	if tr.Value == nil {
		fmt.Println("(unresolvable)")
	}
	return nil
}

func runTraceIndex(args []string) error {
	idx, err := tuning.LoadTraceIndex(traceIndex)
	if err != nil {
		return err
	}

	if tracePrefix != "" {
		hits := idx.Prefix(tracePrefix, 0)
		if traceJSON {
			return outputJSON(hits)
		}
		for key, tr := range hits {
			value := "nil"
			if tr.Value != nil {
				value = fmt.Sprintf("%g", *tr.Value)
			}
			fmt.Printf("%-48s %s = %s\n", key, tr.Expr, value)
		}
		fmt.Printf("%d keys\n", len(hits))
		return nil
	}

	if len(args) != 1 {
		return fmt.Errorf("expected a trace key (or use --prefix)")
	}
	tr, ok := idx.Get(args[0])
	if !ok {
		return fmt.Errorf("no trace for key %q", args[0])
	}
	return outputJSON(tr)
}
