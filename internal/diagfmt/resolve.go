package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"flagger/internal/flagset"
)

type FlagOutput struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Bits      string `json:"bits"`
	Decimal   string `json:"decimal"`
	SingleBit bool   `json:"single_bit"`
}

type FlagSetOutput struct {
	Name   string       `json:"name"`
	Width  int          `json:"width"`
	GoType string       `json:"go_type"`
	MaxBit int          `json:"max_bit"`
	Flags  []FlagOutput `json:"flags"`
}

func flagSetOutput(set *flagset.FlagSet) FlagSetOutput {
	out := FlagSetOutput{
		Name:   set.Name,
		Width:  int(set.Width),
		GoType: set.Width.GoType(),
		MaxBit: set.MaxBit,
		Flags:  make([]FlagOutput, 0, len(set.Flags)),
	}
	for _, f := range set.Flags {
		v := flagset.Value{Bits: f.Value, Width: set.Width}
		out.Flags = append(out.Flags, FlagOutput{
			Name:      f.Name,
			Value:     v.Hex(),
			Bits:      v.Binary(),
			Decimal:   v.String(),
			SingleBit: f.SingleBit(),
		})
	}
	return out
}

// FormatResolvedJSON writes every set with its flags.
func FormatResolvedJSON(w io.Writer, sets []*flagset.FlagSet) error {
	out := make([]FlagSetOutput, 0, len(sets))
	for _, s := range sets {
		out = append(out, flagSetOutput(s))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// FormatResolvedPretty prints one bordered table per set.
func FormatResolvedPretty(w io.Writer, sets []*flagset.FlagSet, useColor bool) error {
	title := lipgloss.NewStyle()
	if useColor {
		title = title.Bold(true).Foreground(lipgloss.Color("12"))
	}
	cell := lipgloss.NewStyle().Padding(0, 1)

	for i, s := range sets {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, title.Render(fmt.Sprintf("flags %s (%s, %d bits used)", s.Name, s.Width.GoType(), s.MaxBit)))

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("NAME", "VALUE", "BITS", "KIND").
			StyleFunc(func(row, col int) lipgloss.Style { return cell })
		for _, f := range flagSetOutput(s).Flags {
			kind := "mask"
			if f.SingleBit {
				kind = "bit"
			}
			t.Row(f.Name, f.Value, f.Bits, kind)
		}
		if _, err := fmt.Fprintln(w, t.String()); err != nil {
			return err
		}
	}
	if len(sets) == 0 {
		fmt.Fprintln(w, "no flag sets")
	}
	return nil
}

// EvalOutput is the JSON shape of an eval report.
type EvalOutput struct {
	Set     string      `json:"set"`
	Expr    string      `json:"expr"`
	Value   string      `json:"value"`
	Bits    string      `json:"bits"`
	Decimal string      `json:"decimal"`
	Names   string      `json:"names"`
	Queries []QueryJSON `json:"queries"`
}

type QueryJSON struct {
	Flag        string `json:"flag"`
	HasAnyFlag  bool   `json:"has_any_flag"`
	HasAllFlags bool   `json:"has_all_flags"`
}

func evalOutput(set *flagset.FlagSet, expr string, v flagset.Value, queries []flagset.Query) EvalOutput {
	out := EvalOutput{
		Set:     set.Name,
		Expr:    expr,
		Value:   v.Hex(),
		Bits:    v.Binary(),
		Decimal: v.String(),
		Names:   set.Format(v),
		Queries: make([]QueryJSON, 0, len(queries)),
	}
	for _, q := range queries {
		out.Queries = append(out.Queries, QueryJSON{Flag: q.Flag.Name, HasAnyFlag: q.HasAnyFlag, HasAllFlags: q.HasAllFlags})
	}
	return out
}

func FormatEvalJSON(w io.Writer, set *flagset.FlagSet, expr string, v flagset.Value, queries []flagset.Query) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(evalOutput(set, expr, v, queries))
}

// FormatEvalPretty prints the value followed by one has-any/has-all row
// per flag of the set.
func FormatEvalPretty(w io.Writer, set *flagset.FlagSet, expr string, v flagset.Value, queries []flagset.Query) error {
	out := evalOutput(set, expr, v, queries)
	fmt.Fprintf(w, "%s = %s\n", out.Expr, out.Names)
	fmt.Fprintf(w, "  value: %s (%s)\n", out.Value, out.Decimal)
	fmt.Fprintf(w, "  bits:  %s\n", out.Bits)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("FLAG", "HAS_ANY", "HAS_ALL")
	for _, q := range out.Queries {
		t.Row(q.Flag, strconv.FormatBool(q.HasAnyFlag), strconv.FormatBool(q.HasAllFlags))
	}
	_, err := fmt.Fprintln(w, t.String())
	return err
}
