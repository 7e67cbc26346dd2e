package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mmynk/tabsplit/internal/parser"
	"github.com/mmynk/tabsplit/pkg/api"
)

type parseCmd struct {
	root       *rootCmd
	normalized bool
	explain    bool
}

func newParseCmd(root *rootCmd) *cobra.Command {
	pc := &parseCmd{root: root}
	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse OCR text of a receipt and print the result as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  pc.run,
	}

	cmd.Flags().BoolVar(&pc.normalized, "normalized", false, "Print the normalized text instead of JSON")
	cmd.Flags().BoolVar(&pc.explain, "explain", false, "Print every normalized line with how it was classified")
	cmd.MarkFlagsMutuallyExclusive("normalized", "explain")

	return cmd
}

func (pc *parseCmd) run(cmd *cobra.Command, args []string) error {
	text, err := pc.root.readReceipt(args)
	if err != nil {
		return err
	}
	p := pc.root.newParser()
	out := cmd.OutOrStdout()

	switch {
	case pc.normalized:
		_, err := fmt.Fprintln(out, p.Normalize(text))
		return err
	case pc.explain:
		return writeAnnotated(out, p.Annotate(text))
	}

	receipt := p.Parse(text)
	items := make([]api.LineItem, len(receipt.Items))
	for i, item := range receipt.Items {
		items[i] = api.LineItem{ID: item.ID, Quantity: item.Quantity, Name: item.Name, Price: item.Price}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(api.ParseReceiptResponse{
		Items:          items,
		Subtotal:       receipt.Subtotal,
		ServiceCharge:  receipt.ServiceCharge,
		Total:          receipt.Total,
		NormalizedText: p.Normalize(text),
	}); err != nil {
		return fmt.Errorf("failed to encode receipt: %w", err)
	}
	return nil
}

func writeAnnotated(out io.Writer, lines []parser.AnnotatedLine) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, l := range lines {
		fmt.Fprintf(w, "%s\t%s\n", l.Kind, l.Text)
	}
	return w.Flush()
}
