package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mmynk/tabsplit/internal/models"
	"github.com/mmynk/tabsplit/internal/money"
	"github.com/mmynk/tabsplit/internal/session"
)

var errBadFlag = errors.New("invalid flag value")

type splitCmd struct {
	root        *rootCmd
	people      []string
	assignments []string
	payments    []string
	tipPercent  float64
	assignAll   bool
}

func newSplitCmd(root *rootCmd) *cobra.Command {
	sc := &splitCmd{root: root}
	cmd := &cobra.Command{
		Use:   "split [file]",
		Short: "Parse a receipt, assign items to people and print each person's bill",
		Example: `  tabsplit split receipt.txt --people Alice,Bob --assign 1=Alice,Bob --assign 2=Bob
  tabsplit split receipt.txt --people Alice,Bob --all --paid Alice=17.05`,
		Args: cobra.MaximumNArgs(1),
		RunE: sc.run,
	}

	cmd.Flags().StringSliceVar(&sc.people, "people", nil, "Comma-separated names of the diners")
	cmd.Flags().StringArrayVar(&sc.assignments, "assign", nil, "Item assignment as <item number>=<name>[,<name>...] (repeatable)")
	cmd.Flags().StringArrayVar(&sc.payments, "paid", nil, "What someone paid at the table as <name>=<amount> (repeatable)")
	cmd.Flags().Float64Var(&sc.tipPercent, "tip-percent", session.DefaultTipPercentage, "Tip percentage when the receipt has no service charge")
	cmd.Flags().BoolVar(&sc.assignAll, "all", false, "Share every item not given with --assign between everyone")
	_ = cmd.MarkFlagRequired("people")

	return cmd
}

func (sc *splitCmd) run(cmd *cobra.Command, args []string) error {
	text, err := sc.root.readReceipt(args)
	if err != nil {
		return err
	}
	p := sc.root.newParser()

	s := session.New(sc.tipPercent)
	if err := session.SetTipPercentage(s, sc.tipPercent); err != nil {
		return err
	}
	session.LoadReceipt(s, text, p.Parse(text))

	byName := make(map[string]string, len(sc.people))
	for _, name := range sc.people {
		person, err := session.AddPerson(s, name)
		if err != nil {
			return err
		}
		byName[strings.ToLower(person.Name)] = person.ID
	}

	for _, a := range sc.assignments {
		itemID, personIDs, err := parseAssignment(a, s.Items, byName)
		if err != nil {
			return err
		}
		if err := session.UpdateAssignment(s, itemID, personIDs); err != nil {
			return err
		}
	}

	if sc.assignAll {
		everyone := make([]string, len(s.People))
		for i, person := range s.People {
			everyone[i] = person.ID
		}
		for _, item := range session.UnassignedItems(s) {
			if err := session.UpdateAssignment(s, item.ID, everyone); err != nil {
				return err
			}
		}
	}

	payments := make(map[string]float64, len(sc.payments))
	for _, raw := range sc.payments {
		personID, amount, err := parsePayment(raw, byName)
		if err != nil {
			return err
		}
		payments[personID] += amount
	}

	if err := session.CheckReady(s); err != nil {
		if errors.Is(err, session.ErrUnassignedItems) {
			return fmt.Errorf("%w (use --assign or --all)", err)
		}
		return err
	}

	summary := session.Summarize(s, payments)
	return writeSummary(cmd.OutOrStdout(), p.Symbol(), s, summary)
}

// parseAssignment reads "<item number>=<name>,<name>" with 1-based item numbers.
func parseAssignment(raw string, items []models.LineItem, byName map[string]string) (string, []string, error) {
	index, names, ok := strings.Cut(raw, "=")
	if !ok {
		return "", nil, fmt.Errorf("%w: --assign %q: expected <item number>=<names>", errBadFlag, raw)
	}
	n, err := strconv.Atoi(strings.TrimSpace(index))
	if err != nil || n < 1 || n > len(items) {
		return "", nil, fmt.Errorf("%w: --assign %q: item number must be between 1 and %d", errBadFlag, raw, len(items))
	}

	var personIDs []string
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		id, ok := byName[strings.ToLower(name)]
		if !ok {
			return "", nil, fmt.Errorf("%w: --assign %q: %q is not in --people", errBadFlag, raw, name)
		}
		personIDs = append(personIDs, id)
	}
	return items[n-1].ID, personIDs, nil
}

// parsePayment reads "<name>=<amount>".
func parsePayment(raw string, byName map[string]string) (string, float64, error) {
	name, value, ok := strings.Cut(raw, "=")
	if !ok {
		return "", 0, fmt.Errorf("%w: --paid %q: expected <name>=<amount>", errBadFlag, raw)
	}
	id, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", 0, fmt.Errorf("%w: --paid %q: %q is not in --people", errBadFlag, raw, name)
	}
	amount, ok := money.Parse(value)
	if !ok || amount < 0 {
		return "", 0, fmt.Errorf("%w: --paid %q: amount must be a non-negative number", errBadFlag, raw)
	}
	return id, amount, nil
}

func writeSummary(out io.Writer, symbol string, s *models.Session, summary session.Summary) error {
	amount := func(v float64) string {
		return fmt.Sprintf("%s%.2f", symbol, v)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "PERSON\tITEMS\tSUBTOTAL\tTIP\tTOTAL\t")
	for _, bill := range summary.Bills {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t\n",
			bill.Person.Name, len(bill.Items), amount(bill.Subtotal), amount(bill.Tip), amount(bill.Total))
	}
	fmt.Fprintf(w, "RECEIPT\t%d\t%s\t%s\t%s\t\n", len(s.Items), amount(s.Subtotal), amount(s.TipAmount), amount(s.Total))
	if err := w.Flush(); err != nil {
		return err
	}

	if summary.Validation.Valid {
		fmt.Fprintln(out, "\nBills add up to the receipt total.")
	} else {
		fmt.Fprintf(out, "\nBills differ from the receipt total by %s.\n", amount(summary.Validation.Difference))
	}

	if len(summary.Debts) > 0 {
		names := make(map[string]string, len(s.People))
		for _, person := range s.People {
			names[person.ID] = person.Name
		}
		fmt.Fprintln(out, "\nSettle up:")
		for _, d := range summary.Debts {
			fmt.Fprintf(out, "  %s pays %s %s\n", names[d.From], names[d.To], amount(d.Amount))
		}
	}
	return nil
}
