package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"

	"github.com/khata-ledger/internal/domain/contact"
	"github.com/khata-ledger/internal/domain/ledger"
	"github.com/khata-ledger/internal/khata"
)

type addContactCmd struct {
	app   *App
	name  string
	phone string
}

func (*addContactCmd) Name() string     { return "add-contact" }
func (*addContactCmd) Synopsis() string { return "register a new contact with a zero balance" }
func (*addContactCmd) Usage() string {
	return `khata add-contact -name <name> [-phone <10 digits>]
`
}

func (p *addContactCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.name, "name", "", "Name of the contact.")
	f.StringVar(&p.phone, "phone", "", "Optional 10-digit phone number.")
}

func (p *addContactCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.name == "" {
		return p.app.usage(f, "-name is required")
	}

	c, err := p.app.Service.CreateContact(ctx, p.name, p.phone)
	if err != nil {
		return p.app.fail(err)
	}

	fmt.Fprintf(p.app.Out, "%s\t%s\n", c.ID, c.Name)
	return subcommands.ExitSuccess
}

type contactsCmd struct {
	app   *App
	query string
}

func (*contactsCmd) Name() string     { return "contacts" }
func (*contactsCmd) Synopsis() string { return "list contacts with their balances" }
func (*contactsCmd) Usage() string {
	return `khata contacts [-q <text>]

  Lists contacts sorted by name. -q keeps those whose name or phone contains the text.
`
}

func (p *contactsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.query, "q", "", "Filter on name (case-insensitive) or phone.")
}

func (p *contactsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	contacts := p.app.Service.ListContacts(ctx, p.query)
	if len(contacts) == 0 {
		fmt.Fprintln(p.app.Out, "no contacts")
		return subcommands.ExitSuccess
	}

	w := tabwriter.NewWriter(p.app.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPHONE\tBALANCE")
	for _, c := range contacts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Phone, p.app.labelText(c))
	}
	if err := w.Flush(); err != nil {
		return p.app.fail(err)
	}
	return subcommands.ExitSuccess
}

type balanceCmd struct {
	app       *App
	contactID string
}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "show who owes whom for a contact" }
func (*balanceCmd) Usage() string {
	return `khata balance -contact <id>
`
}

func (p *balanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.contactID, "contact", "", "ID of the contact.")
}

func (p *balanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.contactID == "" {
		return p.app.usage(f, "-contact is required")
	}

	c, err := p.app.Service.GetContact(ctx, p.contactID)
	if err != nil {
		return p.app.fail(err)
	}

	fmt.Fprintf(p.app.Out, "%s: %s\n", c.Name, p.app.labelText(c))
	return subcommands.ExitSuccess
}

type recordCmd struct {
	app         *App
	contactID   string
	amount      string
	entryType   string
	description string
	date        string
	key         string
}

func (*recordCmd) Name() string     { return "record" }
func (*recordCmd) Synopsis() string { return "record a credit or a payment against a contact" }
func (*recordCmd) Usage() string {
	return `khata record -contact <id> -amount <decimal> -type credit|payment [-desc <text>] [-date YYYY-MM-DD] [-key <idempotency key>]

  A credit increases what the contact owes the store, a payment decreases it.
`
}

func (p *recordCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.contactID, "contact", "", "ID of the contact.")
	f.StringVar(&p.amount, "amount", "", "Positive amount, e.g. 1500 or 99.50.")
	f.StringVar(&p.entryType, "type", "", "credit or payment.")
	f.StringVar(&p.description, "desc", "", "Optional description.")
	f.StringVar(&p.date, "date", "", "Entry date (defaults to today).")
	f.StringVar(&p.key, "key", "", "Idempotency key, re-running with the same key records nothing new.")
}

func (p *recordCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.contactID == "" || p.amount == "" || p.entryType == "" {
		return p.app.usage(f, "-contact, -amount and -type are required")
	}

	entryType, err := ledger.ParseEntryType(p.entryType)
	if err != nil {
		return p.app.fail(err)
	}
	var date time.Time
	if p.date != "" {
		if date, err = ledger.ParseDate(p.date); err != nil {
			return p.app.fail(err)
		}
	}

	tx, err := p.app.Service.Record(ctx, khata.RecordParams{
		ContactID:      p.contactID,
		Amount:         p.amount,
		Type:           entryType,
		Description:    p.description,
		Date:           date,
		IdempotencyKey: p.key,
	})
	if err != nil {
		return p.app.fail(err)
	}

	if tx.Replayed {
		fmt.Fprintf(p.app.Out, "already recorded as %s\n", tx.Entry.ID)
	} else {
		fmt.Fprintf(p.app.Out, "recorded %s %s %s on %s\n",
			tx.Entry.ID, tx.Entry.Type, ledger.FormatAmount(tx.Entry.Amount, p.app.Service.Currency()), tx.Entry.Date.Format(ledger.DateLayout))
	}
	fmt.Fprintln(p.app.Out, tx.Label.Text(p.app.Service.Currency()))
	return subcommands.ExitSuccess
}

type entriesCmd struct {
	app       *App
	contactID string
	order     string
	from      string
	to        string
}

func (*entriesCmd) Name() string     { return "entries" }
func (*entriesCmd) Synopsis() string { return "list the entries of a contact" }
func (*entriesCmd) Usage() string {
	return `khata entries -contact <id> [-order insertion|date] [-from YYYY-MM-DD] [-to YYYY-MM-DD]
`
}

func (p *entriesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.contactID, "contact", "", "ID of the contact.")
	f.StringVar(&p.order, "order", string(khata.OrderInsertion), "insertion or date.")
	f.StringVar(&p.from, "from", "", "First date to include.")
	f.StringVar(&p.to, "to", "", "Last date to include.")
}

func (p *entriesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.contactID == "" {
		return p.app.usage(f, "-contact is required")
	}

	query := khata.EntryQuery{Order: khata.EntryOrder(p.order)}
	var err error
	if p.from != "" {
		if query.From, err = ledger.ParseDate(p.from); err != nil {
			return p.app.fail(err)
		}
	}
	if p.to != "" {
		if query.To, err = ledger.ParseDate(p.to); err != nil {
			return p.app.fail(err)
		}
	}

	entries, err := p.app.Service.Entries(ctx, p.contactID, query)
	if err != nil {
		return p.app.fail(err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(p.app.Out, "no entries")
		return subcommands.ExitSuccess
	}

	w := tabwriter.NewWriter(p.app.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTYPE\tAMOUNT\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.Date.Format(ledger.DateLayout), e.Type, ledger.FormatAmount(e.Amount, p.app.Service.Currency()), e.Description)
	}
	if err := w.Flush(); err != nil {
		return p.app.fail(err)
	}
	return subcommands.ExitSuccess
}

type verifyCmd struct {
	app       *App
	contactID string
}

func (*verifyCmd) Name() string     { return "verify" }
func (*verifyCmd) Synopsis() string { return "recompute balances from entries and compare them" }
func (*verifyCmd) Usage() string {
	return `khata verify [-contact <id>]

  Checks one contact, or every contact when -contact is omitted. Exits 1 when a
  cached balance differs from its entries.
`
}

func (p *verifyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.contactID, "contact", "", "ID of the contact, all contacts when empty.")
}

func (p *verifyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var results []khata.VerifyResult
	if p.contactID != "" {
		r, err := p.app.Service.Verify(ctx, p.contactID)
		if err != nil {
			return p.app.fail(err)
		}
		results = append(results, *r)
	} else {
		all, err := p.app.Service.VerifyAll(ctx)
		if err != nil {
			return p.app.fail(err)
		}
		results = all
	}

	status := subcommands.ExitSuccess
	for _, r := range results {
		if r.Consistent {
			fmt.Fprintf(p.app.Out, "%s\tok\t%s\n", r.ContactID, r.Cached)
			continue
		}
		fmt.Fprintf(p.app.Out, "%s\tMISMATCH\tcached %s, entries %s\n", r.ContactID, r.Cached, r.Recomputed)
		status = subcommands.ExitFailure
	}
	return status
}

func (a *App) labelText(c *contact.Contact) string {
	return ledger.LabelFor(c.Balance).Text(a.Service.Currency())
}
