package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/example/skiphire/internal/core/schedule"
	"github.com/example/skiphire/internal/core/wizard"
	"github.com/example/skiphire/internal/ports/primary"
)

// WizardAdapter runs the booking wizard as an interactive prompt.
type WizardAdapter struct {
	booking  primary.BookingService
	catalog  primary.CatalogService
	out      io.Writer
	openFile func(path string) (io.ReadCloser, error)
}

// NewWizardAdapter creates a new WizardAdapter.
func NewWizardAdapter(booking primary.BookingService, catalog primary.CatalogService, out io.Writer) *WizardAdapter {
	return &WizardAdapter{
		booking: booking,
		catalog: catalog,
		out:     out,
		openFile: func(path string) (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// usageError is an input mistake the prompt reports and moves past.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

// recoverable reports whether the prompt should keep going after err.
func recoverable(err error) bool {
	var ue usageError
	return errors.As(err, &ue) ||
		errors.Is(err, primary.ErrRejected) ||
		errors.Is(err, primary.ErrSkipNotFound) ||
		errors.Is(err, primary.ErrSubmissionInProgress) ||
		errors.Is(err, primary.ErrNotReadyToSubmit) ||
		errors.Is(err, primary.ErrRetryThrottled)
}

// Run starts a session and reads commands from in until the booking is
// paid for, the user quits, or input ends.
func (a *WizardAdapter) Run(ctx context.Context, in io.Reader) error {
	snap, err := a.booking.StartSession(ctx)
	if err != nil {
		return fmt.Errorf("failed to start booking: %w", err)
	}
	defer func() { _ = a.booking.EndSession(context.WithoutCancel(ctx)) }()

	a.showStep(ctx, snap)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(a.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(a.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, arg, _ := strings.Cut(line, " ")
		done, err := a.dispatch(ctx, scanner, strings.ToLower(cmd), strings.TrimSpace(arg))
		if err != nil {
			if !recoverable(err) {
				return err
			}
			fmt.Fprintf(a.out, "%s %s\n", color.New(color.FgRed).Sprint("✗"), err)
			continue
		}
		if done {
			return nil
		}
	}
}

func (a *WizardAdapter) dispatch(ctx context.Context, scanner *bufio.Scanner, cmd, arg string) (bool, error) {
	switch cmd {
	case "help", "?":
		a.printHelp()
	case "quit", "exit":
		fmt.Fprintln(a.out, "Booking abandoned")
		return true, nil
	case "list":
		skips, err := a.catalog.ListSkips(ctx, primary.SkipFilters{})
		if err != nil {
			return false, err
		}
		RenderCatalog(a.out, skips)
	case "select":
		id, err := strconv.Atoi(arg)
		if err != nil {
			return false, usageError{"usage: select <skip id>"}
		}
		snap, err := a.booking.SelectSkip(ctx, id)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(a.out, "✓ Selected %d yard skip\n", snap.Booking.Skip.Size)
		if snap.Quote != nil {
			RenderQuote(a.out, snap.Quote)
		}
	case "placement":
		snap, err := a.booking.SetPlacement(ctx, strings.ToLower(arg))
		if err != nil {
			return false, err
		}
		fmt.Fprintf(a.out, "✓ Placement: %s\n", placementLabel(snap.Booking.Placement))
		if snap.Booking.Placement == "public" && !snap.Booking.PhotoUploaded {
			fmt.Fprintln(a.out, "  You can attach a photo of the placement area (optional): photo <path>")
		}
	case "photo":
		return false, a.uploadPhoto(ctx, arg)
	case "date":
		return false, a.setDate(ctx, arg)
	case "address":
		if _, err := a.booking.SetDeliveryAddress(ctx, arg); err != nil {
			return false, err
		}
		return false, a.validate(ctx, "address")
	case "notes":
		if _, err := a.booking.SetSpecialInstructions(ctx, arg); err != nil {
			return false, err
		}
		fmt.Fprintln(a.out, "✓ Instructions saved")
	case "name", "email", "phone":
		return false, a.setContact(ctx, cmd, arg)
	case "summary":
		snap, err := a.booking.GetSnapshot(ctx)
		if err != nil {
			return false, err
		}
		RenderSummary(a.out, snap)
	case "next":
		resp, err := a.booking.Advance(ctx)
		if err != nil {
			return false, err
		}
		a.showTransition(ctx, resp)
	case "back":
		resp, err := a.booking.Retreat(ctx)
		if err != nil {
			return false, err
		}
		a.showTransition(ctx, resp)
	case "pay":
		return a.pay(ctx, scanner)
	default:
		return false, usageError{fmt.Sprintf("unknown command %q (type help)", cmd)}
	}
	return false, nil
}

func (a *WizardAdapter) uploadPhoto(ctx context.Context, path string) error {
	if path == "" {
		return usageError{"usage: photo <path>"}
	}
	f, err := a.openFile(path)
	if err != nil {
		return usageError{fmt.Sprintf("cannot read photo: %v", err)}
	}
	defer f.Close()

	snap, err := a.booking.UploadPhoto(ctx, primary.UploadPhotoRequest{
		Filename: filepath.Base(path),
		Content:  f,
	})
	if err != nil {
		if recoverable(err) {
			return err
		}
		return usageError{fmt.Sprintf("photo upload failed: %v", err)}
	}
	fmt.Fprintf(a.out, "✓ Photo uploaded: %s\n", snap.Booking.PhotoLocation)
	return nil
}

func (a *WizardAdapter) setDate(ctx context.Context, arg string) error {
	if arg == "clear" {
		if _, err := a.booking.ClearDeliveryDate(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "✓ Delivery date cleared")
		return nil
	}

	date, err := schedule.ParseDate(arg)
	if err != nil {
		return usageError{err.Error()}
	}
	snap, err := a.booking.SetDeliveryDate(ctx, date)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Delivery:   %s\n", schedule.FormatLong(*snap.Booking.DeliveryDate))
	if snap.Booking.CollectionDate != nil {
		fmt.Fprintf(a.out, "  Collection: %s\n", schedule.FormatLong(*snap.Booking.CollectionDate))
	}
	return nil
}

func (a *WizardAdapter) setContact(ctx context.Context, field, value string) error {
	var update primary.CustomerUpdate
	switch field {
	case "name":
		update.Name = &value
	case "email":
		update.Email = &value
	case "phone":
		update.Phone = &value
	}
	if _, err := a.booking.UpdateCustomerDetails(ctx, update); err != nil {
		return err
	}
	return a.validate(ctx, field)
}

// validate checks one field as soon as it is entered.
func (a *WizardAdapter) validate(ctx context.Context, field string) error {
	snap, err := a.booking.ValidateField(ctx, field)
	if err != nil {
		return err
	}
	if msg, ok := snap.Errors[field]; ok {
		fmt.Fprintf(a.out, "%s %s\n", color.New(color.FgRed).Sprint("✗"), msg)
		return nil
	}
	fmt.Fprintf(a.out, "✓ %s saved\n", field)
	return nil
}

func (a *WizardAdapter) pay(ctx context.Context, scanner *bufio.Scanner) (bool, error) {
	snap, err := a.booking.GetSnapshot(ctx)
	if err != nil {
		return false, err
	}
	if snap.Step != int(wizard.StepPayment) {
		return false, usageError{"payment is taken on the final step"}
	}

	ask := func(label string) string {
		fmt.Fprintf(a.out, "  %s: ", label)
		if !scanner.Scan() {
			return ""
		}
		return strings.TrimSpace(scanner.Text())
	}
	details := primary.PaymentDetails{
		Card: primary.CardDetails{
			Number:     ask("Card number"),
			Expiry:     ask("Expiry (MM/YY)"),
			CVV:        ask("CVV"),
			HolderName: ask("Cardholder name"),
		},
		Billing: primary.BillingAddress{
			Line1:    ask("Billing address line 1"),
			Line2:    ask("Billing address line 2 (optional)"),
			City:     ask("City"),
			Postcode: ask("Postcode"),
		},
	}

	fmt.Fprintln(a.out, "Processing payment...")
	resp, err := a.booking.Submit(ctx, details)
	if err != nil {
		return false, err
	}
	if !resp.Success {
		fmt.Fprintf(a.out, "%s %s\n", color.New(color.FgRed).Sprint("✗"), resp.Reason)
		RenderErrors(a.out, resp.Snapshot.Errors)
		fmt.Fprintln(a.out, "  Your booking details are kept. Type pay to try again.")
		return false, nil
	}

	RenderSummary(a.out, resp.Snapshot)
	RenderConfirmation(a.out, resp.Confirmation)
	return true, nil
}

func (a *WizardAdapter) showTransition(ctx context.Context, resp *primary.TransitionResponse) {
	if !resp.Moved {
		if resp.Reason != "" {
			fmt.Fprintf(a.out, "%s %s\n", color.New(color.FgYellow).Sprint("!"), resp.Reason)
		}
		RenderErrors(a.out, resp.Snapshot.Errors)
		return
	}
	a.showStep(ctx, resp.Snapshot)
}

// showStep prints the stepper and what the current step needs.
func (a *WizardAdapter) showStep(ctx context.Context, snap *primary.Snapshot) {
	RenderStepper(a.out, snap)

	switch wizard.Step(snap.Step) {
	case wizard.StepChooseSkip:
		fmt.Fprintln(a.out, "Choose your skip size: select <id>")
		if skips, err := a.catalog.ListSkips(ctx, primary.SkipFilters{}); err == nil {
			RenderCatalog(a.out, skips)
		}
	case wizard.StepPlacement:
		fmt.Fprintf(a.out, "Where will the skip be placed? placement %s\n", strings.Join(snap.AvailablePlacements, "|"))
		fmt.Fprintln(a.out, "  address <text>   photo <path>")
	case wizard.StepSchedule:
		fmt.Fprintln(a.out, "Choose a delivery date:")
		fmt.Fprintln(a.out, "  date <YYYY-MM-DD>   notes <text>")
	case wizard.StepPayment:
		RenderSummary(a.out, snap)
		fmt.Fprintln(a.out, "Enter your contact details, then pay:")
		fmt.Fprintln(a.out, "  name <text>   email <text>   phone <text>   pay")
	}
	if snap.Step > 0 {
		fmt.Fprintln(a.out, "  back  next  summary  help")
	}
}

func (a *WizardAdapter) printHelp() {
	fmt.Fprint(a.out, `Commands:
  list                      show available skips
  select <id>               choose a skip (first step)
  placement private|public  where the skip goes
  photo <path>              upload a photo of the placement area
  date <YYYY-MM-DD>|clear   delivery date
  address <text>            delivery address
  notes <text>              special instructions
  name|email|phone <text>   contact details
  next / back               move between steps
  summary                   show the booking so far
  pay                       enter payment details and submit
  quit                      abandon the booking
`)
}
