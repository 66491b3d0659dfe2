package workflow

import (
	"errors"
	"sync"
	"testing"
	"time"

	"bitbucket.org/fieldworks/dockets_backend/models"
	"bitbucket.org/fieldworks/dockets_backend/pdf"
	"bitbucket.org/fieldworks/dockets_backend/utils"
	"github.com/shopspring/decimal"
)

// NOTE: These tests are intentionally DB-free. BuildSubmission and
// notifySubmission are the pure/injectable halves of the submission path, so
// the freeze, the zero-hours guard, the email-failure rollback signal and the
// render-failure behaviour are all tested against the real code. Only the
// unique-index race (second submit conflicts) still runs against a fake
// store; full DB integration tests need MySQL + Redis.

func dec(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func testWindow(t *testing.T) utils.WeekWindow {
	t.Helper()
	window, err := utils.ResolveWeek("2025-W36", nil)
	if err != nil {
		t.Fatal(err)
	}
	return window
}

func testContractor() *models.Contractor {
	email := "worker@example.com"
	return &models.Contractor{ID: 3, Name: "Aaron Smith", HourlyRate: dec("50"), Email: &email}
}

func TestBuildSubmission_FreezesTotals(t *testing.T) {
	contractor := testContractor()
	rows := []*models.AggregationRow{
		{TonnageTotal: dec("4"), DayLabourTotal: dec("6")},
		{TonnageTotal: dec("2.5"), DayLabourTotal: dec("0")},
	}
	now := time.Date(2025, 9, 8, 10, 0, 0, 0, time.UTC)

	invoice, err := BuildSubmission(contractor, testWindow(t), rows, now)
	if err != nil {
		t.Fatal(err)
	}
	if !invoice.TotalHours.Equal(dec("12.5")) {
		t.Errorf("total hours = %s, want 12.5", invoice.TotalHours)
	}
	if invoice.TotalAmount.StringFixed(2) != "625.00" {
		t.Errorf("total amount = %s, want 625.00", invoice.TotalAmount.StringFixed(2))
	}
	if invoice.Status != models.InvoiceStatusSubmitted {
		t.Errorf("status = %s, want Submitted", invoice.Status)
	}
	if !invoice.WeekStart.Equal(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("week start = %s", invoice.WeekStart)
	}
	if !invoice.WeekEnd.Equal(time.Date(2025, 9, 7, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("week end = %s, want inclusive Sunday", invoice.WeekEnd)
	}
	if !invoice.SubmittedAt.Equal(now) {
		t.Errorf("submittedAt = %s", invoice.SubmittedAt)
	}
}

func TestBuildSubmission_RejectsZeroHours(t *testing.T) {
	contractor := testContractor()

	if _, err := BuildSubmission(contractor, testWindow(t), nil, time.Now()); err == nil {
		t.Fatal("empty week must not submit")
	}
	rows := []*models.AggregationRow{{TonnageTotal: dec("0"), DayLabourTotal: dec("0")}}
	if _, err := BuildSubmission(contractor, testWindow(t), rows, time.Now()); err == nil {
		t.Fatal("zero-hour week must not submit")
	}
}

type fakeMailer struct {
	fail  bool
	sent  int
	attts [][]byte
}

func (m *fakeMailer) Send(to []string, subject, body, name string, attachment []byte) error {
	if m.fail {
		return errors.New("smtp: connection refused")
	}
	m.sent++
	m.attts = append(m.attts, attachment)
	return nil
}

type fakeRenderer struct {
	fail bool
}

func (r *fakeRenderer) Render(data *pdf.InvoiceData) ([]byte, error) {
	if r.fail {
		return nil, errors.New("render failed")
	}
	return []byte("%PDF-fake"), nil
}

func swapDeps(t *testing.T, m *fakeMailer, r *fakeRenderer) {
	t.Helper()
	prevMailer, prevRenderer := mailer, renderer
	SetMailer(m)
	SetRenderer(r)
	t.Cleanup(func() {
		mailer = prevMailer
		renderer = prevRenderer
	})
}

func testInvoice(t *testing.T, contractor *models.Contractor) (*models.WorkerInvoice, []*models.AggregationRow) {
	t.Helper()
	rows := []*models.AggregationRow{{TonnageTotal: dec("4"), DayLabourTotal: dec("6")}}
	invoice, err := BuildSubmission(contractor, testWindow(t), rows, time.Now().UTC())
	if err != nil {
		t.Fatal(err)
	}
	return invoice, rows
}

func TestNotifySubmission_EmailFailureSignalsRollback(t *testing.T) {
	m := &fakeMailer{fail: true}
	swapDeps(t, m, &fakeRenderer{})
	contractor := testContractor()
	invoice, rows := testInvoice(t, contractor)

	err := notifySubmission(invoice, contractor, testWindow(t), rows)
	if err != utils.ErrorNotificationFailure {
		t.Fatalf("expected notification failure, got %v", err)
	}

	// Resubmission after the mailer recovers succeeds.
	m.fail = false
	if err := notifySubmission(invoice, contractor, testWindow(t), rows); err != nil {
		t.Fatalf("retry should succeed, got %v", err)
	}
	if m.sent != 1 {
		t.Errorf("exactly one notification expected, got %d", m.sent)
	}
}

func TestNotifySubmission_RenderFailureOnlyDropsAttachment(t *testing.T) {
	m := &fakeMailer{}
	swapDeps(t, m, &fakeRenderer{fail: true})
	contractor := testContractor()
	invoice, rows := testInvoice(t, contractor)

	if err := notifySubmission(invoice, contractor, testWindow(t), rows); err != nil {
		t.Fatalf("render failure must not block submission, got %v", err)
	}
	if m.sent != 1 || m.attts[0] != nil {
		t.Errorf("expected one mail with no attachment")
	}
}

func TestNotifySubmission_NoRecipientsFails(t *testing.T) {
	swapDeps(t, &fakeMailer{}, &fakeRenderer{})
	t.Setenv("INVOICE_NOTIFY_EMAIL", "")
	contractor := &models.Contractor{ID: 3, Name: "Aaron Smith", HourlyRate: dec("50")}
	invoice, rows := testInvoice(t, contractor)

	if err := notifySubmission(invoice, contractor, testWindow(t), rows); err != utils.ErrorNotificationFailure {
		t.Fatalf("no recipients should fail the submission, got %v", err)
	}
}

// fakeStore mimics the unique index on (contractor, weekStart); the real
// guard is in MySQL and only testable with a database.
type fakeStore struct {
	mu       sync.Mutex
	invoices map[string]bool
}

func (s *fakeStore) submit(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.invoices == nil {
		s.invoices = map[string]bool{}
	}
	if s.invoices[key] {
		return utils.ErrorDuplicateInvoice
	}
	s.invoices[key] = true
	return nil
}

func TestSubmission_SecondSubmitConflicts(t *testing.T) {
	store := &fakeStore{}

	if err := store.submit("3|2025-09-01"); err != nil {
		t.Fatal(err)
	}
	if err := store.submit("3|2025-09-01"); err != utils.ErrorDuplicateInvoice {
		t.Fatalf("second submit should conflict, got %v", err)
	}
}
