package services

import (
	"context"
	"errors"
	"testing"

	"rentalBack/internal/fsm"
	"rentalBack/internal/models"
)

type fakePaymentStore struct {
	payments map[int]models.Payment
	nextID   int

	confirmErr error
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{payments: map[int]models.Payment{}, nextID: 1}
}

func (f *fakePaymentStore) GetPaymentByRentalID(ctx context.Context, rentalID int) (models.Payment, error) {
	p, ok := f.payments[rentalID]
	if !ok {
		return models.Payment{}, models.ErrNoRecord
	}
	return p, nil
}

func (f *fakePaymentStore) ConfirmPaid(ctx context.Context, p models.Payment) (models.Payment, error) {
	if f.confirmErr != nil {
		return models.Payment{}, f.confirmErr
	}
	p.ID = f.nextID
	p.Status = models.PaymentStatusDone
	f.nextID++
	f.payments[p.RentalID] = p
	return p, nil
}

type fakeProvider struct {
	err   error
	calls int
}

func (f *fakeProvider) ConfirmPayment(ctx context.Context, paymentKey, orderID string, amount int) error {
	f.calls++
	return f.err
}

func newPaymentServiceForTest(status string) (*PaymentService, *fakeRentalStore, *fakePaymentStore, *fakeProvider, *eventRecorder) {
	rentals := newFakeRentalStore()
	rentals.rentals[1] = models.Rental{ID: 1, ItemID: 10, RenterID: 1, OwnerID: 2, Status: status, TotalPrice: 3000}
	payments := newFakePaymentStore()
	provider := &fakeProvider{}
	rec := &eventRecorder{}
	svc := &PaymentService{
		PaymentRepo: payments,
		RentalRepo:  rentals,
		Provider:    provider,
		Notifiers:   []RentalEventNotifier{rec},
	}
	return svc, rentals, payments, provider, rec
}

func confirmReq() models.PaymentConfirmRequest {
	return models.PaymentConfirmRequest{
		RentalID:   1,
		PaymentKey: "pay_abc",
		OrderID:    "order_1",
		Amount:     3000,
	}
}

func TestConfirmHappyPath(t *testing.T) {
	svc, rentals, _, provider, rec := newPaymentServiceForTest(fsm.StatusApproved)

	payment, err := svc.Confirm(context.Background(), confirmReq())
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if payment.Status != models.PaymentStatusDone {
		t.Fatalf("expected DONE payment, got %s", payment.Status)
	}
	if payment.Amount != 3000 {
		t.Fatalf("expected amount 3000, got %d", payment.Amount)
	}
	if provider.calls != 1 {
		t.Fatalf("expected one provider call, got %d", provider.calls)
	}
	if len(rec.events) != 1 || rec.events[0] != EventPaid {
		t.Fatalf("expected paid event, got %v", rec.events)
	}
	_ = rentals
}

func TestConfirmAmountMismatch(t *testing.T) {
	svc, _, _, provider, _ := newPaymentServiceForTest(fsm.StatusApproved)

	req := confirmReq()
	req.Amount = 2500
	_, err := svc.Confirm(context.Background(), req)
	if !errors.Is(err, models.ErrAmountMismatch) {
		t.Fatalf("expected ErrAmountMismatch, got %v", err)
	}
	// the provider must never see a mismatched charge
	if provider.calls != 0 {
		t.Fatalf("provider called %d times on mismatch", provider.calls)
	}
}

func TestConfirmReplayReturnsExistingPayment(t *testing.T) {
	svc, rentals, payments, provider, _ := newPaymentServiceForTest(fsm.StatusApproved)

	first, err := svc.Confirm(context.Background(), confirmReq())
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	rentals.setStatus(1, fsm.StatusPaid)

	second, err := svc.Confirm(context.Background(), confirmReq())
	if err != nil {
		t.Fatalf("replayed Confirm: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("replay created a new payment: %d vs %d", second.ID, first.ID)
	}
	if provider.calls != 1 {
		t.Fatalf("replay must not hit the provider again, got %d calls", provider.calls)
	}
	if len(payments.payments) != 1 {
		t.Fatalf("expected a single payment row, got %d", len(payments.payments))
	}
}

func TestConfirmProviderFailureLeavesRentalApproved(t *testing.T) {
	svc, rentals, payments, provider, rec := newPaymentServiceForTest(fsm.StatusApproved)
	provider.err = &TossError{StatusCode: 400, Status: "400 Bad Request", Code: "INVALID_CARD", Message: "declined"}

	_, err := svc.Confirm(context.Background(), confirmReq())
	var tossErr *TossError
	if !errors.As(err, &tossErr) {
		t.Fatalf("expected TossError, got %v", err)
	}
	if len(payments.payments) != 0 {
		t.Fatalf("no payment row may exist after provider failure")
	}
	got, _ := rentals.GetRentalByID(context.Background(), 1)
	if got.Status != fsm.StatusApproved {
		t.Fatalf("rental must stay approved, got %s", got.Status)
	}
	if len(rec.events) != 0 {
		t.Fatalf("no event on failure, got %v", rec.events)
	}
}

func TestConfirmRejectsWrongStatus(t *testing.T) {
	for _, status := range []string{fsm.StatusWaiting, fsm.StatusRenting, fsm.StatusCanceled, fsm.StatusRejected} {
		svc, _, _, provider, _ := newPaymentServiceForTest(status)
		_, err := svc.Confirm(context.Background(), confirmReq())
		if !errors.Is(err, models.ErrInvalidTransition) {
			t.Fatalf("status %s: expected ErrInvalidTransition, got %v", status, err)
		}
		if provider.calls != 0 {
			t.Fatalf("status %s: provider must not be called", status)
		}
	}
}

func TestConfirmConcurrentWinnerIsReturned(t *testing.T) {
	svc, _, payments, _, _ := newPaymentServiceForTest(fsm.StatusApproved)

	// another confirmation settled between our read and our write
	payments.payments[1] = models.Payment{ID: 7, RentalID: 1, Amount: 3000, Status: models.PaymentStatusDone}
	payments.confirmErr = models.ErrInvalidTransition

	payment, err := svc.Confirm(context.Background(), confirmReq())
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if payment.ID != 7 {
		t.Fatalf("expected the winning payment, got id %d", payment.ID)
	}
}
