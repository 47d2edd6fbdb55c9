package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentalBack/internal/fsm"
	"rentalBack/internal/models"
)

type fakeRentalStore struct {
	rentals map[int]models.Rental
	nextID  int

	approveErr error
	released   []int
}

func newFakeRentalStore() *fakeRentalStore {
	return &fakeRentalStore{rentals: map[int]models.Rental{}, nextID: 1}
}

func (f *fakeRentalStore) CreateRental(ctx context.Context, rental models.Rental) (models.Rental, error) {
	rental.ID = f.nextID
	rental.Status = fsm.StatusWaiting
	rental.CreatedAt = time.Now()
	f.nextID++
	f.rentals[rental.ID] = rental
	return rental, nil
}

func (f *fakeRentalStore) GetRentalByID(ctx context.Context, id int) (models.Rental, error) {
	rental, ok := f.rentals[id]
	if !ok {
		return models.Rental{}, models.ErrRentalNotFound
	}
	return rental, nil
}

func (f *fakeRentalStore) GetRentalsByRenterID(ctx context.Context, renterID int) ([]models.Rental, error) {
	out := []models.Rental{}
	for _, rt := range f.rentals {
		if rt.RenterID == renterID {
			out = append(out, rt)
		}
	}
	return out, nil
}

func (f *fakeRentalStore) GetRentalsByOwnerID(ctx context.Context, ownerID int) ([]models.Rental, error) {
	out := []models.Rental{}
	for _, rt := range f.rentals {
		if rt.OwnerID == ownerID {
			out = append(out, rt)
		}
	}
	return out, nil
}

func (f *fakeRentalStore) setStatus(id int, status string) {
	rental := f.rentals[id]
	rental.Status = status
	f.rentals[id] = rental
}

func (f *fakeRentalStore) Approve(ctx context.Context, rentalID, itemID int) error {
	if f.approveErr != nil {
		return f.approveErr
	}
	f.setStatus(rentalID, fsm.StatusApproved)
	return nil
}

func (f *fakeRentalStore) Reject(ctx context.Context, rentalID int, reason string) error {
	rental := f.rentals[rentalID]
	rental.Status = fsm.StatusRejected
	rental.RejectReason = &reason
	f.rentals[rentalID] = rental
	return nil
}

func (f *fakeRentalStore) Cancel(ctx context.Context, rentalID int, fromStatus string, releaseItemID int) error {
	f.setStatus(rentalID, fsm.StatusCanceled)
	if releaseItemID != 0 {
		f.released = append(f.released, releaseItemID)
	}
	return nil
}

func (f *fakeRentalStore) Start(ctx context.Context, rentalID int) error {
	f.setStatus(rentalID, fsm.StatusRenting)
	return nil
}

func (f *fakeRentalStore) CompleteReturn(ctx context.Context, rentalID, itemID int) error {
	f.setStatus(rentalID, fsm.StatusReturned)
	f.released = append(f.released, itemID)
	return nil
}

type fakeItemStore struct {
	items map[int]models.Item
}

func (f *fakeItemStore) GetItemByID(ctx context.Context, id int) (models.Item, error) {
	item, ok := f.items[id]
	if !ok {
		return models.Item{}, models.ErrItemNotFound
	}
	return item, nil
}

type fakeUserStore struct {
	users map[int]models.User
}

func (f *fakeUserStore) GetUserByID(ctx context.Context, id int) (models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return models.User{}, models.ErrUserNotFound
	}
	return user, nil
}

type eventRecorder struct {
	events []string
}

func (r *eventRecorder) RentalEvent(ctx context.Context, rental models.Rental, event string) {
	r.events = append(r.events, event)
}

func newRentalServiceForTest() (*RentalService, *fakeRentalStore, *fakeItemStore, *eventRecorder) {
	rentals := newFakeRentalStore()
	items := &fakeItemStore{items: map[int]models.Item{
		10: {ID: 10, UserID: 2, Name: "drill", Price: 1000, Status: models.ItemStatusAvailable},
	}}
	users := &fakeUserStore{users: map[int]models.User{
		1: {ID: 1, Nickname: "renter"},
		2: {ID: 2, Nickname: "owner"},
	}}
	rec := &eventRecorder{}
	svc := &RentalService{
		RentalRepo: rentals,
		ItemRepo:   items,
		UserRepo:   users,
		Notifiers:  []RentalEventNotifier{rec},
	}
	return svc, rentals, items, rec
}

func TestRequestRentalComputesTotalPrice(t *testing.T) {
	svc, _, _, _ := newRentalServiceForTest()

	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

	rental, err := svc.RequestRental(context.Background(), 1, models.RentalRequest{
		ItemID:    10,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		t.Fatalf("RequestRental: %v", err)
	}
	if rental.Status != fsm.StatusWaiting {
		t.Fatalf("expected waiting status, got %s", rental.Status)
	}
	// 2h30m rounds up to 3 chargeable hours
	if rental.TotalPrice != 3000 {
		t.Fatalf("expected total price 3000, got %d", rental.TotalPrice)
	}
	if rental.OwnerID != 2 {
		t.Fatalf("expected owner 2, got %d", rental.OwnerID)
	}
}

func TestRequestRentalSubHourChargesOneHour(t *testing.T) {
	svc, _, _, _ := newRentalServiceForTest()

	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rental, err := svc.RequestRental(context.Background(), 1, models.RentalRequest{
		ItemID:    10,
		StartDate: start,
		EndDate:   start.Add(20 * time.Minute),
	})
	if err != nil {
		t.Fatalf("RequestRental: %v", err)
	}
	if rental.TotalPrice != 1000 {
		t.Fatalf("expected minimum one hour charge 1000, got %d", rental.TotalPrice)
	}
}

func TestRequestRentalRejectsBadInput(t *testing.T) {
	svc, _, items, _ := newRentalServiceForTest()
	ctx := context.Background()
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	// owner cannot rent their own item
	_, err := svc.RequestRental(ctx, 2, models.RentalRequest{ItemID: 10, StartDate: start, EndDate: start.Add(time.Hour)})
	if !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for own item, got %v", err)
	}

	// end must be after start
	_, err = svc.RequestRental(ctx, 1, models.RentalRequest{ItemID: 10, StartDate: start, EndDate: start})
	if !errors.Is(err, models.ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}

	// item already committed to another rental
	item := items.items[10]
	item.Status = models.ItemStatusRented
	items.items[10] = item
	_, err = svc.RequestRental(ctx, 1, models.RentalRequest{ItemID: 10, StartDate: start, EndDate: start.Add(time.Hour)})
	if !errors.Is(err, models.ErrItemCommitted) {
		t.Fatalf("expected ErrItemCommitted, got %v", err)
	}
}

func requestWaiting(t *testing.T, svc *RentalService) models.Rental {
	t.Helper()
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rental, err := svc.RequestRental(context.Background(), 1, models.RentalRequest{
		ItemID:    10,
		StartDate: start,
		EndDate:   start.Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("RequestRental: %v", err)
	}
	return rental
}

func TestDecideApprove(t *testing.T) {
	svc, _, _, rec := newRentalServiceForTest()
	rental := requestWaiting(t, svc)

	approved, err := svc.Decide(context.Background(), rental.ID, 2, models.RentalDecision{Approved: true})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if approved.Status != fsm.StatusApproved {
		t.Fatalf("expected approved status, got %s", approved.Status)
	}
	if len(rec.events) != 1 || rec.events[0] != EventApproved {
		t.Fatalf("expected single approved event, got %v", rec.events)
	}

	// a second decision on the same rental is no longer legal
	_, err = svc.Decide(context.Background(), rental.ID, 2, models.RentalDecision{Approved: true})
	if !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestDecideApproveConflict(t *testing.T) {
	svc, rentals, _, _ := newRentalServiceForTest()
	rental := requestWaiting(t, svc)

	// another waiting rental on the same item got approved first
	rentals.approveErr = models.ErrItemCommitted

	_, err := svc.Decide(context.Background(), rental.ID, 2, models.RentalDecision{Approved: true})
	if !errors.Is(err, models.ErrItemCommitted) {
		t.Fatalf("expected ErrItemCommitted, got %v", err)
	}
	got, _ := rentals.GetRentalByID(context.Background(), rental.ID)
	if got.Status != fsm.StatusWaiting {
		t.Fatalf("losing rental should stay waiting, got %s", got.Status)
	}
}

func TestDecideRejectRequiresReason(t *testing.T) {
	svc, _, _, rec := newRentalServiceForTest()
	rental := requestWaiting(t, svc)

	_, err := svc.Decide(context.Background(), rental.ID, 2, models.RentalDecision{Approved: false, RejectReason: "   "})
	if !errors.Is(err, models.ErrRejectReasonRequired) {
		t.Fatalf("expected ErrRejectReasonRequired, got %v", err)
	}

	rejected, err := svc.Decide(context.Background(), rental.ID, 2, models.RentalDecision{Approved: false, RejectReason: "not available that day"})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if rejected.Status != fsm.StatusRejected {
		t.Fatalf("expected rejected status, got %s", rejected.Status)
	}
	if rejected.RejectReason == nil || *rejected.RejectReason != "not available that day" {
		t.Fatalf("reject reason not recorded: %v", rejected.RejectReason)
	}
	if len(rec.events) != 1 || rec.events[0] != EventRejected {
		t.Fatalf("expected rejected event, got %v", rec.events)
	}
}

func TestDecideOwnerOnly(t *testing.T) {
	svc, _, _, _ := newRentalServiceForTest()
	rental := requestWaiting(t, svc)

	_, err := svc.Decide(context.Background(), rental.ID, 1, models.RentalDecision{Approved: true})
	if !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCancelReleasesCommittedItem(t *testing.T) {
	svc, rentals, _, _ := newRentalServiceForTest()
	rental := requestWaiting(t, svc)

	if _, err := svc.Decide(context.Background(), rental.ID, 2, models.RentalDecision{Approved: true}); err != nil {
		t.Fatalf("Decide: %v", err)
	}

	canceled, err := svc.Cancel(context.Background(), rental.ID, 1)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if canceled.Status != fsm.StatusCanceled {
		t.Fatalf("expected canceled status, got %s", canceled.Status)
	}
	if len(rentals.released) != 1 || rentals.released[0] != 10 {
		t.Fatalf("expected item 10 released, got %v", rentals.released)
	}
}

func TestCancelWaitingDoesNotReleaseItem(t *testing.T) {
	svc, rentals, _, _ := newRentalServiceForTest()
	rental := requestWaiting(t, svc)

	if _, err := svc.Cancel(context.Background(), rental.ID, 1); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if len(rentals.released) != 0 {
		t.Fatalf("waiting rental never held the item, got releases %v", rentals.released)
	}
}

func TestCancelAfterHandoverForbidden(t *testing.T) {
	svc, rentals, _, _ := newRentalServiceForTest()
	rental := requestWaiting(t, svc)
	rentals.setStatus(rental.ID, fsm.StatusRenting)

	_, err := svc.Cancel(context.Background(), rental.ID, 1)
	if !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestCancelRenterOnly(t *testing.T) {
	svc, _, _, _ := newRentalServiceForTest()
	rental := requestWaiting(t, svc)

	_, err := svc.Cancel(context.Background(), rental.ID, 2)
	if !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestStartAndReturn(t *testing.T) {
	svc, rentals, _, rec := newRentalServiceForTest()
	rental := requestWaiting(t, svc)
	rentals.setStatus(rental.ID, fsm.StatusPaid)

	// only the owner hands the item over
	if _, err := svc.Start(context.Background(), rental.ID, 1); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	started, err := svc.Start(context.Background(), rental.ID, 2)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if started.Status != fsm.StatusRenting {
		t.Fatalf("expected renting status, got %s", started.Status)
	}

	// either party may record the return; here the renter does
	returned, err := svc.CompleteReturn(context.Background(), rental.ID, 1)
	if err != nil {
		t.Fatalf("CompleteReturn: %v", err)
	}
	if returned.Status != fsm.StatusReturned {
		t.Fatalf("expected returned status, got %s", returned.Status)
	}
	if len(rentals.released) != 1 || rentals.released[0] != 10 {
		t.Fatalf("expected item 10 released on return, got %v", rentals.released)
	}
	if len(rec.events) != 2 || rec.events[0] != EventStarted || rec.events[1] != EventReturned {
		t.Fatalf("unexpected events %v", rec.events)
	}
}

func TestStartRequiresPayment(t *testing.T) {
	svc, _, _, _ := newRentalServiceForTest()
	rental := requestWaiting(t, svc)

	_, err := svc.Start(context.Background(), rental.ID, 2)
	if !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for unpaid rental, got %v", err)
	}
}
