package services

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ceylontrails/tourism-backend/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeBookingStore is an in-memory BookingStore with the same conditional
// write semantics as the SQL repository: transitions check the persisted
// status inside the "write" and report affected rows.
type fakeBookingStore struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking

	createErr error
	getErr    error
	// getOverride makes every read return this row regardless of what is
	// stored, simulating a reader that keeps seeing a stale state.
	getOverride *models.Booking
	linkErr     error
	linkRows    *int64
	mirrorErr   error
	// cancelRows forces the affected-row count of Cancel, simulating a
	// concurrent transition between the caller's read and its write.
	cancelRows *int64
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{bookings: make(map[string]*models.Booking)}
}

func (f *fakeBookingStore) put(booking *models.Booking) *models.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	copied := *booking
	f.bookings[booking.ID] = &copied
	return booking
}

func (f *fakeBookingStore) Create(ctx context.Context, booking *models.Booking) error {
	if f.createErr != nil {
		return f.createErr
	}
	booking.ID = uuid.NewString()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	f.put(booking)
	return nil
}

func (f *fakeBookingStore) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.getOverride != nil {
		copied := *f.getOverride
		return &copied, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[bookingID]
	if !ok {
		return nil, &models.NotFoundError{Entity: "booking", ID: bookingID}
	}
	copied := *booking
	return &copied, nil
}

func (f *fakeBookingStore) GetByUserID(ctx context.Context, userID string) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, booking := range f.bookings {
		if booking.UserID != nil && *booking.UserID == userID {
			out = append(out, *booking)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) FindPendingForTarget(ctx context.Context, userID string, destinationID, eventID *string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, booking := range f.bookings {
		if booking.UserID == nil || *booking.UserID != userID {
			continue
		}
		if booking.PaymentStatus != models.PaymentStatusPending || booking.Status == models.BookingStatusCancelled {
			continue
		}
		if !ptrEqual(booking.DestinationID, destinationID) || !ptrEqual(booking.EventID, eventID) {
			continue
		}
		copied := *booking
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeBookingStore) UpdateFields(ctx context.Context, bookingID string, update *models.BookingUpdate) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[bookingID]
	if !ok {
		return nil, &models.NotFoundError{Entity: "booking", ID: bookingID}
	}
	if update.Status != nil {
		// Terminal rows refuse status writes at the statement level.
		if booking.Status.IsTerminal() {
			return nil, &models.NotFoundError{Entity: "booking", ID: bookingID}
		}
		booking.Status = *update.Status
	}
	if update.PaymentStatus != nil {
		booking.PaymentStatus = *update.PaymentStatus
	}
	if update.PaymentID != nil {
		booking.PaymentID = update.PaymentID
	}
	if update.PaymentProofURL != nil {
		booking.PaymentProofURL = update.PaymentProofURL
	}
	if update.PaymentProofUploadedAt != nil {
		booking.PaymentProofUploadedAt = update.PaymentProofUploadedAt
	}
	if update.ConfirmationDate != nil {
		booking.ConfirmationDate = update.ConfirmationDate
	}
	if update.CancellationDate != nil {
		booking.CancellationDate = update.CancellationDate
	}
	if update.CancellationReason != nil {
		booking.CancellationReason = update.CancellationReason
	}
	if update.CompletionDate != nil {
		booking.CompletionDate = update.CompletionDate
	}
	if update.PreferredDate != nil {
		booking.PreferredDate = update.PreferredDate
	}
	if update.ContactName != nil {
		booking.ContactName = *update.ContactName
	}
	if update.ContactEmail != nil {
		booking.ContactEmail = *update.ContactEmail
	}
	if update.ContactPhone != nil {
		booking.ContactPhone = *update.ContactPhone
	}
	if update.BookingDetails != nil {
		booking.BookingDetails = update.BookingDetails
	}
	booking.UpdatedAt = time.Now()
	copied := *booking
	return &copied, nil
}

func (f *fakeBookingStore) Confirm(ctx context.Context, bookingID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[bookingID]
	if !ok || booking.Status != models.BookingStatusPending {
		return 0, nil
	}
	booking.Status = models.BookingStatusConfirmed
	now := time.Now()
	booking.ConfirmationDate = &now
	return 1, nil
}

func (f *fakeBookingStore) Complete(ctx context.Context, bookingID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[bookingID]
	if !ok || booking.Status != models.BookingStatusConfirmed {
		return 0, nil
	}
	booking.Status = models.BookingStatusCompleted
	now := time.Now()
	booking.CompletionDate = &now
	return 1, nil
}

func (f *fakeBookingStore) Cancel(ctx context.Context, bookingID, reason string) (int64, error) {
	if f.cancelRows != nil {
		return *f.cancelRows, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[bookingID]
	if !ok || !booking.CanBeCancelled() {
		return 0, nil
	}
	booking.Status = models.BookingStatusCancelled
	booking.CancellationReason = &reason
	now := time.Now()
	booking.CancellationDate = &now
	return 1, nil
}

func (f *fakeBookingStore) SetPaymentLink(ctx context.Context, bookingID, paymentID string) (int64, error) {
	if f.linkErr != nil {
		return 0, f.linkErr
	}
	if f.linkRows != nil {
		return *f.linkRows, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[bookingID]
	if !ok {
		return 0, nil
	}
	booking.PaymentID = &paymentID
	return 1, nil
}

func (f *fakeBookingStore) MirrorPaymentStatus(ctx context.Context, bookingID string, status models.PaymentStatus) (int64, error) {
	if f.mirrorErr != nil {
		return 0, f.mirrorErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[bookingID]
	if !ok {
		return 0, nil
	}
	booking.PaymentStatus = status
	return 1, nil
}

// fakePaymentStore is an in-memory PaymentStore. TransitionStatus honors
// the expected-from list the way the SQL repository's conditional UPDATE
// does.
type fakePaymentStore struct {
	mu       sync.Mutex
	payments map[string]*models.Payment

	createErr       error
	getByBookingErr error
	// transitionRows forces zero affected rows, simulating a concurrent
	// transition after the service's status read.
	transitionRows *int64
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{payments: make(map[string]*models.Payment)}
}

func (f *fakePaymentStore) put(payment *models.Payment) *models.Payment {
	f.mu.Lock()
	defer f.mu.Unlock()
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	copied := *payment
	f.payments[payment.ID] = &copied
	return payment
}

func (f *fakePaymentStore) Create(ctx context.Context, payment *models.Payment) error {
	if f.createErr != nil {
		return f.createErr
	}
	payment.ID = uuid.NewString()
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = payment.CreatedAt
	f.put(payment)
	return nil
}

func (f *fakePaymentStore) GetByID(ctx context.Context, paymentID string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[paymentID]
	if !ok {
		return nil, &models.NotFoundError{Entity: "payment", ID: paymentID}
	}
	copied := *payment
	return &copied, nil
}

func (f *fakePaymentStore) GetByBookingID(ctx context.Context, bookingID string) (*models.Payment, error) {
	if f.getByBookingErr != nil {
		return nil, f.getByBookingErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, payment := range f.payments {
		if payment.BookingID == bookingID {
			copied := *payment
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakePaymentStore) TransitionStatus(ctx context.Context, paymentID string, from []models.PaymentStatus, to models.PaymentStatus, details models.PaymentDetails) (*models.Payment, int64, error) {
	if f.transitionRows != nil {
		return nil, *f.transitionRows, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[paymentID]
	if !ok {
		return nil, 0, nil
	}
	matched := false
	for _, status := range from {
		if payment.Status == status {
			matched = true
			break
		}
	}
	if !matched {
		return nil, 0, nil
	}
	payment.Status = to
	if payment.PaymentDetails == nil {
		payment.PaymentDetails = models.PaymentDetails{}
	}
	for key, value := range details {
		payment.PaymentDetails[key] = value
	}
	payment.UpdatedAt = time.Now()
	copied := *payment
	return &copied, 1, nil
}

// fakeAuditStore records audit entries in order.
type fakeAuditStore struct {
	mu      sync.Mutex
	entries []models.BookingAudit
	logErr  error
}

func (f *fakeAuditStore) Log(ctx context.Context, audit *models.BookingAudit) error {
	if f.logErr != nil {
		return f.logErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *audit)
	return nil
}

func (f *fakeAuditStore) events() []models.BookingEventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.BookingEventType, 0, len(f.entries))
	for _, entry := range f.entries {
		out = append(out, entry.EventType)
	}
	return out
}

func (f *fakeAuditStore) find(event models.BookingEventType) *models.BookingAudit {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].EventType == event {
			entry := f.entries[i]
			return &entry
		}
	}
	return nil
}

// fakeItineraryStore mimics the SQL repository: share codes survive
// updates once set, positions are assigned max+1 and never compacted.
type fakeItineraryStore struct {
	mu           sync.Mutex
	itineraries  map[string]*models.Itinerary
	destinations map[string]*models.ItineraryDestination
}

func newFakeItineraryStore() *fakeItineraryStore {
	return &fakeItineraryStore{
		itineraries:  make(map[string]*models.Itinerary),
		destinations: make(map[string]*models.ItineraryDestination),
	}
}

func (f *fakeItineraryStore) Create(ctx context.Context, itinerary *models.Itinerary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	itinerary.ID = uuid.NewString()
	itinerary.CreatedAt = time.Now()
	itinerary.UpdatedAt = itinerary.CreatedAt
	copied := *itinerary
	f.itineraries[itinerary.ID] = &copied
	return nil
}

func (f *fakeItineraryStore) GetByID(ctx context.Context, itineraryID string) (*models.Itinerary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	itinerary, ok := f.itineraries[itineraryID]
	if !ok {
		return nil, &models.NotFoundError{Entity: "itinerary", ID: itineraryID}
	}
	copied := *itinerary
	return &copied, nil
}

func (f *fakeItineraryStore) GetByShareCode(ctx context.Context, code string) (*models.Itinerary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, itinerary := range f.itineraries {
		if itinerary.IsPublic && itinerary.ShareCode != nil && *itinerary.ShareCode == code {
			copied := *itinerary
			return &copied, nil
		}
	}
	return nil, &models.NotFoundError{Entity: "itinerary", ID: code}
}

func (f *fakeItineraryStore) GetByUserID(ctx context.Context, userID string) ([]models.Itinerary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Itinerary
	for _, itinerary := range f.itineraries {
		if itinerary.UserID == userID {
			out = append(out, *itinerary)
		}
	}
	return out, nil
}

func (f *fakeItineraryStore) Update(ctx context.Context, itinerary *models.Itinerary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.itineraries[itinerary.ID]
	if !ok {
		return &models.NotFoundError{Entity: "itinerary", ID: itinerary.ID}
	}
	stored.Title = itinerary.Title
	stored.Description = itinerary.Description
	stored.IsPublic = itinerary.IsPublic
	// First writer wins on the share code, matching the repository's
	// COALESCE(share_code, $n).
	if stored.ShareCode == nil {
		stored.ShareCode = itinerary.ShareCode
	}
	stored.UpdatedAt = time.Now()
	*itinerary = *stored
	return nil
}

func (f *fakeItineraryStore) Delete(ctx context.Context, itineraryID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.itineraries[itineraryID]; !ok {
		return &models.NotFoundError{Entity: "itinerary", ID: itineraryID}
	}
	delete(f.itineraries, itineraryID)
	for id, dest := range f.destinations {
		if dest.ItineraryID == itineraryID {
			delete(f.destinations, id)
		}
	}
	return nil
}

func (f *fakeItineraryStore) AddDestination(ctx context.Context, dest *models.ItineraryDestination) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	position := -1
	for _, existing := range f.destinations {
		if existing.ItineraryID == dest.ItineraryID && existing.Position > position {
			position = existing.Position
		}
	}
	dest.ID = uuid.NewString()
	dest.Position = position + 1
	dest.CreatedAt = time.Now()
	copied := *dest
	f.destinations[dest.ID] = &copied
	return nil
}

func (f *fakeItineraryStore) RemoveDestination(ctx context.Context, destinationRowID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.destinations[destinationRowID]; !ok {
		return &models.NotFoundError{Entity: "itinerary destination", ID: destinationRowID}
	}
	delete(f.destinations, destinationRowID)
	return nil
}

func (f *fakeItineraryStore) ListDestinations(ctx context.Context, itineraryID string) ([]models.ItineraryDestination, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ItineraryDestination
	for _, dest := range f.destinations {
		if dest.ItineraryID == itineraryID {
			out = append(out, *dest)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// fakeCatalogStore serves canned destination and event summaries.
type fakeCatalogStore struct {
	destinations map[string]*models.CatalogSummary
	events       map[string]*models.CatalogSummary
	lookupErr    error
}

func newFakeCatalogStore() *fakeCatalogStore {
	return &fakeCatalogStore{
		destinations: make(map[string]*models.CatalogSummary),
		events:       make(map[string]*models.CatalogSummary),
	}
}

func (f *fakeCatalogStore) GetDestination(ctx context.Context, destinationID string) (*models.CatalogSummary, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	summary, ok := f.destinations[destinationID]
	if !ok {
		return nil, &models.NotFoundError{Entity: "destination", ID: destinationID}
	}
	return summary, nil
}

func (f *fakeCatalogStore) GetEvent(ctx context.Context, eventID string) (*models.CatalogSummary, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	summary, ok := f.events[eventID]
	if !ok {
		return nil, &models.NotFoundError{Entity: "event", ID: eventID}
	}
	return summary, nil
}

// fakeItineraryCache counts traffic so tests can assert read-through and
// invalidation behavior.
type fakeItineraryCache struct {
	mu            sync.Mutex
	entries       map[string]*models.ItineraryWithDestinations
	gets          int
	hits          int
	sets          int
	invalidations []string
	getErr        error
}

func newFakeItineraryCache() *fakeItineraryCache {
	return &fakeItineraryCache{entries: make(map[string]*models.ItineraryWithDestinations)}
}

func (f *fakeItineraryCache) Get(ctx context.Context, code string) (*models.ItineraryWithDestinations, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	if entry, ok := f.entries[code]; ok {
		f.hits++
		return entry, nil
	}
	return nil, nil
}

func (f *fakeItineraryCache) Set(ctx context.Context, code string, itinerary *models.ItineraryWithDestinations) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	f.entries[code] = itinerary
	return nil
}

func (f *fakeItineraryCache) Invalidate(ctx context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidations = append(f.invalidations, code)
	delete(f.entries, code)
	return nil
}

func ptrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
