package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"caravan-share/apiclient"
	"caravan-share/apitest"
	"caravan-share/models"
)

type fakeRecorder struct {
	mu       sync.Mutex
	attempts []*Attempt
	err      error
}

func (f *fakeRecorder) Record(_ context.Context, a *Attempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, a)
	return f.err
}

// stubSession is a SessionSource with a fixed identity.
type stubSession struct {
	identity *models.Identity
	api      *apiclient.Client
}

func (s stubSession) Identity() *models.Identity { return s.identity }
func (s stubSession) Client() *apiclient.Client  { return s.api }

func loggedInStore(t *testing.T, opts apitest.Options) (*apitest.Server, *SessionStore) {
	t.Helper()
	srv, store := newStore(t, opts, "")
	if _, err := store.Login(context.Background(), testEmail, testPassword); err != nil {
		t.Fatalf("Login: %v", err)
	}
	return srv, store
}

func TestSubmitSucceeds(t *testing.T) {
	srv, store := loggedInStore(t, apitest.Options{})
	rec := &fakeRecorder{}
	sub := NewReservationSubmitter(rec)

	a := sub.Submit(context.Background(), store, models.ReservationRequest{
		CaravanID: 2, StartDate: "2026-07-01", EndDate: "2026-07-04",
	})
	if !a.Succeeded() {
		t.Fatalf("expected success, got %s: %s (%v)", a.State, a.Message, a.Err)
	}
	if a.ReservationID() == "" {
		t.Fatal("expected a reservation id")
	}
	if a.Record.TotalPrice != 270 || a.Record.Status != models.ReservationPending {
		t.Fatalf("unexpected record %+v", a.Record)
	}
	if a.Calls != 1 || srv.Count("POST", apiclient.PathReservations) != 1 {
		t.Fatalf("expected exactly one submission, got %d/%d", a.Calls, srv.Count("POST", apiclient.PathReservations))
	}

	want := []AttemptState{StateIdle, StateValidating, StateSubmitting, StateSucceeded}
	if len(a.Trace) != len(want) {
		t.Fatalf("unexpected trace %v", a.Trace)
	}
	for i := range want {
		if a.Trace[i] != want[i] {
			t.Fatalf("unexpected trace %v", a.Trace)
		}
	}

	if len(rec.attempts) != 1 || rec.attempts[0] != a {
		t.Fatalf("attempt not recorded: %+v", rec.attempts)
	}
	if a.UserID == nil || *a.UserID != 1 {
		t.Fatalf("expected user id 1, got %v", a.UserID)
	}
}

func TestSubmitRequiresIdentity(t *testing.T) {
	srv, store := newStore(t, apitest.Options{}, "")
	sub := NewReservationSubmitter(nil)

	a := sub.Submit(context.Background(), store, models.ReservationRequest{
		CaravanID: 2, StartDate: "2026-07-01", EndDate: "2026-07-04",
	})
	if a.State != StateFailed || a.Reason != ReasonAuthRequired {
		t.Fatalf("expected auth failure, got %s/%s", a.State, a.Reason)
	}
	if !strings.Contains(a.Message, "log in") {
		t.Fatalf("message should ask the user to log in, got %q", a.Message)
	}
	if a.Calls != 0 || srv.Count("POST", apiclient.PathReservations) != 0 {
		t.Fatal("no request may be sent without an identity")
	}
}

func TestSubmitValidationOrder(t *testing.T) {
	srv, api := newBackend(t, apitest.Options{})
	signedIn := stubSession{identity: &models.Identity{UserID: 1}, api: api}
	sub := NewReservationSubmitter(nil)

	cases := []struct {
		name    string
		session SessionSource
		req     models.ReservationRequest
		reason  FailureReason
	}{
		{"identity checked before dates", stubSession{api: api}, models.ReservationRequest{CaravanID: 2}, ReasonAuthRequired},
		{"missing start", signedIn, models.ReservationRequest{CaravanID: 2, EndDate: "2026-07-04"}, ReasonMissingDates},
		{"missing end", signedIn, models.ReservationRequest{CaravanID: 2, StartDate: "2026-07-04", EndDate: "  "}, ReasonMissingDates},
		{"unparseable", signedIn, models.ReservationRequest{CaravanID: 2, StartDate: "07/01/2026", EndDate: "2026-07-04"}, ReasonInvalidDate},
		{"start equals end", signedIn, models.ReservationRequest{CaravanID: 2, StartDate: "2026-07-04", EndDate: "2026-07-04"}, ReasonInvalidRange},
		{"start after end", signedIn, models.ReservationRequest{CaravanID: 2, StartDate: "2026-07-05", EndDate: "2026-07-04"}, ReasonInvalidRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := sub.Submit(context.Background(), tc.session, tc.req)
			if a.State != StateFailed || a.Reason != tc.reason {
				t.Fatalf("expected %s, got %s/%s", tc.reason, a.State, a.Reason)
			}
			if a.Calls != 0 {
				t.Fatalf("expected no calls, got %d", a.Calls)
			}
			var verr *ValidationError
			if !errors.As(a.Err, &verr) {
				t.Fatalf("expected ValidationError, got %v", a.Err)
			}
		})
	}
	if n := srv.Count("POST", apiclient.PathReservations); n != 0 {
		t.Fatalf("validation failures must not reach the backend, got %d", n)
	}
}

func TestSubmitInvalidRangeMessage(t *testing.T) {
	_, store := loggedInStore(t, apitest.Options{})
	a := NewReservationSubmitter(nil).Submit(context.Background(), store, models.ReservationRequest{
		CaravanID: 1, StartDate: "2026-07-10", EndDate: "2026-07-01",
	})
	if a.Message != "Start date must be before end date." {
		t.Fatalf("unexpected message %q", a.Message)
	}
}

func TestSubmitRejectedUsesBackendDetail(t *testing.T) {
	_, store := loggedInStore(t, apitest.Options{})
	sub := NewReservationSubmitter(nil)
	req := models.ReservationRequest{CaravanID: 2, StartDate: "2026-08-01", EndDate: "2026-08-05"}

	if a := sub.Submit(context.Background(), store, req); !a.Succeeded() {
		t.Fatalf("first booking should succeed: %s", a.Message)
	}
	a := sub.Submit(context.Background(), store, models.ReservationRequest{
		CaravanID: 2, StartDate: "2026-08-03", EndDate: "2026-08-06",
	})
	if a.State != StateFailed || a.Reason != ReasonRejected {
		t.Fatalf("expected rejection, got %s/%s", a.State, a.Reason)
	}
	if a.Message != "Caravan is not available for the selected dates." {
		t.Fatalf("backend detail must be shown verbatim, got %q", a.Message)
	}
	if apiclient.StatusCode(a.Err) != 409 {
		t.Fatalf("expected 409 underneath, got %v", a.Err)
	}
}

func TestSubmitUnknownCaravan(t *testing.T) {
	_, store := loggedInStore(t, apitest.Options{})

	a := NewReservationSubmitter(nil).Submit(context.Background(), store, models.ReservationRequest{
		CaravanID: 999, StartDate: "2026-07-01", EndDate: "2026-07-02",
	})
	if a.Reason != ReasonRejected || a.Message != "Caravan not found" {
		t.Fatalf("expected backend detail, got %s %q", a.Reason, a.Message)
	}
}

func stubAPI(t *testing.T, h http.HandlerFunc) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	api, err := apiclient.New(srv.URL, 2*time.Second)
	if err != nil {
		t.Fatalf("apiclient.New: %v", err)
	}
	return api
}

func TestSubmitRejectedWithoutDetail(t *testing.T) {
	api := stubAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	session := stubSession{identity: &models.Identity{UserID: 1}, api: api}

	a := NewReservationSubmitter(nil).Submit(context.Background(), session, models.ReservationRequest{
		CaravanID: 2, StartDate: "2026-07-01", EndDate: "2026-07-02",
	})
	if a.State != StateFailed || a.Message != "Failed to submit reservation." {
		t.Fatalf("expected generic message, got %s %q", a.State, a.Message)
	}
	if a.Calls != 1 {
		t.Fatalf("expected one call, got %d", a.Calls)
	}
}

func TestSubmitResponseWithoutID(t *testing.T) {
	api := stubAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"status":"pending"}`))
	})
	session := stubSession{identity: &models.Identity{UserID: 1}, api: api}

	a := NewReservationSubmitter(nil).Submit(context.Background(), session, models.ReservationRequest{
		CaravanID: 2, StartDate: "2026-07-01", EndDate: "2026-07-02",
	})
	if a.Succeeded() || a.ReservationID() != "" {
		t.Fatalf("a confirmation without id is not a success: %+v", a)
	}
}

func TestSubmitTransportFailure(t *testing.T) {
	session := stubSession{identity: &models.Identity{UserID: 1}, api: deadClient(t)}

	a := NewReservationSubmitter(nil).Submit(context.Background(), session, models.ReservationRequest{
		CaravanID: 2, StartDate: "2026-07-01", EndDate: "2026-07-02",
	})
	if a.State != StateFailed || a.Reason != ReasonTransport {
		t.Fatalf("expected transport failure, got %s/%s", a.State, a.Reason)
	}
	if !apiclient.IsTransport(a.Err) {
		t.Fatalf("expected transport error underneath, got %v", a.Err)
	}
}

func TestSubmitNormalizesDates(t *testing.T) {
	bodies := make(chan models.ReservationRequest, 1)
	api := stubAPI(t, func(w http.ResponseWriter, r *http.Request) {
		var body models.ReservationRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		bodies <- body
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"reservation_id":5,"caravan_id":3,"start_date":"2026-07-01","end_date":"2026-07-02","total_price":120,"status":"pending"}`))
	})
	session := stubSession{identity: &models.Identity{UserID: 1}, api: api}

	a := NewReservationSubmitter(nil).Submit(context.Background(), session, models.ReservationRequest{
		CaravanID: 3, StartDate: " 2026-07-01 ", EndDate: "2026-07-02",
	})
	if !a.Succeeded() || a.ReservationID() != "5" {
		t.Fatalf("expected success with id 5, got %+v", a)
	}
	body := <-bodies
	if body.StartDate != "2026-07-01" || body.CaravanID != 3 {
		t.Fatalf("unexpected request body %+v", body)
	}
}

func TestAttemptsAreIndependent(t *testing.T) {
	_, store := loggedInStore(t, apitest.Options{})
	sub := NewReservationSubmitter(nil)

	bad := sub.Submit(context.Background(), store, models.ReservationRequest{
		CaravanID: 3, StartDate: "2026-09-05", EndDate: "2026-09-01",
	})
	good := sub.Submit(context.Background(), store, models.ReservationRequest{
		CaravanID: 3, StartDate: "2026-09-01", EndDate: "2026-09-05",
	})
	if bad.Succeeded() || !good.Succeeded() {
		t.Fatalf("expected failure then success, got %s then %s", bad.State, good.State)
	}
	if bad.ID == good.ID {
		t.Fatal("each attempt needs its own id")
	}
	if good.Reason != "" || good.Message != "" {
		t.Fatalf("second attempt leaked the first attempt's failure: %+v", good)
	}
	if bad.State != StateFailed {
		t.Fatal("first attempt must keep its own result")
	}
}

func TestRecorderErrorDoesNotChangeOutcome(t *testing.T) {
	_, store := loggedInStore(t, apitest.Options{})
	rec := &fakeRecorder{err: errors.New("journal down")}

	a := NewReservationSubmitter(rec).Submit(context.Background(), store, models.ReservationRequest{
		CaravanID: 1, StartDate: "2026-10-01", EndDate: "2026-10-03",
	})
	if !a.Succeeded() {
		t.Fatalf("expected success, got %s %q", a.State, a.Message)
	}
	if len(rec.attempts) != 1 {
		t.Fatalf("expected one recorded attempt, got %d", len(rec.attempts))
	}
	if a.EndedAt.IsZero() {
		t.Fatal("finished attempts carry an end time")
	}
}

func TestMyReservations(t *testing.T) {
	_, store := loggedInStore(t, apitest.Options{})
	sub := NewReservationSubmitter(nil)

	empty, err := sub.MyReservations(context.Background(), store)
	if err != nil {
		t.Fatalf("MyReservations: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty history, got %#v", empty)
	}

	if a := sub.Submit(context.Background(), store, models.ReservationRequest{
		CaravanID: 2, StartDate: "2026-07-01", EndDate: "2026-07-04",
	}); !a.Succeeded() {
		t.Fatalf("Submit: %s", a.Message)
	}

	got, err := sub.MyReservations(context.Background(), store)
	if err != nil {
		t.Fatalf("MyReservations: %v", err)
	}
	if len(got) != 1 || got[0].CaravanName != `Vintage Campervan "Daisy"` {
		t.Fatalf("unexpected history %+v", got)
	}
	if got[0].StartDate.String() != "2026-07-01" {
		t.Fatalf("unexpected start %s", got[0].StartDate)
	}
}

func TestMyReservationsRequiresIdentity(t *testing.T) {
	srv, store := newStore(t, apitest.Options{}, "")

	_, err := NewReservationSubmitter(nil).MyReservations(context.Background(), store)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Reason != ReasonAuthRequired {
		t.Fatalf("expected auth validation error, got %v", err)
	}
	if srv.Count("GET", apiclient.PathMyReservations) != 0 {
		t.Fatal("no request without identity")
	}
}
