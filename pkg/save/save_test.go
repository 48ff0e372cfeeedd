package save_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-widgetform/pkg/form"
	"github.com/goliatone/go-widgetform/pkg/instance"
	"github.com/goliatone/go-widgetform/pkg/notifications"
	"github.com/goliatone/go-widgetform/pkg/observable"
	"github.com/goliatone/go-widgetform/pkg/save"
	"github.com/goliatone/go-widgetform/pkg/testsupport"
)

func newForm(t *testing.T, initial instance.Instance) *form.Form {
	t.Helper()
	f, err := form.New(form.Params{
		Model:     observable.New(initial),
		Container: testsupport.NewContainer(),
		Config:    form.Config{DefaultInstance: instance.Instance{"title": "", "items": float64(10)}},
		Templates: testsupport.Provider(""),
	})
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	return f
}

func TestSave_Success(t *testing.T) {
	var received instance.Instance
	var header string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("unexpected method %s", r.Method)
		}
		header = r.Header.Get("X-WP-Nonce")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"Saved","items":7}`))
	}))
	defer server.Close()

	f := newForm(t, instance.Instance{"title": "Draft"})
	f.InjectServerNotifications(notifications.New("serverError", "old", notifications.SeverityWarning))

	committer := save.New(server.URL, save.WithHeader("X-WP-Nonce", "abc"))
	result, err := committer.Save(testsupport.Context(), f)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if diff := cmp.Diff(instance.Instance{"title": "Draft", "items": float64(10)}, received); diff != "" {
		t.Fatalf("request payload mismatch (-want +got):\n%s", diff)
	}
	if header != "abc" {
		t.Fatalf("expected nonce header, got %q", header)
	}
	if result.Status != http.StatusOK {
		t.Fatalf("unexpected status %d", result.Status)
	}
	if diff := cmp.Diff(instance.Instance{"title": "Saved", "items": float64(7)}, f.GetValue()); diff != "" {
		t.Fatalf("server instance not applied (-want +got):\n%s", diff)
	}
	if f.Notifications().Len() != 0 {
		t.Fatalf("expected server notifications cleared, got %d", f.Notifications().Len())
	}
}

func TestSave_RESTErrorMapsToNotifications(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{
			"code": "rest_invalid_param",
			"message": "Invalid parameter(s): items",
			"data": {"status": 400, "params": {"items": "items must be at most 5.", "instance": "Instance is stale."}}
		}`))
	}))
	defer server.Close()

	f := newForm(t, instance.Instance{"title": "News"})
	committer := save.New(server.URL)

	_, err := committer.Save(testsupport.Context(), f)
	if !errors.Is(err, save.ErrRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
	var rejected *save.RejectedError
	if !errors.As(err, &rejected) || rejected.Code != "rest_invalid_param" || rejected.Status != http.StatusBadRequest {
		t.Fatalf("unexpected rejection %#v", err)
	}

	fieldNotice := f.Notifications().Get("serverInvalid:items")
	if fieldNotice == nil {
		t.Fatalf("expected field notification")
	}
	if fieldNotice.Origin != notifications.OriginServer || fieldNotice.Field != "items" || fieldNotice.Message != "items must be at most 5." {
		t.Fatalf("unexpected field notification %+v", fieldNotice)
	}
	formNotice := f.Notifications().Get(save.CodeServerError)
	if formNotice == nil || formNotice.Message != "Instance is stale." {
		t.Fatalf("unexpected form notification %+v", formNotice)
	}

	if _, err := committer.Save(testsupport.Context(), f); !errors.Is(err, save.ErrBlocked) {
		t.Fatalf("expected unchanged payload to be blocked, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("blocked save must not reach the server, calls=%d", calls)
	}

	if !f.SetState(instance.Instance{"title": "Other news"}) {
		t.Fatalf("unrelated edit rejected")
	}
	if f.Notifications().Has(save.CodeServerError) {
		t.Fatalf("form-level server error must be released by an edit")
	}
	if !f.Notifications().Has("serverInvalid:items") {
		t.Fatalf("field error released although items is unchanged")
	}
	if _, err := committer.Save(testsupport.Context(), f); !errors.Is(err, save.ErrBlocked) {
		t.Fatalf("expected live server error to keep blocking, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("save completed with a live server error, calls=%d", calls)
	}

	f.SetState(instance.Instance{"items": float64(4)})
	if got := save.Blocking(f); len(got) != 0 {
		t.Fatalf("fixing the field must release its server error, got %d blocking", len(got))
	}
	if _, err := committer.Save(testsupport.Context(), f); !errors.Is(err, save.ErrRejected) {
		t.Fatalf("expected second request rejected, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected second request sent, calls=%d", calls)
	}
}

func TestSave_RetryAfterRejection(t *testing.T) {
	fail := true
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if fail {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":"rest_invalid_param","data":{"params":{"instance[title]":"Title taken."}}}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	model := observable.New(instance.Instance{"title": "Taken"})
	f, err := form.New(form.Params{
		Model:     model,
		Container: testsupport.NewContainer(),
		Config:    form.Config{DefaultInstance: instance.Instance{"title": ""}},
		Templates: testsupport.Provider(""),
	})
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	before := model.Subscribers()

	committer := save.New(server.URL)
	if _, err := committer.Save(testsupport.Context(), f); !errors.Is(err, save.ErrRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if got := f.Notifications().Get("serverInvalid:title"); got == nil || got.Message != "Title taken." {
		t.Fatalf("unexpected field notification %+v", got)
	}
	if model.Subscribers() != before+1 {
		t.Fatalf("expected the rejected form to be watched")
	}

	model.Set(instance.Instance{"title": "Free"})
	if f.Notifications().Len() != 0 {
		t.Fatalf("external fix must release the field error, got %d", f.Notifications().Len())
	}
	if model.Subscribers() != before {
		t.Fatalf("watcher must detach once no server notification is left")
	}

	fail = false
	if _, err := committer.Save(testsupport.Context(), f); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestReleaseStale_KeepsClientAndUnrecordedNotifications(t *testing.T) {
	f := newForm(t, instance.Instance{"title": "x"})
	f.Notifications().Add(form.CodeInvalidValue, notifications.New(form.CodeInvalidValue, "bad", notifications.SeverityError))
	f.InjectServerNotifications(notifications.New(save.CodeServerError, "down", notifications.SeverityError))

	f.SetState(instance.Instance{"title": "y"})
	if removed := save.ReleaseStale(f); removed != 0 {
		t.Fatalf("expected nothing released, got %d", removed)
	}
	if got := len(save.Blocking(f)); got != 2 {
		t.Fatalf("expected both errors blocking, got %d", got)
	}
}

func TestSave_ClientErrorsBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("server must not be called")
	}))
	defer server.Close()

	f := newForm(t, instance.Instance{})
	f.Notifications().Add(form.CodeInvalidValue, notifications.New(form.CodeInvalidValue, "bad", notifications.SeverityError))

	_, err := save.New(server.URL).Save(testsupport.Context(), f)
	if !errors.Is(err, save.ErrBlocked) {
		t.Fatalf("expected blocked save, got %v", err)
	}
}

func TestSave_WarningsDoNotBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	f := newForm(t, instance.Instance{"title": "<b>x</b>"})
	f.Notifications().Add("markupTitleInvalid", notifications.New("markupTitleInvalid", "tags", notifications.SeverityWarning))

	result, err := save.New(server.URL, save.WithMethod("post")).Save(testsupport.Context(), f)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if result.Status != http.StatusNoContent {
		t.Fatalf("unexpected status %d", result.Status)
	}
	if got := result.Instance["title"]; got != "<b>x</b>" {
		t.Fatalf("expected payload kept, got %v", got)
	}
}

func TestSave_PlainTextError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	f := newForm(t, instance.Instance{})
	_, err := save.New(server.URL).Save(testsupport.Context(), f)
	if !errors.Is(err, save.ErrRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
	n := f.Notifications().Get(save.CodeServerError)
	if n == nil || n.Message != "upstream down" {
		t.Fatalf("unexpected server notification %+v", n)
	}
}
