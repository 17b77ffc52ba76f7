package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"contact-book/models"
	"contact-book/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umakantv/go-utils/logger"
)

func TestMain(m *testing.M) {
	logger.Init(logger.LoggerConfig{CallerKey: "file", TimeKey: "timestamp", CallerSkip: 1})
	os.Exit(m.Run())
}

type fakeContacts struct {
	calls    int
	contacts []models.Contact
	nextID   int64
	err      error
	search   string
}

func (f *fakeContacts) List(_ context.Context, search string) ([]models.Contact, error) {
	f.calls++
	f.search = search
	return f.contacts, f.err
}

func (f *fakeContacts) Create(_ context.Context, name, phone string) (int64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	if strings.TrimSpace(name) == "" || strings.TrimSpace(phone) == "" {
		return 0, fmt.Errorf("%w: name and phone are required", services.ErrValidation)
	}
	return f.nextID, nil
}

func (f *fakeContacts) Delete(_ context.Context, id int64) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	for _, c := range f.contacts {
		if c.ID == id {
			return nil
		}
	}
	return services.ErrNotFound
}

type fakeResolver struct {
	user *models.User
	err  error
}

func (f fakeResolver) RequireUser(context.Context, string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.user == nil {
		return nil, services.ErrUnauthorized
	}
	return f.user, nil
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"/", "/"},
		{"/new", "/new"},
		{"/?q=ali", "/?q=ali"},
		{"", ""},
		{"new", ""},
		{"//evil.com", ""},
		{"/\\evil.com", ""},
		{"https://evil.com/", ""},
		{"javascript:alert(1)", ""},
	}
	for _, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			assert.Equal(t, tt.want, safeNext(tt.next))
		})
	}
}

func TestValidationMessage(t *testing.T) {
	err := fmt.Errorf("%w: name and phone are required", services.ErrValidation)
	assert.Equal(t, "Name and phone are required", validationMessage(err))
}

func TestFlashRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	setFlash(rec, FlashWarning, "Contact deleted.")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()

	f := popFlash(rec, req)
	require.NotNil(t, f)
	assert.Equal(t, Flash{Category: FlashWarning, Message: "Contact deleted."}, *f)

	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, flashCookieName, cleared[0].Name)
	assert.Less(t, cleared[0].MaxAge, 0)
}

func TestFlash_Tampered(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: flashCookieName, Value: "%%%not-base64"})

	assert.Nil(t, popFlash(httptest.NewRecorder(), req))
	assert.Nil(t, popFlash(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestSessionGate_Pages(t *testing.T) {
	var seen *models.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
	})

	t.Run("anonymous is redirected with next", func(t *testing.T) {
		gate := NewSessionGate(fakeResolver{}, "session")
		req := httptest.NewRequest(http.MethodGet, "/new?x=1", nil)
		rec := httptest.NewRecorder()

		gate.Pages(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login?next=%2Fnew%3Fx%3D1", rec.Header().Get("Location"))
	})

	t.Run("stale session is redirected", func(t *testing.T) {
		gate := NewSessionGate(fakeResolver{}, "session")
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: "token-of-deleted-user"})
		rec := httptest.NewRecorder()

		gate.Pages(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
	})

	t.Run("store failure is a 500", func(t *testing.T) {
		gate := NewSessionGate(fakeResolver{err: errors.New("redis down")}, "session")
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: "t"})
		rec := httptest.NewRecorder()

		gate.Pages(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("user is attached", func(t *testing.T) {
		alice := &models.User{ID: 1, Username: "alice"}
		gate := NewSessionGate(fakeResolver{user: alice}, "session")
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: "t"})
		rec := httptest.NewRecorder()

		gate.Pages(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, alice, seen)
	})
}

func TestSessionGate_API(t *testing.T) {
	contacts := &fakeContacts{}
	api := NewContactAPIHandler(contacts)
	gate := NewSessionGate(fakeResolver{}, "session")

	for _, h := range []http.HandlerFunc{api.ListContacts, api.CreateContact, api.DeleteContact} {
		req := httptest.NewRequest(http.MethodPost, "/api/contacts", strings.NewReader(`{"name":"x","phone":"1"}`))
		rec := httptest.NewRecorder()

		gate.API(h).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	}
	assert.Zero(t, contacts.calls)
}

func TestContactAPI_List(t *testing.T) {
	contacts := &fakeContacts{contacts: []models.Contact{{ID: 2, Name: "Bob", Phone: "456"}, {ID: 1, Name: "Alice", Phone: "123"}}}
	api := NewContactAPIHandler(contacts)

	rec := httptest.NewRecorder()
	api.ListContacts(rec, httptest.NewRequest(http.MethodGet, "/api/contacts?q=o", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "o", contacts.search)
	assert.JSONEq(t, `[{"id":2,"name":"Bob","phone":"456"},{"id":1,"name":"Alice","phone":"123"}]`, rec.Body.String())
}

func TestContactAPI_ListEmpty(t *testing.T) {
	api := NewContactAPIHandler(&fakeContacts{contacts: []models.Contact{}})

	rec := httptest.NewRecorder()
	api.ListContacts(rec, httptest.NewRequest(http.MethodGet, "/api/contacts", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestContactAPI_Create(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"created", `{"name":"Alice","phone":"123"}`, nil, http.StatusCreated},
		{"invalid json", `{"name":`, nil, http.StatusBadRequest},
		{"missing phone", `{"name":"Alice"}`, nil, http.StatusBadRequest},
		{"store failure", `{"name":"Alice","phone":"123"}`, errors.New("db error: disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := NewContactAPIHandler(&fakeContacts{nextID: 7, err: tt.err})
			rec := httptest.NewRecorder()

			api.CreateContact(rec, httptest.NewRequest(http.MethodPost, "/api/contacts", strings.NewReader(tt.body)))

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusCreated {
				var resp models.CreateContactResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, int64(7), resp.ID)
			}
		})
	}
}

func TestContactAPI_Delete(t *testing.T) {
	contacts := &fakeContacts{contacts: []models.Contact{{ID: 3, Name: "Alice", Phone: "1"}}}
	api := NewContactAPIHandler(contacts)

	tests := []struct {
		id     string
		status int
	}{
		{"3", http.StatusOK},
		{"4", http.StatusNotFound},
		{"99999999999999999999", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			req := mux.SetURLVars(httptest.NewRequest(http.MethodDelete, "/api/contacts/"+tt.id, nil), map[string]string{"id": tt.id})
			rec := httptest.NewRecorder()

			api.DeleteContact(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestContactPages_Delete(t *testing.T) {
	contacts := &fakeContacts{contacts: []models.Contact{{ID: 3, Name: "Alice", Phone: "1"}}}
	pagesHandler := NewContactPageHandler(contacts)

	tests := []struct {
		id       string
		category string
		message  string
	}{
		{"3", FlashWarning, "Contact deleted."},
		{"4", FlashDanger, "Contact not found."},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			req := mux.SetURLVars(httptest.NewRequest(http.MethodPost, "/delete/"+tt.id, nil), map[string]string{"id": tt.id})
			rec := httptest.NewRecorder()

			pagesHandler.Delete(rec, req)

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/", rec.Header().Get("Location"))

			next := httptest.NewRequest(http.MethodGet, "/", nil)
			for _, c := range rec.Result().Cookies() {
				next.AddCookie(c)
			}
			f := popFlash(httptest.NewRecorder(), next)
			require.NotNil(t, f)
			assert.Equal(t, tt.category, f.Category)
			assert.Equal(t, tt.message, f.Message)
		})
	}
}

func TestContactPages_IndexRendersContacts(t *testing.T) {
	contacts := &fakeContacts{contacts: []models.Contact{{ID: 1, Name: "<Alice>", Phone: "123"}}}
	pagesHandler := NewContactPageHandler(contacts)

	req := httptest.NewRequest(http.MethodGet, "/?q=ali", nil)
	req = req.WithContext(WithUser(req.Context(), &models.User{ID: 1, Username: "bob"}))
	rec := httptest.NewRecorder()

	pagesHandler.Index(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "&lt;Alice&gt;")
	assert.NotContains(t, body, "<Alice>")
	assert.Contains(t, body, `value="ali"`)
	assert.Contains(t, body, "bob")
	assert.Equal(t, "ali", contacts.search)
}

func TestAccessLog_RecordsStatus(t *testing.T) {
	h := AccessLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short and stout", rec.Body.String())
}

// capture exposes what the access log will see once the wrapped router returns
func capture(next http.Handler, out **requestInfo, status *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		*out = requestInfoFrom(r)
		*status = w.(*responseRecorder).status
	})
}

func TestAccessLog_SeesRouteUserAndUnmatched(t *testing.T) {
	alice := &models.User{ID: 1, Username: "alice"}
	gate := NewSessionGate(fakeResolver{user: alice}, "session")

	router := mux.NewRouter()
	router.Use(RouteTag)
	protected := router.NewRoute().Subrouter()
	protected.Use(gate.Pages)
	protected.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {}).Methods(http.MethodGet).Name("Index")

	var info *requestInfo
	var status int
	h := AccessLog(capture(router, &info, &status))

	t.Run("gated route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: "t"})

		h.ServeHTTP(httptest.NewRecorder(), req)

		require.NotNil(t, info)
		assert.Equal(t, "Index", info.route)
		assert.Equal(t, alice, info.user)
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("not found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		require.NotNil(t, info)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Empty(t, info.route)
		assert.Nil(t, info.user)
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, http.StatusMethodNotAllowed, status)
	})
}
