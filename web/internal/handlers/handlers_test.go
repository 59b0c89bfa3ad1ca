package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/devilmonastery/chirp/api/profilev1"
	"github.com/devilmonastery/chirp/internal/client"
	"github.com/devilmonastery/chirp/web/internal/middleware"
	"github.com/devilmonastery/chirp/web/internal/session"
)

// fakeProfiles is a ProfileService backend keyed by username
type fakeProfiles struct {
	profilev1.UnimplementedProfileServiceServer

	mu          sync.Mutex
	profiles    map[string]*profilev1.Profile
	lastAuth    string
	lastUpdate  *profilev1.UpdateProfileRequest
	lastIDs     []string
	lastReqID   string
	updateErr   error
	rateHeaders metadata.MD
}

func (f *fakeProfiles) record(ctx context.Context) {
	md, _ := metadata.FromIncomingContext(ctx)
	f.lastAuth, f.lastReqID = "", ""
	if v := md.Get("authorization"); len(v) > 0 {
		f.lastAuth = v[0]
	}
	if v := md.Get(client.RequestIDHeader); len(v) > 0 {
		f.lastReqID = v[0]
	}
}

func (f *fakeProfiles) GetUserByUsername(ctx context.Context, req *profilev1.GetUserByUsernameRequest) (*profilev1.GetUserByUsernameResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(ctx)
	p, ok := f.profiles[req.Username]
	if !ok {
		return nil, status.Error(codes.NotFound, "user not found")
	}
	return &profilev1.GetUserByUsernameResponse{Profile: p}, nil
}

func (f *fakeProfiles) UpdateProfile(ctx context.Context, req *profilev1.UpdateProfileRequest) (*profilev1.UpdateProfileResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(ctx)
	f.lastUpdate = req
	if f.rateHeaders != nil {
		_ = grpc.SetHeader(ctx, f.rateHeaders)
	}
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &profilev1.UpdateProfileResponse{Success: true, Message: "successfully updated profile"}, nil
}

func (f *fakeProfiles) GetProfilesByUserIDs(ctx context.Context, req *profilev1.GetProfilesByUserIDsRequest) (*profilev1.GetProfilesByUserIDsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(ctx)
	f.lastIDs = req.UserIDs
	resp := &profilev1.GetProfilesByUserIDsResponse{}
	for _, id := range req.UserIDs {
		for _, p := range f.profiles {
			if p.ID == id {
				resp.Profiles = append(resp.Profiles, p)
			}
		}
	}
	return resp, nil
}

type gateway struct {
	backend  *fakeProfiles
	sessions *session.Manager
	handler  http.Handler
}

func newGateway(t *testing.T) *gateway {
	t.Helper()

	backend := &fakeProfiles{profiles: map[string]*profilev1.Profile{
		"ada": {ID: "user_1", Username: "ada", DisplayName: "Ada Lovelace", ProfileImageURL: "https://img/1.png", Bio: "engines"},
		"bob": {ID: "user_2", Username: "bob", DisplayName: "bob"},
	}}

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	profilev1.RegisterProfileServiceServer(srv, backend)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	c, err := client.NewClient("passthrough:///bufnet", "", nil,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := session.NewManager([]byte("0123456789abcdef0123456789abcdef"), false)
	h := New(c.ProfileClient(), sessions, log)

	return &gateway{
		backend:  backend,
		sessions: sessions,
		handler:  Router(h, middleware.NewAuthMiddleware(sessions, log), log),
	}
}

func (g *gateway) do(t *testing.T, method, target, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	g.handler.ServeHTTP(rec, req)
	return rec
}

func testToken(t *testing.T, sub string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      sub,
		"username": "ada",
		"exp":      float64(time.Now().Add(time.Hour).Unix()),
	}).SigningString()
	if err != nil {
		t.Fatalf("signing string: %v", err)
	}
	return s + ".sig"
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestGetProfile(t *testing.T) {
	g := newGateway(t)

	rec := g.do(t, http.MethodGet, "/api/profile/ada", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	p := decode[profilev1.Profile](t, rec)
	if p.ID != "user_1" || p.DisplayName != "Ada Lovelace" || p.Bio != "engines" {
		t.Errorf("profile = %+v", p)
	}
	if g.backend.lastAuth != "" {
		t.Errorf("anonymous read sent authorization %q", g.backend.lastAuth)
	}

	rec = g.do(t, http.MethodGet, "/api/profile/nobody", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if e := decode[errorResponse](t, rec); e.Code != "not_found" {
		t.Errorf("error code = %q, want not_found", e.Code)
	}
}

func TestGetProfile_ForwardsRequestID(t *testing.T) {
	g := newGateway(t)

	rec := g.do(t, http.MethodGet, "/api/profile/ada", "", http.Header{"X-Request-Id": {"req-42"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if g.backend.lastReqID != "req-42" {
		t.Errorf("backend saw request id %q, want req-42", g.backend.lastReqID)
	}
}

func TestUpdateProfile(t *testing.T) {
	g := newGateway(t)
	token := testToken(t, "user_1")

	rec := g.do(t, http.MethodPatch, "/api/profile", `{"displayName":"Ada","bio":""}`,
		http.Header{"Authorization": {"Bearer " + token}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	resp := decode[profilev1.UpdateProfileResponse](t, rec)
	if !resp.Success || resp.Message == "" {
		t.Errorf("response = %+v", resp)
	}

	if g.backend.lastAuth != "Bearer "+token {
		t.Errorf("backend authorization = %q", g.backend.lastAuth)
	}
	got := g.backend.lastUpdate
	if got.DisplayName != "Ada" || got.Bio == nil || *got.Bio != "" || got.Location != nil {
		t.Errorf("backend request = %+v", got)
	}
}

func TestUpdateProfile_SessionCookie(t *testing.T) {
	g := newGateway(t)
	token := testToken(t, "user_1")

	rec := g.do(t, http.MethodPost, "/api/session", `{"token":"`+token+`"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session status = %d, body %s", rec.Code, rec.Body)
	}
	user := decode[session.User](t, rec)
	if user.UserID != "user_1" {
		t.Errorf("session user = %+v", user)
	}

	header := http.Header{}
	for _, c := range rec.Result().Cookies() {
		header.Add("Cookie", (&http.Cookie{Name: c.Name, Value: c.Value}).String())
	}

	rec = g.do(t, http.MethodGet, "/api/session", "", header)
	if rec.Code != http.StatusOK {
		t.Fatalf("get session status = %d", rec.Code)
	}

	rec = g.do(t, http.MethodPatch, "/api/profile", `{"displayName":"Ada"}`, header)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body)
	}
	if g.backend.lastAuth != "Bearer "+token {
		t.Errorf("backend authorization = %q", g.backend.lastAuth)
	}

	rec = g.do(t, http.MethodDelete, "/api/session", "", header)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete session status = %d", rec.Code)
	}
}

func TestUpdateProfile_Rejections(t *testing.T) {
	auth := func(t *testing.T) http.Header {
		return http.Header{"Authorization": {"Bearer " + testToken(t, "user_1")}}
	}

	tests := []struct {
		name    string
		body    string
		header  func(t *testing.T) http.Header
		backend error
		rate    metadata.MD
		status  int
		code    string
		retry   string
	}{
		{name: "no session", body: `{"displayName":"Ada"}`, header: func(*testing.T) http.Header { return nil }, status: http.StatusUnauthorized},
		{name: "target user field", body: `{"displayName":"Ada","userId":"user_2"}`, header: auth, status: http.StatusBadRequest, code: "invalid_argument"},
		{name: "malformed body", body: `{`, header: auth, status: http.StatusBadRequest, code: "invalid_argument"},
		{name: "invalid argument", body: `{"displayName":" "}`, header: auth, backend: status.Error(codes.InvalidArgument, "display name is required"), status: http.StatusBadRequest, code: "invalid_argument"},
		{name: "upstream failure", body: `{"displayName":"Ada"}`, header: auth, backend: status.Error(codes.Unavailable, "failed to update user: rate limited"), status: http.StatusBadGateway, code: "upstream_failure"},
		{name: "deleted user", body: `{"displayName":"Ada"}`, header: auth, backend: status.Error(codes.NotFound, "user not found"), status: http.StatusNotFound, code: "not_found"},
		{
			name: "rate limited", body: `{"displayName":"Ada"}`, header: auth,
			backend: status.Error(codes.ResourceExhausted, "too many requests"),
			rate:    metadata.Pairs("x-ratelimit-limit", "10", "x-ratelimit-remaining", "0", "retry-after", "30"),
			status:  http.StatusTooManyRequests, code: "rate_limited", retry: "30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGateway(t)
			g.backend.updateErr = tt.backend
			g.backend.rateHeaders = tt.rate

			rec := g.do(t, http.MethodPatch, "/api/profile", tt.body, tt.header(t))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body)
			}
			if tt.code != "" {
				if e := decode[errorResponse](t, rec); e.Code != tt.code {
					t.Errorf("code = %q, want %q", e.Code, tt.code)
				}
			}
			if got := rec.Header().Get("Retry-After"); got != tt.retry {
				t.Errorf("Retry-After = %q, want %q", got, tt.retry)
			}
		})
	}
}

func TestGetProfiles(t *testing.T) {
	g := newGateway(t)

	rec := g.do(t, http.MethodGet, "/api/profiles?ids=user_2,user_1&ids=user_9", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[profilev1.GetProfilesByUserIDsResponse](t, rec)
	if len(resp.Profiles) != 2 || resp.Profiles[0].ID != "user_2" || resp.Profiles[1].ID != "user_1" {
		t.Errorf("profiles = %+v", resp.Profiles)
	}
	if strings.Join(g.backend.lastIDs, ",") != "user_2,user_1,user_9" {
		t.Errorf("backend ids = %v", g.backend.lastIDs)
	}

	rec = g.do(t, http.MethodGet, "/api/profiles", "", nil)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"profiles":[]}` {
		t.Errorf("empty query: status %d body %s", rec.Code, rec.Body)
	}
}

func TestResolveView(t *testing.T) {
	tests := []struct {
		path    string
		status  int
		state   string
		profile string
	}{
		{path: "/", status: http.StatusOK, state: "feed"},
		{path: "/@ada", status: http.StatusOK, state: "profile", profile: "user_1"},
		{path: "/@nobody", status: http.StatusNotFound, state: "profile"},
		{path: "/post/123", status: http.StatusOK, state: "post"},
		{path: "/settings/secret", status: http.StatusNotFound, state: "not_found"},
	}

	g := newGateway(t)
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := g.do(t, http.MethodGet, "/api/view?path="+tt.path, "", nil)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			resp := decode[viewResponse](t, rec)
			if string(resp.View.State) != tt.state {
				t.Errorf("state = %q, want %q", resp.View.State, tt.state)
			}
			gotProfile := ""
			if resp.Profile != nil {
				gotProfile = resp.Profile.ID
			}
			if gotProfile != tt.profile {
				t.Errorf("profile = %q, want %q", gotProfile, tt.profile)
			}
		})
	}
}

func TestSession_Errors(t *testing.T) {
	g := newGateway(t)

	if rec := g.do(t, http.MethodGet, "/api/session", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("GET without session = %d, want 401", rec.Code)
	}
	if rec := g.do(t, http.MethodPost, "/api/session", `{"token":""}`, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("POST empty token = %d, want 400", rec.Code)
	}
	if rec := g.do(t, http.MethodPost, "/api/session", `{"token":"garbage"}`, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("POST garbage token = %d, want 400", rec.Code)
	}
	if rec := g.do(t, http.MethodPut, "/api/session", "", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("PUT session = %d, want 405", rec.Code)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code codes.Code
		want int
	}{
		{codes.NotFound, http.StatusNotFound},
		{codes.Unavailable, http.StatusBadGateway},
		{codes.Internal, http.StatusInternalServerError},
		{codes.Unauthenticated, http.StatusUnauthorized},
		{codes.DeadlineExceeded, http.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		if got := httpStatus(tt.code); got != tt.want {
			t.Errorf("httpStatus(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
