// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package spacetrack

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockCookieName is the session cookie issued by MockServer on login.
const MockCookieName = "chocolatechip"

// MockServer is a configurable stand-in for the upstream API, used by
// tests in this and dependent packages.
type MockServer struct {
	*httptest.Server

	mu           sync.Mutex
	username     string
	password     string
	records      int
	loginStatus  int
	queryStatus  int
	queryDelay   time.Duration
	loginCalls   int
	queryCalls   int
	lastQuery    string
	queryCookies []string
}

// NewMockServer starts a mock accepting the given credentials and holding
// 100 TLE records per satellite.
func NewMockServer(username, password string) *MockServer {
	m := &MockServer{
		username:    username,
		password:    password,
		records:     100,
		loginStatus: http.StatusOK,
		queryStatus: http.StatusOK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ajaxauth/login", m.handleLogin)
	mux.HandleFunc("/basicspacedata/query/", m.handleQuery)

	m.Server = httptest.NewServer(mux)
	return m
}

// SetRecords sets how many records a satellite has.
func (m *MockServer) SetRecords(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = n
}

// SetLoginStatus forces the login endpoint to answer with status.
func (m *MockServer) SetLoginStatus(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginStatus = status
}

// SetQueryStatus forces the query endpoint to answer with status.
func (m *MockServer) SetQueryStatus(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryStatus = status
}

// SetQueryDelay delays query responses.
func (m *MockServer) SetQueryDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryDelay = d
}

// LoginCalls returns the number of login requests received.
func (m *MockServer) LoginCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loginCalls
}

// QueryCalls returns the number of query requests received.
func (m *MockServer) QueryCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queryCalls
}

// LastQueryPath returns the escaped path of the latest query.
func (m *MockServer) LastQueryPath() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastQuery
}

// QueryCookies returns the session cookie values seen on each query.
func (m *MockServer) QueryCookies() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queryCookies...)
}

func (m *MockServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.loginCalls++
	n := m.loginCalls
	status := m.loginStatus
	user, pass := m.username, m.password
	m.mu.Unlock()

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if status != http.StatusOK {
		http.Error(w, http.StatusText(status), status)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if r.PostForm.Get("identity") != user || r.PostForm.Get("password") != pass {
		_, _ = w.Write([]byte(`{"Login":"Failed"}`))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: MockCookieName, Value: "session-" + strconv.Itoa(n), Path: "/"})
	_, _ = w.Write([]byte(`""`))
}

func (m *MockServer) handleQuery(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.queryCalls++
	m.lastQuery = r.URL.EscapedPath()
	status := m.queryStatus
	records := m.records
	delay := m.queryDelay
	cookie, err := r.Cookie(MockCookieName)
	if err == nil {
		m.queryCookies = append(m.queryCookies, cookie.Value)
	}
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if status != http.StatusOK {
		http.Error(w, http.StatusText(status), status)
		return
	}
	if cookie == nil {
		http.Error(w, "not logged in", http.StatusUnauthorized)
		return
	}

	noradID, limit, ok := parseQueryPath(r.URL.Path)
	if !ok {
		http.Error(w, "bad query", http.StatusBadRequest)
		return
	}
	if limit < records {
		records = limit
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte(MockTLE(noradID, records)))
}

// parseQueryPath extracts NORAD_CAT_ID and limit from a decoded query path.
func parseQueryPath(path string) (noradID, limit int, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	var haveID, haveLimit bool
	for i := 0; i+1 < len(parts); i++ {
		switch parts[i] {
		case "NORAD_CAT_ID":
			id, err := strconv.Atoi(parts[i+1])
			noradID, haveID = id, err == nil
		case "limit":
			l, err := strconv.Atoi(parts[i+1])
			limit, haveLimit = l, err == nil
		}
	}
	return noradID, limit, haveID && haveLimit
}

// MockTLE renders n two-line element sets for noradID, one per day.
func MockTLE(noradID, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "1 %05dU 98067A   24%03d.50000000  .00016717  00000-0  10270-3 0  9005\n", noradID%100000, i%366+1)
		fmt.Fprintf(&b, "2 %05d  51.6416 247.4627 0006703 130.5360 325.0288 15.72125391%05d\n", noradID%100000, i%100000)
	}
	return b.String()
}
