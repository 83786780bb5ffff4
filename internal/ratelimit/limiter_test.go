package ratelimit

import (
	"net/http"
	"sync"
	"testing"
	"time"
)

// mockClock only moves when Advance is called.
type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMockClock() *mockClock {
	return &mockClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCheckInvite_HourlyLimit(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		InviteMaxPerHour:   3,
		InviteMaxIPPerHour: 100,
		Clock:              clock,
	})
	defer limiter.Close()

	caller := "profile:1"
	ip := "192.168.1.1"

	for i := 0; i < 3; i++ {
		result := limiter.CheckInvite(caller, ip)
		if !result.Allowed {
			t.Fatalf("invite %d should be allowed, got blocked: %s", i+1, result.Reason)
		}
		limiter.RecordInvite(caller, ip)
		clock.Advance(time.Minute)
	}

	result := limiter.CheckInvite(caller, ip)
	if result.Allowed {
		t.Fatal("fourth invite within the hour should be blocked")
	}
	if result.Reason != "hourly_limit" {
		t.Errorf("Expected reason 'hourly_limit', got '%s'", result.Reason)
	}
	if result.RetryAfter != 57*time.Minute {
		t.Errorf("Expected RetryAfter 57m, got %v", result.RetryAfter)
	}

	clock.Advance(58 * time.Minute)
	if result := limiter.CheckInvite(caller, ip); !result.Allowed {
		t.Errorf("invite after the window should be allowed, got blocked: %s", result.Reason)
	}
}

func TestCheckInvite_IPLimit(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		InviteMaxPerHour:   100,
		InviteMaxIPPerHour: 2,
		Clock:              clock,
	})
	defer limiter.Close()

	ip := "10.0.0.9"
	limiter.RecordInvite("profile:1", ip)
	limiter.RecordInvite("profile:2", ip)

	result := limiter.CheckInvite("profile:3", ip)
	if result.Allowed {
		t.Fatal("third invite from the same IP should be blocked")
	}
	if result.Reason != "ip_hourly_limit" {
		t.Errorf("Expected reason 'ip_hourly_limit', got '%s'", result.Reason)
	}
}

func TestCheckLogin_Lockout(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		LoginMaxAttempts:  3,
		LoginLockout:      5 * time.Minute,
		LoginMaxIPPerHour: 100,
		Clock:             clock,
	})
	defer limiter.Close()

	identifier := "coach@example.com"
	ip := "192.168.1.1"

	for i := 0; i < 2; i++ {
		if lockedOut := limiter.RecordLoginFailure(identifier, ip); lockedOut {
			t.Fatalf("failure %d should not lock out", i+1)
		}
	}
	if !limiter.RecordLoginFailure(identifier, ip) {
		t.Fatal("third failure should trigger lockout")
	}

	result := limiter.CheckLogin(identifier, ip)
	if result.Allowed || result.Reason != "lockout" {
		t.Fatalf("expected lockout, got %+v", result)
	}

	// mixed-case emails share one window
	if result := limiter.CheckLogin("  COACH@example.com ", ip); result.Allowed {
		t.Fatal("lockout should apply regardless of case")
	}

	clock.Advance(5*time.Minute + time.Second)
	if result := limiter.CheckLogin(identifier, ip); !result.Allowed {
		t.Errorf("login after lockout should be allowed, got blocked: %s", result.Reason)
	}
}

func TestResetLogin(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		LoginMaxAttempts:  2,
		LoginLockout:      5 * time.Minute,
		LoginMaxIPPerHour: 100,
		Clock:             clock,
	})
	defer limiter.Close()

	identifier := "player@example.com"
	ip := "192.168.1.1"
	limiter.RecordLoginFailure(identifier, ip)
	limiter.ResetLogin(identifier)

	if lockedOut := limiter.RecordLoginFailure(identifier, ip); lockedOut {
		t.Fatal("counter should restart after reset")
	}
}

func TestCheckLogin_IPLimit(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		LoginMaxAttempts:  100,
		LoginLockout:      5 * time.Minute,
		LoginMaxIPPerHour: 3,
		Clock:             clock,
	})
	defer limiter.Close()

	ip := "192.168.1.5"
	for i := 0; i < 3; i++ {
		limiter.RecordLoginFailure("user"+string(rune('a'+i))+"@example.com", ip)
	}

	result := limiter.CheckLogin("fresh@example.com", ip)
	if result.Allowed {
		t.Fatal("IP over hourly limit should be blocked")
	}
	if result.Reason != "ip_hourly_limit" {
		t.Errorf("Expected reason 'ip_hourly_limit', got '%s'", result.Reason)
	}
}

func TestCheckAndRecord_SeparateOps(t *testing.T) {
	// checking is free; only RecordInvite spends the budget
	clock := newMockClock()
	limiter := New(&Config{
		InviteMaxPerHour:   1,
		InviteMaxIPPerHour: 100,
		Clock:              clock,
	})
	defer limiter.Close()

	for i := 0; i < 10; i++ {
		if result := limiter.CheckInvite("profile:1", "192.168.1.1"); !result.Allowed {
			t.Fatalf("Check %d should be allowed without prior Record", i+1)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.InviteMaxPerHour != 30 {
		t.Errorf("InviteMaxPerHour = %d, want 30", cfg.InviteMaxPerHour)
	}
	if cfg.InviteMaxIPPerHour != 60 {
		t.Errorf("InviteMaxIPPerHour = %d, want 60", cfg.InviteMaxIPPerHour)
	}
	if cfg.LoginMaxAttempts != 5 {
		t.Errorf("LoginMaxAttempts = %d, want 5", cfg.LoginMaxAttempts)
	}
	if cfg.LoginLockout != 5*time.Minute {
		t.Errorf("LoginLockout = %v, want 5m", cfg.LoginLockout)
	}
}

func TestLimiter_Close(t *testing.T) {
	limiter := New(nil)

	// first check starts the janitor
	limiter.CheckLogin("test@example.com", "1.2.3.4")

	done := make(chan struct{})
	go func() {
		limiter.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Error("Close() should not hang")
	}
}

func TestConcurrentAccess(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		InviteMaxPerHour:   1000,
		InviteMaxIPPerHour: 1000,
		LoginMaxAttempts:   1000,
		LoginLockout:       5 * time.Minute,
		LoginMaxIPPerHour:  1000,
		Clock:              clock,
	})
	defer limiter.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if limiter.CheckInvite("profile:1", "192.168.1.1").Allowed {
					limiter.RecordInvite("profile:1", "192.168.1.1")
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if limiter.CheckLogin("login@example.com", "192.168.1.2").Allowed {
					limiter.RecordLoginFailure("login@example.com", "192.168.1.2")
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				limiter.ResetLogin("login@example.com")
			}
		}()
	}
	wg.Wait()
}

func TestGetClientIP_TrustProxy(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		trustProxy bool
		expected   string
	}{
		{
			name:       "TrustProxy=true, XFF rightmost public IP",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.50, 10.0.0.1"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "203.0.113.50",
		},
		{
			name:       "TrustProxy=true, XFF all private",
			headers:    map[string]string{"X-Forwarded-For": "192.168.1.1, 10.0.0.1"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "10.0.0.1",
		},
		{
			name:       "TrustProxy=true, X-Real-IP",
			headers:    map[string]string{"X-Real-IP": "203.0.113.51"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "203.0.113.51",
		},
		{
			name:       "TrustProxy=false, ignores XFF",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.50"},
			remoteAddr: "192.168.1.100:54321",
			trustProxy: false,
			expected:   "192.168.1.100",
		},
		{
			name:       "TrustProxy=false, ignores X-Real-IP",
			headers:    map[string]string{"X-Real-IP": "203.0.113.51"},
			remoteAddr: "192.168.1.100:54321",
			trustProxy: false,
			expected:   "192.168.1.100",
		},
		{
			name:       "No headers, RemoteAddr only",
			headers:    map[string]string{},
			remoteAddr: "192.168.1.100:54321",
			trustProxy: true,
			expected:   "192.168.1.100",
		},
		{
			name:       "RemoteAddr without port",
			headers:    map[string]string{},
			remoteAddr: "192.168.1.100",
			trustProxy: false,
			expected:   "192.168.1.100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}

			got := GetClientIP(r, tt.trustProxy)
			if got != tt.expected {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestGetClientIP_SpoofingPrevention(t *testing.T) {
	// a client-supplied X-Forwarded-For
	r, _ := http.NewRequest("GET", "/", nil)
	r.Header.Set("X-Forwarded-For", "1.2.3.4")
	r.RemoteAddr = "192.168.1.100:54321"

	got := GetClientIP(r, false)
	if got != "192.168.1.100" {
		t.Errorf("Should ignore X-Forwarded-For when TrustProxy=false, got %q", got)
	}
}

func TestSanitizeIdentifier(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"john.doe@example.com", "jo***@example.com"},
		{"JOHN.DOE@EXAMPLE.COM", "jo***@example.com"},
		{"ab@example.com", "***@example.com"},
		{"a@example.com", "***@example.com"},
		{"+15551234567", "***4567"},
		{"5551234567", "***4567"},
		{"123", "***"},
		{"", "***"},
		{"  User@Example.Com  ", "us***@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := SanitizeIdentifier(tt.input)
			if got != tt.expected {
				t.Errorf("SanitizeIdentifier(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip       string
		expected bool
	}{
		{"10.0.0.1", true},
		{"10.255.255.255", true},
		{"172.16.0.1", true},
		{"172.31.255.255", true},
		{"192.168.1.1", true},
		{"192.168.255.255", true},
		{"127.0.0.1", true},
		{"::1", true},
		{"fc00::1", true},
		{"fe80::1", true},
		// mapped forms behave like their IPv4 address
		{"::ffff:10.0.0.1", true},
		{"::ffff:192.168.1.1", true},
		{"::ffff:172.16.0.1", true},
		{"::ffff:127.0.0.1", true},
		{"::ffff:8.8.8.8", false},
		{"::ffff:1.1.1.1", false},
		{"203.0.113.50", false},
		{"8.8.8.8", false},
		{"1.1.1.1", false},
		{"2001:4860:4860::8888", false},
		{"invalid", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			got := isPrivateIP(tt.ip)
			if got != tt.expected {
				t.Errorf("isPrivateIP(%q) = %v, want %v", tt.ip, got, tt.expected)
			}
		})
	}
}
