// Package ratelimit throttles logins and invites per identifier and IP.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Clock is the limiter's time source; tests swap in a fixed one.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Config sets the hourly invite budgets and the login lockout policy.
type Config struct {
	InviteMaxPerHour   int // invites a super_admin may send per hour
	InviteMaxIPPerHour int // invites from one address per hour

	LoginMaxAttempts  int           // wrong passwords before the account is locked
	LoginLockout      time.Duration // how long a locked account waits
	LoginMaxIPPerHour int           // wrong passwords from one address per hour

	Clock Clock // nil means time.Now
}

// DefaultConfig mirrors the config.yaml defaults.
func DefaultConfig() *Config {
	return &Config{
		InviteMaxPerHour:   30,
		InviteMaxIPPerHour: 60,
		LoginMaxAttempts:   5,
		LoginLockout:       5 * time.Minute,
		LoginMaxIPPerHour:  30,
	}
}

// LimitResult is a verdict plus the wait the caller reports in Retry-After.
type LimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string
}

// entry is one fixed one-hour window. lockedAt is zero unless a login lockout is active.
type entry struct {
	count    int
	firstAt  time.Time
	lastAt   time.Time
	lockedAt time.Time
}

// Limiter keeps in-memory windows for invite senders and login emails, each
// paired with a window for the client address. It is shared by the invite
// handler and the login handler.
type Limiter struct {
	config *Config
	clock  Clock
	mu     sync.RWMutex
	// keys are hashed so raw emails never sit in memory
	inviteByID map[string]*entry
	inviteByIP map[string]*entry
	loginByID  map[string]*entry
	loginByIP  map[string]*entry

	cleanupCtx    context.Context
	cleanupCancel context.CancelFunc
	cleanupOnce   sync.Once
	cleanupWg     sync.WaitGroup
}

// New returns a Limiter; a nil cfg uses DefaultConfig.
func New(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Limiter{
		config:        cfg,
		clock:         clock,
		inviteByID:    make(map[string]*entry),
		inviteByIP:    make(map[string]*entry),
		loginByID:     make(map[string]*entry),
		loginByIP:     make(map[string]*entry),
		cleanupCtx:    ctx,
		cleanupCancel: cancel,
	}
}

// Close stops the janitor goroutine.
func (l *Limiter) Close() {
	l.cleanupCancel()
	l.cleanupWg.Wait()
}

// CheckInvite reports whether caller may send another invite from ip. It is
// read-only; the invite handler calls RecordInvite once the request is valid.
func (l *Limiter) CheckInvite(caller, ip string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()
	idKey := l.hashKey("invite:id:", normalizeIdentifier(caller))
	ipKey := l.hashKey("invite:ip:", ip)

	l.mu.RLock()
	defer l.mu.RUnlock()

	if e := l.inviteByID[idKey]; e != nil {
		if now.Sub(e.firstAt) < time.Hour && e.count >= l.config.InviteMaxPerHour {
			return LimitResult{
				Allowed:    false,
				RetryAfter: time.Hour - now.Sub(e.firstAt),
				Reason:     "hourly_limit",
			}
		}
	}

	if e := l.inviteByIP[ipKey]; e != nil {
		if now.Sub(e.firstAt) < time.Hour && e.count >= l.config.InviteMaxIPPerHour {
			return LimitResult{
				Allowed:    false,
				RetryAfter: time.Hour - now.Sub(e.firstAt),
				Reason:     "ip_hourly_limit",
			}
		}
	}

	return LimitResult{Allowed: true}
}

// RecordInvite counts one invite against caller and ip.
func (l *Limiter) RecordInvite(caller, ip string) {
	now := l.clock.Now()
	idKey := l.hashKey("invite:id:", normalizeIdentifier(caller))
	ipKey := l.hashKey("invite:ip:", ip)

	l.mu.Lock()
	defer l.mu.Unlock()

	recordWindow(l.inviteByID, idKey, now)
	recordWindow(l.inviteByIP, ipKey, now)
}

// CheckLogin reports whether identifier may try a password from ip. Only
// wrong passwords count, via RecordLoginFailure.
func (l *Limiter) CheckLogin(identifier, ip string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()
	idKey := l.hashKey("login:id:", normalizeIdentifier(identifier))
	ipKey := l.hashKey("login:ip:", ip)

	l.mu.RLock()
	defer l.mu.RUnlock()

	if e := l.loginByID[idKey]; e != nil {
		if !e.lockedAt.IsZero() {
			elapsed := now.Sub(e.lockedAt)
			if elapsed < l.config.LoginLockout {
				return LimitResult{
					Allowed:    false,
					RetryAfter: l.config.LoginLockout - elapsed,
					Reason:     "lockout",
				}
			}
		} else if e.count >= l.config.LoginMaxAttempts {
			return LimitResult{
				Allowed:    false,
				RetryAfter: l.config.LoginLockout,
				Reason:     "max_attempts",
			}
		}
	}

	if e := l.loginByIP[ipKey]; e != nil {
		if now.Sub(e.firstAt) < time.Hour && e.count >= l.config.LoginMaxIPPerHour {
			return LimitResult{
				Allowed:    false,
				RetryAfter: time.Hour - now.Sub(e.firstAt),
				Reason:     "ip_hourly_limit",
			}
		}
	}

	return LimitResult{Allowed: true}
}

// RecordLoginFailure counts a wrong password and reports whether this one
// locked the account.
func (l *Limiter) RecordLoginFailure(identifier, ip string) (lockedOut bool) {
	now := l.clock.Now()
	idKey := l.hashKey("login:id:", normalizeIdentifier(identifier))
	ipKey := l.hashKey("login:ip:", ip)

	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.loginByID[idKey]
	switch {
	case e == nil, !e.lockedAt.IsZero() && now.Sub(e.lockedAt) >= l.config.LoginLockout:
		e = &entry{count: 1, firstAt: now, lastAt: now}
		l.loginByID[idKey] = e
	default:
		e.count++
		e.lastAt = now
	}
	if e.count >= l.config.LoginMaxAttempts && e.lockedAt.IsZero() {
		e.lockedAt = now
		lockedOut = true
	}

	recordWindow(l.loginByIP, ipKey, now)
	return lockedOut
}

// ResetLogin forgets the failures for identifier after a good password.
func (l *Limiter) ResetLogin(identifier string) {
	idKey := l.hashKey("login:id:", normalizeIdentifier(identifier))
	l.mu.Lock()
	delete(l.loginByID, idKey)
	l.mu.Unlock()
}

func recordWindow(entries map[string]*entry, key string, now time.Time) {
	e := entries[key]
	if e == nil || now.Sub(e.firstAt) >= time.Hour {
		entries[key] = &entry{count: 1, firstAt: now, lastAt: now}
		return
	}
	e.count++
	e.lastAt = now
}

func (l *Limiter) hashKey(prefix, value string) string {
	hash := sha256.Sum256([]byte(value))
	return prefix + hex.EncodeToString(hash[:8])
}

// normalizeIdentifier folds case so "Coach@Club" and "coach@club" share a window.
func normalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

func (l *Limiter) startCleanup() {
	l.cleanupOnce.Do(func() {
		l.cleanupWg.Add(1)
		go func() {
			defer l.cleanupWg.Done()
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-l.cleanupCtx.Done():
					return
				case <-ticker.C:
					l.cleanup()
				}
			}
		}()
	})
}

func (l *Limiter) cleanup() {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, entries := range []map[string]*entry{l.inviteByID, l.inviteByIP, l.loginByIP} {
		for k, e := range entries {
			if now.Sub(e.lastAt) > time.Hour {
				delete(entries, k)
			}
		}
	}

	// lockouts outlive the hourly windows
	maxAge := l.config.LoginLockout + time.Hour
	for k, e := range l.loginByID {
		if now.Sub(e.lastAt) > maxAge {
			delete(l.loginByID, k)
		}
	}
}

// GetClientIP returns the address limits are keyed on. Forwarding headers are
// read only when app.trust_proxy is set; then the rightmost public hop of
// X-Forwarded-For wins, then X-Real-IP.
func GetClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			for i := len(parts) - 1; i >= 0; i-- {
				ip := strings.TrimSpace(parts[i])
				if ip != "" && !isPrivateIP(ip) {
					return ip
				}
			}
			return strings.TrimSpace(parts[len(parts)-1])
		}

		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// no port, as with some test requests
		if parsed := net.ParseIP(r.RemoteAddr); parsed != nil {
			return r.RemoteAddr
		}
		if idx := strings.LastIndex(r.RemoteAddr, ":"); idx != -1 {
			candidate := r.RemoteAddr[:idx]
			if net.ParseIP(candidate) != nil {
				return candidate
			}
		}
		return r.RemoteAddr
	}
	return ip
}

// privateNetworks are skipped when walking X-Forwarded-For.
var privateNetworks []*net.IPNet

func init() {
	privateRanges := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"::1/128",
		"fc00::/7",
		"fe80::/10",
	}
	for _, cidr := range privateRanges {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic("invalid private CIDR: " + cidr)
		}
		privateNetworks = append(privateNetworks, network)
	}
}

// isPrivateIP also matches IPv4-mapped IPv6 forms such as ::ffff:10.0.0.1.
func isPrivateIP(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}

	if ipv4 := ip.To4(); ipv4 != nil {
		ip = ipv4
	}

	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// SanitizeIdentifier masks an email (or phone) for log lines.
func SanitizeIdentifier(identifier string) string {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if strings.Contains(identifier, "@") {
		parts := strings.Split(identifier, "@")
		if len(parts[0]) > 2 {
			return parts[0][:2] + "***@" + parts[1]
		}
		return "***@" + parts[1]
	}
	if len(identifier) >= 4 {
		return "***" + identifier[len(identifier)-4:]
	}
	return "***"
}

// LogRateLimitExceeded records a refused invite or login without the raw email.
func LogRateLimitExceeded(limitType, identifier, ip, reason string) {
	log.Warn().
		Str("event", "rate_limit_exceeded").
		Str("type", limitType).
		Str("identifier", SanitizeIdentifier(identifier)).
		Str("ip", ip).
		Str("reason", reason).
		Msg("Rate limit exceeded")
}
