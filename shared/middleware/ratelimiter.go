package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/a2z-dev/a2z/shared/api"
	"github.com/a2z-dev/a2z/shared/logger"
	"github.com/a2z-dev/a2z/shared/middleware/ratelimiter"
	"github.com/a2z-dev/a2z/shared/utils"
)

const msgRateLimited = "Too many requests. Please try again later."

func RateLimit(rl *ratelimiter.UserRateLimiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return RateLimitWithHandler(rl, getIdentity, tooManyRequests(rl))
}

// RateLimitWithHandler calls onLimit instead of the next handler once identity runs out of tokens.
// Admin sessions are never limited.
func RateLimitWithHandler(rl *ratelimiter.UserRateLimiter, getIdentity func(r *http.Request) (string, error), onLimit http.HandlerFunc) func(http.Handler) http.Handler {
	return limit(rl, getIdentity, onLimit, true)
}

// RateLimitAll limits admin sessions too. Use it on groups that only admins can reach.
func RateLimitAll(rl *ratelimiter.UserRateLimiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return limit(rl, getIdentity, tooManyRequests(rl), false)
}

func limit(rl *ratelimiter.UserRateLimiter, getIdentity func(r *http.Request) (string, error), onLimit http.HandlerFunc, exemptAdmins bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session := GetSessionFromContext(r); exemptAdmins && session != nil && session.Admin {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !rl.Allow(identity) {
				logger.Log.Warn("rate limit exceeded", "identity", identity, "path", r.URL.Path)
				onLimit(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func tooManyRequests(rl *ratelimiter.UserRateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// round up, a zero Retry-After invites an immediate retry that is limited again
		seconds := int(math.Ceil(rl.RetryAfter().Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		utils.WriteJSON(w, http.StatusTooManyRequests, api.ErrorResponse{Error: msgRateLimited})
	}
}

func GlobalRateLimit(rl *ratelimiter.UserRateLimiter) func(http.Handler) http.Handler {
	return RateLimit(rl, func(r *http.Request) (string, error) { return "global", nil })
}

// GetSessionIdFromContext keys the limiter by identity. Requires an auth middleware earlier in the chain.
func GetSessionIdFromContext(r *http.Request) (string, error) {
	session := GetSessionFromContext(r)
	if session == nil {
		return "", errors.New("Can't get user id")
	}
	// prefixed so a user id can never collide with an IP or email bucket
	return "user_" + session.IdentityId, nil
}

// GetIP returns the peer address of the TCP connection. Forwarding headers are ignored;
// run chi's RealIP earlier in the chain when a trusted proxy sits in front.
func GetIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// no port
		ip = r.RemoteAddr
	}

	// RemoteAddr set by a test or a misconfigured proxy may not be an address at all
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}
	return ip, nil
}

// GetEmailFromBody reads the email field of a JSON body and restores the body for the handler.
func GetEmailFromBody(r *http.Request) (string, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", errors.New("failed to read request body")
	}
	// the handler reads the body again
	r.Body = io.NopCloser(bytes.NewReader(body))

	var data struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return "", errors.New("invalid request body")
	}
	// " Buyer@Shop.test" and "buyer@shop.test" share a bucket
	email := strings.ToLower(strings.TrimSpace(data.Email))
	if email == "" {
		return "", errors.New("email field is required")
	}
	return email, nil
}

// GetEmailOrIP prefers the body email so one address cannot be hammered from many IPs,
// falling back to the peer IP for bodies without one.
func GetEmailOrIP(r *http.Request) (string, error) {
	if email, err := GetEmailFromBody(r); err == nil {
		return "email_" + email, nil
	}
	return GetIP(r)
}
