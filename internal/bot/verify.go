package bot

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// maxSignatureAge bounds the accepted clock skew for signed requests.
const maxSignatureAge = 5 * time.Minute

// VerifySignature returns middleware that checks the platform's v0
// request signature (HMAC-SHA256 of "v0:<timestamp>:<body>" with the
// signing secret). Stale timestamps and bad signatures get a 401.
func VerifySignature(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, "unreadable body", http.StatusBadRequest)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			tsHeader := r.Header.Get("X-Slack-Request-Timestamp")
			ts, err := strconv.ParseInt(tsHeader, 10, 64)
			if err != nil {
				http.Error(w, "missing request timestamp", http.StatusUnauthorized)
				return
			}
			if age := time.Since(time.Unix(ts, 0)); age > maxSignatureAge || age < -maxSignatureAge {
				http.Error(w, "stale request timestamp", http.StatusUnauthorized)
				return
			}

			mac := hmac.New(sha256.New, []byte(secret))
			fmt.Fprintf(mac, "v0:%s:%s", tsHeader, body)
			want := "v0=" + hex.EncodeToString(mac.Sum(nil))

			if !hmac.Equal([]byte(want), []byte(r.Header.Get("X-Slack-Signature"))) {
				http.Error(w, "invalid signature", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
