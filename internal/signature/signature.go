// Package signature verifies provider webhook signatures against the shared
// signing secret. The scheme is the Stripe-Signature header format:
//
//	t=<unix seconds>,v1=<hex hmac-sha256 of "<t>.<payload>">
//
// A header may carry several v1 entries during secret rotation; any match
// authenticates the event.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultTolerance bounds how far a signed timestamp may drift from the
// local clock before the event is treated as a replay.
const DefaultTolerance = 5 * time.Minute

var (
	ErrMissingHeader   = errors.New("signature header missing")
	ErrMalformedHeader = errors.New("signature header malformed")
	ErrStaleTimestamp  = errors.New("signature timestamp outside tolerance")
	ErrNoMatch         = errors.New("no matching signature")
)

// Verifier authenticates inbound payloads with a shared secret.
type Verifier struct {
	secret    []byte
	tolerance time.Duration
	now       func() time.Time
}

// NewVerifier creates a Verifier. tolerance <= 0 selects DefaultTolerance.
func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Verifier{
		secret:    []byte(secret),
		tolerance: tolerance,
		now:       time.Now,
	}
}

// Verify checks header against payload. It returns nil only when the header
// parses, its timestamp is within tolerance, and at least one v1 entry
// matches the expected HMAC. Comparison is constant-time.
func (v *Verifier) Verify(payload []byte, header string) error {
	if header == "" {
		return ErrMissingHeader
	}

	ts, sigs, err := parseHeader(header)
	if err != nil {
		return err
	}

	if drift := v.now().Sub(time.Unix(ts, 0)); drift > v.tolerance || drift < -v.tolerance {
		return ErrStaleTimestamp
	}

	expected := v.sign(ts, payload)
	for _, sig := range sigs {
		if hmac.Equal(expected, sig) {
			return nil
		}
	}
	return ErrNoMatch
}

// Header renders a valid signature header for payload as of ts. Used by
// tests and local delivery tooling.
func (v *Verifier) Header(ts time.Time, payload []byte) string {
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(v.sign(ts.Unix(), payload)))
}

func (v *Verifier) sign(ts int64, payload []byte) []byte {
	mac := hmac.New(sha256.New, v.secret)
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	return mac.Sum(nil)
}

func parseHeader(header string) (int64, [][]byte, error) {
	ts := int64(-1)
	var sigs [][]byte

	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, nil, ErrMalformedHeader
			}
			ts = n
		case "v1":
			raw, err := hex.DecodeString(value)
			if err != nil {
				// Undecodable entries are skipped, not fatal; another
				// v1 entry may still match.
				continue
			}
			sigs = append(sigs, raw)
		}
	}

	if ts < 0 || len(sigs) == 0 {
		return 0, nil, ErrMalformedHeader
	}
	return ts, sigs, nil
}
