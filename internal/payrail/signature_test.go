package payrail

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	secret := []byte("webhook-secret")
	body := []byte(`{"external_payment_id":"tx-1","status":"completed"}`)
	now := time.Now()
	ts := strconv.FormatInt(now.Unix(), 10)

	sig := Sign(secret, ts, body)
	require.NoError(t, VerifySignature(secret, ts, body, sig, now))
}

func TestVerifySignatureTamperedBody(t *testing.T) {
	secret := []byte("webhook-secret")
	now := time.Now()
	ts := strconv.FormatInt(now.Unix(), 10)

	sig := Sign(secret, ts, []byte(`{"status":"completed"}`))
	err := VerifySignature(secret, ts, []byte(`{"status":"failed"}`), sig, now)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifySignatureWrongSecret(t *testing.T) {
	body := []byte(`{}`)
	now := time.Now()
	ts := strconv.FormatInt(now.Unix(), 10)

	sig := Sign([]byte("attacker"), ts, body)
	err := VerifySignature([]byte("webhook-secret"), ts, body, sig, now)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifySignatureStaleTimestamp(t *testing.T) {
	secret := []byte("webhook-secret")
	body := []byte(`{}`)
	now := time.Now()

	old := strconv.FormatInt(now.Add(-ReplayWindow-time.Minute).Unix(), 10)
	sig := Sign(secret, old, body)
	err := VerifySignature(secret, old, body, sig, now)
	assert.ErrorIs(t, err, ErrStaleTimestamp)

	future := strconv.FormatInt(now.Add(ReplayWindow+time.Minute).Unix(), 10)
	sig = Sign(secret, future, body)
	err = VerifySignature(secret, future, body, sig, now)
	assert.ErrorIs(t, err, ErrStaleTimestamp)
}

func TestVerifySignatureNonNumericTimestamp(t *testing.T) {
	err := VerifySignature([]byte("s"), "yesterday", []byte(`{}`), "sig", time.Now())
	assert.ErrorIs(t, err, ErrStaleTimestamp)
}
