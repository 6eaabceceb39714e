// Package identity wraps the World ID cloud proof verification endpoint. The
// zero-knowledge proof itself is opaque to this service; we only forward it
// and trust the verifier's verdict.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"taskmarket/internal/models"
)

var ErrProofRejected = errors.New("identity proof rejected")

type Client struct {
	baseURL string
	appID   string
	client  *http.Client
}

func NewClient(baseURL, appID string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		appID:   appID,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type Proof struct {
	Proof             string `json:"proof"`
	MerkleRoot        string `json:"merkle_root"`
	NullifierHash     string `json:"nullifier_hash"`
	VerificationLevel string `json:"verification_level"`
	Action            string `json:"action"`
	SignalHash        string `json:"signal_hash,omitempty"`
}

type Verification struct {
	NullifierHash     string
	VerificationLevel models.VerificationLevel
}

type verifyResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Detail  string `json:"detail"`
}

// VerifyProof calls the verifier and returns the confirmed nullifier hash and
// level. A non-2xx verdict comes back wrapped in ErrProofRejected.
func (c *Client) VerifyProof(ctx context.Context, proof Proof) (*Verification, error) {
	endpoint := fmt.Sprintf("%s/api/v2/verify/%s", c.baseURL, c.appID)

	body, err := json.Marshal(proof)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var parsed verifyResponse
	if err := json.Unmarshal(data, &parsed); err != nil && resp.StatusCode == http.StatusOK {
		return nil, fmt.Errorf("verifier returned malformed body: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !parsed.Success {
		detail := parsed.Detail
		if detail == "" {
			detail = fmt.Sprintf("verifier status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %s", ErrProofRejected, detail)
	}

	level := models.VerificationLevel(proof.VerificationLevel)
	if level != models.VerificationOrb && level != models.VerificationDevice {
		return nil, fmt.Errorf("%w: unknown verification level %q", ErrProofRejected, proof.VerificationLevel)
	}
	return &Verification{
		NullifierHash:     proof.NullifierHash,
		VerificationLevel: level,
	}, nil
}
