package services

import (
	"context"
	"fmt"
	"time"

	"taskmarket/internal/auth"
	"taskmarket/internal/identity"
	"taskmarket/internal/models"
	"taskmarket/internal/wallet"
)

type ProofVerifier interface {
	VerifyProof(ctx context.Context, proof identity.Proof) (*identity.Verification, error)
}

type UserStore interface {
	UpsertUserByNullifier(ctx context.Context, worldID, nullifierHash string, level models.VerificationLevel, walletAddress *string) (*models.User, error)
	CreateSession(ctx context.Context, userID string, expiresAt time.Time) (*models.Session, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
}

type UserService struct {
	Store    UserStore
	Verifier ProofVerifier
	Tokens   auth.TokenIssuer
	Action   string
}

type VerifyInput struct {
	Proof             string `json:"proof"`
	MerkleRoot        string `json:"merkle_root"`
	NullifierHash     string `json:"nullifier_hash"`
	VerificationLevel string `json:"verification_level"`
	Action            string `json:"action"`
	SignalHash        string `json:"signal_hash"`
	WorldID           string `json:"world_id"`
	WalletAddress     string `json:"wallet_address"`
}

// VerifyAndLogin runs the identity gate: forward the proof to the cloud
// verifier, upsert the user keyed by nullifier hash, open a session and mint
// its token. The nullifier is what makes one person one account.
func (s *UserService) VerifyAndLogin(ctx context.Context, in VerifyInput) (*models.User, string, error) {
	if in.Proof == "" || in.MerkleRoot == "" || in.NullifierHash == "" {
		return nil, "", fmt.Errorf("%w: proof, merkle_root and nullifier_hash are required", models.ErrValidation)
	}
	if in.Action != s.Action {
		return nil, "", fmt.Errorf("%w: unknown action %q", models.ErrValidation, in.Action)
	}

	var walletAddr *string
	if in.WalletAddress != "" {
		checked, err := wallet.Checksum(in.WalletAddress)
		if err != nil || !wallet.Valid(in.WalletAddress) {
			return nil, "", fmt.Errorf("%w: invalid wallet address", models.ErrValidation)
		}
		walletAddr = &checked
	}

	verified, err := s.Verifier.VerifyProof(ctx, identity.Proof{
		Proof:             in.Proof,
		MerkleRoot:        in.MerkleRoot,
		NullifierHash:     in.NullifierHash,
		VerificationLevel: in.VerificationLevel,
		Action:            in.Action,
		SignalHash:        in.SignalHash,
	})
	if err != nil {
		return nil, "", err
	}

	user, err := s.Store.UpsertUserByNullifier(ctx, in.WorldID, verified.NullifierHash, verified.VerificationLevel, walletAddr)
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	sess, err := s.Store.CreateSession(ctx, user.ID, now.Add(s.Tokens.TTL))
	if err != nil {
		return nil, "", err
	}
	token, err := s.Tokens.Issue(user.ID, sess.ID, now)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}
