package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmarket/internal/auth"
	"taskmarket/internal/identity"
	"taskmarket/internal/models"
)

type fakeUserStore struct {
	upserted *models.User
	wallet   *string
}

func (f *fakeUserStore) UpsertUserByNullifier(_ context.Context, worldID, nullifierHash string, level models.VerificationLevel, walletAddress *string) (*models.User, error) {
	f.wallet = walletAddress
	f.upserted = &models.User{
		ID:                "user-1",
		WorldID:           worldID,
		NullifierHash:     nullifierHash,
		VerificationLevel: level,
		WalletAddress:     walletAddress,
		TotalEarned:       "0",
		IsActive:          true,
	}
	return f.upserted, nil
}

func (f *fakeUserStore) CreateSession(_ context.Context, userID string, expiresAt time.Time) (*models.Session, error) {
	return &models.Session{ID: "sess-1", UserID: userID, ExpiresAt: expiresAt}, nil
}

func (f *fakeUserStore) GetUser(context.Context, string) (*models.User, error) {
	return f.upserted, nil
}

type fakeVerifier struct {
	err    error
	proofs []identity.Proof
}

func (f *fakeVerifier) VerifyProof(_ context.Context, proof identity.Proof) (*identity.Verification, error) {
	f.proofs = append(f.proofs, proof)
	if f.err != nil {
		return nil, f.err
	}
	return &identity.Verification{
		NullifierHash:     proof.NullifierHash,
		VerificationLevel: models.VerificationLevel(proof.VerificationLevel),
	}, nil
}

func newUserService(st *fakeUserStore, verifier *fakeVerifier) *UserService {
	return &UserService{
		Store:    st,
		Verifier: verifier,
		Tokens:   auth.TokenIssuer{Secret: []byte("test-secret"), TTL: time.Hour},
		Action:   "complete-task",
	}
}

func validInput() VerifyInput {
	return VerifyInput{
		Proof:             "zkp",
		MerkleRoot:        "0xroot",
		NullifierHash:     "0xnull",
		VerificationLevel: "orb",
		Action:            "complete-task",
	}
}

func TestVerifyAndLogin(t *testing.T) {
	st := &fakeUserStore{}
	verifier := &fakeVerifier{}
	svc := newUserService(st, verifier)

	user, token, err := svc.VerifyAndLogin(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, "0xnull", user.NullifierHash)
	assert.Equal(t, models.VerificationOrb, user.VerificationLevel)

	userID, sessionID, err := svc.Tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "sess-1", sessionID)
}

func TestVerifyAndLoginMissingProofFields(t *testing.T) {
	svc := newUserService(&fakeUserStore{}, &fakeVerifier{})

	in := validInput()
	in.MerkleRoot = ""
	_, _, err := svc.VerifyAndLogin(context.Background(), in)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestVerifyAndLoginWrongAction(t *testing.T) {
	verifier := &fakeVerifier{}
	svc := newUserService(&fakeUserStore{}, verifier)

	in := validInput()
	in.Action = "something-else"
	_, _, err := svc.VerifyAndLogin(context.Background(), in)
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Empty(t, verifier.proofs)
}

func TestVerifyAndLoginRejectedProof(t *testing.T) {
	verifier := &fakeVerifier{err: identity.ErrProofRejected}
	st := &fakeUserStore{}
	svc := newUserService(st, verifier)

	_, _, err := svc.VerifyAndLogin(context.Background(), validInput())
	assert.ErrorIs(t, err, identity.ErrProofRejected)
	assert.Nil(t, st.upserted)
}

func TestVerifyAndLoginChecksumsWallet(t *testing.T) {
	st := &fakeUserStore{}
	svc := newUserService(st, &fakeVerifier{})

	in := validInput()
	in.WalletAddress = "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"
	_, _, err := svc.VerifyAndLogin(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, st.wallet)
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", *st.wallet)
}

func TestVerifyAndLoginBadWallet(t *testing.T) {
	svc := newUserService(&fakeUserStore{}, &fakeVerifier{})

	in := validInput()
	in.WalletAddress = "not-an-address"
	_, _, err := svc.VerifyAndLogin(context.Background(), in)
	assert.ErrorIs(t, err, models.ErrValidation)
}
