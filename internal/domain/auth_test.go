package domain

import (
	"context"
	"crypto/ecdsa"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"github.com/wanderquest-labs/backend/internal/model"
	"github.com/wanderquest-labs/backend/internal/repository"
	"github.com/wanderquest-labs/backend/pkg/authenticator"
	"github.com/wanderquest-labs/backend/pkg/testutil"
	"github.com/wanderquest-labs/backend/pkg/xcontext"
)

type authTest struct {
	ctx    context.Context
	redis  *testutil.MockRedisClient
	store  map[string]string
	domain AuthDomain
}

func newAuthTest(t *testing.T) *authTest {
	store := map[string]string{}
	redis := &testutil.MockRedisClient{
		GetFunc: func(ctx context.Context, key string) (string, error) {
			value, ok := store[key]
			if !ok {
				return "", context.Canceled
			}

			return value, nil
		},
		SetFunc: func(ctx context.Context, key, value string, expiration time.Duration) error {
			store[key] = value
			return nil
		},
		DelFunc: func(ctx context.Context, keys ...string) error {
			for _, key := range keys {
				delete(store, key)
			}

			return nil
		},
	}

	return &authTest{
		ctx:    testutil.MockContext(),
		redis:  redis,
		store:  store,
		domain: NewAuthDomain(repository.NewUserRepository(), redis),
	}
}

func signNonce(t *testing.T, key *ecdsa.PrivateKey, nonce string) string {
	signature, err := ethcrypto.Sign(accounts.TextHash([]byte(nonce)), key)
	require.NoError(t, err)

	signature[ethcrypto.RecoveryIDOffset] += 27
	return hexutil.Encode(signature)
}

func Test_authDomain_WalletLoginVerify(t *testing.T) {
	at := newAuthTest(t)

	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	address := ethcrypto.PubkeyToAddress(key.PublicKey).Hex()

	loginResp, err := at.domain.WalletLogin(at.ctx, &model.WalletLoginRequest{Address: address})
	require.NoError(t, err)
	require.NotEmpty(t, loginResp.Nonce)

	verifyResp, err := at.domain.WalletVerify(at.ctx, &model.WalletVerifyRequest{
		Address:   address,
		Signature: signNonce(t, key, loginResp.Nonce),
	})
	require.NoError(t, err)
	require.Equal(t, address, verifyResp.User.WalletAddress)
	require.NotEmpty(t, verifyResp.AccessToken)

	engine := authenticator.NewTokenEngine[model.AccessToken](xcontext.Configs(at.ctx).Auth)
	info, err := engine.Verify(verifyResp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, verifyResp.User.ID, info.ID)
	require.Equal(t, address, info.Address)

	// The nonce is single use.
	_, err = at.domain.WalletVerify(at.ctx, &model.WalletVerifyRequest{
		Address:   address,
		Signature: signNonce(t, key, loginResp.Nonce),
	})
	require.Error(t, err)
	require.Equal(t, "Not found any login session", err.Error())
}

func Test_authDomain_WalletVerify_ReturnsExistingUser(t *testing.T) {
	at := newAuthTest(t)

	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	address := ethcrypto.PubkeyToAddress(key.PublicKey).Hex()

	login := func() *model.WalletVerifyResponse {
		loginResp, err := at.domain.WalletLogin(at.ctx, &model.WalletLoginRequest{Address: address})
		require.NoError(t, err)

		verifyResp, err := at.domain.WalletVerify(at.ctx, &model.WalletVerifyRequest{
			Address:   address,
			Signature: signNonce(t, key, loginResp.Nonce),
		})
		require.NoError(t, err)
		return verifyResp
	}

	first := login()
	second := login()
	require.Equal(t, first.User.ID, second.User.ID)
}

func Test_authDomain_WalletVerify_MismatchedAddress(t *testing.T) {
	at := newAuthTest(t)

	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	address := ethcrypto.PubkeyToAddress(key.PublicKey).Hex()

	loginResp, err := at.domain.WalletLogin(at.ctx, &model.WalletLoginRequest{Address: address})
	require.NoError(t, err)

	otherKey, err := ethcrypto.GenerateKey()
	require.NoError(t, err)

	_, err = at.domain.WalletVerify(at.ctx, &model.WalletVerifyRequest{
		Address:   address,
		Signature: signNonce(t, otherKey, loginResp.Nonce),
	})
	require.Error(t, err)
	require.Equal(t, "Mismatched address", err.Error())
}

func Test_authDomain_WalletLogin_InvalidAddress(t *testing.T) {
	at := newAuthTest(t)

	_, err := at.domain.WalletLogin(at.ctx, &model.WalletLoginRequest{Address: "not-an-address"})
	require.Error(t, err)
	require.Equal(t, "Invalid wallet address", err.Error())
}
