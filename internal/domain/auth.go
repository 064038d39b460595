package domain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/wanderquest-labs/backend/internal/entity"
	"github.com/wanderquest-labs/backend/internal/model"
	"github.com/wanderquest-labs/backend/internal/repository"
	"github.com/wanderquest-labs/backend/pkg/authenticator"
	"github.com/wanderquest-labs/backend/pkg/crypto"
	"github.com/wanderquest-labs/backend/pkg/errorx"
	"github.com/wanderquest-labs/backend/pkg/xcontext"
	"github.com/wanderquest-labs/backend/pkg/xredis"
	"gorm.io/gorm"
)

const loginNonceExpiration = 5 * time.Minute

type AuthDomain interface {
	WalletLogin(ctx context.Context, req *model.WalletLoginRequest) (*model.WalletLoginResponse, error)
	WalletVerify(ctx context.Context, req *model.WalletVerifyRequest) (*model.WalletVerifyResponse, error)
}

type authDomain struct {
	userRepo    repository.UserRepository
	redisClient xredis.Client
}

func NewAuthDomain(userRepo repository.UserRepository, redisClient xredis.Client) *authDomain {
	return &authDomain{userRepo: userRepo, redisClient: redisClient}
}

func (d *authDomain) WalletLogin(
	ctx context.Context, req *model.WalletLoginRequest,
) (*model.WalletLoginResponse, error) {
	if !ethcommon.IsHexAddress(req.Address) {
		return nil, errorx.New(errorx.BadRequest, "Invalid wallet address")
	}

	if d.redisClient == nil {
		return nil, errorx.New(errorx.Unavailable, "Wallet login is unavailable now")
	}

	nonce, err := crypto.GenerateRandomString()
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate random string: %v", err)
		return nil, errorx.Unknown
	}

	err = d.redisClient.Set(ctx, loginNonceKey(req.Address), nonce, loginNonceExpiration)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot store login nonce: %v", err)
		return nil, errorx.Unknown
	}

	return &model.WalletLoginResponse{Address: req.Address, Nonce: nonce}, nil
}

func (d *authDomain) WalletVerify(
	ctx context.Context, req *model.WalletVerifyRequest,
) (*model.WalletVerifyResponse, error) {
	if d.redisClient == nil {
		return nil, errorx.New(errorx.Unavailable, "Wallet login is unavailable now")
	}

	nonce, err := d.redisClient.Get(ctx, loginNonceKey(req.Address))
	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot get login nonce: %v", err)
		return nil, errorx.New(errorx.Unauthenticated, "Not found any login session")
	}

	if err := verifyWalletAnswer(ctx, req.Signature, nonce, req.Address); err != nil {
		return nil, err
	}

	if err := d.redisClient.Del(ctx, loginNonceKey(req.Address)); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot delete login nonce: %v", err)
	}

	user, err := d.userRepo.GetByWalletAddress(ctx, req.Address)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get user by wallet address: %v", err)
			return nil, errorx.Unknown
		}

		user = &entity.User{
			Base:          entity.Base{ID: uuid.NewString()},
			Name:          req.Address,
			WalletAddress: req.Address,
		}

		if err := d.userRepo.Create(ctx, user); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create user: %v", err)
			return nil, errorx.Unknown
		}
	}

	engine := authenticator.NewTokenEngine[model.AccessToken](xcontext.Configs(ctx).Auth)
	accessToken, err := engine.Generate(user.ID, model.AccessToken{
		ID:      user.ID,
		Name:    user.Name,
		Address: user.WalletAddress,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate access token: %v", err)
		return nil, errorx.Unknown
	}

	return &model.WalletVerifyResponse{
		User:        model.ConvertUser(user),
		AccessToken: accessToken,
	}, nil
}

func verifyWalletAnswer(ctx context.Context, hexSignature, nonce, address string) error {
	hash := accounts.TextHash([]byte(nonce))
	signature, err := hexutil.Decode(hexSignature)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot decode signature: %v", err)
		return errorx.New(errorx.BadRequest, "Invalid signature")
	}

	if len(signature) <= ethcrypto.RecoveryIDOffset {
		return errorx.New(errorx.BadRequest, "Invalid signature")
	}

	if signature[ethcrypto.RecoveryIDOffset] == 27 || signature[ethcrypto.RecoveryIDOffset] == 28 {
		signature[ethcrypto.RecoveryIDOffset] -= 27 // Transform yellow paper V from 27/28 to 0/1
	}

	recovered, err := ethcrypto.SigToPub(hash, signature)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot recover signature to address: %v", err)
		return errorx.New(errorx.BadRequest, "Invalid signature")
	}

	recoveredAddr := ethcrypto.PubkeyToAddress(*recovered)
	if !bytes.Equal(recoveredAddr.Bytes(), ethcommon.HexToAddress(address).Bytes()) {
		return errorx.New(errorx.BadRequest, "Mismatched address")
	}

	return nil
}

func loginNonceKey(address string) string {
	return fmt.Sprintf("login_nonce:%s", address)
}
