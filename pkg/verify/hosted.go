package verify

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"drifty/config"
	"drifty/internal/cache"
	"drifty/internal/model"
	"drifty/pkg/challenge"
	pkgerrors "drifty/pkg/errors"
	"drifty/pkg/logger"
	"drifty/pkg/sms"
	"drifty/pkg/token"
	"drifty/utils"
)

// HostedClient runs verification in-house: code generation, redis
// storage with TTL, SMS delivery, and identity-token minting on a
// successful confirm.
type HostedClient struct {
	mu     sync.Mutex
	latest map[string]string // phone -> id of the live confirmation
}

func NewHostedClient() *HostedClient {
	return &HostedClient{
		latest: make(map[string]string),
	}
}

func generateCode() string {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return fmt.Sprintf("%06d", time.Now().UnixNano()%1000000)
	}
	return fmt.Sprintf("%06d", n.Int64())
}

func (h *HostedClient) SendCode(ctx context.Context, phoneNumber, challengeToken string) (*Confirmation, error) {
	if !plausiblePhone(phoneNumber) {
		return nil, pkgerrors.PhoneInvalid
	}

	if challengeToken == "" {
		return nil, pkgerrors.ChallengeRequired
	}

	ok, err := challenge.Verify(ctx, challengeToken, config.Cfg.ChallengeSceneID)
	if err != nil {
		logger.Logger.Error("Challenge verification errored",
			zap.Error(err),
		)
		return nil, pkgerrors.ChallengeFailed
	}
	if !ok {
		return nil, pkgerrors.ChallengeFailed
	}

	phoneHash := utils.HashPhone(phoneNumber)

	count, err := cache.IncrSendCount(ctx, phoneHash)
	if err != nil {
		return nil, fmt.Errorf("failed to check send count: %w", err)
	}
	if count > config.Cfg.VerifyMaxDaily {
		return nil, pkgerrors.PhoneRateLimited
	}

	code := generateCode()

	if err := cache.SetCode(ctx, phoneHash, code); err != nil {
		return nil, fmt.Errorf("failed to store code: %w", err)
	}

	if err := sms.SendCodeSMS(ctx, phoneNumber, code); err != nil {
		// The stored code would otherwise stay live for a code the
		// user never received.
		cache.DeleteCode(ctx, phoneHash)
		logger.Logger.Error("Failed to send verification SMS",
			zap.String("phone_hash", phoneHash),
			zap.Error(err),
		)
		return nil, pkgerrors.SendFailed
	}

	conf := &Confirmation{
		ID:      uuid.NewString(),
		Phone:   phoneNumber,
		backend: h,
	}

	h.mu.Lock()
	h.latest[phoneNumber] = conf.ID
	h.mu.Unlock()

	return conf, nil
}

func (h *HostedClient) confirm(ctx context.Context, conf *Confirmation, code string) (*model.Identity, error) {
	h.mu.Lock()
	live := h.latest[conf.Phone]
	h.mu.Unlock()
	if live != conf.ID {
		return nil, pkgerrors.ConfirmationReplaced
	}

	phoneHash := utils.HashPhone(conf.Phone)

	storedCode, err := cache.GetCode(ctx, phoneHash)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, pkgerrors.CodeExpired
		}
		return nil, fmt.Errorf("failed to get code: %w", err)
	}

	if storedCode != code {
		return nil, pkgerrors.CodeInvalid
	}

	cache.DeleteCode(ctx, phoneHash)

	// Same phone, same principal across sign-ins.
	uid := "u_" + phoneHash[:16]

	signed, err := token.GenerateIdentityToken(uid, conf.Phone)
	if err != nil {
		return nil, fmt.Errorf("failed to mint identity token: %w", err)
	}

	logger.Logger.Info("Phone verified",
		zap.String("uid", uid),
	)

	return &model.Identity{
		UID:         uid,
		PhoneNumber: conf.Phone,
		Token:       signed,
	}, nil
}
