package sms

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"drifty/config"
	pkgerrors "drifty/pkg/errors"
	"drifty/pkg/logger"
)

// Client is the outbound SMS transport used by the hosted verifier.
type Client interface {
	// SendSingle sends one message.
	// templateParam is the provider template's parameter payload
	// (JSON string).
	SendSingle(ctx context.Context, phone, signName, templateCode, templateParam string) error
}

var (
	smsClient Client
	smsOnce   sync.Once
	smsErr    error
)

// Init picks the SMS client per config.
func Init() error {
	smsOnce.Do(func() {
		cfg := config.Cfg

		switch cfg.SMSProvider {
		case "aliyun":
			smsClient, smsErr = NewAliyunClient()
		case "mock":
			smsClient = NewMockClient()
		default:
			smsErr = fmt.Errorf("%w: %s", pkgerrors.ErrUnsupportedSMSProvider, cfg.SMSProvider)
		}

		if smsErr != nil {
			logger.Logger.Error("Failed to initialize SMS client", zap.Error(smsErr))
			return
		}

		logger.Logger.Info("SMS client initialized successfully",
			zap.String("provider", cfg.SMSProvider),
		)
	})

	return smsErr
}

func GetClient() Client {
	if smsClient == nil {
		panic("SMS client not initialized, call sms.Init() first")
	}
	return smsClient
}

// SetClient swaps the client; tests use it to install a MockClient
// without going through Init.
func SetClient(c Client) {
	smsOnce.Do(func() {})
	smsClient = c
	smsErr = nil
}

func SendSingle(ctx context.Context, phone, signName, templateCode, templateParam string) error {
	return GetClient().SendSingle(ctx, phone, signName, templateCode, templateParam)
}
