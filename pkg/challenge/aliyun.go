package challenge

import (
	"context"
	"fmt"

	captcha "github.com/alibabacloud-go/captcha-20230305/client"
	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	"github.com/alibabacloud-go/tea/tea"
	credential "github.com/aliyun/credentials-go/credentials"
	"go.uber.org/zap"

	pkgerrors "drifty/pkg/errors"
	"drifty/pkg/logger"
)

// AliyunClient verifies tokens from the aliyun intelligent captcha
// widget.
type AliyunClient struct {
	client *captcha.Client
}

func NewAliyunClient() (*AliyunClient, error) {
	cred, err := credential.NewCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create aliyun credential: %w", err)
	}

	clientConfig := &openapi.Config{
		Credential: cred,
		Endpoint:   tea.String("captcha.cn-hangzhou.aliyuncs.com"),
	}

	client, err := captcha.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create captcha client: %w", err)
	}

	return &AliyunClient{
		client: client,
	}, nil
}

// Verify checks the widget token. The token already carries the
// appkey and verify payload; it is passed through as
// CaptchaVerifyParam.
func (c *AliyunClient) Verify(ctx context.Context, token, scene string) (bool, error) {
	if token == "" {
		return false, pkgerrors.ErrChallengeTokenRequired
	}

	request := &captcha.VerifyIntelligentCaptchaRequest{
		CaptchaVerifyParam: tea.String(token),
		SceneId:            tea.String(scene),
	}

	response, err := c.client.VerifyIntelligentCaptcha(request)
	if err != nil {
		logger.Logger.Error("Failed to verify challenge",
			zap.String("scene", scene),
			zap.Error(err),
		)
		return false, fmt.Errorf("failed to verify challenge: %w", err)
	}

	if response == nil || response.Body == nil {
		return false, pkgerrors.ErrChallengeResponseNil
	}

	body := response.Body

	if body.Result != nil && body.Result.VerifyResult != nil && *body.Result.VerifyResult {
		return true, nil
	}

	if body.Code != nil && *body.Code != "200" {
		message := ""
		if body.Message != nil {
			message = *body.Message
		}
		logger.Logger.Warn("Challenge verification failed",
			zap.String("code", *body.Code),
			zap.String("message", message),
			zap.String("scene", scene),
		)
		return false, fmt.Errorf("%w: %s - %s", pkgerrors.ErrChallengeVerificationFailed, *body.Code, message)
	}

	logger.Logger.Warn("Challenge verification failed: verify result is false",
		zap.String("scene", scene),
	)
	return false, pkgerrors.ErrChallengeVerificationFailed
}
