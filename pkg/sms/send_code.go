package sms

import (
	"context"
	"encoding/json"
	"fmt"

	"drifty/config"
)

// SendCodeSMS sends a verification code using the configured sign name
// and template.
func SendCodeSMS(ctx context.Context, phone, code string) error {
	cfg := config.Cfg

	templateParam := map[string]string{
		"code": code,
	}
	paramJSON, err := json.Marshal(templateParam)
	if err != nil {
		return fmt.Errorf("failed to marshal template param: %w", err)
	}

	return SendSingle(ctx, phone, cfg.SMSSignName, cfg.SMSTemplateCode, string(paramJSON))
}
