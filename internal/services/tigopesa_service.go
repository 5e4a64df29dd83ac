package services

import (
	"context"
	"encoding/json"
	"log"
	"net/url"

	"church-service/internal/models"
	"church-service/pkg/common"

	"gorm.io/gorm"
)

// TigoPesaService drives the Tigo Pesa push-billpay flow. Tokens come from a
// form-encoded password grant; the push itself is JSON with the merchant
// credentials repeated in the headers, which is how the access gateway works.
type TigoPesaService struct {
	DB        *gorm.DB
	Helper    *HelperService
	Donations *DonationService
	Client    *common.Client
}

func NewTigoPesaService(db *gorm.DB, helper *HelperService, donations *DonationService, client *common.Client) *TigoPesaService {
	return &TigoPesaService{DB: db, Helper: helper, Donations: donations, Client: client}
}

func (s *TigoPesaService) accessToken(ctx context.Context, settings *models.PaymentConfig) (string, error) {
	form := url.Values{}
	form.Add("username", settings.APIKey)
	form.Add("password", settings.APISecret)
	form.Add("grant_type", "password")

	resp, err := s.Client.PostForm(ctx, settings.BaseURL+"/token", form, nil)
	if err != nil {
		return "", err
	}
	if body, ok := resp.(map[string]interface{}); ok {
		if token, _ := body["access_token"].(string); token != "" {
			return token, nil
		}
	}
	return "", errNoAccessToken
}

func (s *TigoPesaService) InitiatePayment(ctx context.Context, donation *models.Donation, phone string) GatewayResult {
	settings, err := s.Helper.GatewaySettings(models.MethodTigoPesa)
	if err != nil {
		return GatewayResult{Success: false, Message: "Tigo Pesa has not been configured"}
	}

	token, err := s.accessToken(ctx, settings)
	if err != nil {
		log.Printf("tigopesa token error: %v", err)
		return GatewayResult{Success: false, Message: "Failed to authenticate with Tigo Pesa"}
	}

	payload := map[string]interface{}{
		"CustomerMSISDN": common.InternationalPhone(phone),
		"BillerMSISDN":   settings.ShortCode,
		"Amount":         donation.Amount.IntPart(),
		"Remarks":        "Donation - " + donation.Category,
		"ReferenceID":    donation.TransactionNo,
	}
	headers := map[string]string{
		"Authorization": "Bearer " + token,
		"Username":      settings.APIKey,
		"Password":      settings.APISecret,
	}

	resp, err := s.Client.PostJSON(ctx, settings.BaseURL+"/API/BillerPayment/BillerPay", payload, headers)
	if err != nil {
		log.Printf("tigopesa push error: %v", err)
		return GatewayResult{Success: false, Message: "Payment request failed"}
	}

	body, _ := resp.(map[string]interface{})
	if code, ok := body["ResponseCode"].(string); ok && code != "BILLER-30-0000-S" && code != "0" {
		desc, _ := body["ResponseDescription"].(string)
		if desc == "" {
			desc = "Payment request was rejected by Tigo Pesa"
		}
		return GatewayResult{Success: false, Message: desc, Data: body}
	}

	// Tigo's callback references the same ReferenceID we sent, so the
	// transaction number itself is the payment reference.
	if _, err := s.Donations.UpdateStatus(donation.ID, models.StatusProcessing, donation.TransactionNo); err != nil {
		log.Printf("tigopesa: failed to mark donation %d processing: %v", donation.ID, err)
	}

	return GatewayResult{
		Success: true,
		Message: "Payment request sent. Confirm on your phone to complete the donation.",
		Data:    map[string]interface{}{"transactionId": donation.TransactionNo},
	}
}

// tigoCallback is the minimal field set the provider's integration docs
// agree on. The raw body is preserved in the callback log so the mapping can
// be corrected against live traffic if it turns out to differ.
type tigoCallback struct {
	ReferenceID string `json:"ReferenceID"`
	Status      bool   `json:"Status"`
	Description string `json:"Description"`
	TxnID       string `json:"TxnID"`
	Amount      string `json:"Amount"`
	MSISDN      string `json:"MSISDN"`
}

func (s *TigoPesaService) HandleCallback(raw []byte) GatewayResult {
	var payload tigoCallback
	var rawBody interface{}
	_ = json.Unmarshal(raw, &rawBody)
	if err := json.Unmarshal(raw, &payload); err != nil || payload.ReferenceID == "" {
		s.Helper.LogCallback("tigopesa", "", "unparseable callback body", false, rawBody)
		return GatewayResult{Success: true, Message: "Accepted"}
	}

	if !payload.Status {
		if donation, err := s.Donations.GetByReference(payload.ReferenceID); err == nil {
			if _, err := s.Donations.UpdateStatus(donation.ID, models.StatusFailed, ""); err != nil {
				log.Printf("tigopesa: failed to mark %s failed: %v", payload.ReferenceID, err)
			}
		}
		s.Helper.LogCallback("tigopesa", payload.ReferenceID, payload.Description, false, rawBody)
		return GatewayResult{Success: true, Message: "Accepted"}
	}

	donation, err := s.Donations.CompleteByReference(payload.ReferenceID, payload.TxnID)
	if err != nil {
		s.Helper.LogCallback("tigopesa", payload.ReferenceID, err.Error(), false, rawBody)
		return GatewayResult{Success: true, Message: "Accepted"}
	}

	s.Helper.LogCallback("tigopesa", donation.TransactionNo, "completed", true, rawBody)
	return GatewayResult{Success: true, Message: "Accepted"}
}
