package services

import (
	"context"
	"encoding/json"
	"log"

	"church-service/internal/models"
	"church-service/pkg/common"

	"gorm.io/gorm"
)

// AirtelService drives Airtel Money collections: client-credentials token,
// then a USSD push against the subscriber's wallet.
type AirtelService struct {
	DB        *gorm.DB
	Helper    *HelperService
	Donations *DonationService
	Client    *common.Client
}

func NewAirtelService(db *gorm.DB, helper *HelperService, donations *DonationService, client *common.Client) *AirtelService {
	return &AirtelService{DB: db, Helper: helper, Donations: donations, Client: client}
}

func (s *AirtelService) accessToken(ctx context.Context, settings *models.PaymentConfig) (string, error) {
	payload := map[string]string{
		"client_id":     settings.APIKey,
		"client_secret": settings.APISecret,
		"grant_type":    "client_credentials",
	}
	resp, err := s.Client.PostJSON(ctx, settings.BaseURL+"/auth/oauth2/token", payload, nil)
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

func (s *AirtelService) InitiatePayment(ctx context.Context, donation *models.Donation, phone string) GatewayResult {
	settings, err := s.Helper.GatewaySettings(models.MethodAirtelMoney)
	if err != nil {
		return GatewayResult{Success: false, Message: "Airtel Money has not been configured"}
	}

	token, err := s.accessToken(ctx, settings)
	if err != nil {
		log.Printf("airtel token error: %v", err)
		return GatewayResult{Success: false, Message: "Failed to authenticate with Airtel Money"}
	}

	payload := map[string]interface{}{
		"reference": "Donation - " + donation.Category,
		"subscriber": map[string]interface{}{
			"country":  "TZ",
			"currency": "TZS",
			"msisdn":   common.NormalizePhone(phone),
		},
		"transaction": map[string]interface{}{
			"amount":   donation.Amount.IntPart(),
			"country":  "TZ",
			"currency": "TZS",
			"id":       donation.TransactionNo,
		},
	}
	headers := map[string]string{
		"Authorization": "Bearer " + token,
		"X-Country":     "TZ",
		"X-Currency":    "TZS",
	}

	resp, err := s.Client.PostJSON(ctx, settings.BaseURL+"/merchant/v1/payments/", payload, headers)
	if err != nil {
		log.Printf("airtel collection error: %v", err)
		return GatewayResult{Success: false, Message: "Payment request failed"}
	}

	body, _ := resp.(map[string]interface{})
	if status, ok := body["status"].(map[string]interface{}); ok {
		if success, _ := status["success"].(bool); !success {
			msg, _ := status["message"].(string)
			if msg == "" {
				msg = "Payment request was rejected by Airtel Money"
			}
			return GatewayResult{Success: false, Message: msg, Data: body}
		}
	}

	// Airtel echoes the transaction id we supplied in its status callback.
	if _, err := s.Donations.UpdateStatus(donation.ID, models.StatusProcessing, donation.TransactionNo); err != nil {
		log.Printf("airtel: failed to mark donation %d processing: %v", donation.ID, err)
	}

	return GatewayResult{
		Success: true,
		Message: "Payment request sent. Confirm on your phone to complete the donation.",
		Data:    map[string]interface{}{"transactionId": donation.TransactionNo},
	}
}

// airtelCallback mirrors the provider's documented transaction envelope.
// status_code TS means settled, TF failed; anything else is logged and left
// alone.
type airtelCallback struct {
	Transaction struct {
		ID            string `json:"id"`
		StatusCode    string `json:"status_code"`
		Message       string `json:"message"`
		AirtelMoneyID string `json:"airtel_money_id"`
	} `json:"transaction"`
}

func (s *AirtelService) HandleCallback(raw []byte) GatewayResult {
	var payload airtelCallback
	var rawBody interface{}
	_ = json.Unmarshal(raw, &rawBody)
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Transaction.ID == "" {
		s.Helper.LogCallback("airtelmoney", "", "unparseable callback body", false, rawBody)
		return GatewayResult{Success: true, Message: "Accepted"}
	}

	txn := payload.Transaction
	switch txn.StatusCode {
	case "TS":
		donation, err := s.Donations.CompleteByReference(txn.ID, txn.AirtelMoneyID)
		if err != nil {
			s.Helper.LogCallback("airtelmoney", txn.ID, err.Error(), false, rawBody)
			return GatewayResult{Success: true, Message: "Accepted"}
		}
		s.Helper.LogCallback("airtelmoney", donation.TransactionNo, "completed", true, rawBody)
	case "TF":
		if donation, err := s.Donations.GetByReference(txn.ID); err == nil {
			if _, err := s.Donations.UpdateStatus(donation.ID, models.StatusFailed, ""); err != nil {
				log.Printf("airtel: failed to mark %s failed: %v", txn.ID, err)
			}
		}
		s.Helper.LogCallback("airtelmoney", txn.ID, txn.Message, false, rawBody)
	default:
		s.Helper.LogCallback("airtelmoney", txn.ID, "unhandled status "+txn.StatusCode, false, rawBody)
	}
	return GatewayResult{Success: true, Message: "Accepted"}
}
