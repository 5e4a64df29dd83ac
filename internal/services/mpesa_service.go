package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"church-service/internal/models"
	"church-service/pkg/common"

	"gorm.io/gorm"
)

// MpesaService drives the M-Pesa STK push flow: OAuth token, push request,
// async result callback.
type MpesaService struct {
	DB        *gorm.DB
	Helper    *HelperService
	Donations *DonationService
	Client    *common.Client
}

func NewMpesaService(db *gorm.DB, helper *HelperService, donations *DonationService, client *common.Client) *MpesaService {
	return &MpesaService{DB: db, Helper: helper, Donations: donations, Client: client}
}

type GatewayResult struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (s *MpesaService) accessToken(ctx context.Context, settings *models.PaymentConfig) (string, error) {
	auth := base64.StdEncoding.EncodeToString([]byte(settings.APIKey + ":" + settings.APISecret))
	resp, err := s.Client.Get(ctx,
		fmt.Sprintf("%s/oauth/v1/generate?grant_type=client_credentials", settings.BaseURL),
		map[string]string{"Authorization": "Basic " + auth},
	)
	if err != nil {
		return "", err
	}
	body, ok := resp.(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("unexpected token response: %v", resp)
	}
	token, _ := body["access_token"].(string)
	if token == "" {
		return "", fmt.Errorf("token response missing access_token")
	}
	return token, nil
}

// InitiatePayment pushes an STK charge to the donor's phone. On acceptance
// the donation moves to processing and the gateway's CheckoutRequestID is
// stored as the payment reference so the callback can find its way back.
func (s *MpesaService) InitiatePayment(ctx context.Context, donation *models.Donation, phone string) GatewayResult {
	settings, err := s.Helper.GatewaySettings(models.MethodMpesa)
	if err != nil {
		return GatewayResult{Success: false, Message: "M-Pesa has not been configured"}
	}

	token, err := s.accessToken(ctx, settings)
	if err != nil {
		log.Printf("mpesa token error: %v", err)
		return GatewayResult{Success: false, Message: "Failed to authenticate with M-Pesa"}
	}

	timestamp := time.Now().Format("20060102150405")
	password := base64.StdEncoding.EncodeToString(
		[]byte(settings.ShortCode + settings.APISecret + timestamp))
	msisdn := common.InternationalPhone(phone)

	payload := map[string]interface{}{
		"BusinessShortCode": settings.ShortCode,
		"Password":          password,
		"Timestamp":         timestamp,
		"TransactionType":   "CustomerPayBillOnline",
		"Amount":            donation.Amount.IntPart(),
		"PartyA":            msisdn,
		"PartyB":            settings.ShortCode,
		"PhoneNumber":       msisdn,
		"CallBackURL":       s.Helper.Cfg.Server.PublicURL + "/payments/mpesa/callback",
		"AccountReference":  donation.TransactionNo,
		"TransactionDesc":   "Donation - " + donation.Category,
	}

	resp, err := s.Client.PostJSON(ctx,
		settings.BaseURL+"/mpesa/stkpush/v1/processrequest",
		payload,
		map[string]string{"Authorization": "Bearer " + token},
	)
	if err != nil {
		log.Printf("mpesa stk push error: %v", err)
		return GatewayResult{Success: false, Message: "Payment request failed"}
	}

	body, _ := resp.(map[string]interface{})
	checkoutID, _ := body["CheckoutRequestID"].(string)
	responseCode, _ := body["ResponseCode"].(string)
	if checkoutID == "" || (responseCode != "" && responseCode != "0") {
		desc, _ := body["ResponseDescription"].(string)
		if desc == "" {
			desc = "Payment request was rejected by M-Pesa"
		}
		return GatewayResult{Success: false, Message: desc, Data: body}
	}

	if _, err := s.Donations.UpdateStatus(donation.ID, models.StatusProcessing, checkoutID); err != nil {
		log.Printf("mpesa: failed to mark donation %d processing: %v", donation.ID, err)
	}

	return GatewayResult{
		Success: true,
		Message: "Payment request sent. Confirm on your phone to complete the donation.",
		Data: map[string]interface{}{
			"checkoutRequestId": checkoutID,
			"transactionId":     donation.TransactionNo,
		},
	}
}

type mpesaCallback struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  struct {
				Item []struct {
					Name  string      `json:"Name"`
					Value interface{} `json:"Value"`
				} `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

// HandleCallback consumes the STK result webhook. It always returns an
// acknowledgment; internal failures are logged against the CallbackLog so
// M-Pesa never retry-storms the endpoint.
func (s *MpesaService) HandleCallback(raw []byte) GatewayResult {
	var payload mpesaCallback
	var rawBody interface{}
	_ = json.Unmarshal(raw, &rawBody)
	if err := json.Unmarshal(raw, &payload); err != nil {
		s.Helper.LogCallback("mpesa", "", "unparseable callback body", false, rawBody)
		return GatewayResult{Success: true, Message: "Accepted"}
	}
	cb := payload.Body.StkCallback
	if cb.CheckoutRequestID == "" {
		s.Helper.LogCallback("mpesa", "", "malformed callback payload", false, rawBody)
		return GatewayResult{Success: true, Message: "Accepted"}
	}

	if cb.ResultCode != 0 {
		if donation, err := s.Donations.GetByReference(cb.CheckoutRequestID); err == nil {
			if _, err := s.Donations.UpdateStatus(donation.ID, models.StatusFailed, ""); err != nil {
				log.Printf("mpesa: failed to mark %s failed: %v", cb.CheckoutRequestID, err)
			}
		}
		s.Helper.LogCallback("mpesa", cb.CheckoutRequestID, cb.ResultDesc, false, rawBody)
		return GatewayResult{Success: true, Message: "Accepted"}
	}

	var receipt string
	for _, item := range cb.CallbackMetadata.Item {
		if item.Name == "MpesaReceiptNumber" {
			receipt, _ = item.Value.(string)
		}
	}

	donation, err := s.Donations.CompleteByReference(cb.CheckoutRequestID, receipt)
	if err != nil {
		s.Helper.LogCallback("mpesa", cb.CheckoutRequestID, err.Error(), false, rawBody)
		return GatewayResult{Success: true, Message: "Accepted"}
	}

	s.Helper.LogCallback("mpesa", donation.TransactionNo, "completed", true, rawBody)
	return GatewayResult{Success: true, Message: "Accepted"}
}
