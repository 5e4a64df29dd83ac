package services

import (
	"context"
	"fmt"

	"church-service/internal/models"

	"gorm.io/gorm"
)

// PaymentService fans a donation's payment intent out to the right gateway
// and keeps the donation flow gateway-agnostic.
type PaymentService struct {
	DB        *gorm.DB
	Donations *DonationService
	Mpesa     *MpesaService
	TigoPesa  *TigoPesaService
	Airtel    *AirtelService
}

func NewPaymentService(
	db *gorm.DB,
	donations *DonationService,
	mpesa *MpesaService,
	tigoPesa *TigoPesaService,
	airtel *AirtelService,
) *PaymentService {
	return &PaymentService{
		DB:        db,
		Donations: donations,
		Mpesa:     mpesa,
		TigoPesa:  tigoPesa,
		Airtel:    airtel,
	}
}

// InitiatePayment kicks off a mobile money charge for a pending donation.
// Gateways never bubble errors: every failure comes back as a result with
// Success=false.
func (s *PaymentService) InitiatePayment(ctx context.Context, method string, donationID uint, phone string) (GatewayResult, error) {
	donation, err := s.Donations.GetByID(donationID)
	if err != nil {
		return GatewayResult{}, err
	}
	if donation.PaymentStatus != models.StatusPending {
		return GatewayResult{}, fmt.Errorf("%w: donation is %s, only pending donations can be charged",
			ErrValidation, donation.PaymentStatus)
	}
	if phone == "" {
		phone = donation.DonorPhone
	}
	if phone == "" {
		return GatewayResult{}, fmt.Errorf("%w: a phone number is required for mobile money", ErrValidation)
	}

	switch method {
	case models.MethodMpesa:
		return s.Mpesa.InitiatePayment(ctx, donation, phone), nil
	case models.MethodTigoPesa:
		return s.TigoPesa.InitiatePayment(ctx, donation, phone), nil
	case models.MethodAirtelMoney, "airtel":
		return s.Airtel.InitiatePayment(ctx, donation, phone), nil
	default:
		return GatewayResult{}, fmt.Errorf("%w: unsupported payment method %q", ErrValidation, method)
	}
}

// HandleCallback routes a gateway webhook body to its adapter. Unknown
// methods are still acknowledged; the payload lands in the callback log.
func (s *PaymentService) HandleCallback(method string, raw []byte) GatewayResult {
	switch method {
	case models.MethodMpesa:
		return s.Mpesa.HandleCallback(raw)
	case models.MethodTigoPesa:
		return s.TigoPesa.HandleCallback(raw)
	case models.MethodAirtelMoney, "airtel":
		return s.Airtel.HandleCallback(raw)
	default:
		s.Mpesa.Helper.LogCallback(method, "", "callback for unknown method", false, string(raw))
		return GatewayResult{Success: true, Message: "Accepted"}
	}
}

// VerifyPayment reports the current lifecycle state for a transaction or
// gateway reference. The reference must belong to a donation paid through the
// requested method.
func (s *PaymentService) VerifyPayment(method, reference string) (map[string]interface{}, error) {
	donation, err := s.Donations.GetByReference(reference)
	if err != nil {
		return nil, err
	}
	if method == "airtel" {
		method = models.MethodAirtelMoney
	}
	if donation.PaymentMethod != method {
		return nil, fmt.Errorf("%w: no %s payment with reference %s", ErrNotFound, method, reference)
	}
	return map[string]interface{}{
		"transactionId": donation.TransactionNo,
		"method":        donation.PaymentMethod,
		"status":        donation.PaymentStatus,
		"amount":        donation.Amount,
		"currency":      donation.Currency,
		"receiptSent":   donation.ReceiptSent,
	}, nil
}

// GetBankAccountDetails returns the display data for bank and card payment
// options, credentials stripped.
func (s *PaymentService) GetBankAccountDetails() ([]map[string]interface{}, error) {
	var configs []models.PaymentConfig
	err := s.DB.Where("provider IN ? AND is_active = ?", []string{models.MethodBank, models.MethodCard}, true).
		Find(&configs).Error
	if err != nil {
		return nil, err
	}
	details := make([]map[string]interface{}, 0, len(configs))
	for _, c := range configs {
		details = append(details, c.Public())
	}
	return details, nil
}
