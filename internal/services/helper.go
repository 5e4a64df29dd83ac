package services

import (
	"encoding/json"
	"errors"
	"log"

	"church-service/internal/config"
	"church-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HelperService carries the shared lookups every gateway service needs:
// settings resolution and webhook audit logging.
type HelperService struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewHelperService(db *gorm.DB, cfg *config.Config) *HelperService {
	return &HelperService{DB: db, Cfg: cfg}
}

// GatewaySettings resolves the active PaymentConfig row for a provider. When
// no row is configured it falls back to the environment credentials; config
// validation already guarantees those are real outside of sandbox use.
func (s *HelperService) GatewaySettings(provider string) (*models.PaymentConfig, error) {
	var pm models.PaymentConfig
	err := s.DB.Where("provider = ? AND is_active = ?", provider, true).First(&pm).Error
	if err == nil {
		return &pm, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var fallback config.GatewayConfig
	switch provider {
	case models.MethodMpesa:
		fallback = s.Cfg.Mpesa
	case models.MethodTigoPesa:
		fallback = s.Cfg.TigoPesa
	case models.MethodAirtelMoney:
		fallback = s.Cfg.Airtel
	default:
		return nil, ErrNotFound
	}
	if fallback.BaseURL == "" {
		return nil, ErrNotFound
	}

	return &models.PaymentConfig{
		Name:      provider + "-env",
		Provider:  provider,
		BaseURL:   fallback.BaseURL,
		APIKey:    fallback.APIKey,
		APISecret: fallback.APISecret,
		ShortCode: fallback.ShortCode,
	}, nil
}

// LogCallback writes a CallbackLog row. Auditing must never break webhook
// processing, so failures are logged and dropped.
func (s *HelperService) LogCallback(gateway, transactionNo, outcome string, success bool, rawBody interface{}) {
	raw, err := json.Marshal(rawBody)
	if err != nil {
		raw = []byte("{}")
	}
	entry := models.CallbackLog{
		EventID:       uuid.NewString(),
		Gateway:       gateway,
		TransactionNo: transactionNo,
		Outcome:       outcome,
		Success:       success,
		RawBody:       raw,
	}
	if err := s.DB.Create(&entry).Error; err != nil {
		log.Printf("failed to write callback log for %s/%s: %v", gateway, transactionNo, err)
	}
}
