package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"church-service/internal/models"
	"church-service/pkg/common"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DonationService owns donation records and their payment status lifecycle.
// It is the only writer of payment_status, and the only creator of
// donation-derived ledger entries.
type DonationService struct {
	DB    *gorm.DB
	Tasks *asynq.Client // nil disables background notifications (tests)
}

func NewDonationService(db *gorm.DB, tasks *asynq.Client) *DonationService {
	return &DonationService{DB: db, Tasks: tasks}
}

type CreateDonationDTO struct {
	DonorName     string          `json:"donorName"`
	DonorEmail    string          `json:"donorEmail"`
	DonorPhone    string          `json:"donorPhone"`
	Anonymous     bool            `json:"anonymous"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	DonationType  string          `json:"donationType"`
	Category      string          `json:"category"`
	PaymentMethod string          `json:"paymentMethod"`
	BranchID      *uint           `json:"branchId"`
	Notes         string          `json:"notes"`
}

// Create validates the donor input and persists a pending donation with a
// fresh transaction number. Confirmation email delivery is queued best-effort
// and never surfaces to the caller.
func (s *DonationService) Create(input CreateDonationDTO) (*models.Donation, error) {
	if input.DonorName == "" && !input.Anonymous {
		return nil, fmt.Errorf("%w: donor name is required", ErrValidation)
	}
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	}
	if !models.ValidDonationType(input.DonationType) {
		return nil, fmt.Errorf("%w: unknown donation type %q", ErrValidation, input.DonationType)
	}
	if !models.ValidCategory(input.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, input.Category)
	}
	if !models.ValidPaymentMethod(input.PaymentMethod) {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, input.PaymentMethod)
	}

	currency := input.Currency
	if currency == "" {
		currency = "Tsh"
	}
	name := input.DonorName
	if input.Anonymous {
		name = "Anonymous"
	}

	donation := models.Donation{
		DonorName:     name,
		DonorEmail:    input.DonorEmail,
		DonorPhone:    input.DonorPhone,
		Anonymous:     input.Anonymous,
		Amount:        input.Amount,
		Currency:      currency,
		DonationType:  input.DonationType,
		Category:      input.Category,
		PaymentMethod: input.PaymentMethod,
		PaymentStatus: models.StatusPending,
		TransactionNo: common.GenerateTransactionNo(),
		BranchID:      input.BranchID,
		Notes:         input.Notes,
	}

	if err := s.DB.Create(&donation).Error; err != nil {
		return nil, err
	}

	s.enqueueNotification("confirmation", &donation)
	return &donation, nil
}

// allowedFrom lists the statuses a donation may hold immediately before
// moving to the target status. The map doubles as the conditional-update
// guard, so two racing writers can never both win the same transition.
var allowedFrom = map[string][]string{
	models.StatusProcessing: {models.StatusPending},
	models.StatusCompleted:  {models.StatusPending, models.StatusProcessing},
	models.StatusFailed:     {models.StatusPending, models.StatusProcessing},
	models.StatusRefunded:   {models.StatusCompleted},
}

// UpdateStatus moves a donation through its lifecycle. The transition runs as
// a single conditional UPDATE keyed on the current status; on a first-time
// completion the ledger entry and receipt fields are written in the same
// database transaction, so a duplicate callback can never double-book
// revenue.
func (s *DonationService) UpdateStatus(id uint, newStatus, gatewayReference string) (*models.Donation, error) {
	if !models.ValidPaymentStatus(newStatus) {
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrValidation, newStatus)
	}
	from, ok := allowedFrom[newStatus]
	if !ok {
		return nil, fmt.Errorf("%w: cannot transition into %q", ErrInvalidTransition, newStatus)
	}

	var donation models.Donation
	if err := s.DB.First(&donation, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: donation %d", ErrNotFound, id)
		}
		return nil, err
	}

	// fast pre-check for a clear error; the conditional UPDATE below remains
	// the authoritative guard under concurrency
	if !models.CanTransition(donation.PaymentStatus, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, donation.PaymentStatus, newStatus)
	}

	updates := map[string]interface{}{"payment_status": newStatus}
	if gatewayReference != "" {
		updates["payment_reference"] = gatewayReference
	}

	completing := newStatus == models.StatusCompleted
	if completing && !donation.ReceiptSent {
		updates["receipt_sent"] = true
		updates["receipt_no"] = common.GenerateReceiptNo()
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Donation{}).
			Where("id = ? AND payment_status IN ?", id, from).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, donation.PaymentStatus, newStatus)
		}
		if completing {
			entry := models.LedgerEntry{
				Type:        models.LedgerIncome,
				Category:    "Donation - " + donation.Category,
				Amount:      donation.Amount,
				Date:        time.Now(),
				Description: fmt.Sprintf("Donation from %s via %s", donation.DonorName, donation.PaymentMethod),
				Reference:   donation.TransactionNo,
				BranchID:    donation.BranchID,
			}
			return tx.Create(&entry).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.DB.First(&donation, id).Error; err != nil {
		return nil, err
	}
	if completing {
		s.enqueueNotification("receipt", &donation)
	}
	return &donation, nil
}

// CompleteByReference resolves a gateway callback to its donation through the
// stored payment reference and completes it. Used by webhook handlers, which
// only know the gateway's conversation identifier.
func (s *DonationService) CompleteByReference(paymentReference, gatewayReceipt string) (*models.Donation, error) {
	donation, err := s.GetByReference(paymentReference)
	if err != nil {
		return nil, err
	}
	return s.UpdateStatus(donation.ID, models.StatusCompleted, gatewayReceipt)
}

func (s *DonationService) GetByID(id uint) (*models.Donation, error) {
	var donation models.Donation
	if err := s.DB.First(&donation, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: donation %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &donation, nil
}

func (s *DonationService) GetByTransactionNo(trxNo string) (*models.Donation, error) {
	var donation models.Donation
	if err := s.DB.Where("transaction_no = ?", trxNo).First(&donation).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: transaction %s", ErrNotFound, trxNo)
		}
		return nil, err
	}
	return &donation, nil
}

func (s *DonationService) GetByReference(reference string) (*models.Donation, error) {
	var donation models.Donation
	err := s.DB.Where("payment_reference = ? OR transaction_no = ?", reference, reference).
		First(&donation).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: reference %s", ErrNotFound, reference)
		}
		return nil, err
	}
	return &donation, nil
}

type DonationFilter struct {
	Status   string
	Category string
	BranchID *uint
	Page     int
	Limit    int
}

func (s *DonationService) List(filter DonationFilter) (common.Page, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	query := s.DB.Model(&models.Donation{})
	if filter.Status != "" {
		query = query.Where("payment_status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return common.Page{}, err
	}

	var donations []models.Donation
	err := query.Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&donations).Error
	if err != nil {
		return common.Page{}, err
	}

	return common.Paginate(donations, total, filter.Page, filter.Limit, ""), nil
}

type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int64           `json:"count"`
}

// Stats sums completed donations per category.
func (s *DonationService) Stats() ([]CategoryTotal, error) {
	var totals []CategoryTotal
	err := s.DB.Model(&models.Donation{}).
		Select("category, SUM(amount) as total, COUNT(*) as count").
		Where("payment_status = ?", models.StatusCompleted).
		Group("category").
		Scan(&totals).Error
	return totals, err
}

// Delete hard-deletes a donation. Admin only; no audit trail is kept, which
// matches how the finance team has always run this.
func (s *DonationService) Delete(id uint) error {
	res := s.DB.Delete(&models.Donation{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: donation %d", ErrNotFound, id)
	}
	return nil
}

const (
	TypeReceiptEmail = "notification:receipt-email"
)

type ReceiptEmailPayload struct {
	DonationID    uint   `json:"donationId"`
	Kind          string `json:"kind"` // confirmation | receipt
	DonorName     string `json:"donorName"`
	DonorEmail    string `json:"donorEmail"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	TransactionNo string `json:"transactionNo"`
	ReceiptNo     string `json:"receiptNo"`
}

func (s *DonationService) enqueueNotification(kind string, donation *models.Donation) {
	if s.Tasks == nil {
		return
	}
	payload := ReceiptEmailPayload{
		DonationID:    donation.ID,
		Kind:          kind,
		DonorName:     donation.DonorName,
		DonorEmail:    donation.DonorEmail,
		Amount:        donation.Amount.StringFixed(2),
		Currency:      donation.Currency,
		TransactionNo: donation.TransactionNo,
		ReceiptNo:     donation.ReceiptNo,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to marshal %s notification for donation %d: %v", kind, donation.ID, err)
		return
	}
	task := asynq.NewTask(TypeReceiptEmail, data)
	if _, err := s.Tasks.Enqueue(task, asynq.TaskID(fmt.Sprintf("%s:%d", kind, donation.ID))); err != nil {
		log.Printf("failed to enqueue %s notification for donation %d: %v", kind, donation.ID, err)
	}
}
