package services

import (
	"errors"
	"regexp"
	"sync"
	"testing"

	"church-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDonationInput() CreateDonationDTO {
	return CreateDonationDTO{
		DonorName:     "Neema Mushi",
		DonorEmail:    "neema@example.com",
		DonorPhone:    "+255769080629",
		Amount:        decimal.NewFromInt(10000),
		DonationType:  models.DonationOneTime,
		Category:      models.CategoryTithe,
		PaymentMethod: models.MethodMpesa,
	}
}

func TestCreateDonation(t *testing.T) {
	svc := NewDonationService(newTestDB(t), nil)

	donation, err := svc.Create(validDonationInput())
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, donation.PaymentStatus)
	assert.Equal(t, "Tsh", donation.Currency)
	assert.False(t, donation.ReceiptSent)
	assert.Regexp(t, regexp.MustCompile(`^DON-\d+-[0-9A-F]{8}$`), donation.TransactionNo)
}

func TestCreateDonationValidation(t *testing.T) {
	svc := NewDonationService(newTestDB(t), nil)

	cases := []struct {
		name   string
		mutate func(*CreateDonationDTO)
	}{
		{"zero amount", func(d *CreateDonationDTO) { d.Amount = decimal.Zero }},
		{"negative amount", func(d *CreateDonationDTO) { d.Amount = decimal.NewFromInt(-5) }},
		{"bad donation type", func(d *CreateDonationDTO) { d.DonationType = "weekly" }},
		{"bad category", func(d *CreateDonationDTO) { d.Category = "lottery" }},
		{"bad method", func(d *CreateDonationDTO) { d.PaymentMethod = "paypal" }},
		{"no donor name", func(d *CreateDonationDTO) { d.DonorName = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validDonationInput()
			tc.mutate(&input)
			_, err := svc.Create(input)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAnonymousDonationMasksName(t *testing.T) {
	svc := NewDonationService(newTestDB(t), nil)

	input := validDonationInput()
	input.Anonymous = true
	input.DonorName = ""

	donation, err := svc.Create(input)
	require.NoError(t, err)
	assert.Equal(t, "Anonymous", donation.DonorName)
}

func TestDonationLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewDonationService(db, nil)

	donation, err := svc.Create(validDonationInput())
	require.NoError(t, err)

	donation, err = svc.UpdateStatus(donation.ID, models.StatusProcessing, "ws_CO_0001")
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, donation.PaymentStatus)
	assert.Equal(t, "ws_CO_0001", donation.PaymentReference)

	donation, err = svc.UpdateStatus(donation.ID, models.StatusCompleted, "QHX12345")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, donation.PaymentStatus)
	assert.True(t, donation.ReceiptSent)
	assert.Regexp(t, regexp.MustCompile(`^RCP-\d+-[0-9A-F]{8}$`), donation.ReceiptNo)

	var entries []models.LedgerEntry
	require.NoError(t, db.Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, models.LedgerIncome, entries[0].Type)
	assert.Equal(t, "Donation - tithe", entries[0].Category)
	assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, donation.TransactionNo, entries[0].Reference)
}

func TestCompletedIsTerminal(t *testing.T) {
	db := newTestDB(t)
	svc := NewDonationService(db, nil)

	donation, err := svc.Create(validDonationInput())
	require.NoError(t, err)
	_, err = svc.UpdateStatus(donation.ID, models.StatusCompleted, "")
	require.NoError(t, err)

	// second completion must neither succeed nor double-book the ledger
	_, err = svc.UpdateStatus(donation.ID, models.StatusCompleted, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.UpdateStatus(donation.ID, models.StatusProcessing, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.UpdateStatus(donation.ID, models.StatusFailed, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	var count int64
	db.Model(&models.LedgerEntry{}).Count(&count)
	assert.Equal(t, int64(1), count)

	// refund is the one exit from completed
	donation, err = svc.UpdateStatus(donation.ID, models.StatusRefunded, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRefunded, donation.PaymentStatus)
}

func TestFailedIsTerminal(t *testing.T) {
	svc := NewDonationService(newTestDB(t), nil)

	donation, err := svc.Create(validDonationInput())
	require.NoError(t, err)
	_, err = svc.UpdateStatus(donation.ID, models.StatusFailed, "")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(donation.ID, models.StatusCompleted, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.UpdateStatus(donation.ID, models.StatusRefunded, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestConcurrentCompletionCreatesOneLedgerEntry(t *testing.T) {
	db := newTestDB(t)
	svc := NewDonationService(db, nil)

	donation, err := svc.Create(validDonationInput())
	require.NoError(t, err)

	const racers = 8
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.UpdateStatus(donation.ID, models.StatusCompleted, "QHX99")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, ErrInvalidTransition) {
			// sqlite serializes writers; a busy error would also be acceptable
			// in production MySQL this path is a clean conditional update
			t.Logf("racer error: %v", err)
		}
	}
	assert.LessOrEqual(t, succeeded, 1)

	var count int64
	db.Model(&models.LedgerEntry{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpdateStatusNotFound(t *testing.T) {
	svc := NewDonationService(newTestDB(t), nil)
	_, err := svc.UpdateStatus(9999, models.StatusProcessing, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteDonation(t *testing.T) {
	svc := NewDonationService(newTestDB(t), nil)

	donation, err := svc.Create(validDonationInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(donation.ID))
	_, err = svc.GetByID(donation.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(donation.ID), ErrNotFound)
}

func TestListDonationsFiltered(t *testing.T) {
	svc := NewDonationService(newTestDB(t), nil)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(validDonationInput())
		require.NoError(t, err)
	}
	offering := validDonationInput()
	offering.Category = models.CategoryOffering
	_, err := svc.Create(offering)
	require.NoError(t, err)

	page, err := svc.List(DonationFilter{Category: models.CategoryTithe, Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Count)
	assert.Equal(t, 2, page.LastPage)
	assert.Len(t, page.Data.([]models.Donation), 2)
}
