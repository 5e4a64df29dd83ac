package consumers

import (
	"log"

	"church-service/internal/services"

	"gorm.io/gorm"
)

// NotificationProcessor executes the background tasks queued by the API:
// receipt/confirmation emails and image mirror syncs.
type NotificationProcessor struct {
	DB     *gorm.DB
	Images *services.ImageService
}

func NewNotificationProcessor(db *gorm.DB, images *services.ImageService) *NotificationProcessor {
	return &NotificationProcessor{DB: db, Images: images}
}

// ProcessReceiptEmail is the mail sender stub. Until an SMTP provider is
// wired up it logs the intent; receipt bookkeeping on the donation row is
// owned by the completed transition, not by delivery.
func (p *NotificationProcessor) ProcessReceiptEmail(payload services.ReceiptEmailPayload) error {
	if payload.DonorEmail == "" {
		log.Printf("skipping %s email for donation %d: donor left no email address",
			payload.Kind, payload.DonationID)
		return nil
	}
	switch payload.Kind {
	case "receipt":
		log.Printf("would email receipt %s to %s: %s %s for donation %s",
			payload.ReceiptNo, payload.DonorEmail, payload.Currency, payload.Amount, payload.TransactionNo)
	default:
		log.Printf("would email donation confirmation to %s for %s",
			payload.DonorEmail, payload.TransactionNo)
	}
	return nil
}

// ProcessMirrorSync copies a stored blob to the secondary mirror directories.
func (p *NotificationProcessor) ProcessMirrorSync(payload services.MirrorSyncPayload) error {
	if err := p.Images.SyncMirrors(payload.Filename); err != nil {
		log.Printf("mirror sync task for %s: %v", payload.Filename, err)
		return err
	}
	return nil
}
