package services

import (
	"context"
	"fmt"
	"html"

	"github.com/Govind-619/MenuSphere/models"
	"github.com/Govind-619/MenuSphere/utils"
)

// Notifier tells affiliates about changes to their account. Implementations
// must not fail the caller.
type Notifier interface {
	AffiliateStatusChanged(ctx context.Context, user models.User, partner models.AffiliatePartner)
	PayoutStatusChanged(ctx context.Context, user models.User, payout models.AffiliatePayout)
}

// EmailSender is satisfied by utils.Mailer
type EmailSender interface {
	SendEmail(to, subject, body string) error
}

// EmailNotifier sends notifications as e-mail
type EmailNotifier struct {
	sender      EmailSender
	frontendURL string
}

// NewEmailNotifier creates an EmailNotifier
func NewEmailNotifier(sender EmailSender, frontendURL string) *EmailNotifier {
	return &EmailNotifier{sender: sender, frontendURL: frontendURL}
}

func (n *EmailNotifier) AffiliateStatusChanged(_ context.Context, user models.User, partner models.AffiliatePartner) {
	subject := fmt.Sprintf("Your %s affiliate account is now %s", utils.AppName, partner.Status)
	body := fmt.Sprintf(`
		<h2>Affiliate account update</h2>
		<p>Hello %s,</p>
		<p>The status of your affiliate account (code <b>%s</b>) changed to <b>%s</b>.</p>
		<p><a href="%s/affiliate">Open your affiliate dashboard</a></p>
	`, html.EscapeString(user.FullName), partner.ReferralCode, partner.Status, html.EscapeString(n.frontendURL))

	if err := n.sender.SendEmail(user.Email, subject, body); err != nil {
		utils.LogError("Failed to notify affiliate %d about status %s: %v", partner.ID, partner.Status, err)
	}
}

func (n *EmailNotifier) PayoutStatusChanged(_ context.Context, user models.User, payout models.AffiliatePayout) {
	subject := fmt.Sprintf("Payout #%d is %s", payout.ID, payout.Status)
	body := fmt.Sprintf(`
		<h2>Payout update</h2>
		<p>Hello %s,</p>
		<p>Your payout of <b>%s</b> via %s is now <b>%s</b>.</p>
	`, html.EscapeString(user.FullName), payout.Amount.StringFixed(2), payout.Method, payout.Status)

	if err := n.sender.SendEmail(user.Email, subject, body); err != nil {
		utils.LogError("Failed to notify affiliate %d about payout %d: %v", payout.AffiliateID, payout.ID, err)
	}
}
