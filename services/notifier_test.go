package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Govind-619/MenuSphere/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentEmail struct {
	to, subject, body string
}

type recordingSender struct {
	sent []sentEmail
	err  error
}

func (r *recordingSender) SendEmail(to, subject, body string) error {
	r.sent = append(r.sent, sentEmail{to: to, subject: subject, body: body})
	return r.err
}

func TestEmailNotifierEscapesUserInput(t *testing.T) {
	sender := &recordingSender{}
	notifier := NewEmailNotifier(sender, "https://menusphere.test")
	user := models.User{Email: "owner@menusphere.test", FullName: `<script>alert("x")</script> & Co`}

	notifier.AffiliateStatusChanged(context.Background(), user, models.AffiliatePartner{ReferralCode: "AB12CD34", Status: models.AffiliateStatusActive})
	notifier.PayoutStatusChanged(context.Background(), user, models.AffiliatePayout{
		ID:     7,
		Amount: money("49.90"),
		Method: models.PayoutMethodBankTransfer,
		Status: models.PayoutStatusCompleted,
	})

	require.Len(t, sender.sent, 2)
	for _, email := range sender.sent {
		assert.Equal(t, "owner@menusphere.test", email.to)
		assert.NotContains(t, email.body, "<script>")
		assert.Contains(t, email.body, "&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt; &amp; Co")
	}
	assert.Contains(t, sender.sent[0].body, `href="https://menusphere.test/affiliate"`)
	assert.Contains(t, sender.sent[1].body, "<b>49.90</b>")
	assert.Equal(t, "Payout #7 is COMPLETED", sender.sent[1].subject)
}

func TestEmailNotifierSwallowsSendErrors(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	notifier := NewEmailNotifier(sender, "https://menusphere.test")

	assert.NotPanics(t, func() {
		notifier.AffiliateStatusChanged(context.Background(), models.User{Email: "a@menusphere.test"}, models.AffiliatePartner{Status: models.AffiliateStatusSuspended})
	})
	assert.Len(t, sender.sent, 1)
}
