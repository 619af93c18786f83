package services

import "github.com/Govind-619/MenuSphere/models"

// transitions maps a status to the statuses it may move to
type transitions map[string][]string

func (t transitions) allows(from, to string) bool {
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (t transitions) known(status string) bool {
	if _, ok := t[status]; ok {
		return true
	}
	for _, next := range t {
		for _, s := range next {
			if s == status {
				return true
			}
		}
	}
	return false
}

var affiliateTransitions = transitions{
	models.AffiliateStatusPending:   {models.AffiliateStatusActive, models.AffiliateStatusBanned},
	models.AffiliateStatusActive:    {models.AffiliateStatusSuspended, models.AffiliateStatusBanned},
	models.AffiliateStatusSuspended: {models.AffiliateStatusActive, models.AffiliateStatusBanned},
	models.AffiliateStatusBanned:    {},
}

var payoutTransitions = transitions{
	models.PayoutStatusPending: {
		models.PayoutStatusProcessing,
		models.PayoutStatusCompleted,
		models.PayoutStatusFailed,
		models.PayoutStatusCancelled,
	},
	models.PayoutStatusProcessing: {models.PayoutStatusCompleted, models.PayoutStatusFailed},
	models.PayoutStatusCompleted:  {},
	models.PayoutStatusFailed:     {},
	models.PayoutStatusCancelled:  {},
}

// CanTransitionAffiliate reports whether an affiliate may move from one status to another
func CanTransitionAffiliate(from, to string) bool {
	return affiliateTransitions.allows(from, to)
}

// CanTransitionPayout reports whether a payout may move from one status to another
func CanTransitionPayout(from, to string) bool {
	return payoutTransitions.allows(from, to)
}

// reversesPayout reports whether entering status undoes the settlement
func reversesPayout(status string) bool {
	return status == models.PayoutStatusFailed || status == models.PayoutStatusCancelled
}
