// Package models defines data structures and domain types.
package models

// ChannelStatistic is one row of per-day, per-category consumption. The
// gateway serializes it with Go field names.
type ChannelStatistic struct {
	Date             string
	Channel          string
	Quota            Int
	PromptTokens     Int
	CompletionTokens Int
	RequestCount     Int
	// RequestTime is the cumulative request latency in milliseconds.
	RequestTime Int
}

// UserStatistic is the number of users registered on a day.
type UserStatistic struct {
	Date             string `json:"date"`
	UserCount        Int    `json:"user_count"`
	InviterUserCount Int    `json:"inviter_user_count"`
}

// RedemptionStatistic is the amount redeemed on a day and by how many users.
type RedemptionStatistic struct {
	Date      string `json:"date"`
	Quota     Int    `json:"quota"`
	UserCount Int    `json:"user_count"`
}

// OrderStatistic is the recharge amount collected on a day.
type OrderStatistic struct {
	Date        string `json:"date"`
	OrderAmount Float  `json:"order_amount"`
}

// PeriodStatistics is the payload of the period analytics endpoint.
type PeriodStatistics struct {
	ChannelStatistics    []ChannelStatistic    `json:"channel_statistics"`
	UserStatistics       []UserStatistic       `json:"user_statistics"`
	RedemptionStatistics []RedemptionStatistic `json:"redemption_statistics"`
	OrderStatistics      []OrderStatistic      `json:"order_statistics"`
}

// SummaryStatistic is one row of the rolling summary endpoint.
type SummaryStatistic struct {
	Date             string
	RequestCount     Int
	Quota            Int
	PromptTokens     Int
	CompletionTokens Int
}

// TopUserQuota is one user's consumption on a day.
type TopUserQuota struct {
	Date     string `json:"date"`
	Username string `json:"username"`
	Quota    Int    `json:"quota"`
}

// RateSnapshot is the live request and token rate for a user, or for the
// whole gateway when no user is selected.
type RateSnapshot struct {
	RPM          Int   `json:"rpm"`
	MaxRPM       Int   `json:"maxRPM"`
	UsageRPMRate Float `json:"usageRpmRate"`
	TPM          Int   `json:"tpm"`
	MaxTPM       Int   `json:"maxTPM"`
	UsageTPMRate Float `json:"usageTpmRate"`
}
