package redemption

import "time"

// CheckRedemptionRequest 利用可否判定リクエスト
type CheckRedemptionRequest struct {
	Code string
}

// CheckRedemptionResponse 利用可否判定レスポンス
type CheckRedemptionResponse struct {
	Code           string
	OK             bool
	Status         string
	Message        string
	ValidFrom      *time.Time
	ValidTo        *time.Time
	RedeemedCount  int
	MaxRedemptions int
}

// MarkRedemptionRequest 利用確定リクエスト
type MarkRedemptionRequest struct {
	Code string
}

// MarkRedemptionResponse 利用確定レスポンス
type MarkRedemptionResponse struct {
	Code           string
	RedeemedCount  int
	MaxRedemptions int
}
