package domain

// Form-side payment and deposit modes.
const (
	PaymentSplit = "split"
	PaymentFull  = "full"

	DepositPercentage = "percentage"
	DepositFlat       = "flat"
)

// PolicyFormState is the Policies tab's working copy of the policy, deposit
// and validation-setting slices of the backend record. Numeric fields are
// strings because they mirror free-text inputs and the dirty comparison is a
// straight deep-equality over what the user typed; empty string means unset.
type PolicyFormState struct {
	StartTime      string `json:"startTime"` // HH:MM:SS, check-in
	EndTime        string `json:"endTime"`   // HH:MM:SS, check-out
	PressToggleFee bool   `json:"pressToggleFee"`
	PressToggleTax bool   `json:"pressToggleTax"`
	MinimumAge     string `json:"minimumAge"`
	BalanceDays    string `json:"balanceDays"`
	Percentage     string `json:"percentage"`
	FlatFee        string `json:"flatFee"`
	PaymentType    string `json:"paymentType"` // split|full
	DepositType    string `json:"depositType"` // percentage|flat
	LeadTime       string `json:"leadTime"`    // hours
}
