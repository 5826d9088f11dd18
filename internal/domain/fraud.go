package domain

// RiskLevel classifies a fraud score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Risk level thresholds. A score below RiskThresholdMedium is low risk.
const (
	RiskThresholdMedium   = 50
	RiskThresholdHigh     = 70
	RiskThresholdCritical = 90
)

// RiskLevelFromScore derives the risk level from an additive score.
func RiskLevelFromScore(score int) RiskLevel {
	switch {
	case score >= RiskThresholdCritical:
		return RiskCritical
	case score >= RiskThresholdHigh:
		return RiskHigh
	case score >= RiskThresholdMedium:
		return RiskMedium
	default:
		return RiskLow
	}
}

// FraudAssessment is the transient result of scoring one prospective
// transaction. It is not persisted as an entity.
type FraudAssessment struct {
	Score           int
	Level           RiskLevel
	Reasons         []string
	Recommendations []string
}

// IsFraudulent reports whether the assessment blocks instant approval.
func (a *FraudAssessment) IsFraudulent() bool {
	return a.Level == RiskHigh || a.Level == RiskCritical
}

// PaymentMethod identifies how funds enter or leave the platform.
type PaymentMethod string

const (
	MethodStablecoin   PaymentMethod = "stablecoin"
	MethodCrypto       PaymentMethod = "crypto"
	MethodCard         PaymentMethod = "card"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodWire         PaymentMethod = "wire"
)
