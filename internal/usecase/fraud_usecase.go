package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/walletcore/internal/domain"
	"github.com/iho/walletcore/internal/infrastructure/metrics"
)

// Scoring weights for the individual fraud checks.
const (
	weightHighValue      = 20
	weightVeryHighValue  = 40
	weightVelocity       = 25
	weightPatternBreak   = 30
	weightGeoBlocked     = 35
	weightDevice         = 30
	weightBadAddress     = 50
	weightScamAddress    = 100
	weightUnknownMethod  = 18
	highValueUSD         = 10000
	veryHighValueUSD     = 50000
	patternBreakMultiple = 10
)

// methodRisk is the base risk weight per payment method.
var methodRisk = map[domain.PaymentMethod]int{
	domain.MethodStablecoin:   5,
	domain.MethodCrypto:       10,
	domain.MethodCard:         15,
	domain.MethodBankTransfer: 20,
	domain.MethodWire:         25,
}

// automationSignatures are user-agent fragments of known automation tools.
var automationSignatures = []string{
	"curl", "wget", "python-requests", "python-urllib", "go-http-client",
	"headless", "phantomjs", "selenium", "bot", "scrapy",
}

// FraudUseCase scores prospective transactions with deterministic weighted
// rules. It is pure with respect to its inputs except for the velocity and
// spending-pattern lookups, which read the journal.
type FraudUseCase struct {
	journal  TransactionRepository
	scamList *domain.ScamList
	geo      GeoResolver
	rates    RateSource
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

// NewFraudUseCase creates a fraud engine. geo and metrics may be nil.
func NewFraudUseCase(
	journal TransactionRepository,
	scamList *domain.ScamList,
	geo GeoResolver,
	rates RateSource,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *FraudUseCase {
	return &FraudUseCase{
		journal:  journal,
		scamList: scamList,
		geo:      geo,
		rates:    rates,
		logger:   logger,
		metrics:  m,
	}
}

// AssessInput carries everything the engine scores.
type AssessInput struct {
	UserID      string
	Amount      decimal.Decimal
	Currency    string
	Method      domain.PaymentMethod
	Destination string
	Network     string
	IP          string
	UserAgent   string
	DeviceID    string
}

// Assess scores a prospective transaction and classifies its risk level.
// Risk is a normal outcome; Assess returns an error only for infrastructure
// failures.
func (uc *FraudUseCase) Assess(ctx context.Context, input AssessInput) (*domain.FraudAssessment, error) {
	assessment := &domain.FraudAssessment{}

	uc.scoreAmount(assessment, input)
	if err := uc.scoreVelocity(ctx, assessment, input); err != nil {
		return nil, err
	}
	if err := uc.scorePattern(ctx, assessment, input); err != nil {
		return nil, err
	}
	uc.scoreGeo(assessment, input)
	uc.scoreDevice(assessment, input)
	uc.scoreMethod(assessment, input)
	uc.scoreDestination(assessment, input)

	assessment.Level = domain.RiskLevelFromScore(assessment.Score)
	uc.recommend(assessment)

	if uc.metrics != nil {
		uc.metrics.FraudAssessments.WithLabelValues(string(assessment.Level)).Inc()
		uc.metrics.FraudScore.Observe(float64(assessment.Score))
	}

	uc.logger.Debug().
		Str("user_id", input.UserID).
		Int("score", assessment.Score).
		Str("level", string(assessment.Level)).
		Strs("reasons", assessment.Reasons).
		Msg("fraud assessment")

	return assessment, nil
}

// scoreAmount flags high-value transactions, measured in the reference
// currency.
func (uc *FraudUseCase) scoreAmount(a *domain.FraudAssessment, input AssessInput) {
	usd := uc.toReference(input.Amount, input.Currency)

	if usd.GreaterThan(decimal.NewFromInt(highValueUSD)) {
		a.Score += weightHighValue
		a.Reasons = append(a.Reasons, "high-value transaction")
	}
	if usd.GreaterThan(decimal.NewFromInt(veryHighValueUSD)) {
		a.Score += weightVeryHighValue
		a.Reasons = append(a.Reasons, "very high value transaction")
	}
}

// scoreVelocity flags bursts of completed transactions in the trailing
// window.
func (uc *FraudUseCase) scoreVelocity(ctx context.Context, a *domain.FraudAssessment, input AssessInput) error {
	since := time.Now().UTC().Add(-VelocityWindow)
	entries, err := uc.journal.ListByUserSince(ctx, input.UserID, since)
	if err != nil {
		return fmt.Errorf("velocity lookup: %w", err)
	}

	// A conversion journals a debit and a credit for one logical
	// transaction; count only its debit leg.
	completed := 0
	for _, e := range entries {
		if !e.Completed() {
			continue
		}
		if e.Kind == domain.KindCredit && e.Tag == domain.TagConversion {
			continue
		}
		completed++
	}

	if completed > VelocityMaxTransactions {
		a.Score += weightVelocity
		a.Reasons = append(a.Reasons, fmt.Sprintf("%d transactions in the last %s", completed, VelocityWindow))
	}
	return nil
}

// scorePattern flags amounts far above the user's historical average.
func (uc *FraudUseCase) scorePattern(ctx context.Context, a *domain.FraudAssessment, input AssessInput) error {
	entries, err := uc.journal.ListByUser(ctx, input.UserID, HistorySampleSize, 0)
	if err != nil {
		return fmt.Errorf("pattern lookup: %w", err)
	}

	sum := decimal.Zero
	count := 0
	for _, e := range entries {
		if e.Completed() {
			sum = sum.Add(uc.toReference(e.Amount, e.Currency))
			count++
		}
	}
	if count == 0 {
		return nil
	}

	average := sum.Div(decimal.NewFromInt(int64(count)))
	usd := uc.toReference(input.Amount, input.Currency)
	if average.IsPositive() && usd.GreaterThan(average.Mul(decimal.NewFromInt(patternBreakMultiple))) {
		a.Score += weightPatternBreak
		a.Reasons = append(a.Reasons, "amount far above historical average")
	}
	return nil
}

func (uc *FraudUseCase) scoreGeo(a *domain.FraudAssessment, input AssessInput) {
	if uc.geo == nil || input.IP == "" {
		return
	}
	if uc.geo.IsBlocked(input.IP) {
		a.Score += weightGeoBlocked
		a.Reasons = append(a.Reasons, "requester IP in disallowed jurisdiction")
	}
}

// scoreDevice flags missing negotiation headers or automation signatures.
func (uc *FraudUseCase) scoreDevice(a *domain.FraudAssessment, input AssessInput) {
	if input.UserAgent == "" || input.DeviceID == "" {
		a.Score += weightDevice
		a.Reasons = append(a.Reasons, "missing device fingerprint")
		return
	}

	ua := strings.ToLower(input.UserAgent)
	for _, sig := range automationSignatures {
		if strings.Contains(ua, sig) {
			a.Score += weightDevice
			a.Reasons = append(a.Reasons, "automation signature in user agent")
			return
		}
	}
}

func (uc *FraudUseCase) scoreMethod(a *domain.FraudAssessment, input AssessInput) {
	if input.Method == "" {
		return
	}
	weight, ok := methodRisk[input.Method]
	if !ok {
		weight = weightUnknownMethod
		a.Reasons = append(a.Reasons, "unknown payment method")
	}
	a.Score += weight
}

// scoreDestination validates the destination address and checks the scam
// list. A scam-listed address is an instant critical signal.
func (uc *FraudUseCase) scoreDestination(a *domain.FraudAssessment, input AssessInput) {
	if input.Destination == "" {
		return
	}

	if err := domain.ValidateAddress(input.Network, input.Destination); err != nil {
		a.Score += weightBadAddress
		a.Reasons = append(a.Reasons, "malformed destination address")
	}

	if uc.scamList != nil && uc.scamList.Contains(input.Destination) {
		a.Score += weightScamAddress
		a.Reasons = append(a.Reasons, "destination address is scam-listed")
	}
}

func (uc *FraudUseCase) recommend(a *domain.FraudAssessment) {
	switch a.Level {
	case domain.RiskCritical:
		a.Recommendations = append(a.Recommendations, "block the transaction", "review the account for takeover")
	case domain.RiskHigh:
		a.Recommendations = append(a.Recommendations, "hold for manual review", "verify the destination address")
	case domain.RiskMedium:
		a.Recommendations = append(a.Recommendations, "apply additional verification")
	}
}

// toReference converts an amount to the reference currency; if no rate is
// available the raw amount is used as-is.
func (uc *FraudUseCase) toReference(amount decimal.Decimal, currency string) decimal.Decimal {
	if uc.rates == nil || currency == domain.ReferenceCurrency || currency == "" {
		return amount
	}
	rate, err := uc.rates.Rate(currency, domain.ReferenceCurrency)
	if err != nil {
		return amount
	}
	return amount.Mul(rate)
}
