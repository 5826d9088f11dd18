package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/walletcore/internal/domain"
	"github.com/iho/walletcore/internal/infrastructure/metrics"
)

// Named security checks recorded on every evaluated transfer.
const (
	checkAddressFormat = "address_format"
	checkScamList      = "scam_list"
	checkFraudScore    = "fraud_score"
	checkAutoRule      = "auto_approval_rule"
	checkInstantLimit  = "instant_limit"
)

// DecisionOutcome is the result of running an approval pipeline.
type DecisionOutcome string

const (
	OutcomeApproved DecisionOutcome = "approved"
	OutcomePending  DecisionOutcome = "pending"
	OutcomeRejected DecisionOutcome = "rejected"
	OutcomeFailed   DecisionOutcome = "failed"
)

// ApprovalUseCase runs the inbound and outbound approval pipelines and owns
// pending transfers, approval records and auto-approval rules.
type ApprovalUseCase struct {
	ledger    *LedgerUseCase
	fraud     *FraudUseCase
	transfers TransferRepository
	approvals ApprovalRepository
	rules     RuleRepository
	journal   TransactionRepository
	rates     RateSource
	scamList  *domain.ScamList
	sender    NetworkSender
	notifier  Notifier
	idGen     IDGenerator
	logger    zerolog.Logger
	metrics   *metrics.Metrics

	instantCeilingUSD decimal.Decimal
	defaultCeilingUSD decimal.Decimal
	pendingTTL        time.Duration
}

// ApprovalConfig carries the tunable thresholds of the pipeline.
type ApprovalConfig struct {
	InstantCeilingUSD decimal.Decimal
	DefaultCeilingUSD decimal.Decimal
	PendingTTL        time.Duration
}

// NewApprovalUseCase creates the approval pipeline.
func NewApprovalUseCase(
	ledger *LedgerUseCase,
	fraud *FraudUseCase,
	transfers TransferRepository,
	approvals ApprovalRepository,
	rules RuleRepository,
	journal TransactionRepository,
	rates RateSource,
	scamList *domain.ScamList,
	sender NetworkSender,
	notifier Notifier,
	idGen IDGenerator,
	cfg ApprovalConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *ApprovalUseCase {
	if cfg.InstantCeilingUSD.IsZero() {
		cfg.InstantCeilingUSD = decimal.NewFromInt(DefaultInstantCeilingUSD)
	}
	if cfg.DefaultCeilingUSD.IsZero() {
		cfg.DefaultCeilingUSD = decimal.NewFromInt(DefaultAutoApprovalCeilingUSD)
	}
	if cfg.PendingTTL <= 0 {
		cfg.PendingTTL = DefaultPendingTransferTTL
	}

	return &ApprovalUseCase{
		ledger:            ledger,
		fraud:             fraud,
		transfers:         transfers,
		approvals:         approvals,
		rules:             rules,
		journal:           journal,
		rates:             rates,
		scamList:          scamList,
		sender:            sender,
		notifier:          notifier,
		idGen:             idGen,
		logger:            logger,
		metrics:           m,
		instantCeilingUSD: cfg.InstantCeilingUSD,
		defaultCeilingUSD: cfg.DefaultCeilingUSD,
		pendingTTL:        cfg.PendingTTL,
	}
}

// InboundInput is an incoming receipt to evaluate.
type InboundInput struct {
	UserID        string
	Amount        decimal.Decimal
	Currency      string
	Method        domain.PaymentMethod
	SourceAddress string
	Network       string
	ExternalRef   string
	IP            string
	UserAgent     string
	DeviceID      string
}

// InboundDecision is the outcome of the inbound pipeline.
type InboundDecision struct {
	Outcome    DecisionOutcome
	Reasons    []string
	Assessment *domain.FraudAssessment
	Transfer   *domain.PendingTransfer
}

// EvaluateInbound decides whether an incoming receipt is credited instantly
// or held for manual review. Critical risk rejects outright. A pending
// decision creates an inbound PendingTransfer; no funds are held yet.
func (uc *ApprovalUseCase) EvaluateInbound(ctx context.Context, input InboundInput) (*InboundDecision, error) {
	input.Currency = domain.NormalizeCurrency(input.Currency)
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	var checks []domain.SecurityCheck
	var reasons []string

	addrOK := true
	if input.SourceAddress != "" {
		if err := domain.ValidateAddress(input.Network, input.SourceAddress); err != nil {
			addrOK = false
			reasons = append(reasons, "source address malformed")
		}
	}
	checks = append(checks, domain.SecurityCheck{Name: checkAddressFormat, Passed: addrOK})

	scamOK := uc.scamList == nil || !uc.scamList.Contains(input.SourceAddress)
	if !scamOK {
		reasons = append(reasons, "source address scam-listed")
	}
	checks = append(checks, domain.SecurityCheck{Name: checkScamList, Passed: scamOK})

	amountUSD := uc.toReference(input.Amount, input.Currency)
	withinInstant := amountUSD.LessThanOrEqual(uc.instantCeilingUSD)
	if !withinInstant {
		reasons = append(reasons, "amount above instant-approval ceiling")
	}
	checks = append(checks, domain.SecurityCheck{Name: checkInstantLimit, Passed: withinInstant})

	assessment, err := uc.fraud.Assess(ctx, AssessInput{
		UserID:      input.UserID,
		Amount:      input.Amount,
		Currency:    input.Currency,
		Method:      input.Method,
		Destination: input.SourceAddress,
		Network:     input.Network,
		IP:          input.IP,
		UserAgent:   input.UserAgent,
		DeviceID:    input.DeviceID,
	})
	if err != nil {
		return nil, err
	}
	fraudOK := !assessment.IsFraudulent()
	if !fraudOK {
		reasons = append(reasons, fmt.Sprintf("fraud risk %s", assessment.Level))
	}
	checks = append(checks, domain.SecurityCheck{
		Name:   checkFraudScore,
		Passed: fraudOK,
		Detail: fmt.Sprintf("score %d, level %s", assessment.Score, assessment.Level),
	})

	if assessment.Level == domain.RiskCritical || !scamOK {
		uc.recordDecision(ctx, input.UserID, "", domain.ApprovalAutomatic, domain.DecisionRejected, "system", joinReasons(reasons))
		uc.notify(ctx, input.UserID, domain.EventTransferRejected,
			fmt.Sprintf("Incoming payment of %s %s was blocked", input.Amount, input.Currency))
		return &InboundDecision{Outcome: OutcomeRejected, Reasons: reasons, Assessment: assessment}, nil
	}

	if addrOK && withinInstant && fraudOK {
		uc.recordDecision(ctx, input.UserID, "", domain.ApprovalAutomatic, domain.DecisionApproved, "system", "")
		return &InboundDecision{Outcome: OutcomeApproved, Assessment: assessment}, nil
	}

	transfer := &domain.PendingTransfer{
		ID:           uc.idGen.Generate(),
		UserID:       input.UserID,
		Direction:    domain.DirectionInbound,
		Amount:       input.Amount,
		Currency:     input.Currency,
		Address:      input.SourceAddress,
		Network:      input.Network,
		Status:       domain.TransferStatusPending,
		Checks:       checks,
		RiskScore:    assessment.Score,
		ManualReview: true,
		RequestedAt:  time.Now().UTC(),
	}
	if err := uc.transfers.Create(ctx, transfer); err != nil {
		return nil, err
	}

	uc.updatePendingGauge(ctx)
	uc.notify(ctx, input.UserID, domain.EventPaymentPending,
		fmt.Sprintf("Incoming payment of %s %s is held for review", input.Amount, input.Currency))
	return &InboundDecision{Outcome: OutcomePending, Reasons: reasons, Assessment: assessment, Transfer: transfer}, nil
}

// WithdrawInput is an external transfer request.
type WithdrawInput struct {
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

// WithdrawDecision is the outcome of the outbound pipeline.
type WithdrawDecision struct {
	Outcome     DecisionOutcome
	Reasons     []string
	Transfer    *domain.PendingTransfer
	RiskScore   int
	ExternalRef string
}

// RequestWithdrawal runs the outbound pipeline. The available balance is
// verified before any fraud check runs. Low-risk requests inside the user's
// auto-approval rule are debited and sent immediately; critical risk rejects
// outright; everything else is frozen pending a manual decision.
func (uc *ApprovalUseCase) RequestWithdrawal(ctx context.Context, input WithdrawInput) (*WithdrawDecision, error) {
	input.Currency = domain.NormalizeCurrency(input.Currency)
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	// Balance check comes first: no fraud work for requests that cannot be
	// funded, and no state is touched.
	wallet, err := uc.ledger.Wallet(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if wallet.Available(input.Currency).LessThan(input.Amount) {
		return nil, domain.ErrInsufficientBalance
	}

	var checks []domain.SecurityCheck
	var reasons []string

	addrOK := domain.ValidateAddress(input.Network, input.Destination) == nil
	if !addrOK {
		reasons = append(reasons, "destination address malformed")
	}
	checks = append(checks, domain.SecurityCheck{Name: checkAddressFormat, Passed: addrOK})

	scamOK := uc.scamList == nil || !uc.scamList.Contains(input.Destination)
	if !scamOK {
		reasons = append(reasons, "destination address scam-listed")
	}
	checks = append(checks, domain.SecurityCheck{Name: checkScamList, Passed: scamOK})

	assessment, err := uc.fraud.Assess(ctx, AssessInput{
		UserID:      input.UserID,
		Amount:      input.Amount,
		Currency:    input.Currency,
		Method:      input.Method,
		Destination: input.Destination,
		Network:     input.Network,
		IP:          input.IP,
		UserAgent:   input.UserAgent,
		DeviceID:    input.DeviceID,
	})
	if err != nil {
		return nil, err
	}
	fraudOK := !assessment.IsFraudulent()
	if !fraudOK {
		reasons = append(reasons, fmt.Sprintf("fraud risk %s", assessment.Level))
	}
	checks = append(checks, domain.SecurityCheck{
		Name:   checkFraudScore,
		Passed: fraudOK,
		Detail: fmt.Sprintf("score %d, level %s", assessment.Score, assessment.Level),
	})

	ruleOK, ruleDetail, err := uc.checkAutoRule(ctx, input)
	if err != nil {
		return nil, err
	}
	if !ruleOK {
		reasons = append(reasons, ruleDetail)
	}
	checks = append(checks, domain.SecurityCheck{Name: checkAutoRule, Passed: ruleOK, Detail: ruleDetail})

	now := time.Now().UTC()
	transfer := &domain.PendingTransfer{
		ID:          uc.idGen.Generate(),
		UserID:      input.UserID,
		Direction:   domain.DirectionOutbound,
		Amount:      input.Amount,
		Currency:    input.Currency,
		Address:     input.Destination,
		Network:     input.Network,
		Status:      domain.TransferStatusPending,
		Checks:      checks,
		RiskScore:   assessment.Score,
		RequestedAt: now,
	}

	// Critical risk never queues.
	if assessment.Level == domain.RiskCritical || !scamOK {
		transfer.Status = domain.TransferStatusRejected
		transfer.RejectedAt = &now
		transfer.RejectedBy = "system"
		transfer.RejectReason = domain.ErrFraudBlocked.Error()
		if err := uc.transfers.Create(ctx, transfer); err != nil {
			return nil, err
		}
		uc.recordDecision(ctx, input.UserID, transfer.ID, domain.ApprovalAutomatic, domain.DecisionRejected, "system", joinReasons(reasons))
		uc.notify(ctx, input.UserID, domain.EventTransferRejected,
			fmt.Sprintf("Withdrawal of %s %s was blocked", input.Amount, input.Currency))
		return &WithdrawDecision{Outcome: OutcomeRejected, Reasons: reasons, Transfer: transfer, RiskScore: assessment.Score}, nil
	}

	if addrOK && fraudOK && ruleOK && assessment.Score < AutoApproveRiskMax {
		return uc.autoApprove(ctx, input, transfer)
	}

	// Freeze the amount first, then queue for a manual decision. The freeze
	// runs under the wallet lock and is the authoritative funds check; a
	// transfer must never exist without its frozen backing.
	transfer.ManualReview = true
	if _, err := uc.ledger.Debit(ctx, DebitInput{
		UserID:           input.UserID,
		Amount:           input.Amount,
		Currency:         input.Currency,
		TxID:             transfer.ID,
		Tag:              domain.TagExternal,
		RequiresApproval: true,
		Metadata:         map[string]any{"destination": input.Destination, "network": input.Network},
	}); err != nil {
		return nil, err
	}
	if err := uc.transfers.Create(ctx, transfer); err != nil {
		if rerr := uc.ledger.ReleaseFrozen(ctx, input.UserID, input.Amount, input.Currency, transfer.ID, "transfer store write failed"); rerr != nil {
			uc.logger.Error().Err(rerr).Str("transfer_id", transfer.ID).Msg("failed to release frozen funds after store error")
		}
		return nil, err
	}

	uc.updatePendingGauge(ctx)
	uc.notify(ctx, input.UserID, domain.EventTransferRequested,
		fmt.Sprintf("Withdrawal of %s %s is pending review", input.Amount, input.Currency))
	return &WithdrawDecision{Outcome: OutcomePending, Reasons: reasons, Transfer: transfer, RiskScore: assessment.Score}, nil
}

// autoApprove completes a withdrawal inside the auto-approval rule: the
// debit happens immediately and the funds go out on the network. A failed
// network send is compensated with a reversing credit.
func (uc *ApprovalUseCase) autoApprove(ctx context.Context, input WithdrawInput, transfer *domain.PendingTransfer) (*WithdrawDecision, error) {
	// Debit first: the wallet lock is the authoritative funds check, and no
	// transfer record may exist without its balance movement.
	if _, err := uc.ledger.Debit(ctx, DebitInput{
		UserID:   input.UserID,
		Amount:   input.Amount,
		Currency: input.Currency,
		TxID:     transfer.ID,
		Tag:      domain.TagExternal,
		Metadata: map[string]any{"destination": input.Destination, "network": input.Network, "auto_approved": true},
	}); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	transfer.Status = domain.TransferStatusApproved
	transfer.ApprovedAt = &now
	transfer.ApprovedBy = "system"
	if err := uc.transfers.Create(ctx, transfer); err != nil {
		uc.compensateDebit(ctx, input, transfer.ID, "transfer store write failed")
		return nil, err
	}

	ref, err := uc.sender.Send(ctx, input.Network, input.Destination, input.Amount, input.Currency)
	if err != nil {
		uc.compensateDebit(ctx, input, transfer.ID, "network send failed")
		uc.logger.Error().Err(err).Str("transfer_id", transfer.ID).Msg("network send failed")
		if uerr := uc.transfers.Update(ctx, transfer.ID, func(t *domain.PendingTransfer) error {
			t.Status = domain.TransferStatusRejected
			t.RejectedAt = &now
			t.RejectedBy = "system"
			t.RejectReason = "network send failed"
			cp := *t
			transfer = &cp
			return nil
		}); uerr != nil {
			uc.logger.Error().Err(uerr).Str("transfer_id", transfer.ID).Msg("failed to record send failure")
		}
		return &WithdrawDecision{
			Outcome:  OutcomeFailed,
			Reasons:  []string{"network send failed"},
			Transfer: transfer,
		}, nil
	}

	uc.recordDecision(ctx, input.UserID, transfer.ID, domain.ApprovalAutomatic, domain.DecisionApproved, "system", "")
	uc.notify(ctx, input.UserID, domain.EventTransferApproved,
		fmt.Sprintf("Withdrawal of %s %s sent to %s", input.Amount, input.Currency, input.Destination))
	return &WithdrawDecision{
		Outcome:     OutcomeApproved,
		Transfer:    transfer,
		RiskScore:   transfer.RiskScore,
		ExternalRef: ref,
	}, nil
}

// compensateDebit credits a completed auto-approval debit back so funds are
// never lost when a later step fails.
func (uc *ApprovalUseCase) compensateDebit(ctx context.Context, input WithdrawInput, transferID, reason string) {
	if _, err := uc.ledger.Credit(ctx, CreditInput{
		UserID:   input.UserID,
		Amount:   input.Amount,
		Currency: input.Currency,
		Tag:      domain.TagExternal,
		Metadata: map[string]any{"compensates": transferID, "reason": reason},
	}); err != nil {
		uc.logger.Error().Err(err).Str("transfer_id", transferID).Msg("failed to compensate completed debit")
	}
}

// checkAutoRule applies the user's auto-approval rule, or the platform
// default ceiling when no rule exists.
func (uc *ApprovalUseCase) checkAutoRule(ctx context.Context, input WithdrawInput) (bool, string, error) {
	amountUSD := uc.toReference(input.Amount, input.Currency)

	rule, err := uc.rules.Get(ctx, input.UserID)
	if err != nil {
		return false, "", err
	}

	if rule == nil {
		if amountUSD.GreaterThan(uc.defaultCeilingUSD) {
			return false, fmt.Sprintf("amount above platform ceiling of %s %s", uc.defaultCeilingUSD, domain.ReferenceCurrency), nil
		}
		return true, "within platform default", nil
	}

	if !rule.AllowsCurrency(input.Currency) {
		return false, fmt.Sprintf("currency %s not allowed by rule", input.Currency), nil
	}
	if amountUSD.GreaterThan(rule.CeilingUSD) {
		return false, fmt.Sprintf("amount above rule ceiling of %s %s", rule.CeilingUSD, domain.ReferenceCurrency), nil
	}

	if rule.DailyCapUSD != nil {
		spent, err := uc.spentLast24h(ctx, input.UserID)
		if err != nil {
			return false, "", err
		}
		if spent.Add(amountUSD).GreaterThan(*rule.DailyCapUSD) {
			return false, fmt.Sprintf("daily cap of %s %s exceeded", rule.DailyCapUSD, domain.ReferenceCurrency), nil
		}
	}
	return true, "within rule", nil
}

// spentLast24h sums the user's completed external debits over the trailing
// day, in the reference currency.
func (uc *ApprovalUseCase) spentLast24h(ctx context.Context, userID string) (decimal.Decimal, error) {
	since := time.Now().UTC().Add(-24 * time.Hour)
	entries, err := uc.journal.ListByUserSince(ctx, userID, since)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, e := range entries {
		if e.Kind == domain.KindDebit && e.Tag == domain.TagExternal {
			total = total.Add(uc.toReference(e.Amount, e.Currency))
		}
	}
	return total, nil
}

// Approve applies a manual approval to a pending transfer. Outbound
// transfers are sent on the network first and the deferred debit completes
// only after the send succeeds, so a failed send leaves the transfer pending
// and the funds frozen. The transfer is claimed before the send so a slow
// gateway never holds the transfer store; a concurrent decision on a claimed
// transfer fails with ErrTransferNotPending.
func (uc *ApprovalUseCase) Approve(ctx context.Context, transferID, actor, notes string) (*domain.PendingTransfer, error) {
	var claimed *domain.PendingTransfer
	err := uc.transfers.Update(ctx, transferID, func(t *domain.PendingTransfer) error {
		if !t.IsPending() {
			return domain.ErrTransferNotPending
		}
		t.Status = domain.TransferStatusProcessing
		cp := *t
		claimed = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch claimed.Direction {
	case domain.DirectionOutbound:
		if _, err := uc.sender.Send(ctx, claimed.Network, claimed.Address, claimed.Amount, claimed.Currency); err != nil {
			uc.unclaim(ctx, transferID)
			return nil, fmt.Errorf("network send: %w", err)
		}
		if _, err := uc.ledger.CompleteFrozenDebit(ctx, claimed.UserID, claimed.Amount, claimed.Currency, claimed.ID, actor); err != nil {
			uc.logger.Error().Err(err).Str("transfer_id", transferID).Msg("debit failed after a successful send")
			uc.unclaim(ctx, transferID)
			return nil, err
		}
	case domain.DirectionInbound:
		if _, err := uc.ledger.Credit(ctx, CreditInput{
			UserID:   claimed.UserID,
			Amount:   claimed.Amount,
			Currency: claimed.Currency,
			Tag:      domain.TagIncoming,
			Metadata: map[string]any{"transfer_id": claimed.ID, "approved_by": actor},
		}); err != nil {
			uc.unclaim(ctx, transferID)
			return nil, err
		}
	}

	var approved *domain.PendingTransfer
	err = uc.transfers.Update(ctx, transferID, func(t *domain.PendingTransfer) error {
		now := time.Now().UTC()
		t.Status = domain.TransferStatusApproved
		t.ApprovedAt = &now
		t.ApprovedBy = actor
		cp := *t
		approved = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.recordDecision(ctx, approved.UserID, transferID, domain.ApprovalManual, domain.DecisionApproved, actor, notes)
	uc.updatePendingGauge(ctx)
	uc.notify(ctx, approved.UserID, domain.EventTransferApproved,
		fmt.Sprintf("Transfer of %s %s was approved", approved.Amount, approved.Currency))
	return approved, nil
}

// unclaim returns a claimed transfer to pending so the decision can be
// retried.
func (uc *ApprovalUseCase) unclaim(ctx context.Context, transferID string) {
	if err := uc.transfers.Update(ctx, transferID, func(t *domain.PendingTransfer) error {
		t.Status = domain.TransferStatusPending
		return nil
	}); err != nil {
		uc.logger.Error().Err(err).Str("transfer_id", transferID).Msg("failed to return transfer to pending")
	}
}

// Reject applies a manual rejection. Frozen funds of an outbound transfer
// are released back to the available balance.
func (uc *ApprovalUseCase) Reject(ctx context.Context, transferID, actor, reason string) (*domain.PendingTransfer, error) {
	var rejected *domain.PendingTransfer
	err := uc.transfers.Update(ctx, transferID, func(t *domain.PendingTransfer) error {
		if !t.IsPending() {
			return domain.ErrTransferNotPending
		}

		if t.Direction == domain.DirectionOutbound {
			if err := uc.ledger.ReleaseFrozen(ctx, t.UserID, t.Amount, t.Currency, t.ID, reason); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		t.Status = domain.TransferStatusRejected
		t.RejectedAt = &now
		t.RejectedBy = actor
		t.RejectReason = reason
		cp := *t
		rejected = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.recordDecision(ctx, rejected.UserID, transferID, domain.ApprovalManual, domain.DecisionRejected, actor, reason)
	uc.updatePendingGauge(ctx)
	uc.notify(ctx, rejected.UserID, domain.EventTransferRejected,
		fmt.Sprintf("Transfer of %s %s was rejected: %s", rejected.Amount, rejected.Currency, reason))
	return rejected, nil
}

// PendingTransfers lists transfers awaiting a decision, for one user or all.
func (uc *ApprovalUseCase) PendingTransfers(ctx context.Context, userID string) ([]*domain.PendingTransfer, error) {
	return uc.transfers.ListPending(ctx, userID)
}

// GetTransfer returns a transfer by ID.
func (uc *ApprovalUseCase) GetTransfer(ctx context.Context, id string) (*domain.PendingTransfer, error) {
	return uc.transfers.GetByID(ctx, id)
}

// SetRule stores a user's auto-approval rule.
func (uc *ApprovalUseCase) SetRule(ctx context.Context, rule *domain.AutoApprovalRule) error {
	for i, c := range rule.AllowedCurrencies {
		rule.AllowedCurrencies[i] = domain.NormalizeCurrency(c)
	}
	rule.UpdatedAt = time.Now().UTC()
	return uc.rules.Set(ctx, rule)
}

// GetRule returns a user's rule, or nil when the platform default applies.
func (uc *ApprovalUseCase) GetRule(ctx context.Context, userID string) (*domain.AutoApprovalRule, error) {
	return uc.rules.Get(ctx, userID)
}

// History returns a user's approval records, most recent first.
func (uc *ApprovalUseCase) History(ctx context.Context, userID string, limit int) ([]*domain.ApprovalRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return uc.approvals.ListByUser(ctx, userID, limit)
}

// ExpireStale rejects pending transfers older than the TTL and releases
// their frozen funds. Returns the number of transfers expired.
func (uc *ApprovalUseCase) ExpireStale(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-uc.pendingTTL)
	stale, err := uc.transfers.ListPendingBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, t := range stale {
		if _, err := uc.Reject(ctx, t.ID, "system", "expired"); err != nil {
			if errors.Is(err, domain.ErrTransferNotPending) {
				continue
			}
			uc.logger.Error().Err(err).Str("transfer_id", t.ID).Msg("failed to expire transfer")
			continue
		}
		expired++
		if uc.metrics != nil {
			uc.metrics.TransfersExpired.Inc()
		}
		uc.notify(ctx, t.UserID, domain.EventTransferExpired,
			fmt.Sprintf("Transfer of %s %s expired and its funds were released", t.Amount, t.Currency))
	}
	return expired, nil
}

// Run expires stale pending transfers on a fixed interval until ctx is done.
func (uc *ApprovalUseCase) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := uc.ExpireStale(ctx); err != nil {
				uc.logger.Error().Err(err).Msg("expiry sweep failed")
			} else if n > 0 {
				uc.logger.Info().Int("expired", n).Msg("expired stale pending transfers")
			}
		}
	}
}

func (uc *ApprovalUseCase) recordDecision(ctx context.Context, userID, transferID string, typ domain.ApprovalType, decision domain.ApprovalDecision, actor, notes string) {
	record := &domain.ApprovalRecord{
		ID:         uc.idGen.Generate(),
		UserID:     userID,
		TransferID: transferID,
		Type:       typ,
		Decision:   decision,
		Actor:      actor,
		Notes:      notes,
		CreatedAt:  time.Now().UTC(),
	}
	if err := uc.approvals.Append(ctx, record); err != nil {
		uc.logger.Error().Err(err).Str("user_id", userID).Msg("failed to append approval record")
	}
	if uc.metrics != nil {
		uc.metrics.ApprovalDecisions.WithLabelValues(string(typ), string(decision)).Inc()
	}
}

func (uc *ApprovalUseCase) updatePendingGauge(ctx context.Context) {
	if uc.metrics == nil {
		return
	}
	pending, err := uc.transfers.ListPending(ctx, "")
	if err != nil {
		return
	}
	uc.metrics.PendingTransfers.Set(float64(len(pending)))
}

func (uc *ApprovalUseCase) notify(ctx context.Context, userID, event, message string) {
	if uc.notifier == nil {
		return
	}
	uc.notifier.Notify(ctx, domain.Notification{
		UserID:    userID,
		Event:     event,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	})
}

func (uc *ApprovalUseCase) toReference(amount decimal.Decimal, currency string) decimal.Decimal {
	if uc.rates == nil || currency == domain.ReferenceCurrency {
		return amount
	}
	rate, err := uc.rates.Rate(currency, domain.ReferenceCurrency)
	if err != nil {
		return amount
	}
	return amount.Mul(rate)
}

func joinReasons(reasons []string) string {
	if len(reasons) == 0 {
		return ""
	}
	out := reasons[0]
	for _, r := range reasons[1:] {
		out += "; " + r
	}
	return out
}
