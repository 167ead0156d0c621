// Package dialogue drives the premium conversation one customer turn at a
// time. It decides what to ask, when to price, and what to offer next.
package dialogue

import (
	"fmt"
	"log/slog"

	"github.com/krea02/ai-agent-demo/internal/domain"
	"github.com/krea02/ai-agent-demo/internal/nlu"
	"github.com/krea02/ai-agent-demo/internal/pricing"
)

// Kind tells the caller what a step produced.
type Kind int

const (
	// KindMessage is a complete canned reply.
	KindMessage Kind = iota
	// KindPrompt asks for a missing slot.
	KindPrompt
	// KindQuote carries a priced premium.
	KindQuote
	// KindAnswer means the turn must be answered from the knowledge base.
	KindAnswer
)

func (k Kind) String() string {
	switch k {
	case KindPrompt:
		return "prompt"
	case KindQuote:
		return "quote"
	case KindAnswer:
		return "answer"
	default:
		return "message"
	}
}

// Result is the outcome of one step.
type Result struct {
	Kind  Kind
	Reply string

	// Draft and Pending are set for KindPrompt.
	Draft   *domain.Draft
	Pending domain.Slot

	// Quote and Offer are set for KindQuote.
	Quote *pricing.Quote
	Offer []domain.Coverage

	// FollowUp is appended to an answer given while a draft is open.
	FollowUp string

	Intent nlu.Intent
	Reset  bool
}

// Machine is stateless; all conversation state lives in the session.
type Machine struct {
	logger *slog.Logger
}

// NewMachine creates a dialogue machine.
func NewMachine(logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{logger: logger}
}

// Step applies one customer utterance to s and returns what to say. It
// mutates s in place; callers that need atomic turns pass a clone and
// persist it only when the whole turn succeeds.
func (m *Machine) Step(s *domain.Session, utterance string) (Result, error) {
	if s.State == nil {
		s.State = domain.Idle{}
	}
	from := s.State.Kind()
	text := nlu.Normalize(utterance)

	// A new vehicle clears everything before the turn is interpreted.
	reset := nlu.IsNewVehicle(text)
	if reset {
		s.ForgetVehicle()
	}

	var (
		res Result
		err error
	)
	switch st := s.State.(type) {
	case domain.AwaitingComparison:
		res, err = m.comparison(s, st, text)
	case domain.Collecting:
		res, err = m.collect(s, st, text)
	default:
		res, err = m.idle(s, text, reset)
	}
	if err != nil {
		return Result{}, err
	}
	res.Reset = reset

	m.logger.Debug("dialogue step",
		"session_key", s.Key,
		"from", from,
		"to", s.State.Kind(),
		"result", res.Kind.String(),
		"reset", reset,
	)
	return res, nil
}

func (m *Machine) idle(s *domain.Session, text string, reset bool) (Result, error) {
	intent := nlu.Classify(text, nlu.ClassifyContext{HasLastPremium: s.LastVehicle != nil})
	if reset && intent != nlu.IntentInformation {
		intent = nlu.IntentPremiumRequest
	}
	if intent == nlu.IntentPremiumRequest {
		return m.startDraft(s, text, reset)
	}
	return Result{Kind: KindAnswer, Intent: intent}, nil
}

// startDraft opens a draft, prefilled from the last quoted vehicle unless the
// request describes a vehicle from scratch.
func (m *Machine) startDraft(s *domain.Session, text string, reset bool) (Result, error) {
	var d domain.Draft
	if !reset && s.LastVehicle != nil {
		if nlu.IsFreshPremiumRequest(text) {
			s.LastVehicle = nil
			s.Compared = 0
		} else {
			d = s.LastVehicle.DraftFor("")
		}
	}
	res, err := m.collect(s, domain.Collecting{Draft: d, FirstTurn: true}, text)
	res.Intent = nlu.IntentPremiumRequest
	return res, err
}

func (m *Machine) collect(s *domain.Session, c domain.Collecting, text string) (Result, error) {
	if text != "" && nlu.IsCancel(text) {
		s.State = domain.Idle{}
		return Result{Kind: KindMessage, Reply: closingReply}, nil
	}

	draft := c.Draft.Clone()
	filled := merge(&draft, extract(text, c))

	// A side question while a draft is open is answered without losing it.
	if !filled && !c.FirstTurn && text != "" &&
		nlu.IsInformationQuestion(text) && !nlu.MentionsCoverage(text) {
		s.State = domain.Collecting{Draft: draft, Pending: c.Pending}
		return Result{
			Kind:     KindAnswer,
			Intent:   nlu.IntentInformation,
			FollowUp: slotQuestion(c.Pending, false),
		}, nil
	}

	if slot := draft.Missing(); slot != domain.SlotNone {
		reprompt := !filled && c.Pending == slot
		s.State = domain.Collecting{Draft: draft, Pending: slot}
		d := draft.Clone()
		return Result{
			Kind:    KindPrompt,
			Reply:   slotQuestion(slot, reprompt),
			Draft:   &d,
			Pending: slot,
		}, nil
	}
	return m.finalize(s, draft)
}

// extract reads slot values from text. The pending slot accepts bare
// numbers; other slots need an explicit cue.
func extract(text string, c domain.Collecting) domain.Draft {
	var found domain.Draft
	if text == "" {
		return found
	}
	if v, ok := nlu.ExtractAge(text, c.Pending == domain.SlotVehicleAge); ok {
		found.VehicleAge = domain.Int(v)
	}
	if v, ok := nlu.ExtractHorsepower(text, c.Pending == domain.SlotHorsepower); ok {
		found.Horsepower = domain.Int(v)
	}
	if v, ok := nlu.ExtractCoverage(text, c.FirstTurn || c.Pending == domain.SlotCoverage); ok {
		found.Coverage = v
	}
	if v, ok := nlu.ExtractCity(text); ok {
		found.City = v
	}
	return found
}

// merge copies found values into d and reports whether anything was found.
func merge(d *domain.Draft, found domain.Draft) bool {
	filled := false
	if found.VehicleAge != nil {
		d.VehicleAge = found.VehicleAge
		filled = true
	}
	if found.Horsepower != nil {
		d.Horsepower = found.Horsepower
		filled = true
	}
	if found.Coverage != "" {
		d.Coverage = found.Coverage
		filled = true
	}
	if found.City != "" {
		d.City = found.City
		filled = true
	}
	return filled
}

func (m *Machine) finalize(s *domain.Session, d domain.Draft) (Result, error) {
	city := d.City
	if city == "" {
		city = nlu.CityOther
	}
	q, err := pricing.Calculate(pricing.Input{
		VehicleAge: float64(*d.VehicleAge),
		Horsepower: float64(*d.Horsepower),
		City:       city,
		Coverage:   d.Coverage,
	})
	if err != nil {
		return Result{}, fmt.Errorf("price draft: %w", err)
	}

	v := domain.Vehicle{Age: *d.VehicleAge, Horsepower: *d.Horsepower, City: city}
	if s.LastVehicle == nil || *s.LastVehicle != v {
		s.Compared = 0
	}
	s.Compared = s.Compared.Add(d.Coverage)
	s.LastVehicle = &v

	offer := NextOffer(d.Coverage, s.Compared)
	if len(offer) > 0 {
		s.State = domain.AwaitingComparison{Options: offer}
	} else {
		s.State = domain.Idle{}
	}

	m.logger.Info("premium quoted",
		"session_key", s.Key,
		"coverage", d.Coverage,
		"annual", q.Annual,
		"offer", offer,
	)
	return Result{Kind: KindQuote, Reply: quoteReply(v, q, offer), Quote: &q, Offer: offer}, nil
}

// NextOffer returns the tiers worth offering after quoting c. Basic leads to
// the two comprehensive tiers, and each comprehensive tier to the other one.
// Tiers already quoted for the vehicle are never offered again.
func NextOffer(c domain.Coverage, compared domain.CoverageSet) []domain.Coverage {
	var candidates []domain.Coverage
	switch c {
	case domain.CoverageBasic:
		candidates = []domain.Coverage{domain.CoveragePartial, domain.CoverageFull}
	case domain.CoveragePartial:
		candidates = []domain.Coverage{domain.CoverageFull}
	case domain.CoverageFull:
		candidates = []domain.Coverage{domain.CoveragePartial}
	}
	var out []domain.Coverage
	for _, t := range candidates {
		if !compared.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

func (m *Machine) comparison(s *domain.Session, st domain.AwaitingComparison, text string) (Result, error) {
	tiers := nlu.MentionedTiers(text)
	aff, neg := nlu.IsAffirmative(text), nlu.IsNegative(text)

	switch {
	case len(st.Options) == 2 && containsAll(tiers, st.Options):
		return Result{Kind: KindMessage, Reply: whichFirstReply(st.Options)}, nil

	case !aff && !neg && nlu.IsInformationQuestion(text) &&
		!nlu.MentionsCoverage(text) && !nlu.HasCalcWording(text):
		s.State = domain.Idle{}
		return Result{Kind: KindAnswer, Intent: nlu.IntentInformation}, nil

	case nlu.HasCalcWording(text) && len(tiers) == 0:
		s.State = domain.Idle{}
		return m.startDraft(s, text, false)

	case !aff && !neg && len(tiers) == 0 && !nlu.MentionsCoverage(text):
		s.State = domain.Idle{}
		return Result{Kind: KindMessage, Reply: clarifyReply}, nil

	case len(tiers) > 0:
		tier, ok := pickTier(tiers, st.Options)
		if !ok {
			return Result{Kind: KindMessage, Reply: reaskReply(st.Options)}, nil
		}
		return m.quoteTier(s, tier)

	case neg:
		s.State = domain.Idle{}
		return Result{Kind: KindMessage, Reply: closingReply}, nil

	case aff && len(st.Options) == 1:
		return m.quoteTier(s, st.Options[0])

	case aff:
		return Result{Kind: KindMessage, Reply: whichReply(st.Options)}, nil
	}
	return Result{Kind: KindMessage, Reply: reaskReply(st.Options)}, nil
}

// quoteTier prices tier for the last quoted vehicle.
func (m *Machine) quoteTier(s *domain.Session, tier domain.Coverage) (Result, error) {
	s.State = domain.Idle{}
	d := domain.Draft{Coverage: tier}
	if s.LastVehicle != nil {
		d = s.LastVehicle.DraftFor(tier)
	}
	return m.collect(s, domain.Collecting{Draft: d}, "")
}

// pickTier returns the first named tier that was offered.
func pickTier(named, offered []domain.Coverage) (domain.Coverage, bool) {
	for _, t := range named {
		for _, o := range offered {
			if t == o {
				return t, true
			}
		}
	}
	return "", false
}

func containsAll(have, want []domain.Coverage) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
