package engine

import (
	"github.com/shopspring/decimal"

	"github.com/timmydo/tfp/internal/domain"
	"github.com/timmydo/tfp/internal/socialsecurity"
)

// collectIncome implements step 2: sum all active income items for the
// month, including Social Security once the owner has reached their
// claiming age and month.
func (e *Engine) collectIncome(state *domain.PlanState, result *domain.MonthResult, cash *domain.Account) {
	inflation := e.Input.Settings.InflationRate

	for _, item := range e.Input.CashFlows {
		if item.Kind != "income" || !item.Active(state.Cursor) {
			continue
		}
		amount := item.MonthlyAmount(state.Cursor, inflation)
		if amount.IsZero() {
			continue
		}
		cash.Balance = cash.Balance.Add(amount)
		result.Income = append(result.Income, domain.FlowEntry{Name: item.Name, Amount: amount})

		if item.IncomeCategory == domain.IncomeWages || item.IncomeCategory == domain.IncomeSelfEmployment {
			key := string(item.Owner)
			state.YTD.WagesByPerson[key] = state.YTD.WagesByPerson[key].Add(amount)
			state.YTD.OrdinaryIncome = state.YTD.OrdinaryIncome.Add(amount)
		}
	}

	for i := range state.People {
		p := &state.People[i]
		claimMonth := claimingMonth(*p)
		if state.Cursor.Before(claimMonth) {
			continue
		}
		spouse := otherPerson(state.People, p.Owner)
		var spousePIA decimal.Decimal
		hasSpouse := spouse != nil
		if hasSpouse {
			spousePIA = spouse.SSPIA
		}
		rules := e.Tables.For(state.Cursor.Year, e.Input.Settings.InflationRate).SocialSecurity
		monthly := socialsecurity.MonthlyBenefit(p.SSPIA, p.SSClaimAge, rules, spousePIA, hasSpouse)

		cash.Balance = cash.Balance.Add(monthly)
		result.Income = append(result.Income, domain.FlowEntry{Name: "social_security_" + p.Name, Amount: monthly})
		// SS taxability is computed at December settlement from the annual
		// total via the combined-income rule, not accrued monthly.
		state.YTD.SocialSecurityIncome = state.YTD.SocialSecurityIncome.Add(monthly)
	}
}

func claimingMonth(p domain.Person) domain.YearMonth {
	years := p.SSClaimAge.IntPart()
	fracYear := p.SSClaimAge.Sub(decimal.NewFromInt(years))
	months := fracYear.Mul(decimal.NewFromInt(12)).Round(0).IntPart()
	return p.BirthDate.AddMonths(int(years)*12 + int(months))
}

func otherPerson(people []domain.Person, owner domain.Owner) *domain.Person {
	for i := range people {
		if people[i].Owner != owner {
			return &people[i]
		}
	}
	return nil
}

// payrollTaxes implements step 3: FICA on employment income, with the
// Social-Security wage-base cap tracked per person YTD, plus Medicare and
// the Additional Medicare surtax.
func (e *Engine) payrollTaxes(state *domain.PlanState, result *domain.MonthResult, cash *domain.Account) {
	fica := e.Tables.For(state.Cursor.Year, e.Input.Settings.InflationRate).FICA

	threshold := fica.AdditionalMedicareThresholdOther
	if e.Input.Settings.FilingStatus == domain.MarriedFilingJointly {
		threshold = fica.AdditionalMedicareThresholdMFJ
	}

	for _, item := range e.Input.CashFlows {
		if item.Kind != "income" || !item.Active(state.Cursor) {
			continue
		}
		if item.IncomeCategory != domain.IncomeWages && item.IncomeCategory != domain.IncomeSelfEmployment {
			continue
		}
		amount := item.MonthlyAmount(state.Cursor, e.Input.Settings.InflationRate)
		if amount.IsZero() {
			continue
		}

		wageKey := string(item.Owner)
		wagesBefore := state.YTD.WagesByPerson[wageKey].Sub(amount) // already added in collectIncome
		if wagesBefore.LessThan(decimal.Zero) {
			wagesBefore = decimal.Zero
		}

		ssRate := fica.SocialSecurityRate
		medicareRate := fica.MedicareRate
		if item.IsSelfEmployment {
			ssRate = fica.SelfEmploymentRate
			medicareRate = decimal.Zero // self-employment rate already bundles Medicare's share
		}

		ssRoomRemaining := decimal.Max(decimal.Zero, fica.SocialSecurityWageBase.Sub(wagesBefore))
		ssTaxable := decimal.Min(amount, ssRoomRemaining)
		ssTax := ssTaxable.Mul(ssRate)

		medicareTax := amount.Mul(medicareRate)

		wagesAfter := wagesBefore.Add(amount)
		var additionalBase decimal.Decimal
		switch {
		case wagesBefore.GreaterThanOrEqual(threshold):
			additionalBase = amount
		case wagesAfter.GreaterThan(threshold):
			additionalBase = wagesAfter.Sub(threshold)
		default:
			additionalBase = decimal.Zero
		}
		additionalTax := additionalBase.Mul(fica.AdditionalMedicareRate)

		total := ssTax.Add(medicareTax).Add(additionalTax)
		cash.Balance = cash.Balance.Sub(total)
		result.FICAWithheld = result.FICAWithheld.Add(total)
		state.YTD.FICAWithheld = state.YTD.FICAWithheld.Add(total)
	}
}

// withholding implements step 4: each income item with tax_handling =
// withhold contributes amount*withhold_percent to withheld tax.
func (e *Engine) withholding(state *domain.PlanState, result *domain.MonthResult, cash *domain.Account) {
	for _, item := range e.Input.CashFlows {
		if item.Kind != "income" || !item.Active(state.Cursor) || item.TaxHandling != domain.TaxHandlingWithhold {
			continue
		}
		amount := item.MonthlyAmount(state.Cursor, e.Input.Settings.InflationRate)
		withheld := amount.Mul(item.WithholdPercent)
		cash.Balance = cash.Balance.Sub(withheld)
		result.TaxWithheld = result.TaxWithheld.Add(withheld)
		state.YTD.TaxWithheld = state.YTD.TaxWithheld.Add(withheld)
	}
}
