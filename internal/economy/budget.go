// Package economy manages the treasury, taxation, maintenance, and the
// population tier ladder.
package economy

import (
	"github.com/dzautner/megacity/internal/buildings"
	"github.com/dzautner/megacity/internal/grid"
)

// Default tax rates per zone category.
const (
	DefaultResidentialTax = 0.09
	DefaultCommercialTax  = 0.10
	DefaultIndustrialTax  = 0.11
	DefaultOfficeTax      = 0.10
)

// baseTaxPerOccupant is the monthly tax base per occupied capacity unit
// before rate, level, and quality multipliers.
const baseTaxPerOccupant = 10.0

// Budget is the city's fiscal state.
type Budget struct {
	Treasury float64 `json:"treasury"`
	Debt     float64 `json:"debt"`

	TaxRates [grid.NumZoneCategories]float32 `json:"tax_rates"`

	// Last completed month, for the budget panel.
	Income   IncomeBreakdown  `json:"income"`
	Expenses ExpenseBreakdown `json:"expenses"`
}

// IncomeBreakdown itemizes monthly revenue.
type IncomeBreakdown struct {
	Residential float64 `json:"residential"`
	Commercial  float64 `json:"commercial"`
	Industrial  float64 `json:"industrial"`
	Office      float64 `json:"office"`
	Tourism     float64 `json:"tourism"`
	Fines       float64 `json:"fines"`
}

// Total monthly income.
func (i IncomeBreakdown) Total() float64 {
	return i.Residential + i.Commercial + i.Industrial + i.Office + i.Tourism + i.Fines
}

// ExpenseBreakdown itemizes monthly spending.
type ExpenseBreakdown struct {
	Services  float64 `json:"services"`
	Utilities float64 `json:"utilities"`
	Transport float64 `json:"transport"`
	Interest  float64 `json:"interest"`
}

// Total monthly expenses.
func (e ExpenseBreakdown) Total() float64 {
	return e.Services + e.Utilities + e.Transport + e.Interest
}

// NewBudget starts a city with seed capital and default rates.
func NewBudget() *Budget {
	b := &Budget{Treasury: 50000}
	b.TaxRates[grid.CatResidential] = DefaultResidentialTax
	b.TaxRates[grid.CatCommercial] = DefaultCommercialTax
	b.TaxRates[grid.CatIndustrial] = DefaultIndustrialTax
	b.TaxRates[grid.CatOffice] = DefaultOfficeTax
	return b
}

// CollectInputs carries the multipliers assembled by the engine for the
// monthly collection pass.
type CollectInputs struct {
	// CityHallTaxMultiplier from administrative efficiency, 0.90..1.05.
	CityHallTaxMultiplier float64
	// ServiceQuality scales willingness to pay, from average coverage.
	ServiceQuality float64
	// CommerceBonus returns the per-cell commercial productivity multiplier
	// (mail coverage). Nil means no bonus anywhere.
	CommerceBonus func(x, y int) float64
	// TourismIncome and Fines are computed by their subsystems.
	TourismIncome float64
	Fines         float64
}

// CollectMonthly runs the monthly fiscal cycle: taxes in, maintenance out.
// Tax per building is base x level x occupancy x district multiplier x rate
// x city hall x service quality. A negative treasury converts to debt
// accruing 1% monthly interest.
func (b *Budget) CollectMonthly(
	g *grid.Grid,
	dist *grid.Districts,
	bstore *buildings.Store,
	svcs *buildings.ServiceStore,
	utils *buildings.UtilityStore,
	in CollectInputs,
) {
	var income IncomeBreakdown
	income.Tourism = in.TourismIncome
	income.Fines = in.Fines

	bstore.ForEach(func(bl *buildings.Building) {
		if bl.UnderConstruction() || bl.Capacity == 0 {
			return
		}
		cat := bl.Zone.Category()
		occ := occupiedUnits(bl)
		if occ == 0 {
			return
		}
		policy := dist.PolicyAt(bl.X, bl.Y)
		tax := baseTaxPerOccupant *
			float64(bl.Level) *
			float64(occ) *
			float64(policy.TaxMultiplier[cat]) *
			float64(b.TaxRates[cat]) * 10 *
			in.CityHallTaxMultiplier *
			in.ServiceQuality

		switch cat {
		case grid.CatResidential:
			income.Residential += tax
		case grid.CatCommercial:
			if in.CommerceBonus != nil {
				tax *= in.CommerceBonus(bl.X, bl.Y)
			}
			income.Commercial += tax
		case grid.CatIndustrial:
			income.Industrial += tax
		case grid.CatOffice:
			income.Office += tax
		}
	})

	var expenses ExpenseBreakdown
	svcs.ForEach(func(s *buildings.Service) {
		m := s.Type.MonthlyMaintenance()
		if s.Type == buildings.SvcBusDepot || s.Type == buildings.SvcAirport {
			expenses.Transport += m
		} else {
			expenses.Services += m
		}
	})
	utils.ForEach(func(u *buildings.Utility) {
		expenses.Utilities += u.Type.MonthlyOperatingCost()
	})

	if b.Debt > 0 {
		expenses.Interest = b.Debt * 0.01
	}

	b.Treasury += income.Total() - expenses.Total()

	// Roll shortfalls into debt; surpluses pay debt down first.
	if b.Treasury < 0 {
		b.Debt += -b.Treasury
		b.Treasury = 0
	} else if b.Debt > 0 {
		repay := min(b.Treasury*0.25, b.Debt)
		b.Debt -= repay
		b.Treasury -= repay
	}

	b.Income = income
	b.Expenses = expenses
}

// Spend deducts a one-off cost (construction). Returns false and leaves the
// treasury untouched when it cannot cover the amount.
func (b *Budget) Spend(amount float64) bool {
	if amount <= 0 {
		return true
	}
	if amount > b.Treasury {
		return false
	}
	b.Treasury -= amount
	return true
}

// Refund returns a previously charged amount, for undone placements.
func (b *Budget) Refund(amount float64) {
	if amount > 0 {
		b.Treasury += amount
	}
}

func occupiedUnits(bl *buildings.Building) int {
	if bl.IsWorkplace() {
		n := 0
		for i := range bl.Jobs {
			if bl.Jobs[i].Filled {
				n++
			}
		}
		return n
	}
	return bl.Occupants
}
