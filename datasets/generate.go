package datasets

import (
	"math/rand/v2"

	"github.com/YuminosukeSato/salaryforest/pkg/errors"
)

// Generation bounds.
const (
	MinExperience = 1
	MaxExperience = 15 // exclusive
	NoiseBound    = 1500
)

// Salary formula terms.
const (
	baseSalary      = 30000
	perYearSalary   = 2500
	mastersBonus    = 8000
	phdBonus        = 15000
	managerBonus    = 10000
	analystBonus    = 5000
	financeBonus    = 5000
	healthcareBonus = 3000
)

// Generate draws n records from rng.
//
// Columns are drawn one after another (all experience values, then education,
// job role and industry) and the salary noise is drawn last, one value per
// record. A fixed seed therefore always yields the same dataset.
func Generate(n int, rng *rand.Rand) (Employees, error) {
	if n <= 0 {
		return nil, errors.NewValidationError("records", "must be positive", n)
	}
	if rng == nil {
		return nil, errors.NewValidationError("rng", "must not be nil", nil)
	}

	es := make(Employees, n)
	for i := range es {
		es[i].Experience = MinExperience + rng.IntN(MaxExperience-MinExperience)
	}
	educations := AllEducations()
	for i := range es {
		es[i].Education = educations[rng.IntN(len(educations))]
	}
	roles := AllJobRoles()
	for i := range es {
		es[i].JobRole = roles[rng.IntN(len(roles))]
	}
	industries := AllIndustries()
	for i := range es {
		es[i].Industry = industries[rng.IntN(len(industries))]
	}
	for i := range es {
		es[i].Salary = Salary(es[i], rng)
	}
	return es, nil
}

// BaseSalary is the noise-free part of the salary.
func BaseSalary(e Employee) int {
	s := baseSalary + e.Experience*perYearSalary

	switch e.Education {
	case Masters:
		s += mastersBonus
	case PhD:
		s += phdBonus
	}
	switch e.JobRole {
	case Manager:
		s += managerBonus
	case Analyst:
		s += analystBonus
	}
	switch e.Industry {
	case Finance:
		s += financeBonus
	case Healthcare:
		s += healthcareBonus
	}
	return s
}

// Salary adds uniform integer noise in [-NoiseBound, NoiseBound) to BaseSalary.
func Salary(e Employee, rng *rand.Rand) int {
	return BaseSalary(e) + rng.IntN(2*NoiseBound) - NoiseBound
}
