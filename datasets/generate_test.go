package datasets

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func TestGenerate_Ranges(t *testing.T) {
	es, err := Generate(500, seeded(1))
	require.NoError(t, err)
	require.Len(t, es, 500)

	for i, e := range es {
		assert.GreaterOrEqual(t, e.Experience, MinExperience, "row %d", i)
		assert.Less(t, e.Experience, MaxExperience, "row %d", i)
		assert.Contains(t, AllEducations(), e.Education, "row %d", i)
		assert.Contains(t, AllJobRoles(), e.JobRole, "row %d", i)
		assert.Contains(t, AllIndustries(), e.Industry, "row %d", i)

		noise := e.Salary - BaseSalary(e)
		assert.GreaterOrEqual(t, noise, -NoiseBound, "row %d", i)
		assert.Less(t, noise, NoiseBound, "row %d", i)
	}
}

func TestGenerate_CoversCategories(t *testing.T) {
	es, err := Generate(300, seeded(7))
	require.NoError(t, err)

	edu := map[Education]bool{}
	role := map[JobRole]bool{}
	ind := map[Industry]bool{}
	for _, e := range es {
		edu[e.Education] = true
		role[e.JobRole] = true
		ind[e.Industry] = true
	}
	assert.Len(t, edu, 3)
	assert.Len(t, role, 3)
	assert.Len(t, ind, 3)
}

func TestGenerate_Reproducible(t *testing.T) {
	a, err := Generate(100, seeded(42))
	require.NoError(t, err)
	b, err := Generate(100, seeded(42))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Generate(100, seeded(43))
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestGenerate_Invalid(t *testing.T) {
	_, err := Generate(0, seeded(1))
	assert.Error(t, err)
	_, err = Generate(-3, seeded(1))
	assert.Error(t, err)
	_, err = Generate(10, nil)
	assert.Error(t, err)
}

func TestBaseSalary(t *testing.T) {
	tests := []struct {
		name string
		e    Employee
		want int
	}{
		{"no bonuses", Employee{Experience: 1, Education: Bachelors, JobRole: Engineer, Industry: IT}, 32500},
		{"masters analyst healthcare", Employee{Experience: 4, Education: Masters, JobRole: Analyst, Industry: Healthcare}, 30000 + 10000 + 8000 + 5000 + 3000},
		{"phd manager finance", Employee{Experience: 14, Education: PhD, JobRole: Manager, Industry: Finance}, 30000 + 35000 + 15000 + 10000 + 5000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BaseSalary(tt.e))
		})
	}
}

func TestEnums(t *testing.T) {
	for _, e := range AllEducations() {
		got, err := ParseEducation(e.String())
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}
	for _, r := range AllJobRoles() {
		got, err := ParseJobRole(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
	for _, i := range AllIndustries() {
		got, err := ParseIndustry(i.String())
		require.NoError(t, err)
		assert.Equal(t, i, got)
	}

	_, err := ParseEducation("Diploma")
	assert.Error(t, err)
	_, err = ParseJobRole("Intern")
	assert.Error(t, err)
	_, err = ParseIndustry("Retail")
	assert.Error(t, err)
	assert.Equal(t, "Industry(9)", Industry(9).String())
}
