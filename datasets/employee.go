// Package datasets generates the synthetic employee salary dataset and its
// label-encoded numeric form.
package datasets

import (
	"fmt"

	"github.com/YuminosukeSato/salaryforest/pkg/errors"
)

// Column names, in frame order.
const (
	ColExperience = "Experience"
	ColEducation  = "Education"
	ColJobRole    = "Job_Role"
	ColIndustry   = "Industry"
	ColSalary     = "Salary"
)

// Columns returns every column name in frame order.
func Columns() []string {
	return []string{ColExperience, ColEducation, ColJobRole, ColIndustry, ColSalary}
}

// FeatureNames returns the model input columns (every column except Salary).
func FeatureNames() []string {
	return []string{ColExperience, ColEducation, ColJobRole, ColIndustry}
}

// CategoricalColumns returns the columns that are label encoded.
func CategoricalColumns() []string {
	return []string{ColEducation, ColJobRole, ColIndustry}
}

// Education is the highest degree held.
type Education int

const (
	Bachelors Education = iota
	Masters
	PhD
)

var educationNames = [...]string{"Bachelors", "Masters", "PhD"}

func (e Education) String() string {
	if e < 0 || int(e) >= len(educationNames) {
		return fmt.Sprintf("Education(%d)", int(e))
	}
	return educationNames[e]
}

// AllEducations lists every Education in declaration order.
func AllEducations() []Education { return []Education{Bachelors, Masters, PhD} }

// ParseEducation is the inverse of Education.String.
func ParseEducation(s string) (Education, error) {
	for i, n := range educationNames {
		if n == s {
			return Education(i), nil
		}
	}
	return 0, errors.NewValueError("ParseEducation", fmt.Sprintf("unknown education %q", s))
}

// JobRole is the employee's position.
type JobRole int

const (
	Engineer JobRole = iota
	Manager
	Analyst
)

var jobRoleNames = [...]string{"Engineer", "Manager", "Analyst"}

func (r JobRole) String() string {
	if r < 0 || int(r) >= len(jobRoleNames) {
		return fmt.Sprintf("JobRole(%d)", int(r))
	}
	return jobRoleNames[r]
}

// AllJobRoles lists every JobRole in declaration order.
func AllJobRoles() []JobRole { return []JobRole{Engineer, Manager, Analyst} }

// ParseJobRole is the inverse of JobRole.String.
func ParseJobRole(s string) (JobRole, error) {
	for i, n := range jobRoleNames {
		if n == s {
			return JobRole(i), nil
		}
	}
	return 0, errors.NewValueError("ParseJobRole", fmt.Sprintf("unknown job role %q", s))
}

// Industry is the employer's sector.
type Industry int

const (
	IT Industry = iota
	Finance
	Healthcare
)

var industryNames = [...]string{"IT", "Finance", "Healthcare"}

func (i Industry) String() string {
	if i < 0 || int(i) >= len(industryNames) {
		return fmt.Sprintf("Industry(%d)", int(i))
	}
	return industryNames[i]
}

// AllIndustries lists every Industry in declaration order.
func AllIndustries() []Industry { return []Industry{IT, Finance, Healthcare} }

// ParseIndustry is the inverse of Industry.String.
func ParseIndustry(s string) (Industry, error) {
	for i, n := range industryNames {
		if n == s {
			return Industry(i), nil
		}
	}
	return 0, errors.NewValueError("ParseIndustry", fmt.Sprintf("unknown industry %q", s))
}

// Employee is one simulated record.
type Employee struct {
	Experience int // years, in [1, 15)
	Education  Education
	JobRole    JobRole
	Industry   Industry
	Salary     int
}

// Employees is the ordered dataset.
type Employees []Employee

// Column returns the raw string values of a column.
func (es Employees) Column(name string) ([]string, error) {
	out := make([]string, len(es))
	for i, e := range es {
		switch name {
		case ColExperience:
			out[i] = fmt.Sprint(e.Experience)
		case ColEducation:
			out[i] = e.Education.String()
		case ColJobRole:
			out[i] = e.JobRole.String()
		case ColIndustry:
			out[i] = e.Industry.String()
		case ColSalary:
			out[i] = fmt.Sprint(e.Salary)
		default:
			return nil, errors.NewValueError("Employees.Column", fmt.Sprintf("unknown column %q", name))
		}
	}
	return out, nil
}
