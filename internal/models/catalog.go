package models

// Department partitions users, subjects, assignments and lectures. The set
// is closed; values outside it simply never match any record.
type Department string

const (
	DeptComputerScience       Department = "Computer Science"
	DeptElectricalEngineering Department = "Electrical Engineering"
	DeptMechanicalEngineering Department = "Mechanical Engineering"
	DeptBiology               Department = "Biology"
	DeptChemistry             Department = "Chemistry"
	DeptMathematics           Department = "Mathematics"
	DeptPhysics               Department = "Physics"
	DeptBusiness              Department = "Business"
	DeptEconomics             Department = "Economics"
	DeptPsychology            Department = "Psychology"
)

// AllDepartments returns the closed department enumeration in display order.
func AllDepartments() []Department {
	return []Department{
		DeptComputerScience,
		DeptElectricalEngineering,
		DeptMechanicalEngineering,
		DeptBiology,
		DeptChemistry,
		DeptMathematics,
		DeptPhysics,
		DeptBusiness,
		DeptEconomics,
		DeptPsychology,
	}
}

// Valid reports whether d belongs to the closed enumeration.
func (d Department) Valid() bool {
	for _, known := range AllDepartments() {
		if d == known {
			return true
		}
	}
	return false
}

// Semester is the academic term partition key, orthogonal to Department.
type Semester string

const (
	SemesterFall2023   Semester = "Fall 2023"
	SemesterSpring2024 Semester = "Spring 2024"
	SemesterSummer2024 Semester = "Summer 2024"
	SemesterFall2024   Semester = "Fall 2024"
)

// AllSemesters returns the full term enumeration in chronological order.
func AllSemesters() []Semester {
	return []Semester{
		SemesterFall2023,
		SemesterSpring2024,
		SemesterSummer2024,
		SemesterFall2024,
	}
}

// Valid reports whether s belongs to the closed enumeration.
func (s Semester) Valid() bool {
	for _, known := range AllSemesters() {
		if s == known {
			return true
		}
	}
	return false
}
