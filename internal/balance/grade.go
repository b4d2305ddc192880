package balance

// PressureTag is appended to overkill grades of waves with spawn pressure.
const PressureTag = "[Spawn Pressure!]"

// Spawn-pressure penalty tuning. A wave with pressure whose raw overkill ratio
// exceeds PressureThreshold is graded at ratio*PressurePenalty.
const (
	PressurePenalty   = 0.5
	PressureThreshold = 1.0
)

// Grade is a letter grade with a short qualifier.
type Grade struct {
	Letter    string
	Qualifier string
	Pressure  bool
}

// String renders the grade label, e.g. "B (Balanced)".
func (g Grade) String() string {
	if g.Letter == "" {
		return ""
	}
	label := g.Letter + " (" + g.Qualifier + ")"
	if g.Pressure {
		label += " " + PressureTag
	}
	return label
}

// GradeStep is one row of a grade table.
type GradeStep struct {
	Min       float64
	Letter    string
	Qualifier string
}

// GradeTable is ordered from the highest minimum ratio to the lowest. The last
// step is the floor and applies to every ratio below the previous steps.
type GradeTable []GradeStep

// Grade returns the first step whose minimum the ratio reaches.
func (t GradeTable) Grade(ratio float64) Grade {
	if len(t) == 0 {
		return Grade{}
	}
	for _, step := range t[:len(t)-1] {
		if ratio >= step.Min {
			return Grade{Letter: step.Letter, Qualifier: step.Qualifier}
		}
	}
	last := t[len(t)-1]
	return Grade{Letter: last.Letter, Qualifier: last.Qualifier}
}

// OverkillGrades grades damage capacity against total enemy HP.
var OverkillGrades = GradeTable{
	{Min: 2.0, Letter: "A+", Qualifier: "Very Easy"},
	{Min: 1.5, Letter: "A", Qualifier: "Easy"},
	{Min: 1.2, Letter: "B", Qualifier: "Balanced"},
	{Min: 1.0, Letter: "C", Qualifier: "Challenging"},
	{Min: 0.8, Letter: "D", Qualifier: "Hard"},
	{Min: 0.6, Letter: "E", Qualifier: "Very Hard"},
	{Min: 0, Letter: "F", Qualifier: "Nearly Impossible"},
}

// BulletGrades grades bullets available against bullets needed.
var BulletGrades = GradeTable{
	{Min: 3.0, Letter: "A+", Qualifier: "Plenty of Ammo"},
	{Min: 2.0, Letter: "A", Qualifier: "Comfortable"},
	{Min: 1.5, Letter: "B", Qualifier: "Adequate"},
	{Min: 1.2, Letter: "C", Qualifier: "Tight"},
	{Min: 1.0, Letter: "D", Qualifier: "Very Tight"},
	{Min: 0.8, Letter: "E", Qualifier: "Insufficient"},
	{Min: 0, Letter: "F", Qualifier: "Critical Shortage"},
}

// gradeOverkill applies the spawn-pressure penalty and grades the result.
func gradeOverkill(raw float64, pressure bool) (float64, Grade) {
	if pressure && raw > PressureThreshold {
		adjusted := raw * PressurePenalty
		g := OverkillGrades.Grade(adjusted)
		g.Pressure = true
		return adjusted, g
	}
	return raw, OverkillGrades.Grade(raw)
}
