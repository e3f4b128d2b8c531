package wizard

// SubjectGroup is one IB subject group offered by the details steps.
type SubjectGroup struct {
	Name     string   `json:"name"`
	Subjects []string `json:"subjects"`
}

// Levels offered for internal assessments.
var Levels = []string{"SL", "HL"}

// IAGroups lists the subject groups selectable for internal assessments.
var IAGroups = []SubjectGroup{
	{Name: "Group 1: Studies in Language and Literature", Subjects: []string{"English A: Literature", "English A: Language and Literature", "Spanish A: Literature"}},
	{Name: "Group 2: Language Acquisition", Subjects: []string{"English B", "Spanish B", "French B", "German B"}},
	{Name: "Group 3: Individuals and Societies", Subjects: []string{"History", "Geography", "Economics", "Business Management", "Psychology", "Global Politics"}},
	{Name: "Group 4: Sciences", Subjects: []string{"Biology", "Chemistry", "Physics", "Computer Science", "Design Technology"}},
	{Name: "Group 5: Mathematics", Subjects: []string{"Mathematics: Analysis and Approaches", "Mathematics: Applications and Interpretation"}},
	{Name: "Group 6: The Arts", Subjects: []string{"Visual Arts", "Music", "Theatre"}},
}

// EEGroups lists the subject groups selectable for extended essays.
var EEGroups = []SubjectGroup{
	{Name: "Group 1: Studies in Language and Literature", Subjects: []string{"English A: Literature", "English A: Language and Literature", "Spanish A: Literature"}},
	{Name: "Group 2: Language Acquisition", Subjects: []string{"English B", "Spanish B", "French B", "German B"}},
	{Name: "Group 3: Individuals and Societies", Subjects: []string{"History", "Geography", "Economics", "Business Management", "Psychology", "Global Politics", "World Religions"}},
	{Name: "Group 4: Sciences", Subjects: []string{"Biology", "Chemistry", "Physics", "Computer Science", "Design Technology", "Sports, Exercise and Health Science"}},
	{Name: "Group 5: Mathematics", Subjects: []string{"Mathematics: Analysis and Approaches", "Mathematics: Applications and Interpretation"}},
	{Name: "Group 6: The Arts", Subjects: []string{"Visual Arts", "Music", "Theatre", "Dance", "Film"}},
	{Name: "Interdisciplinary", Subjects: []string{"World Studies"}},
}

// GroupsFor returns the subject catalog for the given assessment type.
// TOK has no subject catalog.
func GroupsFor(t AssessmentType) []SubjectGroup {
	switch t {
	case TypeIA:
		return IAGroups
	case TypeEE:
		return EEGroups
	}
	return nil
}

// ValidSelection reports whether the subject belongs to the named group in
// the catalog for the given assessment type.
func ValidSelection(t AssessmentType, group, subject string) bool {
	for _, g := range GroupsFor(t) {
		if g.Name != group {
			continue
		}
		for _, s := range g.Subjects {
			if s == subject {
				return true
			}
		}
	}
	return false
}

// ValidLevel reports whether the level is one of the offered IA levels.
func ValidLevel(level string) bool {
	for _, l := range Levels {
		if l == level {
			return true
		}
	}
	return false
}
