package curriculum

// Level is the learner level a curriculum targets.
type Level string

const (
	Beginner     Level = "Beginner"
	Intermediate Level = "Intermediate"
	Advanced     Level = "Advanced"
	Expert       Level = "Expert"
)

// Levels lists the selectable levels in display order.
var Levels = []Level{Beginner, Intermediate, Advanced, Expert}

// Durations lists the selectable course durations in display order.
var Durations = []string{"1 semester", "2 semesters", "3 semesters", "1 year"}

// DefaultDuration is preselected on the design form.
const DefaultDuration = "1 semester"

// Request is the design form submitted by the user.
type Request struct {
	Subject          string `json:"subject"`
	Level            Level  `json:"level"`
	Duration         string `json:"duration"`
	FocusAreas       string `json:"focusAreas,omitempty"`
	LearningOutcomes string `json:"learningOutcomes,omitempty"`
}

// Curriculum is the structured result of one generation call.
type Curriculum struct {
	Subject             string      `json:"subject"`
	TargetAudience      string      `json:"target_audience"`
	Duration            string      `json:"duration"`
	Vision              string      `json:"vision"`
	LearningObjectives  []string    `json:"learning_objectives"`
	ContentPlan         ContentPlan `json:"content_plan"`
	ProjectsByIndustry  []Project   `json:"projects_by_industry"`
	AssessmentQuestions []Question  `json:"assessment_questions"`
	References          []Reference `json:"references"`
}

// ContentPlan groups the modules with level guidance.
type ContentPlan struct {
	Title     string   `json:"title"`
	LevelTips string   `json:"level_tips"`
	Tools     string   `json:"tools"`
	Modules   []Module `json:"modules"`
}

// Module is one content unit. Modules are identified by their index.
type Module struct {
	ModuleTitle string   `json:"module_title"`
	Weeks       string   `json:"weeks"`
	Assessment  string   `json:"assessment"`
	Topics      []string `json:"topics"`
}

// Project is an industry project suggestion.
type Project struct {
	Title       string `json:"title"`
	Level       string `json:"level"`
	Description string `json:"description"`
	GithubLink  string `json:"github_link"`
}

// Question is a multiple-choice assessment question. Options carry a
// one-letter key prefix such as "C) ..."; CorrectAnswer holds the key.
type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// Reference is a recommended book or link.
type Reference struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

// Module returns the module at index i.
func (c *Curriculum) Module(i int) (Module, bool) {
	if c == nil || i < 0 || i >= len(c.ContentPlan.Modules) {
		return Module{}, false
	}
	return c.ContentPlan.Modules[i], true
}

// fillEmpty replaces absent sequences with empty ones so downstream code and
// JSON consumers never see null.
func (c *Curriculum) fillEmpty() {
	if c.LearningObjectives == nil {
		c.LearningObjectives = []string{}
	}
	if c.ContentPlan.Modules == nil {
		c.ContentPlan.Modules = []Module{}
	}
	for i := range c.ContentPlan.Modules {
		if c.ContentPlan.Modules[i].Topics == nil {
			c.ContentPlan.Modules[i].Topics = []string{}
		}
	}
	if c.ProjectsByIndustry == nil {
		c.ProjectsByIndustry = []Project{}
	}
	if c.AssessmentQuestions == nil {
		c.AssessmentQuestions = []Question{}
	}
	for i := range c.AssessmentQuestions {
		if c.AssessmentQuestions[i].Options == nil {
			c.AssessmentQuestions[i].Options = []string{}
		}
	}
	if c.References == nil {
		c.References = []Reference{}
	}
}
