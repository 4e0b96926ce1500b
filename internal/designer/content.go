package designer

import "github.com/p-n-ai/curriculum-designer/internal/curriculum"

// NoAssessmentTitle is shown when a curriculum carries no questions.
const NoAssessmentTitle = "No Assessment Available"

// EditorNotes are the fixed instructional-design recommendations shown on
// the lesson editor.
var EditorNotes = []string{
	"Allocate 60% of time to hands-on labs for foundational topics.",
	"Use flipped classroom style for theoretical concepts (Topic 1).",
	"The final week should be dedicated to a review and peer-assessment.",
}

// SampleProjects are the example projects shown on the dashboard.
var SampleProjects = []curriculum.Project{
	{
		Title:       "Real-time Fraud Detection System (Example)",
		Level:       "Advanced",
		Description: "Design a real-time streaming pipeline using Kafka and Flink for pattern recognition and anomaly detection in transactions.",
		GithubLink:  "#",
	},
	{
		Title:       "Cloud-Native Sentiment Analysis (Example)",
		Level:       "Intermediate",
		Description: "Develop a serverless solution to scrape social media, perform sentiment analysis via NLP APIs, and deploy via Docker/Kubernetes.",
		GithubLink:  "#",
	},
}

// FormOptions are the design form choices.
type FormOptions struct {
	Levels          []curriculum.Level `json:"levels"`
	Durations       []string           `json:"durations"`
	DefaultDuration string             `json:"default_duration"`
	Placeholder     string             `json:"level_placeholder"`
}

// DesignForm returns the design form choices.
func DesignForm() FormOptions {
	return FormOptions{
		Levels:          curriculum.Levels,
		Durations:       curriculum.Durations,
		DefaultDuration: curriculum.DefaultDuration,
		Placeholder:     curriculum.LevelPlaceholder,
	}
}
