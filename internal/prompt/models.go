package prompt

type RecommendationData struct {
	UserInput    string
	Domain       string
	TasteContext string
}

type FallbackResponseData struct {
	UserInput  string
	Domain     string
	QlooStatus string
}

// templateDocument is the on-disk shape of a prompt template.
type templateDocument struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Prompt      string `yaml:"prompt"`
}
