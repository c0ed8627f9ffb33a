package mealplanner

type ModelConfig struct {
	ModelID     string  `env:"MODEL_ID,required"`
	MaxTokens   int32   `env:"MAX_TOKENS,default=1024"`
	Temperature float32 `env:"TEMPERATURE,default=0.2"`
	TopP        float32 `env:"TOP_P,default=0.9"`
}

type AgentConfig struct {
	ArtifactsSynonymsPath string `env:"ARTIFACTS_SYNONYMS_PATH,default=artifacts/synonyms.json"`
	ArtifactsRecipesPath  string `env:"ARTIFACTS_RECIPES_PATH,default=artifacts/recipes.json"`
	// When set, artifacts load from this S3 bucket using the paths above as
	// object keys.
	ArtifactsS3Bucket string `env:"ARTIFACTS_S3_BUCKET,default="`
	BaseOllamaEndpoint    string `env:"BASE_OLLAMA_ENDPOINT,default=http://localhost:11434"`
	LookupBaseURL         string `env:"LOOKUP_BASE_URL,default=https://api.edamam.com/api/recipes/v2"`
	LookupAppID           string `env:"LOOKUP_APP_ID,default="`
	LookupAppKey          string `env:"LOOKUP_APP_KEY,default="`
	LookupUserID          string `env:"LOOKUP_USER_ID,default="`
	MaxCandidates         int    `env:"MAX_CANDIDATES,default=10"`
	ToolTimeoutSeconds    int    `env:"TOOL_TIMEOUT_SECONDS,default=30"`
	WebhookURL            string `env:"WEBHOOK_URL,default="`
	WebhookChannel        string `env:"WEBHOOK_CHANNEL,default=#meal-plans"`
}
